package adapter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3AvatarStorage struct {
	client    s3PutObjectAPI
	bucket    string
	publicURL string
}

// NewS3AvatarStorage builds an S3 client from cfg using static credentials
// and returns an [AvatarStorage] that uploads objects into cfg.Bucket.
func NewS3AvatarStorage(ctx context.Context, cfg config.S3) (AvatarStorage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3AvatarStorage(client, cfg), nil
}

func newS3AvatarStorage(client s3PutObjectAPI, cfg config.S3) *s3AvatarStorage {
	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return &s3AvatarStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *s3AvatarStorage) Save(ctx context.Context, key string, upload models.AvatarUpload) (string, error) {
	objectKey := "avatars/" + key

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(upload.Content),
		ContentType:   aws.String(upload.ContentType),
		ContentLength: aws.Int64(int64(len(upload.Content))),
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*s3AvatarStorage.Save").Str("key", objectKey).Msg("uploading avatar failed")
		return "", fmt.Errorf("put avatar object: %w", err)
	}

	return s.publicURL + "/" + objectKey, nil
}
