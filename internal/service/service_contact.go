package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/store"
	"github.com/Rhysmalcolm13/agentity/internal/utils"
	"github.com/Rhysmalcolm13/agentity/internal/validators"
	"github.com/Rhysmalcolm13/agentity/models"
)

type contactService struct {
	repo      store.ContactRepository
	validator validators.Validator
	ids       *utils.UUIDGenerator
	now       func() time.Time
}

func NewContactService(repo store.ContactRepository, v validators.Validator) ContactService {
	return &contactService{repo: repo, validator: v, ids: utils.NewUUIDGenerator(), now: time.Now}
}

// Submit stores the form as a PENDING submission.
func (s *contactService) Submit(ctx context.Context, req models.ContactRequest) error {
	if err := s.validator.Validate(ctx, req); err != nil {
		return fmt.Errorf("invalid contact request: %w", err)
	}

	submission := models.ContactSubmission{
		ID:            s.ids.Generate(),
		Category:      req.Category,
		Name:          strings.TrimSpace(req.Name),
		Email:         normalizeEmail(req.Email),
		Message:       req.Message,
		AttachmentURL: req.AttachmentURL,
		Status:        models.ContactStatusPending,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.SaveSubmission(ctx, submission); err != nil {
		return fmt.Errorf("error saving contact submission: %w", err)
	}

	logger.FromContext(ctx).Info().
		Str("submission_id", submission.ID).
		Str("category", string(submission.Category)).
		Msg("contact submission received")
	return nil
}
