package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/models"
)

type verificationTokenRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewVerificationTokenRepository constructs a [VerificationTokenRepository]
// over the "verification_tokens" table.
func NewVerificationTokenRepository(db *DB, logger *logger.Logger) VerificationTokenRepository {
	return &verificationTokenRepository{db: db, logger: logger}
}

func (r *verificationTokenRepository) CreateToken(ctx context.Context, token models.VerificationToken) error {
	log := logger.FromContext(ctx)

	query, args, err := buildInsertTokenQuery(r.db.builder, token)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*verificationTokenRepository.CreateToken").
			Str("purpose", string(token.Purpose)).
			Msg("error inserting verification token")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (r *verificationTokenRepository) FindToken(ctx context.Context, tokenHash string) (models.VerificationToken, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectTokenQuery(r.db, tokenHash)
	if err != nil {
		return models.VerificationToken{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	token, err := scanToken(r.db.conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.VerificationToken{}, ErrTokenNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*verificationTokenRepository.FindToken").Msg("error scanning verification token")
		return models.VerificationToken{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return token, nil
}

func (r *verificationTokenRepository) DeleteToken(ctx context.Context, tokenHash string) error {
	_, err := r.deleteWhere(ctx, sq.Eq{"token_hash": tokenHash}, "*verificationTokenRepository.DeleteToken")
	return err
}

func (r *verificationTokenRepository) DeleteTokensByIdentifier(ctx context.Context, identifier string, purpose models.TokenPurpose) (int64, error) {
	where := sq.Eq{"identifier": normalizeEmail(identifier), "purpose": string(purpose)}
	return r.deleteWhere(ctx, where, "*verificationTokenRepository.DeleteTokensByIdentifier")
}

func (r *verificationTokenRepository) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	return r.deleteWhere(ctx, sq.Lt{"expires_at": now.UTC()}, "*verificationTokenRepository.DeleteExpiredTokens")
}

func (r *verificationTokenRepository) deleteWhere(ctx context.Context, where sq.Sqlizer, funcName string) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteTokensQuery(r.db.builder, where)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error deleting verification tokens")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return n, nil
}
