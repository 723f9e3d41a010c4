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

// sessionRepository is the SQL implementation of [SessionRepository]. Only
// token digests reach the database.
type sessionRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewSessionRepository constructs a [SessionRepository] over the "sessions" table.
func NewSessionRepository(db *DB, logger *logger.Logger) SessionRepository {
	logger.Debug().Msg("creating session repository")
	return &sessionRepository{db: db, logger: logger}
}

func (r *sessionRepository) CreateSession(ctx context.Context, session models.Session) error {
	log := logger.FromContext(ctx)

	query, args, err := buildInsertSessionQuery(r.db.builder, session)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*sessionRepository.CreateSession").Str("user_id", session.UserID).Msg("error inserting session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (r *sessionRepository) FindSession(ctx context.Context, tokenHash string) (models.Session, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectSessionQuery(r.db.builder, tokenHash)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	session, err := scanSession(r.db.conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.FindSession").Msg("error scanning session")
		return models.Session{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return session, nil
}

func (r *sessionRepository) UpdateSessionExpiry(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	log := logger.FromContext(ctx)

	query, args, err := buildUpdateSessionExpiryQuery(r.db.builder, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.UpdateSessionExpiry").Msg("error updating session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return expectAffected(res, ErrSessionNotFound)
}

// DeleteSession removes one session. Deleting an absent session is not an error.
func (r *sessionRepository) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := r.deleteWhere(ctx, sq.Eq{"token_hash": tokenHash}, "*sessionRepository.DeleteSession")
	return err
}

func (r *sessionRepository) DeleteUserSessions(ctx context.Context, userID string) (int64, error) {
	return r.deleteWhere(ctx, sq.Eq{"user_id": userID}, "*sessionRepository.DeleteUserSessions")
}

func (r *sessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	return r.deleteWhere(ctx, sq.Lt{"expires_at": now.UTC()}, "*sessionRepository.DeleteExpiredSessions")
}

func (r *sessionRepository) deleteWhere(ctx context.Context, where sq.Sqlizer, funcName string) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteSessionsQuery(r.db.builder, where)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error deleting sessions")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return n, nil
}
