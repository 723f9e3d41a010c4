package store

import (
	"context"
	"fmt"

	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/models"
)

type contactRepository struct {
	db *DB
}

// NewContactRepository constructs a [ContactRepository] over the
// "contact_submissions" table.
func NewContactRepository(db *DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) SaveSubmission(ctx context.Context, submission models.ContactSubmission) error {
	query, args, err := buildInsertContactQuery(r.db.builder, submission)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*contactRepository.SaveSubmission").
			Str("category", string(submission.Category)).
			Msg("error saving contact submission")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}
