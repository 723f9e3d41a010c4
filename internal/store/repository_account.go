package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/models"
)

type accountRepository struct {
	db     *DB
	logger *logger.Logger
	now    func() time.Time
}

// NewAccountRepository constructs an [AccountRepository] over the "accounts" table.
func NewAccountRepository(db *DB, logger *logger.Logger) AccountRepository {
	return &accountRepository{db: db, logger: logger, now: time.Now}
}

func (r *accountRepository) FindAccount(ctx context.Context, provider models.OAuthProvider, providerAccountID string) (models.Account, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectAccountQuery(r.db.builder, provider, providerAccountID)
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		account      models.Account
		providerName string
	)
	err = r.db.conn(ctx).QueryRowContext(ctx, query, args...).
		Scan(&account.UserID, &providerName, &account.ProviderAccountID, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrAccountNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*accountRepository.FindAccount").Msg("error scanning account")
		return models.Account{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	account.Provider = models.OAuthProvider(providerName)

	return account, nil
}

func (r *accountRepository) LinkAccount(ctx context.Context, account models.Account) error {
	log := logger.FromContext(ctx)

	if account.CreatedAt.IsZero() {
		account.CreatedAt = r.now()
	}

	query, args, err := buildInsertAccountQuery(r.db.builder, account)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		if r.db.isUniqueViolation(err) {
			return ErrAccountAlreadyLinked
		}
		log.Err(err).Str("func", "*accountRepository.LinkAccount").Msg("error linking account")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}
