package store

import (
	"context"
	"fmt"

	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
)

// Storages groups every repository used by the service layer together with
// the transaction runner they share.
type Storages struct {
	DB                          *DB
	Transactor                  Transactor
	UserRepository              UserRepository
	AccountRepository           AccountRepository
	SessionRepository           SessionRepository
	VerificationTokenRepository VerificationTokenRepository
	ContactRepository           ContactRepository
	BlogRepository              BlogRepository
}

// NewStorages connects to the configured database, applies migrations and
// builds every repository on top of the connection.
func NewStorages(ctx context.Context, cfg config.DB, log *logger.Logger) (*Storages, error) {
	var (
		db  *DB
		err error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = NewConnectPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		db, err = NewConnectSQLite(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(ctx); err != nil {
		_ = db.Close()
		log.Err(err).Str("func", "NewStorages").Msg("error applying migrations")
		return nil, err
	}

	return NewStoragesFromDB(db, log), nil
}

// NewStoragesFromDB builds the repositories over an already open connection.
func NewStoragesFromDB(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		DB:                          db,
		Transactor:                  db,
		UserRepository:              NewUserRepository(db, log),
		AccountRepository:           NewAccountRepository(db, log),
		SessionRepository:           NewSessionRepository(db, log),
		VerificationTokenRepository: NewVerificationTokenRepository(db, log),
		ContactRepository:           NewContactRepository(db),
		BlogRepository:              NewMemoryBlogRepository(),
	}
}

// Close releases the database connection.
func (s *Storages) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
