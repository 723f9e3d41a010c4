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

// userRepository is the SQL implementation of [UserRepository] over the
// "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] and
// join the transaction carried by ctx, if any.
type userRepository struct {
	db     *DB
	logger *logger.Logger
	now    func() time.Time
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// CreateUser inserts a new user and returns it as stored.
//
// Error handling:
//   - unique violation on email → [ErrEmailAlreadyExists].
//   - any other driver-level error → wrapped [ErrExecutingStatement].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	now := r.now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.Email = normalizeEmail(user.Email)

	query, args, err := buildInsertUserQuery(r.db.builder, user)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		if r.db.isUniqueViolation(err) {
			return models.User{}, ErrEmailAlreadyExists
		}
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error inserting user")
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return user, nil
}

// FindUserByEmail returns the user owning email or [ErrNoUserWasFound].
func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findUser(ctx, sq.Eq{"email": normalizeEmail(email)}, "*userRepository.FindUserByEmail")
}

// FindUserByID returns the user with the given id or [ErrNoUserWasFound].
func (r *userRepository) FindUserByID(ctx context.Context, id string) (models.User, error) {
	return r.findUser(ctx, sq.Eq{"id": id}, "*userRepository.FindUserByID")
}

func (r *userRepository) findUser(ctx context.Context, where sq.Eq, funcName string) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectUserQuery(r.db.builder, where)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	user, err := scanUser(r.db.conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNoUserWasFound
	}
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error scanning user")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return user, nil
}

// UpdateUser applies a partial update to the user with the given id.
func (r *userRepository) UpdateUser(ctx context.Context, id string, update models.UserUpdate) error {
	return r.updateUser(ctx, sq.Eq{"id": id}, update, "*userRepository.UpdateUser")
}

// UpdateUserByEmail applies a partial update to the user owning email.
func (r *userRepository) UpdateUserByEmail(ctx context.Context, email string, update models.UserUpdate) error {
	return r.updateUser(ctx, sq.Eq{"email": normalizeEmail(email)}, update, "*userRepository.UpdateUserByEmail")
}

func (r *userRepository) updateUser(ctx context.Context, where sq.Eq, update models.UserUpdate, funcName string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildUpdateUserQuery(r.db.builder, where, update, r.now())
	if err != nil {
		if errors.Is(err, ErrNothingToUpdate) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		if r.db.isUniqueViolation(err) {
			return ErrEmailAlreadyExists
		}
		log.Err(err).Str("func", funcName).Msg("error updating user")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return expectAffected(res, ErrNoUserWasFound)
}

// GetLockoutState reads the failed-login counters of the user owning email.
func (r *userRepository) GetLockoutState(ctx context.Context, email string) (models.LockoutState, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectLockoutQuery(r.db, email)
	if err != nil {
		return models.LockoutState{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		state             models.LockoutState
		lastFailedAttempt sql.NullTime
		lockedUntil       sql.NullTime
	)
	err = r.db.conn(ctx).QueryRowContext(ctx, query, args...).
		Scan(&state.FailedAttempts, &lastFailedAttempt, &lockedUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LockoutState{}, ErrNoUserWasFound
	}
	if err != nil {
		log.Err(err).Str("func", "*userRepository.GetLockoutState").Msg("error scanning lockout state")
		return models.LockoutState{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	state.LastFailedAttempt = timePtr(lastFailedAttempt)
	state.LockedUntil = timePtr(lockedUntil)
	return state, nil
}

// SaveLockoutState overwrites the failed-login counters of the user owning email.
func (r *userRepository) SaveLockoutState(ctx context.Context, email string, state models.LockoutState) error {
	log := logger.FromContext(ctx)

	query, args, err := buildSaveLockoutQuery(r.db.builder, email, state, r.now())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.SaveLockoutState").Msg("error saving lockout state")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return expectAffected(res, ErrNoUserWasFound)
}

// expectAffected returns notFound when res reports zero affected rows.
func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
