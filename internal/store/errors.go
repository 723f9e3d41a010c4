package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEmailAlreadyExists is returned when a user insert or an e-mail
	// change collides with the unique e-mail index.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrNoUserWasFound is returned when a query expected to match one user
	// record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrAccountNotFound is returned when no OAuth account links the given
	// provider identity.
	ErrAccountNotFound = errors.New("oauth account was not found")

	// ErrAccountAlreadyLinked is returned when the provider identity is
	// already linked to a user.
	ErrAccountAlreadyLinked = errors.New("oauth account already linked")

	// ErrSessionNotFound is returned when no session has the given token digest.
	ErrSessionNotFound = errors.New("session was not found")

	// ErrTokenNotFound is returned when no verification token has the given digest.
	ErrTokenNotFound = errors.New("verification token was not found")

	// ErrNothingToUpdate is returned by partial updates without any field set.
	ErrNothingToUpdate = errors.New("nothing to update")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when iterating a multi-row result fails.
	ErrScanningRows = errors.New("failed to scan rows")
)
