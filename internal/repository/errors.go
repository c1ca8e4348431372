package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Typed failures surfaced by the loan lifecycle engine and the entity
// stores. Services pass these through to the handlers, which map them to
// HTTP statuses.
var (
	ErrBookNotFound        = errors.New("book not found")
	ErrBookUnavailable     = errors.New("book has no available copies")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberInactive      = errors.New("member is not active")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrLoanAlreadyReturned = errors.New("loan already returned")
	ErrDuplicateKey        = errors.New("duplicate key")
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a postgres unique constraint
// violation (duplicate ISBN, email, username).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
