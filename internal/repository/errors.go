package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrInsufficientStock is returned when a checkout would drive a product's
// stock below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
