package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrParseConfig = errors.New("db: failed to parse database configuration")
	ErrConnect     = errors.New("db: failed to open database connection")
	ErrHealthcheck = errors.New("db: healthcheck failed")
	ErrMigrate     = errors.New("db: failed to apply migrations")
)

const uniqueViolation = "23505"

// IsNotFound reports whether err is pgx.ErrNoRows.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// UniqueViolation returns the violated constraint name when err is a unique
// constraint violation.
func UniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
