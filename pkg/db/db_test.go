package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueViolation(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "user_contact_methods_name_key"})
	name, ok := UniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, "user_contact_methods_name_key", name)

	_, ok = UniqueViolation(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)

	_, ok = UniqueViolation(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFound(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsNotFound(errors.New("other")))
}

func TestConnect_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := Connect(context.Background(), Config{ConnectionString: "::not a dsn::"})
	require.ErrorIs(t, err, ErrParseConfig)
}

func TestConnect_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Connect(ctx, Config{
		ConnectionString: "postgres://nobody@127.0.0.1:1/none?connect_timeout=1",
		RetryAttempts:    5,
		RetryInterval:    time.Second,
		MaxConns:         1,
	})
	require.ErrorIs(t, err, ErrConnect)
}

func TestHealthcheck_NilPool(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Healthcheck(nil)(context.Background()), ErrHealthcheck)
}
