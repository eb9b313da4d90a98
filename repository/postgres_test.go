package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk/pkg/contactmethod"
)

func TestMapCreateError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "name constraint",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: uniqueName},
			want: contactmethod.ErrDuplicateName,
		},
		{
			name: "value constraint wrapped",
			err:  fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: uniqueValue}),
			want: contactmethod.ErrDuplicateValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, mapCreateError(tt.err), tt.want)
		})
	}

	t.Run("other errors are wrapped", func(t *testing.T) {
		t.Parallel()

		cause := &pgconn.PgError{Code: "23503", ConstraintName: "user_contact_methods_user_id_fkey"}
		err := mapCreateError(cause)
		require.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, contactmethod.ErrDuplicateName)
		assert.NotErrorIs(t, err, contactmethod.ErrDuplicateValue)
	})
}

func TestWithAfterCreate(t *testing.T) {
	t.Parallel()

	hookErr := errors.New("hook")
	p := New(nil, WithAfterCreate(func(context.Context, pgx.Tx, contactmethod.ContactMethod) error {
		return hookErr
	}))
	require.NotNil(t, p.afterCreate)
	assert.ErrorIs(t, p.afterCreate(context.Background(), nil, contactmethod.ContactMethod{}), hookErr)
}
