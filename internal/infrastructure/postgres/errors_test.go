package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julee/knowledge-service/internal/domain/repository"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows is not found", pgx.ErrNoRows, repository.ErrNotFound},
		{"wrapped no rows is not found", fmt.Errorf("scan: %w", pgx.ErrNoRows), repository.ErrNotFound},
		{"unique violation is conflict", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_email_key"}, repository.ErrConflict},
		{"fk violation is not found", &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "domains_organisation_id_fkey"}, repository.ErrNotFound},
		{"deadline is unavailable", context.DeadlineExceeded, repository.ErrUnavailable},
		{"cancel is unavailable", context.Canceled, repository.ErrUnavailable},
		{"unknown driver error is unavailable", errors.New("conn busy"), repository.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			require.ErrorIs(t, got, tt.want)
		})
	}
}

func TestTranslateDoesNotLeakDriverTypes(t *testing.T) {
	in := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_email_key"}
	got := translate(in)

	var pgErr *pgconn.PgError
	assert.False(t, errors.As(got, &pgErr), "driver error should not escape the repository boundary")
	assert.ErrorIs(t, got, repository.ErrConflict)
}

func TestTranslateOtherPgErrorIsUnavailable(t *testing.T) {
	in := &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
	require.ErrorIs(t, translate(in), repository.ErrUnavailable)
}
