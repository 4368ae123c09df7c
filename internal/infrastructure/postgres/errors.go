package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/julee/knowledge-service/internal/domain/repository"
)

// Postgres error codes we care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate maps driver-level failures onto the repository error vocabulary.
// Nothing from pgx/pgconn crosses the package boundary.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return repository.ErrConflict
		case pgForeignKeyViolation:
			// A dangling reference means the referenced entity does not exist.
			return repository.ErrNotFound
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	// Anything else is a storage fault the caller cannot act on beyond retry.
	return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
}
