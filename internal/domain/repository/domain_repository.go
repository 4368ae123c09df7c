package repository

import (
	"context"

	"github.com/julee/knowledge-service/internal/domain/entity"
)

// DomainUpdate carries partial field changes for a knowledge domain.
type DomainUpdate struct {
	Name    *string
	Tooltip *string
}

// DomainRepository defines the persistence operations for knowledge domains.
type DomainRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Domain, error)
	// List returns domains in insertion order, optionally scoped to one
	// organisation.
	List(ctx context.Context, organisationID *string) ([]*entity.Domain, error)
	// Create stores d. The referenced organisation must exist; a dangling
	// reference surfaces as ErrNotFound.
	Create(ctx context.Context, d *entity.Domain) error
	Update(ctx context.Context, id string, changes DomainUpdate) (*entity.Domain, error)
}
