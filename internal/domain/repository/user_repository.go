package repository

import (
	"context"

	"github.com/julee/knowledge-service/internal/domain/entity"
)

// UserUpdate carries partial field changes for a user. Nil fields are left
// untouched.
type UserUpdate struct {
	Name           *string
	AvatarURL      *string
	OrganisationID *string
}

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// List returns users in insertion order. organisationID narrows the
	// result to one organisation's members when non-nil.
	List(ctx context.Context, organisationID *string) ([]*entity.User, error)
	// Create stores u and populates generated fields (id, timestamps).
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, id string, changes UserUpdate) (*entity.User, error)
}
