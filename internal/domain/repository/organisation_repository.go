package repository

import (
	"context"

	"github.com/julee/knowledge-service/internal/domain/entity"
)

// OrganisationUpdate carries partial field changes for an organisation.
type OrganisationUpdate struct {
	Name        *string
	Description *string
}

// OrganisationRepository defines the persistence operations for organisations.
type OrganisationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Organisation, error)
	List(ctx context.Context) ([]*entity.Organisation, error)
	Create(ctx context.Context, o *entity.Organisation) error
	Update(ctx context.Context, id string, changes OrganisationUpdate) (*entity.Organisation, error)
}
