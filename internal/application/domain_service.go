package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/julee/knowledge-service/internal/domain/entity"
	repo "github.com/julee/knowledge-service/internal/domain/repository"
)

// DomainService orchestrates knowledge-domain use cases. A domain never
// exists without a valid organisation reference.
type DomainService struct {
	Repo   repo.DomainRepository
	Orgs   repo.OrganisationRepository
	Logger *logrus.Logger
	Events EventPublisher
}

func NewDomainService(domainRepo repo.DomainRepository, orgRepo repo.OrganisationRepository, logger *logrus.Logger, events EventPublisher) *DomainService {
	return &DomainService{Repo: domainRepo, Orgs: orgRepo, Logger: logger, Events: events}
}

type CreateDomainInput struct {
	OrganisationID string
	Name           string
	Tooltip        string
}

// Create checks the organisation reference, then stores the domain. The FK
// in the store catches the race where the organisation vanishes between the
// check and the insert.
func (s *DomainService) Create(ctx context.Context, in CreateDomainInput) (*entity.Domain, error) {
	var v validate
	v.require("name", in.Name)
	v.require("organisation_id", in.OrganisationID)
	if err := v.err(); err != nil {
		return nil, err
	}

	if _, err := s.Orgs.GetByID(ctx, in.OrganisationID); err != nil {
		return nil, fmt.Errorf("organisation %s: %w", in.OrganisationID, err)
	}

	d := &entity.Domain{
		OrganisationID: in.OrganisationID,
		Name:           in.Name,
		Tooltip:        in.Tooltip,
	}
	if err := s.Repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create domain: %w", err)
	}

	publishEvent(ctx, s.Events, s.Logger, EventDomainCreated, d.ID, map[string]any{
		"name":            d.Name,
		"organisation_id": d.OrganisationID,
	})
	return d, nil
}

func (s *DomainService) Get(ctx context.Context, id string) (*entity.Domain, error) {
	d, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get domain %s: %w", id, err)
	}
	return d, nil
}

func (s *DomainService) List(ctx context.Context, organisationID *string) ([]*entity.Domain, error) {
	domains, err := s.Repo.List(ctx, organisationID)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	return domains, nil
}
