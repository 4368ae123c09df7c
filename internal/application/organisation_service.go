package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/julee/knowledge-service/internal/domain/entity"
	repo "github.com/julee/knowledge-service/internal/domain/repository"
)

// OrganisationService orchestrates organisation use cases. Organisations are
// append-only; there is no delete path.
type OrganisationService struct {
	Repo   repo.OrganisationRepository
	Logger *logrus.Logger
	Events EventPublisher
}

func NewOrganisationService(orgRepo repo.OrganisationRepository, logger *logrus.Logger, events EventPublisher) *OrganisationService {
	return &OrganisationService{Repo: orgRepo, Logger: logger, Events: events}
}

type CreateOrganisationInput struct {
	Name        string
	Description string
}

func (s *OrganisationService) Create(ctx context.Context, in CreateOrganisationInput) (*entity.Organisation, error) {
	var v validate
	v.require("name", in.Name)
	if err := v.err(); err != nil {
		return nil, err
	}

	o := &entity.Organisation{Name: in.Name, Description: in.Description}
	if err := s.Repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create organisation: %w", err)
	}

	publishEvent(ctx, s.Events, s.Logger, EventOrganisationCreated, o.ID, map[string]any{
		"name": o.Name,
	})
	return o, nil
}

func (s *OrganisationService) Get(ctx context.Context, id string) (*entity.Organisation, error) {
	o, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get organisation %s: %w", id, err)
	}
	return o, nil
}

func (s *OrganisationService) List(ctx context.Context) ([]*entity.Organisation, error) {
	orgs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organisations: %w", err)
	}
	return orgs, nil
}
