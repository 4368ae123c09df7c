package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julee/knowledge-service/internal/domain/entity"
	"github.com/julee/knowledge-service/internal/domain/repository"
)

type OrganisationRepository struct {
	pool *pgxpool.Pool
}

func NewOrganisationRepository(pool *pgxpool.Pool) *OrganisationRepository {
	return &OrganisationRepository{pool: pool}
}

const organisationColumns = `id, name, description, created_at, updated_at`

func (r *OrganisationRepository) Create(ctx context.Context, o *entity.Organisation) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO organisations (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, o.Name, o.Description)

	if err := row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return translate(err)
	}
	return nil
}

func (r *OrganisationRepository) GetByID(ctx context.Context, id string) (*entity.Organisation, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT `+organisationColumns+`
		FROM organisations
		WHERE id = $1
	`, id)
	return scanOrganisation(row)
}

func (r *OrganisationRepository) List(ctx context.Context) ([]*entity.Organisation, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+organisationColumns+`
		FROM organisations
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	orgs := make([]*entity.Organisation, 0)
	for rows.Next() {
		o, err := scanOrganisation(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return orgs, nil
}

func (r *OrganisationRepository) Update(ctx context.Context, id string, changes repository.OrganisationUpdate) (*entity.Organisation, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		UPDATE organisations
		SET name        = COALESCE($2, name),
		    description = COALESCE($3, description),
		    updated_at  = now()
		WHERE id = $1
		RETURNING `+organisationColumns+`
	`, id, changes.Name, changes.Description)
	return scanOrganisation(row)
}

func scanOrganisation(row rowScanner) (*entity.Organisation, error) {
	o := &entity.Organisation{}
	if err := row.Scan(&o.ID, &o.Name, &o.Description, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return o, nil
}

var _ repository.OrganisationRepository = (*OrganisationRepository)(nil)
