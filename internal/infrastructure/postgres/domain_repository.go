package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julee/knowledge-service/internal/domain/entity"
	"github.com/julee/knowledge-service/internal/domain/repository"
)

type DomainRepository struct {
	pool *pgxpool.Pool
}

func NewDomainRepository(pool *pgxpool.Pool) *DomainRepository {
	return &DomainRepository{pool: pool}
}

const domainColumns = `id, organisation_id, name, tooltip, created_at, updated_at`

func (r *DomainRepository) Create(ctx context.Context, d *entity.Domain) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// The FK on organisation_id rejects dangling references; translate turns
	// that into ErrNotFound.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO domains (organisation_id, name, tooltip)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, d.OrganisationID, d.Name, d.Tooltip)

	if err := row.Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return translate(err)
	}
	return nil
}

func (r *DomainRepository) GetByID(ctx context.Context, id string) (*entity.Domain, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT `+domainColumns+`
		FROM domains
		WHERE id = $1
	`, id)
	return scanDomain(row)
}

func (r *DomainRepository) List(ctx context.Context, organisationID *string) ([]*entity.Domain, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := `
		SELECT ` + domainColumns + `
		FROM domains
		ORDER BY created_at, id
	`
	args := []any{}
	if organisationID != nil {
		query = `
			SELECT ` + domainColumns + `
			FROM domains
			WHERE organisation_id = $1
			ORDER BY created_at, id
		`
		args = append(args, *organisationID)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	domains := make([]*entity.Domain, 0)
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return domains, nil
}

func (r *DomainRepository) Update(ctx context.Context, id string, changes repository.DomainUpdate) (*entity.Domain, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		UPDATE domains
		SET name       = COALESCE($2, name),
		    tooltip    = COALESCE($3, tooltip),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+domainColumns+`
	`, id, changes.Name, changes.Tooltip)
	return scanDomain(row)
}

func scanDomain(row rowScanner) (*entity.Domain, error) {
	d := &entity.Domain{}
	if err := row.Scan(&d.ID, &d.OrganisationID, &d.Name, &d.Tooltip, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return d, nil
}

var _ repository.DomainRepository = (*DomainRepository)(nil)
