package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julee/knowledge-service/internal/domain/entity"
	"github.com/julee/knowledge-service/internal/domain/repository"
)

// opTimeout bounds every single repository operation. Expiry surfaces as
// repository.ErrUnavailable.
const opTimeout = 3 * time.Second

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, name, avatar_url, organisation_id, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, avatar_url, organisation_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.Name, u.AvatarURL, u.OrganisationID)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return translate(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context, organisationID *string) ([]*entity.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at, id
	`
	args := []any{}
	if organisationID != nil {
		query = `
			SELECT ` + userColumns + `
			FROM users
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

	users := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, changes repository.UserUpdate) (*entity.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// COALESCE keeps columns whose change pointer is nil.
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name            = COALESCE($2, name),
		    avatar_url      = COALESCE($3, avatar_url),
		    organisation_id = COALESCE($4, organisation_id),
		    updated_at      = now()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, changes.Name, changes.AvatarURL, changes.OrganisationID)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.AvatarURL,
		&u.OrganisationID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
