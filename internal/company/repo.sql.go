package company

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hisaab-pk/hisaab/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const companyColumns = `id, name, identifier, scheme, province, address, default_scenario_id, fbr_token, fbr_environment, created_at, updated_at`

// GetCompany loads one tenant row.
func (r *Repository) GetCompany(ctx context.Context, id int64) (*Company, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id=$1`, id)
	return scanCompany(row)
}

// CreateCompany inserts a bare tenant row during registration.
func (r *Repository) CreateCompany(ctx context.Context, name string) (*Company, error) {
	now := time.Now()
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO companies (name, scheme, default_scenario_id, fbr_environment, created_at, updated_at)
VALUES ($1, 'ntn', 'SN001', 'sandbox', $2, $2) RETURNING id`, name, now).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetCompany(ctx, id)
}

// UpdateCompany stores tenant settings.
func (r *Repository) UpdateCompany(ctx context.Context, id int64, input UpdateSettingsInput) (*Company, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE companies
SET name=$1, identifier=$2, scheme=$3, province=$4, address=$5, default_scenario_id=$6, fbr_token=$7, fbr_environment=$8, updated_at=$9
WHERE id=$10`,
		input.Name, input.Identifier, input.Scheme, input.Province, input.Address,
		input.DefaultScenarioID, input.FBRToken, input.FBREnvironment, time.Now(), id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.GetCompany(ctx, id)
}

func scanCompany(row pgx.Row) (*Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.Identifier, &c.Scheme, &c.Province, &c.Address,
		&c.DefaultScenarioID, &c.FBRToken, &c.FBREnvironment, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
