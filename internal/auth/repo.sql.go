package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hisaab-pk/hisaab/internal/platform/db"
	"github.com/hisaab-pk/hisaab/internal/shared"
)

// Repository provides PostgreSQL backed persistence for accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, company_id, email, full_name, password_hash, is_active, created_at, updated_at`

// FindByEmail loads an account by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	return scanUser(row)
}

// GetUser loads an account by ID.
func (r *Repository) GetUser(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	return scanUser(row)
}

// CreateAccount inserts the tenant company and its first user in one
// transaction, so a half-created account can never be observed.
func (r *Repository) CreateAccount(ctx context.Context, companyName, email, fullName, passwordHash string) (*User, error) {
	now := time.Now()
	var userID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var companyID int64
		err := tx.QueryRow(ctx, `INSERT INTO companies (name, scheme, default_scenario_id, fbr_environment, created_at, updated_at)
VALUES ($1, 'ntn', 'SN001', 'sandbox', $2, $2) RETURNING id`, companyName, now).Scan(&companyID)
		if err != nil {
			return err
		}
		return tx.QueryRow(ctx, `INSERT INTO users (company_id, email, full_name, password_hash, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,TRUE,$5,$5) RETURNING id`,
			companyID, email, fullName, passwordHash, now).Scan(&userID)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return r.GetUser(ctx, userID)
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.CompanyID, &u.Email, &u.FullName, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
