package subscription

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

const subscriptionColumns = `id, company_id, plan_code, status, duration_days, expires_at, created_at, updated_at`

// Create inserts a pending subscription.
func (r *Repository) Create(ctx context.Context, companyID int64, plan Plan) (*Subscription, error) {
	now := time.Now()
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO subscriptions (company_id, plan_code, status, duration_days, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`, companyID, plan.Code, StatusPending, plan.DurationDays, now).Scan(&id)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id=$1`, id)
	return scanSubscription(row)
}

// GetCurrent returns the newest subscription for a tenant.
func (r *Repository) GetCurrent(ctx context.Context, companyID int64) (*Subscription, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions
WHERE company_id=$1 ORDER BY id DESC LIMIT 1`, companyID)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

// ExpireOverdue flips active subscriptions past their expiry to expired.
func (r *Repository) ExpireOverdue(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE subscriptions SET status=$1, updated_at=$2
WHERE status=$3 AND expires_at IS NOT NULL AND expires_at < $2`, StatusExpired, time.Now(), StatusActive)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanSubscription(row pgx.Row) (*Subscription, error) {
	var s Subscription
	err := row.Scan(&s.ID, &s.CompanyID, &s.PlanCode, &s.Status, &s.DurationDays, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
