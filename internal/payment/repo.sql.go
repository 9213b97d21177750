package payment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hisaab-pk/hisaab/internal/platform/db"
	"github.com/hisaab-pk/hisaab/internal/shared"
	"github.com/hisaab-pk/hisaab/internal/subscription"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const paymentColumns = `id, company_id, invoice_id, subscription_id, txn_ref, amount_paisa, status,
response_code, response_message, retrieval_ref, created_at, updated_at`

// CreatePayment inserts a pending payment row.
func (r *Repository) CreatePayment(ctx context.Context, p Payment) (*Payment, error) {
	now := time.Now()
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO payments
(company_id, invoice_id, subscription_id, txn_ref, amount_paisa, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$7) RETURNING id`,
		p.CompanyID, p.InvoiceID, p.SubscriptionID, p.TxnRef, p.AmountPaisa, p.Status, now).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.getByID(ctx, id)
}

// GetByTxnRef loads a payment by gateway transaction reference.
func (r *Repository) GetByTxnRef(ctx context.Context, txnRef string) (*Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE txn_ref=$1`, txnRef)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Complete marks the payment completed and activates its linked subscription
// in a single transaction, so a crash cannot leave the two rows inconsistent.
func (r *Repository) Complete(ctx context.Context, txnRef string, result GatewayResult) error {
	now := time.Now()
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var subscriptionID *int64
		err := tx.QueryRow(ctx, `UPDATE payments
SET status=$1, response_code=$2, response_message=$3, retrieval_ref=$4, updated_at=$5
WHERE txn_ref=$6 RETURNING subscription_id`,
			StatusCompleted, result.ResponseCode, result.ResponseMessage, result.RetrievalRef, now, txnRef).Scan(&subscriptionID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		if subscriptionID == nil {
			return nil
		}
		_, err = tx.Exec(ctx, `UPDATE subscriptions
SET status=$1, expires_at=$2::timestamptz + make_interval(days => duration_days), updated_at=$2
WHERE id=$3`, subscription.StatusActive, now, *subscriptionID)
		return err
	})
}

// MarkFailed records a verified failure callback.
func (r *Repository) MarkFailed(ctx context.Context, txnRef string, result GatewayResult) error {
	tag, err := r.pool.Exec(ctx, `UPDATE payments
SET status=$1, response_code=$2, response_message=$3, retrieval_ref=$4, updated_at=$5
WHERE txn_ref=$6`,
		StatusFailed, result.ResponseCode, result.ResponseMessage, result.RetrievalRef, time.Now(), txnRef)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) getByID(ctx context.Context, id int64) (*Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id)
	return scanPayment(row)
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.CompanyID, &p.InvoiceID, &p.SubscriptionID, &p.TxnRef, &p.AmountPaisa, &p.Status,
		&p.ResponseCode, &p.ResponseMessage, &p.RetrievalRef, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
