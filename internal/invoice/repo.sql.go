package invoice

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hisaab-pk/hisaab/internal/fbr"
	"github.com/hisaab-pk/hisaab/internal/platform/db"
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

const invoiceColumns = `id, company_id, number, invoice_type, invoice_date, ref_no, scenario_id,
buyer_name, buyer_identifier, buyer_scheme, buyer_province, buyer_address, buyer_registration_type,
subtotal, tax_total, total, status, fbr_invoice_number, fbr_response, created_by, created_at, updated_at`

// CreateInvoice inserts the header and its lines in one transaction.
func (r *Repository) CreateInvoice(ctx context.Context, input CreateInvoiceInput, subtotal, taxTotal, total decimal.Decimal) (*Invoice, error) {
	now := time.Now()
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO invoices
(company_id, number, invoice_type, invoice_date, ref_no, scenario_id,
 buyer_name, buyer_identifier, buyer_scheme, buyer_province, buyer_address, buyer_registration_type,
 subtotal, tax_total, total, status, created_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$18) RETURNING id`,
			input.CompanyID, input.Number, input.InvoiceType, input.InvoiceDate, input.RefNo, input.ScenarioID,
			input.BuyerName, input.BuyerIdentifier, input.BuyerScheme, input.BuyerProvince, input.BuyerAddress, input.BuyerRegistrationType,
			subtotal, taxTotal, total, StatusDraft, input.CreatedBy, now).Scan(&id)
		if err != nil {
			return err
		}
		for i, line := range input.Items {
			value := fbr.Round2(line.Quantity.Mul(line.UnitPrice))
			_, err := tx.Exec(ctx, `INSERT INTO invoice_items
(invoice_id, hs_code, description, quantity, unit_price, value, tax_rate, further_tax_rate, discount, uom, sale_type, sort_order)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
				id, line.HSCode, line.Description, line.Quantity, line.UnitPrice, value,
				line.TaxRate, line.FurtherTaxRate, line.Discount, line.UOM, line.SaleType, i)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetInvoice(ctx, input.CompanyID, id)
}

// GetInvoice loads one invoice scoped by tenant.
func (r *Repository) GetInvoice(ctx context.Context, companyID, id int64) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1 AND company_id=$2`, id, companyID)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

// ListInvoices returns all invoices of a tenant, newest first.
func (r *Repository) ListInvoices(ctx context.Context, companyID int64) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE company_id=$1 ORDER BY id DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// ListItems returns the lines of one invoice in recorded order.
func (r *Repository) ListItems(ctx context.Context, invoiceID int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, invoice_id, hs_code, description, quantity, unit_price, value,
tax_rate, further_tax_rate, discount, uom, sale_type, sort_order
FROM invoice_items WHERE invoice_id=$1 ORDER BY sort_order`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.HSCode, &it.Description, &it.Quantity, &it.UnitPrice, &it.Value,
			&it.TaxRate, &it.FurtherTaxRate, &it.Discount, &it.UOM, &it.SaleType, &it.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// DeleteInvoice removes an invoice and its lines.
func (r *Repository) DeleteInvoice(ctx context.Context, companyID, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id=$1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id=$1 AND company_id=$2`, id, companyID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// RecordSubmission stores the outcome of a validate or post call.
func (r *Repository) RecordSubmission(ctx context.Context, id int64, status Status, fbrNumber, rawResponse string) error {
	_, err := r.pool.Exec(ctx, `UPDATE invoices
SET status=$1, fbr_invoice_number=COALESCE(NULLIF($2,''), fbr_invoice_number), fbr_response=$3, updated_at=$4
WHERE id=$5`, status, fbrNumber, rawResponse, time.Now(), id)
	return err
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.Number, &inv.InvoiceType, &inv.InvoiceDate, &inv.RefNo, &inv.ScenarioID,
		&inv.BuyerName, &inv.BuyerIdentifier, &inv.BuyerScheme, &inv.BuyerProvince, &inv.BuyerAddress, &inv.BuyerRegistrationType,
		&inv.Subtotal, &inv.TaxTotal, &inv.Total, &inv.Status, &inv.FBRInvoiceNumber, &inv.FBRResponse,
		&inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
