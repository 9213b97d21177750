package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hisaab-pk/hisaab/internal/fbr"
)

// Status enumerates invoice lifecycle states.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusValidated Status = "VALIDATED"
	StatusPosted    Status = "POSTED"
	StatusFailed    Status = "FAILED"
)

// Invoice is the persisted invoice header, including a buyer snapshot taken
// at creation time.
type Invoice struct {
	ID                    int64
	CompanyID             int64
	Number                string
	InvoiceType           string
	InvoiceDate           time.Time
	RefNo                 string
	ScenarioID            string
	BuyerName             string
	BuyerIdentifier       string
	BuyerScheme           fbr.IdentifierScheme
	BuyerProvince         string
	BuyerAddress          string
	BuyerRegistrationType string
	Subtotal              decimal.Decimal
	TaxTotal              decimal.Decimal
	Total                 decimal.Decimal
	Status                Status
	FBRInvoiceNumber      string
	FBRResponse           string
	CreatedBy             int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Item is one invoice line.
type Item struct {
	ID             int64
	InvoiceID      int64
	HSCode         string
	Description    string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	Value          decimal.Decimal
	TaxRate        decimal.Decimal
	FurtherTaxRate decimal.Decimal
	Discount       decimal.Decimal
	UOM            string
	SaleType       string
	SortOrder      int
}

// CreateInvoiceInput captures a new invoice with its lines.
type CreateInvoiceInput struct {
	CompanyID             int64
	Number                string
	InvoiceType           string
	InvoiceDate           time.Time
	RefNo                 string
	ScenarioID            string
	BuyerName             string
	BuyerIdentifier       string
	BuyerScheme           fbr.IdentifierScheme
	BuyerProvince         string
	BuyerAddress          string
	BuyerRegistrationType string
	Items                 []ItemInput
	CreatedBy             int64
}

// ItemInput is one line of a create/update request.
type ItemInput struct {
	HSCode         string
	Description    string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	TaxRate        decimal.Decimal
	FurtherTaxRate decimal.Decimal
	Discount       decimal.Decimal
	UOM            string
	SaleType       string
}
