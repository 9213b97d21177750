// Package fbr builds and submits invoice payloads for the FBR digital
// invoicing API. Field names and casing in the payload structs are fixed by
// the external contract and must not be changed.
package fbr

import (
	"time"

	"github.com/shopspring/decimal"
)

// Defaults applied when optional fields are absent from a line or invoice.
const (
	DefaultHSCode     = "0000.0000"
	DefaultUOM        = "Numbers, pieces and units"
	DefaultScenarioID = "SN001"
	DefaultSaleType   = "Goods at standard rate (default)"

	invoiceDateLayout = "2006-01-02"
)

// PartyInfo describes one side of the invoice before normalization.
type PartyInfo struct {
	Identifier   string
	Scheme       IdentifierScheme
	BusinessName string
	Province     string
	Address      string
}

// LineInput is one invoice line as recorded internally.
type LineInput struct {
	HSCode         string
	Description    string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	Value          decimal.Decimal // pre-tax line value; quantity * unit price when zero
	TaxRate        decimal.Decimal // percent
	FurtherTaxRate decimal.Decimal // percent
	UOM            string
	SaleType       string
	Discount       decimal.Decimal
}

// InvoiceInput aggregates everything needed to build a fiscal payload.
type InvoiceInput struct {
	Type                  string
	Date                  time.Time
	RefNo                 string
	ScenarioID            string
	Seller                PartyInfo
	Buyer                 PartyInfo
	BuyerRegistrationType string
	Items                 []LineInput
}

// InvoicePayload is the exact JSON shape accepted by the validate and post
// endpoints.
type InvoicePayload struct {
	InvoiceType           string        `json:"invoiceType"`
	InvoiceDate           string        `json:"invoiceDate"`
	SellerNTNCNIC         string        `json:"sellerNTNCNIC"`
	SellerBusinessName    string        `json:"sellerBusinessName"`
	SellerProvince        string        `json:"sellerProvince"`
	SellerAddress         string        `json:"sellerAddress"`
	BuyerNTNCNIC          string        `json:"buyerNTNCNIC"`
	BuyerBusinessName     string        `json:"buyerBusinessName"`
	BuyerProvince         string        `json:"buyerProvince"`
	BuyerAddress          string        `json:"buyerAddress"`
	BuyerRegistrationType string        `json:"buyerRegistrationType"`
	InvoiceRefNo          string        `json:"invoiceRefNo"`
	ScenarioID            string        `json:"scenarioId"`
	Items                 []PayloadItem `json:"items"`
}

// PayloadItem is one line of the fiscal payload.
type PayloadItem struct {
	HSCode                          string `json:"hsCode"`
	ProductDescription              string `json:"productDescription"`
	Rate                            string `json:"rate"`
	UOM                             string `json:"uoM"`
	Quantity                        Amount `json:"quantity"`
	TotalValues                     Amount `json:"totalValues"`
	ValueSalesExcludingST           Amount `json:"valueSalesExcludingST"`
	FixedNotifiedValueOrRetailPrice Amount `json:"fixedNotifiedValueOrRetailPrice"`
	SalesTaxApplicable              Amount `json:"salesTaxApplicable"`
	SalesTaxWithheldAtSource        Amount `json:"salesTaxWithheldAtSource"`
	ExtraTax                        string `json:"extraTax"`
	FurtherTax                      Amount `json:"furtherTax"`
	SROScheduleNo                   string `json:"sroScheduleNo"`
	FEDPayable                      Amount `json:"fedPayable"`
	Discount                        Amount `json:"discount"`
	SaleType                        string `json:"saleType"`
	SROItemSerialNo                 string `json:"sroItemSerialNo"`
}

// BuildPayload maps an internal invoice onto the fiscal payload. All
// validation errors are raised here, before any network call.
func BuildPayload(in InvoiceInput) (*InvoicePayload, error) {
	if in.Date.IsZero() {
		return nil, &MissingFieldError{Field: "invoiceDate"}
	}
	if len(in.Items) == 0 {
		return nil, &MissingFieldError{Field: "items"}
	}

	sellerID, err := NormalizeIdentifier(in.Seller.Identifier, in.Seller.Scheme, PartySeller)
	if err != nil {
		return nil, err
	}
	buyerID, err := NormalizeIdentifier(in.Buyer.Identifier, in.Buyer.Scheme, PartyBuyer)
	if err != nil {
		return nil, err
	}

	payload := &InvoicePayload{
		InvoiceType:           in.Type,
		InvoiceDate:           in.Date.Format(invoiceDateLayout),
		SellerNTNCNIC:         sellerID,
		SellerBusinessName:    SanitizeDescription(in.Seller.BusinessName),
		SellerProvince:        in.Seller.Province,
		SellerAddress:         SanitizeDescription(in.Seller.Address),
		BuyerNTNCNIC:          buyerID,
		BuyerBusinessName:     SanitizeDescription(in.Buyer.BusinessName),
		BuyerProvince:         in.Buyer.Province,
		BuyerAddress:          SanitizeDescription(in.Buyer.Address),
		BuyerRegistrationType: in.BuyerRegistrationType,
		InvoiceRefNo:          in.RefNo,
		ScenarioID:            in.ScenarioID,
		Items:                 make([]PayloadItem, 0, len(in.Items)),
	}
	if payload.ScenarioID == "" {
		payload.ScenarioID = DefaultScenarioID
	}

	for _, line := range in.Items {
		payload.Items = append(payload.Items, buildItem(line))
	}
	return payload, nil
}

func buildItem(line LineInput) PayloadItem {
	value := line.Value
	if value.IsZero() {
		value = line.Quantity.Mul(line.UnitPrice)
	}
	value = Round2(value)

	tax := TaxAmount(value, line.TaxRate)
	further := TaxAmount(value, line.FurtherTaxRate)
	total := value.Add(tax).Add(further)

	item := PayloadItem{
		HSCode:                          line.HSCode,
		ProductDescription:              SanitizeDescription(line.Description),
		Rate:                            line.TaxRate.String() + "%",
		UOM:                             line.UOM,
		Quantity:                        NewAmount(line.Quantity),
		TotalValues:                     NewAmount(total),
		ValueSalesExcludingST:           NewAmount(value),
		FixedNotifiedValueOrRetailPrice: NewAmount(decimal.Zero),
		SalesTaxApplicable:              NewAmount(tax),
		SalesTaxWithheldAtSource:        NewAmount(decimal.Zero),
		FurtherTax:                      NewAmount(further),
		FEDPayable:                      NewAmount(decimal.Zero),
		Discount:                        NewAmount(line.Discount),
		SaleType:                        line.SaleType,
	}
	if item.HSCode == "" {
		item.HSCode = DefaultHSCode
	}
	if item.UOM == "" {
		item.UOM = DefaultUOM
	}
	if item.SaleType == "" {
		item.SaleType = DefaultSaleType
	}
	return item
}
