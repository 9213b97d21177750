package fbr

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput(t *testing.T) InvoiceInput {
	t.Helper()
	return InvoiceInput{
		Type: "Sale Invoice",
		Date: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Seller: PartyInfo{
			Identifier:   "7654321-0",
			Scheme:       SchemeNTN,
			BusinessName: "Karachi Traders",
			Province:     "Sindh",
			Address:      "Shahrah-e-Faisal, Karachi",
		},
		Buyer: PartyInfo{
			Identifier:   "1234567-8",
			Scheme:       SchemeNTN,
			BusinessName: "Lahore Retail",
			Province:     "Punjab",
			Address:      "Mall Road, Lahore",
		},
		BuyerRegistrationType: "Registered",
		Items: []LineInput{
			{
				Description: "Copper wire",
				Quantity:    decimal.NewFromInt(10),
				UnitPrice:   decimal.NewFromInt(100),
				TaxRate:     decimal.NewFromInt(18),
			},
		},
	}
}

func TestBuildPayloadStandardRateLine(t *testing.T) {
	payload, err := BuildPayload(validInput(t))
	require.NoError(t, err)

	require.Equal(t, "2026-03-15", payload.InvoiceDate)
	require.Equal(t, "76543210", payload.SellerNTNCNIC)
	require.Equal(t, "12345678", payload.BuyerNTNCNIC)
	require.Equal(t, DefaultScenarioID, payload.ScenarioID)

	require.Len(t, payload.Items, 1)
	item := payload.Items[0]
	assert.Equal(t, "1000.00", item.ValueSalesExcludingST.StringFixed(2))
	assert.Equal(t, "180.00", item.SalesTaxApplicable.StringFixed(2))
	assert.Equal(t, "1180.00", item.TotalValues.StringFixed(2))
	assert.Equal(t, "18%", item.Rate)
	assert.Equal(t, DefaultHSCode, item.HSCode)
	assert.Equal(t, DefaultUOM, item.UOM)
	assert.Equal(t, DefaultSaleType, item.SaleType)
}

func TestBuildPayloadSerialisedAmounts(t *testing.T) {
	payload, err := BuildPayload(validInput(t))
	require.NoError(t, err)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"salesTaxApplicable":180.00`)
	assert.Contains(t, string(raw), `"valueSalesExcludingST":1000.00`)
	assert.Contains(t, string(raw), `"buyerNTNCNIC":"12345678"`)
	assert.Contains(t, string(raw), `"scenarioId":"SN001"`)
}

func TestBuildPayloadFurtherTax(t *testing.T) {
	in := validInput(t)
	in.Items[0].FurtherTaxRate = decimal.NewFromInt(3)
	payload, err := BuildPayload(in)
	require.NoError(t, err)

	item := payload.Items[0]
	assert.Equal(t, "30.00", item.FurtherTax.StringFixed(2))
	assert.Equal(t, "1210.00", item.TotalValues.StringFixed(2))
}

func TestBuildPayloadExplicitLineValue(t *testing.T) {
	in := validInput(t)
	in.Items[0].Value = dec(t, "1000.005")
	payload, err := BuildPayload(in)
	require.NoError(t, err)

	item := payload.Items[0]
	assert.Equal(t, "1000.01", item.ValueSalesExcludingST.StringFixed(2))
	assert.Equal(t, "180.00", item.SalesTaxApplicable.StringFixed(2))
}

func TestBuildPayloadCNICBuyer(t *testing.T) {
	in := validInput(t)
	in.Buyer.Identifier = "42101-1234567-1"
	in.Buyer.Scheme = SchemeCNIC
	in.BuyerRegistrationType = "Unregistered"

	payload, err := BuildPayload(in)
	require.NoError(t, err)
	assert.Equal(t, "4210112345671", payload.BuyerNTNCNIC)
	assert.Equal(t, "Unregistered", payload.BuyerRegistrationType)
}

func TestBuildPayloadRejectsBadIdentifiers(t *testing.T) {
	in := validInput(t)
	in.Buyer.Identifier = "12-34"
	_, err := BuildPayload(in)
	var idErr *InvalidIdentifierError
	require.True(t, errors.As(err, &idErr))
	require.Equal(t, PartyBuyer, idErr.Party)

	in = validInput(t)
	in.Seller.Identifier = "notanumber"
	_, err = BuildPayload(in)
	require.True(t, errors.As(err, &idErr))
	require.Equal(t, PartySeller, idErr.Party)
}

func TestBuildPayloadMissingFields(t *testing.T) {
	in := validInput(t)
	in.Items = nil
	_, err := BuildPayload(in)
	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "items", missing.Field)

	in = validInput(t)
	in.Date = time.Time{}
	_, err = BuildPayload(in)
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "invoiceDate", missing.Field)
}

func TestBuildPayloadSanitizesText(t *testing.T) {
	in := validInput(t)
	in.Items[0].Description = `Cable  "armoured" \ 25mm`
	payload, err := BuildPayload(in)
	require.NoError(t, err)
	assert.Equal(t, "Cable ”armoured” 25mm", payload.Items[0].ProductDescription)
}
