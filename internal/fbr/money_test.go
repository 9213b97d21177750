package fbr

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestRound2HalfUp(t *testing.T) {
	cases := map[string]string{
		"1000.005": "1000.01",
		"1000.004": "1000.00",
		"0.125":    "0.13",
		"180":      "180.00",
		"99.999":   "100.00",
	}
	for in, want := range cases {
		require.Equal(t, want, Round2(dec(t, in)).StringFixed(2), "input %s", in)
	}
}

func TestTaxAmountRoundsBaseFirst(t *testing.T) {
	// 1000.005 rounds to 1000.01 before the rate applies:
	// round2(1000.01 * 18 / 100) = round2(180.0018) = 180.00.
	got := TaxAmount(dec(t, "1000.005"), dec(t, "18"))
	require.Equal(t, "180.00", got.StringFixed(2))

	got = TaxAmount(dec(t, "1000"), dec(t, "18"))
	require.Equal(t, "180.00", got.StringFixed(2))

	got = TaxAmount(dec(t, "999.99"), dec(t, "0"))
	require.Equal(t, "0.00", got.StringFixed(2))
}

func TestAmountMarshalsAsFixedNumber(t *testing.T) {
	raw, err := json.Marshal(NewAmount(dec(t, "180")))
	require.NoError(t, err)
	require.Equal(t, "180.00", string(raw))

	raw, err = json.Marshal(NewAmount(dec(t, "0.005")))
	require.NoError(t, err)
	require.Equal(t, "0.01", string(raw))
}
