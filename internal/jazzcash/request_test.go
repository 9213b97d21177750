package jazzcash

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTransactionFieldsSigned(t *testing.T) {
	cfg := Config{
		MerchantID: "MC10001",
		Password:   "pw",
		Salt:       "salt",
		ReturnURL:  "https://app.example.pk/payments/jazzcash/return",
	}
	now := time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC)
	fields := cfg.BuildTransactionFields("SUB177001", 250000, "Monthly plan", now)

	require.Equal(t, "MC10001", fields["pp_MerchantID"])
	require.Equal(t, "250000", fields[FieldAmount])
	require.Equal(t, "20260401103000", fields["pp_TxnDateTime"])
	require.Equal(t, "20260401113000", fields["pp_TxnExpiryDateTime"])
	assert.True(t, VerifySignature(fields, cfg.Salt))
}

func TestNewTxnRefPrefixes(t *testing.T) {
	now := time.Now()
	assert.True(t, strings.HasPrefix(NewTxnRef(true, now), SubscriptionRefPrefix))
	assert.True(t, strings.HasPrefix(NewTxnRef(false, now), "INV"))
}
