package jazzcash

import (
	"fmt"
	"time"
)

const txnTimeLayout = "20060102150405"

// Config holds merchant credentials for building outbound transaction
// requests. The salt doubles as the integrity key for callback verification.
type Config struct {
	MerchantID string
	Password   string
	Salt       string
	ReturnURL  string
}

// BuildTransactionFields assembles the signed form fields for a hosted
// checkout transaction. Amount is in minor units (paisa).
func (c Config) BuildTransactionFields(txnRef string, amount int64, description string, now time.Time) map[string]string {
	fields := map[string]string{
		"pp_Version":           "1.1",
		"pp_TxnType":           "MWALLET",
		"pp_Language":          "EN",
		"pp_MerchantID":        c.MerchantID,
		"pp_Password":          c.Password,
		FieldTxnRef:            txnRef,
		FieldAmount:            fmt.Sprintf("%d", amount),
		"pp_TxnCurrency":       "PKR",
		"pp_TxnDateTime":       now.Format(txnTimeLayout),
		"pp_TxnExpiryDateTime": now.Add(time.Hour).Format(txnTimeLayout),
		FieldBillReference:     txnRef,
		"pp_Description":       description,
		"pp_ReturnURL":         c.ReturnURL,
	}
	fields[SignatureField] = Sign(fields, c.Salt)
	return fields
}

// NewTxnRef generates a gateway transaction reference. Subscription payments
// carry the SUB prefix so callbacks can be routed without a lookup.
func NewTxnRef(subscription bool, now time.Time) string {
	prefix := "INV"
	if subscription {
		prefix = SubscriptionRefPrefix
	}
	return fmt.Sprintf("%s%d", prefix, now.UnixNano()/int64(time.Millisecond))
}
