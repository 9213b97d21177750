package jazzcash

import (
	"strconv"
	"strings"
)

// Gateway field names. The spelling of pp_RetreivalReferenceNo is the
// gateway's, not ours.
const (
	FieldTxnRef        = "pp_TxnRefNo"
	FieldAmount        = "pp_Amount"
	FieldResponseCode  = "pp_ResponseCode"
	FieldResponseMsg   = "pp_ResponseMessage"
	FieldRetrievalRef  = "pp_RetreivalReferenceNo"
	FieldBillReference = "pp_BillReference"
)

// ResponseCodeSuccess is the gateway's success sentinel.
const ResponseCodeSuccess = "000"

// SubscriptionRefPrefix marks transaction references raised for subscription
// payments. A naming convention only; treat it as a hint, not a boundary.
const SubscriptionRefPrefix = "SUB"

// Outcome summarises a verified callback.
type Outcome struct {
	Succeeded    bool
	TxnRef       string
	Amount       int64 // minor units (paisa)
	Message      string
	RetrievalRef string
	Subscription bool
}

// ClassifyOutcome interprets a callback's functional fields. Only call this
// after VerifySignature has returned true.
func ClassifyOutcome(fields map[string]string) Outcome {
	amount, _ := strconv.ParseInt(fields[FieldAmount], 10, 64)
	ref := fields[FieldTxnRef]
	return Outcome{
		Succeeded:    fields[FieldResponseCode] == ResponseCodeSuccess,
		TxnRef:       ref,
		Amount:       amount,
		Message:      fields[FieldResponseMsg],
		RetrievalRef: fields[FieldRetrievalRef],
		Subscription: strings.HasPrefix(ref, SubscriptionRefPrefix),
	}
}
