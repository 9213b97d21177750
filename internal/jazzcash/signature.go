// Package jazzcash implements the JazzCash payment gateway integration:
// secure-hash signing and verification of callback payloads, and outcome
// classification for verified callbacks.
package jazzcash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// SignatureField holds the gateway-supplied secure hash and never participates
// in the signature input itself.
const SignatureField = "pp_SecureHash"

// CanonicalString builds the string that gets signed: the integrity salt
// followed by every non-empty field value in lexicographic key order, joined
// with "&". The signature field is excluded. The participating keys are
// returned for mismatch logging.
func CanonicalString(fields map[string]string, salt string) (string, []string) {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if k == SignatureField || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(salt)
	for _, k := range keys {
		b.WriteByte('&')
		b.WriteString(fields[k])
	}
	return b.String(), keys
}

// Sign computes the secure hash for a field set: HMAC-SHA256 over the
// canonical string, keyed by the integrity salt, hex encoded and uppercased.
func Sign(fields map[string]string, salt string) string {
	canonical, _ := CanonicalString(fields, salt)
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(canonical))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// VerifySignature recomputes the secure hash and compares it with the one the
// gateway supplied. The comparison is case-insensitive and constant-time. A
// failed verification means the callback must not mutate any state.
func VerifySignature(fields map[string]string, salt string) bool {
	received := fields[SignatureField]
	if received == "" {
		return false
	}
	expected := Sign(fields, salt)
	return hmac.Equal([]byte(strings.ToUpper(received)), []byte(expected))
}
