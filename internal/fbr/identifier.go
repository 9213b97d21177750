package fbr

import "strings"

// IdentifierScheme selects which registration identifier format a party uses.
type IdentifierScheme string

const (
	// SchemeNTN is the National Tax Number: seven digits plus a check digit.
	SchemeNTN IdentifierScheme = "ntn"
	// SchemeCNIC is the thirteen digit national identity card number.
	SchemeCNIC IdentifierScheme = "cnic"
)

const (
	ntnLength  = 8
	cnicLength = 13
)

// NormalizeIdentifier strips separators and validates the digit string against
// the chosen scheme. An identifier that fails validation blocks submission.
func NormalizeIdentifier(raw string, scheme IdentifierScheme, party Party) (string, error) {
	digits := stripSeparators(raw)

	switch scheme {
	case SchemeCNIC:
		if !isDigits(digits) || len(digits) != cnicLength {
			return "", &InvalidIdentifierError{Party: party, Value: raw, Format: "13 digit CNIC"}
		}
	default:
		if !isDigits(digits) || len(digits) != ntnLength {
			return "", &InvalidIdentifierError{Party: party, Value: raw, Format: "7 digit NTN with check digit (NNNNNNN-N)"}
		}
	}
	return digits, nil
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
