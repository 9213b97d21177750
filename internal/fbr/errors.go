package fbr

import "fmt"

// Party identifies which side of the invoice an identifier belongs to.
type Party string

const (
	PartySeller Party = "seller"
	PartyBuyer  Party = "buyer"
)

// InvalidIdentifierError reports a seller or buyer registration number that
// fails format validation. It is raised before any network call.
type InvalidIdentifierError struct {
	Party  Party
	Value  string
	Format string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("fbr: invalid %s identifier %q: expected %s", e.Party, e.Value, e.Format)
}

// MissingFieldError reports a payload that cannot be constructed.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("fbr: missing required field %s", e.Field)
}

// APIError carries the fiscal API response verbatim so the caller can show the
// user exactly what the external system rejected.
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fbr: request failed: %v", e.Err)
	}
	return fmt.Sprintf("fbr: api returned status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
