package fbr

// Response is the envelope returned by both the validate and post endpoints.
type Response struct {
	InvoiceNumber      string            `json:"invoiceNumber"`
	Dated              string            `json:"dated"`
	ValidationResponse *ValidationDetail `json:"validationResponse"`
}

// ValidationDetail carries the per-invoice validation verdict.
type ValidationDetail struct {
	StatusCode      string          `json:"statusCode"`
	Status          string          `json:"status"`
	ErrorCode       string          `json:"errorCode"`
	Error           string          `json:"error"`
	InvoiceStatuses []InvoiceStatus `json:"invoiceStatuses"`
}

// InvoiceStatus is one entry of the per-item status array.
type InvoiceStatus struct {
	ItemSNo    string `json:"itemSNo"`
	StatusCode string `json:"statusCode"`
	Status     string `json:"status"`
	InvoiceNo  string `json:"invoiceNo"`
	ErrorCode  string `json:"errorCode"`
	Error      string `json:"error"`
}

const validStatusCode = "00"

// Accepted reports whether the envelope indicates a successful validation.
// A missing envelope is treated as accepted; rejection always carries one.
func (r *Response) Accepted() bool {
	if r == nil {
		return false
	}
	if r.ValidationResponse == nil {
		return true
	}
	return r.ValidationResponse.StatusCode == validStatusCode
}

// AssignedInvoiceNumber extracts the FBR invoice number from a post response.
// Returns an empty string when no number is present; absence is not an error.
func (r *Response) AssignedInvoiceNumber() string {
	if r == nil {
		return ""
	}
	if r.InvoiceNumber != "" {
		return r.InvoiceNumber
	}
	if r.ValidationResponse == nil {
		return ""
	}
	for _, st := range r.ValidationResponse.InvoiceStatuses {
		if st.InvoiceNo != "" {
			return st.InvoiceNo
		}
	}
	return ""
}
