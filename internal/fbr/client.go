package fbr

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	endpointValidate = "/validateinvoicedata"
	endpointPost     = "/postinvoicedata"
)

// Client talks to the FBR digital invoicing API. Submissions are single
// synchronous calls: no retry, no backoff. Failures are returned verbatim and
// the caller decides whether the user retries manually.
type Client struct {
	rest   *resty.Client
	logger *slog.Logger
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{rest: rest, logger: logger}
}

// Validate submits the payload to the validation endpoint.
func (c *Client) Validate(ctx context.Context, payload *InvoicePayload, token string) (*Response, error) {
	return c.post(ctx, endpointValidate, payload, token)
}

// Post submits the payload to the posting endpoint, which assigns the fiscal
// invoice number on success.
func (c *Client) Post(ctx context.Context, payload *InvoicePayload, token string) (*Response, error) {
	return c.post(ctx, endpointPost, payload, token)
}

func (c *Client) post(ctx context.Context, endpoint string, payload *InvoicePayload, token string) (*Response, error) {
	result := &Response{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(payload).
		SetResult(result).
		Post(endpoint)
	if err != nil {
		return nil, &APIError{Err: err}
	}

	if resp.IsError() {
		c.logger.Warn("fbr api rejected request",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode()))
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	// A 2xx body can still carry a validation-failure envelope.
	if !result.Accepted() {
		c.logger.Info("fbr validation failed",
			slog.String("endpoint", endpoint),
			slog.String("status_code", result.ValidationResponse.StatusCode))
		return result, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return result, nil
}
