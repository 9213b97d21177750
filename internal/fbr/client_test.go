package fbr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestClientPostExtractsInvoiceNumber(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/postinvoicedata", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"invoiceNumber": "",
			"validationResponse": {
				"statusCode": "00",
				"status": "Valid",
				"invoiceStatuses": [
					{"itemSNo": "1", "statusCode": "00", "status": "Valid", "invoiceNo": "7000007DI1747119701593"}
				]
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, testLogger())
	payload, err := BuildPayload(validInput(t))
	require.NoError(t, err)

	resp, err := client.Post(context.Background(), payload, "token-123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, "7000007DI1747119701593", resp.AssignedInvoiceNumber())
	assert.Equal(t, "12345678", gotBody["buyerNTNCNIC"])
}

func TestClientValidateSurfacesRejectionVerbatim(t *testing.T) {
	const body = `{"validationResponse":{"statusCode":"01","status":"Invalid","error":"Provided Seller Registration Number is not valid."}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, testLogger())
	payload, err := BuildPayload(validInput(t))
	require.NoError(t, err)

	resp, err := client.Validate(context.Background(), payload, "token")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.JSONEq(t, body, apiErr.Body)
	require.NotNil(t, resp)
	assert.False(t, resp.Accepted())
}

func TestClientNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, testLogger())
	payload, err := BuildPayload(validInput(t))
	require.NoError(t, err)

	_, err = client.Post(context.Background(), payload, "bad")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid token")
}

func TestResponseAssignedInvoiceNumberTolerance(t *testing.T) {
	assert.Empty(t, (&Response{}).AssignedInvoiceNumber())
	assert.Empty(t, (&Response{ValidationResponse: &ValidationDetail{}}).AssignedInvoiceNumber())
	assert.Equal(t, "X1", (&Response{InvoiceNumber: "X1"}).AssignedInvoiceNumber())
}
