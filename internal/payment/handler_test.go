package payment

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hisaab-pk/hisaab/internal/jazzcash"
)

func newCallbackRouter(t *testing.T, repo *memoryPaymentRepo) chi.Router {
	t.Helper()
	svc := newTestService(repo, nil)
	h := NewHandler(slog.New(slog.DiscardHandler), svc)
	r := chi.NewRouter()
	h.MountCallbackRoutes(r)
	return r
}

func postForm(t *testing.T, router chi.Router, path string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIPNCallbackAcknowledgesVerifiedSuccess(t *testing.T) {
	repo := newMemoryPaymentRepo()
	router := newCallbackRouter(t, repo)

	svc := newTestService(repo, nil)
	fields, err := svc.InitiateSubscription(context.Background(), 1, "starter")
	require.NoError(t, err)

	rec := postForm(t, router, "/jazzcash/ipn", signedCallback(fields[jazzcash.FieldTxnRef], "000"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"acknowledged":true`)
	assert.Equal(t, StatusCompleted, repo.payments[fields[jazzcash.FieldTxnRef]].Status)
}

func TestIPNCallbackRejectsBadSignature(t *testing.T) {
	repo := newMemoryPaymentRepo()
	router := newCallbackRouter(t, repo)

	svc := newTestService(repo, nil)
	fields, err := svc.InitiateSubscription(context.Background(), 1, "starter")
	require.NoError(t, err)
	txnRef := fields[jazzcash.FieldTxnRef]

	callback := signedCallback(txnRef, "000")
	callback[jazzcash.FieldAmount] = "999999"

	rec := postForm(t, router, "/jazzcash/ipn", callback)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Signature Mismatch")
	assert.Equal(t, StatusPending, repo.payments[txnRef].Status)
}

func TestReturnCallbackReportsFailureWithoutLeakingVerdict(t *testing.T) {
	repo := newMemoryPaymentRepo()
	router := newCallbackRouter(t, repo)

	rec := postForm(t, router, "/jazzcash/return", map[string]string{
		jazzcash.FieldTxnRef:    "SUB123",
		jazzcash.SignatureField: "DEADBEEF",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"failed"`)
}
