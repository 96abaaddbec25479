package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dvlottery.backend/internal/config"
	"dvlottery.backend/internal/domain/entities"
)

func newTestClient(t *testing.T, url string) *CheckoutClient {
	t.Helper()
	orig := providerNetworkRetries
	providerNetworkRetries = 0
	t.Cleanup(func() { providerNetworkRetries = orig })
	return NewCheckoutClient(config.PaymentConfig{ProviderBaseURL: url + "/v1/", APIKey: "sk_test", Timeout: time.Second}, zap.NewNop())
}

func writeProviderError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"type": "invalid_request_error", "message": message},
	})
}

func TestAPIBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:12111", apiBaseURL("http://localhost:12111/v1/"))
	assert.Equal(t, "http://localhost:12111", apiBaseURL("http://localhost:12111"))
	assert.Equal(t, "https://api.stripe.com", apiBaseURL(""))
}

func TestCreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "user-1", r.PostForm.Get("client_reference_id"))
		assert.Equal(t, "arben@example.com", r.PostForm.Get("customer_email"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "25000", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "usd", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "DV Lottery couple package", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "couple", r.PostForm.Get("metadata[package_type]"))
		assert.Equal(t, "user-1", r.PostForm.Get("metadata[user_id]"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "cs_test_1",
			"object": "checkout.session",
			"url":    "https://checkout.example.com/cs_test_1",
		})
	}))
	defer srv.Close()

	session, err := newTestClient(t, srv.URL).CreateCheckoutSession(context.Background(), entities.CheckoutSessionRequest{
		ClientReferenceID: "user-1",
		CustomerEmail:     "arben@example.com",
		PackageType:       entities.PackageCouple,
		AmountCents:       25000,
		Currency:          "usd",
		SuccessURL:        "http://front/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         "http://front/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.example.com/cs_test_1", session.URL)
}

func TestCreateCheckoutSession_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeProviderError(w, http.StatusBadRequest, "bad amount")
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).CreateCheckoutSession(context.Background(), entities.CheckoutSessionRequest{})
	assert.ErrorContains(t, err, "status 400: bad amount")
}

func TestCreateCheckoutSession_IncompleteSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"cs_1","object":"checkout.session"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).CreateCheckoutSession(context.Background(), entities.CheckoutSessionRequest{})
	assert.ErrorContains(t, err, "incomplete")
}

func TestGetCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/cs_paid", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"cs_paid","object":"checkout.session","client_reference_id":"user-1","customer":"cus_9","payment_status":"paid","status":"complete","amount_total":15000,"currency":"usd","metadata":{"package_type":"individual"}}`))
	}))
	defer srv.Close()

	session, err := newTestClient(t, srv.URL).GetCheckoutSession(context.Background(), "cs_paid")
	require.NoError(t, err)
	assert.Equal(t, entities.SessionPaymentPaid, session.PaymentStatus)
	assert.Equal(t, "complete", session.Status)
	assert.Equal(t, "user-1", session.ClientReferenceID)
	assert.Equal(t, "cus_9", session.CustomerID)
	assert.Equal(t, int64(15000), session.AmountTotal)
	assert.Equal(t, "usd", session.Currency)
	assert.Equal(t, "individual", session.Metadata["package_type"])
}

func TestGetCheckoutSession_Errors(t *testing.T) {
	_, err := newTestClient(t, "http://127.0.0.1:1").GetCheckoutSession(context.Background(), "")
	assert.Error(t, err)

	_, err = newTestClient(t, "http://127.0.0.1:1").GetCheckoutSession(context.Background(), "cs_1")
	assert.ErrorContains(t, err, "request failed")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeProviderError(w, http.StatusNotFound, "No such checkout.session: cs_missing")
	}))
	defer srv.Close()
	_, err = newTestClient(t, srv.URL).GetCheckoutSession(context.Background(), "cs_missing")
	assert.ErrorContains(t, err, "status 404")

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer bad.Close()
	_, err = newTestClient(t, bad.URL).GetCheckoutSession(context.Background(), "cs_1")
	assert.Error(t, err)
}

func signEvent(t *testing.T, alg jose.SignatureAlgorithm, key interface{}, payload []byte) []byte {
	t.Helper()
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: alg, Key: key}, nil)
	require.NoError(t, err)
	obj, err := signer.Sign(payload)
	require.NoError(t, err)
	compact, err := obj.CompactSerialize()
	require.NoError(t, err)
	return []byte(compact)
}

func TestWebhookVerifier_Valid(t *testing.T) {
	secret := "whsec_0123456789abcdef0123456789abcdef"
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","client_reference_id":"user-1","payment_status":"paid","amount_total":25000,"currency":"usd","metadata":{"package_type":"couple"}}}}`)

	event, err := NewWebhookVerifier(secret).Verify(signEvent(t, jose.HS256, []byte(secret), payload))
	require.NoError(t, err)
	assert.Equal(t, entities.EventCheckoutCompleted, event.Type)
	assert.Equal(t, "cs_1", event.Data.Object.ID)
	assert.Equal(t, int64(25000), event.Data.Object.AmountTotal)
}

func TestWebhookVerifier_Rejects(t *testing.T) {
	secret := "whsec_0123456789abcdef0123456789abcdef"
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	v := NewWebhookVerifier(secret)

	_, err := v.Verify(signEvent(t, jose.HS256, []byte("whsec_other_secret_other_secret_xx"), payload))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = v.Verify(signEvent(t, jose.HS512, []byte(secret+secret), payload))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = v.Verify([]byte("garbage"))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = v.Verify(nil)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = NewWebhookVerifier("").Verify(signEvent(t, jose.HS256, []byte(secret), payload))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestWebhookVerifier_InvalidPayload(t *testing.T) {
	secret := "whsec_0123456789abcdef0123456789abcdef"
	v := NewWebhookVerifier(secret)

	_, err := v.Verify(signEvent(t, jose.HS256, []byte(secret), []byte(`{"id":"evt_1"}`)))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidSignature)

	_, err = v.Verify(signEvent(t, jose.HS256, []byte(secret), []byte(`not-json`)))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidSignature)
}
