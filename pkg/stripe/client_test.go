package stripe

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func checkoutParams() *CheckoutSessionParams {
	return &CheckoutSessionParams{
		SuccessURL:    "http://localhost:3000/booking/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     "http://localhost:3000/booking/cancelled",
		Currency:      "usd",
		UnitAmount:    45500,
		ProductName:   "Lakeview Cabin",
		CustomerEmail: "jane@example.com",
		Metadata: map[string]string{
			"booking_id": "b1f2d3e4-0000-0000-0000-000000000000",
			"user_id":    "a1f2d3e4-0000-0000-0000-000000000000",
		},
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotForm map[string][]string
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cs_test_123",
			"url": "https://checkout.stripe.com/c/pay/cs_test_123",
			"payment_status": "unpaid",
			"amount_total": 45500,
			"currency": "usd"
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{SecretKey: "sk_test_abc", BaseURL: server.URL}, discardLogger())

	session, err := client.CreateCheckoutSession(checkoutParams())
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_123", session.URL)

	assert.Equal(t, "Bearer sk_test_abc", gotAuth)
	assert.Equal(t, "payment", gotForm["mode"][0])
	assert.Equal(t, "usd", gotForm["line_items[0][price_data][currency]"][0])
	assert.Equal(t, "Lakeview Cabin", gotForm["line_items[0][price_data][product_data][name]"][0])
	assert.Equal(t, "45500", gotForm["line_items[0][price_data][unit_amount]"][0])
	assert.Equal(t, "1", gotForm["line_items[0][quantity]"][0])
	assert.Equal(t, "jane@example.com", gotForm["customer_email"][0])
	assert.Equal(t, "b1f2d3e4-0000-0000-0000-000000000000", gotForm["metadata[booking_id]"][0])
	assert.Equal(t, "a1f2d3e4-0000-0000-0000-000000000000", gotForm["metadata[user_id]"][0])
}

func TestCreateCheckoutSession_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "Invalid currency: xyz"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{SecretKey: "sk_test_abc", BaseURL: server.URL}, discardLogger())

	session, err := client.CreateCheckoutSession(checkoutParams())
	assert.Nil(t, session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid currency: xyz")
	assert.Contains(t, err.Error(), "400")
}

func TestCreateCheckoutSession_MissingRedirectURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "cs_test_123"}`))
	}))
	defer server.Close()

	client := NewClient(Config{SecretKey: "sk_test_abc", BaseURL: server.URL}, discardLogger())

	session, err := client.CreateCheckoutSession(checkoutParams())
	assert.Nil(t, session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect URL")
}

func TestCreateCheckoutSession_MissingSecretKey(t *testing.T) {
	client := NewClient(Config{}, discardLogger())

	session, err := client.CreateCheckoutSession(checkoutParams())
	assert.Nil(t, session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing secret key")
}
