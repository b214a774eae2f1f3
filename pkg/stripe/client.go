package stripe

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// APIBaseURL is the Stripe REST API endpoint
const APIBaseURL = "https://api.stripe.com"

// Client is a minimal Stripe Checkout client. Only the endpoints the
// booking flow needs are implemented.
type Client struct {
	secretKey string
	baseURL   string
	logger    *logrus.Logger
	client    *http.Client
}

// Config holds Stripe client configuration
type Config struct {
	SecretKey string
	BaseURL   string // Override for tests; defaults to APIBaseURL
}

// NewClient creates a new Stripe client
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = APIBaseURL
	}
	return &Client{
		secretKey: cfg.SecretKey,
		baseURL:   baseURL,
		logger:    logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CheckoutSessionParams describes a single-item Checkout session
type CheckoutSessionParams struct {
	SuccessURL    string
	CancelURL     string
	Currency      string
	UnitAmount    int64 // Smallest currency unit (cents)
	Quantity      int64
	ProductName   string
	CustomerEmail string
	Metadata      map[string]string
}

// CheckoutSession is the session object returned by Stripe
type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentIntent string            `json:"payment_intent"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
}

// PaymentIntent is the payment intent object carried by failure events
type PaymentIntent struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

// Event is a webhook event envelope
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Raw json.RawMessage `json:"object"`
	} `json:"data"`
}

// apiError is the error envelope Stripe returns on non-2xx responses
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCheckoutSession creates a hosted Checkout session for one line
// item and returns the session with its redirect URL.
func (c *Client) CreateCheckoutSession(params *CheckoutSessionParams) (*CheckoutSession, error) {
	if c.secretKey == "" {
		return nil, fmt.Errorf("stripe not configured: missing secret key")
	}

	quantity := params.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.UnitAmount, 10))
	form.Set("line_items[0][quantity]", strconv.FormatInt(quantity, 10))
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}

	// Sort metadata keys so the encoded body is deterministic
	keys := make([]string, 0, len(params.Metadata))
	for k := range params.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		form.Set(fmt.Sprintf("metadata[%s]", k), params.Metadata[k])
	}

	c.logger.WithFields(logrus.Fields{
		"product":     params.ProductName,
		"unit_amount": params.UnitAmount,
		"currency":    params.Currency,
	}).Info("Creating Stripe checkout session")

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("Failed to call Stripe")
		return nil, fmt.Errorf("failed to call stripe: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("stripe returned status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("stripe returned status %d: %s", resp.StatusCode, string(body))
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if session.URL == "" {
		return nil, fmt.Errorf("checkout session created without a redirect URL")
	}

	c.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
	}).Info("Stripe checkout session created")

	return &session, nil
}
