package whatsapp

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// TwilioAPIBaseURL is the Twilio REST API endpoint
const TwilioAPIBaseURL = "https://api.twilio.com"

// Client sends WhatsApp messages through the Twilio Messages API.
// In dev mode messages are logged instead of sent.
type Client struct {
	mode       string
	accountSID string
	authToken  string
	from       string
	baseURL    string
	logger     *logrus.Logger
	client     *http.Client
}

// Config holds Twilio WhatsApp configuration
type Config struct {
	Mode       string // "dev" or "production"
	AccountSID string
	AuthToken  string
	FromNumber string // E.164 sender without the whatsapp: prefix
	BaseURL    string // Override for tests; defaults to TwilioAPIBaseURL
}

// NewClient creates a new WhatsApp client
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = TwilioAPIBaseURL
	}
	return &Client{
		mode:       cfg.Mode,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.FromNumber,
		baseURL:    baseURL,
		logger:     logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// messageResponse is the Twilio message resource envelope
type messageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    int    `json:"code"`
	ErrorMessage string `json:"message"`
}

// WhatsAppAddress prefixes an E.164 number for the WhatsApp channel
func WhatsAppAddress(e164 string) string {
	if strings.HasPrefix(e164, "whatsapp:") {
		return e164
	}
	return "whatsapp:" + e164
}

// Send delivers a WhatsApp message to an E.164 phone number
func (c *Client) Send(to, body string) error {
	if c.mode != "production" {
		c.logger.WithFields(logrus.Fields{
			"to":   to,
			"body": body,
		}).Info("WhatsApp dev mode, message not sent")
		return nil
	}

	if c.accountSID == "" || c.authToken == "" || c.from == "" {
		return fmt.Errorf("whatsapp not configured: missing twilio credentials")
	}

	form := url.Values{}
	form.Set("To", WhatsAppAddress(to))
	form.Set("From", WhatsAppAddress(c.from))
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("Failed to call Twilio")
		return fmt.Errorf("failed to send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var msg messageResponse
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("twilio returned status %d: %s", resp.StatusCode, msg.ErrorMessage)
	}

	c.logger.WithFields(logrus.Fields{
		"sid":    msg.SID,
		"status": msg.Status,
	}).Info("WhatsApp message sent")

	return nil
}
