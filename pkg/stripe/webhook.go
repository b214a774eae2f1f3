package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is how far a webhook timestamp may drift before the
// event is rejected as a possible replay.
const DefaultTolerance = 5 * time.Minute

var (
	// ErrMissingSignature indicates the Stripe-Signature header was absent or malformed
	ErrMissingSignature = fmt.Errorf("webhook has no usable signature")

	// ErrSignatureMismatch indicates no signature matched the payload
	ErrSignatureMismatch = fmt.Errorf("webhook signature verification failed")

	// ErrTimestampTooOld indicates the signed timestamp is outside the tolerance
	ErrTimestampTooOld = fmt.Errorf("webhook timestamp outside of tolerance")
)

// ConstructEvent verifies the Stripe-Signature header against the raw
// payload and parses the event. The header carries a timestamp and one
// or more v1 signatures: HMAC-SHA256 of "timestamp.payload" keyed with
// the endpoint secret.
func ConstructEvent(payload []byte, sigHeader, secret string) (*Event, error) {
	return constructEventAt(payload, sigHeader, secret, time.Now())
}

func constructEventAt(payload []byte, sigHeader, secret string, now time.Time) (*Event, error) {
	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	if now.Sub(time.Unix(timestamp, 0)) > DefaultTolerance {
		return nil, ErrTimestampTooOld
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	matched := false
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, ErrSignatureMismatch
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	return &event, nil
}

// parseSignatureHeader splits "t=1699000000,v1=abc,v1=def" into its
// timestamp and v1 signature parts
func parseSignatureHeader(header string) (int64, []string, error) {
	var timestamp int64 = -1
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, ErrMissingSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, ErrMissingSignature
	}

	return timestamp, signatures, nil
}

// SignPayload produces a Stripe-Signature header value for a payload.
// Used by tests and local tooling to fabricate signed events.
func SignPayload(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// ParseCheckoutSession decodes a checkout.session event object
func ParseCheckoutSession(event *Event) (*CheckoutSession, error) {
	var session CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session object: %w", err)
	}
	return &session, nil
}

// ParsePaymentIntent decodes a payment_intent event object
func ParsePaymentIntent(event *Event) (*PaymentIntent, error) {
	var intent PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("failed to parse payment intent object: %w", err)
	}
	return &intent, nil
}
