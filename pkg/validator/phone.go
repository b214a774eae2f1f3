package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyPhone indicates the phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidFormat indicates the phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits and an optional leading +")

	// ErrInvalidLength indicates the phone number has the wrong number of digits
	ErrInvalidLength = errors.New("phone number must have between 8 and 15 digits")
)

// digitsRegex matches digits only
var digitsRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator normalizes phone numbers to E.164. Numbers without a
// country code get the configured default prepended, so "0771234567"
// with default "94" becomes "+94771234567".
type PhoneValidator struct {
	defaultCountryCode string
}

// NewPhoneValidator creates a phone validator with a default country code
func NewPhoneValidator(defaultCountryCode string) *PhoneValidator {
	return &PhoneValidator{
		defaultCountryCode: strings.TrimPrefix(defaultCountryCode, "+"),
	}
}

// Validate normalizes a phone number to E.164 format.
// Accepts "+14155550123", "0771234567", "077 123 4567" and similar.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if phone == "" {
		return "", ErrEmptyPhone
	}

	hasPlus := strings.HasPrefix(strings.TrimSpace(phone), "+")
	digits := v.Sanitize(phone)

	if digits == "" || !digitsRegex.MatchString(digits) {
		return "", ErrInvalidFormat
	}

	if !hasPlus {
		// National format: drop the trunk zero and add the default code
		digits = strings.TrimPrefix(digits, "0")
		if v.defaultCountryCode != "" && !strings.HasPrefix(digits, v.defaultCountryCode) {
			digits = v.defaultCountryCode + digits
		}
	}

	if len(digits) < 8 || len(digits) > 15 {
		return "", ErrInvalidLength
	}

	return "+" + digits, nil
}

// Sanitize strips separators and the leading + from a phone number
func (v *PhoneValidator) Sanitize(phone string) string {
	for _, sep := range []string{" ", "-", "(", ")", "+", "."} {
		phone = strings.ReplaceAll(phone, sep, "")
	}
	return phone
}

// IsValid is a convenience method that returns true if phone is valid
func (v *PhoneValidator) IsValid(phone string) bool {
	_, err := v.Validate(phone)
	return err == nil
}

// MustValidate validates and panics if invalid (use for testing only)
func (v *PhoneValidator) MustValidate(phone string) string {
	normalized, err := v.Validate(phone)
	if err != nil {
		panic(fmt.Sprintf("invalid phone number %s: %v", phone, err))
	}
	return normalized
}
