package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	v := NewPhoneValidator("+94")

	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  error
	}{
		{
			name:     "International Format Passes Through",
			input:    "+14155550123",
			expected: "+14155550123",
		},
		{
			name:     "National Format Gets Default Code",
			input:    "0771234567",
			expected: "+94771234567",
		},
		{
			name:     "Separators Are Stripped",
			input:    "077 123-4567",
			expected: "+94771234567",
		},
		{
			name:     "Parentheses Are Stripped",
			input:    "+1 (415) 555-0123",
			expected: "+14155550123",
		},
		{
			name:     "Already Has Country Code Without Plus",
			input:    "94771234567",
			expected: "+94771234567",
		},
		{
			name:    "Empty",
			input:   "",
			wantErr: ErrEmptyPhone,
		},
		{
			name:    "Letters",
			input:   "+1415CALLME",
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "Too Short",
			input:   "+12345",
			wantErr: ErrInvalidLength,
		},
		{
			name:    "Too Long",
			input:   "+1234567890123456",
			wantErr: ErrInvalidLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValidate_NoDefaultCountryCode(t *testing.T) {
	v := NewPhoneValidator("")

	// Without a default code the trunk zero is still dropped but
	// nothing is prepended
	got, err := v.Validate("0771234567")
	assert.NoError(t, err)
	assert.Equal(t, "+771234567", got)
}

func TestSanitize(t *testing.T) {
	v := NewPhoneValidator("+1")

	assert.Equal(t, "14155550123", v.Sanitize("+1 (415) 555-0123"))
	assert.Equal(t, "14155550123", v.Sanitize("1.415.555.0123"))
}

func TestIsValid(t *testing.T) {
	v := NewPhoneValidator("+1")

	assert.True(t, v.IsValid("+14155550123"))
	assert.False(t, v.IsValid(""))
	assert.False(t, v.IsValid("abc"))
}
