package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := &Error{
		Type:    ErrorTypeRateLimit,
		Message: "api returned code -352: risk control",
		Code:    -352,
	}

	assert.Equal(t, "rate_limit error (code -352): api returned code -352: risk control", err.Error())
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		fatal     bool
	}{
		{ErrorTypeNetwork, true},
		{ErrorTypeAuth, true},
		{ErrorTypeServerError, true},
		{ErrorTypeAPI, true},
		{ErrorTypeRateLimit, true},
		{ErrorTypeParsing, false},
		{ErrorTypeNotFound, false},
		{ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.fatal, IsFatal(tt.errorType), "type %s", tt.errorType)
	}
}
