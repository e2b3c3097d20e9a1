package errors

import "fmt"

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeAPI         ErrorType = "api"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// IsFatal reports whether an error type must abort a crawl. Download
// workers treat every error as recoverable; the feed walk treats all of
// these as fatal since a truncated crawl must never look complete.
func IsFatal(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeAuth, ErrorTypeServerError, ErrorTypeAPI, ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}
