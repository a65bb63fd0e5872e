package api

import "fmt"

// ErrorCode classifies an outbound call failure.
type ErrorCode string

const (
	ErrRateLimited ErrorCode = "RATE_LIMITED"
	ErrTimeout     ErrorCode = "TIMEOUT"
	ErrNetwork     ErrorCode = "NETWORK_ERROR"
	ErrAuth        ErrorCode = "AUTH_ERROR"
	ErrNotFound    ErrorCode = "NOT_FOUND"
	ErrServer      ErrorCode = "SERVER_ERROR"
	ErrParse       ErrorCode = "PARSE_ERROR"
	ErrUnknown     ErrorCode = "UNKNOWN"
)

// retryableByDefault returns the default retry policy for a code.
func retryableByDefault(code ErrorCode) bool {
	switch code {
	case ErrRateLimited, ErrServer, ErrTimeout:
		return true
	}
	return false
}

// APIError is a classified failure from an upstream marketplace call.
type APIError struct {
	Code       ErrorCode
	StatusCode int // 0 when the failure happened below HTTP
	URL        string
	Message    string
	Retryable  bool
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api error %s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %s: %s", e.Code, e.Message)
}

// NewAPIError creates an error with the default retry policy for its code.
func NewAPIError(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Retryable: retryableByDefault(code),
	}
}

// classifyStatus maps a non-2xx HTTP status to an APIError.
func classifyStatus(status int, url string) *APIError {
	var code ErrorCode
	switch {
	case status == 429:
		code = ErrRateLimited
	case status >= 500:
		code = ErrServer
	case status == 401 || status == 403:
		code = ErrAuth
	case status == 404:
		code = ErrNotFound
	default:
		code = ErrUnknown
	}

	return &APIError{
		Code:       code,
		StatusCode: status,
		URL:        url,
		Message:    fmt.Sprintf("HTTP %d from %s", status, url),
		Retryable:  retryableByDefault(code),
	}
}
