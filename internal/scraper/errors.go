// Package scraper holds the error taxonomy shared by the fetch, extract and
// site adapter packages.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Error codes for categorizing scrape failures
const (
	ErrCodeNetwork      = "NETWORK_ERROR"
	ErrCodeTimeout      = "TIMEOUT_ERROR"
	ErrCodeHTTPStatus   = "HTTP_STATUS_ERROR"
	ErrCodeParse        = "PARSE_ERROR"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeConfig       = "CONFIG_ERROR"
)

// Error represents a categorized failure from a scrape operation.
type Error struct {
	Code       string // Error category code
	Message    string // Human-readable message
	URL        string // Upstream URL, when one was requested
	StatusCode int    // Upstream HTTP status for HTTP_STATUS_ERROR
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("[%s] %s (%s)", e.Code, e.Message, e.URL)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on error code so errors.Is works against the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is comparisons
var (
	ErrNetwork      = &Error{Code: ErrCodeNetwork, Message: "network error"}
	ErrTimeout      = &Error{Code: ErrCodeTimeout, Message: "timeout"}
	ErrHTTPStatus   = &Error{Code: ErrCodeHTTPStatus, Message: "unexpected status"}
	ErrParse        = &Error{Code: ErrCodeParse, Message: "parse error"}
	ErrInvalidInput = &Error{Code: ErrCodeInvalidInput, Message: "invalid input"}
	ErrConfig       = &Error{Code: ErrCodeConfig, Message: "configuration error"}
)

// NewNetworkError classifies a transport failure. Timeouts get their own code.
func NewNetworkError(url string, cause error) *Error {
	code, msg := ErrCodeNetwork, causeText(cause)
	if isTimeout(cause) {
		code, msg = ErrCodeTimeout, "timeout exceeded: "+msg
	}
	return &Error{
		Code:      code,
		Message:   msg,
		URL:       url,
		Retryable: true,
		Cause:     cause,
	}
}

// NewStatusError creates an error for a non-success upstream status.
func NewStatusError(url string, status int) *Error {
	return &Error{
		Code:       ErrCodeHTTPStatus,
		Message:    fmt.Sprintf("HTTP %d", status),
		URL:        url,
		StatusCode: status,
		Retryable:  status >= 500,
	}
}

// NewParseError creates an error for markup that could not be parsed at all.
func NewParseError(url string, cause error) *Error {
	return &Error{
		Code:    ErrCodeParse,
		Message: causeText(cause),
		URL:     url,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an error for bad caller input.
func NewInvalidInputError(message string) *Error {
	return &Error{Code: ErrCodeInvalidInput, Message: message}
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *Error {
	return &Error{Code: ErrCodeConfig, Message: message, Cause: cause}
}

// IsRetryable returns whether the error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return IsNetworkError(err)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// Describe returns the human-readable cause of err without code prefixes.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return causeText(err)
}

// IsNetworkError reports whether err looks like a transport failure.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNetwork) || errors.Is(err, ErrTimeout) {
		return true
	}

	var netErr net.Error
	var dnsErr *net.DNSError
	if errors.As(err, &netErr) || errors.As(err, &dnsErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	networkIndicators := []string{
		"connection refused",
		"no such host",
		"timeout",
		"network is unreachable",
		"no route to host",
		"host is down",
		"dial tcp",
		"i/o timeout",
		"connection reset",
		"eof",
		"temporary failure in name resolution",
	}
	for _, indicator := range networkIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// causeText returns the message of the innermost error in the chain.
func causeText(err error) string {
	if err == nil {
		return ""
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
