// Package envelope wraps operation results in the response shape shared by the
// library, the CLI and the REST API.
package envelope

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/zhadevv/anichin/internal/scraper"
)

// Metadata describes the request that produced a response.
type Metadata struct {
	RequestID string    `json:"request_id"`
	Operation string    `json:"operation"`
	SourceURL string    `json:"source_url,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
	ElapsedMS int64     `json:"elapsed_ms"`
}

// NewMetadata starts the metadata of one operation.
func NewMetadata(operation string) Metadata {
	return Metadata{
		RequestID: uuid.NewString(),
		Operation: operation,
		FetchedAt: time.Now().UTC(),
	}
}

// Finish records the time spent since FetchedAt.
func (m *Metadata) Finish() {
	m.ElapsedMS = time.Since(m.FetchedAt).Milliseconds()
}

// Envelope is the type-independent view of a Response.
type Envelope interface {
	Succeeded() bool
	HTTPStatus() int
	Meta() Metadata
	Err() error
	MessageText() string
}

// Response is the result of one operation. A failed response has no data and a
// message; a successful one has data and no message.
type Response[T any] struct {
	Success  bool     `json:"success"`
	Data     *T       `json:"data"`
	Message  *string  `json:"message"`
	Metadata Metadata `json:"metadata"`

	status int
	err    error
}

// OK wraps data in a successful response.
func OK[T any](data T, meta Metadata) *Response[T] {
	return &Response[T]{
		Success:  true,
		Data:     &data,
		Metadata: meta,
		status:   http.StatusOK,
	}
}

// Fail wraps err in a failed response. context names what was attempted,
// e.g. "parse series detail".
func Fail[T any](context string, err error, meta Metadata) *Response[T] {
	msg := FailureMessage(context, err)
	return &Response[T]{
		Message:  &msg,
		Metadata: meta,
		status:   StatusFor(err),
		err:      err,
	}
}

// Invalid wraps a caller input error.
func Invalid[T any](message string, meta Metadata) *Response[T] {
	return &Response[T]{
		Message:  &message,
		Metadata: meta,
		status:   http.StatusBadRequest,
		err:      scraper.NewInvalidInputError(message),
	}
}

// FailureMessage renders the message of a failed operation.
func FailureMessage(context string, err error) string {
	switch scraper.GetErrorCode(err) {
	case scraper.ErrCodeHTTPStatus:
		return fmt.Sprintf("HTTP %d: Failed to %s", scraper.StatusCode(err), context)
	case scraper.ErrCodeInvalidInput:
		return scraper.Describe(err)
	}
	return fmt.Sprintf("Failed to %s: %s", context, scraper.Describe(err))
}

// StatusFor maps an operation error to the HTTP status returned by the API.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, scraper.ErrInvalidInput):
		return http.StatusBadRequest
	case scraper.StatusCode(err) == http.StatusNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// Succeeded reports whether the operation succeeded.
func (r *Response[T]) Succeeded() bool {
	return r.Success
}

// HTTPStatus is the status the REST layer answers with.
func (r *Response[T]) HTTPStatus() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Meta returns the response metadata.
func (r *Response[T]) Meta() Metadata {
	return r.Metadata
}

// Err returns the error behind a failed response.
func (r *Response[T]) Err() error {
	return r.err
}

// MessageText returns the failure message, or "" on success.
func (r *Response[T]) MessageText() string {
	if r.Message == nil {
		return ""
	}
	return *r.Message
}
