package adapter

import (
	"fmt"
	"net/http"
)

// HandlerError is a terminal failure of an adapter call. StatusCode is the
// HTTP status the caller should see.
type HandlerError interface {
	error
	StatusCode() int
	Message() string
}

func formatError(code int, message string) string {
	return fmt.Sprintf("Error: %d, %s", code, message)
}

// UnsupportedContentTypeError rejects a request body that is not npy.
type UnsupportedContentTypeError struct {
	ContentType string
}

func (e *UnsupportedContentTypeError) StatusCode() int {
	return http.StatusExpectationFailed
}

func (e *UnsupportedContentTypeError) Message() string {
	contentType := e.ContentType
	if contentType == "" {
		contentType = "Unknown"
	}
	return fmt.Sprintf("Unsupported content type %q", contentType)
}

func (e *UnsupportedContentTypeError) Error() string {
	return formatError(e.StatusCode(), e.Message())
}

// BackendError carries a non-200 backend reply.
type BackendError struct {
	Status int
	Body   string
}

func (e *BackendError) StatusCode() int {
	return e.Status
}

func (e *BackendError) Message() string {
	return e.Body
}

func (e *BackendError) Error() string {
	return formatError(e.StatusCode(), e.Message())
}

// MalformedPayloadError reports a body that claimed to be npy but could not
// be decoded or expressed as JSON.
type MalformedPayloadError struct {
	Err error
}

func (e *MalformedPayloadError) StatusCode() int {
	return http.StatusBadRequest
}

func (e *MalformedPayloadError) Message() string {
	return fmt.Sprintf("Malformed %s payload: %v", ContentTypeNPY, e.Err)
}

func (e *MalformedPayloadError) Error() string {
	return formatError(e.StatusCode(), e.Message())
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}
