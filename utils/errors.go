package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is an error with an HTTP status and a message safe to show to clients.
type APIError struct {
	Status  int               `json:"-"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
	// Data is merged into the response body next to the message.
	Data map[string]any `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewAPIError(status int, message string) *APIError {
	return &APIError{Status: status, Message: message}
}

func BadRequest(message string) *APIError   { return NewAPIError(http.StatusBadRequest, message) }
func Unauthorized(message string) *APIError { return NewAPIError(http.StatusUnauthorized, message) }
func Forbidden(message string) *APIError    { return NewAPIError(http.StatusForbidden, message) }
func NotFound(message string) *APIError     { return NewAPIError(http.StatusNotFound, message) }
func TooManyRequests(message string) *APIError {
	return NewAPIError(http.StatusTooManyRequests, message)
}

// ValidationFailed builds a 400 carrying field-level messages.
func ValidationFailed(fields map[string]string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: "Validation failed", Errors: fields}
}

// AsAPIError unwraps err into an *APIError when it carries one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
