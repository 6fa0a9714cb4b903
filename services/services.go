// Package services holds the result types shared by the application services.
package services

import (
	"fmt"

	"campus/validators"
)

// APIError is a failure that maps directly onto a JSON error response.
type APIError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// WithCause attaches the underlying error for logging.
func (e *APIError) WithCause(err error) *APIError {
	e.Err = err
	return e
}

// ActionResult is what a form submission reports back to the page.
type ActionResult struct {
	Success     bool
	Message     string
	FieldErrors validators.FieldErrors
	Redirect    string

	// Warning reports a partial failure of an otherwise successful action.
	Warning string
}

func Failed(message string) ActionResult {
	return ActionResult{Message: message}
}

func Invalid(message string, errs validators.FieldErrors) ActionResult {
	return ActionResult{Message: message, FieldErrors: errs}
}

func Succeeded(message string) ActionResult {
	return ActionResult{Success: true, Message: message}
}
