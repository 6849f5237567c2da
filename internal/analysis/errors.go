package analysis

import (
	"errors"
	"fmt"
)

// Code classifies an analysis failure.
type Code string

const (
	// CodeValidation: a required input was missing; nothing was sent.
	CodeValidation Code = "validation_error"
	// CodeTransport: network failure or an unrecognised non-2xx reply.
	CodeTransport       Code = "transport_error"
	CodeRateLimited     Code = "rate_limited"
	CodePaymentRequired Code = "payment_required"
	// CodeNotSellable: the service ran and judged the subject outside its
	// appraisal domain.
	CodeNotSellable       Code = "not_sellable_item"
	CodeMalformedResponse Code = "malformed_response"
	CodeUnexpected        Code = "unexpected_error"
)

// Request fields named by validation errors.
const (
	FieldImage        = "image"
	FieldRegion       = "region"
	FieldCondition    = "condition"
	FieldPurchaseYear = "purchaseYear"
)

// ErrorPayload is the {error, message} body the service uses for failures.
type ErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Error is the single error shape returned by Client.Submit.
type Error struct {
	Code    Code
	Message string
	// Field is set for validation errors.
	Field string
	// Status is the HTTP status when a response was received.
	Status int
	// Payload is the structured error body, when one could be parsed.
	Payload *ErrorPayload
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Code, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code Code) bool {
	ae, ok := AsError(err)
	return ok && ae.Code == code
}

func validationError(field, format string, a ...any) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: fmt.Sprintf(format, a...)}
}
