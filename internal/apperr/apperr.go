// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAlreadyExists
	KindForbidden
	KindSelfReference
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindForbidden:
		return "forbidden"
	case KindSelfReference:
		return "self_reference"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Machine-readable codes.
const (
	CodeEmptyIngredients      = "EMPTY_INGREDIENTS"
	CodeDuplicateIngredient   = "DUPLICATE_INGREDIENT"
	CodeUnknownIngredient     = "UNKNOWN_INGREDIENT"
	CodeAmountOutOfRange      = "AMOUNT_OUT_OF_RANGE"
	CodeCookingTimeOutOfRange = "COOKING_TIME_OUT_OF_RANGE"
	CodeDuplicateRecipeName   = "DUPLICATE_RECIPE_NAME"
	CodeUnknownTag            = "UNKNOWN_TAG"
	CodeDuplicateTag          = "DUPLICATE_TAG"
	CodeImageRequired         = "IMAGE_REQUIRED"
	CodeInvalidImage          = "INVALID_IMAGE"
	CodeInvalidColor          = "INVALID_COLOR"
	CodeInvalidInput          = "INVALID_INPUT"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeWrongPassword         = "WRONG_PASSWORD"
	CodeNotFound              = "NOT_FOUND"
	CodeAlreadyExists         = "ALREADY_EXISTS"
	CodeForbidden             = "FORBIDDEN"
	CodeSelfReference         = "SELF_REFERENCE"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeInternal              = "INTERNAL"
)

// Error is the single error type returned by services.
type Error struct {
	Kind    Kind
	Code    string
	Field   string
	// Ref identifies the offending item, e.g. an ingredient id.
	Ref     any
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind so errors.Is(err, ErrNotFound) works for any
// NotFound error regardless of code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
	ErrForbidden     = &Error{Kind: KindForbidden}
	ErrSelfReference = &Error{Kind: KindSelfReference}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized}
)

// Validation builds a field-level validation error.
func Validation(code, field, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Field: field, Message: message}
}

// ValidationRef builds a validation error that points at one item of a collection.
func ValidationRef(code, field string, ref any, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Field: field, Ref: ref, Message: message}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: what + " not found"}
}

func AlreadyExists(message string) *Error {
	return &Error{Kind: KindAlreadyExists, Code: CodeAlreadyExists, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: CodeForbidden, Message: message}
}

func SelfReference(message string) *Error {
	return &Error{Kind: KindSelfReference, Code: CodeSelfReference, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: CodeUnauthorized, Message: message}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "internal server error", Err: err}
}

// From extracts an *Error from err, wrapping anything else as internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// HTTPStatus maps an error to its response status.
func HTTPStatus(err error) int {
	switch From(err).Kind {
	case KindValidation, KindAlreadyExists, KindSelfReference:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
