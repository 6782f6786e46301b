// Package validation holds the form rules that gate every SessionStore mutation.
// A failed rule leaves state unchanged and yields an *Error whose Category
// wraps one of the sentinel errors below, so callers can use errors.Is.
package validation

import "errors"

// Category classifies a validation failure for the view layer.
type Category string

const (
	CategoryMissingField     Category = "missing_field"
	CategoryMismatch         Category = "mismatch"
	CategoryTermsNotAccepted Category = "terms_not_accepted"
	CategoryFilePolicy       Category = "file_policy"
	CategoryMalformedInput   Category = "malformed_input"
	CategoryWeakPassword     Category = "weak_password"
	CategoryNotVerified      Category = "not_verified"
)

var (
	ErrMissingField     = errors.New("missing required field")
	ErrMismatch         = errors.New("confirmation does not match")
	ErrTermsNotAccepted = errors.New("terms not accepted")
	ErrFilePolicy       = errors.New("file rejected by upload policy")
	ErrMalformedInput   = errors.New("malformed input")
	ErrWeakPassword     = errors.New("password too weak")
	ErrNotVerified      = errors.New("contact details not verified")
)

var sentinels = map[Category]error{
	CategoryMissingField:     ErrMissingField,
	CategoryMismatch:         ErrMismatch,
	CategoryTermsNotAccepted: ErrTermsNotAccepted,
	CategoryFilePolicy:       ErrFilePolicy,
	CategoryMalformedInput:   ErrMalformedInput,
	CategoryWeakPassword:     ErrWeakPassword,
	CategoryNotVerified:      ErrNotVerified,
}

// Error is a user-facing validation failure. Message is the notification text.
type Error struct {
	Category Category
	Message  string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return sentinels[e.Category] }

func fail(c Category, msg string) error {
	return &Error{Category: c, Message: msg}
}

// New returns a validation failure for rules checked outside this package.
func New(c Category, msg string) error {
	return fail(c, msg)
}

// CategoryOf returns the category of err, or "" if err is not a validation error.
func CategoryOf(err error) Category {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Category
	}
	return ""
}
