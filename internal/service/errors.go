package service

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can pick a response without
// matching individual reasons.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindAuth         Kind = "auth"
	KindAccessDenied Kind = "access_denied"
	KindInternal     Kind = "internal"
)

// Error is a typed booking failure. Two Errors match under errors.Is when
// their Code is equal, so a detailed validation message still matches
// ErrValidation.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrValidation         = &Error{KindValidation, "validation_error", "invalid input"}
	ErrInvalidCardNumber  = &Error{KindValidation, "invalid_card_number", "card number must be exactly 16 digits"}
	ErrMissingWalletID    = &Error{KindValidation, "missing_wallet_id", "wallet ID is required"}
	ErrNoExhibitionsAdded = &Error{KindValidation, "no_exhibitions_added", "select at least one new exhibition"}

	ErrDuplicateEmail   = &Error{KindConflict, "duplicate_email", "email is already registered"}
	ErrEmailTaken       = &Error{KindConflict, "email_taken", "email is used by another account"}
	ErrWorkshopFull     = &Error{KindConflict, "workshop_full", "workshop is full or already booked"}
	ErrAlreadyAllAccess = &Error{KindConflict, "already_all_access", "ticket already grants all-access"}

	ErrNotFound           = &Error{KindNotFound, "not_found", "not found"}
	ErrWorkshopNotFound   = &Error{KindNotFound, "workshop_not_found", "workshop not found"}
	ErrInvalidReservation = &Error{KindNotFound, "invalid_reservation", "reservation not found or already cancelled"}

	ErrInvalidCredentials = &Error{KindAuth, "invalid_credentials", "invalid email or password"}
	ErrSessionInvalid     = &Error{KindAuth, "session_invalid", "session is no longer valid"}

	ErrAccessDenied = &Error{KindAccessDenied, "access_denied", "access denied"}
)

func validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Code: ErrValidation.Code, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a booking error. Anything that is not an
// *Error (storage failures included) is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the machine-readable reason of a booking error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal_error"
}
