package domain

import "errors"

// Domain errors returned by the ledger and session layers. Handlers classify
// them via KindOf and translate the kind into an HTTP status.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrUserInactive       = errors.New("user is inactive")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSameAccount        = errors.New("cannot transfer to the same account")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAmount      = errors.New("amount must be positive with at most two decimal places")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingField       = errors.New("required field is missing")
)

// ErrorKind is the coarse taxonomy of ledger failures.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindInsufficientFunds
	KindUnauthorized
)

// KindOf classifies an error into its taxonomy bucket. Unknown errors are
// reported as KindInternal rather than being folded into a user-facing kind.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrAccountNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrMissingField), errors.Is(err, errMalformedAmount):
		return KindValidation
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrSameAccount),
		errors.Is(err, ErrAccountInactive), errors.Is(err, ErrUserInactive):
		return KindConflict
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrInvalidCredentials):
		return KindUnauthorized
	default:
		return KindInternal
	}
}
