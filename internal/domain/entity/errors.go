package entity

import "errors"

// Not-found errors returned by targeted mutations.
var (
	// ErrWalletNotFound is returned when no wallet is registered under an address.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrTokenNotFound is returned when a wallet has no series for a token.
	ErrTokenNotFound = errors.New("token not found")
	// ErrDateNotFound is returned when a series has no entry for a date.
	ErrDateNotFound = errors.New("date not found")
	// ErrProjectNotFound is returned when the catalog has no project with an id.
	ErrProjectNotFound = errors.New("project not found")
)

// Validation errors.
var (
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidAddress = errors.New("invalid wallet address")
	ErrInvalidDate    = errors.New("invalid date, expected DD/MM/YYYY")
	ErrInvalidDays    = errors.New("invalid number of days")
)

// IsNotFound reports whether err is one of the not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWalletNotFound) ||
		errors.Is(err, ErrTokenNotFound) ||
		errors.Is(err, ErrDateNotFound) ||
		errors.Is(err, ErrProjectNotFound)
}
