package domain

import "errors"

var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidRate        = errors.New("correction rate must be greater than zero")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateOwnerName = errors.New("owner name already in use")
	ErrDuplicateOwnerID   = errors.New("owner id already in use")
	ErrInvalidID          = errors.New("invalid national id")
	ErrWrongAccountType   = errors.New("operation not supported for this account type")
	ErrAlreadyRegistered  = errors.New("pix key already registered")
	ErrKeyNotRegistered   = errors.New("pix key not registered")

	// ErrInvalidState is returned when rebuilding an account from persisted
	// data that breaks a balance invariant.
	ErrInvalidState = errors.New("invalid account state")
)

var recoverable = []error{
	ErrInvalidAmount,
	ErrInvalidRate,
	ErrInsufficientFunds,
	ErrAccountNotFound,
	ErrDuplicateOwnerName,
	ErrDuplicateOwnerID,
	ErrInvalidID,
	ErrWrongAccountType,
	ErrAlreadyRegistered,
	ErrKeyNotRegistered,
}

// IsDomainError reports whether err wraps one of the business rule failures
// a caller is expected to render and recover from.
func IsDomainError(err error) bool {
	for _, target := range recoverable {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
