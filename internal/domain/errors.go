package domain

import "errors"

// Request-level error taxonomy. All of these are recovered at the API
// boundary and surfaced as a user-facing message.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")              // qty*price exceeds cash
	ErrInsufficientShares = errors.New("insufficient shares")             // sell qty exceeds holding
	ErrInvalidCredentials = errors.New("invalid username and/or password") // same error for unknown user and bad password
	ErrUsernameTaken      = errors.New("username already exists")
	ErrSymbolNotFound     = errors.New("invalid stock symbol")  // oracle does not know the symbol
	ErrOracleUnavailable  = errors.New("quote service unavailable") // transient lookup failure, retryable
)

// ValidationError reports malformed user input (symbol, quantity,
// amount, password). User-correctable.
type ValidationError struct {
	Field  string // Offending field
	Reason string // Human-readable reason
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Validation creates a ValidationError for a field
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
