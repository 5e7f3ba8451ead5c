package domain

import "errors"

// Error kinds. Every business error wraps exactly one of them.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInsufficientCredit = errors.New("insufficient credit")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Error is a business rule violation with a human readable message
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Customer errors
var (
	ErrCustomerNotFound   = newError(ErrNotFound, "customer not found")
	ErrInvalidCreditLimit = newError(ErrInvalidArgument, "credit limit must not be negative")
)

// Loan errors
var (
	ErrLoanNotFound        = newError(ErrNotFound, "loan not found")
	ErrInvalidInstallments = newError(ErrInvalidArgument, "invalid installment number, allowed values are only 6, 9, 12 or 24")
	ErrInvalidInterestRate = newError(ErrInvalidArgument, "invalid interest rate, it must be between 0.1 and 0.5")
	ErrInvalidLoanAmount   = newError(ErrInvalidArgument, "loan amount must be greater than 0")
	ErrInvalidPayment      = newError(ErrInvalidArgument, "payment amount must be greater than 0")
	ErrNotEnoughCredit     = newError(ErrInsufficientCredit, "customer does not have enough credit for this loan")
)

// Auth errors
var (
	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid credentials")
	ErrUserInactive       = newError(ErrUnauthorized, "user account is inactive")
)
