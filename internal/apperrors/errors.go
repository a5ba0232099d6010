package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
// Repositories return it for a missing row; it is an expected outcome, not a fault.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrAccountNotFound is returned by every account use case that starts with a lookup
// of an id that has no stored record.
var ErrAccountNotFound = errors.New("account not found")

// ErrInvalidAccountOperation is the sentinel matched by InvalidAccountOperationError.
var ErrInvalidAccountOperation = errors.New("invalid account operation")

// ErrInsufficientCredit is the reason attached to a loan larger than the available credit.
var ErrInsufficientCredit = errors.New("insufficient available credit")

// ErrInsufficientFunds is the reason attached to a transfer larger than the source balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidAmount indicates a non-positive monetary amount.
var ErrInvalidAmount = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)

// ErrTransferFailed wraps any persistence failure raised while committing a transfer.
var ErrTransferFailed = errors.New("transfer failed")

// ErrStorageFailure indicates the backing store failed for reasons unrelated to
// business rules (connectivity, timeouts, constraint violations).
var ErrStorageFailure = errors.New("storage failure")

// ErrConcurrentUpdate indicates that an account was modified by someone else
// between load and save.
var ErrConcurrentUpdate = errors.New("account was modified concurrently")

// InvalidAccountOperationError is raised when an operation is not allowed for the
// current state of an account. The message only identifies the account; the
// concrete reason is available through errors.Is.
type InvalidAccountOperationError struct {
	AccountID string
	Reason    error
}

// NewInvalidAccountOperation builds an InvalidAccountOperationError.
func NewInvalidAccountOperation(accountID string, reason error) *InvalidAccountOperationError {
	return &InvalidAccountOperationError{AccountID: accountID, Reason: reason}
}

func (e *InvalidAccountOperationError) Error() string {
	return fmt.Sprintf("Invalid account - [id: %s]", e.AccountID)
}

func (e *InvalidAccountOperationError) Unwrap() []error {
	if e.Reason == nil {
		return []error{ErrInvalidAccountOperation}
	}
	return []error{ErrInvalidAccountOperation, e.Reason}
}

// AppError carries a status-like code together with the wrapped infrastructure error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}
