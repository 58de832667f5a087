package types

import "errors"

var (
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountNotFound indicates the referenced bank account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrTransactionNotFound indicates the referenced transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrEmailInUse indicates the email is already registered to another user.
	ErrEmailInUse = errors.New("email already in use")
	// ErrInvalidAmount indicates a zero or negative transfer amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrSelfTransfer indicates source and destination accounts are the same.
	ErrSelfTransfer = errors.New("source and destination accounts must differ")
	// ErrInsufficientFunds indicates a balance adjustment would go negative.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrConflict indicates deletion of an entity that still holds value or
	// has pending activity.
	ErrConflict = errors.New("entity has remaining balance or pending activity")
	// ErrImmutableRecord indicates an amend of a transaction that is no
	// longer pending.
	ErrImmutableRecord = errors.New("completed transaction amount is immutable")
	// ErrInvalidStateTransition indicates a status change outside the legal
	// state machine.
	ErrInvalidStateTransition = errors.New("invalid status transition")
	// ErrTimeout indicates the atomic unit exceeded its bounded deadline and
	// was rolled back. Callers may retry; the engine never does.
	ErrTimeout = errors.New("transfer timed out")
)
