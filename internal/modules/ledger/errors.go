package ledger

import "errors"

var (
	ErrAccountNotFound    = errors.New("recipient account not found")
	ErrAccountNotApproved = errors.New("recipient account not approved")
	ErrInsufficientCredit = errors.New("insufficient credit")
	ErrInvalidAmount      = errors.New("amount must be positive")

	// ErrBalanceConflict means a concurrent writer changed the balance between
	// read and update. The surrounding transaction should retry.
	ErrBalanceConflict = errors.New("balance changed concurrently")
)
