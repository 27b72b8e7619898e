package wallet

import "errors"

var (
	// ErrNotFound indicates the owner has no wallet.
	ErrNotFound = errors.New("wallet not found")

	// ErrAlreadyExists indicates a second wallet was created for the owner
	// concurrently. Activation retries resolve it by re-reading.
	ErrAlreadyExists = errors.New("wallet already exists")

	// ErrDisabled rejects balance operations on an inactive wallet.
	ErrDisabled = errors.New("wallet disabled")

	// ErrAlreadyDisabled rejects disabling a wallet that is not enabled.
	ErrAlreadyDisabled = errors.New("wallet already disabled")

	// ErrInvalidAmount rejects non-positive deposit or withdrawal amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientBalance rejects withdrawals exceeding the current balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrConflict indicates the wallet row changed between read and write.
	// The engine retries a bounded number of times before surfacing it.
	ErrConflict = errors.New("concurrent wallet update")
)
