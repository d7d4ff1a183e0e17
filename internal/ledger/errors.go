// internal/ledger/errors.go
package ledger

import "errors"

var (
	// ErrNotAllowlisted indicates a transfer party is not in the membership set.
	ErrNotAllowlisted = errors.New("ledger: account not allowlisted")

	// ErrInsufficientBalance indicates the sender's balance is too small.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrZeroAmount indicates a zero-amount transfer, mint, or burn.
	ErrZeroAmount = errors.New("ledger: zero amount")

	// ErrEmptyAccount indicates an empty account identifier.
	ErrEmptyAccount = errors.New("ledger: empty account")

	// ErrMintingFrozen indicates minting was permanently frozen.
	ErrMintingFrozen = errors.New("ledger: minting frozen")

	// ErrUnauthorized indicates the caller lacks the required role.
	ErrUnauthorized = errors.New("ledger: unauthorized")

	// ErrOverflow indicates a balance addition overflowed.
	ErrOverflow = errors.New("ledger: balance overflow")
)
