// internal/rewardpool/errors.go
package rewardpool

import "errors"

var (
	// ErrNotEnabled indicates deposit/claim was attempted before wiring
	// was completed with Enable.
	ErrNotEnabled = errors.New("rewardpool: reward tracking not enabled")

	// ErrNoShares indicates a deposit while no shares exist; funds cannot
	// be priced into a per-share accumulator with a zero denominator.
	ErrNoShares = errors.New("rewardpool: no shares exist")

	// ErrNothingToClaim indicates a claim with zero pending reward.
	ErrNothingToClaim = errors.New("rewardpool: nothing to claim")

	// ErrZeroAmount indicates a zero-amount allocation or deposit.
	ErrZeroAmount = errors.New("rewardpool: zero amount")

	// ErrUnauthorized indicates the caller lacks the required role.
	ErrUnauthorized = errors.New("rewardpool: unauthorized")

	// ErrShareUnderflow is a fatal accounting breach: an upstream notifier
	// reported a transfer larger than the holder's recorded share balance.
	ErrShareUnderflow = errors.New("rewardpool: share balance underflow")

	// ErrOverflow is a fatal numeric-safety breach in accumulator math.
	ErrOverflow = errors.New("rewardpool: arithmetic overflow")

	// ErrNegativePending is a fatal accounting breach: the pending formula
	// produced a negative value for a holder.
	ErrNegativePending = errors.New("rewardpool: negative pending reward")
)
