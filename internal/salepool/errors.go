// internal/salepool/errors.go
package salepool

import "errors"

var (
	// ErrAlreadyActive indicates Start while the sale is already running.
	ErrAlreadyActive = errors.New("salepool: sale already active")

	// ErrNotActive indicates End/Pause/Unpause/Invest outside an active sale.
	ErrNotActive = errors.New("salepool: sale not active")

	// ErrAlreadyPaused indicates Pause while already paused.
	ErrAlreadyPaused = errors.New("salepool: sale already paused")

	// ErrNotPaused indicates Unpause while not paused.
	ErrNotPaused = errors.New("salepool: sale not paused")

	// ErrSalePaused indicates Invest while the sale is paused.
	ErrSalePaused = errors.New("salepool: sale paused")

	// ErrSaleWindowClosed indicates Invest outside [startTime, endTime].
	ErrSaleWindowClosed = errors.New("salepool: outside sale window")

	// ErrBreakerTripped indicates the circuit breaker latch is set.
	ErrBreakerTripped = errors.New("salepool: circuit breaker tripped")

	// ErrStalePrice indicates the quote timestamp exceeded the staleness
	// threshold; the breaker latches.
	ErrStalePrice = errors.New("salepool: stale oracle price")

	// ErrPriceDeviation indicates the quote moved too far from the last
	// valid price; the breaker latches.
	ErrPriceDeviation = errors.New("salepool: excessive price deviation")

	// ErrPriceOutOfBounds indicates the quote violates configured bounds.
	ErrPriceOutOfBounds = errors.New("salepool: price outside configured bounds")

	// ErrBelowMinInvestment indicates funding below the minimum.
	ErrBelowMinInvestment = errors.New("salepool: below minimum investment")

	// ErrAboveMaxInvestment indicates funding above the maximum.
	ErrAboveMaxInvestment = errors.New("salepool: above maximum investment")

	// ErrConversionOverflow indicates the funding-to-token conversion does
	// not fit in 256 bits.
	ErrConversionOverflow = errors.New("salepool: conversion overflow")

	// ErrTotalsOverflow indicates an aggregate sale counter would exceed
	// 256 bits.
	ErrTotalsOverflow = errors.New("salepool: sale totals overflow")

	// ErrZeroAllocation indicates the conversion truncated to zero tokens.
	ErrZeroAllocation = errors.New("salepool: allocation rounds to zero")

	// ErrNoClaimableLots indicates no lot has passed the claim delay.
	ErrNoClaimableLots = errors.New("salepool: no claimable lots")

	// ErrNoRefundableLots indicates no lot is inside the refund period.
	ErrNoRefundableLots = errors.New("salepool: no refundable lots")

	// ErrLotNotRefundable indicates the indexed lot is claimed, refunded,
	// or past the refund period.
	ErrLotNotRefundable = errors.New("salepool: lot not refundable")

	// ErrIndexOutOfRange indicates a lot index past the investor's list.
	ErrIndexOutOfRange = errors.New("salepool: lot index out of range")

	// ErrExceedsWithdrawable indicates a withdrawal above the matured sum.
	ErrExceedsWithdrawable = errors.New("salepool: amount exceeds withdrawable")

	// ErrNothingToWithdraw indicates a zero withdrawable sum.
	ErrNothingToWithdraw = errors.New("salepool: nothing to withdraw")

	// ErrNothingToRelease indicates an empty funding custody at release.
	ErrNothingToRelease = errors.New("salepool: nothing to release")

	// ErrReleaseNotReady indicates release before endTime + release delay.
	ErrReleaseNotReady = errors.New("salepool: release delay not elapsed")

	// ErrTrackingNotWired indicates release without a reward tracker.
	ErrTrackingNotWired = errors.New("salepool: reward tracking not wired")

	// ErrUnauthorized indicates the caller lacks the required role.
	ErrUnauthorized = errors.New("salepool: unauthorized")

	// ErrZeroAmount indicates a zero funding or withdrawal amount.
	ErrZeroAmount = errors.New("salepool: zero amount")
)
