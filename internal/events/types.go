// internal/events/types.go
package events

import (
	"time"
)

// EventType represents the type of audit event.
type EventType string

const (
	// Sale window events
	SaleStarted  EventType = "sale.started"
	SaleEnded    EventType = "sale.ended"
	SalePaused   EventType = "sale.paused"
	SaleUnpaused EventType = "sale.unpaused"

	// Investment lifecycle events
	InvestmentMade     EventType = "investment.made"
	TokensClaimed      EventType = "investment.tokens_claimed"
	InvestmentRefunded EventType = "investment.refunded"
	FundsWithdrawn     EventType = "sale.funds_withdrawn"
	FundsReleased      EventType = "sale.funds_released"

	// Circuit breaker events
	BreakerTripped EventType = "breaker.tripped"
	BreakerReset   EventType = "breaker.reset"

	// Reward pool events
	AllocationRecorded EventType = "reward.allocation_recorded"
	BalanceChanged     EventType = "reward.balance_changed"
	FundsDeposited     EventType = "reward.funds_deposited"
	RewardClaimed      EventType = "reward.claimed"
)

// Event is the base interface for all audit events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// NewBase stamps a base event with the current time.
func NewBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now().UTC()}
}

// SaleEvent covers sale window transitions.
type SaleEvent struct {
	BaseEvent
	StartTime time.Time
	EndTime   time.Time
}

// InvestmentEvent is emitted once per settled investment.
type InvestmentEvent struct {
	BaseEvent
	Investor        string
	LotID           string
	FundingAmount   string // decimal, funding currency units
	AllocatedAmount string // decimal, token units
	Price           string
}

// SettlementEvent covers token claims and refunds over one or more lots.
type SettlementEvent struct {
	BaseEvent
	Investor string
	Amount   string
	Lots     int
}

// TreasuryEvent covers admin withdrawals and the final release sweep.
type TreasuryEvent struct {
	BaseEvent
	To     string
	Amount string
}

// BreakerEvent is emitted when the circuit breaker latches or is reset.
type BreakerEvent struct {
	BaseEvent
	Reason         string
	ObservedPrice  string
	LastValidPrice string
}

// PoolMutationEvent covers every reward pool state change.
type PoolMutationEvent struct {
	BaseEvent
	Holder       string
	From         string
	To           string
	Amount       string
	AccPerShare  string // accumulator after the mutation
	UpdateMarker uint64
}
