// internal/salepool/snapshot.go
package salepool

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"
)

// LotSnapshot is the persisted form of one investment lot.
type LotSnapshot struct {
	ID              string
	FundingAmount   string
	AllocatedAmount string
	Timestamp       time.Time
	Claimed         bool
	Refunded        bool
}

// Snapshot is the persisted form of the sale state machine. Amounts are
// decimal strings.
type Snapshot struct {
	Active    bool
	Paused    bool
	StartTime time.Time
	EndTime   time.Time

	BreakerTripped bool
	LastValidPrice string // empty when no valid price was recorded

	TotalRaised    string
	TotalAllocated string
	Withdrawn      string

	Investors   []string
	Investments map[string][]LotSnapshot
}

// Snapshot captures the sale state for durable storage. Configuration
// (params, roles, breaker thresholds) is not persisted; it comes from config
// at startup.
func (p *Pool) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Snapshot{
		Active:         p.active,
		Paused:         p.paused,
		StartTime:      p.startTime,
		EndTime:        p.endTime,
		BreakerTripped: p.breaker.tripped,
		LastValidPrice: p.lastValidPriceDec(),
		TotalRaised:    p.totalRaised.Dec(),
		TotalAllocated: p.totalAllocated.Dec(),
		Withdrawn:      p.withdrawn.Dec(),
		Investors:      append([]string(nil), p.investors...),
		Investments:    make(map[string][]LotSnapshot, len(p.investments)),
	}
	for investor, lots := range p.investments {
		out := make([]LotSnapshot, len(lots))
		for i, lot := range lots {
			out[i] = LotSnapshot{
				ID:              lot.ID,
				FundingAmount:   lot.FundingAmount.Dec(),
				AllocatedAmount: lot.AllocatedAmount.Dec(),
				Timestamp:       lot.Timestamp,
				Claimed:         lot.Claimed,
				Refunded:        lot.Refunded,
			}
		}
		s.Investments[investor] = out
	}
	return s
}

// Restore replaces the sale state with a previously captured snapshot.
func (p *Pool) Restore(s Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	raised, err := uint256.FromDecimal(s.TotalRaised)
	if err != nil {
		return fmt.Errorf("salepool: restore total raised: %w", err)
	}
	allocated, err := uint256.FromDecimal(s.TotalAllocated)
	if err != nil {
		return fmt.Errorf("salepool: restore total allocated: %w", err)
	}
	withdrawn, err := uint256.FromDecimal(s.Withdrawn)
	if err != nil {
		return fmt.Errorf("salepool: restore withdrawn: %w", err)
	}

	var lastValid *uint256.Int
	if s.LastValidPrice != "" {
		lastValid, err = uint256.FromDecimal(s.LastValidPrice)
		if err != nil {
			return fmt.Errorf("salepool: restore last valid price: %w", err)
		}
	}

	investments := make(map[string][]*Lot, len(s.Investments))
	open := 0
	for investor, lots := range s.Investments {
		out := make([]*Lot, len(lots))
		for i, ls := range lots {
			funding, err := uint256.FromDecimal(ls.FundingAmount)
			if err != nil {
				return fmt.Errorf("salepool: restore lot %s funding: %w", ls.ID, err)
			}
			alloc, err := uint256.FromDecimal(ls.AllocatedAmount)
			if err != nil {
				return fmt.Errorf("salepool: restore lot %s allocation: %w", ls.ID, err)
			}
			out[i] = &Lot{
				ID:              ls.ID,
				FundingAmount:   funding,
				AllocatedAmount: alloc,
				Timestamp:       ls.Timestamp,
				Claimed:         ls.Claimed,
				Refunded:        ls.Refunded,
			}
			if !ls.Claimed && !ls.Refunded {
				open++
			}
		}
		investments[investor] = out
	}

	p.active = s.Active
	p.paused = s.Paused
	p.startTime = s.StartTime
	p.endTime = s.EndTime
	p.breaker.tripped = s.BreakerTripped
	p.breaker.lastValidPrice = lastValid
	p.totalRaised = raised
	p.totalAllocated = allocated
	p.withdrawn = withdrawn
	p.investors = append([]string(nil), s.Investors...)
	p.investments = investments
	p.openLots = open
	return nil
}
