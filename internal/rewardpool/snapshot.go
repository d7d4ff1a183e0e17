// internal/rewardpool/snapshot.go
package rewardpool

import (
	"fmt"

	"github.com/holiman/uint256"
)

// HolderSnapshot is the persisted form of one holder record. Amounts are
// decimal strings; the debt string is the raw two's-complement value.
type HolderSnapshot struct {
	ShareBalance string
	RewardDebt   string
}

// Snapshot is the persisted form of the whole pool.
type Snapshot struct {
	TotalAllocated    string
	AccRewardPerShare string
	TotalDeposited    string
	LastUpdateMarker  uint64
	// Enabled records whether payouts were wired when the snapshot was
	// taken. Informational only: Restore never applies it, the host
	// re-enables with a live transferrer.
	Enabled bool
	Holders map[string]HolderSnapshot
}

// Snapshot captures the pool state for durable storage.
func (p *Pool) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Snapshot{
		TotalAllocated:    p.info.TotalAllocated.Dec(),
		AccRewardPerShare: p.info.AccRewardPerShare.Dec(),
		TotalDeposited:    p.info.TotalDeposited.Dec(),
		LastUpdateMarker:  p.info.LastUpdateMarker,
		Enabled:           p.enabled,
		Holders:           make(map[string]HolderSnapshot, len(p.holders)),
	}
	for holder, rec := range p.holders {
		s.Holders[holder] = HolderSnapshot{
			ShareBalance: rec.ShareBalance.Dec(),
			RewardDebt:   rec.RewardDebt.Dec(),
		}
	}
	return s
}

// Restore replaces the pool state with a previously captured snapshot.
// The enabled flag is not restored; wiring is re-established by the host
// calling Enable with a live transferrer.
func (p *Pool) Restore(s Snapshot) error {
	total, err := uint256.FromDecimal(s.TotalAllocated)
	if err != nil {
		return fmt.Errorf("rewardpool: restore total allocated: %w", err)
	}
	acc, err := uint256.FromDecimal(s.AccRewardPerShare)
	if err != nil {
		return fmt.Errorf("rewardpool: restore accumulator: %w", err)
	}
	deposited, err := uint256.FromDecimal(s.TotalDeposited)
	if err != nil {
		return fmt.Errorf("rewardpool: restore total deposited: %w", err)
	}

	holders := make(map[string]*HolderRecord, len(s.Holders))
	for holder, hs := range s.Holders {
		share, err := uint256.FromDecimal(hs.ShareBalance)
		if err != nil {
			return fmt.Errorf("rewardpool: restore holder %s share: %w", holder, err)
		}
		debt, err := uint256.FromDecimal(hs.RewardDebt)
		if err != nil {
			return fmt.Errorf("rewardpool: restore holder %s debt: %w", holder, err)
		}
		holders[holder] = &HolderRecord{ShareBalance: share, RewardDebt: debt}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.info.TotalAllocated = total
	p.info.AccRewardPerShare = acc
	p.info.TotalDeposited = deposited
	p.info.LastUpdateMarker = s.LastUpdateMarker
	p.seq = s.LastUpdateMarker
	p.holders = holders
	return nil
}
