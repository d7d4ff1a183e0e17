// internal/rewardpool/pool.go
package rewardpool

import (
	"math/big"
	"sync"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/tokenlaunch/launchpool/internal/events"
	"github.com/tokenlaunch/launchpool/internal/guard"
	"github.com/tokenlaunch/launchpool/internal/metrics"
)

// Precision scales the accumulator: accRewardPerShare is reward units per
// share, fixed-point multiplied by 1e18.
var Precision = uint256.MustFromDecimal("1000000000000000000")

// Transferrer pays out reward currency to a holder. The call is an external
// effect and may run arbitrary recipient code; the pool's reentrancy guard
// is held across it.
type Transferrer interface {
	TransferReward(to string, amount *uint256.Int) error
}

// PoolInfo is the global accumulator state.
type PoolInfo struct {
	TotalAllocated    *uint256.Int // sum of all allocations, monotonic
	AccRewardPerShare *uint256.Int // Precision-scaled, monotonic
	TotalDeposited    *uint256.Int // running sum of deposits
	LastUpdateMarker  uint64       // audit-only sequence, not used in math
}

// HolderRecord tracks one holder's reward-weighting basis.
//
// RewardDebt is interpreted as a two's-complement signed 256-bit value: a
// transfer out of a holder who has accrued-but-unclaimed reward drives the
// debt below zero, which is exactly what keeps the holder's pending reward
// intact across the transfer.
type HolderRecord struct {
	ShareBalance *uint256.Int
	RewardDebt   *uint256.Int
}

// Pool is the reward accounting engine: a MasterChef-style accumulator with
// lazy per-holder settlement.
type Pool struct {
	mu    sync.Mutex
	guard guard.Guard

	info    PoolInfo
	holders map[string]*HolderRecord

	admin       string
	enabled     bool
	transferrer Transferrer

	logger  *zap.Logger
	bus     *events.Bus
	metrics *metrics.Collector

	seq uint64 // source for LastUpdateMarker
}

// Option configures optional pool collaborators.
type Option func(*Pool)

// WithEventBus attaches an audit event bus.
func WithEventBus(bus *events.Bus) Option {
	return func(p *Pool) { p.bus = bus }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(p *Pool) { p.metrics = m }
}

// New creates a reward pool. The pool accepts allocation and balance-change
// notifications immediately, but deposits and claims fail with ErrNotEnabled
// until Enable completes the wiring.
func New(admin string, logger *zap.Logger, opts ...Option) *Pool {
	p := &Pool{
		info: PoolInfo{
			TotalAllocated:    uint256.NewInt(0),
			AccRewardPerShare: uint256.NewInt(0),
			TotalDeposited:    uint256.NewInt(0),
		},
		holders: make(map[string]*HolderRecord),
		admin:   admin,
		logger:  logger.Named("rewardpool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enable completes wiring: installs the payout capability and opens the
// deposit/claim surface.
func (p *Pool) Enable(t Transferrer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t == nil {
		return ErrNotEnabled
	}
	p.transferrer = t
	p.enabled = true
	p.logger.Info("Reward tracking enabled")
	return nil
}

// Enabled reports whether wiring is complete.
func (p *Pool) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Info returns a copy of the global accumulator state.
func (p *Pool) Info() PoolInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolInfo{
		TotalAllocated:    p.info.TotalAllocated.Clone(),
		AccRewardPerShare: p.info.AccRewardPerShare.Clone(),
		TotalDeposited:    p.info.TotalDeposited.Clone(),
		LastUpdateMarker:  p.info.LastUpdateMarker,
	}
}

// OnAllocation records a new token allocation from a settled investment.
// Called exactly once per settlement by the sale pool.
func (p *Pool) OnAllocation(holder string, amount *uint256.Int) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()

	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Newly allocated tokens have accrued nothing so far: pricing the
	// share delta into the debt at the current accumulator leaves any
	// previously accrued pending untouched.
	debtDelta, err := mulDiv(amount, p.info.AccRewardPerShare, Precision)
	if err != nil {
		return err
	}

	total := new(uint256.Int)
	if _, overflow := total.AddOverflow(p.info.TotalAllocated, amount); overflow {
		return ErrOverflow
	}

	rec := p.record(holder)
	rec.ShareBalance.Add(rec.ShareBalance, amount)
	rec.RewardDebt.Add(rec.RewardDebt, debtDelta)
	p.info.TotalAllocated = total
	p.advanceMarker()

	p.logger.Debug("Allocation recorded",
		zap.String("holder", holder),
		zap.String("amount", amount.Dec()),
		zap.Uint64("marker", p.info.LastUpdateMarker))
	p.publish(events.PoolMutationEvent{
		BaseEvent:    events.NewBase(events.AllocationRecorded),
		Holder:       holder,
		Amount:       amount.Dec(),
		AccPerShare:  p.info.AccRewardPerShare.Dec(),
		UpdateMarker: p.info.LastUpdateMarker,
	})
	p.updateGauges()
	return nil
}

// OnBalanceChange mirrors a committed token transfer into the reward basis.
// An empty from means mint (frozen upstream; tolerated here for the burn
// edge), an empty to means burn.
func (p *Pool) OnBalanceChange(from, to string, amount *uint256.Int) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()

	if amount == nil || amount.IsZero() {
		return nil
	}
	// Self-transfer is an exact no-op on both share and debt; short-circuit
	// rather than applying two proportional adjustments.
	if from != "" && from == to {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	debtDelta, err := mulDiv(amount, p.info.AccRewardPerShare, Precision)
	if err != nil {
		return err
	}

	if from != "" {
		rec, ok := p.holders[from]
		if !ok || rec.ShareBalance.Lt(amount) {
			p.logger.Error("Share balance underflow on transfer",
				zap.String("from", from),
				zap.String("amount", amount.Dec()))
			return ErrShareUnderflow
		}
		rec.ShareBalance.Sub(rec.ShareBalance, amount)
		// Two's-complement subtraction; the debt may legitimately go
		// negative, preserving the sender's accrued pending.
		rec.RewardDebt.Sub(rec.RewardDebt, debtDelta)
	}
	if to != "" {
		rec := p.record(to)
		rec.ShareBalance.Add(rec.ShareBalance, amount)
		rec.RewardDebt.Add(rec.RewardDebt, debtDelta)
	}
	p.advanceMarker()

	p.publish(events.PoolMutationEvent{
		BaseEvent:    events.NewBase(events.BalanceChanged),
		From:         from,
		To:           to,
		Amount:       amount.Dec(),
		AccPerShare:  p.info.AccRewardPerShare.Dec(),
		UpdateMarker: p.info.LastUpdateMarker,
	})
	return nil
}

// DepositFunds prices new reward funds into the accumulator. Admin only.
// The integer-division remainder is forfeited dust, bounded by
// totalAllocated-1 raw units per deposit.
func (p *Pool) DepositFunds(caller string, amount *uint256.Int) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()

	if caller != p.admin {
		return ErrUnauthorized
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		return ErrNotEnabled
	}
	if p.info.TotalAllocated.IsZero() {
		return ErrNoShares
	}

	perShare, err := mulDiv(amount, Precision, p.info.TotalAllocated)
	if err != nil {
		return err
	}

	acc := new(uint256.Int)
	if _, overflow := acc.AddOverflow(p.info.AccRewardPerShare, perShare); overflow {
		return ErrOverflow
	}
	deposited := new(uint256.Int)
	if _, overflow := deposited.AddOverflow(p.info.TotalDeposited, amount); overflow {
		return ErrOverflow
	}

	p.info.AccRewardPerShare = acc
	p.info.TotalDeposited = deposited
	p.advanceMarker()

	p.logger.Info("Reward funds deposited",
		zap.String("amount", amount.Dec()),
		zap.String("acc_per_share", acc.Dec()),
		zap.Uint64("marker", p.info.LastUpdateMarker))
	p.publish(events.PoolMutationEvent{
		BaseEvent:    events.NewBase(events.FundsDeposited),
		Amount:       amount.Dec(),
		AccPerShare:  acc.Dec(),
		UpdateMarker: p.info.LastUpdateMarker,
	})
	p.updateGauges()
	return nil
}

// PendingReward returns the holder's lazily computed claimable reward.
// Holders without a record have zero pending.
func (p *Pool) PendingReward(holder string) *uint256.Int {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, ok := p.holders[holder]
	if !ok {
		return uint256.NewInt(0)
	}
	pending, err := p.pending(rec)
	if err != nil {
		p.logger.Error("Pending computation failed",
			zap.String("holder", holder), zap.Error(err))
		return uint256.NewInt(0)
	}
	return pending
}

// Claim settles and pays out the caller's pending reward. Fails with
// ErrNothingToClaim when pending is exactly zero. The payout is performed
// with the reentrancy guard held; a failed payout rolls the settlement back.
func (p *Pool) Claim(holder string) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()

	p.mu.Lock()
	if !p.enabled || p.transferrer == nil {
		p.mu.Unlock()
		return ErrNotEnabled
	}
	rec, ok := p.holders[holder]
	if !ok {
		p.mu.Unlock()
		return ErrNothingToClaim
	}
	pending, err := p.pending(rec)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	if pending.IsZero() {
		p.mu.Unlock()
		return ErrNothingToClaim
	}

	// Fully settle before the external transfer: debt becomes exactly the
	// holder's current earned value, leaving nothing owed.
	prevDebt := rec.RewardDebt.Clone()
	earned, err := mulDiv(rec.ShareBalance, p.info.AccRewardPerShare, Precision)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	rec.RewardDebt.Set(earned)
	p.advanceMarker()
	marker := p.info.LastUpdateMarker
	p.mu.Unlock()

	if err := p.transferrer.TransferReward(holder, pending); err != nil {
		// Roll back the settlement so the reward stays claimable.
		p.mu.Lock()
		rec.RewardDebt.Set(prevDebt)
		p.mu.Unlock()
		p.logger.Error("Reward payout failed",
			zap.String("holder", holder),
			zap.String("amount", pending.Dec()),
			zap.Error(err))
		return err
	}

	p.logger.Info("Reward claimed",
		zap.String("holder", holder),
		zap.String("amount", pending.Dec()))
	p.publish(events.PoolMutationEvent{
		BaseEvent:    events.NewBase(events.RewardClaimed),
		Holder:       holder,
		Amount:       pending.Dec(),
		UpdateMarker: marker,
	})
	return nil
}

// record returns the holder's record, creating it lazily. Records are never
// removed; they are a permanent audit trail.
func (p *Pool) record(holder string) *HolderRecord {
	rec, ok := p.holders[holder]
	if !ok {
		rec = &HolderRecord{
			ShareBalance: uint256.NewInt(0),
			RewardDebt:   uint256.NewInt(0),
		}
		p.holders[holder] = rec
	}
	return rec
}

// pending computes share*acc/Precision - debt with the debt interpreted as
// signed. A negative result is a fatal accounting breach.
func (p *Pool) pending(rec *HolderRecord) (*uint256.Int, error) {
	earned, err := mulDiv(rec.ShareBalance, p.info.AccRewardPerShare, Precision)
	if err != nil {
		return nil, err
	}
	pending := new(uint256.Int).Sub(earned, rec.RewardDebt)
	if pending.Sign() < 0 {
		return nil, ErrNegativePending
	}
	return pending, nil
}

// mulDiv computes x*y/d with a 512-bit intermediate, rejecting results that
// do not fit in 256 bits.
func mulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	z := new(uint256.Int)
	if _, overflow := z.MulDivOverflow(x, y, d); overflow {
		return nil, ErrOverflow
	}
	// Results at or above 2^255 would be indistinguishable from negative
	// values in the signed debt arithmetic.
	if z.Sign() < 0 {
		return nil, ErrOverflow
	}
	return z, nil
}

func (p *Pool) advanceMarker() {
	p.seq++
	p.info.LastUpdateMarker = p.seq
}

func (p *Pool) publish(ev events.Event) {
	if p.bus != nil {
		_ = p.bus.Publish(ev)
	}
}

func (p *Pool) updateGauges() {
	if p.metrics == nil {
		return
	}
	p.metrics.UpdatePoolState(
		gaugeValue(p.info.TotalAllocated),
		gaugeValue(p.info.TotalDeposited),
		gaugeValue(p.info.AccRewardPerShare),
	)
}

func gaugeValue(z *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(z.ToBig()).Float64()
	return f
}
