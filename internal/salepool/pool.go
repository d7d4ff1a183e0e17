// internal/salepool/pool.go
package salepool

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/tokenlaunch/launchpool/internal/events"
	"github.com/tokenlaunch/launchpool/internal/guard"
	"github.com/tokenlaunch/launchpool/internal/metrics"
	"github.com/tokenlaunch/launchpool/internal/oracle"
	"github.com/tokenlaunch/launchpool/internal/types"
)

// fundingScale is the 1e18 factor in the funding-to-token conversion.
var fundingScale = uint256.MustFromDecimal("1000000000000000000")

// Book is the balance backend the sale pool moves value through. Satisfied
// by the ledger package.
type Book interface {
	Transfer(from, to string, amount *uint256.Int) error
	Balance(account string) *uint256.Int
}

// Params are the sale's fixed operating parameters.
type Params struct {
	MinInvestment   *uint256.Int
	MaxInvestment   *uint256.Int
	ClaimDelay      time.Duration
	RefundPeriod    time.Duration
	WithdrawalDelay time.Duration
	ReleaseDelay    time.Duration
	OracleAsset     string
}

// Lot is one discrete investment. Claimed and Refunded are mutually
// exclusive terminal flags; a lot is never deleted.
type Lot struct {
	ID              string
	FundingAmount   *uint256.Int
	AllocatedAmount *uint256.Int
	Timestamp       time.Time
	Claimed         bool
	Refunded        bool
}

// Deps wires the pool's collaborators at construction time.
type Deps struct {
	Roles  types.Roles
	Params Params

	FundingBook    Book
	TokenBook      Book
	FundingCustody string
	TokenCustody   string
	RewardTreasury string

	Oracle  oracle.Oracle
	Tracker types.RewardTracker // optional; nil means tracking not wired

	Logger  *zap.Logger
	Bus     *events.Bus
	Metrics *metrics.Collector

	Now func() time.Time // optional test clock
}

// Pool is the investment state machine: Inactive -> Active -> Inactive,
// re-enterable, with an orthogonal paused flag valid only while active.
//
// The guard rejects reentrant mutating calls; the mutex serializes state
// access against concurrent readers such as the engine's snapshot ticker.
// Mutating operations take the guard first, then the mutex, so a hostile
// transfer callback re-entering a guarded operation is rejected before it
// can touch the lock.
type Pool struct {
	mu    sync.Mutex
	guard guard.Guard

	roles  types.Roles
	params Params

	fundingBook    Book
	tokenBook      Book
	fundingCustody string
	tokenCustody   string
	rewardTreasury string

	oracle  oracle.Oracle
	tracker types.RewardTracker

	breaker       breaker
	minTokenPrice *uint256.Int // nil means unbounded
	maxTokenPrice *uint256.Int

	active    bool
	paused    bool
	startTime time.Time
	endTime   time.Time

	investments map[string][]*Lot
	investors   []string

	totalRaised    *uint256.Int
	totalAllocated *uint256.Int
	withdrawn      *uint256.Int
	openLots       int

	logger  *zap.Logger
	bus     *events.Bus
	metrics *metrics.Collector
	now     func() time.Time
}

// New creates a sale pool in the Inactive state.
func New(d Deps) *Pool {
	p := &Pool{
		roles:          d.Roles,
		params:         d.Params,
		fundingBook:    d.FundingBook,
		tokenBook:      d.TokenBook,
		fundingCustody: d.FundingCustody,
		tokenCustody:   d.TokenCustody,
		rewardTreasury: d.RewardTreasury,
		oracle:         d.Oracle,
		tracker:        d.Tracker,
		investments:    make(map[string][]*Lot),
		totalRaised:    uint256.NewInt(0),
		totalAllocated: uint256.NewInt(0),
		withdrawn:      uint256.NewInt(0),
		logger:         d.Logger.Named("salepool"),
		bus:            d.Bus,
		metrics:        d.Metrics,
		now:            d.Now,
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Start opens a sale window of the given duration. Admin only; fails while
// a sale is already active.
func (p *Pool) Start(caller string, duration time.Duration) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.roles.IsAdmin(caller) {
		return ErrUnauthorized
	}
	if p.active {
		return ErrAlreadyActive
	}

	now := p.now()
	p.active = true
	p.paused = false
	p.startTime = now
	p.endTime = now.Add(duration)

	p.logger.Info("Sale started",
		zap.Time("start", p.startTime),
		zap.Time("end", p.endTime))
	p.publish(events.SaleEvent{
		BaseEvent: events.NewBase(events.SaleStarted),
		StartTime: p.startTime,
		EndTime:   p.endTime,
	})
	return nil
}

// End closes the sale. Admin only; fails unless active.
func (p *Pool) End(caller string) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.roles.IsAdmin(caller) {
		return ErrUnauthorized
	}
	if !p.active {
		return ErrNotActive
	}
	p.active = false
	p.paused = false

	p.logger.Info("Sale ended")
	p.publish(events.SaleEvent{
		BaseEvent: events.NewBase(events.SaleEnded),
		StartTime: p.startTime,
		EndTime:   p.endTime,
	})
	return nil
}

// Pause suspends investing. Admin only; valid only while active and not
// already paused.
func (p *Pool) Pause(caller string) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.roles.IsAdmin(caller) {
		return ErrUnauthorized
	}
	if !p.active {
		return ErrNotActive
	}
	if p.paused {
		return ErrAlreadyPaused
	}
	p.paused = true
	p.logger.Info("Sale paused")
	p.publish(events.SaleEvent{BaseEvent: events.NewBase(events.SalePaused)})
	return nil
}

// Unpause resumes investing. Admin only; fails unless currently paused.
func (p *Pool) Unpause(caller string) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.roles.IsAdmin(caller) {
		return ErrUnauthorized
	}
	if !p.active {
		return ErrNotActive
	}
	if !p.paused {
		return ErrNotPaused
	}
	p.paused = false
	p.logger.Info("Sale unpaused")
	p.publish(events.SaleEvent{BaseEvent: events.NewBase(events.SaleUnpaused)})
	return nil
}

// Invest converts funding currency into an allocated token lot at the
// oracle price. The whole operation rolls back on any failure, including a
// rejected reward-tracker notification.
func (p *Pool) Invest(ctx context.Context, investor string, fundingAmount *uint256.Int) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	err := p.invest(ctx, investor, fundingAmount)
	if p.metrics != nil {
		p.metrics.RecordOperation("invest", time.Since(start), err)
	}
	return err
}

func (p *Pool) invest(ctx context.Context, investor string, fundingAmount *uint256.Int) error {
	if fundingAmount == nil || fundingAmount.IsZero() {
		return ErrZeroAmount
	}

	now := p.now()
	if !p.active {
		return ErrNotActive
	}
	if p.paused {
		return ErrSalePaused
	}
	if now.Before(p.startTime) || now.After(p.endTime) {
		return ErrSaleWindowClosed
	}
	if p.breaker.enabled && p.breaker.tripped {
		return ErrBreakerTripped
	}
	if p.params.MinInvestment != nil && fundingAmount.Lt(p.params.MinInvestment) {
		return ErrBelowMinInvestment
	}
	if p.params.MaxInvestment != nil && p.params.MaxInvestment.Lt(fundingAmount) {
		return ErrAboveMaxInvestment
	}

	quote, err := p.oracle.GetPrice(ctx, p.params.OracleAsset)
	if err != nil {
		return err
	}
	if err := quote.Validate(); err != nil {
		return err
	}

	if err := p.breaker.check(quote, now); err != nil {
		p.logger.Warn("Circuit breaker rejected quote",
			zap.String("price", quote.Price.Dec()),
			zap.Error(err))
		if err == ErrStalePrice || err == ErrPriceDeviation {
			if p.metrics != nil {
				p.metrics.RecordBreakerTrip()
			}
			p.publish(events.BreakerEvent{
				BaseEvent:      events.NewBase(events.BreakerTripped),
				Reason:         err.Error(),
				ObservedPrice:  quote.Price.Dec(),
				LastValidPrice: p.lastValidPriceDec(),
			})
		}
		return err
	}

	if p.minTokenPrice != nil && quote.Price.Lt(p.minTokenPrice) {
		return ErrPriceOutOfBounds
	}
	if p.maxTokenPrice != nil && p.maxTokenPrice.Lt(quote.Price) {
		return ErrPriceOutOfBounds
	}

	allocated, err := convert(fundingAmount, quote)
	if err != nil {
		return err
	}

	raised := new(uint256.Int)
	if _, overflow := raised.AddOverflow(p.totalRaised, fundingAmount); overflow {
		return ErrTotalsOverflow
	}
	total := new(uint256.Int)
	if _, overflow := total.AddOverflow(p.totalAllocated, allocated); overflow {
		return ErrTotalsOverflow
	}

	if err := p.fundingBook.Transfer(investor, p.fundingCustody, fundingAmount); err != nil {
		return err
	}

	lot := &Lot{
		ID:              uuid.New().String(),
		FundingAmount:   fundingAmount.Clone(),
		AllocatedAmount: allocated,
		Timestamp:       now,
	}
	newInvestor := len(p.investments[investor]) == 0
	p.investments[investor] = append(p.investments[investor], lot)
	if newInvestor {
		p.investors = append(p.investors, investor)
	}

	if p.tracker != nil {
		if err := p.tracker.OnAllocation(investor, allocated); err != nil {
			// Unwind custody and the lot; the investment never happened.
			p.investments[investor] = p.investments[investor][:len(p.investments[investor])-1]
			if newInvestor {
				delete(p.investments, investor)
				p.investors = p.investors[:len(p.investors)-1]
			}
			if rbErr := p.fundingBook.Transfer(p.fundingCustody, investor, fundingAmount); rbErr != nil {
				p.logger.Error("Funding rollback failed",
					zap.String("investor", investor), zap.Error(rbErr))
			}
			return err
		}
	}

	p.totalRaised = raised
	p.totalAllocated = total
	p.openLots++

	p.logger.Info("Investment settled",
		zap.String("investor", investor),
		zap.String("lot", lot.ID),
		zap.String("funding", fundingAmount.Dec()),
		zap.String("allocated", allocated.Dec()),
		zap.String("price", quote.Price.Dec()))
	p.publish(events.InvestmentEvent{
		BaseEvent:       events.NewBase(events.InvestmentMade),
		Investor:        investor,
		LotID:           lot.ID,
		FundingAmount:   fundingAmount.Dec(),
		AllocatedAmount: allocated.Dec(),
		Price:           quote.Price.Dec(),
	})
	if p.metrics != nil {
		p.metrics.SetOpenLots(p.openLots)
	}
	return nil
}

// ClaimTokens releases every lot of the investor whose claim delay has
// elapsed, in one aggregate token transfer.
func (p *Pool) ClaimTokens(investor string) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	var eligible []*Lot
	total := uint256.NewInt(0)
	for _, lot := range p.investments[investor] {
		if lot.Claimed || lot.Refunded {
			continue
		}
		if now.Before(lot.Timestamp.Add(p.params.ClaimDelay)) {
			continue
		}
		eligible = append(eligible, lot)
		total.Add(total, lot.AllocatedAmount)
	}
	if len(eligible) == 0 || total.IsZero() {
		return ErrNoClaimableLots
	}

	for _, lot := range eligible {
		lot.Claimed = true
	}

	if err := p.tokenBook.Transfer(p.tokenCustody, investor, total); err != nil {
		for _, lot := range eligible {
			lot.Claimed = false
		}
		p.logger.Error("Token claim transfer failed",
			zap.String("investor", investor), zap.Error(err))
		return err
	}
	p.openLots -= len(eligible)

	p.logger.Info("Tokens claimed",
		zap.String("investor", investor),
		zap.String("amount", total.Dec()),
		zap.Int("lots", len(eligible)))
	p.publish(events.SettlementEvent{
		BaseEvent: events.NewBase(events.TokensClaimed),
		Investor:  investor,
		Amount:    total.Dec(),
		Lots:      len(eligible),
	})
	if p.metrics != nil {
		p.metrics.SetOpenLots(p.openLots)
	}
	return nil
}

// RefundInvestment returns funding for every lot of the investor still
// inside the refund period.
func (p *Pool) RefundInvestment(investor string) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	var eligible []*Lot
	for i := range p.investments[investor] {
		if p.refundable(p.investments[investor][i], now) {
			eligible = append(eligible, p.investments[investor][i])
		}
	}
	if len(eligible) == 0 {
		return ErrNoRefundableLots
	}
	return p.refund(investor, eligible)
}

// RefundInvestmentByIndex refunds a single lot by its position in the
// investor's list.
func (p *Pool) RefundInvestmentByIndex(investor string, index int) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()

	lots := p.investments[investor]
	if index < 0 || index >= len(lots) {
		return ErrIndexOutOfRange
	}
	if !p.refundable(lots[index], p.now()) {
		return ErrLotNotRefundable
	}
	return p.refund(investor, []*Lot{lots[index]})
}

func (p *Pool) refundable(lot *Lot, now time.Time) bool {
	return !lot.Claimed && !lot.Refunded &&
		!now.After(lot.Timestamp.Add(p.params.RefundPeriod))
}

func (p *Pool) refund(investor string, lots []*Lot) error {
	total := uint256.NewInt(0)
	for _, lot := range lots {
		lot.Refunded = true
		total.Add(total, lot.FundingAmount)
	}

	if err := p.fundingBook.Transfer(p.fundingCustody, investor, total); err != nil {
		for _, lot := range lots {
			lot.Refunded = false
		}
		p.logger.Error("Refund transfer failed",
			zap.String("investor", investor), zap.Error(err))
		return err
	}
	p.openLots -= len(lots)

	p.logger.Info("Investment refunded",
		zap.String("investor", investor),
		zap.String("amount", total.Dec()),
		zap.Int("lots", len(lots)))
	p.publish(events.SettlementEvent{
		BaseEvent: events.NewBase(events.InvestmentRefunded),
		Investor:  investor,
		Amount:    total.Dec(),
		Lots:      len(lots),
	})
	if p.metrics != nil {
		p.metrics.SetOpenLots(p.openLots)
	}
	return nil
}

// WithdrawFunds moves matured, non-refunded funding to the business admin.
func (p *Pool) WithdrawFunds(caller string, amount *uint256.Int) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.withdraw(caller, amount)
}

// WithdrawAll withdraws the entire currently withdrawable sum.
func (p *Pool) WithdrawAll(caller string) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.roles.IsBusinessAdmin(caller) {
		return ErrUnauthorized
	}
	available := p.withdrawable(p.now())
	if available.IsZero() {
		return ErrNothingToWithdraw
	}
	return p.withdraw(caller, available)
}

func (p *Pool) withdraw(caller string, amount *uint256.Int) error {
	if !p.roles.IsBusinessAdmin(caller) {
		return ErrUnauthorized
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	available := p.withdrawable(p.now())
	if available.Lt(amount) {
		return ErrExceedsWithdrawable
	}

	if err := p.fundingBook.Transfer(p.fundingCustody, caller, amount); err != nil {
		return err
	}
	p.withdrawn.Add(p.withdrawn, amount)

	p.logger.Info("Funds withdrawn",
		zap.String("to", caller),
		zap.String("amount", amount.Dec()))
	p.publish(events.TreasuryEvent{
		BaseEvent: events.NewBase(events.FundsWithdrawn),
		To:        caller,
		Amount:    amount.Dec(),
	})
	return nil
}

// withdrawable sums funding over all non-refunded lots past the withdrawal
// delay, minus what was already withdrawn. Full scan each call; this is an
// administrative path, not a hot one.
func (p *Pool) withdrawable(now time.Time) *uint256.Int {
	sum := uint256.NewInt(0)
	for _, lots := range p.investments {
		for _, lot := range lots {
			if lot.Refunded {
				continue
			}
			if now.Before(lot.Timestamp.Add(p.params.WithdrawalDelay)) {
				continue
			}
			sum.Add(sum, lot.FundingAmount)
		}
	}
	if sum.Lt(p.withdrawn) {
		return uint256.NewInt(0)
	}
	return sum.Sub(sum, p.withdrawn)
}

// ReleaseFundsToRewardPool sweeps the remaining funding custody balance to
// the reward treasury. Owner only; requires reward tracking wired, the sale
// over, and the release delay elapsed.
func (p *Pool) ReleaseFundsToRewardPool(caller string) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.roles.IsOwner(caller) {
		return ErrUnauthorized
	}
	if p.tracker == nil {
		return ErrTrackingNotWired
	}
	now := p.now()
	if p.active || p.endTime.IsZero() || now.Before(p.endTime.Add(p.params.ReleaseDelay)) {
		return ErrReleaseNotReady
	}

	amount := p.fundingBook.Balance(p.fundingCustody)
	if amount.IsZero() {
		return ErrNothingToRelease
	}
	if err := p.fundingBook.Transfer(p.fundingCustody, p.rewardTreasury, amount); err != nil {
		return err
	}

	p.logger.Info("Remaining funds released to reward treasury",
		zap.String("amount", amount.Dec()))
	p.publish(events.TreasuryEvent{
		BaseEvent: events.NewBase(events.FundsReleased),
		To:        p.rewardTreasury,
		Amount:    amount.Dec(),
	})
	return nil
}

// SetOracle swaps the price feed. Owner only.
func (p *Pool) SetOracle(caller string, o oracle.Oracle) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.roles.IsOwner(caller) {
		return ErrUnauthorized
	}
	if o == nil {
		return oracle.ErrNoQuote
	}
	p.oracle = o
	return nil
}

// SetPriceBounds configures the accepted quote range; nil disables a bound.
// Owner only.
func (p *Pool) SetPriceBounds(caller string, min, max *uint256.Int) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.roles.IsOwner(caller) {
		return ErrUnauthorized
	}
	p.minTokenPrice = cloneOrNil(min)
	p.maxTokenPrice = cloneOrNil(max)
	return nil
}

// ConfigureBreaker sets the circuit breaker parameters. Admin only. The
// tripped latch is preserved across reconfiguration.
func (p *Pool) ConfigureBreaker(caller string, enabled bool, staleness time.Duration, maxDeviationBps uint64) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.roles.IsAdmin(caller) {
		return ErrUnauthorized
	}
	p.breaker.enabled = enabled
	p.breaker.staleness = staleness
	p.breaker.maxDeviationBps = maxDeviationBps
	return nil
}

// ResetBreaker clears the tripped latch. Admin only.
func (p *Pool) ResetBreaker(caller string) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.roles.IsAdmin(caller) {
		return ErrUnauthorized
	}
	p.breaker.reset()
	p.logger.Info("Circuit breaker reset")
	p.publish(events.BreakerEvent{
		BaseEvent:      events.NewBase(events.BreakerReset),
		LastValidPrice: p.lastValidPriceDec(),
	})
	return nil
}

// SetBusinessAdmin rotates the withdrawal role. Owner only.
func (p *Pool) SetBusinessAdmin(caller, businessAdmin string) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.roles.IsOwner(caller) {
		return ErrUnauthorized
	}
	p.roles.BusinessAdmin = businessAdmin
	return nil
}

// EmergencyWithdraw sweeps the entire funding custody to the owner,
// bypassing the withdrawal schedule. Owner only.
func (p *Pool) EmergencyWithdraw(caller string) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.roles.IsOwner(caller) {
		return ErrUnauthorized
	}
	amount := p.fundingBook.Balance(p.fundingCustody)
	if amount.IsZero() {
		return ErrNothingToWithdraw
	}
	if err := p.fundingBook.Transfer(p.fundingCustody, caller, amount); err != nil {
		return err
	}
	p.logger.Warn("Emergency withdrawal",
		zap.String("to", caller),
		zap.String("amount", amount.Dec()))
	p.publish(events.TreasuryEvent{
		BaseEvent: events.NewBase(events.FundsWithdrawn),
		To:        caller,
		Amount:    amount.Dec(),
	})
	return nil
}

// Active reports the sale window flags.
func (p *Pool) Active() (active, paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active, p.paused
}

// BreakerTripped reports the latch state.
func (p *Pool) BreakerTripped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.breaker.tripped
}

// Totals returns copies of the aggregate sale counters.
func (p *Pool) Totals() (raised, allocated, withdrawn *uint256.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalRaised.Clone(), p.totalAllocated.Clone(), p.withdrawn.Clone()
}

// Lots returns a copy of the investor's lot list.
func (p *Pool) Lots(investor string) []Lot {
	p.mu.Lock()
	defer p.mu.Unlock()
	lots := p.investments[investor]
	out := make([]Lot, len(lots))
	for i, lot := range lots {
		out[i] = *lot
	}
	return out
}

// Withdrawable returns the currently matured withdrawable sum.
func (p *Pool) Withdrawable() *uint256.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.withdrawable(p.now())
}

// convert computes allocated = funding * 1e18 * 10^decimals / price with a
// 512-bit intermediate. Decimals are bounded upstream, so the scale factor
// itself cannot overflow.
func convert(funding *uint256.Int, q oracle.Quote) (*uint256.Int, error) {
	scale := fundingScale.Clone()
	ten := uint256.NewInt(10)
	for i := uint8(0); i < q.Decimals; i++ {
		scale.Mul(scale, ten)
	}
	allocated := new(uint256.Int)
	if _, overflow := allocated.MulDivOverflow(funding, scale, q.Price); overflow {
		return nil, ErrConversionOverflow
	}
	if allocated.IsZero() {
		return nil, ErrZeroAllocation
	}
	return allocated, nil
}

func cloneOrNil(z *uint256.Int) *uint256.Int {
	if z == nil {
		return nil
	}
	return z.Clone()
}

func (p *Pool) lastValidPriceDec() string {
	if p.breaker.lastValidPrice == nil {
		return ""
	}
	return p.breaker.lastValidPrice.Dec()
}

func (p *Pool) publish(ev events.Event) {
	if p.bus != nil {
		_ = p.bus.Publish(ev)
	}
}
