// internal/ledger/ledger.go
package ledger

import (
	"sync"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/tokenlaunch/launchpool/internal/types"
)

// Ledger is a transferable-balance book. Configured with an allowlist it is
// the membership-gated share token; without one it serves as the plain
// funding/reward currency book.
//
// When a reward tracker is wired, every committed holder-to-holder transfer
// or burn is reported to it exactly once, after the balances commit. Custody
// accounts (the sale pool's token vault) are exempt: their movements are
// primary issuance, whose reward basis is established at allocation time,
// so reporting them would double count.
type Ledger struct {
	mu sync.Mutex

	name      string
	owner     string
	balances  map[string]*uint256.Int
	allowlist map[string]bool // nil when gating is disabled
	exempt    map[string]bool

	mintFrozen bool
	tracker    types.RewardTracker

	logger *zap.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithAllowlist enables membership gating on transfers.
func WithAllowlist() Option {
	return func(l *Ledger) { l.allowlist = make(map[string]bool) }
}

// WithTracker wires post-commit balance-change notifications.
func WithTracker(t types.RewardTracker) Option {
	return func(l *Ledger) { l.tracker = t }
}

// New creates a ledger named for logging purposes.
func New(name, owner string, logger *zap.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		name:     name,
		owner:    owner,
		balances: make(map[string]*uint256.Int),
		exempt:   make(map[string]bool),
		logger:   logger.Named("ledger." + name),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddToAllowlist adds an account to the membership set. Owner only.
func (l *Ledger) AddToAllowlist(caller, account string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if caller != l.owner {
		return ErrUnauthorized
	}
	if account == "" {
		return ErrEmptyAccount
	}
	if l.allowlist != nil {
		l.allowlist[account] = true
	}
	return nil
}

// RemoveFromAllowlist removes an account from the membership set. Owner only.
func (l *Ledger) RemoveFromAllowlist(caller, account string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if caller != l.owner {
		return ErrUnauthorized
	}
	if l.allowlist != nil {
		delete(l.allowlist, account)
	}
	return nil
}

// SetExempt marks a custody account whose movements bypass gating and
// tracker notification. Owner only.
func (l *Ledger) SetExempt(caller, account string, exempt bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if caller != l.owner {
		return ErrUnauthorized
	}
	if account == "" {
		return ErrEmptyAccount
	}
	l.exempt[account] = exempt
	return nil
}

// Mint credits new units to an account. Owner only; fails permanently after
// FreezeMinting. Mints are not reported to the tracker: the reward basis of
// issued tokens is established by allocation, not by supply.
func (l *Ledger) Mint(caller, to string, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if caller != l.owner {
		return ErrUnauthorized
	}
	if l.mintFrozen {
		return ErrMintingFrozen
	}
	if to == "" {
		return ErrEmptyAccount
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	return l.credit(to, amount)
}

// FreezeMinting permanently disables Mint. Owner only.
func (l *Ledger) FreezeMinting(caller string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if caller != l.owner {
		return ErrUnauthorized
	}
	l.mintFrozen = true
	l.logger.Info("Minting frozen")
	return nil
}

// Balance returns a copy of the account balance; unknown accounts are zero.
func (l *Ledger) Balance(account string) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if bal, ok := l.balances[account]; ok {
		return bal.Clone()
	}
	return uint256.NewInt(0)
}

// Transfer moves amount between accounts and, for non-exempt parties,
// notifies the tracker exactly once after the commit. A tracker failure is
// an accounting breach: the transfer is rolled back and the error surfaced.
func (l *Ledger) Transfer(from, to string, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if from == "" || to == "" {
		return ErrEmptyAccount
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}

	bypass := l.exempt[from] || l.exempt[to]
	if l.allowlist != nil && !bypass {
		if !l.allowlist[from] {
			return ErrNotAllowlisted
		}
		if !l.allowlist[to] {
			return ErrNotAllowlisted
		}
	}

	if err := l.debit(from, amount); err != nil {
		return err
	}
	if err := l.credit(to, amount); err != nil {
		l.mustCredit(from, amount)
		return err
	}

	if l.tracker != nil && !bypass {
		if err := l.tracker.OnBalanceChange(from, to, amount); err != nil {
			// Roll the committed transfer back; the books and the reward
			// basis must never diverge.
			l.mustDebit(to, amount)
			l.mustCredit(from, amount)
			l.logger.Error("Balance-change notification rejected",
				zap.String("from", from), zap.String("to", to),
				zap.String("amount", amount.Dec()), zap.Error(err))
			return err
		}
	}

	l.logger.Debug("Transfer committed",
		zap.String("from", from), zap.String("to", to),
		zap.String("amount", amount.Dec()))
	return nil
}

// Burn destroys amount from an account and notifies the tracker with an
// empty destination.
func (l *Ledger) Burn(from string, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if from == "" {
		return ErrEmptyAccount
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}

	if err := l.debit(from, amount); err != nil {
		return err
	}

	if l.tracker != nil && !l.exempt[from] {
		if err := l.tracker.OnBalanceChange(from, "", amount); err != nil {
			l.mustCredit(from, amount)
			return err
		}
	}
	return nil
}

func (l *Ledger) debit(account string, amount *uint256.Int) error {
	bal, ok := l.balances[account]
	if !ok || bal.Lt(amount) {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	return nil
}

func (l *Ledger) credit(account string, amount *uint256.Int) error {
	bal, ok := l.balances[account]
	if !ok {
		bal = uint256.NewInt(0)
		l.balances[account] = bal
	}
	next := new(uint256.Int)
	if _, overflow := next.AddOverflow(bal, amount); overflow {
		return ErrOverflow
	}
	bal.Set(next)
	return nil
}

// mustCredit/mustDebit restore balances during rollback; the amounts were
// just moved, so they cannot fail.
func (l *Ledger) mustCredit(account string, amount *uint256.Int) {
	if err := l.credit(account, amount); err != nil {
		l.logger.Error("Rollback credit failed", zap.String("account", account), zap.Error(err))
	}
}

func (l *Ledger) mustDebit(account string, amount *uint256.Int) {
	if err := l.debit(account, amount); err != nil {
		l.logger.Error("Rollback debit failed", zap.String("account", account), zap.Error(err))
	}
}

// PayoutAccount adapts a custody account on this ledger to the reward pool's
// Transferrer capability.
type PayoutAccount struct {
	Book    *Ledger
	Account string
}

// TransferReward pays reward currency from the custody account.
func (p PayoutAccount) TransferReward(to string, amount *uint256.Int) error {
	return p.Book.Transfer(p.Account, to, amount)
}
