// internal/ledger/ledger_test.go
package ledger

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const owner = "owner-1"

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

// trackerRecorder captures balance-change notifications and can be told to
// reject the next one.
type trackerRecorder struct {
	calls []string
	fail  error
}

func (t *trackerRecorder) OnAllocation(holder string, amount *uint256.Int) error {
	t.calls = append(t.calls, "alloc:"+holder+":"+amount.Dec())
	return nil
}

func (t *trackerRecorder) OnBalanceChange(from, to string, amount *uint256.Int) error {
	if t.fail != nil {
		err := t.fail
		t.fail = nil
		return err
	}
	t.calls = append(t.calls, "move:"+from+":"+to+":"+amount.Dec())
	return nil
}

func newBook(t *testing.T, opts ...Option) *Ledger {
	t.Helper()
	return New("test", owner, zap.NewNop(), opts...)
}

func TestMintAndBalance(t *testing.T) {
	l := newBook(t)

	require.NoError(t, l.Mint(owner, "alice", u(500)))
	assert.Equal(t, u(500), l.Balance("alice"))
	assert.True(t, l.Balance("nobody").IsZero())

	assert.ErrorIs(t, l.Mint("mallory", "alice", u(1)), ErrUnauthorized)
	assert.ErrorIs(t, l.Mint(owner, "", u(1)), ErrEmptyAccount)
	assert.ErrorIs(t, l.Mint(owner, "alice", u(0)), ErrZeroAmount)
}

func TestFreezeMinting(t *testing.T) {
	l := newBook(t)

	require.NoError(t, l.Mint(owner, "alice", u(10)))
	assert.ErrorIs(t, l.FreezeMinting("mallory"), ErrUnauthorized)
	require.NoError(t, l.FreezeMinting(owner))
	assert.ErrorIs(t, l.Mint(owner, "alice", u(10)), ErrMintingFrozen)
	assert.Equal(t, u(10), l.Balance("alice"))
}

func TestTransfer(t *testing.T) {
	l := newBook(t)
	require.NoError(t, l.Mint(owner, "alice", u(100)))

	require.NoError(t, l.Transfer("alice", "bob", u(40)))
	assert.Equal(t, u(60), l.Balance("alice"))
	assert.Equal(t, u(40), l.Balance("bob"))

	assert.ErrorIs(t, l.Transfer("alice", "bob", u(61)), ErrInsufficientBalance)
	assert.ErrorIs(t, l.Transfer("nobody", "bob", u(1)), ErrInsufficientBalance)
	assert.ErrorIs(t, l.Transfer("alice", "", u(1)), ErrEmptyAccount)
	assert.ErrorIs(t, l.Transfer("alice", "bob", u(0)), ErrZeroAmount)
}

func TestAllowlistGating(t *testing.T) {
	l := newBook(t, WithAllowlist())
	require.NoError(t, l.Mint(owner, "alice", u(100)))

	// Neither party allowlisted yet.
	assert.ErrorIs(t, l.Transfer("alice", "bob", u(10)), ErrNotAllowlisted)

	require.NoError(t, l.AddToAllowlist(owner, "alice"))
	assert.ErrorIs(t, l.Transfer("alice", "bob", u(10)), ErrNotAllowlisted)

	require.NoError(t, l.AddToAllowlist(owner, "bob"))
	require.NoError(t, l.Transfer("alice", "bob", u(10)))

	require.NoError(t, l.RemoveFromAllowlist(owner, "bob"))
	assert.ErrorIs(t, l.Transfer("alice", "bob", u(10)), ErrNotAllowlisted)

	assert.ErrorIs(t, l.AddToAllowlist("mallory", "eve"), ErrUnauthorized)
	assert.ErrorIs(t, l.RemoveFromAllowlist("mallory", "alice"), ErrUnauthorized)
}

func TestExemptBypassesGatingAndTracker(t *testing.T) {
	tracker := &trackerRecorder{}
	l := newBook(t, WithAllowlist(), WithTracker(tracker))

	require.NoError(t, l.SetExempt(owner, "custody", true))
	require.NoError(t, l.Mint(owner, "custody", u(1000)))
	require.NoError(t, l.AddToAllowlist(owner, "alice"))

	// Custody to investor: no allowlist check on custody, no notification.
	require.NoError(t, l.Transfer("custody", "alice", u(300)))
	assert.Empty(t, tracker.calls)

	// Holder to holder: notified exactly once.
	require.NoError(t, l.AddToAllowlist(owner, "bob"))
	require.NoError(t, l.Transfer("alice", "bob", u(100)))
	require.Len(t, tracker.calls, 1)
	assert.Equal(t, "move:alice:bob:100", tracker.calls[0])

	assert.ErrorIs(t, l.SetExempt("mallory", "custody", true), ErrUnauthorized)
}

func TestTrackerRejectionRollsBackTransfer(t *testing.T) {
	boom := errors.New("basis breach")
	tracker := &trackerRecorder{fail: boom}
	l := newBook(t, WithTracker(tracker))
	require.NoError(t, l.Mint(owner, "alice", u(100)))

	err := l.Transfer("alice", "bob", u(40))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, u(100), l.Balance("alice"))
	assert.True(t, l.Balance("bob").IsZero())

	// Next transfer goes through once the tracker accepts again.
	require.NoError(t, l.Transfer("alice", "bob", u(40)))
	assert.Equal(t, u(60), l.Balance("alice"))
}

func TestBurn(t *testing.T) {
	tracker := &trackerRecorder{}
	l := newBook(t, WithTracker(tracker))
	require.NoError(t, l.Mint(owner, "alice", u(100)))

	require.NoError(t, l.Burn("alice", u(30)))
	assert.Equal(t, u(70), l.Balance("alice"))
	require.Len(t, tracker.calls, 1)
	assert.Equal(t, "move:alice::30", tracker.calls[0])

	assert.ErrorIs(t, l.Burn("alice", u(1000)), ErrInsufficientBalance)
	assert.ErrorIs(t, l.Burn("", u(1)), ErrEmptyAccount)
	assert.ErrorIs(t, l.Burn("alice", u(0)), ErrZeroAmount)
}

func TestBurnRollbackOnTrackerRejection(t *testing.T) {
	boom := errors.New("basis breach")
	tracker := &trackerRecorder{fail: boom}
	l := newBook(t, WithTracker(tracker))
	require.NoError(t, l.Mint(owner, "alice", u(100)))

	require.ErrorIs(t, l.Burn("alice", u(30)), boom)
	assert.Equal(t, u(100), l.Balance("alice"))
}

func TestPayoutAccount(t *testing.T) {
	l := newBook(t)
	require.NoError(t, l.Mint(owner, "treasury", u(500)))

	payout := PayoutAccount{Book: l, Account: "treasury"}
	require.NoError(t, payout.TransferReward("alice", u(200)))
	assert.Equal(t, u(300), l.Balance("treasury"))
	assert.Equal(t, u(200), l.Balance("alice"))

	assert.ErrorIs(t, payout.TransferReward("alice", u(1000)), ErrInsufficientBalance)
}
