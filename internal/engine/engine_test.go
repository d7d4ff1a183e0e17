// internal/engine/engine_test.go
package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenlaunch/launchpool/internal/config"
	"github.com/tokenlaunch/launchpool/internal/logger"
	"github.com/tokenlaunch/launchpool/internal/oracle"
	"github.com/tokenlaunch/launchpool/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Owner:                 "owner-1",
		Admin:                 "admin-1",
		BusinessAdmin:         "biz-1",
		MinInvestment:         "10",
		MaxInvestment:         "1000",
		ClaimDelaySec:         config.DefaultClaimDelaySec,
		RefundPeriodSec:       config.DefaultRefundPeriodSec,
		WithdrawalDelaySec:    config.DefaultWithdrawalDelaySec,
		ReleaseDelaySec:       config.DefaultReleaseDelaySec,
		StalenessThresholdSec: config.DefaultStalenessSec,
		MaxDeviationBps:       config.DefaultMaxDeviationBps,
		OracleAsset:           "LPT",
		DBPath:                filepath.Join(t.TempDir(), "launchpool.db"),
		LogFile:               filepath.Join(t.TempDir(), "launchpool.log"),
	}
}

func testLogger(t *testing.T, cfg *config.Config) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{LogFile: cfg.LogFile, Development: true})
	require.NoError(t, err)
	return log
}

func newTestEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	store, err := storage.Open(cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	e, err := New(cfg, testLogger(t, cfg), store)
	require.NoError(t, err)
	return e
}

func TestEngineInvestClaimFlow(t *testing.T) {
	cfg := testConfig(t)
	e := newTestEngine(t, cfg)

	static, ok := e.Oracle.(*oracle.Static)
	require.True(t, ok)
	// allocated = funding / 2 with decimals 0
	static.SetQuote("LPT", oracle.Quote{
		Price:     uint256.MustFromDecimal("2000000000000000000"),
		Decimals:  0,
		Timestamp: time.Now(),
	})

	require.NoError(t, e.FundingBook.Mint(cfg.Owner, "inv-1", uint256.NewInt(10000)))
	require.NoError(t, e.TokenBook.Mint(cfg.Owner, TokenCustodyAccount, uint256.NewInt(100000)))

	require.NoError(t, e.SalePool.Start(cfg.Admin, 30*24*time.Hour))
	require.NoError(t, e.SalePool.Invest(context.Background(), "inv-1", uint256.NewInt(200)))

	// The investment reached the reward basis through the tracker wiring.
	info := e.RewardPool.Info()
	assert.Equal(t, uint256.NewInt(100), info.TotalAllocated)

	// Fund the reward treasury and price a deposit into the accumulator.
	require.NoError(t, e.FundingBook.Mint(cfg.Owner, RewardTreasuryAccount, uint256.NewInt(1000)))
	require.NoError(t, e.RewardPool.DepositFunds(cfg.Admin, uint256.NewInt(1000)))
	assert.Equal(t, uint256.NewInt(1000), e.RewardPool.PendingReward("inv-1"))

	// Claim pays reward currency from the treasury via the payout wiring.
	require.NoError(t, e.RewardPool.Claim("inv-1"))
	assert.Equal(t, uint256.NewInt(10800), e.FundingBook.Balance("inv-1"))
	assert.True(t, e.RewardPool.PendingReward("inv-1").IsZero())
}

func TestEngineTokenTransferNotifiesRewardBasis(t *testing.T) {
	cfg := testConfig(t)
	e := newTestEngine(t, cfg)

	static := e.Oracle.(*oracle.Static)
	static.SetQuote("LPT", oracle.Quote{
		Price:     uint256.MustFromDecimal("2000000000000000000"),
		Decimals:  0,
		Timestamp: time.Now(),
	})

	require.NoError(t, e.FundingBook.Mint(cfg.Owner, "inv-1", uint256.NewInt(10000)))
	require.NoError(t, e.TokenBook.Mint(cfg.Owner, TokenCustodyAccount, uint256.NewInt(100000)))
	require.NoError(t, e.TokenBook.AddToAllowlist(cfg.Owner, "inv-1"))
	require.NoError(t, e.TokenBook.AddToAllowlist(cfg.Owner, "holder-2"))

	require.NoError(t, e.SalePool.Start(cfg.Admin, 30*24*time.Hour))
	require.NoError(t, e.SalePool.Invest(context.Background(), "inv-1", uint256.NewInt(200)))

	// Custody-to-investor release at claim time is exempt from notification.
	// A later holder-to-holder transfer moves the reward basis.
	require.NoError(t, e.TokenBook.Transfer(TokenCustodyAccount, "inv-1", uint256.NewInt(100)))
	info := e.RewardPool.Info()
	require.Equal(t, uint256.NewInt(100), info.TotalAllocated)

	require.NoError(t, e.TokenBook.Transfer("inv-1", "holder-2", uint256.NewInt(40)))

	require.NoError(t, e.FundingBook.Mint(cfg.Owner, RewardTreasuryAccount, uint256.NewInt(1000)))
	require.NoError(t, e.RewardPool.DepositFunds(cfg.Admin, uint256.NewInt(1000)))
	assert.Equal(t, uint256.NewInt(600), e.RewardPool.PendingReward("inv-1"))
	assert.Equal(t, uint256.NewInt(400), e.RewardPool.PendingReward("holder-2"))
}

func TestEnginePersistAndRestore(t *testing.T) {
	cfg := testConfig(t)

	store, err := storage.Open(cfg.DBPath)
	require.NoError(t, err)
	e, err := New(cfg, testLogger(t, cfg), store)
	require.NoError(t, err)

	static := e.Oracle.(*oracle.Static)
	static.SetQuote("LPT", oracle.Quote{
		Price:     uint256.MustFromDecimal("2000000000000000000"),
		Decimals:  0,
		Timestamp: time.Now(),
	})
	require.NoError(t, e.FundingBook.Mint(cfg.Owner, "inv-1", uint256.NewInt(10000)))
	require.NoError(t, e.SalePool.Start(cfg.Admin, 30*24*time.Hour))
	require.NoError(t, e.SalePool.Invest(context.Background(), "inv-1", uint256.NewInt(200)))

	require.NoError(t, e.persist())
	require.NoError(t, store.Close())

	store2, err := storage.Open(cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store2.Close() })

	e2, err := New(cfg, testLogger(t, cfg), store2)
	require.NoError(t, err)

	info := e2.RewardPool.Info()
	assert.Equal(t, uint256.NewInt(100), info.TotalAllocated)
	active, _ := e2.SalePool.Active()
	assert.True(t, active)
	raised, _, _ := e2.SalePool.Totals()
	assert.Equal(t, uint256.NewInt(200), raised)
}

func TestEngineRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsAddr = "127.0.0.1:0"

	store, err := storage.Open(cfg.DBPath)
	require.NoError(t, err)

	e, err := New(cfg, testLogger(t, cfg), store)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("engine did not stop after cancellation")
	}
}
