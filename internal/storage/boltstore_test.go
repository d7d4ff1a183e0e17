// internal/storage/boltstore_test.go
package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenlaunch/launchpool/internal/rewardpool"
	"github.com/tokenlaunch/launchpool/internal/salepool"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "launchpool.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEmptyStore(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LoadRewardPool()
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LoadSalePool()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRewardPoolRoundTrip(t *testing.T) {
	s := openTestStore(t)

	snap := rewardpool.Snapshot{
		TotalAllocated:    "100",
		AccRewardPerShare: "10000000000000000000",
		TotalDeposited:    "1000",
		LastUpdateMarker:  7,
		Enabled:           true,
		Holders: map[string]rewardpool.HolderSnapshot{
			"h1": {ShareBalance: "60", RewardDebt: "0"},
			"h2": {ShareBalance: "40", RewardDebt: "400"},
		},
	}
	require.NoError(t, s.SaveRewardPool(snap))

	got, err := s.LoadRewardPool()
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	// The latest save wins.
	snap.LastUpdateMarker = 8
	snap.TotalDeposited = "2000"
	require.NoError(t, s.SaveRewardPool(snap))
	got, err = s.LoadRewardPool()
	require.NoError(t, err)
	assert.Equal(t, uint64(8), got.LastUpdateMarker)
	assert.Equal(t, "2000", got.TotalDeposited)
}

func TestSalePoolRoundTrip(t *testing.T) {
	s := openTestStore(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := salepool.Snapshot{
		Active:         true,
		StartTime:      now,
		EndTime:        now.Add(30 * 24 * time.Hour),
		LastValidPrice: "100",
		TotalRaised:    "300",
		TotalAllocated: "150",
		Withdrawn:      "0",
		Investors:      []string{"inv-1"},
		Investments: map[string][]salepool.LotSnapshot{
			"inv-1": {
				{ID: "lot-a", FundingAmount: "200", AllocatedAmount: "100", Timestamp: now},
				{ID: "lot-b", FundingAmount: "100", AllocatedAmount: "50", Timestamp: now, Refunded: true},
			},
		},
	}
	require.NoError(t, s.SaveSalePool(snap))

	got, err := s.LoadSalePool()
	require.NoError(t, err)
	assert.Equal(t, snap.Investors, got.Investors)
	require.Len(t, got.Investments["inv-1"], 2)
	assert.True(t, got.Investments["inv-1"][1].Refunded)
	assert.True(t, got.StartTime.Equal(snap.StartTime))
}
