package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBusPublishSyncDelivers(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	var got []Event
	bus.SubscribeFunc(RewardClaimed, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	ev := PoolMutationEvent{
		BaseEvent: NewBase(RewardClaimed),
		Holder:    "holder-1",
		Amount:    "1000",
	}
	require.NoError(t, bus.PublishSync(context.Background(), ev))
	require.Len(t, got, 1)
	assert.Equal(t, RewardClaimed, got[0].Type())
}

func TestBusAsyncDeliveryAndShutdownDrain(t *testing.T) {
	bus := NewBus(zap.NewNop(), 32)

	var mu sync.Mutex
	count := 0
	bus.SubscribeFunc(InvestmentMade, func(_ context.Context, _ Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(InvestmentEvent{BaseEvent: NewBase(InvestmentMade)}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, bus.Shutdown(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, count)
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	calls := 0
	sub := bus.SubscribeFunc(SaleStarted, func(_ context.Context, _ Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.PublishSync(context.Background(), SaleEvent{BaseEvent: NewBase(SaleStarted)}))
	sub.Unsubscribe()
	require.NoError(t, bus.PublishSync(context.Background(), SaleEvent{BaseEvent: NewBase(SaleStarted)}))

	assert.Equal(t, 1, calls)
}
