package oracle

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientGetPrice(t *testing.T) {
	now := time.Now().Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "FND", r.URL.Query().Get("asset"))
		fmt.Fprintf(w, `{"price":"125000000","decimals":8,"timestamp":%d}`, now)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 3, zap.NewNop())
	quote, err := client.GetPrice(context.Background(), "FND")
	require.NoError(t, err)
	assert.Equal(t, "125000000", quote.Price.Dec())
	assert.Equal(t, uint8(8), quote.Decimals)
	assert.Equal(t, now, quote.Timestamp.Unix())
}

func TestClientRetriesTransientFailures(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, `{"price":"100","decimals":0,"timestamp":%d}`, time.Now().Unix())
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5, zap.NewNop())
	client.retryDelay = time.Millisecond

	quote, err := client.GetPrice(context.Background(), "FND")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), quote.Price.Uint64())
	assert.Equal(t, 3, attempts)
}

func TestClientRejectsZeroPriceWithoutRetry(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		fmt.Fprintf(w, `{"price":"0","decimals":0,"timestamp":%d}`, time.Now().Unix())
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5, zap.NewNop())
	client.retryDelay = time.Millisecond

	_, err := client.GetPrice(context.Background(), "FND")
	require.ErrorIs(t, err, ErrZeroPrice)
	assert.Equal(t, 1, attempts)
}

func TestClientRejectsExcessiveDecimals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"price":"100","decimals":19,"timestamp":%d}`, time.Now().Unix())
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 1, zap.NewNop())
	_, err := client.GetPrice(context.Background(), "FND")
	require.ErrorIs(t, err, ErrDecimalsOutOfRange)
}

func TestStaticOracle(t *testing.T) {
	s := NewStatic()
	_, err := s.GetPrice(context.Background(), "FND")
	require.ErrorIs(t, err, ErrNoQuote)

	s.SetQuote("FND", Quote{Price: mustU256(t, "42"), Decimals: 2, Timestamp: time.Now()})
	q, err := s.GetPrice(context.Background(), "FND")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), q.Price.Uint64())
}
