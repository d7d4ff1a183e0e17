// internal/oracle/oracle.go
package oracle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/holiman/uint256"
)

// MaxDecimals bounds the oracle's price decimals so the funding-to-token
// conversion cannot overflow from an absurd exponent.
const MaxDecimals = 18

var (
	// ErrZeroPrice indicates the feed returned a zero price.
	ErrZeroPrice = errors.New("oracle: zero price")

	// ErrDecimalsOutOfRange indicates price decimals above MaxDecimals.
	ErrDecimalsOutOfRange = errors.New("oracle: decimals out of range")

	// ErrNoQuote indicates no quote is available for the asset.
	ErrNoQuote = errors.New("oracle: no quote for asset")
)

// Quote is one price observation from a feed.
type Quote struct {
	Price     *uint256.Int
	Decimals  uint8
	Timestamp time.Time
}

// Oracle supplies price quotes for an asset.
type Oracle interface {
	GetPrice(ctx context.Context, asset string) (Quote, error)
}

// Validate applies the boundary checks every consumer relies on.
func (q Quote) Validate() error {
	if q.Price == nil || q.Price.IsZero() {
		return ErrZeroPrice
	}
	if q.Decimals > MaxDecimals {
		return ErrDecimalsOutOfRange
	}
	return nil
}

// Static is an in-memory oracle for tests and local runs.
type Static struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

// NewStatic creates an empty static oracle.
func NewStatic() *Static {
	return &Static{quotes: make(map[string]Quote)}
}

// SetQuote installs or replaces the quote for an asset.
func (s *Static) SetQuote(asset string, q Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[asset] = q
}

// GetPrice returns the installed quote, validated.
func (s *Static) GetPrice(_ context.Context, asset string) (Quote, error) {
	s.mu.RLock()
	q, ok := s.quotes[asset]
	s.mu.RUnlock()
	if !ok {
		return Quote{}, ErrNoQuote
	}
	if err := q.Validate(); err != nil {
		return Quote{}, err
	}
	return q, nil
}
