// internal/salepool/breaker.go
package salepool

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/tokenlaunch/launchpool/internal/oracle"
)

// bpsDenominator scales deviation checks: maxDeviationBps of 1000 is 10%.
const bpsDenominator = 10000

// breaker is the price circuit breaker. Staleness or deviation failures
// latch it tripped; only an explicit administrative reset clears the latch.
// Callers hold the pool mutex.
type breaker struct {
	enabled         bool
	tripped         bool
	staleness       time.Duration
	maxDeviationBps uint64
	lastValidPrice  *uint256.Int
}

// check validates a quote against the breaker rules. A passing quote becomes
// the new lastValidPrice. A staleness or deviation failure sets the tripped
// latch before returning.
func (b *breaker) check(q oracle.Quote, now time.Time) error {
	if !b.enabled {
		return nil
	}
	if b.tripped {
		return ErrBreakerTripped
	}
	if b.staleness > 0 && now.Sub(q.Timestamp) > b.staleness {
		b.tripped = true
		return ErrStalePrice
	}
	if b.lastValidPrice != nil && b.maxDeviationBps > 0 {
		if deviationBps(q.Price, b.lastValidPrice) > b.maxDeviationBps {
			b.tripped = true
			return ErrPriceDeviation
		}
	}
	b.lastValidPrice = q.Price.Clone()
	return nil
}

func (b *breaker) reset() {
	b.tripped = false
}

// deviationBps returns |price - last| * 10000 / last, saturating at MaxUint64
// when the ratio does not fit.
func deviationBps(price, last *uint256.Int) uint64 {
	diff := new(uint256.Int)
	if price.Lt(last) {
		diff.Sub(last, price)
	} else {
		diff.Sub(price, last)
	}
	ratio := new(uint256.Int)
	if _, overflow := ratio.MulDivOverflow(diff, uint256.NewInt(bpsDenominator), last); overflow {
		return ^uint64(0)
	}
	if !ratio.IsUint64() {
		return ^uint64(0)
	}
	return ratio.Uint64()
}
