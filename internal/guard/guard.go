// internal/guard/guard.go
package guard

import (
	"errors"
	"sync/atomic"
)

// ErrReentrantCall is returned when a guarded operation is entered while
// another guarded operation of the same component is still in flight.
var ErrReentrantCall = errors.New("guard: reentrant call")

// Guard is a one-bit busy latch protecting a component's mutating entry
// points. Each component owns its own Guard; guards are never shared between
// components.
//
// The zero value is ready to use.
type Guard struct {
	busy atomic.Bool
}

// Enter acquires the guard. It fails with ErrReentrantCall if the guard is
// already held, without disturbing the outer holder's state.
func (g *Guard) Enter() error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

// Exit releases the guard. Exit must only be called by the operation that
// successfully entered; the usual pattern is:
//
//	if err := g.Enter(); err != nil {
//		return err
//	}
//	defer g.Exit()
func (g *Guard) Exit() {
	g.busy.Store(false)
}

// Do runs fn while holding the guard and releases it on any exit path,
// including a panic inside fn.
func (g *Guard) Do(fn func() error) error {
	if err := g.Enter(); err != nil {
		return err
	}
	defer g.Exit()
	return fn()
}
