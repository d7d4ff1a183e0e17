package guard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardBlocksNestedEntry(t *testing.T) {
	var g Guard

	err := g.Do(func() error {
		// A nested entry from inside the guarded section must fail.
		nested := g.Enter()
		assert.ErrorIs(t, nested, ErrReentrantCall)
		return nil
	})
	require.NoError(t, err)

	// The failed nested entry must not have corrupted the guard: the next
	// top-level entry succeeds.
	require.NoError(t, g.Enter())
	g.Exit()
}

func TestGuardReleasedOnError(t *testing.T) {
	var g Guard
	boom := errors.New("boom")

	err := g.Do(func() error { return boom })
	require.ErrorIs(t, err, boom)

	require.NoError(t, g.Enter())
	g.Exit()
}

func TestGuardReleasedOnPanic(t *testing.T) {
	var g Guard

	func() {
		defer func() { _ = recover() }()
		_ = g.Do(func() error { panic("inner") })
	}()

	require.NoError(t, g.Enter())
	g.Exit()
}
