package stats_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelkern/kestrel/stats"
)

func TestExclusiveAccess(t *testing.T) {
	cell := stats.NewExclusiveCell(41)

	borrow := cell.ExclusiveAccess()
	*borrow.Value() = 42
	borrow.Release()

	borrow = cell.ExclusiveAccess()
	defer borrow.Release()

	require.Equal(t, 42, *borrow.Value())
}

func TestNestedExclusiveAccessPanics(t *testing.T) {
	cell := stats.NewExclusiveCell(0)

	borrow := cell.ExclusiveAccess()
	defer borrow.Release()

	require.Panics(t, func() {
		cell.ExclusiveAccess()
	})
}

func TestReleaseIsIdempotent(t *testing.T) {
	cell := stats.NewExclusiveCell("value")

	borrow := cell.ExclusiveAccess()
	borrow.Release()
	borrow.Release()

	// a fresh borrow must succeed after release
	require.NotPanics(t, func() {
		cell.ExclusiveAccess().Release()
	})
}

func TestUseAfterReleasePanics(t *testing.T) {
	cell := stats.NewExclusiveCell(0)

	borrow := cell.ExclusiveAccess()
	borrow.Release()

	require.Panics(t, func() {
		borrow.Value()
	})
}
