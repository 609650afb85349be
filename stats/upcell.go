package stats

import "sync/atomic"

// ExclusiveCell wraps a value shared across trap handlers on a single
// logical core. All access goes through ExclusiveAccess, which hands out a
// Borrow granting sole use of the value until Release.
//
// The cell never blocks. There is no second core that could eventually
// release it: a nested acquisition means a handler re-entered the
// statistics path while already holding it, which is a bug, so the cell
// panics instead of deadlocking.
type ExclusiveCell[T any] struct {
	borrowed atomic.Bool
	value    T
}

func NewExclusiveCell[T any](value T) *ExclusiveCell[T] {
	return &ExclusiveCell[T]{value: value}
}

// ExclusiveAccess grants sole access to the cell's value. The caller must
// Release the returned Borrow on every exit path, typically via defer.
// Acquiring while another Borrow is outstanding panics.
func (c *ExclusiveCell[T]) ExclusiveAccess() *Borrow[T] {
	if !c.borrowed.CompareAndSwap(false, true) {
		panic("stats: exclusive cell acquired while already borrowed")
	}

	return &Borrow[T]{cell: c}
}

// Borrow is a scoped handle to an ExclusiveCell's value.
type Borrow[T any] struct {
	cell     *ExclusiveCell[T]
	released bool
}

// Value returns the borrowed value. The pointer must not outlive the Borrow.
func (b *Borrow[T]) Value() *T {
	if b.released {
		panic("stats: use of released borrow")
	}

	return &b.cell.value
}

// Release returns the value to the cell. Releasing twice is a no-op, so it
// is safe to defer a Release and also release early.
func (b *Borrow[T]) Release() {
	if b.released {
		return
	}

	b.released = true
	b.cell.borrowed.Store(false)
}
