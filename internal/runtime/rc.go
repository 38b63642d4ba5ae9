package runtime

import (
	"sync/atomic"
)

// color is the tri-color (plus purple) marking state of the cycle collector.
type color uint8

const (
	colorBlack  color = iota // live, or not yet suspected
	colorPurple              // possible cycle root, buffered as a candidate
	colorGray                // reached by trial deletion
	colorWhite               // condemned unless an external reference rescues it
)

// cell is the heap header in front of every managed value. Strong and weak
// counts move under atomics so mutator goroutines never contend on the heap
// lock; the collection scratch fields (crc, color, buffered) are touched only
// under the heap's collector lock.
type cell struct {
	strong atomic.Int32
	weak   atomic.Int32
	freed  atomic.Bool

	crc      int32
	color    color
	buffered bool

	size  int
	value Traceable
	heap  *Heap
}

// Rc is a counted strong reference. The zero Rc is null; Valid reports
// whether it points at a live cell.
type Rc struct {
	c *cell
}

func (r Rc) Valid() bool {
	return r.c != nil && !r.c.freed.Load()
}

// Value returns the managed value. Calling it on a freed or null Rc returns
// nil; the caller sites that can race a free check Valid first.
func (r Rc) Value() Traceable {
	if !r.Valid() {
		return nil
	}
	return r.c.value
}

func (r Rc) StrongCount() int {
	if r.c == nil {
		return 0
	}
	return int(r.c.strong.Load())
}

func (r Rc) WeakCount() int {
	if r.c == nil {
		return 0
	}
	return int(r.c.weak.Load())
}

// Downgrade produces a weak reference that observes the cell without keeping
// it alive.
func (r Rc) Downgrade() Weak {
	if r.c != nil {
		r.c.weak.Add(1)
	}
	return Weak{c: r.c}
}

// identical reports pointer identity of the underlying cells.
func (r Rc) identical(other Rc) bool {
	return r.c != nil && r.c == other.c
}

// Weak is a non-owning reference. It never delays a free and never traces as
// a strong edge; Upgrade is the only way to touch the value.
type Weak struct {
	c *cell
}

// Upgrade attempts to mint a strong reference. It succeeds only if the cell
// still has at least one strong reference, using a CAS loop so a concurrent
// final DecRef cannot be resurrected. It holds the heap lock for the
// duration: the collector snapshots reference counts under that lock, so an
// upgrade can never land between the snapshot and the free of a condemned
// cell.
func (w Weak) Upgrade() (Rc, bool) {
	if w.c == nil {
		return Rc{}, false
	}
	h := w.c.heap
	h.mu.Lock()
	defer h.mu.Unlock()
	for {
		n := w.c.strong.Load()
		if n <= 0 || w.c.freed.Load() {
			return Rc{}, false
		}
		if w.c.strong.CompareAndSwap(n, n+1) {
			return Rc{c: w.c}, true
		}
	}
}

func (w Weak) Expired() bool {
	return w.c == nil || w.c.freed.Load() || w.c.strong.Load() <= 0
}

// Release drops the weak count. The cell's Go memory is reclaimed by the host
// garbage collector once no references of either kind remain.
func (w Weak) Release() {
	if w.c != nil {
		w.c.weak.Add(-1)
	}
}
