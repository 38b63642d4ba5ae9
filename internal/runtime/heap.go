package runtime

import (
	"sync"
	"sync/atomic"

	"github.com/script-lang/script/internal/config"
)

// Heap owns every managed cell: it tracks the memory budget, buffers cycle
// candidates, and schedules background collections. Strong count updates are
// atomic; everything that touches the object graph structurally (allocation,
// the final release of a cell, collection) serializes on mu.
type Heap struct {
	limits config.Limits

	mu         sync.Mutex
	roots      []*cell
	liveBytes  int
	liveCells  int
	stats      Stats
	allocsTick int64

	collecting atomic.Bool
	wg         sync.WaitGroup
}

// Stats is a snapshot of heap counters. Read through Stats(); fields are not
// updated in place for callers.
type Stats struct {
	Allocations   int64
	LiveCells     int
	LiveBytes     int
	Collections   int64
	FreedByCycles int64
	FreedCells    int64
	Candidates    int
}

func NewHeap(limits config.Limits) *Heap {
	return &Heap{limits: limits}
}

// Alloc places v under heap management with an initial strong count of one.
// When the memory budget would be exceeded it runs one synchronous collection
// and retries before failing with OutOfMemory.
func (h *Heap) Alloc(v Traceable) (Rc, error) {
	size := v.TraceSize()

	h.mu.Lock()
	if h.liveBytes+size > h.limits.MemoryBudgetBytes {
		if _, err := h.collectLocked(h.limits.GCIterationCap); err != nil {
			h.mu.Unlock()
			return Rc{}, err
		}
		if h.liveBytes+size > h.limits.MemoryBudgetBytes {
			remaining := h.limits.MemoryBudgetBytes - h.liveBytes
			h.mu.Unlock()
			return Rc{}, outOfMemory(size, remaining)
		}
	}
	c := &cell{size: size, value: v, heap: h}
	c.strong.Store(1)
	h.liveBytes += size
	h.liveCells++
	h.stats.Allocations++
	h.allocsTick++
	trigger := h.allocsTick >= int64(h.limits.GCAllocationThreshold)
	if trigger {
		h.allocsTick = 0
	}
	h.mu.Unlock()

	if trigger {
		h.triggerBackgroundCollection()
	}
	return Rc{c: c}, nil
}

// IncRef takes an additional strong reference. Lock-free.
func (h *Heap) IncRef(r Rc) Rc {
	if r.c != nil && !r.c.freed.Load() {
		r.c.strong.Add(1)
	}
	return r
}

// DecRef drops one strong reference. Reaching zero frees the cell and
// releases its children immediately; a nonzero remainder marks the cell as a
// possible cycle root, since only a decrement can turn a live cycle into
// garbage.
func (h *Heap) DecRef(r Rc) {
	c := r.c
	if c == nil || c.freed.Load() {
		return
	}
	n := c.strong.Add(-1)
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 {
		h.freeLocked(c)
		return
	}
	c.color = colorPurple
	if !c.buffered {
		c.buffered = true
		h.roots = append(h.roots, c)
	}
}

// freeLocked reclaims c and cascades through every strong edge it owned,
// using an explicit worklist so long ownership chains cannot overflow the
// stack.
func (h *Heap) freeLocked(c *cell) {
	work := []*cell{c}
	for len(work) > 0 {
		c := work[len(work)-1]
		work = work[:len(work)-1]
		if c.freed.Swap(true) {
			continue
		}
		c.strong.Store(0)
		if d, ok := c.value.(Dropper); ok {
			d.Drop()
		}
		c.value.Trace(func(child *Rc) {
			cc := child.c
			if cc == nil || cc.freed.Load() {
				return
			}
			if cc.strong.Add(-1) <= 0 {
				work = append(work, cc)
				return
			}
			cc.color = colorPurple
			if !cc.buffered {
				cc.buffered = true
				h.roots = append(h.roots, cc)
			}
		})
		h.liveBytes -= c.size
		h.liveCells--
		h.stats.FreedCells++
		c.color = colorBlack
	}
}

// triggerBackgroundCollection starts one collection goroutine unless one is
// already in flight.
func (h *Heap) triggerBackgroundCollection() {
	if !h.collecting.CompareAndSwap(false, true) {
		return
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.collecting.Store(false)
		h.CollectCycles()
	}()
}

// WaitForCollector blocks until any in-flight background collection has
// finished. Tests and shutdown paths use it; mutators never need to.
func (h *Heap) WaitForCollector() {
	h.wg.Wait()
}

func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.stats
	s.LiveCells = h.liveCells
	s.LiveBytes = h.liveBytes
	s.Candidates = len(h.roots)
	return s
}
