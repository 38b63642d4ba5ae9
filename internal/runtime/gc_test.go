package runtime

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeCycle builds a two-cell ownership cycle: a closure capturing an array
// that in turn stores the closure. External handles to both are returned.
func makeCycle(t *testing.T, h *Heap, rt *ClosureRuntime) (Rc, Rc) {
	t.Helper()
	env, err := h.Alloc(&ArrayValue{})
	require.NoError(t, err)

	fn := rt.Register("tick", 0, func(*ClosureRuntime, *ClosureValue, []Rc) (Outcome, error) {
		return Return(Rc{}), nil
	})
	cl, err := rt.NewClosure(fn, []Capture{ByValueCapture("env", h.IncRef(env))})
	require.NoError(t, err)

	arr := env.Value().(*ArrayValue)
	arr.Elems = append(arr.Elems, h.IncRef(cl))
	return cl, env
}

func TestMutualCaptureCycleIsCollected(t *testing.T) {
	h := NewHeap(quietLimits())
	rt := NewClosureRuntime(h, quietLimits())
	cl, env := makeCycle(t, h, rt)

	// Drop both external handles; the cycle keeps both counts at one.
	h.DecRef(cl)
	h.DecRef(env)
	require.Equal(t, 2, h.Stats().LiveCells, "cycle must survive plain refcounting")

	freed, err := h.CollectCycles()
	require.NoError(t, err)
	assert.Equal(t, 2, freed)
	assert.Equal(t, 0, h.Stats().LiveCells)
	assert.False(t, cl.Valid())
	assert.False(t, env.Valid())
}

func TestAnchoredCycleSurvives(t *testing.T) {
	h := NewHeap(quietLimits())
	rt := NewClosureRuntime(h, quietLimits())
	cl, env := makeCycle(t, h, rt)

	// Keep the closure anchored; only the array handle drops.
	h.DecRef(env)
	freed, err := h.CollectCycles()
	require.NoError(t, err)
	assert.Zero(t, freed, "an externally reachable cycle must not be freed")
	assert.True(t, cl.Valid())
	assert.True(t, env.Valid())

	// Dropping the anchor re-buffers the cycle and the next pass frees it.
	h.DecRef(cl)
	freed, err = h.CollectCycles()
	require.NoError(t, err)
	assert.Equal(t, 2, freed)
	assert.Equal(t, 0, h.Stats().LiveCells)
}

func TestAcyclicGarbageNeedsNoCollector(t *testing.T) {
	h := NewHeap(quietLimits())
	leaf, err := h.Alloc(&I32Value{Val: 1})
	require.NoError(t, err)
	arr, err := h.Alloc(&ArrayValue{Elems: []Rc{leaf}})
	require.NoError(t, err)
	h.DecRef(arr)

	assert.Equal(t, 0, h.Stats().LiveCells)
	assert.Zero(t, h.Stats().FreedByCycles, "refcount-only garbage must not be attributed to the collector")
}

func TestCollectIsIdempotent(t *testing.T) {
	h := NewHeap(quietLimits())
	rt := NewClosureRuntime(h, quietLimits())
	cl, env := makeCycle(t, h, rt)
	h.DecRef(cl)
	h.DecRef(env)

	freed, err := h.CollectCycles()
	require.NoError(t, err)
	require.Equal(t, 2, freed)

	freed, err = h.CollectCycles()
	require.NoError(t, err)
	assert.Zero(t, freed, "second pass over an empty buffer frees nothing")
}

func TestIncrementalCollection(t *testing.T) {
	h := NewHeap(quietLimits())
	rt := NewClosureRuntime(h, quietLimits())

	// Several independent cycles, then a tiny per-call budget.
	for i := 0; i < 8; i++ {
		cl, env := makeCycle(t, h, rt)
		h.DecRef(cl)
		h.DecRef(env)
	}
	require.Equal(t, 16, h.Stats().LiveCells)

	done, err := h.CollectCyclesIncremental(1)
	require.NoError(t, err)
	assert.False(t, done, "one visit cannot drain eight cycles")
	assert.Less(t, h.Stats().LiveCells, 16, "each call must make progress")

	for i := 0; i < 32 && !done; i++ {
		done, err = h.CollectCyclesIncremental(1)
		require.NoError(t, err)
	}
	assert.True(t, done)
	assert.Equal(t, 0, h.Stats().LiveCells)
}

func TestIterationCap(t *testing.T) {
	l := quietLimits()
	l.GCIterationCap = 3
	h := NewHeap(l)
	rt := NewClosureRuntime(h, l)

	// A chain of arrays ending in a cycle, larger than the cap.
	cl, env := makeCycle(t, h, rt)
	chain := cl
	for i := 0; i < 8; i++ {
		next, err := h.Alloc(&ArrayValue{Elems: []Rc{chain}})
		require.NoError(t, err)
		chain = next
	}
	h.DecRef(env)
	// Buffer the chain head as a candidate without freeing it.
	h.IncRef(chain)
	h.DecRef(chain)

	_, err := h.CollectCycles()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResourceLimitExceeded))
	assert.True(t, chain.Valid(), "an aborted collection must not free anything it visited")
}

func TestBackgroundCollectionTriggers(t *testing.T) {
	l := quietLimits()
	l.GCAllocationThreshold = 4
	h := NewHeap(l)
	rt := NewClosureRuntime(h, l)

	cl, env := makeCycle(t, h, rt)
	h.DecRef(cl)
	h.DecRef(env)

	// Crossing the allocation threshold wakes the collector.
	var handles []Rc
	for i := 0; i < 8; i++ {
		r, err := h.Alloc(&I32Value{Val: int32(i)})
		require.NoError(t, err)
		handles = append(handles, r)
	}
	h.WaitForCollector()
	assert.False(t, cl.Valid(), "background collection should have freed the cycle")

	for _, r := range handles {
		h.DecRef(r)
	}
	assert.Equal(t, 0, h.Stats().LiveCells)
}

func TestUpgradeRacingCollectionNeverMintsFreed(t *testing.T) {
	h := NewHeap(quietLimits())
	rt := NewClosureRuntime(h, quietLimits())

	// An upgrade racing a collection must either fail or produce a reference
	// the collector then treats as external. Run many rounds so the two sides
	// interleave both ways.
	for i := 0; i < 200; i++ {
		cl, env := makeCycle(t, h, rt)
		w := cl.Downgrade()
		h.DecRef(cl)
		h.DecRef(env)

		done := make(chan struct{})
		go func() {
			defer close(done)
			if up, ok := w.Upgrade(); ok {
				if !up.Valid() {
					t.Error("upgrade minted a reference to a freed cell")
				}
				h.DecRef(up)
			}
		}()
		_, err := h.CollectCycles()
		require.NoError(t, err)
		<-done
		w.Release()

		// Whoever won, a final pass leaves nothing behind.
		_, err = h.CollectCycles()
		require.NoError(t, err)
	}
	assert.Equal(t, 0, h.Stats().LiveCells)
}

func TestCollectionStats(t *testing.T) {
	h := NewHeap(quietLimits())
	rt := NewClosureRuntime(h, quietLimits())
	cl, env := makeCycle(t, h, rt)
	h.DecRef(cl)
	h.DecRef(env)

	_, err := h.CollectCycles()
	require.NoError(t, err)
	s := h.Stats()
	assert.GreaterOrEqual(t, s.Collections, int64(1))
	assert.Equal(t, int64(2), s.FreedByCycles)
	assert.Equal(t, int64(2), s.FreedCells)
	assert.Zero(t, s.Candidates)
}
