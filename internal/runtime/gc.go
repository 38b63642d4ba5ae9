package runtime

// Cycle collection follows the buffered synchronous trial-deletion scheme:
// each candidate root is grayed together with everything it reaches, internal
// edges are subtracted from a scratch count, nodes still externally
// referenced are rescued black, and the rest are condemned white and freed.
// Weak references are not ownership edges and never appear in a trace, so an
// expired capture can neither rescue nor condemn anything.

// CollectCycles drains the entire candidate buffer. It returns the number of
// cells freed by this collection.
func (h *Heap) CollectCycles() (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.collectLocked(h.limits.GCIterationCap)
}

// CollectCyclesIncremental processes candidate roots until roughly workLimit
// node visits have been spent, then yields. It reports whether the buffer was
// fully drained; callers loop until done. A root whose reachable region is
// larger than workLimit is still processed whole, bounded only by the
// iteration cap, so progress is always made.
func (h *Heap) CollectCyclesIncremental(workLimit int) (bool, error) {
	if workLimit <= 0 {
		workLimit = h.limits.GCWorkLimit
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stats.Collections++
	visits := 0
	for len(h.roots) > 0 {
		if visits >= workLimit {
			return false, nil
		}
		if err := h.processRootLocked(&visits); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (h *Heap) collectLocked(iterCap int) (int, error) {
	h.stats.Collections++
	freedBefore := h.stats.FreedCells
	visits := 0
	for len(h.roots) > 0 {
		if err := h.processRootLocked(&visits); err != nil {
			return int(h.stats.FreedCells - freedBefore), err
		}
	}
	freed := int(h.stats.FreedCells - freedBefore)
	h.stats.FreedByCycles += int64(freed)
	return freed, nil
}

// processRootLocked pops one candidate and runs all three phases over its
// reachable region. Trial deletion from any member of a cycle covers the
// whole cycle, so roots are independent units of work.
func (h *Heap) processRootLocked(visits *int) error {
	c := h.roots[0]
	h.roots = h.roots[1:]
	c.buffered = false
	if c.freed.Load() {
		return nil
	}
	if c.color != colorPurple {
		// Re-blackened by a later IncRef cascade or an earlier batch.
		if c.strong.Load() <= 0 {
			h.freeLocked(c)
		}
		return nil
	}

	grays, err := h.markGray(c, visits)
	if err != nil {
		for _, g := range grays {
			if !g.freed.Load() {
				g.color = colorBlack
			}
		}
		c.buffered = true
		h.roots = append(h.roots, c)
		return err
	}
	h.scan(c)
	h.collectWhite(grays)
	return nil
}

// markGray colors the region reachable from root and initializes each cell's
// scratch count from its strong count; a second pass subtracts one for every
// edge internal to the region. A cell whose scratch count stays positive is
// referenced from outside the region.
func (h *Heap) markGray(root *cell, visits *int) ([]*cell, error) {
	var grays []*cell
	stack := []*cell{root}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c.freed.Load() || c.color == colorGray {
			continue
		}
		*visits++
		if *visits > h.limits.GCIterationCap {
			return grays, collectionIterationsExceeded(h.limits.GCIterationCap)
		}
		c.color = colorGray
		c.crc = c.strong.Load()
		grays = append(grays, c)
		c.value.Trace(func(child *Rc) {
			if cc := child.c; cc != nil && !cc.freed.Load() {
				stack = append(stack, cc)
			}
		})
	}
	for _, c := range grays {
		c.value.Trace(func(child *Rc) {
			if cc := child.c; cc != nil && !cc.freed.Load() && cc.color == colorGray {
				cc.crc--
			}
		})
	}
	return grays, nil
}

// scan partitions the gray region: cells with external references become
// black again, together with everything they reach; the rest become white.
func (h *Heap) scan(root *cell) {
	stack := []*cell{root}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c.freed.Load() || c.color != colorGray {
			continue
		}
		if c.crc > 0 {
			h.scanBlack(c)
			continue
		}
		c.color = colorWhite
		c.value.Trace(func(child *Rc) {
			if cc := child.c; cc != nil && !cc.freed.Load() {
				stack = append(stack, cc)
			}
		})
	}
}

func (h *Heap) scanBlack(c *cell) {
	stack := []*cell{c}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c.freed.Load() || c.color == colorBlack {
			continue
		}
		c.color = colorBlack
		c.value.Trace(func(child *Rc) {
			if cc := child.c; cc != nil && !cc.freed.Load() && cc.color != colorBlack {
				stack = append(stack, cc)
			}
		})
	}
}

// collectWhite frees every condemned cell. Freeing releases child edges
// normally, so whites referenced only by other whites cascade to zero even
// when they sit in a batch processed later; the freed flag makes the order
// irrelevant.
func (h *Heap) collectWhite(grays []*cell) {
	for _, c := range grays {
		if c.color == colorWhite && !c.freed.Load() {
			h.freeLocked(c)
		}
	}
}
