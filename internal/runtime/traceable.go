package runtime

// Traceable is implemented by every heap-managed value. Trace must visit each
// strong reference the value owns, exactly once, and nothing else; the cycle
// collector's correctness depends on the visit set matching the ownership
// set. TraceSize reports the value's own footprint in bytes for the memory
// budget, excluding referenced cells.
type Traceable interface {
	Trace(visit func(*Rc))
	TraceSize() int
}

// Dropper is optionally implemented by values that hold external state. Drop
// runs exactly once, when the value's cell is freed, before child references
// are released.
type Dropper interface {
	Drop()
}
