package config

// Built-in trait names known to the trait checker.
const (
	EqTraitName      = "Eq"
	OrdTraitName     = "Ord"
	CloneTraitName   = "Clone"
	CopyTraitName    = "Copy"
	DisplayTraitName = "Display"
	DebugTraitName   = "Debug"
	DefaultTraitName = "Default"
	HashTraitName    = "Hash"
)

// Built-in generic type names.
const (
	ArrayTypeName  = "Array"
	OptionTypeName = "Option"
	ResultTypeName = "Result"
	SomeCtorName   = "Some"
	NoneCtorName   = "None"
	OkCtorName     = "Ok"
	ErrCtorName    = "Err"
)

// InlineCaptureSlots is the number of captured variables a closure stores
// inline before falling back to a map. Purely a representation choice;
// lookup semantics are identical on both paths.
const InlineCaptureSlots = 4

const (
	// DefaultInferenceWorkBudget bounds unification steps plus generated
	// constraints for a single top-level item. Exceeding it fails that item
	// with ResourceLimitExceeded instead of hanging on pathological generics.
	DefaultInferenceWorkBudget = 200_000

	// DefaultMaxCallDepth bounds non-tail closure invocation nesting.
	DefaultMaxCallDepth = 10_000

	// DefaultGCAllocationThreshold is the allocation count that wakes the
	// background collector. An allocation count, not a timer, so behavior is
	// deterministic under load.
	DefaultGCAllocationThreshold = 1_000

	// DefaultGCWorkLimit is the per-call edge-traversal budget for
	// incremental collection.
	DefaultGCWorkLimit = 4_096

	// DefaultGCIterationCap is the hard cap on edge traversals within one
	// full collection before it gives up with ResourceLimitExceeded.
	DefaultGCIterationCap = 10_000_000

	// DefaultMemoryBudgetBytes caps traced heap bytes before Alloc fails
	// with OutOfMemory.
	DefaultMemoryBudgetBytes = 256 << 20
)
