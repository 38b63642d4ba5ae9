package runtime

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/script-lang/script/internal/config"
)

// FuncImpl is one compiled function body. env is the closure being invoked,
// or nil for a direct call to a top-level function. Implementations return
// either a value or a tail transfer; the trampoline in run keeps tail chains
// off the Go stack.
type FuncImpl func(rt *ClosureRuntime, env *ClosureValue, args []Rc) (Outcome, error)

// Outcome is what a function body produces: a value, or a pending tail call
// the trampoline continues with.
type Outcome struct {
	Value Rc
	tail  *tailTransfer
}

type tailTransfer struct {
	fn   FunctionID
	env  *ClosureValue
	args []Rc
}

// Return wraps a computed value.
func Return(v Rc) Outcome { return Outcome{Value: v} }

// TailCall transfers to a top-level function in tail position. The caller's
// frame is gone by the time the callee runs.
func TailCall(fn FunctionID, args []Rc) Outcome {
	return Outcome{tail: &tailTransfer{fn: fn, args: args}}
}

// TailInvoke transfers to a closure in tail position.
func TailInvoke(closure Rc, args []Rc) (Outcome, error) {
	cl, ok := closure.Value().(*ClosureValue)
	if !ok {
		return Outcome{}, errors.Wrap(ErrUseAfterFree, "tail call through a non-closure or freed value")
	}
	return Outcome{tail: &tailTransfer{fn: cl.Fn, env: cl, args: args}}, nil
}

// ClosureRuntime holds the interned function table and drives invocation.
// One runtime serves one interpreter; the table is read-mostly, so lookups
// take a read lock while registration is expected only during loading.
type ClosureRuntime struct {
	heap   *Heap
	limits config.Limits

	mu     sync.RWMutex
	funcs  []funcEntry
	byName map[string]FunctionID

	depth int
}

type funcEntry struct {
	name  string
	arity int
	impl  FuncImpl
}

func NewClosureRuntime(heap *Heap, limits config.Limits) *ClosureRuntime {
	return &ClosureRuntime{
		heap:   heap,
		limits: limits,
		byName: make(map[string]FunctionID),
	}
}

func (rt *ClosureRuntime) Heap() *Heap { return rt.heap }

// Register interns a function body under name. Registering the same name
// again reuses the id and replaces the body, which is what hot reload wants.
func (rt *ClosureRuntime) Register(name string, arity int, impl FuncImpl) FunctionID {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if id, ok := rt.byName[name]; ok {
		rt.funcs[id] = funcEntry{name: name, arity: arity, impl: impl}
		return id
	}
	id := FunctionID(len(rt.funcs))
	rt.funcs = append(rt.funcs, funcEntry{name: name, arity: arity, impl: impl})
	rt.byName[name] = id
	return id
}

func (rt *ClosureRuntime) LookupFunction(name string) (FunctionID, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	id, ok := rt.byName[name]
	return id, ok
}

func (rt *ClosureRuntime) entry(id FunctionID) (funcEntry, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	if int(id) >= len(rt.funcs) {
		return funcEntry{}, unknownFunction(id)
	}
	return rt.funcs[id], nil
}

// NewClosure allocates a closure over fn with the given environment. The
// arity is taken from the function table, so a closure can never disagree
// with its body about parameter count.
func (rt *ClosureRuntime) NewClosure(fn FunctionID, captures []Capture) (Rc, error) {
	entry, err := rt.entry(fn)
	if err != nil {
		return Rc{}, err
	}
	return rt.heap.Alloc(NewClosureValue(fn, entry.name, entry.arity, captures))
}

// Invoke calls a closure value with args. Arity mismatches fail before the
// body runs.
func (rt *ClosureRuntime) Invoke(closure Rc, args []Rc) (Rc, error) {
	cl, ok := closure.Value().(*ClosureValue)
	if !ok {
		return Rc{}, errors.Wrap(ErrUseAfterFree, "invoke on a non-closure or freed value")
	}
	return rt.run(cl.Fn, cl, args)
}

// CallDirect calls a top-level function without a closure environment. The
// lowering emits this whenever the callee is statically known, skipping the
// closure allocation entirely.
func (rt *ClosureRuntime) CallDirect(fn FunctionID, args []Rc) (Rc, error) {
	return rt.run(fn, nil, args)
}

// run is the trampoline. Non-tail calls nest through Invoke or CallDirect
// and consume call depth; tail transfers loop here in constant stack and
// count nothing, so tail recursion depth is limited only by the collector's
// memory budget.
func (rt *ClosureRuntime) run(fn FunctionID, env *ClosureValue, args []Rc) (Rc, error) {
	rt.depth++
	defer func() { rt.depth-- }()
	if rt.depth > rt.limits.MaxCallDepth {
		return Rc{}, callDepthExceeded(rt.limits.MaxCallDepth)
	}
	for {
		entry, err := rt.entry(fn)
		if err != nil {
			return Rc{}, err
		}
		if len(args) != entry.arity {
			return Rc{}, arityMismatch(entry.name, entry.arity, len(args))
		}
		out, err := entry.impl(rt, env, args)
		if err != nil {
			return Rc{}, err
		}
		if out.tail == nil {
			return out.Value, nil
		}
		fn, env, args = out.tail.fn, out.tail.env, out.tail.args
	}
}
