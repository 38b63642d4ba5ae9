package runtime

// FutureState is the lifecycle of a suspended computation.
type FutureState uint8

const (
	FuturePending FutureState = iota
	FutureReady
	FutureFailed
)

func (s FutureState) String() string {
	switch s {
	case FuturePending:
		return "pending"
	case FutureReady:
		return "ready"
	default:
		return "failed"
	}
}

// StepFn advances a suspended computation by one step. It reports done=true
// with the final value, or done=false to stay suspended.
type StepFn func(rt *ClosureRuntime) (Rc, bool, error)

// FutureValue is an async closure that hit a suspension point. It is an
// ordinary heap value: everything live across the suspension sits in holds,
// so the collector keeps the whole frame alive for as long as the future is
// reachable, and frees it with everything it pinned once it is not.
type FutureValue struct {
	Name  string
	state FutureState
	step  StepFn
	holds []Rc

	result  Rc
	failure error
}

func NewFuture(name string, holds []Rc, step StepFn) *FutureValue {
	return &FutureValue{Name: name, step: step, holds: holds}
}

func (f *FutureValue) Kind() ValueKind { return FutureKind }
func (f *FutureValue) State() FutureState { return f.state }

func (f *FutureValue) Inspect() string {
	return "<future " + f.Name + " " + f.state.String() + ">"
}

// Poll drives the state machine one step. A ready future returns its value
// again on every poll; a failed one returns its error again.
func (f *FutureValue) Poll(rt *ClosureRuntime) (Rc, bool, error) {
	switch f.state {
	case FutureReady:
		return f.result, true, nil
	case FutureFailed:
		return Rc{}, true, f.failure
	}
	v, done, err := f.step(rt)
	if err != nil {
		f.state = FutureFailed
		f.failure = err
		f.releaseHolds(rt)
		return Rc{}, true, err
	}
	if !done {
		return Rc{}, false, nil
	}
	f.state = FutureReady
	f.result = v
	f.releaseHolds(rt)
	return v, true, nil
}

// Await polls to completion. Callers that want cooperative scheduling poll
// themselves instead.
func (f *FutureValue) Await(rt *ClosureRuntime) (Rc, error) {
	for {
		v, done, err := f.Poll(rt)
		if err != nil {
			return Rc{}, err
		}
		if done {
			return v, nil
		}
	}
}

// releaseHolds drops the pinned frame once the future settles; only the
// result (if any) stays reachable through the future afterwards.
func (f *FutureValue) releaseHolds(rt *ClosureRuntime) {
	for _, h := range f.holds {
		rt.heap.DecRef(h)
	}
	f.holds = nil
	f.step = nil
}

func (f *FutureValue) Trace(visit func(*Rc)) {
	for i := range f.holds {
		visit(&f.holds[i])
	}
	if f.result.c != nil {
		visit(&f.result)
	}
}

func (f *FutureValue) TraceSize() int { return 64 + 16*len(f.holds) }
