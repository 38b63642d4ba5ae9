package runtime

import (
	"testing"
)

func TestFuturePollsToCompletion(t *testing.T) {
	rt, h := newTestRuntime(t)
	held := mustAlloc(t, h, &I32Value{Val: 7})

	steps := 0
	fut := NewFuture("compute", []Rc{held}, func(rt *ClosureRuntime) (Rc, bool, error) {
		steps++
		if steps < 3 {
			return Rc{}, false, nil
		}
		r, err := rt.Heap().Alloc(&I32Value{Val: held.Value().(*I32Value).Val * 6})
		if err != nil {
			return Rc{}, false, err
		}
		return r, true, nil
	})
	fr := mustAlloc(t, h, fut)

	if fut.State() != FuturePending {
		t.Fatalf("state = %s, want pending", fut.State())
	}
	for i := 0; i < 2; i++ {
		if _, done, err := fut.Poll(rt); done || err != nil {
			t.Fatalf("poll %d: done=%t err=%v", i, done, err)
		}
	}
	got, done, err := fut.Poll(rt)
	if err != nil || !done {
		t.Fatalf("final poll: done=%t err=%v", done, err)
	}
	if v := got.Value().(*I32Value).Val; v != 42 {
		t.Errorf("result = %d, want 42", v)
	}
	if fut.State() != FutureReady {
		t.Errorf("state = %s, want ready", fut.State())
	}

	// Settling released the pinned frame.
	if held.Valid() {
		t.Error("holds must be released once the future settles")
	}

	// Polling again returns the same result without rerunning the step.
	again, done, err := fut.Poll(rt)
	if err != nil || !done || !again.identical(got) {
		t.Error("ready future must return its value on every poll")
	}
	if steps != 3 {
		t.Errorf("step ran %d times, want 3", steps)
	}
	h.DecRef(fr)
}

func TestFutureKeepsFrameAliveWhileSuspended(t *testing.T) {
	rt, h := newTestRuntime(t)
	held := mustAlloc(t, h, &StringValue{Val: "pinned"})

	fut := NewFuture("wait", []Rc{held}, func(*ClosureRuntime) (Rc, bool, error) {
		return Rc{}, false, nil
	})
	fr := mustAlloc(t, h, fut)

	if _, done, err := fut.Poll(rt); done || err != nil {
		t.Fatalf("poll: done=%t err=%v", done, err)
	}
	if !held.Valid() {
		t.Fatal("suspended future must pin its frame")
	}

	// Dropping the future frees the frame with it.
	h.DecRef(fr)
	if held.Valid() {
		t.Error("dropping a suspended future must release its frame")
	}
}

func TestAwaitDrivesToResult(t *testing.T) {
	rt, h := newTestRuntime(t)
	remaining := 5
	fut := NewFuture("count", nil, func(rt *ClosureRuntime) (Rc, bool, error) {
		remaining--
		if remaining > 0 {
			return Rc{}, false, nil
		}
		r, err := h.Alloc(&BoolValue{Val: true})
		if err != nil {
			return Rc{}, false, err
		}
		return r, true, nil
	})
	got, err := fut.Await(rt)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Value().(*BoolValue).Val {
		t.Error("unexpected result")
	}
}

func TestFailedFutureStaysFailed(t *testing.T) {
	rt, h := newTestRuntime(t)
	held := mustAlloc(t, h, &I32Value{Val: 1})
	fut := NewFuture("boom", []Rc{held}, func(*ClosureRuntime) (Rc, bool, error) {
		return Rc{}, false, arityMismatch("boom", 1, 0)
	})
	if _, _, err := fut.Poll(rt); err == nil {
		t.Fatal("expected failure")
	}
	if fut.State() != FutureFailed {
		t.Errorf("state = %s, want failed", fut.State())
	}
	if held.Valid() {
		t.Error("failure must release the pinned frame")
	}
	if _, _, err := fut.Poll(rt); err == nil {
		t.Error("failed future must keep returning its error")
	}
}
