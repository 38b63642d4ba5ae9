package ir

import (
	"testing"

	"github.com/script-lang/script/internal/runtime"
	"github.com/script-lang/script/internal/token"
	"github.com/script-lang/script/internal/types"
)

func TestImmediatelyInvokedClosureBecomesDirectCall(t *testing.T) {
	b := NewBuilder()
	arg := b.NewOperand()
	cl := b.BuildCreateClosure(runtime.FunctionID(3), "helper", nil)
	b.BuildInvokeClosure(cl, []ValueID{arg}, types.I32, false)

	instrs := b.Finish()
	if len(instrs) != 1 {
		t.Fatalf("got %d instructions, want 1: %v", len(instrs), instrs)
	}
	call, ok := instrs[0].(*CallDirect)
	if !ok {
		t.Fatalf("got %T, want CallDirect", instrs[0])
	}
	if call.Fn != 3 || call.FnName != "helper" {
		t.Errorf("call = %s", call)
	}
	if !call.ReturnType.Equal(types.I32) {
		t.Errorf("return type = %s, want i32", call.ReturnType)
	}
}

func TestCapturedClosureKeepsAllocation(t *testing.T) {
	b := NewBuilder()
	captured := b.NewOperand()
	cl := b.BuildCreateClosure(runtime.FunctionID(1), "counter", []CaptureSpec{
		{Name: "n", Source: captured, Mode: CaptureByValue},
	})
	b.BuildInvokeClosure(cl, nil, types.I32, false)

	instrs := b.Finish()
	if len(instrs) != 2 {
		t.Fatalf("got %d instructions, want 2", len(instrs))
	}
	if _, ok := instrs[0].(*CreateClosure); !ok {
		t.Errorf("capturing closure must keep its allocation, got %T", instrs[0])
	}
	if _, ok := instrs[1].(*InvokeClosure); !ok {
		t.Errorf("call through environment must stay indirect, got %T", instrs[1])
	}
}

func TestMultiplyUsedClosureKeepsAllocation(t *testing.T) {
	b := NewBuilder()
	cl := b.BuildCreateClosure(runtime.FunctionID(2), "shared", nil)
	b.BuildInvokeClosure(cl, nil, types.Unit, false)
	b.BuildInvokeClosure(cl, nil, types.Unit, false)

	instrs := b.Finish()
	if len(instrs) != 3 {
		t.Fatalf("got %d instructions, want 3", len(instrs))
	}
	if _, ok := instrs[0].(*CreateClosure); !ok {
		t.Errorf("shared closure must survive, got %T", instrs[0])
	}
}

func TestTailFlagSurvivesRewrite(t *testing.T) {
	b := NewBuilder()
	cl := b.BuildCreateClosure(runtime.FunctionID(4), "loop", nil)
	b.BuildInvokeClosure(cl, nil, types.Unit, true)

	instrs := b.Finish()
	call, ok := instrs[0].(*CallDirect)
	if !ok || !call.Tail {
		t.Fatalf("tail invoke must rewrite to a tail direct call, got %v", instrs[0])
	}
}

func TestCheckTypePreserved(t *testing.T) {
	b := NewBuilder()
	v := b.NewOperand()
	span := token.Span{Start: token.Position{Line: 2, Column: 5}}
	b.BuildCheckType(v, types.I32, span)
	cl := b.BuildCreateClosure(runtime.FunctionID(5), "f", nil)
	b.BuildInvokeClosure(cl, []ValueID{v}, types.TUnknown{}, false)

	instrs := b.Finish()
	if len(instrs) != 2 {
		t.Fatalf("got %d instructions, want 2", len(instrs))
	}
	check, ok := instrs[0].(*CheckType)
	if !ok {
		t.Fatalf("got %T, want CheckType", instrs[0])
	}
	if check.Span.Start.Line != 2 || !check.Expected.Equal(types.I32) {
		t.Errorf("check = %s at %v", check, check.Span)
	}
}

func TestInstructionStrings(t *testing.T) {
	cc := &CreateClosure{Dst: 1, Fn: 2, FnName: "f", Captures: []CaptureSpec{
		{Name: "x", Source: 0, Mode: CaptureByRef},
	}}
	if got := cc.String(); got != "v1 = closure f [x=v0(ref)]" {
		t.Errorf("CreateClosure.String() = %q", got)
	}
	inv := &InvokeClosure{Dst: 3, Closure: 1, Args: []ValueID{0}, ReturnType: types.I32}
	if got := inv.String(); got != "v3 = invoke v1(v0) : i32" {
		t.Errorf("InvokeClosure.String() = %q", got)
	}
	call := &CallDirect{Dst: 4, Fn: 2, FnName: "f", ReturnType: types.Unit, Tail: true}
	if got := call.String(); got != "v4 = tail_call f() : ()" {
		t.Errorf("CallDirect.String() = %q", got)
	}
}
