package ir

import (
	"fmt"
	"strings"

	"github.com/script-lang/script/internal/runtime"
	"github.com/script-lang/script/internal/token"
	"github.com/script-lang/script/internal/types"
)

// ValueID names an SSA-style intermediate value within one lowered body.
type ValueID uint32

func (v ValueID) String() string { return fmt.Sprintf("v%d", v) }

// Instruction is one lowered operation. The set covers only what closure
// creation and invocation need; everything else lowers elsewhere.
type Instruction interface {
	fmt.Stringer
	isInstruction()
}

// CaptureMode distinguishes owning captures from observing ones.
type CaptureMode uint8

const (
	CaptureByValue CaptureMode = iota
	CaptureByRef
)

// CaptureSpec binds one free variable of a closure body to the value that
// fills it at creation time.
type CaptureSpec struct {
	Name   string
	Source ValueID
	Mode   CaptureMode
}

// CreateClosure allocates a closure over Fn with the listed captures.
type CreateClosure struct {
	Dst      ValueID
	Fn       runtime.FunctionID
	FnName   string
	Captures []CaptureSpec
}

func (*CreateClosure) isInstruction() {}

func (i *CreateClosure) String() string {
	parts := make([]string, len(i.Captures))
	for n, c := range i.Captures {
		mode := "val"
		if c.Mode == CaptureByRef {
			mode = "ref"
		}
		parts[n] = fmt.Sprintf("%s=%s(%s)", c.Name, i.capSource(c), mode)
	}
	return fmt.Sprintf("%s = closure %s [%s]", i.Dst, i.FnName, strings.Join(parts, ", "))
}

func (i *CreateClosure) capSource(c CaptureSpec) string { return c.Source.String() }

// InvokeClosure calls through a closure value. ReturnType is the statically
// inferred result; unknown results are checked at the call boundary.
type InvokeClosure struct {
	Dst        ValueID
	Closure    ValueID
	Args       []ValueID
	ReturnType types.Type
	Tail       bool
}

func (*InvokeClosure) isInstruction() {}

func (i *InvokeClosure) String() string {
	op := "invoke"
	if i.Tail {
		op = "tail_invoke"
	}
	return fmt.Sprintf("%s = %s %s(%s) : %s", i.Dst, op, i.Closure, joinIDs(i.Args), i.ReturnType)
}

// CallDirect calls a statically known top-level function, skipping closure
// allocation entirely.
type CallDirect struct {
	Dst        ValueID
	Fn         runtime.FunctionID
	FnName     string
	Args       []ValueID
	ReturnType types.Type
	Tail       bool
}

func (*CallDirect) isInstruction() {}

func (i *CallDirect) String() string {
	op := "call"
	if i.Tail {
		op = "tail_call"
	}
	return fmt.Sprintf("%s = %s %s(%s) : %s", i.Dst, op, i.FnName, joinIDs(i.Args), i.ReturnType)
}

// CheckType verifies a value's dynamic kind where gradual typing crossed an
// Unknown/concrete boundary. Inference emits exactly one of these per
// recorded bridge; lowering never silently drops one.
type CheckType struct {
	Value    ValueID
	Expected types.Type
	Span     token.Span
}

func (*CheckType) isInstruction() {}

func (i *CheckType) String() string {
	return fmt.Sprintf("check %s : %s", i.Value, i.Expected)
}

func joinIDs(ids []ValueID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
