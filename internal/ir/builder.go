package ir

import (
	"github.com/script-lang/script/internal/runtime"
	"github.com/script-lang/script/internal/token"
	"github.com/script-lang/script/internal/types"
)

// Builder accumulates instructions for one function body. Finish runs the
// direct-call rewrite: a closure that captures nothing and is consumed by a
// single invocation collapses into a plain call, so the common
// immediately-invoked case allocates nothing.
type Builder struct {
	next   ValueID
	instrs []Instruction
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) newValue() ValueID {
	id := b.next
	b.next++
	return id
}

// NewOperand reserves an id for a value produced outside this builder, such
// as a parameter or a constant.
func (b *Builder) NewOperand() ValueID {
	return b.newValue()
}

func (b *Builder) BuildCreateClosure(fn runtime.FunctionID, name string, captures []CaptureSpec) ValueID {
	dst := b.newValue()
	b.instrs = append(b.instrs, &CreateClosure{Dst: dst, Fn: fn, FnName: name, Captures: captures})
	return dst
}

func (b *Builder) BuildInvokeClosure(closure ValueID, args []ValueID, ret types.Type, tail bool) ValueID {
	dst := b.newValue()
	b.instrs = append(b.instrs, &InvokeClosure{
		Dst:        dst,
		Closure:    closure,
		Args:       args,
		ReturnType: ret,
		Tail:       tail,
	})
	return dst
}

func (b *Builder) BuildCallDirect(fn runtime.FunctionID, name string, args []ValueID, ret types.Type, tail bool) ValueID {
	dst := b.newValue()
	b.instrs = append(b.instrs, &CallDirect{
		Dst:        dst,
		Fn:         fn,
		FnName:     name,
		Args:       args,
		ReturnType: ret,
		Tail:       tail,
	})
	return dst
}

func (b *Builder) BuildCheckType(value ValueID, expected types.Type, span token.Span) {
	b.instrs = append(b.instrs, &CheckType{Value: value, Expected: expected, Span: span})
}

// Finish returns the instruction list with the direct-call rewrite applied.
// The builder is spent afterwards.
func (b *Builder) Finish() []Instruction {
	out := b.rewriteDirectCalls(b.instrs)
	b.instrs = nil
	return out
}

// rewriteDirectCalls replaces InvokeClosure with CallDirect where the callee
// is a capture-free CreateClosure used nowhere else, then drops the dead
// allocation. Captured closures keep the allocation: their environment is
// part of their identity.
func (b *Builder) rewriteDirectCalls(instrs []Instruction) []Instruction {
	creators := make(map[ValueID]*CreateClosure)
	uses := make(map[ValueID]int)
	for _, ins := range instrs {
		switch ins := ins.(type) {
		case *CreateClosure:
			if len(ins.Captures) == 0 {
				creators[ins.Dst] = ins
			}
			for _, c := range ins.Captures {
				uses[c.Source]++
			}
		case *InvokeClosure:
			uses[ins.Closure]++
			for _, a := range ins.Args {
				uses[a]++
			}
		case *CallDirect:
			for _, a := range ins.Args {
				uses[a]++
			}
		case *CheckType:
			uses[ins.Value]++
		}
	}

	dead := make(map[ValueID]bool)
	out := make([]Instruction, 0, len(instrs))
	for _, ins := range instrs {
		inv, ok := ins.(*InvokeClosure)
		if !ok {
			out = append(out, ins)
			continue
		}
		creator, ok := creators[inv.Closure]
		if !ok || uses[inv.Closure] != 1 {
			out = append(out, ins)
			continue
		}
		dead[creator.Dst] = true
		out = append(out, &CallDirect{
			Dst:        inv.Dst,
			Fn:         creator.Fn,
			FnName:     creator.FnName,
			Args:       inv.Args,
			ReturnType: inv.ReturnType,
			Tail:       inv.Tail,
		})
	}

	final := out[:0]
	for _, ins := range out {
		if cc, ok := ins.(*CreateClosure); ok && dead[cc.Dst] {
			continue
		}
		final = append(final, ins)
	}
	return final
}
