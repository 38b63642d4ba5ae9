package runtime

import (
	"fmt"
	"strings"
)

// ValueKind tags the dynamic type of a managed value. Gradual code branches
// on this at runtime-check sites; fully typed code never inspects it.
type ValueKind string

const (
	I32Kind     ValueKind = "i32"
	F32Kind     ValueKind = "f32"
	BoolKind    ValueKind = "bool"
	StringKind  ValueKind = "string"
	UnitKind    ValueKind = "unit"
	ArrayKind   ValueKind = "array"
	StructKind  ValueKind = "struct"
	EnumKind    ValueKind = "enum"
	ClosureKind ValueKind = "closure"
	FutureKind  ValueKind = "future"
)

// Value is the runtime representation of every Script value. All values are
// Traceable so the collector can walk any of them uniformly; scalars simply
// trace nothing.
type Value interface {
	Traceable
	Kind() ValueKind
	Inspect() string
}

type I32Value struct {
	Val int32
}

func (v *I32Value) Kind() ValueKind { return I32Kind }
func (v *I32Value) Inspect() string { return fmt.Sprintf("%d", v.Val) }
func (v *I32Value) Trace(func(*Rc)) {}
func (v *I32Value) TraceSize() int { return 8 }

type F32Value struct {
	Val float32
}

func (v *F32Value) Kind() ValueKind { return F32Kind }
func (v *F32Value) Inspect() string { return fmt.Sprintf("%g", v.Val) }
func (v *F32Value) Trace(func(*Rc)) {}
func (v *F32Value) TraceSize() int { return 8 }

type BoolValue struct {
	Val bool
}

func (v *BoolValue) Kind() ValueKind { return BoolKind }
func (v *BoolValue) Inspect() string { return fmt.Sprintf("%t", v.Val) }
func (v *BoolValue) Trace(func(*Rc)) {}
func (v *BoolValue) TraceSize() int { return 1 }

type StringValue struct {
	Val string
}

func (v *StringValue) Kind() ValueKind { return StringKind }
func (v *StringValue) Inspect() string { return v.Val }
func (v *StringValue) Trace(func(*Rc)) {}
func (v *StringValue) TraceSize() int { return 16 + len(v.Val) }

type UnitValue struct{}

func (v *UnitValue) Kind() ValueKind { return UnitKind }
func (v *UnitValue) Inspect() string { return "()" }
func (v *UnitValue) Trace(func(*Rc)) {}
func (v *UnitValue) TraceSize() int { return 0 }

// ArrayValue owns its elements. Elements are strong references and therefore
// edges the collector follows.
type ArrayValue struct {
	Elems []Rc
}

func (v *ArrayValue) Kind() ValueKind { return ArrayKind }

func (v *ArrayValue) Inspect() string {
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = inspectRc(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v *ArrayValue) Trace(visit func(*Rc)) {
	for i := range v.Elems {
		visit(&v.Elems[i])
	}
}

func (v *ArrayValue) TraceSize() int { return 24 + 16*len(v.Elems) }

// StructValue keeps fields in declaration order so Inspect output is stable.
type StructValue struct {
	Name   string
	Names  []string
	Fields []Rc
}

func (v *StructValue) Kind() ValueKind { return StructKind }

func (v *StructValue) Inspect() string {
	parts := make([]string, len(v.Fields))
	for i := range v.Fields {
		parts[i] = v.Names[i] + ": " + inspectRc(v.Fields[i])
	}
	return v.Name + " { " + strings.Join(parts, ", ") + " }"
}

func (v *StructValue) Trace(visit func(*Rc)) {
	for i := range v.Fields {
		visit(&v.Fields[i])
	}
}

func (v *StructValue) TraceSize() int { return 32 + 16*len(v.Fields) }

// Field returns the named field's reference.
func (v *StructValue) Field(name string) (Rc, bool) {
	for i, n := range v.Names {
		if n == name {
			return v.Fields[i], true
		}
	}
	return Rc{}, false
}

// EnumValue is a tagged variant with an optional payload. Option and Result
// values are ordinary enums at runtime.
type EnumValue struct {
	Enum    string
	Variant string
	Payload []Rc
}

func (v *EnumValue) Kind() ValueKind { return EnumKind }

func (v *EnumValue) Inspect() string {
	if len(v.Payload) == 0 {
		return v.Variant
	}
	parts := make([]string, len(v.Payload))
	for i, p := range v.Payload {
		parts[i] = inspectRc(p)
	}
	return v.Variant + "(" + strings.Join(parts, ", ") + ")"
}

func (v *EnumValue) Trace(visit func(*Rc)) {
	for i := range v.Payload {
		visit(&v.Payload[i])
	}
}

func (v *EnumValue) TraceSize() int { return 32 + 16*len(v.Payload) }

func inspectRc(r Rc) string {
	val := r.Value()
	if val == nil {
		return "<freed>"
	}
	if v, ok := val.(Value); ok {
		return v.Inspect()
	}
	return "<opaque>"
}
