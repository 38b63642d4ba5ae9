package types

import (
	"fmt"
	"strings"
)

// Type is the interface for all types in the system. Two types are equal iff
// they are structurally identical; equality never looks through type
// variables, so callers must fully resolve a type before comparing it against
// anything exposed to later compiler phases.
type Type interface {
	String() string
	Equal(Type) bool
}

// TPrim is a primitive type.
type TPrim uint8

const (
	I32 TPrim = iota
	F32
	Bool
	String
	Unit
)

func (p TPrim) String() string {
	switch p {
	case I32:
		return "i32"
	case F32:
		return "f32"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Unit:
		return "()"
	default:
		return fmt.Sprintf("prim(%d)", uint8(p))
	}
}

func (p TPrim) Equal(other Type) bool {
	o, ok := other.(TPrim)
	return ok && o == p
}

// TUnknown is the gradual-typing escape hatch. It unifies with anything, and
// every such unification is recorded as an explicit runtime check rather than
// a silent bypass.
type TUnknown struct{}

func (TUnknown) String() string { return "unknown" }

func (TUnknown) Equal(other Type) bool {
	_, ok := other.(TUnknown)
	return ok
}

// TVar is a unification variable. It must never appear in a resolved type
// handed to later phases.
type TVar struct {
	ID uint32
}

func (t TVar) String() string { return fmt.Sprintf("T%d", t.ID) }

func (t TVar) Equal(other Type) bool {
	o, ok := other.(TVar)
	return ok && o.ID == t.ID
}

// TFunc is a function type. A zero-parameter function has Params of length
// zero, never a synthetic unit parameter.
type TFunc struct {
	Params []Type
	Return Type
}

func (t TFunc) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(params, ", "), t.Return)
}

func (t TFunc) Equal(other Type) bool {
	o, ok := other.(TFunc)
	if !ok || len(o.Params) != len(t.Params) {
		return false
	}
	for i, p := range t.Params {
		if !p.Equal(o.Params[i]) {
			return false
		}
	}
	return t.Return.Equal(o.Return)
}

// TArray is a homogeneous array type.
type TArray struct {
	Elem Type
}

func (t TArray) String() string { return "[" + t.Elem.String() + "]" }

func (t TArray) Equal(other Type) bool {
	o, ok := other.(TArray)
	return ok && t.Elem.Equal(o.Elem)
}

// TGeneric is an applied named generic such as Option<i32> or Result<T, E>.
type TGeneric struct {
	Name string
	Args []Type
}

func (t TGeneric) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(args, ", "))
}

func (t TGeneric) Equal(other Type) bool {
	o, ok := other.(TGeneric)
	if !ok || o.Name != t.Name || len(o.Args) != len(t.Args) {
		return false
	}
	for i, a := range t.Args {
		if !a.Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Field is one named struct field.
type Field struct {
	Name string
	Type Type
}

// TStruct is a nominal struct type.
type TStruct struct {
	Name       string
	TypeParams []string
	Fields     []Field
}

func (t TStruct) String() string {
	if len(t.TypeParams) == 0 {
		return t.Name
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(t.TypeParams, ", "))
}

func (t TStruct) Equal(other Type) bool {
	o, ok := other.(TStruct)
	if !ok || o.Name != t.Name || len(o.Fields) != len(t.Fields) {
		return false
	}
	for i, f := range t.Fields {
		if f.Name != o.Fields[i].Name || !f.Type.Equal(o.Fields[i].Type) {
			return false
		}
	}
	return true
}

// FieldType returns the declared type of a field, if present.
func (t TStruct) FieldType(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Variant is one enum constructor with its payload types.
type Variant struct {
	Name    string
	Payload []Type
}

// TEnum is a nominal enum (sum) type.
type TEnum struct {
	Name       string
	TypeParams []string
	Variants   []Variant
}

func (t TEnum) String() string {
	if len(t.TypeParams) == 0 {
		return t.Name
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(t.TypeParams, ", "))
}

func (t TEnum) Equal(other Type) bool {
	o, ok := other.(TEnum)
	if !ok || o.Name != t.Name || len(o.Variants) != len(t.Variants) {
		return false
	}
	for i, v := range t.Variants {
		ov := o.Variants[i]
		if v.Name != ov.Name || len(v.Payload) != len(ov.Payload) {
			return false
		}
		for j, p := range v.Payload {
			if !p.Equal(ov.Payload[j]) {
				return false
			}
		}
	}
	return true
}

// VariantNamed returns the variant with the given constructor name.
func (t TEnum) VariantNamed(name string) (Variant, bool) {
	for _, v := range t.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}
