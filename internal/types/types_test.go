package types

import (
	"testing"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		input    Type
		expected string
	}{
		{I32, "i32"},
		{F32, "f32"},
		{Bool, "bool"},
		{String, "string"},
		{Unit, "()"},
		{TUnknown{}, "unknown"},
		{TVar{ID: 7}, "T7"},
		{TArray{Elem: I32}, "[i32]"},
		{TFunc{Params: []Type{I32, Bool}, Return: String}, "fn(i32, bool) -> string"},
		{TFunc{Return: Unit}, "fn() -> ()"},
		{TGeneric{Name: "Option", Args: []Type{I32}}, "Option<i32>"},
		{TGeneric{Name: "Result", Args: []Type{I32, String}}, "Result<i32, string>"},
	}
	for _, tt := range tests {
		if got := tt.input.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestTypeEqual(t *testing.T) {
	pair := TStruct{
		Name:   "Pair",
		Fields: []Field{{Name: "a", Type: I32}, {Name: "b", Type: I32}},
	}
	tests := []struct {
		name  string
		a, b  Type
		equal bool
	}{
		{"same prim", I32, I32, true},
		{"different prims", I32, F32, false},
		{"prim vs array", I32, TArray{Elem: I32}, false},
		{"same var", TVar{ID: 1}, TVar{ID: 1}, true},
		{"different vars", TVar{ID: 1}, TVar{ID: 2}, false},
		{"unknown vs unknown", TUnknown{}, TUnknown{}, true},
		{"same function", TFunc{Params: []Type{I32}, Return: Bool}, TFunc{Params: []Type{I32}, Return: Bool}, true},
		{"arity differs", TFunc{Params: []Type{I32}, Return: Bool}, TFunc{Return: Bool}, false},
		{"same struct", pair, TStruct{Name: "Pair", Fields: pair.Fields}, true},
		{"struct name differs", pair, TStruct{Name: "Point", Fields: pair.Fields}, false},
		{"same generic", TGeneric{Name: "Option", Args: []Type{I32}}, TGeneric{Name: "Option", Args: []Type{I32}}, true},
		{"generic args differ", TGeneric{Name: "Option", Args: []Type{I32}}, TGeneric{Name: "Option", Args: []Type{Bool}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal(%s, %s) = %t, want %t", tt.a, tt.b, got, tt.equal)
			}
			if got := tt.b.Equal(tt.a); got != tt.equal {
				t.Errorf("Equal(%s, %s) = %t, want %t", tt.b, tt.a, got, tt.equal)
			}
		})
	}
}

func TestFreeVarsOrder(t *testing.T) {
	fn := TFunc{
		Params: []Type{TVar{ID: 3}, TArray{Elem: TVar{ID: 1}}, TVar{ID: 3}},
		Return: TGeneric{Name: "Option", Args: []Type{TVar{ID: 2}}},
	}
	got := FreeVars(fn)
	want := []uint32{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("FreeVars = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FreeVars = %v, want %v", got, want)
		}
	}
}

func TestContainsVars(t *testing.T) {
	if ContainsVars(TFunc{Params: []Type{I32}, Return: Bool}) {
		t.Error("closed function type should contain no vars")
	}
	if !ContainsVars(TArray{Elem: TVar{ID: 0}}) {
		t.Error("array over a var should contain vars")
	}
}

func TestContainsUnknown(t *testing.T) {
	if ContainsUnknown(TArray{Elem: I32}) {
		t.Error("fully typed array should not contain unknown")
	}
	if !ContainsUnknown(TFunc{Params: []Type{TUnknown{}}, Return: I32}) {
		t.Error("function over unknown should report it")
	}
}

func TestStructFieldType(t *testing.T) {
	s := TStruct{Name: "Point", Fields: []Field{{Name: "x", Type: I32}, {Name: "y", Type: I32}}}
	if ft, ok := s.FieldType("y"); !ok || !ft.Equal(I32) {
		t.Errorf("FieldType(y) = %v, %t", ft, ok)
	}
	if _, ok := s.FieldType("z"); ok {
		t.Error("FieldType(z) should miss")
	}
}

func TestEnumVariantNamed(t *testing.T) {
	e := TEnum{Name: "Option", Variants: []Variant{
		{Name: "Some", Payload: []Type{TVar{ID: 0}}},
		{Name: "None"},
	}}
	if v, ok := e.VariantNamed("Some"); !ok || len(v.Payload) != 1 {
		t.Errorf("VariantNamed(Some) = %v, %t", v, ok)
	}
	if _, ok := e.VariantNamed("Err"); ok {
		t.Error("VariantNamed(Err) should miss")
	}
}
