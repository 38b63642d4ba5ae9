package infer

import (
	"testing"

	"github.com/script-lang/script/internal/config"
	"github.com/script-lang/script/internal/token"
	"github.com/script-lang/script/internal/types"
)

func TestBuiltinTraitImpls(t *testing.T) {
	c := NewTraitChecker()
	tests := []struct {
		typ   types.Type
		trait string
		want  bool
	}{
		{types.I32, config.EqTraitName, true},
		{types.I32, config.OrdTraitName, true},
		{types.I32, config.CopyTraitName, true},
		{types.F32, config.OrdTraitName, true},
		{types.Bool, config.OrdTraitName, false},
		{types.String, config.EqTraitName, true},
		{types.String, config.CopyTraitName, false},
		{types.Unit, config.DefaultTraitName, true},
		{types.TFunc{Return: types.Unit}, config.CloneTraitName, true},
		{types.TFunc{Return: types.Unit}, config.EqTraitName, false},
	}
	for _, tt := range tests {
		if got := c.Implements(tt.typ, tt.trait); got != tt.want {
			t.Errorf("Implements(%s, %s) = %t, want %t", tt.typ, tt.trait, got, tt.want)
		}
	}
}

func TestStructuralDerivation(t *testing.T) {
	c := NewTraitChecker()
	if !c.Implements(types.TArray{Elem: types.I32}, config.EqTraitName) {
		t.Error("[i32] should derive Eq from its element")
	}
	fnArray := types.TArray{Elem: types.TFunc{Return: types.Unit}}
	if c.Implements(fnArray, config.EqTraitName) {
		t.Error("array of functions must not derive Eq")
	}
	pair := types.TStruct{Name: "Pair", Fields: []types.Field{
		{Name: "a", Type: types.I32},
		{Name: "b", Type: types.String},
	}}
	if !c.Implements(pair, config.HashTraitName) {
		t.Error("struct of hashable fields should derive Hash")
	}
	opt := types.TGeneric{Name: "Option", Args: []types.Type{types.F32}}
	if !c.Implements(opt, config.OrdTraitName) {
		t.Error("Option<f32> should derive Ord")
	}
}

func TestTraitDependencies(t *testing.T) {
	c := NewTraitChecker()
	// Ord on a type without Eq is impossible for builtins, but the dependency
	// closure must also hold structurally.
	if c.Implements(types.TStruct{Name: "Opaque", Fields: []types.Field{
		{Name: "f", Type: types.TFunc{Return: types.Unit}},
	}}, config.OrdTraitName) {
		t.Error("Ord requires Eq on every component")
	}
}

func TestUnknownSatisfiesAnyTrait(t *testing.T) {
	c := NewTraitChecker()
	for _, trait := range []string{config.EqTraitName, config.OrdTraitName, config.HashTraitName} {
		if !c.Implements(types.TUnknown{}, trait) {
			t.Errorf("unknown should defer %s to runtime", trait)
		}
	}
}

func TestUnresolvedVarProvesNothing(t *testing.T) {
	c := NewTraitChecker()
	if c.Implements(types.TVar{ID: 0}, config.EqTraitName) {
		t.Error("a bare type variable cannot prove a bound")
	}
}

func TestRepeatedChecksAreStable(t *testing.T) {
	c := NewTraitChecker()
	pair := types.TStruct{Name: "Pair", Fields: []types.Field{
		{Name: "a", Type: types.I32},
		{Name: "b", Type: types.TFunc{Return: types.Unit}},
	}}
	first := c.Implements(pair, config.EqTraitName)
	second := c.Implements(pair, config.EqTraitName)
	if first || second {
		t.Error("pair holding a function must never derive Eq")
	}
}

func TestSpecializationRecording(t *testing.T) {
	c := NewTraitChecker()
	span := token.Span{Start: token.Position{Line: 3, Column: 1}}
	c.Record(Specialization{Trait: config.EqTraitName, Type: types.I32, Span: span})
	c.Record(Specialization{Trait: config.OrdTraitName, Type: types.F32})
	specs := c.Specializations()
	if len(specs) != 2 {
		t.Fatalf("got %d specializations, want 2", len(specs))
	}
	if specs[0].Trait != config.EqTraitName || !specs[0].Type.Equal(types.I32) {
		t.Errorf("unexpected first specialization: %+v", specs[0])
	}
	if specs[0].Span.Start.Line != 3 {
		t.Errorf("span not preserved: %+v", specs[0].Span)
	}
}
