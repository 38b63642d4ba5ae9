package infer

import (
	"testing"

	"github.com/script-lang/script/internal/diagnostics"
	"github.com/script-lang/script/internal/types"
)

func TestFreshVarsAreDistinct(t *testing.T) {
	u := NewUnionFind()
	a := u.FreshVar()
	b := u.FreshVar()
	if a.ID == b.ID {
		t.Fatalf("fresh vars share id %d", a.ID)
	}
}

func TestUnifyThroughVarChain(t *testing.T) {
	u := NewUnionFind()
	a := u.FreshVar()
	b := u.FreshVar()
	c := u.FreshVar()
	if err := u.Unify(a, b); err != nil {
		t.Fatal(err)
	}
	if err := u.Unify(b, c); err != nil {
		t.Fatal(err)
	}
	if err := u.Unify(c, types.I32); err != nil {
		t.Fatal(err)
	}
	for _, v := range []types.TVar{a, b, c} {
		if got := u.Resolve(v); !got.Equal(types.I32) {
			t.Errorf("Resolve(%s) = %s, want i32", v, got)
		}
	}
}

func TestUnifyConflictingConcretes(t *testing.T) {
	u := NewUnionFind()
	a := u.FreshVar()
	if err := u.Unify(a, types.I32); err != nil {
		t.Fatal(err)
	}
	err := u.Unify(a, types.Bool)
	if err == nil {
		t.Fatal("expected mismatch binding a to both i32 and bool")
	}
	te, ok := err.(*TypeError)
	if !ok || te.Kind != diagnostics.TypeMismatch {
		t.Fatalf("got %v, want TypeMismatch", err)
	}
}

func TestOccursCheck(t *testing.T) {
	u := NewUnionFind()
	a := u.FreshVar()
	err := u.Bind(a, types.TFunc{Params: []types.Type{a}, Return: types.I32})
	if err == nil {
		t.Fatal("expected infinite type")
	}
	te, ok := err.(*TypeError)
	if !ok || te.Kind != diagnostics.InfiniteType {
		t.Fatalf("got %v, want InfiniteType", err)
	}
}

func TestOccursCheckThroughBinding(t *testing.T) {
	u := NewUnionFind()
	a := u.FreshVar()
	b := u.FreshVar()
	if err := u.Bind(b, types.TArray{Elem: a}); err != nil {
		t.Fatal(err)
	}
	// a occurs in b's binding, so a = [b] closes a cycle.
	if err := u.Bind(a, types.TArray{Elem: b}); err == nil {
		t.Fatal("expected infinite type through an indirect binding")
	}
}

func TestUnifyFunctionTypes(t *testing.T) {
	u := NewUnionFind()
	p := u.FreshVar()
	r := u.FreshVar()
	inferred := types.TFunc{Params: []types.Type{p}, Return: r}
	annotated := types.TFunc{Params: []types.Type{types.I32}, Return: types.Bool}
	if err := u.Unify(inferred, annotated); err != nil {
		t.Fatal(err)
	}
	if got := u.Resolve(p); !got.Equal(types.I32) {
		t.Errorf("param resolved to %s, want i32", got)
	}
	if got := u.Resolve(r); !got.Equal(types.Bool) {
		t.Errorf("return resolved to %s, want bool", got)
	}
}

func TestUnifyArityMismatch(t *testing.T) {
	u := NewUnionFind()
	a := types.TFunc{Params: []types.Type{types.I32}, Return: types.Unit}
	b := types.TFunc{Params: []types.Type{types.I32, types.I32}, Return: types.Unit}
	if err := u.Unify(a, b); err == nil {
		t.Fatal("expected mismatch for differing arity")
	}
}

func TestUnknownUnifiesWithEverything(t *testing.T) {
	u := NewUnionFind()
	a := u.FreshVar()
	cases := []types.Type{types.I32, types.TArray{Elem: types.Bool}, a,
		types.TFunc{Return: types.Unit}}
	for _, c := range cases {
		if err := u.Unify(types.TUnknown{}, c); err != nil {
			t.Errorf("Unify(unknown, %s): %v", c, err)
		}
		if err := u.Unify(c, types.TUnknown{}); err != nil {
			t.Errorf("Unify(%s, unknown): %v", c, err)
		}
	}
	// Meeting Unknown must not bind the variable.
	if got := u.Resolve(a); !got.Equal(types.TVar{ID: a.ID}) {
		t.Errorf("var bound by unknown: %s", got)
	}
}

func TestResolveIdempotent(t *testing.T) {
	u := NewUnionFind()
	a := u.FreshVar()
	b := u.FreshVar()
	if err := u.Unify(a, types.TArray{Elem: b}); err != nil {
		t.Fatal(err)
	}
	if err := u.Unify(b, types.String); err != nil {
		t.Fatal(err)
	}
	once := u.Resolve(a)
	twice := u.Resolve(once)
	if !once.Equal(twice) {
		t.Errorf("Resolve not idempotent: %s then %s", once, twice)
	}
	if !once.Equal(types.TArray{Elem: types.String}) {
		t.Errorf("Resolve(a) = %s, want [string]", once)
	}
}

func TestUnifiedVarsResolveIdentically(t *testing.T) {
	u := NewUnionFind()
	a := u.FreshVar()
	b := u.FreshVar()
	if err := u.Unify(a, b); err != nil {
		t.Fatal(err)
	}
	if ra, rb := u.Resolve(a), u.Resolve(b); !ra.Equal(rb) {
		t.Errorf("unified vars resolve differently: %s vs %s", ra, rb)
	}
}

func TestStatsCountClasses(t *testing.T) {
	u := NewUnionFind()
	vars := make([]types.TVar, 8)
	for i := range vars {
		vars[i] = u.FreshVar()
	}
	for i := 1; i < 4; i++ {
		if err := u.Unify(vars[0], vars[i]); err != nil {
			t.Fatal(err)
		}
	}
	s := u.Stats()
	if s.TotalVariables != 8 {
		t.Errorf("TotalVariables = %d, want 8", s.TotalVariables)
	}
	if s.EquivalenceClasses != 5 {
		t.Errorf("EquivalenceClasses = %d, want 5", s.EquivalenceClasses)
	}
	if s.MaxRank == 0 {
		t.Error("expected a nonzero rank after merging")
	}
}

func TestWorkUnitsAdvance(t *testing.T) {
	u := NewUnionFind()
	before := u.WorkUnits()
	a := u.FreshVar()
	if err := u.Unify(a, types.I32); err != nil {
		t.Fatal(err)
	}
	if u.WorkUnits() <= before {
		t.Error("unification should consume work units")
	}
}
