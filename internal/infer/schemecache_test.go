package infer

import (
	"path/filepath"
	"testing"

	"github.com/script-lang/script/internal/ast"
	"github.com/script-lang/script/internal/types"
)

func openTestCache(t *testing.T) *SchemeCache {
	t.Helper()
	c, err := OpenSchemeCache(filepath.Join(t.TempDir(), "schemes.db"))
	if err != nil {
		t.Fatalf("OpenSchemeCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSchemeCacheRoundTrip(t *testing.T) {
	c := openTestCache(t)
	scheme := Scheme{
		Vars:   []uint32{0},
		Bounds: map[uint32][]string{0: {"Ord"}},
		Type:   types.TFunc{Params: []types.Type{types.TVar{ID: 0}}, Return: types.TVar{ID: 0}},
	}
	if err := c.Put("pkg/a", "max", "fp1", scheme); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := c.Get("pkg/a", "max", "fp1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%t err=%v", ok, err)
	}
	if len(got.Vars) != 1 || got.Vars[0] != 0 {
		t.Errorf("Vars = %v", got.Vars)
	}
	if got.Bounds[0][0] != "Ord" {
		t.Errorf("Bounds = %v", got.Bounds)
	}
	if !got.Type.Equal(scheme.Type) {
		t.Errorf("Type = %s, want %s", got.Type, scheme.Type)
	}
}

func TestSchemeCacheFingerprintMismatchIsMiss(t *testing.T) {
	c := openTestCache(t)
	if err := c.Put("pkg/a", "f", "old", MonoScheme(types.I32)); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get("pkg/a", "f", "new"); err != nil || ok {
		t.Errorf("stale fingerprint: ok=%t err=%v, want miss", ok, err)
	}
}

func TestSchemeCacheUnknownNameIsMiss(t *testing.T) {
	c := openTestCache(t)
	if _, ok, err := c.Get("pkg/a", "nope", "fp"); err != nil || ok {
		t.Errorf("unknown name: ok=%t err=%v, want miss", ok, err)
	}
}

func TestSchemeCacheOverwrite(t *testing.T) {
	c := openTestCache(t)
	if err := c.Put("pkg/a", "f", "fp1", MonoScheme(types.I32)); err != nil {
		t.Fatal(err)
	}
	if err := c.Put("pkg/a", "f", "fp2", MonoScheme(types.Bool)); err != nil {
		t.Fatal(err)
	}
	got, ok, err := c.Get("pkg/a", "f", "fp2")
	if err != nil || !ok {
		t.Fatalf("Get after overwrite: ok=%t err=%v", ok, err)
	}
	if !got.Type.Equal(types.Bool) {
		t.Errorf("Type = %s, want bool", got.Type)
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	a := fnDecl("f", []*ast.Parameter{param("x", named("i32"))}, named("i32"), block())
	b := fnDecl("f", []*ast.Parameter{param("x", named("bool"))}, named("i32"), block())
	if fingerprint(a) == fingerprint(b) {
		t.Error("different signatures share a fingerprint")
	}
	c := fnDecl("f", []*ast.Parameter{param("x", named("i32"))}, named("i32"), block())
	if fingerprint(a) != fingerprint(c) {
		t.Error("identical signatures should share a fingerprint")
	}
}
