package infer

import (
	"sync"

	"github.com/script-lang/script/internal/config"
	"github.com/script-lang/script/internal/token"
	"github.com/script-lang/script/internal/types"
)

type implKey struct {
	typeName string
	trait    string
}

// Specialization records one monomorphized trait use: a concrete type bound
// to a generic parameter at a specific call site. Later codegen emits a
// specialized copy per entry instead of dispatching through a vtable.
type Specialization struct {
	Trait string
	Type  types.Type
	Span  token.Span
}

// TraitChecker validates deferred trait bounds once structural types are
// resolved. Primitive implementations are built in; compound types satisfy a
// trait structurally when all their components do.
type TraitChecker struct {
	mu      sync.Mutex
	builtin map[implKey]bool
	cache   map[implKey]bool
	deps    map[string][]string
	specs   []Specialization
}

func NewTraitChecker() *TraitChecker {
	c := &TraitChecker{
		builtin: make(map[implKey]bool),
		cache:   make(map[implKey]bool),
		deps:    make(map[string][]string),
	}
	c.initBuiltinImpls()
	c.initTraitDeps()
	return c
}

func (c *TraitChecker) initBuiltinImpls() {
	prims := []types.TPrim{types.I32, types.F32, types.Bool, types.String, types.Unit}
	base := []string{
		config.EqTraitName, config.CloneTraitName, config.DisplayTraitName,
		config.DebugTraitName, config.DefaultTraitName, config.HashTraitName,
	}
	for _, p := range prims {
		for _, trait := range base {
			c.builtin[implKey{p.String(), trait}] = true
		}
	}
	// Numeric types are ordered.
	for _, p := range []types.TPrim{types.I32, types.F32} {
		c.builtin[implKey{p.String(), config.OrdTraitName}] = true
	}
	// Scalars are trivially copyable.
	for _, p := range []types.TPrim{types.I32, types.F32, types.Bool} {
		c.builtin[implKey{p.String(), config.CopyTraitName}] = true
	}
}

func (c *TraitChecker) initTraitDeps() {
	c.deps[config.OrdTraitName] = []string{config.EqTraitName}
	c.deps[config.CopyTraitName] = []string{config.CloneTraitName}
}

// Implements reports whether t satisfies trait, including the trait's own
// dependencies (Ord requires Eq, Copy requires Clone).
func (c *TraitChecker) Implements(t types.Type, trait string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.implements(t, trait)
}

func (c *TraitChecker) implements(t types.Type, trait string) bool {
	key := implKey{t.String(), trait}
	if cached, ok := c.cache[key]; ok {
		return cached
	}
	// Seed the cache to cut recursion through self-referential nominals.
	c.cache[key] = true
	result := c.checkDirect(t, trait)
	if result {
		for _, dep := range c.deps[trait] {
			if !c.implements(t, dep) {
				result = false
				break
			}
		}
	}
	c.cache[key] = result
	return result
}

func (c *TraitChecker) checkDirect(t types.Type, trait string) bool {
	switch t := t.(type) {
	case types.TPrim:
		return c.builtin[implKey{t.String(), trait}]
	case types.TUnknown:
		// Gradual typing: trait use on Unknown is a runtime concern.
		return true
	case types.TVar:
		// Unresolved variables cannot prove a bound.
		return false
	case types.TArray:
		if !structuralTrait(trait) {
			return false
		}
		return c.implements(t.Elem, trait)
	case types.TGeneric:
		if !structuralTrait(trait) {
			return false
		}
		for _, a := range t.Args {
			if !c.implements(a, trait) {
				return false
			}
		}
		return true
	case types.TStruct:
		if !structuralTrait(trait) {
			return false
		}
		for _, f := range t.Fields {
			if !c.implements(f.Type, trait) {
				return false
			}
		}
		return true
	case types.TEnum:
		if !structuralTrait(trait) {
			return false
		}
		for _, v := range t.Variants {
			for _, p := range v.Payload {
				if !c.implements(p, trait) {
					return false
				}
			}
		}
		return true
	case types.TFunc:
		// Function values are only clonable handles.
		return trait == config.CloneTraitName
	default:
		return false
	}
}

// structuralTrait lists the traits that derive through components.
func structuralTrait(trait string) bool {
	switch trait {
	case config.EqTraitName, config.OrdTraitName, config.CloneTraitName,
		config.DebugTraitName, config.HashTraitName:
		return true
	default:
		return false
	}
}

// Record notes a satisfied bound against a concrete type for the
// monomorphization table.
func (c *TraitChecker) Record(s Specialization) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs = append(c.specs, s)
}

// Specializations returns the monomorphization entries recorded so far.
func (c *TraitChecker) Specializations() []Specialization {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Specialization, len(c.specs))
	copy(out, c.specs)
	return out
}
