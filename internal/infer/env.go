package infer

import (
	"github.com/script-lang/script/internal/token"
	"github.com/script-lang/script/internal/types"
)

// Scheme is a possibly-polymorphic type: the quantified variable ids, the
// body, and any trait bounds attached to the quantified variables.
type Scheme struct {
	Vars   []uint32
	Bounds map[uint32][]string
	Type   types.Type
}

// MonoScheme wraps a monotype with nothing quantified.
func MonoScheme(t types.Type) Scheme {
	return Scheme{Type: t}
}

// TypeEnv maps names to schemes with lexical scoping. Environments are owned
// by a single inference walk; no locking.
type TypeEnv struct {
	store map[string]Scheme
	outer *TypeEnv
}

func NewTypeEnv() *TypeEnv {
	return &TypeEnv{store: make(map[string]Scheme)}
}

func NewEnclosedTypeEnv(outer *TypeEnv) *TypeEnv {
	return &TypeEnv{store: make(map[string]Scheme), outer: outer}
}

func (e *TypeEnv) Get(name string) (Scheme, bool) {
	if s, ok := e.store[name]; ok {
		return s, true
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return Scheme{}, false
}

func (e *TypeEnv) Set(name string, s Scheme) {
	e.store[name] = s
}

// Remove unbinds a name in this scope only.
func (e *TypeEnv) Remove(name string) {
	delete(e.store, name)
}

// Instantiate produces a fresh copy of the scheme's body with every
// quantified variable alpha-renamed, so unrelated call sites never share
// variables. The second result carries the trait bounds transferred onto the
// fresh variables; the caller defers them into the worklist.
func Instantiate(s Scheme, u *UnionFind) (types.Type, []Constraint) {
	if len(s.Vars) == 0 {
		return s.Type, nil
	}
	subst := make(map[uint32]types.Type, len(s.Vars))
	var bounds []Constraint
	for _, id := range s.Vars {
		fresh := u.FreshVar()
		subst[id] = fresh
		if bs := s.Bounds[id]; len(bs) > 0 {
			bounds = append(bounds, GenericBounds(fresh, bs, token.Span{}))
		}
	}
	return applySubst(s.Type, subst), bounds
}

// Generalize quantifies the variables still unresolved in t after the item's
// inference completed, excluding any visible in the enclosing environment.
func Generalize(t types.Type, u *UnionFind, env *TypeEnv, bounds map[uint32][]string) Scheme {
	resolved := u.Resolve(t)
	envVars := make(map[uint32]bool)
	for e := env; e != nil; e = e.outer {
		for _, s := range e.store {
			for _, id := range types.FreeVars(u.Resolve(s.Type)) {
				envVars[id] = true
			}
		}
	}
	var quantified []uint32
	kept := make(map[uint32][]string)
	for _, id := range types.FreeVars(resolved) {
		if envVars[id] {
			continue
		}
		quantified = append(quantified, id)
		if bs := bounds[id]; len(bs) > 0 {
			kept[id] = bs
		}
	}
	return Scheme{Vars: quantified, Bounds: kept, Type: resolved}
}

// applySubst rebuilds t with every variable in subst replaced. Unlike
// Resolve, it substitutes by raw id without consulting the union-find, which
// is what alpha renaming needs.
func applySubst(t types.Type, subst map[uint32]types.Type) types.Type {
	switch t := t.(type) {
	case types.TVar:
		if r, ok := subst[t.ID]; ok {
			return r
		}
		return t
	case types.TFunc:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = applySubst(p, subst)
		}
		return types.TFunc{Params: params, Return: applySubst(t.Return, subst)}
	case types.TArray:
		return types.TArray{Elem: applySubst(t.Elem, subst)}
	case types.TGeneric:
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = applySubst(a, subst)
		}
		return types.TGeneric{Name: t.Name, Args: args}
	case types.TStruct:
		fields := make([]types.Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = types.Field{Name: f.Name, Type: applySubst(f.Type, subst)}
		}
		return types.TStruct{Name: t.Name, TypeParams: t.TypeParams, Fields: fields}
	case types.TEnum:
		variants := make([]types.Variant, len(t.Variants))
		for i, v := range t.Variants {
			payload := make([]types.Type, len(v.Payload))
			for j, p := range v.Payload {
				payload[j] = applySubst(p, subst)
			}
			variants[i] = types.Variant{Name: v.Name, Payload: payload}
		}
		return types.TEnum{Name: t.Name, TypeParams: t.TypeParams, Variants: variants}
	default:
		return t
	}
}
