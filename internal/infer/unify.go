package infer

import (
	"fmt"

	"github.com/script-lang/script/internal/types"
)

// Unify makes a and b structurally equal by extending the substitution, or
// reports a TypeError naming the two conflicting types. Unknown unifies with
// anything; the caller is responsible for recording the runtime check that
// such a unification implies.
func (u *UnionFind) Unify(a, b types.Type) error {
	u.work++
	a = u.shallow(a)
	b = u.shallow(b)

	// Gradual typing: Unknown is compatible with every type. Bridges are
	// counted here rather than by the caller so that one taken inside
	// element recursion is still observable.
	if _, ok := a.(types.TUnknown); ok {
		u.bridges++
		return nil
	}
	if _, ok := b.(types.TUnknown); ok {
		u.bridges++
		return nil
	}

	av, aIsVar := a.(types.TVar)
	bv, bIsVar := b.(types.TVar)
	switch {
	case aIsVar && bIsVar:
		u.union(av.ID, bv.ID, nil)
		return nil
	case aIsVar:
		return u.Bind(av, b)
	case bIsVar:
		return u.Bind(bv, a)
	}

	switch a := a.(type) {
	case types.TPrim:
		if bp, ok := b.(types.TPrim); ok && bp == a {
			return nil
		}
	case types.TFunc:
		bf, ok := b.(types.TFunc)
		if !ok {
			break
		}
		if len(a.Params) != len(bf.Params) {
			return newTypeMismatch(a, bf,
				fmt.Sprintf("function arity %d vs %d", len(a.Params), len(bf.Params)))
		}
		for i := range a.Params {
			if err := u.Unify(a.Params[i], bf.Params[i]); err != nil {
				return err
			}
		}
		return u.Unify(a.Return, bf.Return)
	case types.TArray:
		if ba, ok := b.(types.TArray); ok {
			return u.Unify(a.Elem, ba.Elem)
		}
	case types.TGeneric:
		bg, ok := b.(types.TGeneric)
		if !ok {
			break
		}
		if a.Name != bg.Name {
			return newTypeMismatch(a, bg, "generic type name")
		}
		if len(a.Args) != len(bg.Args) {
			return newTypeMismatch(a, bg,
				fmt.Sprintf("generic arity %d vs %d", len(a.Args), len(bg.Args)))
		}
		for i := range a.Args {
			if err := u.Unify(a.Args[i], bg.Args[i]); err != nil {
				return err
			}
		}
		return nil
	case types.TStruct:
		bs, ok := b.(types.TStruct)
		if !ok {
			break
		}
		// Nominal: names must match, then fields unify pairwise.
		if a.Name != bs.Name || len(a.Fields) != len(bs.Fields) {
			return newTypeMismatch(a, bs, "struct type")
		}
		for i := range a.Fields {
			if a.Fields[i].Name != bs.Fields[i].Name {
				return newTypeMismatch(a, bs, "struct field "+a.Fields[i].Name)
			}
			if err := u.Unify(a.Fields[i].Type, bs.Fields[i].Type); err != nil {
				return err
			}
		}
		return nil
	case types.TEnum:
		be, ok := b.(types.TEnum)
		if !ok {
			break
		}
		if a.Name != be.Name || len(a.Variants) != len(be.Variants) {
			return newTypeMismatch(a, be, "enum type")
		}
		for i := range a.Variants {
			va, vb := a.Variants[i], be.Variants[i]
			if va.Name != vb.Name || len(va.Payload) != len(vb.Payload) {
				return newTypeMismatch(a, be, "enum variant "+va.Name)
			}
			for j := range va.Payload {
				if err := u.Unify(va.Payload[j], vb.Payload[j]); err != nil {
					return err
				}
			}
		}
		return nil
	}

	return newTypeMismatch(a, b, "")
}

// shallow resolves a type variable to its class binding without descending
// into structure, so Unify's type switch sees concrete constructors when they
// exist.
func (u *UnionFind) shallow(t types.Type) types.Type {
	if tv, ok := t.(types.TVar); ok {
		if bound := u.binding(tv.ID); bound != nil {
			return bound
		}
		return types.TVar{ID: u.findRoot(tv.ID)}
	}
	return t
}

// IsUnknown reports whether t resolves to the gradual Unknown type.
func (u *UnionFind) IsUnknown(t types.Type) bool {
	_, ok := u.shallow(t).(types.TUnknown)
	return ok
}
