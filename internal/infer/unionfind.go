package infer

import (
	"github.com/script-lang/script/internal/types"
)

// UnionFind stores type-variable bindings as a union-find forest with path
// compression and union by rank, giving amortized near-constant lookups. One
// UnionFind is owned by one inference session and discarded with it.
type UnionFind struct {
	parent map[uint32]uint32
	rank   map[uint32]uint32
	// repr holds the representative type of each equivalence class, keyed by
	// root id. A class with no concrete binding is represented by its own
	// type variable.
	repr    map[uint32]types.Type
	nextVar uint32
	// work counts structural steps taken by unify/resolve/occurs, for the
	// session's per-item budget.
	work int
	// bridges counts unifications that succeeded only because one side was
	// Unknown, at any nesting depth.
	bridges int
}

// NewUnionFind creates an empty substitution.
func NewUnionFind() *UnionFind {
	return &UnionFind{
		parent: make(map[uint32]uint32),
		rank:   make(map[uint32]uint32),
		repr:   make(map[uint32]types.Type),
	}
}

// FreshVar allocates a new type variable, unique within the session.
func (u *UnionFind) FreshVar() types.TVar {
	id := u.nextVar
	u.nextVar++
	u.parent[id] = id
	u.rank[id] = 0
	u.repr[id] = types.TVar{ID: id}
	return types.TVar{ID: id}
}

// WorkUnits reports the structural steps taken so far.
func (u *UnionFind) WorkUnits() int { return u.work }

// Bridges reports how many Unknown/concrete bridges Unify has taken. Callers
// snapshot it around a unification to learn whether gradual typing was
// involved anywhere inside it.
func (u *UnionFind) Bridges() int { return u.bridges }

func (u *UnionFind) findRoot(id uint32) uint32 {
	if _, ok := u.parent[id]; !ok {
		// Variables minted elsewhere (e.g. deserialized schemes) are adopted
		// lazily as their own class.
		u.parent[id] = id
		u.rank[id] = 0
		u.repr[id] = types.TVar{ID: id}
		if id >= u.nextVar {
			u.nextVar = id + 1
		}
		return id
	}
	parent := u.parent[id]
	if parent == id {
		return id
	}
	root := u.findRoot(parent)
	u.parent[id] = root
	return root
}

// union merges two variable classes by rank. When concrete is non-nil it
// becomes the representative of the merged class.
func (u *UnionFind) union(a, b uint32, concrete types.Type) {
	rootA := u.findRoot(a)
	rootB := u.findRoot(b)
	if rootA == rootB {
		if concrete != nil {
			u.repr[rootA] = concrete
		}
		return
	}

	rankA, rankB := u.rank[rootA], u.rank[rootB]
	newRoot, oldRoot := rootA, rootB
	if rankA < rankB {
		newRoot, oldRoot = rootB, rootA
	} else if rankA == rankB {
		u.rank[rootA] = rankA + 1
	}
	u.parent[oldRoot] = newRoot

	if concrete != nil {
		u.repr[newRoot] = concrete
		return
	}
	// If the absorbed class carried a concrete binding, it must survive the
	// merge.
	if old, ok := u.repr[oldRoot]; ok {
		if _, isVar := old.(types.TVar); !isVar {
			u.repr[newRoot] = old
		}
	}
}

// binding returns the concrete representative of a variable's class, or nil
// when the class is unbound.
func (u *UnionFind) binding(id uint32) types.Type {
	root := u.findRoot(id)
	rep, ok := u.repr[root]
	if !ok {
		return nil
	}
	if _, isVar := rep.(types.TVar); isVar {
		return nil
	}
	return rep
}

// Bind records v := t after an occurs check. Binding a variable to a type
// containing itself is rejected as an infinite type; binding an already-bound
// variable unifies the old and new types instead of overwriting.
func (u *UnionFind) Bind(v types.TVar, t types.Type) error {
	u.work++
	if tv, ok := t.(types.TVar); ok {
		u.union(v.ID, tv.ID, nil)
		return nil
	}
	if u.occurs(v.ID, t) {
		return newInfiniteType(v, u.Resolve(t))
	}
	if existing := u.binding(v.ID); existing != nil {
		return u.Unify(existing, t)
	}
	u.union(v.ID, v.ID, t)
	return nil
}

// occurs reports whether the class of varID appears anywhere in t, looking
// through bindings.
func (u *UnionFind) occurs(varID uint32, t types.Type) bool {
	u.work++
	switch t := t.(type) {
	case types.TVar:
		if u.findRoot(t.ID) == u.findRoot(varID) {
			return true
		}
		if bound := u.binding(t.ID); bound != nil {
			return u.occurs(varID, bound)
		}
		return false
	case types.TFunc:
		for _, p := range t.Params {
			if u.occurs(varID, p) {
				return true
			}
		}
		return u.occurs(varID, t.Return)
	case types.TArray:
		return u.occurs(varID, t.Elem)
	case types.TGeneric:
		for _, a := range t.Args {
			if u.occurs(varID, a) {
				return true
			}
		}
		return false
	case types.TStruct:
		for _, f := range t.Fields {
			if u.occurs(varID, f.Type) {
				return true
			}
		}
		return false
	case types.TEnum:
		for _, v := range t.Variants {
			for _, p := range v.Payload {
				if u.occurs(varID, p) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

// Resolve fully substitutes every bound variable in t, recursively. Applying
// Resolve twice gives the same result as applying it once. Unbound variables
// resolve to their class root, so two unified variables resolve identically.
func (u *UnionFind) Resolve(t types.Type) types.Type {
	u.work++
	switch t := t.(type) {
	case types.TVar:
		root := u.findRoot(t.ID)
		rep, ok := u.repr[root]
		if !ok {
			return types.TVar{ID: root}
		}
		if rv, isVar := rep.(types.TVar); isVar {
			return types.TVar{ID: u.findRoot(rv.ID)}
		}
		return u.Resolve(rep)
	case types.TFunc:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = u.Resolve(p)
		}
		return types.TFunc{Params: params, Return: u.Resolve(t.Return)}
	case types.TArray:
		return types.TArray{Elem: u.Resolve(t.Elem)}
	case types.TGeneric:
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = u.Resolve(a)
		}
		return types.TGeneric{Name: t.Name, Args: args}
	case types.TStruct:
		fields := make([]types.Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = types.Field{Name: f.Name, Type: u.Resolve(f.Type)}
		}
		return types.TStruct{Name: t.Name, TypeParams: t.TypeParams, Fields: fields}
	case types.TEnum:
		variants := make([]types.Variant, len(t.Variants))
		for i, v := range t.Variants {
			payload := make([]types.Type, len(v.Payload))
			for j, p := range v.Payload {
				payload[j] = u.Resolve(p)
			}
			variants[i] = types.Variant{Name: v.Name, Payload: payload}
		}
		return types.TEnum{Name: t.Name, TypeParams: t.TypeParams, Variants: variants}
	default:
		return t
	}
}

// Stats describes the shape of the union-find forest.
type Stats struct {
	TotalVariables     int
	EquivalenceClasses int
	MaxRank            uint32
}

func (u *UnionFind) Stats() Stats {
	classes := 0
	var maxRank uint32
	for id, parent := range u.parent {
		if id == parent {
			classes++
			if r := u.rank[id]; r > maxRank {
				maxRank = r
			}
		}
	}
	return Stats{
		TotalVariables:     len(u.parent),
		EquivalenceClasses: classes,
		MaxRank:            maxRank,
	}
}
