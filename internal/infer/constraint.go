package infer

import (
	"fmt"
	"strings"

	"github.com/script-lang/script/internal/token"
	"github.com/script-lang/script/internal/types"
)

// ConstraintKind discriminates the constraint union.
type ConstraintKind uint8

const (
	// ConstraintEquality requires two types to unify.
	ConstraintEquality ConstraintKind = iota
	// ConstraintTraitBound requires a type to implement a trait.
	ConstraintTraitBound
	// ConstraintGenericBounds requires a type variable to satisfy several
	// trait bounds at once, as written on a generic parameter.
	ConstraintGenericBounds
)

// Constraint is one required type relationship. Equality constraints are
// solved eagerly during the walk; trait bounds are deferred to a worklist and
// checked once structural types are resolved. Constraints live only for the
// inference pass that created them.
type Constraint struct {
	Kind   ConstraintKind
	Left   types.Type // Equality
	Right  types.Type // Equality
	Type   types.Type // TraitBound
	Trait  string     // TraitBound
	Var    types.TVar // GenericBounds
	Bounds []string   // GenericBounds
	Span   token.Span
}

// Equality builds an equality constraint.
func Equality(a, b types.Type, span token.Span) Constraint {
	return Constraint{Kind: ConstraintEquality, Left: a, Right: b, Span: span}
}

// TraitBound builds a deferred trait-bound constraint.
func TraitBound(t types.Type, trait string, span token.Span) Constraint {
	return Constraint{Kind: ConstraintTraitBound, Type: t, Trait: trait, Span: span}
}

// GenericBounds builds a multi-bound constraint for a generic parameter.
func GenericBounds(v types.TVar, bounds []string, span token.Span) Constraint {
	return Constraint{Kind: ConstraintGenericBounds, Var: v, Bounds: bounds, Span: span}
}

func (c Constraint) String() string {
	switch c.Kind {
	case ConstraintEquality:
		return fmt.Sprintf("%s = %s", c.Left, c.Right)
	case ConstraintTraitBound:
		return fmt.Sprintf("%s: %s", c.Type, c.Trait)
	case ConstraintGenericBounds:
		return fmt.Sprintf("%s: %s", c.Var, strings.Join(c.Bounds, " + "))
	default:
		return fmt.Sprintf("constraint(%d)", c.Kind)
	}
}
