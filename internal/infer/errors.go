package infer

import (
	"fmt"

	"github.com/script-lang/script/internal/diagnostics"
	"github.com/script-lang/script/internal/token"
	"github.com/script-lang/script/internal/types"
)

// TypeError is the single error type the inference engine produces. Errors
// are accumulated per top-level item, never thrown across items.
type TypeError struct {
	Kind     diagnostics.Kind
	Expected types.Type // TypeMismatch
	Found    types.Type // TypeMismatch
	Var      types.TVar // InfiniteType
	In       types.Type // InfiniteType: the type the variable occurs in
	Type     types.Type // UnsatisfiedTraitBound
	Trait    string     // UnsatisfiedTraitBound
	Name     string     // DuplicateTypeDefinition, UnknownIdentifier
	Detail   string
	Span     token.Span
}

func (e *TypeError) Error() string {
	switch e.Kind {
	case diagnostics.TypeMismatch:
		if e.Detail != "" {
			return fmt.Sprintf("type mismatch: %s: expected %s, found %s", e.Detail, e.Expected, e.Found)
		}
		return fmt.Sprintf("type mismatch: expected %s, found %s", e.Expected, e.Found)
	case diagnostics.InfiniteType:
		return fmt.Sprintf("infinite type: %s occurs in %s", e.Var, e.In)
	case diagnostics.UnsatisfiedTraitBound:
		return fmt.Sprintf("type %s does not implement %s", e.Type, e.Trait)
	case diagnostics.DuplicateTypeDefinition:
		return fmt.Sprintf("type %s is already defined in this scope", e.Name)
	case diagnostics.UnknownIdentifier:
		return fmt.Sprintf("unknown name %s", e.Name)
	case diagnostics.ResourceLimitExceeded:
		return fmt.Sprintf("inference budget exceeded: %s", e.Detail)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
}

// Diagnostic converts the error to the record shape the front-end consumes.
func (e *TypeError) Diagnostic() *diagnostics.Diagnostic {
	return &diagnostics.Diagnostic{Kind: e.Kind, Message: e.Error(), Span: e.Span}
}

func newTypeMismatch(expected, found types.Type, detail string) *TypeError {
	return &TypeError{
		Kind:     diagnostics.TypeMismatch,
		Expected: expected,
		Found:    found,
		Detail:   detail,
	}
}

func newInfiniteType(v types.TVar, in types.Type) *TypeError {
	return &TypeError{Kind: diagnostics.InfiniteType, Var: v, In: in}
}

func newUnsatisfiedBound(t types.Type, trait string, span token.Span) *TypeError {
	return &TypeError{Kind: diagnostics.UnsatisfiedTraitBound, Type: t, Trait: trait, Span: span}
}

func newDuplicateType(name string, span token.Span) *TypeError {
	return &TypeError{Kind: diagnostics.DuplicateTypeDefinition, Name: name, Span: span}
}

func newUnknownName(name string, span token.Span) *TypeError {
	return &TypeError{Kind: diagnostics.UnknownIdentifier, Name: name, Span: span}
}

func newBudgetExceeded(detail string, span token.Span) *TypeError {
	return &TypeError{Kind: diagnostics.ResourceLimitExceeded, Detail: detail, Span: span}
}

// withSpan fills the span on errors produced below the expression walk, where
// no source location is available yet. An already-placed span wins.
func withSpan(err error, span token.Span) error {
	if te, ok := err.(*TypeError); ok && te.Span.IsZero() {
		te.Span = span
	}
	return err
}
