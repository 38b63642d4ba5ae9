package diagnostics

import (
	"fmt"

	"github.com/script-lang/script/internal/token"
)

// Kind identifies the class of a diagnostic. The set mirrors the error
// taxonomy of the compiler and runtime core.
type Kind string

const (
	TypeMismatch            Kind = "TypeMismatch"
	InfiniteType            Kind = "InfiniteType"
	UnsatisfiedTraitBound   Kind = "UnsatisfiedTraitBound"
	DuplicateTypeDefinition Kind = "DuplicateTypeDefinition"
	UnknownIdentifier       Kind = "UnknownIdentifier"
	ArityMismatch           Kind = "ArityMismatch"
	ResourceLimitExceeded   Kind = "ResourceLimitExceeded"
)

// Diagnostic is one compilation error record. The core never formats or
// prints these; front-ends render them however they like.
type Diagnostic struct {
	Kind    Kind
	Message string
	Span    token.Span
}

func New(kind Kind, span token.Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
	}
}

func (d *Diagnostic) Error() string {
	if d.Span.IsZero() {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Kind, d.Message)
}

// List accumulates diagnostics across top-level items. One item failing does
// not stop sibling items from being checked, so a single compile can carry
// many of these.
type List []*Diagnostic

func (l *List) Append(d *Diagnostic) {
	if d != nil {
		*l = append(*l, d)
	}
}

func (l *List) Extend(other List) {
	*l = append(*l, other...)
}

func (l List) HasErrors() bool {
	return len(l) > 0
}

// ByKind returns the diagnostics matching kind, preserving order.
func (l List) ByKind(kind Kind) List {
	var out List
	for _, d := range l {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
