package infer

import (
	"github.com/google/uuid"

	"github.com/script-lang/script/internal/config"
	"github.com/script-lang/script/internal/token"
	"github.com/script-lang/script/internal/types"
)

// RuntimeCheck marks a place where an Unknown type met a concrete one during
// inference. Gradual typing never bypasses unification silently; each bridge
// becomes an explicit check instruction during lowering.
type RuntimeCheck struct {
	Span     token.Span
	Expected types.Type
}

// Session owns all state of one compilation: the substitution, the deferred
// constraint worklist, the nominal type registry, and the trait checker.
// Sessions are independent, so a long-running language server can run many
// without cross-contamination; Reset reuses one in place.
type Session struct {
	ID     string
	Limits config.Limits

	uf       *UnionFind
	registry *TypeRegistry
	traits   *TraitChecker
	deferred []Constraint
	checks   []RuntimeCheck
	cache    *SchemeCache
}

func NewSession(limits config.Limits) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Limits:   limits,
		uf:       NewUnionFind(),
		registry: NewTypeRegistry(),
		traits:   NewTraitChecker(),
	}
}

// Reset discards all inference state, keeping the session identity and
// limits. Attached caches survive: they are keyed by content, not session.
func (s *Session) Reset() {
	s.uf = NewUnionFind()
	s.registry = NewTypeRegistry()
	s.traits = NewTraitChecker()
	s.deferred = nil
	s.checks = nil
}

func (s *Session) UnionFind() *UnionFind   { return s.uf }
func (s *Session) Registry() *TypeRegistry { return s.registry }
func (s *Session) Traits() *TraitChecker   { return s.traits }

// AttachCache wires an on-disk scheme cache consulted before item inference.
func (s *Session) AttachCache(c *SchemeCache) { s.cache = c }

// FreshVar allocates a session-unique type variable.
func (s *Session) FreshVar() types.TVar { return s.uf.FreshVar() }

// Resolve fully applies the current substitution to t.
func (s *Session) Resolve(t types.Type) types.Type { return s.uf.Resolve(t) }

// Defer queues a trait constraint for solving after structural resolution.
func (s *Session) Defer(c Constraint) { s.deferred = append(s.deferred, c) }

// RecordCheck notes an Unknown/concrete boundary for the IR builder.
func (s *Session) RecordCheck(span token.Span, expected types.Type) {
	s.checks = append(s.checks, RuntimeCheck{Span: span, Expected: expected})
}

// RuntimeChecks returns the gradual-typing check markers recorded so far.
func (s *Session) RuntimeChecks() []RuntimeCheck {
	out := make([]RuntimeCheck, len(s.checks))
	copy(out, s.checks)
	return out
}
