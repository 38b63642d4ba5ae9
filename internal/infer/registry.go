package infer

import (
	"sync"

	"github.com/script-lang/script/internal/token"
	"github.com/script-lang/script/internal/types"
)

// TypeRegistry holds the nominal struct and enum types of a compilation
// session, keyed by name. Declarations are registered before any use site is
// checked, so forward references within a unit resolve. The registry is
// shared across items and may be read by parallel item inference, hence the
// lock.
type TypeRegistry struct {
	mu      sync.RWMutex
	structs map[string]types.TStruct
	enums   map[string]types.TEnum
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		structs: make(map[string]types.TStruct),
		enums:   make(map[string]types.TEnum),
	}
}

func (r *TypeRegistry) taken(name string) bool {
	if _, ok := r.structs[name]; ok {
		return true
	}
	_, ok := r.enums[name]
	return ok
}

// RegisterStruct adds a struct type. Registering any type under an existing
// name fails with DuplicateTypeDefinition.
func (r *TypeRegistry) RegisterStruct(s types.TStruct, span token.Span) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(s.Name) {
		return newDuplicateType(s.Name, span)
	}
	r.structs[s.Name] = s
	return nil
}

// RegisterEnum adds an enum type under the same namespace as structs.
func (r *TypeRegistry) RegisterEnum(e types.TEnum, span token.Span) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(e.Name) {
		return newDuplicateType(e.Name, span)
	}
	r.enums[e.Name] = e
	return nil
}

func (r *TypeRegistry) LookupStruct(name string) (types.TStruct, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.structs[name]
	return s, ok
}

func (r *TypeRegistry) LookupEnum(name string) (types.TEnum, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enums[name]
	return e, ok
}

// Lookup finds a nominal type of either kind.
func (r *TypeRegistry) Lookup(name string) (types.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.structs[name]; ok {
		return s, true
	}
	if e, ok := r.enums[name]; ok {
		return e, true
	}
	return nil, false
}
