package domain

import (
	"sync"

	"go.trai.ch/zerr"
)

// Property is a piece of custom, task-implementation-specific data recorded
// alongside an execution. Kind names the type Value must be decoded as.
type Property struct {
	Kind  string
	Value any
}

// TypeRegistry resolves property kinds to fresh values to decode into.
// Each task carries its own registry so that one task's custom types never
// take part in decoding another task's records.
type TypeRegistry struct {
	mu        sync.RWMutex
	factories map[string]func() any
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{factories: make(map[string]func() any)}
}

// Register associates kind with a factory returning a pointer to decode into.
func (r *TypeRegistry) Register(kind string, factory func() any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return zerr.With(ErrDuplicateType, "kind", kind)
	}
	r.factories[kind] = factory
	return nil
}

// RegisterType registers T under kind, decoding into a *T.
func RegisterType[T any](r *TypeRegistry, kind string) error {
	return r.Register(kind, func() any { return new(T) })
}

// MustRegisterType is like RegisterType but panics if kind is already registered.
func MustRegisterType[T any](r *TypeRegistry, kind string) {
	if err := RegisterType[T](r, kind); err != nil {
		panic(err)
	}
}

// New returns a fresh value for kind. A nil registry resolves nothing.
func (r *TypeRegistry) New(kind string) (any, error) {
	if r == nil {
		return nil, zerr.With(ErrUnresolvedType, "kind", kind)
	}

	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, zerr.With(ErrUnresolvedType, "kind", kind)
	}
	return factory(), nil
}
