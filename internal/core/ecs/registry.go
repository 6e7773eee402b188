package ecs

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNotFound is returned when a lookup names an ID absent from the registry.
	ErrNotFound = errors.New("entity not found")
	// ErrAlreadyRegistered is returned when Register receives an entity that already holds an ID.
	ErrAlreadyRegistered = errors.New("entity already registered")
	// ErrNilEntity is returned when Register receives a nil entity.
	ErrNilEntity = errors.New("nil entity")
)

// Entity is implemented by everything a Registry can own. BindID is called
// exactly once, by the registry, when the entity is inserted.
type Entity interface {
	ID() EntityID
	BindID(id EntityID)
}

// Registry is the sole owner of all entities of one kind, indexed by ID.
// Accessed only from the simulation goroutine; no locks needed.
type Registry[E Entity] struct {
	pool  *IDPool
	data  map[EntityID]E
	order []EntityID // ascending, since IDs are issued monotonically
}

func NewRegistry[E Entity]() *Registry[E] {
	return &Registry[E]{
		pool:  NewIDPool(),
		data:  make(map[EntityID]E, 256),
		order: make([]EntityID, 0, 256),
	}
}

// Register stamps e with the next ID and takes ownership of it.
func (r *Registry[E]) Register(e E) (EntityID, error) {
	if isNil(e) {
		return 0, fmt.Errorf("register: %w", ErrNilEntity)
	}
	if id := e.ID(); !id.IsZero() {
		return 0, fmt.Errorf("register %s: %w", id, ErrAlreadyRegistered)
	}
	id := r.pool.Next()
	e.BindID(id)
	r.data[id] = e
	r.order = append(r.order, id)
	return id, nil
}

// Get resolves id. The returned entity is the registry's own copy; callers
// mutate through it for the duration of their access only.
func (r *Registry[E]) Get(id EntityID) (E, error) {
	e, ok := r.data[id]
	if !ok {
		var zero E
		return zero, fmt.Errorf("lookup %s: %w", id, ErrNotFound)
	}
	return e, nil
}

func (r *Registry[E]) Has(id EntityID) bool {
	_, ok := r.data[id]
	return ok
}

func (r *Registry[E]) Len() int {
	return len(r.data)
}

// LastID returns the highest ID issued so far.
func (r *Registry[E]) LastID() EntityID {
	return r.pool.Last()
}

// Each visits every entity in registration order.
func (r *Registry[E]) Each(fn func(EntityID, E)) {
	for _, id := range r.order {
		fn(id, r.data[id])
	}
}

// isNil also catches a typed nil pointer wrapped in the interface.
func isNil(e Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
