package ecs

import "strconv"

// EntityID is a registry handle. Zero means "not registered"; issued IDs
// start at 1 and are never reused, even after an entity stops mattering.
type EntityID uint64

func (id EntityID) IsZero() bool { return id == 0 }

func (id EntityID) String() string { return "#" + strconv.FormatUint(uint64(id), 10) }

// IDPool hands out identifiers in strictly increasing order. Unlike a
// generational pool there is no free list: an issued ID stays resolvable
// for the lifetime of the registry that owns the pool.
type IDPool struct {
	last EntityID
}

func NewIDPool() *IDPool {
	return &IDPool{}
}

// Next returns previous maximum + 1.
func (p *IDPool) Next() EntityID {
	p.last++
	return p.last
}

// Last returns the most recently issued ID, or zero if none was issued.
func (p *IDPool) Last() EntityID { return p.last }
