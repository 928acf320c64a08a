/*
Package ringpool implements a bounded, reusable allocator of render
primitives.

Tracks rebuild their rings frequently, every few milliseconds during
interactive editing and continuously in endless mode. Instead of allocating
and discarding primitives on every rebuild, a Pool recycles them. Pooled
primitives only ever differ in transform and visibility, never in shape.

The pool is the sole owner of its primitives: they live in an arena and are
referred to by integer handles. Every handle is in exactly one of two
collections, the free list or the active set.

	pool := ringpool.New(ringpool.Torus{Radius: 2, Tube: 0.2}, 64)
	h := pool.Acquire()
	pool.Get(h).Transform.Position = tubetrack.W(1, 2, 3)
	pool.Attach(h, container)
	...
	pool.Release(h)

A pool is not safe for concurrent use. One pool may back several tracks,
as long as all of them are driven from the same goroutine.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package ringpool

import (
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ringpool'
func tracer() tracing.Trace {
	return tracing.Select("ringpool")
}

// Stats is a snapshot of a pool's bookkeeping. Pooled + Active = Total holds
// at all times.
type Stats struct {
	Pooled int // primitives in the free list
	Active int // primitives handed out
	Total  int // primitives ever allocated
}

func (s Stats) String() string {
	return fmt.Sprintf("pooled=%d active=%d total=%d", s.Pooled, s.Active, s.Total)
}

// Pool is an arena of primitives of a single shape.
type Pool struct {
	shape    Shape
	renderer Renderer
	arena    []*Primitive      // primitive with handle h lives at arena[h-1]
	free     *arraystack.Stack // of int handles
	active   *treemap.Map      // int handle → struct{}
	lastID   Handle            // monotonic ID counter
}

// Option configures a pool.
type Option func(*Pool)

// WithRenderer sets the render-tree collaborator. The default renderer
// ignores attachments.
func WithRenderer(r Renderer) Option {
	return func(p *Pool) {
		if r != nil {
			p.renderer = r
		}
	}
}

// New creates a pool for primitives of shape s and pre-allocates
// initialSize free primitives.
func New(s Shape, initialSize int, opts ...Option) *Pool {
	p := &Pool{
		shape:    s,
		renderer: NopRenderer{},
		free:     arraystack.New(),
		active:   treemap.NewWithIntComparator(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.EnsureCapacity(initialSize)
	tracer().P("shape", Describe(s)).Debugf("new pool, %s", p.Stats())
	return p
}

// Shape returns the shape of the pool's primitives.
func (p *Pool) Shape() Shape {
	return p.shape
}

// Acquire returns a free primitive, allocating a new one if the free list is
// empty. The primitive is marked active and visible, with an identity
// transform.
func (p *Pool) Acquire() Handle {
	var h Handle
	if v, ok := p.free.Pop(); ok {
		h = Handle(v.(int))
	} else {
		h = p.allocate()
	}
	p.active.Put(int(h), struct{}{})
	prim := p.Get(h)
	prim.reset()
	prim.Visible = true
	return h
}

// Release returns an active primitive to the free list, detaching it from the
// render tree and clearing its transient state. Releasing a handle which is
// not active is a no-op, so redundant cleanup paths may release twice.
func (p *Pool) Release(h Handle) {
	if !p.IsActive(h) {
		tracer().Debugf("ignoring release of inactive handle %d", h)
		return
	}
	prim := p.Get(h)
	if prim.attached {
		p.renderer.Detach(prim)
	}
	prim.reset()
	p.active.Remove(int(h))
	p.free.Push(int(h))
}

// ReleaseAll releases every active primitive, in ascending handle order.
func (p *Pool) ReleaseAll() {
	keys := p.active.Keys()
	for _, k := range keys {
		p.Release(Handle(k.(int)))
	}
	tracer().Debugf("released %d primitives", len(keys))
}

// EnsureCapacity pre-allocates primitives until the free list holds at
// least n entries.
func (p *Pool) EnsureCapacity(n int) {
	for p.free.Size() < n {
		p.free.Push(int(p.allocate()))
	}
}

// Stats returns the current bookkeeping of the pool.
func (p *Pool) Stats() Stats {
	return Stats{
		Pooled: p.free.Size(),
		Active: p.active.Size(),
		Total:  len(p.arena),
	}
}

// IsActive is a predicate: is h currently handed out?
func (p *Pool) IsActive(h Handle) bool {
	_, found := p.active.Get(int(h))
	return found
}

// Get returns the primitive for handle h, or nil if h is unknown to this pool.
// Clients must not hold on to the primitive after releasing h.
func (p *Pool) Get(h Handle) *Primitive {
	if h <= NoHandle || int(h) > len(p.arena) {
		return nil
	}
	return p.arena[h-1]
}

// Attach adds an active primitive under container in the render tree. A
// primitive attached elsewhere is moved.
func (p *Pool) Attach(h Handle, container SceneHandle) {
	if !p.IsActive(h) {
		tracer().Errorf("cannot attach inactive handle %d", h)
		return
	}
	prim := p.Get(h)
	if prim.attached {
		if prim.container == container {
			return
		}
		p.renderer.Detach(prim)
	}
	prim.container = container
	prim.attached = true
	p.renderer.Attach(container, prim)
}

// allocate adds a fresh primitive to the arena.
func (p *Pool) allocate() Handle {
	p.lastID++
	prim := &Primitive{ID: p.lastID}
	prim.reset()
	p.arena = append(p.arena, prim)
	return p.lastID
}
