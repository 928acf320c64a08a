package ringpool

import (
	"github.com/emirpasic/gods/maps/treemap"
)

// MemoryScene is a Renderer which keeps the render tree in memory. It does
// not draw anything; it is useful for tests, headless simulations and as a
// staging area for renderers which consume whole frames at once.
//
// Primitives of different pools may share a container, so children are keyed
// by attach sequence rather than by primitive ID.
type MemoryScene struct {
	containers map[SceneHandle]*treemap.Map // seq → *Primitive, ordered by attach
	seq        map[*Primitive]int
	attaches   int
	detaches   int
}

// NewMemoryScene creates an empty in-memory render tree.
func NewMemoryScene() *MemoryScene {
	return &MemoryScene{
		containers: make(map[SceneHandle]*treemap.Map),
		seq:        make(map[*Primitive]int),
	}
}

// Attach adds p under container.
func (s *MemoryScene) Attach(container SceneHandle, p *Primitive) {
	children, ok := s.containers[container]
	if !ok {
		children = treemap.NewWithIntComparator()
		s.containers[container] = children
	}
	s.attaches++
	s.seq[p] = s.attaches
	children.Put(s.attaches, p)
}

// Detach removes p from whatever container holds it.
func (s *MemoryScene) Detach(p *Primitive) {
	container, ok := p.Container()
	if !ok {
		return
	}
	if children, ok := s.containers[container]; ok {
		children.Remove(s.seq[p])
		if children.Empty() {
			delete(s.containers, container)
		}
	}
	delete(s.seq, p)
	s.detaches++
}

// Children returns the primitives attached to container, in attach order.
func (s *MemoryScene) Children(container SceneHandle) []*Primitive {
	children, ok := s.containers[container]
	if !ok {
		return nil
	}
	prims := make([]*Primitive, 0, children.Size())
	for _, v := range children.Values() {
		prims = append(prims, v.(*Primitive))
	}
	return prims
}

// Len returns the number of primitives attached to container.
func (s *MemoryScene) Len(container SceneHandle) int {
	if children, ok := s.containers[container]; ok {
		return children.Size()
	}
	return 0
}

// Counts returns the number of attach and detach calls so far.
func (s *MemoryScene) Counts() (attaches, detaches int) {
	return s.attaches, s.detaches
}

var _ Renderer = (*MemoryScene)(nil)
