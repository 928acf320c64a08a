package ringpool

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/npillmayer/tubetrack"
)

// Handle identifies a primitive within the arena of a pool. Handles are
// allocated by the pool's own counter and are never reused for another
// primitive. The zero value denotes "no primitive".
type Handle int

// NoHandle is the invalid handle.
const NoHandle Handle = 0

// SceneHandle identifies a container in the render tree which primitives
// are attached to.
type SceneHandle struct {
	ID   uuid.UUID
	Name string
}

// NewSceneHandle creates a container handle with a fresh identity.
func NewSceneHandle(name string) SceneHandle {
	return SceneHandle{ID: uuid.New(), Name: name}
}

// IsZero is a predicate: is this the zero container?
func (s SceneHandle) IsZero() bool {
	return s.ID == uuid.Nil
}

func (s SceneHandle) String() string {
	return fmt.Sprintf("%s[%s]", s.Name, s.ID)
}

// Transform is the placement of a primitive in world space.
type Transform struct {
	Position tubetrack.Waypoint
	Rotation tubetrack.Euler
	Scale    tubetrack.Waypoint
}

// IdentityTransform places a primitive at the origin, unrotated and unscaled.
var IdentityTransform = Transform{Scale: tubetrack.W(1, 1, 1)}

// Primitive is a reusable render primitive. It lives in the arena of its
// pool; clients refer to it by Handle and may modify its transient state
// while it is active.
type Primitive struct {
	ID        Handle
	Transform Transform
	Opacity   float64
	Visible   bool
	Index     int     // ring index within the last rebuild
	Phase     float64 // accumulated phase, in degrees
	Owner     Handle  // owning ring of a spoke, NoHandle for rings
	container SceneHandle
	attached  bool
}

// Container returns the container p is attached to, and false if it is
// detached.
func (p *Primitive) Container() (SceneHandle, bool) {
	return p.container, p.attached
}

// reset clears all transient state.
func (p *Primitive) reset() {
	p.Transform = IdentityTransform
	p.Opacity = 1
	p.Visible = false
	p.Index = 0
	p.Phase = 0
	p.Owner = NoHandle
	p.container = SceneHandle{}
	p.attached = false
}

// Renderer is the render-tree collaborator of a pool. It attaches
// primitives to containers and removes them again.
type Renderer interface {
	Attach(container SceneHandle, p *Primitive)
	Detach(p *Primitive)
}

// NopRenderer ignores attachments.
type NopRenderer struct{}

// Attach does nothing.
func (NopRenderer) Attach(SceneHandle, *Primitive) {}

// Detach does nothing.
func (NopRenderer) Detach(*Primitive) {}
