package pool

import (
	"github.com/ajitpratap0/tagpool/pkg/errors"
)

// Vec3 is a position in world space.
type Vec3 struct {
	X, Y, Z float64
}

// Quat is an orientation stored as a quaternion. The pool never does
// arithmetic on it; it is handed to objects on spawn.
type Quat struct {
	X, Y, Z, W float64
}

// Identity is the "no rotation" orientation.
var Identity = Quat{W: 1}

// Origin is the zero position.
var Origin = Vec3{}

// Pose is the placement applied to an object when it is spawned.
type Pose struct {
	Position    Vec3
	Orientation Quat
}

// At builds a Pose from a position and orientation.
func At(position Vec3, orientation Quat) Pose {
	return Pose{Position: position, Orientation: orientation}
}

// Object is the constraint every pooled type satisfies. Objects must be
// comparable (pointer types in practice) because the registry tracks them by
// identity.
type Object interface {
	comparable
	// Active reports whether the object is currently enabled.
	Active() bool
	// SetActive enables or disables the object.
	SetActive(active bool)
	// SetPose places the object.
	SetPose(p Pose)
}

// SpawnObserver is the lifecycle capability a pooled object may expose.
// The registry sets the owning tag and then calls OnSpawn every time the
// object is checked out, before the caller receives it. SetPoolTag always
// runs first, so OnSpawn can read the tag; engine poolers that fire the
// spawn callback before assigning the tag behave differently here.
type SpawnObserver interface {
	SetPoolTag(tag string)
	OnSpawn()
}

// ObserverProvider lets an object expose several observers, for example one
// per attached component. They are notified in the order returned.
type ObserverProvider interface {
	SpawnObservers() []SpawnObserver
}

// Prototype is the template a pool manufactures new instances from.
// Prototypes are matched by pointer identity.
type Prototype[T Object] struct {
	// Name is the display name, used as a fallback tag when no pool claims
	// the prototype.
	Name string
	// New manufactures one instance.
	New func() (T, error)
}

// NewPrototype creates a prototype.
func NewPrototype[T Object](name string, fn func() (T, error)) *Prototype[T] {
	return &Prototype[T]{Name: name, New: fn}
}

// Entry is one (tag, prototype) pair of the static configuration list.
type Entry[T Object] struct {
	Tag       string
	Prototype *Prototype[T]
}

// Organizer is the optional hierarchy collaborator that keeps released
// objects grouped under a named holding area per tag.
// Organizer methods run while the registry lock is held and must not call
// back into the registry.
type Organizer interface {
	// AddHolder creates a holding area. Called once per pool.
	AddHolder(name string)
	// Park moves obj under the named holding area. It returns false when the
	// holder does not exist.
	Park(obj any, holder string) bool
	// Detach moves obj to the neutral top level.
	Detach(obj any)
}

// HolderName returns the holding area name used for tag.
func HolderName(tag string) string {
	return tag + "_pool"
}

// Hooks receives registry events, typically for metrics.
// Hooks run while the registry lock is held and must not call back into the
// registry.
type Hooks interface {
	PoolCreated(tag string)
	Spawned(tag string)
	Released(tag string)
	Grew(tag string)
	Depth(tag string, available int)
	Diagnostic(tag string, kind errors.ErrorType)
}

// NopHooks ignores every event. Embed it to implement a subset of Hooks.
type NopHooks struct{}

func (NopHooks) PoolCreated(string)                  {}
func (NopHooks) Spawned(string)                      {}
func (NopHooks) Released(string)                     {}
func (NopHooks) Grew(string)                         {}
func (NopHooks) Depth(string, int)                   {}
func (NopHooks) Diagnostic(string, errors.ErrorType) {}

// multiHooks fans events out in order.
type multiHooks []Hooks

// ChainHooks combines several Hooks into one. Nil entries are skipped.
func ChainHooks(hooks ...Hooks) Hooks {
	out := make(multiHooks, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			out = append(out, h)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func (m multiHooks) PoolCreated(tag string) {
	for _, h := range m {
		h.PoolCreated(tag)
	}
}

func (m multiHooks) Spawned(tag string) {
	for _, h := range m {
		h.Spawned(tag)
	}
}

func (m multiHooks) Released(tag string) {
	for _, h := range m {
		h.Released(tag)
	}
}

func (m multiHooks) Grew(tag string) {
	for _, h := range m {
		h.Grew(tag)
	}
}

func (m multiHooks) Depth(tag string, available int) {
	for _, h := range m {
		h.Depth(tag, available)
	}
}

func (m multiHooks) Diagnostic(tag string, kind errors.ErrorType) {
	for _, h := range m {
		h.Diagnostic(tag, kind)
	}
}
