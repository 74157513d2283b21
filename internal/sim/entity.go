package sim

import (
	"github.com/ajitpratap0/tagpool/pkg/pool"
)

// Entity is the pooled scene object used by the simulation.
type Entity struct {
	ID   string
	Kind string

	active bool
	pose   pool.Pose
	tag    string
	spawns int
	trail  *Trail
}

func (e *Entity) Active() bool          { return e.active }
func (e *Entity) SetActive(active bool) { e.active = active }
func (e *Entity) SetPose(p pool.Pose)   { e.pose = p }

// SetPoolTag records the pool the entity was last spawned from.
func (e *Entity) SetPoolTag(tag string) { e.tag = tag }

// OnSpawn counts reuses.
func (e *Entity) OnSpawn() { e.spawns++ }

// SpawnObservers exposes the attached trail.
func (e *Entity) SpawnObservers() []pool.SpawnObserver {
	if e.trail == nil {
		return nil
	}
	return []pool.SpawnObserver{e.trail}
}

// Pose returns the pose applied on the last spawn.
func (e *Entity) Pose() pool.Pose { return e.pose }

// Tag returns the pool tag of the last spawn.
func (e *Entity) Tag() string { return e.tag }

// Spawns returns how many times the entity has been checked out.
func (e *Entity) Spawns() int { return e.spawns }

// Trail returns the attached component, if any.
func (e *Entity) Trail() *Trail { return e.trail }

// Trail is a component attached to an entity. It is cleared on every spawn.
type Trail struct {
	tag    string
	points int
	resets int
}

// SetPoolTag implements pool.SpawnObserver.
func (t *Trail) SetPoolTag(tag string) { t.tag = tag }

// OnSpawn clears the recorded points.
func (t *Trail) OnSpawn() {
	t.points = 0
	t.resets++
}

// Add records a point.
func (t *Trail) Add() { t.points++ }

// Points returns the points recorded since the last spawn.
func (t *Trail) Points() int { return t.points }

// Resets returns how many spawns cleared the trail.
func (t *Trail) Resets() int { return t.resets }
