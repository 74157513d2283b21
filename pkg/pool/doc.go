// Package pool implements a typed object pool with lazy growth and tag-based
// routing. A Registry owns a set of named pools, each a FIFO queue of idle
// objects plus the prototype used to manufacture new ones when the queue
// runs dry.
//
// Architecture
//
// The package is generic over the pooled type. Any comparable type with
// Active, SetActive and SetPose methods can be pooled; pointer types are the
// natural choice.
//
// Core Types:
//
//   - Registry[T]: the tag -> queue and tag -> prototype owner
//   - Prototype[T]: a named template with a constructor
//   - Entry[T]: one (tag, prototype) pair of the static configuration list
//   - SpawnObserver: lifecycle capability notified on every checkout
//   - Organizer: optional collaborator grouping idle objects by tag
//   - Hooks: event sink for metrics
//
// Lifecycle
//
//	reg := pool.New([]pool.Entry[*Bullet]{
//		{Tag: "bullet", Prototype: pool.NewPrototype("Bullet", newBullet)},
//	})
//
//	b, err := reg.SpawnByTag("bullet", pool.At(muzzle, pool.Identity))
//	if err != nil {
//		return err // unknown pool or failed growth
//	}
//	...
//	_ = reg.Release("bullet", b)
//
// Spawning from an empty pool manufactures exactly one instance, routes it
// through the release path, then checks it out. The oldest idle object is
// always reused first.
//
// Failure Semantics
//
// Spawn-side failures are soft: they are logged and returned, and the
// session keeps running. Releasing into a tag with no pool is a caller bug
// and is logged with DPanic, which panics under development loggers.
// Releasing an object that is already idle is detected and ignored.
//
// Tag Resolution
//
// SpawnByPrototype and ReleaseByPrototype resolve a prototype to the first
// pool (in configuration order) recording it, and fall back to the
// prototype's Name when none does.
//
// Concurrency
//
// A Registry serializes all operations behind one lock. Spawn observers are
// notified after the lock is released and may call back into the registry;
// prototype constructors, Organizer and Hooks may not.
package pool
