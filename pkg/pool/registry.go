package pool

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tagpool/pkg/errors"
	"github.com/ajitpratap0/tagpool/pkg/logger"
	"github.com/ajitpratap0/tagpool/pkg/ring"
)

// defaultQueueCapacity is the initial ring size of each idle queue
const defaultQueueCapacity = 16

type options struct {
	log       *zap.Logger
	hooks     []Hooks
	organizer Organizer
	capacity  int
}

// Option configures a Registry.
type Option func(*options)

// WithLogger sets the diagnostic logger. The default is the global logger
// named "pool".
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithHooks adds event hooks, for example metrics collectors.
func WithHooks(hooks ...Hooks) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithOrganizer sets the hierarchy collaborator that receives released
// objects. Without one, released objects are left unparented.
func WithOrganizer(org Organizer) Option {
	return func(o *options) {
		o.organizer = org
	}
}

// WithQueueCapacity sets the initial idle queue capacity of new pools.
// Values above ring.MaxInitialCapacity are clamped.
func WithQueueCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = min(n, ring.MaxInitialCapacity)
		}
	}
}

// poolEntry is one logical pool: its tag, its idle queue and its counters.
type poolEntry[T Object] struct {
	tag       string
	available *ring.Queue[T]

	created  int
	adopted  int
	grown    int
	spawned  int
	released int
	inUse    int
}

// Registry owns every pool of a session and routes objects by tag.
//
// A Registry is safe for concurrent use; every operation takes one coarse
// lock and completes without waiting on anything else. Prototype
// constructors, Organizer and Hooks run while the lock is held. Spawn
// observers run after it is released, so they may call back into the
// registry.
type Registry[T Object] struct {
	mu sync.Mutex

	// entries is the ordered (tag, prototype) configuration list
	entries []Entry[T]
	pools   map[string]*poolEntry[T]
	order   []string

	// idle maps each queued object to the tag of the queue holding it
	idle map[T]string
	// lent maps each checked-out object to the tag it was spawned from
	lent map[T]string
	// observers are captured once, the first time an object is seen
	observers map[T][]SpawnObserver

	log       *zap.Logger
	hooks     Hooks
	organizer Organizer
	capacity  int
}

// New creates a registry from the static configuration list and creates a
// pool for every entry, in order. Invalid or duplicate entries are reported
// through the logger and skipped; they never abort construction.
//
// Example:
//
//	bullets := pool.NewPrototype("Bullet", newBullet)
//	reg := pool.New([]pool.Entry[*Bullet]{{Tag: "bullet", Prototype: bullets}})
//	b, err := reg.SpawnByTag("bullet", pool.At(muzzle, pool.Identity))
func New[T Object](entries []Entry[T], opts ...Option) *Registry[T] {
	o := options{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Named("pool")
	}

	r := &Registry[T]{
		pools:     make(map[string]*poolEntry[T], len(entries)),
		idle:      make(map[T]string),
		lent:      make(map[T]string),
		observers: make(map[T][]SpawnObserver),
		log:       o.log,
		hooks:     ChainHooks(o.hooks...),
		organizer: o.organizer,
		capacity:  o.capacity,
	}

	for _, e := range entries {
		if e.Tag != "" {
			r.entries = append(r.entries, e)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		_ = r.createPoolLocked(e.Tag, e.Prototype)
	}
	return r
}

// CreatePool registers an empty pool for tag.
//
// An existing tag is a DuplicatePool error and leaves the existing pool
// untouched. A prototype already recorded under another tag is only
// flagged with a warning. When the configuration list has no entry for tag
// yet, (tag, proto) is appended so later lookups and growth find it.
func (r *Registry[T]) CreatePool(tag string, proto *Prototype[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createPoolLocked(tag, proto)
}

func (r *Registry[T]) createPoolLocked(tag string, proto *Prototype[T]) error {
	if tag == "" {
		err := errors.New(errors.ErrorTypeValidation, "pool tag must not be empty")
		r.log.Error("cannot create pool", zap.Error(err))
		return err
	}

	if _, exists := r.pools[tag]; exists {
		r.log.Error("cannot create pool, tag already exists", zap.String("tag", tag))
		r.hooks.Diagnostic(tag, errors.ErrorTypeDuplicatePool)
		return errors.Newf(errors.ErrorTypeDuplicatePool, "pool %q already exists", tag).
			WithDetail("tag", tag)
	}

	if proto != nil {
		if owner, ok := r.tagOfLocked(proto); ok && owner != tag {
			r.log.Warn("prototype is already pooled under another tag",
				zap.String("tag", tag),
				zap.String("existing_tag", owner),
				zap.String("prototype", proto.Name))
			r.hooks.Diagnostic(tag, errors.ErrorTypeAmbiguousPrototype)
		}
	}

	r.pools[tag] = &poolEntry[T]{
		tag:       tag,
		available: ring.New[T](r.capacity),
	}
	r.order = append(r.order, tag)

	if _, ok := r.entryLocked(tag); !ok {
		r.entries = append(r.entries, Entry[T]{Tag: tag, Prototype: proto})
	}

	if r.organizer != nil {
		r.organizer.AddHolder(HolderName(tag))
	}

	r.hooks.PoolCreated(tag)
	r.hooks.Depth(tag, 0)
	r.log.Debug("pool created", zap.String("tag", tag))
	return nil
}

// SpawnByTag checks out an object from the pool named tag.
//
// When the pool is empty exactly one instance is manufactured from the
// prototype and passed through the release path before being checked out.
// The oldest idle object is reused first. The object is placed at pose,
// activated, and each of its observers gets the tag and an OnSpawn call.
//
// Errors:
//   - ErrorTypeUnknownPool: no pool has this tag (logged as a warning)
//   - ErrorTypeGrowth: the pool was empty and no instance could be made
func (r *Registry[T]) SpawnByTag(tag string, pose Pose) (T, error) {
	var zero T

	r.mu.Lock()
	p, ok := r.pools[tag]
	if !ok {
		r.log.Warn("pool does not exist", zap.String("tag", tag))
		r.hooks.Diagnostic(tag, errors.ErrorTypeUnknownPool)
		r.mu.Unlock()
		return zero, errors.Newf(errors.ErrorTypeUnknownPool, "pool %q does not exist", tag).
			WithDetail("tag", tag)
	}

	if p.available.IsEmpty() {
		if err := r.manufactureLocked(p); err != nil {
			r.log.Error("pool is empty and could not grow", zap.String("tag", tag), zap.Error(err))
			r.hooks.Diagnostic(tag, errors.ErrorTypeGrowth)
			r.mu.Unlock()
			return zero, err
		}
		p.grown++
		r.hooks.Grew(tag)
	}

	obj, _ := p.available.Pop()
	delete(r.idle, obj)
	r.lent[obj] = tag
	p.spawned++
	p.inUse++

	obj.SetPose(pose)
	obj.SetActive(true)

	observers := r.observers[obj]
	r.hooks.Spawned(tag)
	r.hooks.Depth(tag, p.available.Len())
	r.mu.Unlock()

	for _, o := range observers {
		o.SetPoolTag(tag)
		o.OnSpawn()
	}
	return obj, nil
}

// SpawnByPrototype resolves proto to a tag and spawns from it. With
// createIfMissing a pool is created for the resolved tag when none exists.
func (r *Registry[T]) SpawnByPrototype(proto *Prototype[T], pose Pose, createIfMissing bool) (T, error) {
	var zero T
	if proto == nil {
		return zero, errors.New(errors.ErrorTypeValidation, "prototype must not be nil")
	}

	tag := r.resolve(proto, createIfMissing)
	return r.SpawnByTag(tag, pose)
}

// Release returns obj to the pool named tag: it is deactivated, appended to
// the tail of the idle queue and parked under the tag's holding area.
//
// Releasing into a tag that has no pool is a caller bug. It is logged with
// DPanic, which panics under development loggers, and returns an
// ErrorTypeContract error without touching obj. Releasing an object that is
// already idle is ignored with a warning and ErrorTypeDoubleRelease.
func (r *Registry[T]) Release(tag string, obj T) error {
	var zero T

	r.mu.Lock()
	defer r.mu.Unlock()

	if obj == zero {
		r.log.Warn("ignoring release of an empty handle", zap.String("tag", tag))
		return errors.New(errors.ErrorTypeValidation, "cannot release an empty handle").
			WithDetail("tag", tag)
	}

	p, ok := r.pools[tag]
	if !ok {
		r.hooks.Diagnostic(tag, errors.ErrorTypeContract)
		r.log.DPanic("release into a pool that does not exist", zap.String("tag", tag))
		return errors.Newf(errors.ErrorTypeContract, "pool %q does not exist", tag).
			WithDetail("tag", tag)
	}

	adopted := false
	if _, known := r.observers[obj]; !known {
		r.observers[obj] = collectObservers(obj)
		adopted = true
	}

	if err := r.enqueueLocked(p, obj); err != nil {
		r.log.Warn("object is already idle, ignoring release", zap.String("tag", tag), zap.Error(err))
		r.hooks.Diagnostic(tag, errors.ErrorTypeDoubleRelease)
		return err
	}

	if adopted {
		p.adopted++
	}
	if from, ok := r.lent[obj]; ok {
		delete(r.lent, obj)
		if src, ok := r.pools[from]; ok {
			src.inUse--
		}
	}
	p.released++
	r.hooks.Released(tag)
	return nil
}

// ReleaseByPrototype resolves proto to a tag and releases obj into it. With
// createIfMissing a pool is created for the resolved tag when none exists.
func (r *Registry[T]) ReleaseByPrototype(proto *Prototype[T], obj T, createIfMissing bool) error {
	if proto == nil {
		return errors.New(errors.ErrorTypeValidation, "prototype must not be nil")
	}

	tag := r.resolve(proto, createIfMissing)
	return r.Release(tag, obj)
}

// Prewarm manufactures n idle instances for tag through the growth path and
// returns how many were made before the first failure.
func (r *Registry[T]) Prewarm(tag string, n int) (int, error) {
	if n < 0 {
		return 0, errors.Newf(errors.ErrorTypeValidation, "prewarm count %d cannot be negative", n).
			WithDetail("tag", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pools[tag]
	if !ok {
		r.log.Warn("cannot prewarm, pool does not exist", zap.String("tag", tag))
		return 0, errors.Newf(errors.ErrorTypeUnknownPool, "pool %q does not exist", tag).
			WithDetail("tag", tag)
	}

	for i := 0; i < n; i++ {
		if err := r.manufactureLocked(p); err != nil {
			r.log.Error("prewarm stopped", zap.String("tag", tag), zap.Int("made", i), zap.Error(err))
			r.hooks.Diagnostic(tag, errors.ErrorTypeGrowth)
			return i, err
		}
	}
	return n, nil
}

// TagOf resolves proto to a tag: the first pool in configuration order that
// records this prototype, or else the prototype's Name.
//
// The Name fallback couples display names with pool identity. It is kept for
// compatibility; callers relying on it should pass createIfMissing or expect
// an unknown pool.
func (r *Registry[T]) TagOf(proto *Prototype[T]) string {
	if proto == nil {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked(proto)
}

// HasPool reports whether a pool exists for tag.
func (r *Registry[T]) HasPool(tag string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pools[tag]
	return ok
}

// HasPoolFor reports whether a pool exists for the tag proto resolves to.
func (r *Registry[T]) HasPoolFor(proto *Prototype[T]) bool {
	if proto == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pools[r.resolveLocked(proto)]
	return ok
}

// Available returns the number of idle objects in the pool named tag.
func (r *Registry[T]) Available(tag string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pools[tag]
	if !ok {
		return 0, false
	}
	return p.available.Len(), true
}

// IsIdle reports whether obj is queued in any pool.
func (r *Registry[T]) IsIdle(obj T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.idle[obj]
	return ok
}

// Tags returns pool tags in creation order.
func (r *Registry[T]) Tags() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Entries returns a copy of the configuration list.
func (r *Registry[T]) Entries() []Entry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry[T], len(r.entries))
	copy(out, r.entries)
	return out
}

// resolve maps proto to a tag and optionally creates the pool.
func (r *Registry[T]) resolve(proto *Prototype[T], createIfMissing bool) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag := r.resolveLocked(proto)
	if _, exists := r.pools[tag]; createIfMissing && !exists {
		_ = r.createPoolLocked(tag, proto)
	}
	return tag
}

func (r *Registry[T]) resolveLocked(proto *Prototype[T]) string {
	if tag, ok := r.tagOfLocked(proto); ok {
		return tag
	}
	return proto.Name
}

func (r *Registry[T]) tagOfLocked(proto *Prototype[T]) (string, bool) {
	for _, e := range r.entries {
		if e.Prototype == proto {
			return e.Tag, true
		}
	}
	return "", false
}

func (r *Registry[T]) entryLocked(tag string) (Entry[T], bool) {
	for _, e := range r.entries {
		if e.Tag == tag {
			return e, true
		}
	}
	return Entry[T]{}, false
}

// manufactureLocked makes one instance from the tag's prototype and enqueues
// it through the release path.
func (r *Registry[T]) manufactureLocked(p *poolEntry[T]) error {
	e, ok := r.entryLocked(p.tag)
	if !ok || e.Prototype == nil || e.Prototype.New == nil {
		return errors.Newf(errors.ErrorTypeGrowth, "pool %q has no prototype to grow from", p.tag).
			WithDetail("tag", p.tag)
	}

	obj, err := e.Prototype.New()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeGrowth, "prototype constructor failed").
			WithDetail("tag", p.tag).
			WithDetail("prototype", e.Prototype.Name)
	}

	var zero T
	if obj == zero {
		return errors.New(errors.ErrorTypeGrowth, "prototype constructor returned no instance").
			WithDetail("tag", p.tag).
			WithDetail("prototype", e.Prototype.Name)
	}

	if _, known := r.observers[obj]; !known {
		r.observers[obj] = collectObservers(obj)
	}
	if err := r.enqueueLocked(p, obj); err != nil {
		return errors.Wrap(err, errors.ErrorTypeGrowth, "prototype constructor returned a pooled instance").
			WithDetail("tag", p.tag)
	}
	p.created++
	return nil
}

// enqueueLocked is the single return path shared by Release and growth.
func (r *Registry[T]) enqueueLocked(p *poolEntry[T], obj T) error {
	if p.available.Contains(obj) {
		return errors.Newf(errors.ErrorTypeDoubleRelease, "object is already idle in pool %q", p.tag).
			WithDetail("tag", p.tag)
	}
	if other, ok := r.idle[obj]; ok {
		return errors.Newf(errors.ErrorTypeDoubleRelease, "object is already idle in pool %q", other).
			WithDetail("tag", p.tag).
			WithDetail("idle_in", other)
	}

	obj.SetActive(false)
	p.available.Push(obj)
	r.idle[obj] = p.tag

	if r.organizer != nil {
		holder := HolderName(p.tag)
		if !r.organizer.Park(obj, holder) {
			r.log.Warn("holding area does not exist, detaching object",
				zap.String("tag", p.tag),
				zap.String("holder", holder))
			r.organizer.Detach(obj)
		}
	}

	r.hooks.Depth(p.tag, p.available.Len())
	return nil
}

// collectObservers lists obj's observers: obj itself first when it is one,
// then whatever it provides.
func collectObservers[T Object](obj T) []SpawnObserver {
	var out []SpawnObserver
	if self, ok := any(obj).(SpawnObserver); ok {
		out = append(out, self)
	}
	if provider, ok := any(obj).(ObserverProvider); ok {
		for _, o := range provider.SpawnObservers() {
			if o != nil {
				out = append(out, o)
			}
		}
	}
	return out
}
