package pool

// PoolStats is a point-in-time snapshot of one pool.
type PoolStats struct {
	Tag       string `json:"tag"`
	Prototype string `json:"prototype,omitempty"`
	// Available is the number of idle objects
	Available int `json:"available"`
	// InUse is the number of objects spawned from this pool and not yet released
	InUse int `json:"in_use"`
	// Created counts instances manufactured from the prototype, prewarm included
	Created int `json:"created"`
	// Adopted counts objects first seen through Release
	Adopted int `json:"adopted"`
	// Grown counts lazy-growth instantiations during spawn
	Grown    int `json:"grown"`
	Spawned  int `json:"spawned"`
	Released int `json:"released"`
}

// Stats returns a snapshot of every pool in creation order.
func (r *Registry[T]) Stats() []PoolStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]PoolStats, 0, len(r.order))
	for _, tag := range r.order {
		out = append(out, r.statsLocked(r.pools[tag]))
	}
	return out
}

// StatsFor returns the snapshot of a single pool.
func (r *Registry[T]) StatsFor(tag string) (PoolStats, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pools[tag]
	if !ok {
		return PoolStats{}, false
	}
	return r.statsLocked(p), true
}

func (r *Registry[T]) statsLocked(p *poolEntry[T]) PoolStats {
	s := PoolStats{
		Tag:       p.tag,
		Available: p.available.Len(),
		InUse:     p.inUse,
		Created:   p.created,
		Adopted:   p.adopted,
		Grown:     p.grown,
		Spawned:   p.spawned,
		Released:  p.released,
	}
	if e, ok := r.entryLocked(p.tag); ok && e.Prototype != nil {
		s.Prototype = e.Prototype.Name
	}
	return s
}

// Totals sums a set of snapshots under the tag "*".
func Totals(stats []PoolStats) PoolStats {
	t := PoolStats{Tag: "*"}
	for _, s := range stats {
		t.Available += s.Available
		t.InUse += s.InUse
		t.Created += s.Created
		t.Adopted += s.Adopted
		t.Grown += s.Grown
		t.Spawned += s.Spawned
		t.Released += s.Released
	}
	return t
}
