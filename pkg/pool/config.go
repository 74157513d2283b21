package pool

import (
	"github.com/ajitpratap0/tagpool/pkg/config"
	"github.com/ajitpratap0/tagpool/pkg/errors"
)

// Catalog maps prototype names to prototypes.
type Catalog[T Object] map[string]*Prototype[T]

// Add registers proto under its Name and returns the catalog.
func (c Catalog[T]) Add(proto *Prototype[T]) Catalog[T] {
	c[proto.Name] = proto
	return c
}

// FromConfig validates cfg, builds the configuration list from catalog and
// creates the registry, then prewarms each pool. A pool naming a prototype
// missing from the catalog is a config error.
func FromConfig[T Object](cfg *config.RegistryConfig, catalog Catalog[T], opts ...Option) (*Registry[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid registry config")
	}

	entries := make([]Entry[T], 0, len(cfg.Pools))
	for _, p := range cfg.Pools {
		proto, ok := catalog[p.PrototypeName()]
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeConfig, "pool %q: unknown prototype %q", p.Tag, p.PrototypeName()).
				WithDetail("tag", p.Tag)
		}
		entries = append(entries, Entry[T]{Tag: p.Tag, Prototype: proto})
	}

	if cfg.QueueCapacity > 0 {
		opts = append([]Option{WithQueueCapacity(cfg.QueueCapacity)}, opts...)
	}
	r := New(entries, opts...)

	for _, p := range cfg.Pools {
		if p.Prewarm == 0 {
			continue
		}
		if _, err := r.Prewarm(p.Tag, p.Prewarm); err != nil {
			return nil, err
		}
	}
	return r, nil
}
