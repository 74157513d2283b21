package sim

import (
	"github.com/google/uuid"

	"github.com/ajitpratap0/tagpool/pkg/config"
	"github.com/ajitpratap0/tagpool/pkg/pool"
)

// NewPrototype returns a prototype that manufactures entities of kind, each
// with a fresh ID and its own trail.
func NewPrototype(kind string) *pool.Prototype[*Entity] {
	return pool.NewPrototype(kind, func() (*Entity, error) {
		return &Entity{
			ID:    uuid.NewString(),
			Kind:  kind,
			trail: &Trail{},
		}, nil
	})
}

// NewCatalog builds one prototype per name.
func NewCatalog(names ...string) pool.Catalog[*Entity] {
	c := make(pool.Catalog[*Entity], len(names))
	for _, name := range names {
		if _, ok := c[name]; !ok {
			c.Add(NewPrototype(name))
		}
	}
	return c
}

// CatalogFor builds a catalog covering every prototype cfg refers to.
func CatalogFor(cfg *config.RegistryConfig) pool.Catalog[*Entity] {
	names := make([]string, 0, len(cfg.Pools))
	for _, p := range cfg.Pools {
		names = append(names, p.PrototypeName())
	}
	return NewCatalog(names...)
}
