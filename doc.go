// Package tagpool is an engine-agnostic object pool with lazy growth and
// tag-based routing.
//
// A registry owns named pools. Each pool keeps a FIFO queue of idle objects
// and a prototype it manufactures new instances from when the queue runs
// dry. Callers spawn objects by tag (or by prototype, which is resolved to a
// tag) and release them back when done.
//
// # Packages
//
//   - pkg/pool: Registry, prototypes, observers, the Holders organizer
//   - pkg/ring: the growable FIFO behind every pool
//   - pkg/errors: typed errors (unknown pool, double release, growth failure)
//   - pkg/config: YAML registry configuration with environment overrides
//   - pkg/logger: the global zap logger
//   - pkg/metrics: Prometheus hooks
//   - pkg/observability: OpenTelemetry tracing and metric hooks
//   - internal/sim: spawn/release churn driver behind "tagpool simulate"
//
// # Quick Start
//
//	bullets := pool.NewPrototype("Bullet", func() (*Bullet, error) {
//	    return &Bullet{}, nil
//	})
//	reg := pool.New([]pool.Entry[*Bullet]{{Tag: "bullet", Prototype: bullets}})
//
//	b, err := reg.SpawnByTag("bullet", pool.At(muzzle, pool.Identity))
//	if err != nil {
//	    return err
//	}
//	defer reg.Release("bullet", b)
package tagpool
