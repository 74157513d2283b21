package sim

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/tagpool/pkg/errors"
	"github.com/ajitpratap0/tagpool/pkg/logger"
	"github.com/ajitpratap0/tagpool/pkg/metrics"
	"github.com/ajitpratap0/tagpool/pkg/observability"
	"github.com/ajitpratap0/tagpool/pkg/pool"
)

// Plan describes the churn a run performs.
type Plan struct {
	// Session names the run in logs, spans and the report
	Session string `json:"session"`
	Rounds  int    `json:"rounds"`
	// SpawnsPerRound is the number of spawns per tag, per worker, per round
	SpawnsPerRound int `json:"spawns_per_round"`
	// Live is how many objects per tag a worker holds before releasing the oldest
	Live    int `json:"live"`
	Workers int `json:"workers"`
	// Tags restricts the run to these tags. Empty means every pool.
	Tags []string `json:"tags,omitempty"`
}

// DefaultPlan returns a small single-worker plan.
func DefaultPlan() Plan {
	return Plan{
		Session:        "simulate",
		Rounds:         10,
		SpawnsPerRound: 8,
		Live:           4,
		Workers:        1,
	}
}

func (p Plan) validate() error {
	if p.Rounds < 1 {
		return errors.New(errors.ErrorTypeValidation, "rounds must be at least 1")
	}
	if p.SpawnsPerRound < 1 {
		return errors.New(errors.ErrorTypeValidation, "spawns_per_round must be at least 1")
	}
	if p.Live < 0 {
		return errors.New(errors.ErrorTypeValidation, "live cannot be negative")
	}
	if p.Workers < 1 {
		return errors.New(errors.ErrorTypeValidation, "workers must be at least 1")
	}
	return nil
}

// Report summarizes a run.
type Report struct {
	Session  string `json:"session"`
	Rounds   int    `json:"rounds"`
	Workers  int    `json:"workers"`
	Spawns   int64  `json:"spawns"`
	Releases int64  `json:"releases"`
	// Failures counts recoverable spawn failures by error type
	Failures map[string]int64 `json:"failures,omitempty"`
	// MaxLive is the highest number of simultaneously checked-out objects
	MaxLive int64 `json:"max_live"`
	// Created is the number of instances the pools manufactured in total
	Created   int              `json:"created"`
	Duration  time.Duration    `json:"duration_ns"`
	SpawnRate float64          `json:"spawns_per_second"`
	Pools     []pool.PoolStats `json:"pools"`
	Memory    MemoryDelta      `json:"memory"`
}

// Option configures Run.
type Option func(*runner)

// WithLogger sets the run logger. The default is the global logger named "sim".
func WithLogger(l *zap.Logger) Option {
	return func(r *runner) { r.log = l }
}

// WithTracer wraps every worker round in a span.
func WithTracer(t *observability.PoolTracer) Option {
	return func(r *runner) { r.tracer = t }
}

// WithRateTracker feeds every successful spawn into rt.
func WithRateTracker(rt *metrics.RateTracker) Option {
	return func(r *runner) { r.rate = rt }
}

type runner struct {
	reg    *pool.Registry[*Entity]
	plan   Plan
	tags   []string
	log    *zap.Logger
	tracer *observability.PoolTracer
	rate   *metrics.RateTracker

	spawns   atomic.Int64
	releases atomic.Int64
	live     atomic.Int64
	maxLive  atomic.Int64

	mu       sync.Mutex
	failures map[string]int64
}

// Run performs plan against reg and reports the outcome. Recoverable pool
// errors are counted and the run continues; any other error, or ctx being
// cancelled, stops every worker and is returned. Objects still held when a
// worker stops are released before Run returns.
func Run(ctx context.Context, reg *pool.Registry[*Entity], plan Plan, opts ...Option) (*Report, error) {
	if err := plan.validate(); err != nil {
		return nil, err
	}

	r := &runner{
		reg:      reg,
		plan:     plan,
		tags:     plan.Tags,
		failures: make(map[string]int64),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Named("sim")
	}
	if len(r.tags) == 0 {
		r.tags = reg.Tags()
	}

	rss := newRSSSampler()
	before := rss.sample()
	timer := metrics.NewTimer(plan.Session)

	r.log.Info("simulation started",
		zap.String("session", plan.Session),
		zap.Strings("tags", r.tags),
		zap.Int("rounds", plan.Rounds),
		zap.Int("workers", plan.Workers))

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < plan.Workers; w++ {
		worker := w
		g.Go(func() error {
			return r.work(gctx, worker)
		})
	}
	err := g.Wait()

	elapsed := timer.Stop()
	stats := reg.Stats()
	report := &Report{
		Session:  plan.Session,
		Rounds:   plan.Rounds,
		Workers:  plan.Workers,
		Spawns:   r.spawns.Load(),
		Releases: r.releases.Load(),
		MaxLive:  r.maxLive.Load(),
		Created:  pool.Totals(stats).Created,
		Duration: elapsed,
		Pools:    stats,
		Memory:   newMemoryDelta(before, rss.sample()),
	}
	if len(r.failures) > 0 {
		report.Failures = r.failures
	}
	if secs := elapsed.Seconds(); secs > 0 {
		report.SpawnRate = float64(report.Spawns) / secs
	}
	if r.rate != nil {
		r.rate.GetAndReset()
	}

	if err != nil {
		r.log.Error("simulation stopped", zap.String("session", plan.Session), zap.Error(err))
		return report, err
	}
	r.log.Info("simulation finished",
		zap.String("session", plan.Session),
		zap.Int64("spawns", report.Spawns),
		zap.Int64("max_live", report.MaxLive),
		zap.Int("created", report.Created),
		zap.Duration("duration", elapsed))
	return report, nil
}

func (r *runner) work(ctx context.Context, worker int) (err error) {
	held := make(map[string][]*Entity, len(r.tags))
	defer func() {
		for tag, objs := range held {
			for _, obj := range objs {
				if rerr := r.release(tag, obj); rerr != nil && err == nil {
					err = rerr
				}
			}
		}
	}()

	for round := 1; round <= r.plan.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		step := func(ctx context.Context) error {
			return r.round(ctx, worker, round, held)
		}
		if r.tracer != nil {
			err = r.tracer.TraceRound(ctx, round, step)
		} else {
			err = step(ctx)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) round(ctx context.Context, worker, round int, held map[string][]*Entity) error {
	log := observability.LoggerWithTrace(ctx, r.log)

	for _, tag := range r.tags {
		for i := 0; i < r.plan.SpawnsPerRound; i++ {
			pose := pool.At(pool.Vec3{X: float64(round), Y: float64(i), Z: float64(worker)}, pool.Identity)
			obj, err := r.reg.SpawnByTag(tag, pose)
			if err != nil {
				if !errors.IsRecoverable(err) {
					return fmt.Errorf("worker %d round %d: %w", worker, round, err)
				}
				r.fail(errors.TypeOf(err))
				continue
			}
			r.spawned()
			if t := obj.Trail(); t != nil {
				t.Add()
			}

			held[tag] = append(held[tag], obj)
			for len(held[tag]) > r.plan.Live {
				oldest := held[tag][0]
				held[tag] = held[tag][1:]
				if err := r.release(tag, oldest); err != nil {
					return fmt.Errorf("worker %d round %d: %w", worker, round, err)
				}
			}
		}
	}

	log.Debug("round complete", zap.Int("worker", worker), zap.Int("round", round))
	return nil
}

func (r *runner) spawned() {
	r.spawns.Add(1)
	if r.rate != nil {
		r.rate.Increment(1)
	}
	now := r.live.Add(1)
	for {
		peak := r.maxLive.Load()
		if now <= peak || r.maxLive.CompareAndSwap(peak, now) {
			return
		}
	}
}

func (r *runner) release(tag string, obj *Entity) error {
	if err := r.reg.Release(tag, obj); err != nil {
		return err
	}
	r.releases.Add(1)
	r.live.Add(-1)
	return nil
}

func (r *runner) fail(kind errors.ErrorType) {
	r.mu.Lock()
	r.failures[string(kind)]++
	r.mu.Unlock()
}
