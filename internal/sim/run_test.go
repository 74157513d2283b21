package sim

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tagpool/pkg/errors"
	"github.com/ajitpratap0/tagpool/pkg/metrics"
	"github.com/ajitpratap0/tagpool/pkg/observability"
	"github.com/ajitpratap0/tagpool/pkg/pool"
	"github.com/ajitpratap0/tagpool/pkg/testutil"
)

func newRegistry(tags ...string) *pool.Registry[*Entity] {
	entries := make([]pool.Entry[*Entity], 0, len(tags))
	for _, tag := range tags {
		entries = append(entries, pool.Entry[*Entity]{Tag: tag, Prototype: NewPrototype(tag)})
	}
	return pool.New(entries, pool.WithLogger(zap.NewNop()))
}

func TestRunRecyclesOldestFirst(t *testing.T) {
	reg := newRegistry("a")
	plan := Plan{Session: "t", Rounds: 3, SpawnsPerRound: 4, Live: 2, Workers: 1}

	report, err := Run(context.Background(), reg, plan, WithLogger(zap.NewNop()))
	require.NoError(t, err)

	assert.Equal(t, int64(12), report.Spawns)
	assert.Equal(t, int64(12), report.Releases, "held objects are returned at the end")
	assert.Equal(t, int64(3), report.MaxLive)
	assert.Equal(t, 3, report.Created, "live limit plus one in flight")
	assert.Empty(t, report.Failures)

	require.Len(t, report.Pools, 1)
	assert.Equal(t, 3, report.Pools[0].Available)
	assert.Equal(t, 0, report.Pools[0].InUse)
	assert.Equal(t, 3, report.Pools[0].Grown)
}

func TestRunConcurrentWorkers(t *testing.T) {
	reg := newRegistry("a", "b")
	plan := Plan{Session: "t", Rounds: 20, SpawnsPerRound: 5, Live: 2, Workers: 4}

	report, err := Run(context.Background(), reg, plan, WithLogger(zap.NewNop()))
	require.NoError(t, err)

	assert.Equal(t, int64(4*20*5*2), report.Spawns)
	assert.Equal(t, report.Spawns, report.Releases)
	assert.LessOrEqual(t, report.Created, 4*3*2)
	assert.LessOrEqual(t, report.MaxLive, int64(4*3*2))
	for _, s := range report.Pools {
		assert.Equal(t, 0, s.InUse, s.Tag)
		assert.Equal(t, s.Created, s.Available, s.Tag)
	}
}

func TestRunCountsRecoverableFailures(t *testing.T) {
	reg := newRegistry("a")
	plan := Plan{Session: "t", Rounds: 2, SpawnsPerRound: 3, Live: 1, Workers: 1, Tags: []string{"a", "ghost"}}

	report, err := Run(context.Background(), reg, plan, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, int64(6), report.Spawns)
	assert.Equal(t, map[string]int64{string(errors.ErrorTypeUnknownPool): 6}, report.Failures)
}

func TestRunStopsOnCancel(t *testing.T) {
	reg := newRegistry("a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, reg, DefaultPlan(), WithLogger(zap.NewNop()))
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, int64(0), report.Spawns)
}

func TestRunStopsWhenCancelledMidway(t *testing.T) {
	reg := newRegistry("a")
	ctx, cancel := context.WithCancel(testutil.TestContext(t))
	defer cancel()

	plan := Plan{Session: "t", Rounds: 1 << 30, SpawnsPerRound: 2, Live: 1, Workers: 2}
	var (
		done   atomic.Bool
		report *Report
		runErr error
	)
	go func() {
		report, runErr = Run(ctx, reg, plan, WithLogger(zap.NewNop()))
		done.Store(true)
	}()

	testutil.AssertEventually(t, func() bool {
		return pool.Totals(reg.Stats()).Spawned > 0
	}, 5*time.Second, "workers never started spawning")
	cancel()
	testutil.AssertEventually(t, done.Load, 5*time.Second, "Run did not return after cancel")

	require.ErrorIs(t, runErr, context.Canceled)
	assert.Equal(t, report.Spawns, report.Releases, "held objects are returned on exit")
	assert.Equal(t, 0, pool.Totals(reg.Stats()).InUse)
}

func TestRunRejectsInvalidPlan(t *testing.T) {
	reg := newRegistry("a")
	for _, plan := range []Plan{
		{Rounds: 0, SpawnsPerRound: 1, Workers: 1},
		{Rounds: 1, SpawnsPerRound: 0, Workers: 1},
		{Rounds: 1, SpawnsPerRound: 1, Live: -1, Workers: 1},
		{Rounds: 1, SpawnsPerRound: 1, Workers: 0},
	} {
		_, err := Run(context.Background(), reg, plan)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation), "%+v", plan)
	}
}

func TestRunTracesEveryRound(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	p, err := observability.Setup(context.Background(), observability.DefaultConfig(), observability.WithSpanProcessor(sr))
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	reg := newRegistry("a")
	plan := Plan{Session: "traced", Rounds: 3, SpawnsPerRound: 1, Live: 1, Workers: 2}
	rate := metrics.NewRateTracker(nil)

	_, err = Run(context.Background(), reg, plan,
		WithLogger(zap.NewNop()),
		WithTracer(observability.NewPoolTracer(p.TracerProvider(), plan.Session)),
		WithRateTracker(rate))
	require.NoError(t, err)

	spans := sr.Ended()
	assert.Len(t, spans, 6)
	for _, s := range spans {
		assert.Equal(t, "tagpool.round", s.Name())
	}
}

func TestEntityObservers(t *testing.T) {
	reg := newRegistry("bullet")

	e, err := reg.SpawnByTag("bullet", pool.At(pool.Vec3{X: 2}, pool.Identity))
	require.NoError(t, err)
	e.Trail().Add()
	e.Trail().Add()
	assert.Equal(t, "bullet", e.Tag())
	assert.Equal(t, 1, e.Spawns())
	assert.Equal(t, 2.0, e.Pose().Position.X)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "bullet", e.Kind)

	require.NoError(t, reg.Release("bullet", e))
	again, err := reg.SpawnByTag("bullet", pool.Pose{})
	require.NoError(t, err)
	require.Same(t, e, again)
	assert.Equal(t, 2, again.Spawns())
	assert.Equal(t, 0, again.Trail().Points(), "trail cleared on spawn")
	assert.Equal(t, 2, again.Trail().Resets())
}

func TestNewCatalogDeduplicates(t *testing.T) {
	c := NewCatalog("Bullet", "Spark", "Bullet")
	assert.Len(t, c, 2)

	a, err := c["Bullet"].New()
	require.NoError(t, err)
	b, err := c["Bullet"].New()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}
