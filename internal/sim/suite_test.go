package sim

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tagpool/pkg/config"
	"github.com/ajitpratap0/tagpool/pkg/pool"
	"github.com/ajitpratap0/tagpool/pkg/testutil"
)

type ConfigRunSuite struct {
	testutil.SessionSuite
}

func TestConfigRunSuite(t *testing.T) {
	suite.Run(t, new(ConfigRunSuite))
}

const arenaYAML = `
name: arena
queue_capacity: 4
pools:
  - tag: bullet
    prototype: Bullet
    prewarm: 4
  - tag: spark
`

func (s *ConfigRunSuite) TestRunFromConfigFile() {
	path := s.CreateTempFile("arena.yaml", []byte(arenaYAML))

	cfg, err := config.LoadRegistryConfig(path)
	s.Require().NoError(err)

	catalog := CatalogFor(cfg)
	s.Len(catalog, 2)
	s.Contains(catalog, "Bullet")
	s.Contains(catalog, "spark")

	reg, err := pool.FromConfig(cfg, catalog, pool.WithLogger(zap.NewNop()))
	s.Require().NoError(err)

	plan := Plan{Session: cfg.Name, Rounds: 5, SpawnsPerRound: 2, Live: 3, Workers: 1}
	report, err := Run(s.Context(), reg, plan, WithLogger(zap.NewNop()))
	s.Require().NoError(err)

	s.Equal("arena", report.Session)
	s.Equal(int64(20), report.Spawns)

	bullet := report.Pools[0]
	s.Equal("bullet", bullet.Tag)
	s.Equal(4, bullet.Created, "prewarmed instances cover the live limit")
	s.Equal(0, bullet.Grown)
}

func (s *ConfigRunSuite) TestObservedLogsReportRun() {
	log, logs := testutil.ObservedLogger(zap.InfoLevel)
	reg := newRegistry("a")

	_, err := Run(s.Context(), reg, DefaultPlan(), WithLogger(log))
	s.Require().NoError(err)
	s.Equal(1, logs.FilterMessage("simulation started").Len())
	s.Equal(1, logs.FilterMessage("simulation finished").Len())
}
