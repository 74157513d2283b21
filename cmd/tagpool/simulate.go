package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tagpool/internal/sim"
	"github.com/ajitpratap0/tagpool/pkg/config"
	"github.com/ajitpratap0/tagpool/pkg/logger"
	"github.com/ajitpratap0/tagpool/pkg/metrics"
	"github.com/ajitpratap0/tagpool/pkg/observability"
	"github.com/ajitpratap0/tagpool/pkg/pool"
)

type simulateFlags struct {
	configFile string
	plan       sim.Plan
	timeout    time.Duration
	linger     time.Duration
	output     string
}

func newSimulateCmd(v *viper.Viper) *cobra.Command {
	f := simulateFlags{plan: sim.DefaultPlan()}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run spawn/release churn against a configured registry",
		Long: `Simulate builds a registry from a configuration file and runs rounds of
spawn/release churn against it, then prints a report of how the pools
behaved.

Example:
  tagpool simulate --config arena.yaml --rounds 100 --workers 4 --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, f.configFile)
			if err != nil {
				return err
			}
			return runSimulation(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configFile, "config", "c", "", "Path to registry configuration YAML file (required)")
	_ = cmd.MarkFlagRequired("config")
	flags.IntVar(&f.plan.Rounds, "rounds", f.plan.Rounds, "Number of churn rounds per worker")
	flags.IntVar(&f.plan.SpawnsPerRound, "spawns", f.plan.SpawnsPerRound, "Spawns per tag, per worker, per round")
	flags.IntVar(&f.plan.Live, "live", f.plan.Live, "Objects per tag a worker holds before releasing the oldest")
	flags.IntVar(&f.plan.Workers, "workers", f.plan.Workers, "Concurrent workers sharing the registry")
	flags.StringSliceVar(&f.plan.Tags, "tags", nil, "Restrict the run to these tags (default: every pool)")
	flags.DurationVar(&f.timeout, "timeout", 5*time.Minute, "Simulation timeout")
	flags.DurationVar(&f.linger, "linger", 0, "Keep serving metrics for this long after the run")
	flags.StringVarP(&f.output, "output", "o", "json", "Report format (json, text)")

	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	flags.Bool("trace", false, "Export round spans to stderr")
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("metrics.addr", flags.Lookup("metrics-addr"))
	_ = v.BindPFlag("tracing.enabled", flags.Lookup("trace"))

	return cmd
}

func runSimulation(ctx context.Context, out, errOut io.Writer, cfg *config.RegistryConfig, f simulateFlags) error {
	if f.output != "json" && f.output != "text" {
		return fmt.Errorf("unknown output format %q", f.output)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if len(cfg.Logging.OutputPaths) == 0 {
		cfg.Logging.OutputPaths = []string{"stderr"}
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	f.plan.Session = cfg.Name
	ctx = context.WithValue(ctx, logger.SessionIDKey, cfg.Name)
	log := logger.WithContext(ctx).With(zap.String("component", "tagpool-cli"))

	var (
		hooks   []pool.Hooks
		simOpts = []sim.Option{sim.WithLogger(log.Named("sim"))}
	)

	if cfg.Metrics.Enabled {
		promReg := prometheus.NewRegistry()
		promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		pm := metrics.NewPoolMetrics(promReg, cfg.Metrics.Namespace)
		hooks = append(hooks, pm)
		simOpts = append(simOpts, sim.WithRateTracker(metrics.NewRateTracker(pm.Throughput)))

		if cfg.Metrics.Addr != "" {
			srv := serveMetrics(cfg.Metrics.Addr, promReg, log)
			defer func() {
				if f.linger > 0 {
					log.Info("serving metrics after run", zap.Duration("linger", f.linger))
					select {
					case <-time.After(f.linger):
					case <-ctx.Done():
					}
				}
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
		}
	}

	if cfg.Tracing.Enabled {
		otelCfg := observability.DefaultConfig()
		otelCfg.ServiceName = cfg.Tracing.ServiceName
		otelCfg.ServiceVersion = version
		otelCfg.SampleRate = cfg.Tracing.SampleRate
		otelCfg.TraceExporter = observability.ExporterStdout
		otelCfg.Writer = errOut

		provider, err := observability.Setup(ctx, otelCfg)
		if err != nil {
			return err
		}
		provider.Install()
		defer func() {
			if err := provider.Shutdown(context.Background()); err != nil {
				log.Warn("failed to shut down tracing", zap.Error(err))
			}
		}()

		meterHooks, err := observability.NewMeterHooks(provider.Meter("tagpool"))
		if err != nil {
			return err
		}
		hooks = append(hooks, meterHooks)
		simOpts = append(simOpts, sim.WithTracer(observability.NewPoolTracer(provider.TracerProvider(), cfg.Name)))
	}

	reg, err := pool.FromConfig(cfg, sim.CatalogFor(cfg),
		pool.WithLogger(log.Named("pool")),
		pool.WithHooks(hooks...),
		pool.WithOrganizer(pool.NewHolders(log.Named("holders"))))
	if err != nil {
		return err
	}

	report, err := sim.Run(ctx, reg, f.plan, simOpts...)
	if report != nil {
		if werr := writeReport(out, f.output, report); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

func writeReport(w io.Writer, format string, r *sim.Report) error {
	if format == "json" {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	fmt.Fprintf(w, "session %s: %d rounds x %d workers in %v\n", r.Session, r.Rounds, r.Workers, r.Duration)
	fmt.Fprintf(w, "spawns %d, releases %d, max live %d, created %d\n", r.Spawns, r.Releases, r.MaxLive, r.Created)
	for _, kind := range slices.Sorted(maps.Keys(r.Failures)) {
		fmt.Fprintf(w, "failures %s: %d\n", kind, r.Failures[kind])
	}
	for _, p := range r.Pools {
		fmt.Fprintf(w, "  %-16s available=%d in_use=%d created=%d grown=%d spawned=%d released=%d\n",
			p.Tag, p.Available, p.InUse, p.Created, p.Grown, p.Spawned, p.Released)
	}
	fmt.Fprintf(w, "rss delta %d bytes\n", r.Memory.Delta)
	return nil
}
