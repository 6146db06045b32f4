// Command trafficsim wires a Network, an initial Plan set, an expected
// duration Table, a Router, a Planner and an Optimizer together and runs the
// iterative day-to-day replanning loop end to end: load or synthesize a
// network and plans, plan once, then simulate/update/replan up to
// optimizer.max_runs times, persisting every iteration's report and the
// final event log.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trafficsim/internal/audit"
	"trafficsim/internal/cache"
	"trafficsim/internal/events"
	"trafficsim/internal/expected"
	"trafficsim/internal/history"
	"trafficsim/internal/metrics"
	"trafficsim/internal/network"
	"trafficsim/internal/optimizer"
	"trafficsim/internal/plan"
	"trafficsim/internal/planner"
	"trafficsim/internal/report"
	"trafficsim/internal/router"
	"trafficsim/internal/simulator"
	"trafficsim/internal/xmlio"
	"trafficsim/pkg/config"
	"trafficsim/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx := context.Background()
	runID := uuid.NewString()

	var simCollector *metrics.SimulationCollector
	if cfg.Metrics.Enabled {
		runtimeCollector := metrics.NewRuntimeCollector(cfg.Metrics.Namespace, cfg.App.Name)
		simCollector = metrics.NewSimulationCollector(cfg.Metrics.Namespace, cfg.App.Name)

		registry := prometheus.NewRegistry()
		registry.MustRegister(runtimeCollector, simCollector)

		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			addr := ":" + strconv.Itoa(cfg.Metrics.Port)
			logger.Info("metrics server listening", "addr", addr, "path", cfg.Metrics.Path)
			if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	run(ctx, cfg, runID, simCollector)
}

func run(ctx context.Context, cfg *config.Config, runID string, simCollector *metrics.SimulationCollector) {
	net, plans, err := buildNetworkAndPlans(cfg)
	if err != nil {
		logger.Fatal("failed to build network and plans", "error", err)
	}

	table, err := expected.New(net, cfg.Sim.Alpha)
	if err != nil {
		logger.Fatal("failed to build expected duration table", "error", err)
	}

	var c cache.Cache
	if cfg.Cache.Backend != "" {
		c, err = cache.New(&cache.Options{
			Backend:       cfg.Cache.Backend,
			DefaultTTL:    cfg.Cache.DefaultTTL,
			MaxEntries:    cfg.Cache.MaxEntries,
			RedisAddr:     cfg.Cache.RedisAddr,
			RedisPassword: cfg.Cache.RedisPassword,
			RedisDB:       cfg.Cache.RedisDB,
			RedisPoolSize: cfg.Cache.RedisPoolSize,
		})
		if err != nil {
			logger.Fatal("failed to build router cache", "error", err)
		}
		defer c.Close()
	}

	r := router.New(net, table)
	if c != nil {
		r = r.WithCache(c)
	}

	var auditLog *audit.Logger
	if cfg.Audit.Enabled {
		sink, closeSink, err := buildAuditSink(cfg)
		if err != nil {
			logger.Fatal("failed to build audit sink", "error", err)
		}
		if closeSink != nil {
			defer closeSink()
		}
		auditLog = audit.NewLogger(sink)
	}

	pl := planner.New(net, r, plans, rand.New(rand.NewSource(cfg.Planner.Seed)))
	if auditLog != nil {
		pl = pl.WithAudit(auditLog)
	}
	if err := pl.Plan(ctx); err != nil {
		logger.Fatal("initial planning pass failed", "error", err)
	}

	log := events.NewLog()
	sim := simulator.New(net, log)

	opt := optimizer.New(net, sim, pl, cfg.Sim.Horizon)
	if auditLog != nil {
		opt = opt.WithAudit(auditLog)
	}

	store, err := buildHistoryStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to build history store", "error", err)
	}
	defer store.Close()

	finalLog, reports, err := opt.Run(ctx, cfg.Optimizer.MaxRuns, cfg.Planner.ReplanProbability, table)
	if err != nil {
		logger.Error("optimizer run ended with an error", "error", err)
	}

	for _, rep := range reports {
		if err := store.RecordIteration(ctx, runID, rep); err != nil {
			logger.Warn("failed to persist iteration report", "iteration", rep.Iteration, "error", err)
		}
		if simCollector != nil {
			simCollector.Set(rep.Iteration, rep.MeanTripDuration, rep.MeanTripLength, rep.MeanLinkDuration, rep.DroppedAgentCount)
		}
	}

	if err := writeReport(cfg, runID, reports); err != nil {
		logger.Error("failed to write final report", "error", err)
	}

	if finalLog != nil {
		if err := writeEventDump(cfg, finalLog.Records()); err != nil {
			logger.Error("failed to write event dump", "error", err)
		}
	}

	logger.Info("run complete", "run_id", runID, "iterations", len(reports))
}

// buildNetworkAndPlans loads a network and plan set from MATSim-style XML
// files when sim.network_path is set, otherwise synthesizes a grid or
// linear topology per sim.synthetic_kind. Synthetic topologies start with
// no agents; callers wanting a populated run should point at real files.
func buildNetworkAndPlans(cfg *config.Config) (*network.Network, map[string]*plan.Plan, error) {
	if cfg.Sim.NetworkPath != "" {
		net, linkIndex, err := xmlio.LoadNetwork(cfg.Sim.NetworkPath)
		if err != nil {
			return nil, nil, err
		}
		plans, err := xmlio.LoadPlans(cfg.Sim.PlansPath, linkIndex, net)
		if err != nil {
			return nil, nil, err
		}
		return net, plans, nil
	}

	switch cfg.Sim.SyntheticKind {
	case "grid":
		net, err := network.Grid(network.GridOptions{
			Rows:       cfg.Sim.GridRows,
			Cols:       cfg.Sim.GridCols,
			EdgeLength: cfg.Sim.EdgeLength,
			FreeSpeed:  cfg.Sim.FreeSpeed,
			FlowCap:    cfg.Sim.FlowCap,
			Lanes:      cfg.Sim.Lanes,
		})
		if err != nil {
			return nil, nil, err
		}
		return net, map[string]*plan.Plan{}, nil
	case "linear":
		net, err := network.Linear(network.LinearOptions{
			NumNodes:   cfg.Sim.LinearNodes,
			EdgeLength: cfg.Sim.EdgeLength,
			FreeSpeed:  cfg.Sim.FreeSpeed,
			FlowCap:    cfg.Sim.FlowCap,
			Lanes:      cfg.Sim.Lanes,
		})
		if err != nil {
			return nil, nil, err
		}
		return net, map[string]*plan.Plan{}, nil
	default:
		return nil, nil, fmt.Errorf("config: sim.synthetic_kind must be \"grid\" or \"linear\" when sim.network_path is empty, got %q", cfg.Sim.SyntheticKind)
	}
}

func buildAuditSink(cfg *config.Config) (audit.Sink, func(), error) {
	switch cfg.Audit.Backend {
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.Audit.FilePath), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.Audit.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		return audit.NewWriterSink(f), func() { f.Close() }, nil
	default:
		return audit.NewWriterSink(os.Stdout), nil, nil
	}
}

func buildHistoryStore(ctx context.Context, cfg *config.Config) (history.Store, error) {
	if !cfg.Database.Enabled {
		return history.NewMemoryStore(), nil
	}

	pool, err := history.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := history.RunMigrations(ctx, pool, cfg.Database.AutoMigrate); err != nil {
		return nil, err
	}
	return history.NewPostgresStore(pool), nil
}

func writeReport(cfg *config.Config, runID string, reports []optimizer.Report) error {
	gen, err := report.New(report.Format(cfg.Report.Format))
	if err != nil {
		return err
	}
	data := &report.Data{
		RunID:      runID,
		Options:    &report.Options{Title: "Replanning Iteration Report", Author: cfg.App.Name, IncludeDropped: true},
		Iterations: reports,
	}
	out, err := gen.Generate(context.Background(), data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Report.OutputDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(cfg.Report.OutputDir, runID+"."+string(gen.Format()))
	return os.WriteFile(path, out, 0o644)
}

func writeEventDump(cfg *config.Config, records []events.Record) error {
	path := filepath.Join(cfg.Report.OutputDir, "events.csv")
	w := report.NewCSVChunkWriter(path, cfg.Report.ChunkSize)
	if err := w.Add(records); err != nil {
		return err
	}
	return w.Flush()
}
