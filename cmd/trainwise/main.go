package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/go-redis/redis/v8"
	"github.com/meltforce/trainwise/internal/aicore"
	"github.com/meltforce/trainwise/internal/config"
	"github.com/meltforce/trainwise/internal/fixtures"
	"github.com/meltforce/trainwise/internal/logging"
	trainmcp "github.com/meltforce/trainwise/internal/mcp"
	"github.com/meltforce/trainwise/internal/metrics"
	"github.com/meltforce/trainwise/internal/periodization"
	"github.com/meltforce/trainwise/internal/realtime"
	"github.com/meltforce/trainwise/internal/recommend"
	"github.com/meltforce/trainwise/internal/server"
	"github.com/meltforce/trainwise/internal/storage"
	"github.com/meltforce/trainwise/internal/storage/memory"
	"github.com/meltforce/trainwise/internal/training"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// backend is satisfied by both storage.DB and memory.Store.
type backend interface {
	server.Store
	training.SessionStore
	training.SessionReader
	recommend.HistorySource
	recommend.RecommendationStore
	periodization.CycleStore
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(logging.Params{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		ToStdout:   cfg.Logging.ToStdout,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	log.Info("TrainWise starting", "version", Version, "demo", cfg.Demo)

	ctx := context.Background()
	var collectors []prometheus.Collector

	var store backend
	if cfg.Demo {
		if *migrateOnly {
			log.Info("demo mode has no database to migrate: exiting")
			return
		}
		store = memory.New()
		log.Warn("demo mode: using in-memory store, data is lost on restart")
	} else {
		// Run migrations
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		// Connect database
		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("database connected")

		if missing, err := db.ProbeSchema(ctx); err != nil {
			log.Warn("schema probe failed", "error", err)
		} else if len(missing) > 0 {
			log.Warn("schema is missing tables, affected reads will use defaults", "tables", missing)
		}

		collectors = append(collectors, pgxpoolprometheus.NewCollector(db.Pool, map[string]string{"db_name": cfg.Database.Name}))
		store = db
	}

	// Metrics
	var mm *metrics.Manager
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		reg := metrics.SetupPrometheus(collectors...)
		mm = metrics.NewManager(cfg.Metrics.Namespace, "server", reg)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	// Session progress events
	var publisher realtime.Publisher = realtime.Noop{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis ping failed, progress events will be dropped until it recovers", "addr", cfg.Redis.Addr, "error", err)
		}
		var failures prometheus.Counter
		if mm != nil {
			failures = mm.CounterBroadcastFailures
		}
		publisher = realtime.NewRedisPublisher(rdb, cfg.Redis.Channel, failures, log)
		log.Info("publishing session progress", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	}

	var rules recommend.RuleSource
	if cfg.AICore.BaseURL != "" {
		rules = aicore.NewClient(cfg.AICore.BaseURL, cfg.AICore.APIKey, cfg.AICore.Timeout())
		log.Info("AI core recommendations enabled", "url", cfg.AICore.BaseURL)
	}

	// Services
	tracker := training.NewTracker(store, publisher, log)
	analyzer := training.NewAnalyzer(store, log)
	recs := recommend.NewGenerator(store, store, analyzer, rules, mm, log)
	planner := periodization.NewGenerator(store, log)

	mcpSrv := trainmcp.New(trainmcp.Deps{
		Analyzer:        analyzer,
		Recommendations: recs,
		Periodization:   planner,
		Sessions:        store,
	}, Version, log)

	srv := server.New(server.Deps{
		Store:           store,
		Tracker:         tracker,
		Analyzer:        analyzer,
		Recommendations: recs,
		Periodization:   planner,
		Fixtures:        fixtures.New(cfg.Fixtures.Enabled, cfg.Fixtures.Seed),
		MCP:             mcpSrv,
		Metrics:         mm,
		MetricsHandler:  metricsHandler,
	}, cfg.Auth.APIKey, log)

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "plain http (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

