package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	caphttp "github.com/novaera/caprail/internal/adapter/http"
	"github.com/novaera/caprail/internal/adapter/llm"
	capnats "github.com/novaera/caprail/internal/adapter/nats"
	"github.com/novaera/caprail/internal/adapter/offline"
	capotel "github.com/novaera/caprail/internal/adapter/otel"
	"github.com/novaera/caprail/internal/adapter/postgres"
	"github.com/novaera/caprail/internal/adapter/ristretto"
	"github.com/novaera/caprail/internal/adapter/ws"
	"github.com/novaera/caprail/internal/config"
	"github.com/novaera/caprail/internal/logger"
	"github.com/novaera/caprail/internal/middleware"
	"github.com/novaera/caprail/internal/port/messagequeue"
	"github.com/novaera/caprail/internal/port/notes"
	"github.com/novaera/caprail/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"analyzer", cfg.Analyzer.Backend,
	)

	ctx := context.Background()

	// --- Telemetry ---
	shutdownOtel, err := capotel.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOtel(shutdownCtx); err != nil {
			slog.Warn("otel shutdown failed", "error", err)
		}
	}()

	metrics, err := capotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	var queue messagequeue.Queue = capnats.NoopQueue{}
	if cfg.NATS.URL != "" {
		natsQueue, err := capnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		queue = natsQueue
	}
	defer func() { _ = queue.Close() }()

	dashCache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer dashCache.Close()

	var analyzer notes.Analyzer
	switch cfg.Analyzer.Backend {
	case "llm":
		analyzer = llm.NewClient(cfg.Analyzer)
	default:
		analyzer = offline.New()
	}

	// --- Services ---
	hub := ws.NewHub()
	store := postgres.NewStore(pool)
	authSvc := service.NewAuthService(store, &cfg.Auth)
	accessSvc := service.NewAccessService(store)
	clientSvc := service.NewClientService(store, accessSvc)
	pipelineSvc := service.NewPipelineService(store, queue, hub, metrics)
	leadSvc := service.NewLeadService(store)
	riskSvc := service.NewRiskService(store, accessSvc, queue, hub, metrics)
	analysisSvc := service.NewAnalysisService(store, accessSvc, analyzer, metrics)
	dashboardSvc := service.NewDashboardService(store, accessSvc, dashCache, cfg.Cache.DashboardTTL, metrics)

	if err := pipelineSvc.EnsureOpportunities(ctx); err != nil {
		return fmt.Errorf("ensure opportunities: %w", err)
	}

	// --- HTTP ---
	handlers := caphttp.NewHandlers(authSvc, accessSvc, clientSvc, pipelineSvc, leadSvc, riskSvc, analysisSvc, dashboardSvc)

	r := chi.NewRouter()
	r.Use(caphttp.CORS(cfg.Server.CORSOrigin))
	r.Use(caphttp.Logger)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if cfg.Telemetry.Enabled {
		r.Use(capotel.HTTPMiddleware(cfg.Logging.Service))
	}
	r.Use(middleware.Auth(authSvc))

	r.Get("/health", healthHandler(hub))
	r.Get("/ws", hub.HandleWS)
	caphttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// healthHandler reports service liveness and the websocket fan-out size.
func healthHandler(hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","ws_connections":%d}`, hub.ConnectionCount())
	}
}
