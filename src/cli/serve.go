// src/cli/serve.go
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/username/pypdash/src/config"
	"github.com/username/pypdash/src/handlers"
	"github.com/username/pypdash/src/logger"
	"github.com/username/pypdash/src/parsers/pyp"
	"github.com/username/pypdash/src/processors"
	"github.com/username/pypdash/src/scheduler"
	"github.com/username/pypdash/src/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and its JSON API",
	Long: `Serve the dashboard page and the chart/summary API.

Configuration is read from the environment (and a .env file): PORT, LOG_LEVEL,
PAYLOAD_DIR, PAYLOAD_RELOAD_SCHEDULE, RENDER_CACHE_EXPIRATION,
RENDER_CACHE_CLEANUP_INTERVAL, ALLOWED_ORIGINS, RATE_LIMIT_RPS, RATE_LIMIT_BURST.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel, os.Stdout)

	logger.L.Info("pypdash server starting...")

	renderCache := cache.New(config.Cfg.RenderCacheExpiration, config.Cfg.RenderCacheCleanupInterval)
	dashboardService := services.NewDashboardService(
		pyp.NewParser(),
		config.Cfg.PayloadDir,
		processors.NewBreakdownProcessor(),
		processors.NewGrowthProcessor(),
		processors.NewSummaryRenderer(),
		renderCache,
	)

	sched, err := newReloadScheduler(dashboardService, config.Cfg.PayloadReloadSchedule)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	limiter := rate.NewLimiter(rate.Limit(config.Cfg.RateLimitRPS), config.Cfg.RateLimitBurst)
	router := newRouter(dashboardService, config.Cfg.AllowedOrigins, limiter)

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("Server starting", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.L.Error("Failed to start server", "error", err)
			return err
		}
	case <-ctx.Done():
		logger.L.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L.Error("Server shutdown failed", "error", err)
		return err
	}
	logger.L.Info("Server stopped")
	return nil
}

func newRouter(dashboardService services.DashboardService, allowedOrigins []string, limiter *rate.Limiter) http.Handler {
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(handlers.RequestLoggingMiddleware)
	r.Use(handlers.ProxyHeadersMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "If-None-Match"},
		ExposedHeaders:   []string{handlers.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(handlers.RateLimitMiddleware(limiter))
	r.Use(middleware.Compress(5))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "pypdash is running"})
	})

	r.Get("/dashboard", dashboardHandler.HandleDashboardPage)
	r.Route("/api", func(r chi.Router) {
		r.Route("/dashboard", dashboardHandler.Routes)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
			return
		}
		http.NotFound(w, r)
	})

	return r
}

// newReloadScheduler loads the payload once and registers the periodic reload
// when a schedule is set. A failed first load is only logged: the server still
// starts and the API answers 503 until a reload succeeds.
func newReloadScheduler(reloader scheduler.Reloader, schedule string) (*scheduler.Scheduler, error) {
	sched := scheduler.New(logger.L)
	reloadJob := scheduler.NewPayloadReloadJob(reloader)

	if err := sched.RunNow(reloadJob); err != nil {
		logger.L.Warn("Initial payload load failed", "dataDir", config.Cfg.PayloadDir, "error", err)
	}

	if schedule != "" {
		if err := sched.AddJob(schedule, reloadJob); err != nil {
			logger.L.Error("Invalid payload reload schedule", "schedule", schedule, "error", err)
			return nil, err
		}
	}
	return sched, nil
}
