package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/ScenarioForge/internal/api/http"
	"github.com/GriffinCanCode/ScenarioForge/internal/api/middleware"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/compiler"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/knowledge"
	"github.com/GriffinCanCode/ScenarioForge/internal/infrastructure/config"
	"github.com/GriffinCanCode/ScenarioForge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ScenarioForge/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/ScenarioForge/internal/logging"
	"github.com/GriffinCanCode/ScenarioForge/internal/providers/placement"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	compiler *compiler.Compiler
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// Options override process-wide defaults, mainly for tests.
type Options struct {
	Logger *logging.Logger
	// Registerer receives the Prometheus collectors; nil means
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Gatherer backs GET /metrics; nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)
	}

	logger.Info("Initializing ScenarioForge server",
		zap.String("port", cfg.Server.Port),
		zap.String("resources", cfg.Compiler.ResourcesDir),
		zap.String("output", cfg.Compiler.OutputDir),
	)

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	metrics := monitoring.NewMetrics(reg)

	comp, err := NewCompiler(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(logger.Named("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := api.NewHandlers(comp, cfg.Compiler.OutputDir, logger, metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	router.POST("/compile", handlers.Compile)
	router.GET("/scenarios/:id", handlers.GetScenario)
	router.POST("/context", handlers.Context)

	router.GET("/maps", handlers.ListMaps)
	router.GET("/maps/:key", handlers.GetMap)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	logger.Info("Server initialized successfully")

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		router:   router,
		http:     httpServer,
		compiler: comp,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// NewCompiler builds the compiler described by cfg: the knowledge registry
// (with the optional overlay file) and the background traffic source.
func NewCompiler(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) (*compiler.Compiler, error) {
	reg := knowledge.Default()
	if cfg.Compiler.KnowledgeFile != "" {
		loaded, err := knowledge.Load(cfg.Compiler.KnowledgeFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load knowledge file: %w", err)
		}
		reg = loaded
		logger.Info("Loaded knowledge overlay",
			zap.String("path", cfg.Compiler.KnowledgeFile),
			zap.Strings("maps", reg.Keys()),
		)
	}

	source, err := newSource(cfg.Placement, logger)
	if err != nil {
		return nil, err
	}

	breakerLog := logger.Named("placement")
	breaker := resilience.New("placement", resilience.Settings{
		Threshold: 3,
		Timeout:   30 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			breakerLog.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetBreakerOpen(to == resilience.StateOpen)
		},
	})

	ccfg := compiler.Config{
		ResourcesDir:  cfg.Compiler.ResourcesDir,
		StopTime:      cfg.Compiler.StopTime,
		DensityFactor: cfg.Compiler.DensityFactor,
	}
	return compiler.New(reg, ccfg,
		compiler.WithLogger(logger.Named("compiler")),
		compiler.WithSource(source),
		compiler.WithBreaker(breaker),
		compiler.WithMetrics(metrics),
	), nil
}

// newSource returns the placement service client when a URL is configured,
// else the candidate catalog, else nil.
func newSource(cfg config.PlacementConfig, logger *logging.Logger) (placement.Source, error) {
	switch {
	case cfg.URL != "":
		cc := placement.DefaultClientConfig(cfg.URL)
		cc.Timeout = cfg.Timeout
		cc.MaxRetries = cfg.Retries
		client, err := placement.NewClient(cc)
		if err != nil {
			return nil, fmt.Errorf("failed to create placement client: %w", err)
		}
		logger.Info("Using placement service", zap.String("url", cfg.URL))
		return client, nil
	case cfg.Catalog != "":
		catalog, err := placement.LoadCatalog(cfg.Catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to load placement catalog: %w", err)
		}
		logger.Info("Using placement catalog",
			zap.String("path", cfg.Catalog),
			zap.Int("roads", catalog.Roads()),
		)
		return catalog, nil
	default:
		logger.Warn("No placement source configured, high density scenarios get no background traffic")
		return nil, nil
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it stops. A clean Close
// returns nil.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}

	// Sync logger before exit
	_ = s.logger.Sync()

	return nil
}
