package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/gymplan/internal/config"
	"github.com/2beens/gymplan/internal/gymstats/bodymetrics"
	"github.com/2beens/gymplan/internal/gymstats/workouts"
	"github.com/2beens/gymplan/internal/middleware"
	"github.com/2beens/gymplan/internal/sheets"
	"github.com/2beens/gymplan/internal/sheets/gsheets"
	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/internal/web"
)

const (
	serviceName       = "gymplan"
	rateLimiterKey    = "gymplan-saves"
	homeRedirectRoute = "/treino"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config       *config.Config
	sheetsClient sheets.Client
	renderer     *web.Renderer

	// nil unless a redis host is configured
	redisClient *redis.Client
	rateLimiter middleware.RequestRateLimiter

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager(serviceName, "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(cfg.HoneycombEnabled, serviceName)
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   time.Duration(cfg.StoreTimeoutSeconds) * time.Second,
	}

	sheetsClient, err := newSheetsClient(ctx, cfg, tracedHttpClient, metricsManager)
	if err != nil {
		otelShutdown()
		return nil, err
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		otelShutdown()
		return nil, fmt.Errorf("new renderer: %w", err)
	}

	s := &Server{
		config:       cfg,
		sheetsClient: sheetsClient,
		renderer:     renderer,

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	if cfg.RateLimitEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       0, // use default DB
		})

		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}

		s.redisClient = rdb
		s.rateLimiter = redis_rate.NewLimiter(rdb)
	} else {
		log.Debugln("redis host not set, save rate limiting disabled")
	}

	return s, nil
}

// newSheetsClient picks the store backend from the config and puts the
// catalog cache in front of it when a TTL is set.
func newSheetsClient(
	ctx context.Context,
	cfg *config.Config,
	httpClient *http.Client,
	metricsManager *metrics.Manager,
) (sheets.Client, error) {
	var client sheets.Client
	switch cfg.StoreBackend {
	case config.StoreBackendGSheets:
		gsClient, err := gsheets.NewClient(
			ctx,
			cfg.GSheetsSpreadsheetID,
			cfg.GSheetsCredentialsFile,
			metricsManager,
		)
		if err != nil {
			return nil, fmt.Errorf("new google sheets client: %w", err)
		}
		client = gsClient
	case config.StoreBackendSheetDB:
		client = sheets.NewSheetDB(cfg.StoreBaseURL, cfg.StoreToken, httpClient, metricsManager)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
	log.Debugf("using store backend: %s", cfg.StoreBackend)

	if cfg.CatalogCacheTTLSeconds > 0 {
		log.Debugf("catalog cache enabled, ttl %ds", cfg.CatalogCacheTTLSeconds)
		client = sheets.NewCachedClient(client, cfg.CatalogCacheTTLSeconds, metricsManager, sheets.SheetWorkouts)
	}

	return client, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	workoutsHandler := workouts.NewHandler(
		workouts.NewService(s.sheetsClient, s.metricsManager),
		s.renderer,
	)
	workoutsHandler.SetupRoutes(r)

	bodyMetricsHandler := bodymetrics.NewHandler(
		bodymetrics.NewService(s.sheetsClient, s.metricsManager),
		s.renderer,
	)
	bodyMetricsHandler.SetupRoutes(r)

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, homeRedirectRoute, http.StatusSeeOther)
	}).Methods("GET").Name("home")

	// all the rest - unhandled paths
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	if s.rateLimiter != nil {
		r.Use(middleware.RateLimit(s.rateLimiter, s.metricsManager, rateLimiterKey, s.config.SaveRateLimitPerMin))
	}
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
