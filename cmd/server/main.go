package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	authhandler "abhaya/internal/auth/handler"
	authmetrics "abhaya/internal/auth/metrics"
	"abhaya/internal/auth/officers"
	authservice "abhaya/internal/auth/service"
	"abhaya/internal/auth/store/session"
	"abhaya/internal/briefing"
	briefinghandler "abhaya/internal/briefing/handler"
	hazardhandler "abhaya/internal/hazard/handler"
	hazardmetrics "abhaya/internal/hazard/metrics"
	hazardservice "abhaya/internal/hazard/service"
	hazardstore "abhaya/internal/hazard/store"
	httpapi "abhaya/internal/http"
	jwttoken "abhaya/internal/jwt_token"
	"abhaya/internal/platform/config"
	"abhaya/internal/platform/httpserver"
	"abhaya/internal/platform/kafka"
	"abhaya/internal/platform/logger"
	"abhaya/internal/platform/metrics"
	"abhaya/internal/platform/postgres"
	platformredis "abhaya/internal/platform/redis"
	"abhaya/internal/platform/telemetry"
	"abhaya/internal/providers"
	providermetrics "abhaya/internal/providers/metrics"
	soshandler "abhaya/internal/sos/handler"
	sosmetrics "abhaya/internal/sos/metrics"
	"abhaya/internal/sos/publisher"
	sosservice "abhaya/internal/sos/service"
	"abhaya/internal/sos/store"
)

const serviceName = "abhaya"

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("abhaya exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	shutdownTracing := telemetry.Setup(ctx, serviceName, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	backend, closeBackend, err := buildSessionBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBackend()

	records, closeRecords, err := buildRecordStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRecords()

	notifier, closeNotifier, err := buildNotifier(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeNotifier()

	sosSvc := sosservice.New(records.alerts,
		sosservice.WithNotifiers(notifier),
		sosservice.WithLogger(log),
		sosservice.WithMetrics(sosmetrics.New(reg)),
	)
	hazardSvc := hazardservice.New(records.hazards,
		hazardservice.WithLogger(log),
		hazardservice.WithMetrics(hazardmetrics.New(reg)),
	)

	authMetrics := authmetrics.New(reg)
	seeded, err := officers.ParseSeed(cfg.PoliceOfficers)
	if err != nil {
		return err
	}
	if len(seeded) == 0 {
		log.Warn("no police officers configured; console login is disabled")
	}
	slots := session.NewSlots(backend, session.WithLogger(log), session.WithMetrics(authMetrics))
	authSvc := authservice.New(
		slots,
		jwttoken.NewJWTService(cfg.SessionSigningKey, serviceName),
		officers.NewDirectory(seeded...),
		authservice.WithLogger(log),
		authservice.WithMetrics(authMetrics),
		authservice.WithSessionEndHook(sosSvc.ForgetSession),
	)
	authH := authhandler.New(authSvc, log)

	briefingSvc := buildBriefing(cfg, log, providermetrics.New(reg))

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:        log,
		Metrics:       metrics.New(reg),
		Gatherer:      reg,
		Authenticator: authSvc,
		Auth:          authH,
		Domains: []httpapi.Routes{
			soshandler.New(sosSvc, log),
			hazardhandler.New(hazardSvc, log),
			briefinghandler.New(briefingSvc, log),
		},
	})
	srv := httpserver.New(cfg.Addr, otelhttp.NewHandler(router, serviceName), log)
	srv.RegisterOnShutdown(authH.CloseStreams)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting abhaya", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	httpCtx, cancelHTTP := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelHTTP()
	if err := srv.Shutdown(httpCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// Countdown runners get a budget of their own, independent of the drain.
	sosCtx, cancelSOS := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelSOS()
	if err := sosSvc.Shutdown(sosCtx); err != nil {
		log.Error("sos shutdown failed", "error", err)
	}

	tracingCtx, cancelTracing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTracing()
	if err := shutdownTracing(tracingCtx); err != nil {
		log.Warn("tracing shutdown failed", "error", err)
	}
	return nil
}

func buildSessionBackend(ctx context.Context, cfg config.Server, log *slog.Logger) (session.Backend, func(), error) {
	if cfg.SessionBackend != config.SessionBackendRedis {
		log.Info("using in-memory session backend")
		return session.NewMemoryBackend(), func() {}, nil
	}
	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	log.Info("using redis session backend")
	return session.NewRedisBackend(client.Client), func() { _ = client.Close() }, nil
}

// recordStores are the durable stores behind the police console.
type recordStores struct {
	alerts  sosservice.RecordStore
	hazards hazardservice.ReportStore
}

func buildRecordStores(ctx context.Context, cfg config.Server, log *slog.Logger) (recordStores, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory console records")
		return recordStores{
			alerts:  store.NewInMemoryStore(),
			hazards: hazardstore.NewInMemoryStore(),
		}, func() {}, nil
	}
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return recordStores{}, nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		_ = db.Close()
		return recordStores{}, nil, err
	}
	log.Info("using postgres console records")
	return recordStores{
		alerts:  store.NewPostgresStore(db),
		hazards: hazardstore.NewPostgresStore(db),
	}, closeDB(db), nil
}

func closeDB(db *sql.DB) func() {
	return func() { _ = db.Close() }
}

func buildNotifier(ctx context.Context, cfg config.Server, log *slog.Logger) (sosservice.Notifier, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("using log notifier for sos dispatches")
		return publisher.NewLogNotifier(log), func() {}, nil
	}
	client, err := kafka.New(cfg.Kafka, kgo.ClientID(serviceName))
	if err != nil {
		return nil, nil, err
	}
	if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.SOSTopic, 1, 1); err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info("using kafka notifier for sos dispatches", "topic", cfg.Kafka.SOSTopic)
	return publisher.NewKafkaNotifier(client, cfg.Kafka.SOSTopic), client.Close, nil
}

func buildBriefing(cfg config.Server, log *slog.Logger, m *providermetrics.Metrics) *briefing.Service {
	opts := []providers.Option{
		providers.WithTimeout(cfg.Providers.Timeout),
		providers.WithLogger(log),
		providers.WithMetrics(m),
	}
	return briefing.New(
		providers.NewHTTPWeather(cfg.Providers.WeatherURL, opts...),
		providers.NewHTTPNews(cfg.Providers.NewsURL, opts...),
		providers.NewHTTPVideos(cfg.Providers.VideoURL, opts...),
		providers.NewHTTPTranslator(cfg.Providers.TranslateURL, providers.NewPhrasebook(), opts...),
		log,
	)
}
