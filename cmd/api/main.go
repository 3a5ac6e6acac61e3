package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/google"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/models"
	"shareit/internal/notify"
	"shareit/internal/repository"
	"shareit/internal/seed"
	"shareit/internal/service"
	"shareit/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.Database.Path, logging.Component(logger, "database"))
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}
	quotaStore := initQuotaStore(ctx, redisClient, logger)

	bus := initEventBus(ctx, cfg, logger)

	var syncWorker domain.SyncWorker
	if w := initSheetsWorker(ctx, cfg, db, redisClient, logger); w != nil {
		go w.Start(ctx)
		syncWorker = w
	}

	svc := buildServices(db, bus, syncWorker, logger)

	if cfg.Seed.File != "" {
		if err := applySeed(ctx, cfg.Seed.File, svc, logger); err != nil {
			return err
		}
	}

	go database.NewBackupService(db, cfg.Backup, logger).Start(ctx)

	startMetrics(ctx, cfg, logger)

	httpServer := api.NewHTTPServer(cfg.API, svc, quotaStore, db.PingContext, logger)

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(cfg.API, svc, logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	return startServers(ctx, grpcServer, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, baseLogger, closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// initQuotaStore prefers redis with an in-memory fallback, memory alone otherwise.
func initQuotaStore(ctx context.Context, client *redis.Client, logger *zerolog.Logger) domain.RateLimitStore {
	memory := repository.NewMemoryRateLimitStore()
	memory.StartSweeper(ctx, time.Minute)
	if client == nil {
		return memory
	}
	return repository.NewFailoverRateLimitStore(
		repository.NewRedisRateLimitStore(client),
		memory,
		logging.Component(logger, "quota"),
	)
}

func initEventBus(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *events.EventBus {
	bus := events.NewEventBus()
	busLogger := logging.Component(logger, "events")
	bus.OnError(func(event *events.Event, err error) {
		busLogger.Warn().Err(err).Str("event_type", event.Type).Msg("event handler failed")
	})
	bus.SubscribeAll(func(event *events.Event) error {
		metrics.IncEvent(event.Type)
		return nil
	})

	if cfg.Telegram.BotToken != "" {
		bot, err := notify.NewTelegramBot(cfg.Telegram.BotToken, cfg.Telegram.Debug)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		} else {
			notifier := notify.NewTelegramNotifier(bot, cfg.Telegram.ChatID, cfg.Telegram.RPS, logging.Component(logger, "telegram"))
			notifier.Subscribe(bus)
			go notifier.Start(ctx)
			logger.Info().Int64("chat_id", cfg.Telegram.ChatID).Msg("telegram notifications enabled")
		}
	}

	if cfg.RabbitMQ.URL != "" {
		forwarder, err := notify.DialForwarder(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logging.Component(logger, "rabbitmq"))
		if err != nil {
			logger.Warn().Err(err).Msg("rabbitmq init failed, continuing without event forwarding")
		} else {
			forwarder.Subscribe(bus)
			go func() {
				<-ctx.Done()
				_ = forwarder.Close()
			}()
			logger.Info().Str("queue", cfg.RabbitMQ.Queue).Msg("rabbitmq forwarding enabled")
		}
	}
	return bus
}

func initSheetsWorker(
	ctx context.Context,
	cfg *config.Config,
	db *database.DB,
	redisClient *redis.Client,
	logger *zerolog.Logger,
) *worker.SheetsWorker {
	if !cfg.Sync.Enabled {
		return nil
	}

	sheetsLogger := logging.Component(logger, "sheets")
	sheets, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.BookingsSpreadsheetID, cfg.Google.SheetName, sheetsLogger)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sync")
		return nil
	}
	if err := sheets.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets unreachable, continuing without sync")
		return nil
	}
	if err := sheets.WriteHeader(ctx); err != nil {
		logger.Warn().Err(err).Msg("write sheet header")
	}
	sheets.StartCacheRefresh(ctx, models.SheetsCacheTTL*time.Second)

	logger.Info().Str("sheet", cfg.Google.SheetName).Msg("google sheets sync enabled")
	return worker.NewSheetsWorker(db, sheets, redisClient, worker.RetryPolicyFromConfig(cfg.Sync), logging.Component(logger, "sync"))
}

func buildServices(db *database.DB, bus *events.EventBus, syncWorker domain.SyncWorker, logger *zerolog.Logger) api.Services {
	bookings := service.NewBookingService(db, db, db, db, bus, syncWorker, service.SystemClock, logging.Component(logger, "bookings"))
	comments := service.NewCommentService(db, db, db, db, db, bus, service.SystemClock, logging.Component(logger, "comments"))
	return api.Services{
		Users:    service.NewUserService(db, db, logging.Component(logger, "users")),
		Items:    service.NewItemService(db, db, db, bookings, comments, db, logging.Component(logger, "items")),
		Requests: service.NewRequestService(db, db, db, db, service.SystemClock, logging.Component(logger, "requests")),
		Bookings: bookings,
		Comments: comments,
	}
}

func applySeed(ctx context.Context, path string, svc api.Services, logger *zerolog.Logger) error {
	file, err := seed.Load(path)
	if err != nil {
		logger.Error().Err(err).Str("seed_file", path).Msg("load seed")
		return err
	}
	loader := seed.NewLoader(svc.Users, svc.Requests, svc.Items, logging.Component(logger, "seed"))
	if _, err := loader.Apply(ctx, file); err != nil {
		logger.Error().Err(err).Str("seed_file", path).Msg("apply seed")
		return err
	}
	return nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	errCh := make(chan error, 2)

	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	logger.Info().Bool("grpc", grpcServer != nil).Int("http_port", cfg.API.HTTP.Port).Msg("ShareIt server started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("ShareIt server stopped")
	return runErr
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
