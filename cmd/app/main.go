package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chatterbox/internal/config"
	psql "chatterbox/internal/database/postgres"
	msgRepo "chatterbox/internal/database/postgres/message_repo"
	"chatterbox/internal/database/postgres/migrations"
	rdb "chatterbox/internal/database/redis"
	httpHandler "chatterbox/internal/delivery/http"
	MessageHandler "chatterbox/internal/delivery/http/message"
	kafka "chatterbox/internal/infrastructure/kafka"
	srvMessage "chatterbox/internal/usecase/message"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const (
	envLocal = "local"
	envProd  = "prod"
	envDev   = "dev"
)

type publisher interface {
	srvMessage.EventPublisher
	io.Closer
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found")
	}
	cfg := config.MustLoadConfig()

	logger := setupLogger(cfg.Env)
	logger.Info("Starting application", slog.String("env", cfg.Env))

	if err := run(cfg, logger); err != nil {
		logger.Error("Application stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Application stopped gracefully")
}

func run(cfg *config.Config, logger *slog.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//--------------Database-----------------
	if !cfg.Postgres.SkipMigrations {
		if err := migrations.Up(ctx, cfg.DatabaseDSN()); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("Database migrations applied")
	}

	postgres, err := psql.NewDBPool(ctx, cfg.DatabaseDSN(), cfg.Postgres.MaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer postgres.Close()
	if err := postgres.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Connected to database successfully")

	//--------------Events-----------------
	events, err := newPublisher(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up %s events: %w", cfg.Events.Driver, err)
	}
	var eventPublisher srvMessage.EventPublisher
	if events != nil {
		eventPublisher = events
		defer func() {
			err = multierr.Append(err, events.Close())
		}()
	}
	logger.Info("Events publisher ready", slog.String("driver", cfg.Events.Driver))

	//--------------Services and handlers-----------------
	messageService := srvMessage.NewMessageService(msgRepo.NewMessageRepository(postgres), eventPublisher, logger)
	messageHandler := MessageHandler.NewMessageHandler(messageService, logger)
	HTTP := httpHandler.NewHTTPHandler(messageHandler, logger, cfg.CORS.AllowedOrigins)

	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	serverParams := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      HTTP.Router(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	metricsParams := &http.Server{
		Addr:    cfg.MetricsAddr(),
		Handler: metricsRouter,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Metrics server is starting", slog.String("addr", metricsParams.Addr))
		if err := metricsParams.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("HTTP server is starting", slog.String("addr", serverParams.Addr))
		if err := serverParams.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down servers")

		shutDownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		var errs error
		if err := serverParams.Shutdown(shutDownCtx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("HTTP server shutdown failed: %w", err))
		}
		if err := metricsParams.Shutdown(shutDownCtx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("metrics server shutdown failed: %w", err))
		}
		return errs
	})

	return g.Wait()
}

// newPublisher returns nil when events are disabled.
func newPublisher(ctx context.Context, cfg *config.Config) (publisher, error) {
	switch cfg.Events.Driver {
	case config.EventsDriverKafka:
		return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic), nil
	case config.EventsDriverRedis:
		client, err := rdb.NewRedisClient(ctx, rdb.Options{
			Addr:         cfg.RedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, err
		}
		return rdb.NewPublisher(client, cfg.Redis.Channel), nil
	default:
		return nil, nil
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal, envDev:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}
