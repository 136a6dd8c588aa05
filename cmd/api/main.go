package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/nvujicic/supplyline/internal/artifacts"
	"github.com/nvujicic/supplyline/internal/config"
	"github.com/nvujicic/supplyline/internal/database"
	idempostgres "github.com/nvujicic/supplyline/internal/idempotency/postgres"
	idemredis "github.com/nvujicic/supplyline/internal/idempotency/redis"
	"github.com/nvujicic/supplyline/internal/kafka"
	"github.com/nvujicic/supplyline/internal/orders/adapters"
	orderhttp "github.com/nvujicic/supplyline/internal/orders/adapters/http"
	orderpostgres "github.com/nvujicic/supplyline/internal/orders/adapters/postgres"
	"github.com/nvujicic/supplyline/internal/orders/app"
	ordermetrics "github.com/nvujicic/supplyline/internal/orders/metrics"
	"github.com/nvujicic/supplyline/internal/orders/ports"
	"github.com/nvujicic/supplyline/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := telemetry.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		EnableTracing:  cfg.EnableTracing,
		EnableMetrics:  cfg.EnableMetrics,
		SampleRate:     cfg.SampleRate,
	})
	if err != nil {
		logger.Error("initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown telemetry", "error", err)
		}
	}()

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		logger.Error("run migrations", "error", err)
		os.Exit(1)
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseConns)
	if err != nil {
		logger.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	meter := otel.Meter(cfg.ServiceName)

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		logger.Error("create database metrics", "error", err)
		os.Exit(1)
	}
	kafkaMetrics, err := kafka.NewMetrics(meter)
	if err != nil {
		logger.Error("create kafka metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := orderhttp.NewMetrics(meter)
	if err != nil {
		logger.Error("create http metrics", "error", err)
		os.Exit(1)
	}
	orderMetrics, err := ordermetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("create order metrics", "error", err)
		os.Exit(1)
	}

	repo := adapters.NewObservableRepository(orderpostgres.NewRepository(pool), dbMetrics)

	var bus ports.EventBus = kafka.NewNoopEventBus()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaBus := kafka.NewEventBus(cfg.KafkaBrokers, cfg.ServiceName)
		defer func() {
			if err := kafkaBus.Close(); err != nil {
				logger.Error("close kafka writer", "error", err)
			}
		}()
		bus = kafkaBus
	}
	events := adapters.NewObservableEventBus(bus, kafkaMetrics)

	var idemStore ports.IdempotencyStore = idempostgres.NewStore(pool)
	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		idemStore = idemredis.NewStore(rdb)
	}

	service := app.NewService(
		repo,
		events,
		idemStore,
		artifacts.NewGenerator(cfg.ArtifactsDir),
		logger,
		orderMetrics,
	)

	router := orderhttp.NewRouter(func(r *http.Request) error {
		return database.CheckHealth(r.Context(), pool)
	})
	orderhttp.NewHandler(service, logger).Register(router)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      orderhttp.WithMetrics(router, httpMetrics),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown http server", "error", err)
	}
}
