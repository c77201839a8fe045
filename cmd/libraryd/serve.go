package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookstore/library/internal/config"
	"github.com/bookstore/library/internal/db"
	"github.com/bookstore/library/internal/events"
	grpcserver "github.com/bookstore/library/internal/grpc"
	"github.com/bookstore/library/internal/httpapi"
	"github.com/bookstore/library/internal/repo"
	"github.com/bookstore/library/internal/service"
	"github.com/bookstore/library/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	gormlogger "gorm.io/gorm/logger"
)

// ServeCmd runs the HTTP API and the gRPC health server until SIGINT or SIGTERM.
type ServeCmd struct{}

// MigrateCmd applies the schema and exits.
type MigrateCmd struct{}

type eventPublisher interface {
	service.EventPublisher
	grpcserver.BrokerStatus
	Close() error
}

func (c *MigrateCmd) Run(cfg *config.Config, log *zap.Logger) error {
	database, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close()

	log.Info("Database schema is up to date")
	return nil
}

func (c *ServeCmd) Run(cfg *config.Config, log *zap.Logger) error {
	log.Info("Library service starting")

	database, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close()

	bookRepo := repo.NewBookRepository(database, log)

	publisher, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	books := service.NewBookService(bookRepo, publisher, log)

	metrics := httpapi.NewMetrics()
	metrics.RegisterBookCount(bookRepo.Count)

	healthServer := grpcserver.NewHealthServer(database, publisher, log)

	httpServer := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: httpapi.NewHandler(httpapi.Deps{
			Books:          books,
			Log:            log,
			Metrics:        metrics,
			Health:         healthServer.Healthy,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     zap.NewStdLog(log),
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(grpcserver.LoggingInterceptor(log)),
	)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting gRPC server", zap.String("address", grpcListener.Addr().String()))
		if err := grpcServer.Serve(grpcListener); err != nil {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("Starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}
		stopGRPC(shutdownCtx, grpcServer)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}

// stopGRPC drains in-flight RPCs, forcing the stop once ctx expires.
func stopGRPC(ctx context.Context, s *grpc.Server) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.Stop()
	}
}

// openDatabase connects and migrates.
func openDatabase(cfg *config.Config, log *zap.Logger) (*db.DB, error) {
	log.Info("Connecting to database...", zap.String("driver", cfg.DBDriver))
	database, err := db.Connect(cfg.DBDriver, cfg.DBDSN, gormLogLevel(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Running database migrations...")
	if err := db.RunMigrations(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return database, nil
}

func newPublisher(cfg *config.Config, log *zap.Logger) (eventPublisher, error) {
	if cfg.RabbitMQURL == "" {
		log.Warn("RABBITMQ_URL not set, book events are disabled")
		return events.NopPublisher{}, nil
	}

	log.Info("Connecting to RabbitMQ")
	publisher, err := events.NewPublisher(cfg.RabbitMQURL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return publisher, nil
}

// gormLogLevel echoes SQL only when the service logs at debug.
func gormLogLevel(level string) gormlogger.LogLevel {
	if logger.ParseLevel(level) == zapcore.DebugLevel {
		return gormlogger.Info
	}
	return gormlogger.Warn
}
