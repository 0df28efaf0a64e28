package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	_ "patientflow/docs"
	"patientflow/pkg/config"
	"patientflow/pkg/httpapi"
	"patientflow/pkg/logger"
	"patientflow/pkg/metrics"
	"patientflow/pkg/otel"
	"patientflow/pkg/patient"
	"patientflow/pkg/patient/events"
	"patientflow/pkg/patient/file"
	"patientflow/pkg/patient/memory"
	pg "patientflow/pkg/patient/postgres"
	redismirror "patientflow/pkg/patient/redis"
	s3mirror "patientflow/pkg/patient/s3"
	"patientflow/pkg/patient/sqlite"
)

// @title PatientFlow API
// @version 1.0
// @description Patient admission registry
// @host localhost:8080
// @BasePath /
func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log := logger.New(os.Stderr, logger.LevelInfo, "patientflow", nil)
		log.Error(ctx, "load config", "error", err)
		return err
	}

	log := logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), "patientflow", otel.GetTraceID)
	defer log.Sync()

	tp, shutdownTracing, err := otel.InitTracing(log, otel.Config{
		ServiceName: "patientflow",
		Host:        cfg.Tracing.Host,
		Stdout:      cfg.Tracing.Stdout,
		Probability: cfg.Tracing.Probability,
	})
	if err != nil {
		log.Error(ctx, "init tracing", "error", err)
		return err
	}
	defer shutdownTracing(context.Background())

	mirror, closeMirror, err := openMirror(ctx, cfg.Store)
	if err != nil {
		log.Error(ctx, "open store", "driver", cfg.Store.Driver, "error", err)
		return err
	}
	defer closeMirror()
	log.Info(ctx, "store opened", "driver", cfg.Store.Driver)

	repo := memory.New(ctx, mirror, log)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info(ctx, "event publishing enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error(ctx, "close publisher", "error", err)
		}
	}()

	handler := httpapi.New(httpapi.Deps{
		Repo:    repo,
		Events:  publisher,
		Log:     log,
		Metrics: metrics.New(repo.Statistics),
		Tracer:  tp.Tracer("patientflow"),
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error(ctx, "server closed", "error", err)
			return err
		}
	case <-sigCtx.Done():
	}

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "graceful shutdown", "error", err)
	}

	if err := repo.Flush(shutdownCtx); err != nil {
		log.Error(ctx, "final flush", "error", err)
		return err
	}
	log.Info(ctx, "registry flushed")
	return nil
}

// openMirror builds the durable mirror selected by cfg.Driver. The returned
// close function is always non-nil.
func openMirror(ctx context.Context, cfg config.StoreConfig) (patient.Mirror, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		m := pg.New(db)
		if err := m.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return m, db.Close, nil
	case config.DriverSQLite:
		m, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return m, m.Close, nil
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return redismirror.New(client, cfg.RedisKey), client.Close, nil
	case config.DriverS3:
		m, err := s3mirror.New(ctx, s3mirror.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Key:       cfg.S3Key,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, noop, err
		}
		return m, noop, nil
	default:
		return file.New(cfg.DataFile), noop, nil
	}
}
