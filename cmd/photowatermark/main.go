package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	exporthttp "github.com/aliskhannn/photowatermark/internal/api/handlers/export"
	libraryhttp "github.com/aliskhannn/photowatermark/internal/api/handlers/library"
	templatehttp "github.com/aliskhannn/photowatermark/internal/api/handlers/template"
	"github.com/aliskhannn/photowatermark/internal/api/router"
	"github.com/aliskhannn/photowatermark/internal/api/server"
	"github.com/aliskhannn/photowatermark/internal/config"
	"github.com/aliskhannn/photowatermark/internal/fonts"
	"github.com/aliskhannn/photowatermark/internal/infra/kafka/consumer"
	"github.com/aliskhannn/photowatermark/internal/infra/kafka/producer"
	exportmsg "github.com/aliskhannn/photowatermark/internal/kafka/handlers/export"
	"github.com/aliskhannn/photowatermark/internal/library"
	"github.com/aliskhannn/photowatermark/internal/model"
	"github.com/aliskhannn/photowatermark/internal/processor"
	templaterepo "github.com/aliskhannn/photowatermark/internal/repository/template"
	"github.com/aliskhannn/photowatermark/internal/storage/file"
	"github.com/aliskhannn/photowatermark/internal/storage/local"
	"github.com/aliskhannn/photowatermark/internal/watermark"
)

// fileStorage is satisfied by both export sinks.
type fileStorage interface {
	Save(ctx context.Context, dir, filename string, src io.Reader) (string, error)
}

// templateStore is satisfied by the Postgres repository and the JSON file store.
type templateStore interface {
	SaveTemplate(ctx context.Context, t model.Template) (model.Template, error)
	GetTemplate(ctx context.Context, name string) (model.Template, error)
	ListTemplates(ctx context.Context) ([]model.Template, error)
	DeleteTemplate(ctx context.Context, name string) error
}

// jobProducer enqueues export jobs.
type jobProducer interface {
	Produce(ctx context.Context, job model.ExportJob) error
}

func main() {
	configPath := pflag.StringP("config", "c", "./config/config.yml", "path to the config file")
	pflag.Parse()

	// Context & signals: used for graceful shutdown on system interrupts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger and load application configuration.
	zlog.Init()
	cfg := config.MustLoad(*configPath)
	if err := cfg.Log.ApplyLevel(); err != nil {
		zlog.Logger.Warn().Err(err).Msg("keeping default log level")
	}

	defaults, err := cfg.Export.Spec()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("invalid export defaults")
	}

	// Retry strategy for Kafka and other external calls.
	strategy := retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	}

	// Export sink: local filesystem or MinIO.
	var storage fileStorage
	switch cfg.Storage.Driver {
	case config.DriverMinIO:
		s, err := file.NewStorage(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.BucketName, cfg.Storage.UseSSL)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to storage")
		}
		storage = s
	default:
		storage = local.NewStorage()
	}

	// Template store: Postgres when enabled, else a JSON file.
	var templates templateStore
	var db *dbpg.DB
	if cfg.Database.Enabled {
		opts := &dbpg.Options{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}

		// Collect slave DSNs for replica connections.
		slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
		for _, s := range cfg.Database.Slaves {
			slaveDSNs = append(slaveDSNs, s.DSN())
		}

		db, err = dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		templates = templaterepo.NewRepository(db)
	} else {
		templates = templaterepo.NewFileStore(cfg.Templates.Path)
	}

	// Export pipeline.
	resolver := fonts.NewResolver(cfg.Fonts.SearchDirs())
	pipeline := processor.New(storage, watermark.New(resolver))

	// Kafka producer and consumer for queued export jobs.
	var (
		wg   sync.WaitGroup
		jobs jobProducer
		p    *producer.Producer
	)
	if cfg.Kafka.Enabled {
		p = producer.New(&cfg.Kafka, strategy)
		jobs = p

		c := consumer.New(&cfg.Kafka, strategy, exportmsg.NewJobHandler(pipeline))
		wg.Add(1)
		go c.Consume(ctx, &wg)
	}

	// In-memory library of imported images.
	lib := library.NewManager()

	// Start HTTP server in a separate goroutine.
	r := router.Setup(
		exporthttp.NewHandler(pipeline, templates, jobs, lib, defaults),
		libraryhttp.NewHandler(lib),
		templatehttp.NewHandler(templates),
	)
	s := server.New(":"+cfg.Server.HTTPPort, r)
	go func() {
		zlog.Logger.Info().Str("addr", s.Addr).Msg("starting server")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Block until context is canceled (SIGINT/SIGTERM).
	<-ctx.Done()
	zlog.Logger.Info().Msg("context done")

	// Graceful shutdown with timeout for HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	// Wait for Kafka consumer goroutine to finish; it closes its own client.
	wg.Wait()

	if p != nil {
		if err := p.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close kafka producer client")
		}
	}

	// Close master and slave databases.
	if db != nil {
		if err := db.Master.Close(); err != nil {
			zlog.Logger.Printf("failed to close master DB: %v", err)
		}
		for i, s := range db.Slaves {
			if err := s.Close(); err != nil {
				zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
			}
		}
	}
}
