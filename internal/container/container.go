package container

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/anime-shed/erosion-inspector-go/internal/analyzer"
	"github.com/anime-shed/erosion-inspector-go/internal/config"
	"github.com/anime-shed/erosion-inspector-go/internal/factory"
	"github.com/anime-shed/erosion-inspector-go/internal/logger"
	"github.com/anime-shed/erosion-inspector-go/internal/observer"
	"github.com/anime-shed/erosion-inspector-go/internal/repository"
	"github.com/anime-shed/erosion-inspector-go/internal/service"
	"github.com/anime-shed/erosion-inspector-go/internal/storage"
	"github.com/anime-shed/erosion-inspector-go/internal/transport"
	"github.com/anime-shed/erosion-inspector-go/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config                *config.Config
	pool                  *analyzer.WorkerPool
	metrics               *observer.MetricsObserver
	classificationService service.ClassificationService
	reportService         service.ReportService
	handler               http.Handler
	closers               []io.Closer
}

// NewContainer builds the dependency graph from cfg
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger.SetLevel(cfg.LogLevel)
	c := &Container{config: cfg}

	classifier, err := factory.CreateClassifier(factory.ResamplerType(cfg.Resampler))
	if err != nil {
		return nil, err
	}

	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	c.metrics = observer.NewMetricsObserver()
	events.Subscribe(c.metrics)

	imageRepository := repository.NewHTTPImageRepository(
		storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout, cfg.MaxRequestBodySize),
		validation.NewURLValidatorWithOptions([]string{"http", "https"}, cfg.AllowedImageHosts),
	)

	resultCache, cacheCloser := factory.CreateResultCache(ctx, cfg)
	c.closers = append(c.closers, cacheCloser)

	c.pool = analyzer.NewWorkerPool(cfg.BatchWorkers)
	c.pool.Start()

	c.classificationService = service.NewClassificationService(
		classifier,
		imageRepository,
		resultCache,
		c.pool,
		events,
		service.ClassificationConfig{
			AnalysisTimeout:   cfg.AnalysisTimeout,
			ImageFetchTimeout: cfg.ImageFetchTimeout,
		},
	)

	imageStore, err := factory.CreateImageStore(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("image store: %w", err)
	}

	reportRepository, repoCloser, err := factory.CreateReportRepository(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("report repository: %w", err)
	}
	c.closers = append(c.closers, repoCloser)

	c.reportService = service.NewReportService(reportRepository, imageStore, c.classificationService, events)

	c.handler = transport.NewHandler(transport.Dependencies{
		Classification: c.classificationService,
		Reports:        c.reportService,
		Metrics:        c.metrics,
		Pool:           c.pool,
		Config:         cfg,
	})

	return c, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close stops the worker pool and releases external connections.
func (c *Container) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close resource")
		}
	}
}
