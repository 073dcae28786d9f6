package factory

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/nfnt/resize"

	"github.com/anime-shed/erosion-inspector-go/internal/analyzer"
	"github.com/anime-shed/erosion-inspector-go/internal/cache"
	"github.com/anime-shed/erosion-inspector-go/internal/config"
	"github.com/anime-shed/erosion-inspector-go/internal/logger"
	"github.com/anime-shed/erosion-inspector-go/internal/repository"
	"github.com/anime-shed/erosion-inspector-go/internal/storage"
)

// ResamplerType names the interpolation used to reach the canonical size
type ResamplerType string

const (
	BilinearResampler ResamplerType = "bilinear"
	NearestResampler  ResamplerType = "nearest"
	BicubicResampler  ResamplerType = "bicubic"
	Lanczos3Resampler ResamplerType = "lanczos3"
)

// Normalize lowercases the name and maps the empty name to bilinear.
func (r ResamplerType) Normalize() ResamplerType {
	name := ResamplerType(strings.ToLower(strings.TrimSpace(string(r))))
	if name == "" {
		return BilinearResampler
	}
	return name
}

// CreateClassifier creates an erosion classifier using the named resampler
func CreateClassifier(resampler ResamplerType) (analyzer.ErosionClassifier, error) {
	var interp resize.InterpolationFunction
	switch resampler.Normalize() {
	case BilinearResampler:
		interp = resize.Bilinear
	case NearestResampler:
		interp = resize.NearestNeighbor
	case BicubicResampler:
		interp = resize.Bicubic
	case Lanczos3Resampler:
		interp = resize.Lanczos3
	default:
		return nil, fmt.Errorf("unsupported resampler: %s", resampler)
	}
	return analyzer.NewErosionClassifierWithOptions(analyzer.DefaultOptions().WithInterpolation(interp)), nil
}

// CreateImageStore creates the report photo store for the configured backend
func CreateImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendAzure:
		store, err := storage.NewAzureImageStore(cfg.AzureStorageAccount, cfg.AzureStorageKey, cfg.AzureStorageContainer)
		if err != nil {
			return nil, err
		}
		if ensurer, ok := store.(interface{ EnsureContainer(context.Context) error }); ok {
			if err := ensurer.EnsureContainer(ctx); err != nil {
				return nil, err
			}
		}
		return store, nil
	case config.StorageBackendLocal:
		return storage.NewLocalImageStore(cfg.LocalStorageDir)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageBackend)
	}
}

// CreateReportRepository returns a PostgreSQL repository when a DSN is set
// and an in-memory one otherwise. The closer releases the connection pool.
func CreateReportRepository(ctx context.Context, cfg *config.Config) (repository.ReportRepository, io.Closer, error) {
	if cfg.DatabaseDSN == "" {
		logger.Warn("DATABASE_DSN not set; reports are kept in memory")
		return repository.NewMemoryReportRepository(), nopCloser{}, nil
	}

	db, err := repository.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	repo := repository.NewGormReportRepository(db)
	if err := repo.AutoMigrate(ctx); err != nil {
		_ = repo.Close()
		return nil, nil, fmt.Errorf("migrate reports: %w", err)
	}
	return repo, repo, nil
}

// CreateResultCache connects to redis when an address is configured. An
// unreachable redis degrades to no caching instead of failing startup.
func CreateResultCache(ctx context.Context, cfg *config.Config) (cache.ResultCache, io.Closer) {
	if !cfg.CacheEnabled() {
		return cache.NoopCache{}, nopCloser{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).WithField("addr", cfg.RedisAddr).Warn("Redis unreachable; result cache disabled")
		_ = client.Close()
		return cache.NoopCache{}, nopCloser{}
	}

	namespace := string(ResamplerType(cfg.Resampler).Normalize())
	return cache.NewResultCache(cache.NewRedisStore(client), namespace, cfg.CacheTTL), client
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
