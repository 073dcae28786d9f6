package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/erosion-inspector-go/internal/analyzer"
	"github.com/anime-shed/erosion-inspector-go/internal/cache"
	apperrors "github.com/anime-shed/erosion-inspector-go/internal/errors"
	"github.com/anime-shed/erosion-inspector-go/internal/logger"
	"github.com/anime-shed/erosion-inspector-go/internal/observer"
	"github.com/anime-shed/erosion-inspector-go/internal/repository"
	"github.com/anime-shed/erosion-inspector-go/internal/storage"
	"github.com/anime-shed/erosion-inspector-go/pkg/models"
)

// MaxBatchSize caps the number of images in one batch request.
const MaxBatchSize = 16

// BatchImage is one entry of a batch request.
type BatchImage struct {
	Filename string
	Data     []byte
}

// ClassificationService classifies images from uploads, URLs and batches
type ClassificationService interface {
	Classify(ctx context.Context, data []byte) (*models.ErosionResult, error)
	ClassifyFrom(ctx context.Context, data []byte, source observer.Source) (*models.ErosionResult, error)
	ClassifyURL(ctx context.Context, imageURL string) (*models.ErosionResult, error)
	ClassifyBatch(ctx context.Context, images []BatchImage) ([]models.BatchItem, error)
}

// ClassificationConfig holds the timeouts the service enforces.
type ClassificationConfig struct {
	AnalysisTimeout   time.Duration
	ImageFetchTimeout time.Duration
}

type classificationService struct {
	classifier analyzer.ErosionClassifier
	imageRepo  repository.ImageRepository
	cache      cache.ResultCache
	pool       *analyzer.WorkerPool
	events     observer.Subject
	cfg        ClassificationConfig
	log        *logrus.Entry
}

// NewClassificationService wires the classifier with its cache, fetcher and
// worker pool. The pool must already be started.
func NewClassificationService(
	classifier analyzer.ErosionClassifier,
	imageRepository repository.ImageRepository,
	resultCache cache.ResultCache,
	pool *analyzer.WorkerPool,
	events observer.Subject,
	cfg ClassificationConfig,
) ClassificationService {
	if resultCache == nil {
		resultCache = cache.NoopCache{}
	}
	return &classificationService{
		classifier: classifier,
		imageRepo:  imageRepository,
		cache:      resultCache,
		pool:       pool,
		events:     events,
		cfg:        cfg,
		log:        logger.WithComponent("classification_service"),
	}
}

func (s *classificationService) Classify(ctx context.Context, data []byte) (*models.ErosionResult, error) {
	return s.ClassifyFrom(ctx, data, observer.SourceUpload)
}

// ClassifyFrom classifies data, consulting the cache first. Cache failures
// are logged and never fail the request.
func (s *classificationService) ClassifyFrom(ctx context.Context, data []byte, source observer.Source) (*models.ErosionResult, error) {
	if len(data) > 0 {
		cached, err := s.cache.Get(ctx, data)
		switch {
		case err == nil:
			s.notify(ctx, observer.AnalysisEvent{
				EventType:  observer.CacheHit,
				Source:     source,
				Success:    true,
				Prediction: cached.Prediction,
			})
			return cached, nil
		case !errors.Is(err, cache.ErrMiss):
			s.log.WithError(err).Warn("Result cache lookup failed")
		}
	}

	start := time.Now()
	s.notify(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Source: source})

	result, err := s.classifyWithTimeout(ctx, data)
	elapsed := time.Since(start)
	if err != nil {
		s.notify(ctx, observer.AnalysisEvent{
			EventType:      observer.AnalysisFailed,
			Source:         source,
			ProcessingTime: elapsed,
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	s.notify(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Source:         source,
		ProcessingTime: elapsed,
		Success:        true,
		Prediction:     result.Prediction,
	})

	if err := s.cache.Set(ctx, data, result); err != nil {
		s.log.WithError(err).Warn("Result cache store failed")
	}
	return result, nil
}

type classifyOutcome struct {
	result models.ErosionResult
	err    error
}

// classifyWithTimeout runs the classifier on its own goroutine. The
// classifier cannot be interrupted, so on timeout the caller stops waiting
// and the goroutine finishes in the background.
func (s *classificationService) classifyWithTimeout(ctx context.Context, data []byte) (*models.ErosionResult, error) {
	if s.cfg.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.AnalysisTimeout)
		defer cancel()
	}

	done := make(chan classifyOutcome, 1)
	go func() {
		result, err := s.classifier.Classify(data)
		done <- classifyOutcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, mapClassifyError(out.err)
		}
		return &out.result, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("image analysis timed out", ctx.Err())
		}
		return nil, apperrors.NewProcessingError("image analysis cancelled", ctx.Err())
	}
}

func mapClassifyError(err error) error {
	if analyzer.IsDecodeError(err) {
		return apperrors.NewDecodeError("image could not be decoded", err)
	}
	return apperrors.NewProcessingError("image analysis failed", err)
}

func (s *classificationService) ClassifyURL(ctx context.Context, imageURL string) (*models.ErosionResult, error) {
	if err := s.imageRepo.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}

	fetchCtx := ctx
	if s.cfg.ImageFetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.cfg.ImageFetchTimeout)
		defer cancel()
	}

	start := time.Now()
	data, err := s.imageRepo.FetchImage(fetchCtx, imageURL)
	if err != nil {
		s.notify(ctx, observer.AnalysisEvent{
			EventType:      observer.ImageFetchFailed,
			Source:         observer.SourceURL,
			ImageURL:       imageURL,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, mapFetchError(err)
	}

	s.notify(ctx, observer.AnalysisEvent{
		EventType:      observer.ImageFetched,
		Source:         observer.SourceURL,
		ImageURL:       imageURL,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"bytes": len(data)},
	})

	return s.ClassifyFrom(ctx, data, observer.SourceURL)
}

func mapFetchError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timed out", err)
	case errors.Is(err, storage.ErrImageTooLarge):
		return apperrors.NewValidationError("remote image is too large", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}

// ClassifyBatch classifies every image on the worker pool. Items come back
// in request order; a failing image yields an item with Error set.
func (s *classificationService) ClassifyBatch(ctx context.Context, images []BatchImage) ([]models.BatchItem, error) {
	if len(images) == 0 {
		return nil, apperrors.NewValidationError("no images provided", nil)
	}
	if len(images) > MaxBatchSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("at most %d images per batch", MaxBatchSize), nil)
	}

	items := make([]models.BatchItem, len(images))
	var wg sync.WaitGroup

	for i, img := range images {
		i, img := i, img
		items[i] = models.BatchItem{Index: i, Filename: img.Filename}

		wg.Add(1)
		job := func() {
			defer wg.Done()
			result, err := s.ClassifyFrom(ctx, img.Data, observer.SourceBatch)
			if err != nil {
				items[i].Error = errorMessage(err)
				return
			}
			items[i].Result = result
		}
		if !s.pool.Submit(job) {
			wg.Done()
			items[i].Error = "worker pool is shut down"
		}
	}

	wg.Wait()
	return items, nil
}

func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func (s *classificationService) notify(ctx context.Context, event observer.AnalysisEvent) {
	if s.events == nil {
		return
	}
	event.Timestamp = time.Now()
	s.events.NotifyObservers(ctx, event)
}
