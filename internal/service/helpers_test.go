package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/erosion-inspector-go/internal/analyzer"
	"github.com/anime-shed/erosion-inspector-go/internal/cache"
	"github.com/anime-shed/erosion-inspector-go/internal/observer"
	"github.com/anime-shed/erosion-inspector-go/pkg/models"
)

func encodeSolidPNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var (
	green = color.RGBA{20, 160, 30, 255}
	black = color.RGBA{10, 10, 10, 255}
)

// countingClassifier wraps the real classifier and counts calls.
type countingClassifier struct {
	inner analyzer.ErosionClassifier
	mu    sync.Mutex
	calls int
	delay time.Duration
}

func (c *countingClassifier) Classify(data []byte) (models.ErosionResult, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return c.inner.Classify(data)
}

func (c *countingClassifier) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fakeImageRepo struct {
	data        []byte
	err         error
	validateErr error
	fetched     []string
}

func (f *fakeImageRepo) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	f.fetched = append(f.fetched, imageURL)
	return f.data, f.err
}

func (f *fakeImageRepo) ValidateImageURL(string) error { return f.validateErr }

// sharedStore is a cache.Store over a map, standing in for one redis shared
// by several services.
type sharedStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newSharedStore() *sharedStore {
	return &sharedStore{values: map[string]string{}}
}

func (s *sharedStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = string(value.([]byte))
	return nil
}

func (s *sharedStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

// encodeCheckerboardPNG alternates dark and soil pixels one pixel apart, so
// the result depends on the interpolation used to resample it.
func encodeCheckerboardPNG(t *testing.T, size int) []byte {
	t.Helper()
	dark := color.RGBA{10, 10, 10, 255}
	soil := color.RGBA{150, 100, 60, 255}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, dark)
			} else {
				img.Set(x, y, soil)
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// memoryCache is a ResultCache over a map.
type memoryCache struct {
	mu     sync.Mutex
	values map[string]models.ErosionResult
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]models.ErosionResult{}}
}

func (m *memoryCache) Get(_ context.Context, data []byte) (*models.ErosionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.values[cache.Key("test", data)]
	if !ok {
		return nil, cache.ErrMiss
	}
	return &v, nil
}

func (m *memoryCache) Set(_ context.Context, data []byte, result *models.ErosionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[cache.Key("test", data)] = *result
	return nil
}

// recordingSubject collects events synchronously.
type recordingSubject struct {
	mu     sync.Mutex
	events []observer.AnalysisEvent
}

func (r *recordingSubject) Subscribe(observer.Observer)   {}
func (r *recordingSubject) Unsubscribe(observer.Observer) {}

func (r *recordingSubject) NotifyObservers(_ context.Context, event observer.AnalysisEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSubject) types() []observer.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]observer.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType
	}
	return out
}

type serviceFixture struct {
	svc        ClassificationService
	classifier *countingClassifier
	repo       *fakeImageRepo
	cache      *memoryCache
	events     *recordingSubject
	pool       *analyzer.WorkerPool
}

func newServiceFixture(t *testing.T, cfg ClassificationConfig) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		classifier: &countingClassifier{inner: analyzer.NewErosionClassifier()},
		repo:       &fakeImageRepo{},
		cache:      newMemoryCache(),
		events:     &recordingSubject{},
		pool:       analyzer.NewWorkerPool(4),
	}
	f.pool.Start()
	t.Cleanup(f.pool.Close)
	f.svc = NewClassificationService(f.classifier, f.repo, f.cache, f.pool, f.events, cfg)
	return f
}
