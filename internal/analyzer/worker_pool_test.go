package analyzer

import (
	"image/color"
	"sync"
	"testing"

	"github.com/anime-shed/erosion-inspector-go/pkg/models"
)

func TestNewWorkerPool_ZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	if pool == nil {
		t.Fatal("Expected non-nil WorkerPool")
	}
	if pool.GetStats().Workers <= 0 {
		t.Errorf("Expected worker count to default to NumCPU, got %d", pool.GetStats().Workers)
	}
}

func TestWorkerPool_Submit(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	defer pool.Close()

	var counter int
	var mu sync.Mutex

	for i := 0; i < 5; i++ {
		if !pool.Submit(func() {
			mu.Lock()
			counter++
			mu.Unlock()
		}) {
			t.Fatal("Expected submit to succeed on an open pool")
		}
	}

	pool.Wait()

	if counter != 5 {
		t.Errorf("Expected counter to be 5, got %d", counter)
	}
}

func TestWorkerPool_StartOnce(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Start() // Should not panic or create duplicate workers
	defer pool.Close()

	var executed bool
	pool.Submit(func() {
		executed = true
	})
	pool.Wait()

	if !executed {
		t.Error("Expected job to be executed")
	}
}

func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()
	pool.Close()
	pool.Close() // idempotent

	if pool.Submit(func() {}) {
		t.Error("Expected submit to be rejected after close")
	}
}

func TestWorkerPool_Stats(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Close()

	const numJobs = 5
	for i := 0; i < numJobs; i++ {
		pool.Submit(func() {
			for j := 0; j < 1000; j++ {
				_ = j * j
			}
		})
	}
	pool.Wait()

	stats := pool.GetStats()
	if stats.TotalJobs != numJobs {
		t.Errorf("Expected %d total jobs, got %d", numJobs, stats.TotalJobs)
	}
	if stats.CompletedJobs != numJobs {
		t.Errorf("Expected %d completed jobs, got %d", numJobs, stats.CompletedJobs)
	}
	if stats.ActiveWorkers != 0 {
		t.Errorf("Expected 0 active workers after completion, got %d", stats.ActiveWorkers)
	}
}

func TestWorkerPool_ConcurrentClassification(t *testing.T) {
	classifier := NewErosionClassifier()
	pool := NewWorkerPool(3)
	pool.Start()
	defer pool.Close()

	inputs := [][]byte{
		encodePNG(t, createTestImage(64, 64, color.RGBA{0, 255, 0, 255})),
		encodePNG(t, createTestImage(64, 64, color.RGBA{0, 0, 0, 255})),
		encodePNG(t, createTestImage(64, 64, color.RGBA{255, 0, 0, 255})),
		encodePNG(t, createTestImage(64, 64, color.RGBA{255, 255, 255, 255})),
	}
	want := []string{
		models.PredictionNone,
		models.PredictionSevere,
		models.PredictionSlight,
		models.PredictionSlight,
	}

	got := make([]string, len(inputs))
	for i := range inputs {
		i := i
		pool.Submit(func() {
			result, err := classifier.Classify(inputs[i])
			if err != nil {
				t.Errorf("image %d: unexpected error: %v", i, err)
				return
			}
			got[i] = result.Prediction
		})
	}
	pool.Wait()

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("image %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
