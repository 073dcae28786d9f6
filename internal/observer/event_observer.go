package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AnalysisEvent describes one step of classifying an image or handling a report
type AnalysisEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Source         Source                 `json:"source"`
	ImageURL       string                 `json:"image_url,omitempty"`
	ReportID       string                 `json:"report_id,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	Prediction     string                 `json:"prediction,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of analysis event
type EventType string

const (
	AnalysisStarted     EventType = "analysis_started"
	AnalysisCompleted   EventType = "analysis_completed"
	AnalysisFailed      EventType = "analysis_failed"
	ImageFetched        EventType = "image_fetched"
	ImageFetchFailed    EventType = "image_fetch_failed"
	CacheHit            EventType = "cache_hit"
	ReportSubmitted     EventType = "report_submitted"
	ReportStatusChanged EventType = "report_status_changed"
)

// Source says where the image under analysis came from.
type Source string

const (
	SourceUpload Source = "upload"
	SourceURL    Source = "url"
	SourceBatch  Source = "batch"
	SourceReport Source = "report"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event AnalysisEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event AnalysisEvent)
}

// LoggingObserver logs analysis events
type LoggingObserver struct {
	logger *logrus.Logger
}

func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

func (o *LoggingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"source":          event.Source,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if event.ImageURL != "" {
		fields["image_url"] = event.ImageURL
	}
	if event.ReportID != "" {
		fields["report_id"] = event.ReportID
	}
	if event.Prediction != "" {
		fields["prediction"] = event.Prediction
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case AnalysisStarted:
		entry.Debug("Erosion analysis started")
	case AnalysisCompleted:
		entry.Info("Erosion analysis completed")
	case AnalysisFailed:
		entry.Warn("Erosion analysis failed")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	case CacheHit:
		entry.Debug("Classification served from cache")
	case ReportSubmitted:
		entry.Info("Field report submitted")
	case ReportStatusChanged:
		entry.Info("Field report status changed")
	default:
		entry.Info("Analysis event occurred")
	}
}

func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsSnapshot is a point-in-time copy of the collected counters.
type MetricsSnapshot struct {
	TotalAnalyses       int64            `json:"total_analyses"`
	SuccessfulAnalyses  int64            `json:"successful_analyses"`
	FailedAnalyses      int64            `json:"failed_analyses"`
	CacheHits           int64            `json:"cache_hits"`
	ImageFetchFailures  int64            `json:"image_fetch_failures"`
	ReportsSubmitted    int64            `json:"reports_submitted"`
	Predictions         map[string]int64 `json:"predictions"`
	AnalysesBySource    map[Source]int64 `json:"analyses_by_source"`
	TotalProcessingTime time.Duration    `json:"total_processing_time"`
	AvgProcessingTime   time.Duration    `json:"avg_processing_time"`
}

// MetricsObserver collects metrics from analysis events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalAnalyses       int64
	successfulAnalyses  int64
	failedAnalyses      int64
	cacheHits           int64
	fetchFailures       int64
	reportsSubmitted    int64
	predictions         map[string]int64
	bySource            map[Source]int64
	totalProcessingTime time.Duration
}

func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		predictions: make(map[string]int64),
		bySource:    make(map[Source]int64),
	}
}

func (o *MetricsObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case AnalysisStarted:
		o.totalAnalyses++
		o.bySource[event.Source]++
	case AnalysisCompleted:
		o.successfulAnalyses++
		o.totalProcessingTime += event.ProcessingTime
		if event.Prediction != "" {
			o.predictions[event.Prediction]++
		}
	case AnalysisFailed:
		o.failedAnalyses++
	case CacheHit:
		o.cacheHits++
	case ImageFetchFailed:
		o.fetchFailures++
	case ReportSubmitted:
		o.reportsSubmitted++
	}
}

func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Snapshot returns the current counters.
func (o *MetricsObserver) Snapshot() MetricsSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	s := MetricsSnapshot{
		TotalAnalyses:       o.totalAnalyses,
		SuccessfulAnalyses:  o.successfulAnalyses,
		FailedAnalyses:      o.failedAnalyses,
		CacheHits:           o.cacheHits,
		ImageFetchFailures:  o.fetchFailures,
		ReportsSubmitted:    o.reportsSubmitted,
		Predictions:         make(map[string]int64, len(o.predictions)),
		AnalysesBySource:    make(map[Source]int64, len(o.bySource)),
		TotalProcessingTime: o.totalProcessingTime,
	}
	for k, v := range o.predictions {
		s.Predictions[k] = v
	}
	for k, v := range o.bySource {
		s.AnalysesBySource[k] = v
	}
	if o.successfulAnalyses > 0 {
		s.AvgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulAnalyses)
	}
	return s
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

func NewEventPublisher() Subject {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes the first observer with the same name
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers event to every observer on its own goroutine.
// Observers outlive the request, so they get a context that is never cancelled.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event AnalysisEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	detached := context.WithoutCancel(ctx)

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(detached, event)
		}(observer)
	}
}
