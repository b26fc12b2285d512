package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AnalysisEvent represents an analysis event
type AnalysisEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Session        string                 `json:"session,omitempty"`
	Technique      string                 `json:"technique,omitempty"`
	ReportID       string                 `json:"report_id,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of analysis event
type EventType string

const (
	// AnalysisStarted when analysis begins
	AnalysisStarted EventType = "analysis_started"
	// AnalysisCompleted when analysis finishes successfully
	AnalysisCompleted EventType = "analysis_completed"
	// AnalysisFailed when analysis fails
	AnalysisFailed EventType = "analysis_failed"
	// AnalysisRejected when a session already has an analysis outstanding
	AnalysisRejected EventType = "analysis_rejected"
	// BatchCompleted when a batch of reports has been generated
	BatchCompleted EventType = "batch_completed"
	// PromptSaved when the analysis prompt is persisted
	PromptSaved EventType = "prompt_saved"
	// PromptCleared when the persisted prompt is removed
	PromptCleared EventType = "prompt_cleared"
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

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles analysis events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if event.Session != "" {
		fields["session"] = event.Session
	}
	if event.Technique != "" {
		fields["technique"] = event.Technique
	}
	if event.ReportID != "" {
		fields["report_id"] = event.ReportID
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
		entry.Info("XAI analysis started")
	case AnalysisCompleted:
		entry.Info("XAI analysis completed")
	case AnalysisFailed:
		entry.Error("XAI analysis failed")
	case AnalysisRejected:
		entry.Warn("XAI analysis rejected, one already in progress")
	case BatchCompleted:
		entry.Info("Batch report generation completed")
	case PromptSaved, PromptCleared:
		entry.Debug("Analysis prompt updated")
	default:
		entry.Info("Analysis event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// Metrics is a snapshot of the counters kept by MetricsObserver
type Metrics struct {
	TotalAnalyses      int64            `json:"total_analyses"`
	SuccessfulAnalyses int64            `json:"successful_analyses"`
	FailedAnalyses     int64            `json:"failed_analyses"`
	RejectedAnalyses   int64            `json:"rejected_analyses"`
	BatchReports       int64            `json:"batch_reports"`
	PromptUpdates      int64            `json:"prompt_updates"`
	TotalProcessingSec float64          `json:"total_processing_sec"`
	AvgProcessingSec   float64          `json:"avg_processing_sec"`
	TechniqueBreakdown map[string]int64 `json:"technique_breakdown"`
}

// MetricsObserver collects metrics from analysis events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalAnalyses       int64
	successfulAnalyses  int64
	failedAnalyses      int64
	rejectedAnalyses    int64
	batchReports        int64
	promptUpdates       int64
	totalProcessingTime time.Duration
	techniques          map[string]int64
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{techniques: make(map[string]int64)}
}

// OnEvent handles analysis events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case AnalysisStarted:
		o.totalAnalyses++
		if event.Technique != "" {
			o.techniques[event.Technique]++
		}
	case AnalysisCompleted:
		o.successfulAnalyses++
		o.totalProcessingTime += event.ProcessingTime
	case AnalysisFailed:
		o.failedAnalyses++
	case AnalysisRejected:
		o.rejectedAnalyses++
	case BatchCompleted:
		if n, ok := event.Metadata["succeeded"].(int); ok {
			o.batchReports += int64(n)
		}
	case PromptSaved, PromptCleared:
		o.promptUpdates++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() Metrics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulAnalyses > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulAnalyses)
	}

	techniques := make(map[string]int64, len(o.techniques))
	for k, v := range o.techniques {
		techniques[k] = v
	}

	return Metrics{
		TotalAnalyses:      o.totalAnalyses,
		SuccessfulAnalyses: o.successfulAnalyses,
		FailedAnalyses:     o.failedAnalyses,
		RejectedAnalyses:   o.rejectedAnalyses,
		BatchReports:       o.batchReports,
		PromptUpdates:      o.promptUpdates,
		TotalProcessingSec: o.totalProcessingTime.Seconds(),
		AvgProcessingSec:   avgProcessingTime.Seconds(),
		TechniqueBreakdown: techniques,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	pending   sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
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

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event AnalysisEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Observers run detached from the request so cancellation does not drop events
	ctx = context.WithoutCancel(ctx)

	// Notify observers concurrently
	for _, observer := range observers {
		p.pending.Add(1)
		go func(obs Observer) {
			defer p.pending.Done()
			defer func() {
				if r := recover(); r != nil {
					// Log panic but don't crash the application
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Wait blocks until every notification in flight has been handled
func (p *EventPublisher) Wait() {
	p.pending.Wait()
}
