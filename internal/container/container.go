package container

import (
	"context"
	"fmt"
	"net/http"

	"go-xai-analyzer/internal/analyst"
	"go-xai-analyzer/internal/analyzer"
	"go-xai-analyzer/internal/config"
	"go-xai-analyzer/internal/factory"
	"go-xai-analyzer/internal/logger"
	"go-xai-analyzer/internal/observer"
	"go-xai-analyzer/internal/prompt"
	"go-xai-analyzer/internal/report"
	"go-xai-analyzer/internal/repository"
	"go-xai-analyzer/internal/service"
	"go-xai-analyzer/internal/storage"
	"go-xai-analyzer/internal/transport"
	"go-xai-analyzer/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	promptStore     storage.TextStore
	analyst         analyst.Analyst
	events          *observer.EventPublisher
	metrics         *observer.MetricsObserver
	analysisService service.AnalysisService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	// Build dependency graph
	promptStore, err := factory.NewStorageFactory(cfg).CreateStorage(ctx, factory.StorageType(cfg.PromptStore))
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt store: %w", err)
	}

	advisor := analyzer.NewTechniqueAdvisor()
	generator := report.NewGenerator(analyzer.NewMetricsCalculator(), advisor)
	simulated := analyst.NewSimulatedAnalyst(generator, analyst.Options{
		Delay:   cfg.AnalysisDelay,
		Timeout: cfg.RequestTimeout,
	})

	events := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	analysisService := service.NewAnalysisService(service.Dependencies{
		Validator: validation.NewRequestValidator(
			validation.NewImageValidatorWithOptions([]string{"http", "https"}, nil, cfg.MaxImageSize),
		),
		Analyst:      simulated,
		Generator:    generator,
		Advisor:      advisor,
		Prompts:      repository.NewPromptRepository(promptStore, prompt.StorageKey),
		Reports:      repository.NewMemoryReportRepository(cfg.ReportHistoryLimit),
		Events:       events,
		Gate:         service.NewSubmissionGate(),
		BatchWorkers: cfg.BatchWorkers,
		MaxBatchSize: cfg.MaxBatchSize,
	})
	handler := transport.NewHandler(analysisService, metrics, cfg)

	return &Container{
		config:          cfg,
		promptStore:     promptStore,
		analyst:         simulated,
		events:          events,
		metrics:         metrics,
		analysisService: analysisService,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the analysis service
func (c *Container) Service() service.AnalysisService {
	return c.analysisService
}

// Metrics returns the event counters
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Close waits for in-flight event notifications
func (c *Container) Close() {
	c.events.Wait()
}
