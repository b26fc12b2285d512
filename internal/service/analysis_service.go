package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-xai-analyzer/internal/analyst"
	"go-xai-analyzer/internal/analyzer"
	apperrors "go-xai-analyzer/internal/errors"
	"go-xai-analyzer/internal/logger"
	"go-xai-analyzer/internal/observer"
	"go-xai-analyzer/internal/prompt"
	"go-xai-analyzer/internal/report"
	"go-xai-analyzer/internal/repository"
	"go-xai-analyzer/internal/storage"
	"go-xai-analyzer/pkg/models"
	"go-xai-analyzer/pkg/validation"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

const defaultMaxBatchSize = 100

// AnalysisService defines the operations behind the HTTP API and the CLI
type AnalysisService interface {
	// Analyze validates the document, waits for the analyst and stores the report
	Analyze(ctx context.Context, session string, doc models.AnalysisDocument) (*models.AnalysisResponse, error)

	// AnalyzeBatch generates reports for several documents without simulated latency
	AnalyzeBatch(ctx context.Context, docs []models.AnalysisDocument) (*models.BatchResponse, error)

	// Prompt persistence
	GetPrompt(ctx context.Context) (string, error)
	SavePrompt(ctx context.Context, text string) error
	ClearPrompt(ctx context.Context) error
	BuildPrompt(fields models.TemplateFields) string

	// Report history
	GetReport(ctx context.Context, id string) (*models.ReportRecord, error)
	ListReports(ctx context.Context) ([]*models.ReportRecord, error)
}

// Dependencies are the collaborators of the analysis service
type Dependencies struct {
	Validator    *validation.RequestValidator
	Analyst      analyst.Analyst
	Generator    report.Generator
	Advisor      analyzer.TechniqueAdvisor
	Prompts      repository.PromptRepository
	Reports      repository.ReportRepository
	Events       observer.Subject
	Gate         *SubmissionGate
	BatchWorkers int
	MaxBatchSize int
}

type analysisService struct {
	validator    *validation.RequestValidator
	analyst      analyst.Analyst
	generator    report.Generator
	advisor      analyzer.TechniqueAdvisor
	prompts      repository.PromptRepository
	reports      repository.ReportRepository
	events       observer.Subject
	gate         *SubmissionGate
	batchWorkers int
	maxBatchSize int
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(deps Dependencies) AnalysisService {
	s := &analysisService{
		validator:    deps.Validator,
		analyst:      deps.Analyst,
		generator:    deps.Generator,
		advisor:      deps.Advisor,
		prompts:      deps.Prompts,
		reports:      deps.Reports,
		events:       deps.Events,
		gate:         deps.Gate,
		batchWorkers: deps.BatchWorkers,
		maxBatchSize: deps.MaxBatchSize,
	}
	if s.validator == nil {
		s.validator = validation.NewRequestValidator(nil)
	}
	if s.advisor == nil {
		s.advisor = analyzer.NewTechniqueAdvisor()
	}
	if s.generator == nil {
		s.generator = report.NewGenerator(analyzer.NewMetricsCalculator(), s.advisor)
	}
	if s.analyst == nil {
		s.analyst = analyst.NewSimulatedAnalyst(s.generator, analyst.DefaultOptions())
	}
	if s.prompts == nil {
		s.prompts = repository.NewPromptRepository(storage.NewMemoryStore(), prompt.StorageKey)
	}
	if s.reports == nil {
		s.reports = repository.NewMemoryReportRepository(0)
	}
	if s.gate == nil {
		s.gate = NewSubmissionGate()
	}
	if s.events == nil {
		s.events = observer.NewEventPublisher()
	}
	if s.maxBatchSize <= 0 {
		s.maxBatchSize = defaultMaxBatchSize
	}
	return s
}

func (s *analysisService) Analyze(ctx context.Context, session string, doc models.AnalysisDocument) (*models.AnalysisResponse, error) {
	start := time.Now()

	req, warnings, err := s.validator.Validate(doc)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, s.techniqueWarnings(req.Metadata.XAITechnique)...)

	release, ok := s.gate.TryAcquire(session)
	if !ok {
		s.events.NotifyObservers(ctx, observer.AnalysisEvent{
			EventType: observer.AnalysisRejected,
			Session:   session,
			Technique: req.Metadata.XAITechnique,
		})
		return nil, apperrors.NewConflictError("an analysis is already in progress for this session", nil)
	}

	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType: observer.AnalysisStarted,
		Session:   session,
		Technique: req.Metadata.XAITechnique,
	})

	text, metrics, err := s.runAnalyst(ctx, req, release)
	if err != nil {
		s.events.NotifyObservers(ctx, observer.AnalysisEvent{
			EventType:      observer.AnalysisFailed,
			Session:        session,
			Technique:      req.Metadata.XAITechnique,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	now := time.Now().UTC()
	record := &models.ReportRecord{
		ID:        reportID(req),
		Report:    text,
		Metrics:   metrics,
		Metadata:  req.Metadata,
		CreatedAt: now,
	}
	if err := s.reports.Save(ctx, record); err != nil {
		return nil, apperrors.NewStorageError("failed to store report", err)
	}

	if err := s.prompts.Save(ctx, req.Prompt); err != nil {
		logger.WithError(err).WithField("session", session).Warn("Failed to persist analysis prompt")
		warnings = append(warnings, "prompt could not be saved")
	}

	elapsed := time.Since(start)
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Session:        session,
		Technique:      req.Metadata.XAITechnique,
		ReportID:       record.ID,
		ProcessingTime: elapsed,
		Success:        true,
	})

	return &models.AnalysisResponse{
		ID:                record.ID,
		Report:            text,
		Metrics:           metrics,
		Warnings:          warnings,
		Timestamp:         now.Format(time.RFC3339),
		ProcessingTimeSec: elapsed.Seconds(),
	}, nil
}

// runAnalyst releases the session gate even when the analyst panics
func (s *analysisService) runAnalyst(ctx context.Context, req models.AnalysisRequest, release func()) (models.AnalysisReport, models.BoxMetrics, error) {
	defer release()
	return s.analyst.Analyze(ctx, req)
}

func (s *analysisService) AnalyzeBatch(ctx context.Context, docs []models.AnalysisDocument) (*models.BatchResponse, error) {
	start := time.Now()

	if len(docs) == 0 {
		return nil, apperrors.NewValidationError("batch must contain at least one request", nil)
	}
	if len(docs) > s.maxBatchSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("batch size %d exceeds the limit of %d", len(docs), s.maxBatchSize), nil)
	}

	results := make([]models.BatchItemResult, len(docs))
	pool := analyzer.NewWorkerPool(s.batchWorkers)
	pool.Start()
	defer pool.Close()

	for i := range docs {
		i := i
		pool.Submit(func() {
			results[i] = s.generateItem(ctx, i, docs[i])
		})
	}
	pool.Wait()

	summary := summarize(results)
	elapsed := time.Since(start)

	logger.WithFields(logrus.Fields{
		"total":           summary.Total,
		"succeeded":       summary.Succeeded,
		"failed":          summary.Failed,
		"processing_time": elapsed,
	}).Debug("Batch generated")

	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.BatchCompleted,
		ProcessingTime: elapsed,
		Success:        summary.Failed == 0,
		Metadata: map[string]interface{}{
			"total":     summary.Total,
			"succeeded": summary.Succeeded,
			"failed":    summary.Failed,
		},
	})

	return &models.BatchResponse{
		Results:           results,
		Summary:           summary,
		ProcessingTimeSec: elapsed.Seconds(),
	}, nil
}

func (s *analysisService) generateItem(ctx context.Context, index int, doc models.AnalysisDocument) models.BatchItemResult {
	item := models.BatchItemResult{Index: index}
	if err := ctx.Err(); err != nil {
		item.Error = apperrors.NewTimeoutError("batch cancelled", err).Error()
		return item
	}

	req, warnings, err := s.validator.Validate(doc)
	if err != nil {
		item.Error = err.Error()
		return item
	}

	text, metrics := s.generator.Generate(req)
	item.ID = reportID(req)
	item.Report = text
	item.Metrics = &metrics
	item.Warnings = append(warnings, s.techniqueWarnings(req.Metadata.XAITechnique)...)
	return item
}

func (s *analysisService) GetPrompt(ctx context.Context) (string, error) {
	text, err := s.prompts.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrPromptNotFound) {
			return "", apperrors.NewNotFoundError("no prompt has been saved", err)
		}
		return "", apperrors.NewStorageError("failed to load prompt", err)
	}
	return text, nil
}

func (s *analysisService) SavePrompt(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return apperrors.NewMissingFieldsError([]string{"prompt"})
	}
	if len(text) > prompt.MaxLength {
		err := apperrors.NewValidationError(
			fmt.Sprintf("Prompt must be at most %d bytes", prompt.MaxLength), nil)
		err.Fields = []string{"prompt"}
		return err
	}
	if err := s.prompts.Save(ctx, text); err != nil {
		return apperrors.NewStorageError("failed to save prompt", err)
	}
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{EventType: observer.PromptSaved, Success: true})
	return nil
}

func (s *analysisService) ClearPrompt(ctx context.Context) error {
	if err := s.prompts.Clear(ctx); err != nil {
		return apperrors.NewStorageError("failed to clear prompt", err)
	}
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{EventType: observer.PromptCleared, Success: true})
	return nil
}

func (s *analysisService) BuildPrompt(fields models.TemplateFields) string {
	return prompt.Build(fields)
}

func (s *analysisService) GetReport(ctx context.Context, id string) (*models.ReportRecord, error) {
	record, err := s.reports.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperrors.NewNotFoundError("report not found", err).WithDetails(id)
		}
		return nil, apperrors.NewStorageError("failed to load report", err)
	}
	return record, nil
}

func (s *analysisService) ListReports(ctx context.Context) ([]*models.ReportRecord, error) {
	records, err := s.reports.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list reports", err)
	}
	return records, nil
}

// techniqueWarnings suggests the nearest known technique for a likely typo
func (s *analysisService) techniqueWarnings(technique string) []string {
	if s.advisor.Known(technique) {
		return nil
	}
	closest, ok := s.advisor.Closest(technique)
	if !ok {
		return nil
	}
	return []string{fmt.Sprintf("unrecognized technique %q; did you mean %q?", technique, closest)}
}

// reportID is a content hash of the validated request, so resubmitting the
// same request yields the same id
func reportID(req models.AnalysisRequest) string {
	data, _ := json.Marshal(req)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

func summarize(results []models.BatchItemResult) models.BatchSummary {
	summary := models.BatchSummary{Total: len(results)}

	var distances, percents []float64
	for _, r := range results {
		if r.Error != "" {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		distances = append(distances, r.Metrics.CenterDistance)
		if r.Metrics.AreaDiffPercent != nil {
			percents = append(percents, *r.Metrics.AreaDiffPercent)
		}
	}

	if len(distances) > 0 {
		mean := stat.Mean(distances, nil)
		summary.MeanCenterDistance = &mean
	}
	if len(percents) > 0 {
		mean := stat.Mean(percents, nil)
		summary.MeanAreaDiffPercent = &mean
	}
	return summary
}
