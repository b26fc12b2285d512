// Package analyst is the boundary where a language model would produce the
// analysis. The simulated analyst waits a fixed delay and then renders the
// deterministic report.
package analyst

import (
	"context"
	"errors"
	"time"

	apperrors "go-xai-analyzer/internal/errors"
	"go-xai-analyzer/internal/report"
	"go-xai-analyzer/pkg/models"
)

// Analyst produces a report for a validated request
type Analyst interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisReport, models.BoxMetrics, error)
}

// SimulatedAnalyst stands in for a language model call
type SimulatedAnalyst struct {
	generator report.Generator
	options   Options
}

// NewSimulatedAnalyst creates an analyst that renders reports with the given generator
func NewSimulatedAnalyst(generator report.Generator, options Options) *SimulatedAnalyst {
	options.Validate()
	return &SimulatedAnalyst{
		generator: generator,
		options:   options,
	}
}

// Delay returns the configured latency
func (a *SimulatedAnalyst) Delay() time.Duration {
	return a.options.Delay
}

// Analyze waits for the simulated latency and generates the report. A
// cancelled or expired context aborts the wait with a timeout error.
func (a *SimulatedAnalyst) Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisReport, models.BoxMetrics, error) {
	if a.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.options.Timeout)
		defer cancel()
	}

	if err := wait(ctx, a.options.Delay); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", models.BoxMetrics{}, apperrors.NewTimeoutError("analysis timed out", err)
		}
		return "", models.BoxMetrics{}, apperrors.NewTimeoutError("analysis cancelled", err)
	}

	r, m := a.generator.Generate(req)
	return r, m, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
