package analyzer

import "go-xai-analyzer/pkg/models"

// MetricsCalculator handles bounding box metrics computation
type MetricsCalculator interface {
	Calculate(groundTruth, xaiGenerated models.BoundingBox) models.BoxMetrics
}

// TechniqueAdvisor maps an XAI technique to alternative techniques
type TechniqueAdvisor interface {
	// Alternatives returns the suggestion text, falling back to a generic one
	Alternatives(technique string) string

	// Known reports whether the technique has a dedicated suggestion
	Known(technique string) bool

	// Closest returns the nearest known technique key for an unknown technique
	Closest(technique string) (string, bool)
}
