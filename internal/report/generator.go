// Package report renders the XAI discrepancy report. Generation is a pure
// function of the request: the same request always yields the same bytes and
// image payloads are never read.
package report

import (
	"math"
	"strconv"
	"strings"

	"go-xai-analyzer/internal/analyzer"
	"go-xai-analyzer/pkg/models"
)

// Undefined replaces any number that has no finite value, such as the area
// difference percentage of a zero-area ground truth box.
const Undefined = "undefined"

// Generator renders reports from analysis requests
type Generator interface {
	Generate(req models.AnalysisRequest) (models.AnalysisReport, models.BoxMetrics)
}

type generator struct {
	calculator analyzer.MetricsCalculator
	advisor    analyzer.TechniqueAdvisor
}

// NewGenerator creates a report generator with the given collaborators
func NewGenerator(calculator analyzer.MetricsCalculator, advisor analyzer.TechniqueAdvisor) Generator {
	return &generator{
		calculator: calculator,
		advisor:    advisor,
	}
}

var defaultGenerator = NewGenerator(analyzer.NewMetricsCalculator(), analyzer.NewTechniqueAdvisor())

// GenerateReport renders the report with the default metrics and technique tables
func GenerateReport(req models.AnalysisRequest) models.AnalysisReport {
	r, _ := defaultGenerator.Generate(req)
	return r
}

// Generate computes the box metrics and renders the report text
func (g *generator) Generate(req models.AnalysisRequest) (models.AnalysisReport, models.BoxMetrics) {
	m := g.calculator.Calculate(req.GroundTruth, req.XAIGenerated)

	data := templateData{
		Technique:        req.Metadata.XAITechnique,
		Architecture:     req.Metadata.ModelArchitecture,
		Dataset:          req.Metadata.Dataset,
		GroundTruthArea:  formatFixed(m.GroundTruthArea, 2),
		XAIGeneratedArea: formatFixed(m.XAIGeneratedArea, 2),
		AreaDiff:         formatFixed(m.AreaDiff, 2),
		AreaDiffPercent:  formatPercent(m.AreaDiffPercent),
		CenterDistance:   formatFixed(m.CenterDistance, 2),
		GT:               formatCoordinates(req.GroundTruth),
		XAI:              formatCoordinates(req.XAIGenerated),
		Alternatives:     g.advisor.Alternatives(req.Metadata.XAITechnique),
	}

	var b strings.Builder
	// Execute only fails on writer errors or missing keys; neither can happen here.
	_ = reportTemplate.Execute(&b, data)
	return models.AnalysisReport(b.String()), m
}

// formatFixed renders v with prec decimals, or Undefined when v is not finite
func formatFixed(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func formatPercent(p *float64) string {
	if p == nil {
		return Undefined
	}
	s := formatFixed(*p, 1)
	if s == Undefined {
		return s
	}
	return s + "%"
}

// formatCoordinate prints the shortest decimal that round-trips, without a
// negative sign on zero. Magnitudes of at least 1e21 or below 1e-6 switch to
// exponent form with an unpadded exponent, as in "1e+21" and "1.5e-7".
func formatCoordinate(v float64) string {
	if v == 0 {
		return "0"
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	if abs := math.Abs(v); abs >= 1e21 || abs < 1e-6 {
		return formatExponent(v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatExponent(v float64) string {
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}

func formatCoordinates(b models.BoundingBox) coordinates {
	return coordinates{
		X1: formatCoordinate(b.X1),
		Y1: formatCoordinate(b.Y1),
		X2: formatCoordinate(b.X2),
		Y2: formatCoordinate(b.Y2),
	}
}
