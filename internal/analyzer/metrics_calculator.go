package analyzer

import (
	"math"

	"go-xai-analyzer/pkg/models"

	"gonum.org/v1/gonum/spatial/r2"
)

// metricsCalculator implements MetricsCalculator on top of gonum's r2 vectors
type metricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() MetricsCalculator {
	return &metricsCalculator{}
}

// Calculate compares the ground-truth box with the XAI generated box
func (mc *metricsCalculator) Calculate(gt, xai models.BoundingBox) models.BoxMetrics {
	gtArea := Area(gt)
	xaiArea := Area(xai)
	areaDiff := math.Abs(gtArea - xaiArea)

	gtCenter := Center(gt)
	xaiCenter := Center(xai)

	return models.BoxMetrics{
		GroundTruthArea:    gtArea,
		XAIGeneratedArea:   xaiArea,
		AreaDiff:           areaDiff,
		AreaDiffPercent:    AreaDiffPercent(gtArea, xaiArea),
		GroundTruthCenter:  models.Point{X: gtCenter.X, Y: gtCenter.Y},
		XAIGeneratedCenter: models.Point{X: xaiCenter.X, Y: xaiCenter.Y},
		CenterDistance:     r2.Norm(r2.Sub(gtCenter, xaiCenter)),
		IoU:                IntersectionOverUnion(gt, xai),
	}
}

// Area returns |width × height|, so it does not depend on corner ordering
func Area(b models.BoundingBox) float64 {
	return math.Abs((b.X2 - b.X1) * (b.Y2 - b.Y1))
}

// Center returns the midpoint of the two corners
func Center(b models.BoundingBox) r2.Vec {
	return r2.Scale(0.5, r2.Add(r2.Vec{X: b.X1, Y: b.Y1}, r2.Vec{X: b.X2, Y: b.Y2}))
}

// AreaDiffPercent returns |gt - xai| / gt × 100, or nil when the ground-truth
// area is zero or the result is not finite.
func AreaDiffPercent(gtArea, xaiArea float64) *float64 {
	if gtArea == 0 {
		return nil
	}
	pct := math.Abs(gtArea-xaiArea) / gtArea * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return nil
	}
	return &pct
}

// IntersectionOverUnion returns the overlap ratio of the two boxes, or nil
// when the union is empty.
func IntersectionOverUnion(a, b models.BoundingBox) *float64 {
	ax1, ax2 := math.Min(a.X1, a.X2), math.Max(a.X1, a.X2)
	ay1, ay2 := math.Min(a.Y1, a.Y2), math.Max(a.Y1, a.Y2)
	bx1, bx2 := math.Min(b.X1, b.X2), math.Max(b.X1, b.X2)
	by1, by2 := math.Min(b.Y1, b.Y2), math.Max(b.Y1, b.Y2)

	w := math.Max(0, math.Min(ax2, bx2)-math.Max(ax1, bx1))
	h := math.Max(0, math.Min(ay2, by2)-math.Max(ay1, by1))
	intersection := w * h

	union := Area(a) + Area(b) - intersection
	if union <= 0 || math.IsNaN(union) || math.IsInf(union, 0) {
		return nil
	}
	iou := intersection / union
	return &iou
}
