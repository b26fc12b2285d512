package analyzer

import (
	"math"
	"testing"

	"go-xai-analyzer/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

const tolerance = 1e-9

func box(x1, y1, x2, y2 float64) models.BoundingBox {
	return models.BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func TestCalculate_ReferenceBoxes(t *testing.T) {
	m := NewMetricsCalculator().Calculate(box(0, 0, 10, 10), box(5, 5, 15, 15))

	assert.Equal(t, 100.0, m.GroundTruthArea)
	assert.Equal(t, 100.0, m.XAIGeneratedArea)
	assert.Equal(t, 0.0, m.AreaDiff)
	require.NotNil(t, m.AreaDiffPercent)
	assert.Equal(t, 0.0, *m.AreaDiffPercent)
	assert.True(t, scalar.EqualWithinAbs(math.Sqrt(50), m.CenterDistance, tolerance))
	assert.Equal(t, models.Point{X: 5, Y: 5}, m.GroundTruthCenter)
	assert.Equal(t, models.Point{X: 10, Y: 10}, m.XAIGeneratedCenter)

	require.NotNil(t, m.IoU)
	assert.True(t, scalar.EqualWithinAbs(25.0/175.0, *m.IoU, tolerance))
}

func TestCalculate_EqualBoxes(t *testing.T) {
	calc := NewMetricsCalculator()
	boxes := []models.BoundingBox{
		box(0, 0, 10, 10),
		box(-3.5, 2, 7.25, -9),
		box(4, 4, 4, 4),
	}

	for _, b := range boxes {
		m := calc.Calculate(b, b)
		assert.Equal(t, 0.0, m.CenterDistance, "box %+v", b)
		assert.Equal(t, 0.0, m.AreaDiff, "box %+v", b)
	}
}

func TestArea_CornerOrderInvariant(t *testing.T) {
	b := box(1, 2, 11, 7)
	want := 50.0

	variants := []models.BoundingBox{
		b,
		box(b.X2, b.Y1, b.X1, b.Y2),
		box(b.X1, b.Y2, b.X2, b.Y1),
		box(b.X2, b.Y2, b.X1, b.Y1),
	}
	for _, v := range variants {
		assert.Equal(t, want, Area(v), "box %+v", v)
	}
}

func TestAreaDiffPercent_DependsOnGroundTruth(t *testing.T) {
	calc := NewMetricsCalculator()
	small, large := box(0, 0, 10, 10), box(0, 0, 20, 10)

	forward := calc.Calculate(small, large)
	backward := calc.Calculate(large, small)

	require.NotNil(t, forward.AreaDiffPercent)
	require.NotNil(t, backward.AreaDiffPercent)
	assert.Equal(t, 100.0, *forward.AreaDiffPercent)
	assert.Equal(t, 50.0, *backward.AreaDiffPercent)
	assert.Equal(t, forward.AreaDiff, backward.AreaDiff)
}

func TestAreaDiffPercent_DegenerateGroundTruth(t *testing.T) {
	m := NewMetricsCalculator().Calculate(box(0, 0, 0, 0), box(5, 5, 15, 15))

	assert.Equal(t, 0.0, m.GroundTruthArea)
	assert.Equal(t, 100.0, m.AreaDiff)
	assert.Nil(t, m.AreaDiffPercent)

	// zero against zero is still undefined rather than NaN
	m = NewMetricsCalculator().Calculate(box(0, 0, 0, 5), box(1, 1, 1, 1))
	assert.Nil(t, m.AreaDiffPercent)
	assert.Nil(t, m.IoU)
}

func TestIntersectionOverUnion(t *testing.T) {
	tests := []struct {
		name string
		a, b models.BoundingBox
		want float64
	}{
		{"identical", box(0, 0, 10, 10), box(0, 0, 10, 10), 1},
		{"disjoint", box(0, 0, 10, 10), box(20, 20, 30, 30), 0},
		{"touching edges", box(0, 0, 10, 10), box(10, 0, 20, 10), 0},
		{"contained", box(0, 0, 10, 10), box(2, 2, 7, 7), 0.25},
		{"reversed corners", box(10, 10, 0, 0), box(15, 15, 5, 5), 25.0 / 175.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IntersectionOverUnion(tt.a, tt.b)
			require.NotNil(t, got)
			assert.True(t, scalar.EqualWithinAbs(tt.want, *got, tolerance), "want %f got %f", tt.want, *got)
		})
	}
}
