package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"go-xai-analyzer/internal/analyzer"
	apperrors "go-xai-analyzer/internal/errors"
	"go-xai-analyzer/internal/prompt"
	"go-xai-analyzer/pkg/models"
)

// RequestValidator turns a submitted document into a validated AnalysisRequest
type RequestValidator struct {
	images *ImageValidator
}

// NewRequestValidator creates a request validator using the given image validator
func NewRequestValidator(images *ImageValidator) *RequestValidator {
	if images == nil {
		images = NewImageValidator()
	}
	return &RequestValidator{images: images}
}

// Validate reports every missing field at once. Negative coordinates are
// accepted and returned as warnings.
func (v *RequestValidator) Validate(doc models.AnalysisDocument) (models.AnalysisRequest, []string, error) {
	var missing []string

	if strings.TrimSpace(doc.Prompt) == "" {
		missing = append(missing, "prompt")
	}

	gt, gtMissing := collectBox("groundTruth", doc.GroundTruth)
	xai, xaiMissing := collectBox("xaiGenerated", doc.XAIGenerated)
	missing = append(missing, gtMissing...)
	missing = append(missing, xaiMissing...)

	metadata := []struct {
		name  string
		value string
	}{
		{"metadata.xaiTechnique", doc.Metadata.XAITechnique},
		{"metadata.modelArchitecture", doc.Metadata.ModelArchitecture},
		{"metadata.dataset", doc.Metadata.Dataset},
	}
	for _, m := range metadata {
		if strings.TrimSpace(m.value) == "" {
			missing = append(missing, m.name)
		}
	}

	original := imageReference(doc.Images.Original)
	heatmap := imageReference(doc.Images.Heatmap)
	if original == "" && heatmap == "" {
		missing = append(missing, "images")
	}

	if len(missing) > 0 {
		return models.AnalysisRequest{}, nil, apperrors.NewMissingFieldsError(missing)
	}

	if len(strings.TrimSpace(doc.Prompt)) > prompt.MaxLength {
		err := apperrors.NewValidationError(
			fmt.Sprintf("Prompt must be at most %d bytes", prompt.MaxLength), nil)
		err.Fields = []string{"prompt"}
		return models.AnalysisRequest{}, nil, err
	}

	if err := checkFinite("groundTruth", gt); err != nil {
		return models.AnalysisRequest{}, nil, err
	}
	if err := checkFinite("xaiGenerated", xai); err != nil {
		return models.AnalysisRequest{}, nil, err
	}
	if err := checkComparable(gt, xai); err != nil {
		return models.AnalysisRequest{}, nil, err
	}

	images := []struct {
		name string
		ref  string
	}{
		{"images.original", original},
		{"images.heatmap", heatmap},
	}
	for _, img := range images {
		if img.ref == "" {
			continue
		}
		if err := v.images.ValidateImageReference(img.ref); err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				appErr.Fields = []string{img.name}
				return models.AnalysisRequest{}, nil, appErr
			}
			return models.AnalysisRequest{}, nil, fmt.Errorf("%s: %w", img.name, err)
		}
	}

	req := models.AnalysisRequest{
		Prompt:       strings.TrimSpace(doc.Prompt),
		GroundTruth:  gt,
		XAIGenerated: xai,
		Metadata:     doc.Metadata,
		Images:       models.Images{Original: original, Heatmap: heatmap},
	}

	var warnings []string
	warnings = append(warnings, negativeWarnings("groundTruth", gt)...)
	warnings = append(warnings, negativeWarnings("xaiGenerated", xai)...)

	return req, warnings, nil
}

// emptyDataURL is what a browser reports for a cleared image input
const emptyDataURL = "data:,"

func imageReference(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == emptyDataURL {
		return ""
	}
	return ref
}

func corners(b models.BoundingBox) [4]float64 {
	return [4]float64{b.X1, b.Y1, b.X2, b.Y2}
}

var cornerNames = [4]string{"x1", "y1", "x2", "y2"}

func collectBox(prefix string, in models.BoxInput) (models.BoundingBox, []string) {
	values := [4]*float64{in.X1, in.Y1, in.X2, in.Y2}
	var out [4]float64
	var missing []string
	for i, p := range values {
		if p == nil {
			missing = append(missing, prefix+"."+cornerNames[i])
			continue
		}
		out[i] = *p
	}
	return models.BoundingBox{X1: out[0], Y1: out[1], X2: out[2], Y2: out[3]}, missing
}

func checkFinite(prefix string, b models.BoundingBox) error {
	for i, c := range corners(b) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return apperrors.NewValidationError(
				fmt.Sprintf("%s.%s must be a finite number", prefix, cornerNames[i]), nil)
		}
	}
	return nil
}

// checkComparable rejects finite coordinates whose areas, centers or distance
// overflow float64, since those metrics could not be encoded.
func checkComparable(gt, xai models.BoundingBox) error {
	m := analyzer.NewMetricsCalculator().Calculate(gt, xai)
	derived := []struct {
		field string
		value float64
	}{
		{"groundTruth", m.GroundTruthArea},
		{"groundTruth", m.GroundTruthCenter.X},
		{"groundTruth", m.GroundTruthCenter.Y},
		{"xaiGenerated", m.XAIGeneratedArea},
		{"xaiGenerated", m.XAIGeneratedCenter.X},
		{"xaiGenerated", m.XAIGeneratedCenter.Y},
		{"xaiGenerated", m.AreaDiff},
		{"xaiGenerated", m.CenterDistance},
	}
	for _, d := range derived {
		if math.IsNaN(d.value) || math.IsInf(d.value, 0) {
			err := apperrors.NewValidationError("coordinates are too large to compare", nil)
			err.Fields = []string{d.field}
			return err
		}
	}
	return nil
}

func negativeWarnings(prefix string, b models.BoundingBox) []string {
	var warnings []string
	for i, c := range corners(b) {
		if c < 0 {
			warnings = append(warnings, fmt.Sprintf("%s.%s is negative (%g)", prefix, cornerNames[i], c))
		}
	}
	return warnings
}
