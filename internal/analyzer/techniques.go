package analyzer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/arbovm/levenshtein"
)

// FallbackAlternatives is suggested for techniques without a dedicated entry
const FallbackAlternatives = "other gradient-based or perturbation-based methods"

// maxHintDistance bounds how far a misspelling may be from a known key
const maxHintDistance = 2

// alternativeTechniques is read-only after package initialization
var alternativeTechniques = map[string]string{
	"gradcam":       "Grad-CAM++, Eigen-CAM, or Guided Grad-CAM",
	"gradcam++":     "Eigen-CAM, LIME, or Integrated Gradients",
	"lime":          "Grad-CAM, SHAP, or Kernel SHAP",
	"eigencam":      "Grad-CAM, Grad-CAM++, or Guided Backpropagation",
	"guidedgradcam": "Eigen-CAM, LIME, or Integrated Gradients",
}

// techniqueAdvisor implements TechniqueAdvisor over the fixed mapping
type techniqueAdvisor struct {
	keys []string
}

// NewTechniqueAdvisor creates a technique advisor
func NewTechniqueAdvisor() TechniqueAdvisor {
	return &techniqueAdvisor{keys: KnownTechniques()}
}

// KnownTechniques returns the normalized keys with a dedicated suggestion, sorted
func KnownTechniques() []string {
	keys := make([]string, 0, len(alternativeTechniques))
	for k := range alternativeTechniques {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeTechnique lowercases the identifier and drops whitespace, hyphens and
// underscores, so "Grad-CAM++" and "grad_cam++" both become "gradcam++".
func NormalizeTechnique(technique string) string {
	var b strings.Builder
	b.Grow(len(technique))
	for _, r := range strings.ToLower(technique) {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (ta *techniqueAdvisor) Alternatives(technique string) string {
	if alt, ok := alternativeTechniques[NormalizeTechnique(technique)]; ok {
		return alt
	}
	return FallbackAlternatives
}

func (ta *techniqueAdvisor) Known(technique string) bool {
	_, ok := alternativeTechniques[NormalizeTechnique(technique)]
	return ok
}

func (ta *techniqueAdvisor) Closest(technique string) (string, bool) {
	key := NormalizeTechnique(technique)
	if key == "" {
		return "", false
	}
	if _, ok := alternativeTechniques[key]; ok {
		return key, true
	}

	best, bestDist := "", maxHintDistance+1
	for _, k := range ta.keys {
		if d := levenshtein.Distance(key, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	if bestDist > maxHintDistance {
		return "", false
	}
	return best, true
}
