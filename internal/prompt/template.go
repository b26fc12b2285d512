// Package prompt fills the analysis prompt template from raw form values.
package prompt

import (
	"strings"

	"go-xai-analyzer/pkg/models"
)

// MaxLength is the largest prompt, in bytes, that can be persisted
const MaxLength = 1 << 20

const analysisPromptTemplate = `Analyze the discrepancy between the ground truth bounding box and the XAI-generated bounding box for the given coordinates.

Context:
- XAI Technique: {xaiTechnique}
- Model Architecture: {modelArchitecture}
- Dataset: {dataset}

Ground Truth Bounding Box: ({gtX1}, {gtY1}) to ({gtX2}, {gtY2})
XAI Generated Bounding Box: ({xaiX1}, {xaiY1}) to ({xaiX2}, {xaiY2})

Please provide a comprehensive analysis covering:

1. **Quantitative Analysis:**
   - Calculate IoU (Intersection over Union) between the bounding boxes
   - Measure the center point distance
   - Analyze the area difference

2. **Qualitative Analysis:**
   - Identify potential reasons for the discrepancy
   - Consider the limitations of the specific XAI technique
   - Evaluate the impact of model architecture on XAI performance

3. **Technical Factors:**
   - How the XAI technique works and its inherent limitations
   - Model-specific considerations (ResNet-50 vs U-Net)
   - Dataset characteristics that might affect XAI performance

4. **Recommendations:**
   - Suggest improvements for better XAI performance
   - Alternative XAI techniques that might work better
   - Model architecture modifications if applicable

5. **Research Insights:**
   - Relate findings to existing literature on XAI limitations
   - Discuss the trade-off between model performance and explainability

Please provide specific, actionable insights that can help improve the XAI technique's alignment with ground truth annotations.`

// StorageKey is the fixed key the prompt text is persisted under
const StorageKey = "xaiAnalysisPrompt"

type placeholder struct {
	token    string
	fallback string
	value    func(f models.TemplateFields) string
}

var placeholders = []placeholder{
	{"{xaiTechnique}", "[XAI_TECHNIQUE]", func(f models.TemplateFields) string { return f.XAITechnique }},
	{"{modelArchitecture}", "[MODEL_ARCHITECTURE]", func(f models.TemplateFields) string { return f.ModelArchitecture }},
	{"{dataset}", "[DATASET]", func(f models.TemplateFields) string { return f.Dataset }},
	{"{gtX1}", "[GT_X1]", func(f models.TemplateFields) string { return f.GTX1 }},
	{"{gtY1}", "[GT_Y1]", func(f models.TemplateFields) string { return f.GTY1 }},
	{"{gtX2}", "[GT_X2]", func(f models.TemplateFields) string { return f.GTX2 }},
	{"{gtY2}", "[GT_Y2]", func(f models.TemplateFields) string { return f.GTY2 }},
	{"{xaiX1}", "[XAI_X1]", func(f models.TemplateFields) string { return f.XAIX1 }},
	{"{xaiY1}", "[XAI_Y1]", func(f models.TemplateFields) string { return f.XAIY1 }},
	{"{xaiX2}", "[XAI_X2]", func(f models.TemplateFields) string { return f.XAIX2 }},
	{"{xaiY2}", "[XAI_Y2]", func(f models.TemplateFields) string { return f.XAIY2 }},
}

// Build returns the analysis prompt with every placeholder replaced by its form
// value, or by a bracketed marker when the value is empty.
func Build(fields models.TemplateFields) string {
	pairs := make([]string, 0, len(placeholders)*2)
	for _, p := range placeholders {
		v := p.value(fields)
		if v == "" {
			v = p.fallback
		}
		pairs = append(pairs, p.token, v)
	}
	// A single pass keeps values containing "{...}" from being substituted again.
	return strings.NewReplacer(pairs...).Replace(analysisPromptTemplate)
}
