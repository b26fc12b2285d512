package prompt

import (
	"strings"
	"testing"

	"go-xai-analyzer/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestBuild_AllFieldsEmpty(t *testing.T) {
	out := Build(models.TemplateFields{})

	assert.Contains(t, out, "- XAI Technique: [XAI_TECHNIQUE]")
	assert.Contains(t, out, "- Model Architecture: [MODEL_ARCHITECTURE]")
	assert.Contains(t, out, "- Dataset: [DATASET]")
	assert.Contains(t, out, "Ground Truth Bounding Box: ([GT_X1], [GT_Y1]) to ([GT_X2], [GT_Y2])")
	assert.Contains(t, out, "XAI Generated Bounding Box: ([XAI_X1], [XAI_Y1]) to ([XAI_X2], [XAI_Y2])")
	assert.False(t, strings.Contains(out, "{"), "no placeholder should survive")
}

func TestBuild_WithValues(t *testing.T) {
	out := Build(models.TemplateFields{
		XAITechnique:      "gradcam",
		ModelArchitecture: "U-Net",
		Dataset:           "ISIC 2018",
		GTX1:              "12",
		GTY1:              "8.5",
		GTX2:              "140",
		GTY2:              "96",
		XAIX1:             "20",
	})

	assert.Contains(t, out, "- XAI Technique: gradcam")
	assert.Contains(t, out, "- Model Architecture: U-Net")
	assert.Contains(t, out, "- Dataset: ISIC 2018")
	assert.Contains(t, out, "Ground Truth Bounding Box: (12, 8.5) to (140, 96)")
	assert.Contains(t, out, "XAI Generated Bounding Box: (20, [XAI_Y1]) to ([XAI_X2], [XAI_Y2])")
	assert.True(t, strings.HasPrefix(out, "Analyze the discrepancy between the ground truth bounding box"))
}

func TestBuild_ValuesAreNotReexpanded(t *testing.T) {
	out := Build(models.TemplateFields{XAITechnique: "{dataset}", Dataset: "COCO"})

	assert.Contains(t, out, "- XAI Technique: {dataset}")
	assert.Contains(t, out, "- Dataset: COCO")
}
