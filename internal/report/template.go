package report

import "text/template"

const reportTemplateText = `# XAI Analysis Report

## Executive Summary
Analysis of {{.Technique}} performance on {{.Dataset}} using {{.Architecture}} architecture.

## Quantitative Analysis

### Bounding Box Metrics
- **Ground Truth Area**: {{.GroundTruthArea}} square units
- **XAI Generated Area**: {{.XAIGeneratedArea}} square units
- **Area Difference**: {{.AreaDiff}} square units ({{.AreaDiffPercent}} difference)
- **Center Point Distance**: {{.CenterDistance}} units

### Coordinate Comparison
**Ground Truth**: ({{.GT.X1}}, {{.GT.Y1}}) to ({{.GT.X2}}, {{.GT.Y2}})
**XAI Generated**: ({{.XAI.X1}}, {{.XAI.Y1}}) to ({{.XAI.X2}}, {{.XAI.Y2}})

## Qualitative Analysis

### Potential Discrepancy Factors

1. **XAI Technique Limitations**
   - {{.Technique}} may struggle with complex spatial relationships
   - Gradient-based methods can be sensitive to model architecture choices
   - Localization accuracy varies based on feature map resolution

2. **Model Architecture Impact**
   - {{.Architecture}} architecture characteristics affect XAI performance
   - Different layer structures produce varying quality explanations
   - Skip connections and residual blocks influence gradient flow

3. **Dataset-Specific Considerations**
   - {{.Dataset}} characteristics may affect XAI technique effectiveness
   - Image resolution and annotation quality impact results
   - Domain-specific features may not be well-captured by current XAI methods

## Technical Recommendations

### Immediate Improvements
1. **Try Alternative XAI Techniques**
   - Consider {{.Alternatives}}
   - Experiment with ensemble methods combining multiple XAI approaches

2. **Model Architecture Adjustments**
   - Fine-tune attention mechanisms for better localization
   - Consider adding auxiliary tasks for improved feature learning
   - Implement multi-scale feature fusion

3. **Preprocessing Enhancements**
   - Normalize input images consistently
   - Apply data augmentation techniques
   - Consider resolution-specific preprocessing

### Long-term Strategies
1. **Research Directions**
   - Investigate attention-based XAI methods
   - Explore self-supervised learning for better feature representations
   - Consider developing domain-specific XAI techniques

2. **Evaluation Framework**
   - Implement comprehensive evaluation metrics
   - Create benchmark datasets for XAI performance
   - Develop automated quality assessment tools

## Conclusion
The observed discrepancy ({{.AreaDiffPercent}} area difference) suggests that while {{.Technique}} provides useful insights, there's room for improvement in localization accuracy. The {{.CenterDistance}} unit center distance indicates moderate spatial alignment issues that should be addressed through the recommended improvements.

**Next Steps**: Implement the suggested alternative techniques and architectural modifications to improve XAI performance and achieve better alignment with ground truth annotations.`

var reportTemplate = template.Must(template.New("report").Option("missingkey=error").Parse(reportTemplateText))

// coordinates are pre-formatted corner values
type coordinates struct {
	X1, Y1, X2, Y2 string
}

// templateData holds every value interpolated into the report, already formatted
type templateData struct {
	Technique    string
	Architecture string
	Dataset      string

	GroundTruthArea  string
	XAIGeneratedArea string
	AreaDiff         string
	AreaDiffPercent  string
	CenterDistance   string

	GT  coordinates
	XAI coordinates

	Alternatives string
}
