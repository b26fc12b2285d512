package models

// BoxInput is a bounding box as submitted by a client. Pointers distinguish a
// missing coordinate from an explicit zero.
type BoxInput struct {
	X1 *float64 `json:"x1"`
	Y1 *float64 `json:"y1"`
	X2 *float64 `json:"x2"`
	Y2 *float64 `json:"y2"`
}

// AnalysisDocument is the request document accepted by the API and the CLI
type AnalysisDocument struct {
	Prompt       string   `json:"prompt"`
	GroundTruth  BoxInput `json:"groundTruth"`
	XAIGenerated BoxInput `json:"xaiGenerated"`
	Metadata     Metadata `json:"metadata"`
	Images       Images   `json:"images"`
}

// AnalysisResponse represents the response from a single analysis
type AnalysisResponse struct {
	ID                string         `json:"id"`
	Report            AnalysisReport `json:"report"`
	Metrics           BoxMetrics     `json:"metrics"`
	Warnings          []string       `json:"warnings,omitempty"`
	Timestamp         string         `json:"timestamp"`
	ProcessingTimeSec float64        `json:"processingTimeSec"`
}

// BatchRequest carries several analysis documents
type BatchRequest struct {
	Requests []AnalysisDocument `json:"requests"`
}

// BatchItemResult is the outcome for one document of a batch
type BatchItemResult struct {
	Index    int            `json:"index"`
	ID       string         `json:"id,omitempty"`
	Report   AnalysisReport `json:"report,omitempty"`
	Metrics  *BoxMetrics    `json:"metrics,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// BatchSummary aggregates the successful items of a batch
type BatchSummary struct {
	Total               int      `json:"total"`
	Succeeded           int      `json:"succeeded"`
	Failed              int      `json:"failed"`
	MeanCenterDistance  *float64 `json:"meanCenterDistance"`
	MeanAreaDiffPercent *float64 `json:"meanAreaDiffPercent"`
}

// BatchResponse represents the response from a batch analysis
type BatchResponse struct {
	Results           []BatchItemResult `json:"results"`
	Summary           BatchSummary      `json:"summary"`
	ProcessingTimeSec float64           `json:"processingTimeSec"`
}

// PromptDocument carries the persisted prompt text
type PromptDocument struct {
	Prompt string `json:"prompt"`
}

// TemplateFields are the raw form values used to fill the prompt template.
// Empty values are replaced with bracketed placeholders.
type TemplateFields struct {
	XAITechnique      string `json:"xaiTechnique"`
	ModelArchitecture string `json:"modelArchitecture"`
	Dataset           string `json:"dataset"`
	GTX1              string `json:"gtX1"`
	GTY1              string `json:"gtY1"`
	GTX2              string `json:"gtX2"`
	GTY2              string `json:"gtY2"`
	XAIX1             string `json:"xaiX1"`
	XAIY1             string `json:"xaiY1"`
	XAIX2             string `json:"xaiX2"`
	XAIY2             string `json:"xaiY2"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}
