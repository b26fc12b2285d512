package models

import "time"

// BoundingBox is an axis-aligned box given by two opposite corners.
// Corner ordering is not enforced: X2 may be less than X1.
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Metadata describes the explanation being evaluated
type Metadata struct {
	XAITechnique      string `json:"xaiTechnique"`
	ModelArchitecture string `json:"modelArchitecture"`
	Dataset           string `json:"dataset"`
}

// Images holds opaque image references (data URLs or http(s) URLs).
// They are validated by the caller and never inspected by the report generator.
type Images struct {
	Original string `json:"original,omitempty"`
	Heatmap  string `json:"heatmap,omitempty"`
}

// AnalysisRequest is a validated request for a discrepancy report
type AnalysisRequest struct {
	Prompt       string      `json:"prompt"`
	GroundTruth  BoundingBox `json:"groundTruth"`
	XAIGenerated BoundingBox `json:"xaiGenerated"`
	Metadata     Metadata    `json:"metadata"`
	Images       Images      `json:"images"`
}

// AnalysisReport is the formatted multi-section report text
type AnalysisReport string

// String returns the report text
func (r AnalysisReport) String() string {
	return string(r)
}

// Point is a 2-D coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoxMetrics holds the geometric comparison of two boxes.
// AreaDiffPercent is nil when the ground-truth area is zero and IoU is nil
// when both boxes are degenerate.
type BoxMetrics struct {
	GroundTruthArea    float64  `json:"groundTruthArea"`
	XAIGeneratedArea   float64  `json:"xaiGeneratedArea"`
	AreaDiff           float64  `json:"areaDiff"`
	AreaDiffPercent    *float64 `json:"areaDiffPercent"`
	GroundTruthCenter  Point    `json:"groundTruthCenter"`
	XAIGeneratedCenter Point    `json:"xaiGeneratedCenter"`
	CenterDistance     float64  `json:"centerDistance"`
	IoU                *float64 `json:"iou"`
}

// ReportRecord is a generated report kept in the history
type ReportRecord struct {
	ID        string         `json:"id"`
	Report    AnalysisReport `json:"report"`
	Metrics   BoxMetrics     `json:"metrics"`
	Metadata  Metadata       `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
}
