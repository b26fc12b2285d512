package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go-xai-analyzer/internal/analyst"
	"go-xai-analyzer/internal/analyzer"
	"go-xai-analyzer/internal/config"
	apperrors "go-xai-analyzer/internal/errors"
	"go-xai-analyzer/internal/logger"
	"go-xai-analyzer/internal/observer"
	"go-xai-analyzer/internal/report"
	"go-xai-analyzer/internal/service"
	"go-xai-analyzer/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

const validDocument = `{
	"prompt": "Analyze the discrepancy",
	"groundTruth": {"x1": 0, "y1": 0, "x2": 10, "y2": 10},
	"xaiGenerated": {"x1": 5, "y1": 5, "x2": 15, "y2": 15},
	"metadata": {"xaiTechnique": "gradcam", "modelArchitecture": "ResNet-50", "dataset": "COCO"},
	"images": {"original": "https://example.com/original.png"}
}`

type testServer struct {
	handler   http.Handler
	publisher *observer.EventPublisher
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}

	generator := report.NewGenerator(analyzer.NewMetricsCalculator(), analyzer.NewTechniqueAdvisor())
	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(metrics)

	svc := service.NewAnalysisService(service.Dependencies{
		Analyst:   analyst.NewSimulatedAnalyst(generator, analyst.InstantOptions()),
		Generator: generator,
		Events:    publisher,
	})
	return &testServer{handler: NewHandler(svc, metrics, cfg), publisher: publisher}
}

func (s *testServer) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "available", body["status"])
	assert.Equal(t, version, body["version"])
}

func TestAnalyze_Success(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/analyze", validDocument, SessionHeader, "tab-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.AnalysisResponse
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.ID)
	assert.Contains(t, resp.Report.String(), "# XAI Analysis Report")
	assert.Contains(t, resp.Report.String(), "(0.0% difference)")
	require.NotNil(t, resp.Metrics.AreaDiffPercent)
	assert.Equal(t, 0.0, *resp.Metrics.AreaDiffPercent)

	// The report is now in the history
	w = s.do(http.MethodGet, "/reports/"+resp.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var record models.ReportRecord
	decode(t, w, &record)
	assert.Equal(t, resp.Report, record.Report)

	w = s.do(http.MethodGet, "/reports", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Reports []models.ReportRecord `json:"reports"`
		Count   int                   `json:"count"`
	}
	decode(t, w, &list)
	assert.Equal(t, 1, list.Count)

	// The prompt was persisted
	w = s.do(http.MethodGet, "/prompt", "")
	require.Equal(t, http.StatusOK, w.Code)
	var doc models.PromptDocument
	decode(t, w, &doc)
	assert.Equal(t, "Analyze the discrepancy", doc.Prompt)
}

func TestAnalyze_DegenerateGroundTruthIsNull(t *testing.T) {
	s := newTestServer(t, nil)

	body := strings.Replace(validDocument, `"x2": 10, "y2": 10`, `"x2": 0, "y2": 0`, 1)
	w := s.do(http.MethodPost, "/analyze", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var raw struct {
		Metrics map[string]interface{} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Contains(t, raw.Metrics, "areaDiffPercent")
	assert.Nil(t, raw.Metrics["areaDiffPercent"])
	assert.Contains(t, w.Body.String(), "undefined difference")
}

func TestAnalyze_OverflowingCoordinatesAreRejected(t *testing.T) {
	s := newTestServer(t, nil)

	body := strings.Replace(validDocument, `"x2": 10, "y2": 10`, `"x2": 1e200, "y2": 1e200`, 1)
	w := s.do(http.MethodPost, "/analyze", body)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	var resp models.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, []string{"groundTruth"}, resp.Fields)

	// Nothing was recorded, so the history still encodes
	w = s.do(http.MethodGet, "/reports", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list struct {
		Count int `json:"count"`
	}
	decode(t, w, &list)
	assert.Equal(t, 0, list.Count)
}

func TestAnalyze_MissingFields(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/analyze", `{"groundTruth": {"x1": 0, "y1": 0, "x2": 1, "y2": 1}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, "Bad Request", resp.Error)
	assert.Contains(t, resp.Fields, "prompt")
	assert.Contains(t, resp.Fields, "xaiGenerated.x1")
	assert.Contains(t, resp.Fields, "metadata.dataset")
	assert.Contains(t, resp.Fields, "images")
}

func TestAnalyze_InvalidImage(t *testing.T) {
	s := newTestServer(t, nil)

	body := strings.Replace(validDocument, "https://example.com/original.png", "data:text/plain;base64,aGVsbG8=", 1)
	w := s.do(http.MethodPost, "/analyze", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	decode(t, w, &resp)
	assert.Contains(t, resp.Message, "Please select a valid image file")
	assert.Equal(t, []string{"images.original"}, resp.Fields)
}

func TestAnalyze_MalformedJSON(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/analyze", `{"groundTruth": {"x1": "zero"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request format")
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	cfg := config.Default()
	cfg.MaxRequestBodySize = 64
	s := newTestServer(t, cfg)

	w := s.do(http.MethodPost, "/analyze", validDocument)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAnalyzeBatch(t *testing.T) {
	s := newTestServer(t, nil)

	body := `{"requests": [` + validDocument + `, {"prompt": "x"}]}`
	w := s.do(http.MethodPost, "/analyze/batch", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.BatchResponse
	decode(t, w, &resp)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 1, resp.Summary.Succeeded)
	assert.Equal(t, 1, resp.Summary.Failed)
	assert.NotEmpty(t, resp.Results[1].Error)

	w = s.do(http.MethodPost, "/analyze/batch", `{"requests": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReports_NotFound(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/reports/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPromptLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/prompt", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, "/prompt", `{"prompt": "  my prompt  "}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/prompt", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"prompt": "my prompt"}`, w.Body.String())

	w = s.do(http.MethodPut, "/prompt", `{"prompt": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/prompt", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/prompt", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPromptTemplate(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/prompt/template", `{"xaiTechnique": "Grad-CAM", "gtX1": "12"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var doc models.PromptDocument
	decode(t, w, &doc)
	assert.Contains(t, doc.Prompt, "Grad-CAM")
	assert.Contains(t, doc.Prompt, "[MODEL_ARCHITECTURE]")
	assert.Contains(t, doc.Prompt, "[GT_Y1]")
	assert.NotContains(t, doc.Prompt, "[GT_X1]")
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/analyze", validDocument).Code)
	s.publisher.Wait()

	w := s.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	var m observer.Metrics
	decode(t, w, &m)
	assert.Equal(t, int64(1), m.TotalAnalyses)
	assert.Equal(t, int64(1), m.SuccessfulAnalyses)
	assert.Equal(t, int64(1), m.TechniqueBreakdown["gradcam"])
}

// stubService returns a fixed error from Analyze
type stubService struct {
	service.AnalysisService
	err error
}

func (s stubService) Analyze(context.Context, string, models.AnalysisDocument) (*models.AnalysisResponse, error) {
	return nil, s.err
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"conflict", apperrors.NewConflictError("an analysis is already in progress for this session", nil), http.StatusConflict},
		{"timeout", apperrors.NewTimeoutError("analysis timed out", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"storage", apperrors.NewStorageError("failed to store report", nil), http.StatusServiceUnavailable},
		{"plain deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"unknown", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(stubService{err: tt.err}, observer.NewMetricsObserver(), config.Default())

			req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(validDocument))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, http.StatusText(tt.code), resp.Error)
		})
	}
}

func TestSessionID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/analyze", nil)
	c.Request.RemoteAddr = "192.0.2.1:1234"

	assert.Equal(t, "192.0.2.1", sessionID(c))

	c.Request.Header.Set(SessionHeader, " tab-7 ")
	assert.Equal(t, "tab-7", sessionID(c))
}
