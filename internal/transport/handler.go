package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-xai-analyzer/internal/config"
	apperrors "go-xai-analyzer/internal/errors"
	"go-xai-analyzer/internal/logger"
	"go-xai-analyzer/internal/observer"
	"go-xai-analyzer/internal/service"
	"go-xai-analyzer/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SessionHeader identifies the caller for the one-analysis-at-a-time rule.
// Requests without it are keyed by client IP.
const SessionHeader = "X-Session-ID"

const version = "1.0.0"

type handler struct {
	service service.AnalysisService
	metrics *observer.MetricsObserver
	cfg     *config.Config
}

func NewHandler(svc service.AnalysisService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.New()

	h := &handler{service: svc, metrics: metrics, cfg: cfg}

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.POST("/analyze", h.analyze)
	r.POST("/analyze/batch", h.analyzeBatch)
	r.GET("/reports", h.listReports)
	r.GET("/reports/:id", h.getReport)
	r.GET("/prompt", h.getPrompt)
	r.PUT("/prompt", h.savePrompt)
	r.DELETE("/prompt", h.clearPrompt)
	r.POST("/prompt/template", h.buildPrompt)
	r.GET("/metrics", h.getMetrics)

	return r
}

func (h *handler) analyze(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var doc models.AnalysisDocument
	if !bindJSON(c, &doc) {
		return
	}

	session := sessionID(c)
	logger.WithFields(logrus.Fields{
		"session":   session,
		"technique": doc.Metadata.XAITechnique,
	}).Debug("Processing XAI analysis request")

	resp, err := h.service.Analyze(ctx, session, doc)
	if err != nil {
		respondError(c, "analysis failed", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"session":            session,
		"report_id":          resp.ID,
		"technique":          doc.Metadata.XAITechnique,
		"processing_time_ms": int64(resp.ProcessingTimeSec * 1000),
		"warnings":           len(resp.Warnings),
	}).Info("XAI analysis completed successfully")

	c.JSON(http.StatusOK, resp)
}

func (h *handler) analyzeBatch(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.BatchRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.AnalyzeBatch(ctx, req.Requests)
	if err != nil {
		respondError(c, "batch analysis failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) listReports(c *gin.Context) {
	records, err := h.service.ListReports(c.Request.Context())
	if err != nil {
		respondError(c, "failed to list reports", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reports": records,
		"count":   len(records),
	})
}

func (h *handler) getReport(c *gin.Context) {
	record, err := h.service.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "failed to get report", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *handler) getPrompt(c *gin.Context) {
	text, err := h.service.GetPrompt(c.Request.Context())
	if err != nil {
		respondError(c, "failed to get prompt", err)
		return
	}
	c.JSON(http.StatusOK, models.PromptDocument{Prompt: text})
}

func (h *handler) savePrompt(c *gin.Context) {
	var doc models.PromptDocument
	if !bindJSON(c, &doc) {
		return
	}
	if err := h.service.SavePrompt(c.Request.Context(), doc.Prompt); err != nil {
		respondError(c, "failed to save prompt", err)
		return
	}
	c.JSON(http.StatusOK, models.PromptDocument{Prompt: strings.TrimSpace(doc.Prompt)})
}

func (h *handler) clearPrompt(c *gin.Context) {
	if err := h.service.ClearPrompt(c.Request.Context()); err != nil {
		respondError(c, "failed to clear prompt", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) buildPrompt(c *gin.Context) {
	var fields models.TemplateFields
	if !bindJSON(c, &fields) {
		return
	}
	c.JSON(http.StatusOK, models.PromptDocument{Prompt: h.service.BuildPrompt(fields)})
}

func (h *handler) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.GetMetrics())
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func sessionID(c *gin.Context) string {
	if session := strings.TrimSpace(c.GetHeader(SessionHeader)); session != "" {
		return session
	}
	return c.ClientIP()
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondErrorWithCode(c, http.StatusRequestEntityTooLarge, "request body too large", err)
			return false
		}
		respondErrorWithCode(c, http.StatusBadRequest, "invalid request format", err)
		return false
	}
	return true
}

// Middleware and helper functions
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}).Debug("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondErrorWithCode(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, message string, err error) {
	respondErrorWithCode(c, determineStatusCode(err), message, err)
}

func respondErrorWithCode(c *gin.Context, code int, message string, err error) {
	fields := logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}
	// Client mistakes are not server errors
	if code >= http.StatusInternalServerError {
		logger.WithError(err).WithFields(fields).Error("Request failed")
	} else {
		logger.WithError(err).WithFields(fields).Warn("Request rejected")
	}

	resp := models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		if appErr.Details != "" {
			resp.Message += " (" + appErr.Details + ")"
		}
		resp.Fields = appErr.Fields
	}
	c.AbortWithStatusJSON(code, resp)
}
