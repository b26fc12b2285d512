package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-xai-analyzer/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContainer_Memory(t *testing.T) {
	cfg := config.Default()
	cfg.AnalysisDelay = 0

	c, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.Same(t, cfg, c.Config())
	assert.NotNil(t, c.Service())
	assert.NotNil(t, c.Metrics())

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewContainer_Errors(t *testing.T) {
	_, err := NewContainer(context.Background(), nil)
	assert.Error(t, err)

	cfg := config.Default()
	cfg.PromptStore = config.PromptStoreAzure
	_, err = NewContainer(context.Background(), cfg)
	assert.Error(t, err)
}
