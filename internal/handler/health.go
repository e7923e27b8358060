package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/datasource"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/models"
)

const version = "1.0.0"

// HealthHandler handles GET /health with a data source connectivity check
type HealthHandler struct {
	src        datasource.Source
	llmEnabled bool
}

func NewHealthHandler(src datasource.Source, llmEnabled bool) *HealthHandler {
	return &HealthHandler{src: src, llmEnabled: llmEnabled}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	overallStatus := "healthy"

	// Short timeout so health checks never block
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.src != nil {
		if err := h.src.Ping(ctx); err != nil {
			checks[h.src.Name()] = "unavailable: " + err.Error()
			overallStatus = "degraded"
		} else {
			checks[h.src.Name()] = "ok"
		}
	} else {
		checks["datasource"] = "disabled"
		overallStatus = "degraded"
	}

	if h.llmEnabled {
		checks["llm"] = "configured"
	} else {
		checks["llm"] = "disabled"
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: version,
		Checks:  checks,
	})
}
