package handler

import (
	"net/http"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/copilot"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/models"
)

// SchemaHandler handles GET /api/v1/schema
type SchemaHandler struct {
	orch   *copilot.Orchestrator
	source string
	kpis   string
}

func NewSchemaHandler(orch *copilot.Orchestrator, sourceName, kpis string) *SchemaHandler {
	return &SchemaHandler{orch: orch, source: sourceName, kpis: kpis}
}

// Schema handles GET /api/v1/schema. Pass ?refresh=1 to bypass the cache.
func (h *SchemaHandler) Schema(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") != "" {
		h.orch.InvalidateSchema()
	}

	schema, err := h.orch.Schema(r.Context())
	if err != nil {
		models.WriteError(w, http.StatusServiceUnavailable, "schema unavailable: "+err.Error())
		return
	}

	models.WriteJSON(w, http.StatusOK, models.SchemaResponse{
		Status: "success",
		Source: h.source,
		Schema: schema,
		KPIs:   h.kpis,
	})
}
