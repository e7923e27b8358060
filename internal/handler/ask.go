package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/copilot"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/guard"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/models"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/validate"
)

// AskHandler handles POST /api/v1/ask
type AskHandler struct {
	orch     *copilot.Orchestrator
	sessions *copilot.SessionStore
	source   string
}

func NewAskHandler(orch *copilot.Orchestrator, sessions *copilot.SessionStore, sourceName string) *AskHandler {
	return &AskHandler{orch: orch, sessions: sessions, source: sourceName}
}

// Ask handles POST /api/v1/ask. A missing or unknown session_id starts a
// fresh session whose ID is returned in the response.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		models.WriteError(w, http.StatusBadRequest, "question is required")
		return
	}

	sess, ok := h.sessions.Get(req.SessionID)
	if !ok {
		sess = h.sessions.Create()
	}

	res, err := h.orch.Ask(r.Context(), sess, req.Question)
	if err != nil {
		writeAskError(w, err)
		return
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []validate.Warning{}
	}

	models.WriteJSON(w, http.StatusOK, models.AskResponse{
		Status:      "success",
		SessionID:   sess.ID,
		Question:    req.Question,
		SQL:         string(res.SQL),
		Columns:     res.Table.ColumnNames(),
		Data:        res.Table.AsMaps(),
		RowCount:    res.Table.RowCount(),
		Warnings:    warnings,
		Chart:       res.Chart,
		Explanation: res.Explanation,
		Metadata: models.AskMetadata{
			Source:          h.source,
			Repaired:        res.Repaired,
			ElapsedMs:       res.Elapsed.Milliseconds(),
			ExecutionTimeMs: res.ExecuteMS,
		},
	})
}

// writeAskError maps the pipeline error taxonomy onto HTTP statuses:
// guardrail rejections are the client's problem (422), generation faults
// are upstream (502), execution faults after repair are a bad query (400).
func writeAskError(w http.ResponseWriter, err error) {
	var rej *guard.Rejection
	if errors.As(err, &rej) {
		models.WriteClassifiedError(w, http.StatusUnprocessableEntity, string(rej.Reason), err.Error())
		return
	}
	var genErr *copilot.GenerationError
	if errors.As(err, &genErr) {
		models.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	var execErr *copilot.ExecutionError
	if errors.As(err, &execErr) {
		models.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	models.WriteError(w, http.StatusInternalServerError, err.Error())
}
