package handler

import (
	"net/http"
	"time"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/copilot"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/models"
	"github.com/go-chi/chi/v5"
)

// SessionsHandler handles POST /api/v1/sessions and
// DELETE /api/v1/sessions/{session_id}
type SessionsHandler struct {
	store *copilot.SessionStore
}

func NewSessionsHandler(store *copilot.SessionStore) *SessionsHandler {
	return &SessionsHandler{store: store}
}

// Create handles POST /api/v1/sessions
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Create()
	models.WriteJSON(w, http.StatusCreated, models.SessionResponse{
		Status:    "success",
		SessionID: sess.ID,
		CreatedAt: sess.CreatedAt.Format(time.RFC3339),
	})
}

// Delete handles DELETE /api/v1/sessions/{session_id}
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")
	if _, ok := h.store.Get(id); !ok {
		models.WriteError(w, http.StatusNotFound, "unknown session")
		return
	}
	h.store.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}
