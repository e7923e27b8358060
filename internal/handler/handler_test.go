package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/copilot"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/handler"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/llm"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/models"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/table"
	"github.com/go-chi/chi/v5"
)

type scriptedGen struct {
	sql string
}

func (g *scriptedGen) GenerateSQL(context.Context, string, string, string, []llm.Turn) (string, error) {
	return g.sql, nil
}

func (g *scriptedGen) RepairSQL(context.Context, string, string, string, string) (string, error) {
	return "", errors.New("unexpected repair")
}

func (g *scriptedGen) Explain(context.Context, string, string, []string, string, int) (string, error) {
	return "Jazz leads on revenue.", nil
}

type memSource struct {
	healthy bool
}

func (s *memSource) Name() string               { return "sqlite" }
func (s *memSource) Close() error               { return nil }
func (s *memSource) Schema(context.Context) (string, error) {
	return "genres(GenreId (INTEGER), Name (TEXT))", nil
}

func (s *memSource) Ping(context.Context) error {
	if !s.healthy {
		return errors.New("database is locked")
	}
	return nil
}

func (s *memSource) Query(context.Context, string) (*table.Table, error) {
	return table.New(
		[]string{"genre", "revenue"},
		[][]any{{"Jazz", 310.0}, {"Rock", 150.0}},
	), nil
}

func newRouter(gen llm.Generator, src *memSource) (*chi.Mux, *copilot.SessionStore) {
	orch := copilot.New(gen, src, "No KPI definitions found.")
	sessions := copilot.NewSessionStore(copilot.DefaultHistoryTurns)

	r := chi.NewRouter()
	askH := handler.NewAskHandler(orch, sessions, src.Name())
	sessH := handler.NewSessionsHandler(sessions)
	r.Post("/api/v1/ask", askH.Ask)
	r.Post("/api/v1/sessions", sessH.Create)
	r.Delete("/api/v1/sessions/{session_id}", sessH.Delete)
	r.Get("/health", handler.NewHealthHandler(src, true).Health)
	return r, sessions
}

func TestAskEndpoint(t *testing.T) {
	r, _ := newRouter(&scriptedGen{sql: "SELECT genre, revenue FROM sales"}, &memSource{healthy: true})

	body := strings.NewReader(`{"question": "Revenue by genre"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", body)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp models.AskResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("response missing session_id")
	}
	if resp.RowCount != 2 || len(resp.Data) != 2 {
		t.Errorf("rows = %d data = %d", resp.RowCount, len(resp.Data))
	}
	if !strings.Contains(resp.SQL, "LIMIT 100") {
		t.Errorf("SQL = %q, want limit applied", resp.SQL)
	}
	if resp.Chart == nil {
		t.Error("chart missing for categorical result")
	}
	if resp.Explanation == "" {
		t.Error("explanation missing")
	}
	if resp.Metadata.Source != "sqlite" {
		t.Errorf("metadata source = %q", resp.Metadata.Source)
	}
}

func TestAskEndpointReusesSession(t *testing.T) {
	r, sessions := newRouter(&scriptedGen{sql: "SELECT genre, revenue FROM sales"}, &memSource{healthy: true})
	sess := sessions.Create()

	body := strings.NewReader(`{"question": "Revenue by genre", "session_id": "` + sess.ID + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", body)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var resp models.AskResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.SessionID != sess.ID {
		t.Errorf("session_id = %q, want %q", resp.SessionID, sess.ID)
	}
	if sess.Len() != 2 {
		t.Errorf("history messages = %d, want 2", sess.Len())
	}
}

func TestAskEndpointGuardRejection(t *testing.T) {
	r, _ := newRouter(&scriptedGen{sql: "DELETE FROM sales"}, &memSource{healthy: true})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question": "wipe it"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Reason != "blocked_keyword" {
		t.Errorf("reason = %q, want blocked_keyword", resp.Reason)
	}
}

func TestAskEndpointMissingQuestion(t *testing.T) {
	r, _ := newRouter(&scriptedGen{sql: "SELECT 1"}, &memSource{healthy: true})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestSessionEndpoints(t *testing.T) {
	r, sessions := newRouter(&scriptedGen{sql: "SELECT 1"}, &memSource{healthy: true})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rr.Code)
	}
	var resp models.SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if _, ok := sessions.Get(resp.SessionID); !ok {
		t.Fatal("created session not in store")
	}

	del := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+resp.SessionID, nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, del)
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+resp.SessionID, nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("double delete status = %d, want 404", rr.Code)
	}
}

func TestHealthDegradedWhenSourceDown(t *testing.T) {
	r, _ := newRouter(&scriptedGen{sql: "SELECT 1"}, &memSource{healthy: false})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	var resp models.HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "degraded" {
		t.Errorf("status = %q", resp.Status)
	}
	if !strings.Contains(resp.Checks["sqlite"], "unavailable") {
		t.Errorf("checks = %v", resp.Checks)
	}
}
