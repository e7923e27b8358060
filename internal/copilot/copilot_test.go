package copilot_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/chart"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/copilot"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/guard"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/llm"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/table"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/validate"
)

// ─── Fakes ──────────────────────────────────────────────────────────────

type fakeGen struct {
	genOut  []string // returned in sequence by GenerateSQL
	genErr  error
	fixOut  string
	fixErr  error
	explErr error

	genCalls int
	fixCalls int
}

func (g *fakeGen) GenerateSQL(_ context.Context, _, _, _ string, _ []llm.Turn) (string, error) {
	g.genCalls++
	if g.genErr != nil {
		return "", g.genErr
	}
	out := g.genOut[0]
	if len(g.genOut) > 1 {
		g.genOut = g.genOut[1:]
	}
	return out, nil
}

func (g *fakeGen) RepairSQL(_ context.Context, _, _, _, _ string) (string, error) {
	g.fixCalls++
	return g.fixOut, g.fixErr
}

func (g *fakeGen) Explain(_ context.Context, _, _ string, _ []string, _ string, _ int) (string, error) {
	if g.explErr != nil {
		return "", g.explErr
	}
	return "Revenue is concentrated in a handful of markets.", nil
}

type fakeSource struct {
	results map[string]*table.Table // keyed by SQL
	errs    map[string]error

	queries []string
}

func (s *fakeSource) Name() string                     { return "fake" }
func (s *fakeSource) Ping(context.Context) error       { return nil }
func (s *fakeSource) Close() error                     { return nil }
func (s *fakeSource) Schema(context.Context) (string, error) {
	return "sales(channel (TEXT), amount (REAL))", nil
}

func (s *fakeSource) Query(_ context.Context, sql string) (*table.Table, error) {
	s.queries = append(s.queries, sql)
	if err, ok := s.errs[sql]; ok {
		return nil, err
	}
	if t, ok := s.results[sql]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("no such table in fake for %q", sql)
}

func salesTable() *table.Table {
	return table.New(
		[]string{"channel", "amount"},
		[][]any{
			{"EMEA", 120.0},
			{"APAC", 80.0},
			{"AMER", 200.0},
		},
	)
}

// limited mirrors what the guard produces from a bare SELECT.
func limited(sql string) string { return sql + "\nLIMIT 100" }

func newOrchestrator(gen *fakeGen, src *fakeSource) (*copilot.Orchestrator, *copilot.Session) {
	o := copilot.New(gen, src, "No KPI definitions found.")
	store := copilot.NewSessionStore(copilot.DefaultHistoryTurns)
	return o, store.Create()
}

// ─── Happy path ─────────────────────────────────────────────────────────

func TestAskSuccess(t *testing.T) {
	sql := "SELECT channel, amount FROM sales"
	gen := &fakeGen{genOut: []string{sql}}
	src := &fakeSource{results: map[string]*table.Table{limited(sql): salesTable()}}
	o, sess := newOrchestrator(gen, src)

	res, err := o.Ask(context.Background(), sess, "Revenue by channel")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if string(res.SQL) != limited(sql) {
		t.Errorf("SQL = %q, want limit appended", res.SQL)
	}
	if res.Repaired {
		t.Error("Repaired = true on clean run")
	}
	if res.Table.RowCount() != 3 {
		t.Errorf("RowCount = %d", res.Table.RowCount())
	}
	if res.Chart == nil || res.Chart.Kind != chart.HorizontalBar {
		t.Errorf("Chart = %+v, want horizontal bar", res.Chart)
	}
	if res.Explanation == "" {
		t.Error("Explanation missing")
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
	if sess.Len() != 2 {
		t.Errorf("history messages = %d, want 2", sess.Len())
	}
}

// ─── Repair path ────────────────────────────────────────────────────────

func TestAskRepairsExactlyOnce(t *testing.T) {
	bad := "SELECT chanel FROM sales"
	good := "SELECT channel, amount FROM sales"
	gen := &fakeGen{genOut: []string{bad}, fixOut: good}
	src := &fakeSource{
		errs:    map[string]error{limited(bad): errors.New(`no such column: chanel`)},
		results: map[string]*table.Table{limited(good): salesTable()},
	}
	o, sess := newOrchestrator(gen, src)

	res, err := o.Ask(context.Background(), sess, "Revenue by channel")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !res.Repaired {
		t.Error("Repaired = false after auto-repair")
	}
	if string(res.SQL) != limited(good) {
		t.Errorf("SQL = %q, want repaired query", res.SQL)
	}
	if gen.fixCalls != 1 {
		t.Errorf("RepairSQL calls = %d, want 1", gen.fixCalls)
	}
	// one entry per question, carrying the repaired SQL
	if sess.Len() != 2 {
		t.Errorf("history messages = %d, want 2", sess.Len())
	}
	hist := sess.History()
	if !strings.Contains(hist[1].Content, "channel, amount") {
		t.Errorf("history holds stale SQL: %q", hist[1].Content)
	}
}

func TestAskNoSecondRepair(t *testing.T) {
	bad := "SELECT chanel FROM sales"
	stillBad := "SELECT chanel2 FROM sales"
	gen := &fakeGen{genOut: []string{bad}, fixOut: stillBad}
	src := &fakeSource{errs: map[string]error{
		limited(bad):      errors.New("no such column: chanel"),
		limited(stillBad): errors.New("no such column: chanel2"),
	}}
	o, sess := newOrchestrator(gen, src)

	_, err := o.Ask(context.Background(), sess, "Revenue by channel")
	var execErr *copilot.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("error = %v, want ExecutionError", err)
	}
	if !execErr.Repaired {
		t.Error("ExecutionError.Repaired = false")
	}
	if gen.fixCalls != 1 {
		t.Errorf("RepairSQL calls = %d, want exactly 1", gen.fixCalls)
	}
	if len(src.queries) != 2 {
		t.Errorf("executions = %d, want 2", len(src.queries))
	}
}

// ─── Guard rejections ───────────────────────────────────────────────────

func TestAskRejectionIsNeverRepaired(t *testing.T) {
	gen := &fakeGen{genOut: []string{"DROP TABLE sales"}}
	src := &fakeSource{}
	o, sess := newOrchestrator(gen, src)

	_, err := o.Ask(context.Background(), sess, "delete everything")
	var rej *guard.Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("error = %v, want guard.Rejection", err)
	}
	if rej.Reason != guard.BlockedKeyword {
		t.Errorf("Reason = %v, want BlockedKeyword", rej.Reason)
	}
	if gen.fixCalls != 0 {
		t.Error("rejected query was sent to repair")
	}
	if len(src.queries) != 0 {
		t.Error("rejected query was executed")
	}
	if sess.Len() != 0 {
		t.Error("rejected query entered session history")
	}
}

func TestAskLlmRefusal(t *testing.T) {
	gen := &fakeGen{genOut: []string{"ERROR: the schema has no churn data"}}
	o, sess := newOrchestrator(gen, &fakeSource{})

	_, err := o.Ask(context.Background(), sess, "churn rate?")
	var rej *guard.Rejection
	if !errors.As(err, &rej) || rej.Reason != guard.LlmSignaledError {
		t.Fatalf("error = %v, want LlmSignaledError rejection", err)
	}
}

func TestAskGenerationFailure(t *testing.T) {
	gen := &fakeGen{genErr: errors.New("api timeout")}
	o, sess := newOrchestrator(gen, &fakeSource{})

	_, err := o.Ask(context.Background(), sess, "anything")
	var genErr *copilot.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want GenerationError", err)
	}
	if genErr.Repair {
		t.Error("initial generation marked as repair")
	}
}

func TestAskRepairGenerationFailure(t *testing.T) {
	bad := "SELECT chanel FROM sales"
	gen := &fakeGen{genOut: []string{bad}, fixErr: errors.New("api down")}
	src := &fakeSource{errs: map[string]error{limited(bad): errors.New("boom")}}
	o, sess := newOrchestrator(gen, src)

	_, err := o.Ask(context.Background(), sess, "Revenue")
	var genErr *copilot.GenerationError
	if !errors.As(err, &genErr) || !genErr.Repair {
		t.Fatalf("error = %v, want repair GenerationError", err)
	}
	// the first validated SQL still lands in history
	if sess.Len() != 2 {
		t.Errorf("history messages = %d, want 2", sess.Len())
	}
}

// ─── Degradation ────────────────────────────────────────────────────────

func TestAskExplanationFailureDegrades(t *testing.T) {
	sql := "SELECT channel, amount FROM sales"
	gen := &fakeGen{genOut: []string{sql}, explErr: errors.New("quota exceeded")}
	src := &fakeSource{results: map[string]*table.Table{limited(sql): salesTable()}}
	o, sess := newOrchestrator(gen, src)

	res, err := o.Ask(context.Background(), sess, "Revenue by channel")
	if err != nil {
		t.Fatalf("Ask() error = %v, explanation faults must not fail the response", err)
	}
	if res.Explanation != "" {
		t.Errorf("Explanation = %q, want empty", res.Explanation)
	}
}

func TestAskEmptyResult(t *testing.T) {
	sql := "SELECT channel, amount FROM sales WHERE amount > 999999"
	gen := &fakeGen{genOut: []string{sql}}
	src := &fakeSource{results: map[string]*table.Table{
		limited(sql): table.New([]string{"channel", "amount"}, nil),
	}}
	o, sess := newOrchestrator(gen, src)

	res, err := o.Ask(context.Background(), sess, "huge sales")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Kind != validate.ZeroRows {
		t.Errorf("Warnings = %v, want single zero rows warning", res.Warnings)
	}
	if res.Chart != nil {
		t.Errorf("Chart = %+v, want none for empty table", res.Chart)
	}
	if res.Explanation != "" {
		t.Error("explanation generated for empty table")
	}
}

// ─── Sessions ───────────────────────────────────────────────────────────

func TestSessionHistoryIsBounded(t *testing.T) {
	store := copilot.NewSessionStore(3)
	sess := store.Create()
	for i := 0; i < 10; i++ {
		sess.Append(fmt.Sprintf("question %d", i), fmt.Sprintf("SELECT %d", i))
	}
	if sess.Len() != 6 {
		t.Fatalf("messages = %d, want 6 (3 turns)", sess.Len())
	}
	hist := sess.History()
	if hist[0].Content != "question 7" {
		t.Errorf("oldest retained = %q, want question 7", hist[0].Content)
	}
	if hist[len(hist)-1].Role != llm.RoleAssistant {
		t.Error("history must end with an assistant turn")
	}
}

func TestSessionStoreLifecycle(t *testing.T) {
	store := copilot.NewSessionStore(copilot.DefaultHistoryTurns)
	s := store.Create()
	if s.ID == "" {
		t.Fatal("session has no ID")
	}
	if got, ok := store.Get(s.ID); !ok || got != s {
		t.Fatal("Get() lost the session")
	}
	store.Delete(s.ID)
	if _, ok := store.Get(s.ID); ok {
		t.Fatal("session survived Delete()")
	}
	store.Delete("not-there") // no-op
	if store.Count() != 0 {
		t.Errorf("Count() = %d", store.Count())
	}
}
