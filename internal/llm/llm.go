// Package llm defines the language-model boundary for the copilot.
// The orchestrator depends only on the Generator interface so tests can
// substitute a deterministic fake.
package llm

import "context"

// Role values for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a session's conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces and repairs SQL and explains query results.
//
// GenerateSQL may return a string beginning with "ERROR:" to signal that
// the question cannot be answered from the schema; callers detect that
// via guard.Validate rather than parsing it here.
type Generator interface {
	// GenerateSQL turns a natural language question into raw SQL text.
	// history carries prior turns for follow-up questions and may be nil.
	GenerateSQL(ctx context.Context, question, schema, kpis string, history []Turn) (string, error)

	// RepairSQL asks the model to correct a query that failed to execute.
	RepairSQL(ctx context.Context, question, schema, failedSQL, errMsg string) (string, error)

	// Explain summarizes query results in analyst prose. columns is the
	// result header, sample a small textual preview of the rows.
	Explain(ctx context.Context, question, sql string, columns []string, sample string, rowCount int) (string, error)
}
