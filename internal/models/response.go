package models

import (
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/chart"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/validate"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// AskMetadata describes how an answer was produced.
type AskMetadata struct {
	Source          string `json:"source"`
	Repaired        bool   `json:"repaired"`
	ElapsedMs       int64  `json:"elapsed_ms"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
}

// AskResponse is returned by POST /api/v1/ask
type AskResponse struct {
	Status      string             `json:"status"`
	SessionID   string             `json:"session_id"`
	Question    string             `json:"question"`
	SQL         string             `json:"sql"`
	Columns     []string           `json:"columns"`
	Data        []map[string]any   `json:"data"`
	RowCount    int                `json:"row_count"`
	Warnings    []validate.Warning `json:"warnings"`
	Chart       *chart.Spec        `json:"chart,omitempty"`
	Explanation string             `json:"explanation,omitempty"`
	Metadata    AskMetadata        `json:"metadata"`
}

// SchemaResponse is returned by GET /api/v1/schema
type SchemaResponse struct {
	Status string `json:"status"`
	Source string `json:"source"`
	Schema string `json:"schema"`
	KPIs   string `json:"kpis"`
}

// SessionResponse is returned by POST /api/v1/sessions
type SessionResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at"`
}
