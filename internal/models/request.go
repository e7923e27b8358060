package models

// AskRequest for POST /api/v1/ask
type AskRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}
