package copilot

import (
	"fmt"
	"sync"
	"time"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/llm"
	"github.com/google/uuid"
)

// DefaultHistoryTurns bounds the conversation window fed back to the
// model; each turn is one user question plus one assistant SQL reply.
const DefaultHistoryTurns = 10

// Session holds one conversation's history. Sessions are independent;
// each has its own lock and no state is shared between them.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	turns    []llm.Turn
	maxTurns int
}

func newSession(maxTurns int) *Session {
	if maxTurns <= 0 {
		maxTurns = DefaultHistoryTurns
	}
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		maxTurns:  maxTurns,
	}
}

// Append records a completed question/SQL exchange and truncates the
// window to the most recent turns. The SQL is stored fenced, the way the
// model produced it, so follow-up prompts read naturally.
func (s *Session) Append(question, sql string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns,
		llm.Turn{Role: llm.RoleUser, Content: question},
		llm.Turn{Role: llm.RoleAssistant, Content: fmt.Sprintf("```sql\n%s\n```", sql)},
	)
	if max := s.maxTurns * 2; len(s.turns) > max {
		s.turns = s.turns[len(s.turns)-max:]
	}
}

// History returns a copy of the current window.
func (s *Session) History() []llm.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len reports the number of stored messages (2 per turn).
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// SessionStore tracks live sessions by ID.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	maxTurns int
}

// NewSessionStore creates a store whose sessions keep maxTurns turns of
// history each.
func NewSessionStore(maxTurns int) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		maxTurns: maxTurns,
	}
}

// Create registers a new empty session and returns it.
func (st *SessionStore) Create() *Session {
	s := newSession(st.maxTurns)
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get looks up a session by ID.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete removes a session; deleting an unknown ID is a no-op.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Count reports the number of live sessions.
func (st *SessionStore) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
