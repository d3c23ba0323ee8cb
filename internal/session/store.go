// Package session scopes datasets to sessions. Each session owns its own
// canonical table; derived entities are recomputed on demand from it, so
// there is no process-wide dataset and no stale-aggregate state to manage.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"fairsquare/internal/analytics"
	"fairsquare/internal/dataset"
)

// Session is one user's dataset and its load provenance.
type Session struct {
	ID        string                  `json:"id"`
	CreatedAt time.Time               `json:"created_at"`
	Table     *dataset.CanonicalTable `json:"-"`
	Synthetic bool                    `json:"synthetic"`
	Notice    string                  `json:"notice,omitempty"`
}

// Daily recomputes the daily series from the session's table.
func (s *Session) Daily() analytics.DailySeries {
	return analytics.AggregateDaily(s.Table)
}

// Store holds active sessions. It is the only shared mutable state in the
// system and is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *slog.Logger
}

// NewStore creates an empty session store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Create registers a new session around a load result.
func (st *Store) Create(result dataset.LoadResult) *Session {
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Table:     result.Table,
		Synthetic: result.Synthetic,
		Notice:    result.Notice,
	}

	st.mu.Lock()
	st.sessions[session.ID] = session
	st.mu.Unlock()

	st.logger.Info("session created",
		slog.String("session_id", session.ID),
		slog.Int("rows", session.Table.Len()),
		slog.Bool("synthetic", session.Synthetic))

	return session
}

// Get returns the session with the given ID.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	session, ok := st.sessions[id]
	return session, ok
}

// Replace swaps a session's dataset wholesale; derived results are always
// recomputed from the table, so nothing else needs invalidating.
func (st *Store) Replace(id string, result dataset.LoadResult) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	session.Table = result.Table
	session.Synthetic = result.Synthetic
	session.Notice = result.Notice
	return session, true
}

// Delete removes a session.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// Len returns the number of active sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
