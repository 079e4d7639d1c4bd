package session

import (
	"sync"

	"coursetrack/internal/models"
)

// Document is one uploaded syllabus tracked by a session.
type Document struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
}

// Session holds all mutable coordinator state for one interactive session:
// the aggregator, the plan cache and the per-document match lists. The
// source ran single-threaded under a cooperative scheduler; here the HTTP
// server serializes access with the session mutex instead.
type Session struct {
	ID string

	mu        sync.Mutex
	documents []Document
	agg       *Aggregator
	plans     *PlanCache
	matches   map[string][]models.MatchEntry
}

func New(id string) *Session {
	return &Session{
		ID:      id,
		agg:     NewAggregator(),
		plans:   NewPlanCache(),
		matches: map[string][]models.MatchEntry{},
	}
}

// Lock acquires the session for a multi-step operation. Callers must
// Unlock; single-method helpers below lock internally.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Aggregator and Plans expose the owned state; callers must hold the lock.
func (s *Session) Aggregator() *Aggregator { return s.agg }
func (s *Session) Plans() *PlanCache       { return s.plans }

func (s *Session) AddDocument(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append(s.documents, doc)
}

func (s *Session) Documents() []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Document, len(s.documents))
	copy(out, s.documents)
	return out
}

func (s *Session) SetMatches(matches map[string][]models.MatchEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = matches
}

func (s *Session) Matches() map[string][]models.MatchEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]models.MatchEntry, len(s.matches))
	for k, v := range s.matches {
		out[k] = v
	}
	return out
}

// Reset clears the aggregator, the plan cache, the match lists and the
// document list together. Holding the lock for the whole swap keeps the
// clear atomic from any caller's perspective; partial clears never surface.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = nil
	s.agg = NewAggregator()
	s.plans = NewPlanCache()
	s.matches = map[string][]models.MatchEntry{}
}

// Manager tracks live sessions for the API server.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: map[string]*Session{}}
}

func (m *Manager) Create(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := New(id)
	m.sessions[id] = s
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}
