package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"signn-go/internal/decision"
)

// ErrNotFound marks a session id with no in-memory record, either never
// created or already evicted.
var ErrNotFound = errors.New("session not found")

// Manager owns the in-flight check sessions. Every mutation of a session
// goes through its entry lock, giving the single-writer discipline the
// state machine requires; sessions with different ids proceed in parallel.
type Manager struct {
	eval Evaluator

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu         sync.Mutex // serializes mutations of session
	session    *CheckSession
	lastActive time.Time // guarded by Manager.mu, not entry.mu
}

// NewManager builds a manager that finalizes sessions through eval.
func NewManager(eval Evaluator) *Manager {
	return &Manager{eval: eval, entries: make(map[string]*entry)}
}

// Create opens a new session for the rider and returns a snapshot of it.
func (m *Manager) Create(ownerID string) CheckSession {
	s := New(ownerID)
	m.mu.Lock()
	m.entries[s.ID] = &entry{session: s, lastActive: time.Now()}
	m.mu.Unlock()
	return *s
}

// withSession runs fn with the session's entry lock held. The activity
// stamp is refreshed while the registry lock is still held so the idle
// sweeper, which reads it under the same lock, never races the refresh.
func (m *Manager) withSession(id string, fn func(*CheckSession) error) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	if ok {
		e.lastActive = time.Now()
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Get returns a snapshot of the session.
func (m *Manager) Get(id string) (CheckSession, error) {
	var snap CheckSession
	err := m.withSession(id, func(s *CheckSession) error {
		snap = *s
		return nil
	})
	return snap, err
}

// RecordConsent applies the consent step to the session.
func (m *Manager) RecordConsent(id string, agreed bool) error {
	return m.withSession(id, func(s *CheckSession) error {
		return s.RecordConsent(agreed)
	})
}

// RecordVision attaches impairment signals to the session.
func (m *Manager) RecordVision(id string, signals decision.ImpairmentSignals) error {
	return m.withSession(id, func(s *CheckSession) error {
		return s.RecordVision(signals)
	})
}

// RecordCognitive attaches a reaction-latency result to the session.
func (m *Manager) RecordCognitive(id string, result decision.CognitiveResult) error {
	return m.withSession(id, func(s *CheckSession) error {
		return s.RecordCognitive(result)
	})
}

// RecordBehavioral attaches quiz answers to the session.
func (m *Manager) RecordBehavioral(id string, outcome decision.BehavioralOutcome) error {
	return m.withSession(id, func(s *CheckSession) error {
		return s.RecordBehavioral(outcome)
	})
}

// Finalize drives the session into its terminal verdict, idempotently.
// onFinalized runs under the session lock on the transition only, so
// persistence side effects are never double-counted under at-least-once
// delivery.
func (m *Manager) Finalize(id string, baselineLatencyMs float64, onFinalized func(CheckSession)) (decision.ReadinessVerdict, error) {
	var verdict decision.ReadinessVerdict
	err := m.withSession(id, func(s *CheckSession) error {
		already := s.Verdict != nil
		v, err := s.Finalize(m.eval, baselineLatencyMs)
		if err != nil {
			return err
		}
		verdict = v
		if !already && onFinalized != nil {
			onFinalized(*s)
		}
		return nil
	})
	return verdict, err
}

// Discard drops the session from memory. Used for abandoned checks; any
// persisted record of the session is untouched.
func (m *Manager) Discard(id string) {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
}

// EvictIdle removes sessions with no activity since the cutoff and returns
// their ids. Finalized sessions are immutable, so eviction loses nothing;
// unfinalized ones simply have no verdict, which is distinct from GREEN.
func (m *Manager) EvictIdle(cutoff time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var evicted []string
	for id, e := range m.entries {
		if e.lastActive.Before(cutoff) {
			delete(m.entries, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

// Len reports the number of in-flight sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
