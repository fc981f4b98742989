package vision

import "sync"

// Tracker owns the rolling state of every in-flight scan, keyed by check
// session id. Each scan's samples are serialized through a per-scan lock,
// so frames for different sessions can be processed in parallel while a
// single scan stays single-writer.
type Tracker struct {
	mu    sync.Mutex
	scans map[string]*scan
}

type scan struct {
	mu    sync.Mutex
	state *RollingState
}

// NewTracker returns an empty scan registry.
func NewTracker() *Tracker {
	return &Tracker{scans: make(map[string]*scan)}
}

// Process runs one sample through the session's scan, creating the scan
// state on first use.
func (t *Tracker) Process(sessionID string, landmarks Landmarks, blendshapes Blendshapes, nowMs int64) FaceMetrics {
	t.mu.Lock()
	sc, ok := t.scans[sessionID]
	if !ok {
		sc = &scan{state: NewRollingState()}
		t.scans[sessionID] = sc
	}
	t.mu.Unlock()

	sc.mu.Lock()
	defer sc.mu.Unlock()
	return ExtractMetrics(landmarks, blendshapes, sc.state, nowMs)
}

// Discard drops a scan's state. Abandoning a scan needs no other cleanup;
// every emitted FaceMetrics record remains independently valid.
func (t *Tracker) Discard(sessionID string) {
	t.mu.Lock()
	delete(t.scans, sessionID)
	t.mu.Unlock()
}

// Active reports whether a scan is currently tracked for the session.
func (t *Tracker) Active(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.scans[sessionID]
	return ok
}
