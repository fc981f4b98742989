package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"signn-go/internal/decision"
)

func TestManager_Lifecycle(t *testing.T) {
	eval := greenEvaluator()
	m := NewManager(eval)

	snap := m.Create("rider-1")
	if snap.Stage != StageCreated {
		t.Fatalf("created stage = %s, want %s", snap.Stage, StageCreated)
	}

	if err := m.RecordConsent(snap.ID, true); err != nil {
		t.Fatal(err)
	}
	if err := m.RecordVision(snap.ID, decision.ImpairmentSignals{}); err != nil {
		t.Fatal(err)
	}
	if err := m.RecordCognitive(snap.ID, decision.CognitiveResult{AverageLatencyMs: 510}); err != nil {
		t.Fatal(err)
	}

	var persisted int
	verdict, err := m.Finalize(snap.ID, 500, func(CheckSession) { persisted++ })
	if err != nil {
		t.Fatal(err)
	}
	if verdict.Status != decision.StatusGreen {
		t.Errorf("verdict = %s, want GREEN", verdict.Status)
	}

	// At-least-once delivery: the repeat returns the stored verdict and the
	// persistence hook does not fire again.
	again, err := m.Finalize(snap.ID, 500, func(CheckSession) { persisted++ })
	if err != nil {
		t.Fatal(err)
	}
	if again != verdict {
		t.Errorf("repeat verdict = %+v, want %+v", again, verdict)
	}
	if persisted != 1 {
		t.Errorf("persistence hook fired %d times, want 1", persisted)
	}
	if eval.calls != 1 {
		t.Errorf("evaluator calls = %d, want 1", eval.calls)
	}
}

func TestManager_UnknownSession(t *testing.T) {
	m := NewManager(greenEvaluator())
	if err := m.RecordConsent("nope", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("RecordConsent on unknown id: err = %v, want ErrNotFound", err)
	}
	if _, err := m.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on unknown id: err = %v, want ErrNotFound", err)
	}
}

func TestManager_ConcurrentFinalizeSingleEvaluation(t *testing.T) {
	eval := greenEvaluator()
	m := NewManager(eval)
	snap := m.Create("rider-1")
	if err := m.RecordConsent(snap.ID, true); err != nil {
		t.Fatal(err)
	}
	if err := m.RecordVision(snap.ID, decision.ImpairmentSignals{}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	persisted := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Finalize(snap.ID, 500, func(CheckSession) {
				mu.Lock()
				persisted++
				mu.Unlock()
			})
			if err != nil {
				t.Errorf("Finalize() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if eval.calls != 1 {
		t.Errorf("evaluator calls = %d, want 1", eval.calls)
	}
	if persisted != 1 {
		t.Errorf("persistence hook fired %d times, want 1", persisted)
	}
}

func TestManager_IndependentSessions(t *testing.T) {
	m := NewManager(greenEvaluator())
	a := m.Create("rider-a")
	b := m.Create("rider-b")

	if err := m.RecordConsent(a.ID, true); err != nil {
		t.Fatal(err)
	}
	// Session b is untouched by a's progress.
	got, err := m.Get(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Stage != StageCreated {
		t.Errorf("session b stage = %s, want %s", got.Stage, StageCreated)
	}
}

func TestManager_EvictIdleDuringMutations(t *testing.T) {
	m := NewManager(greenEvaluator())
	snap := m.Create("rider-a")

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				_ = m.RecordConsent(snap.ID, true)
			}
		}
	}()

	// Sweep while the session is being mutated. The activity stamp stays
	// fresh, so the session must never be evicted mid-flight.
	for i := 0; i < 100; i++ {
		if evicted := m.EvictIdle(time.Now().Add(-time.Minute)); len(evicted) != 0 {
			t.Errorf("EvictIdle() evicted an active session: %v", evicted)
		}
	}
	close(done)
	wg.Wait()

	if _, err := m.Get(snap.ID); err != nil {
		t.Errorf("active session unreachable after sweeps: %v", err)
	}
}

func TestManager_EvictIdle(t *testing.T) {
	m := NewManager(greenEvaluator())
	stale := m.Create("rider-a")
	time.Sleep(10 * time.Millisecond)
	cutoff := time.Now()
	fresh := m.Create("rider-b")

	evicted := m.EvictIdle(cutoff)
	if len(evicted) != 1 || evicted[0] != stale.ID {
		t.Fatalf("EvictIdle() = %v, want [%s]", evicted, stale.ID)
	}
	if _, err := m.Get(stale.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale session still reachable: err = %v", err)
	}
	if _, err := m.Get(fresh.ID); err != nil {
		t.Errorf("fresh session evicted: %v", err)
	}
}
