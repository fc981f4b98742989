package session

import (
	"errors"
	"testing"

	"signn-go/internal/decision"
)

// countingEvaluator returns a fixed verdict and counts invocations.
type countingEvaluator struct {
	calls   int
	verdict decision.ReadinessVerdict
}

func (c *countingEvaluator) Evaluate(riderID string, signals decision.ImpairmentSignals, cognitive *decision.CognitiveResult, behavioral *decision.BehavioralOutcome, baselineLatencyMs float64) decision.ReadinessVerdict {
	c.calls++
	return c.verdict
}

func greenEvaluator() *countingEvaluator {
	return &countingEvaluator{verdict: decision.ReadinessVerdict{Status: decision.StatusGreen, Reason: decision.ReasonClear}}
}

func TestCheckSession_FullPath(t *testing.T) {
	s := New("rider-1")
	if s.Stage != StageCreated {
		t.Fatalf("new session stage = %s, want %s", s.Stage, StageCreated)
	}
	if s.ID == "" || s.OwnerID != "rider-1" {
		t.Fatalf("New() = id %q owner %q", s.ID, s.OwnerID)
	}

	steps := []struct {
		name      string
		do        func() error
		wantStage Stage
	}{
		{"consent", func() error { return s.RecordConsent(true) }, StageConsented},
		{"vision", func() error { return s.RecordVision(decision.ImpairmentSignals{}) }, StageVisionRecorded},
		{"cognitive", func() error { return s.RecordCognitive(decision.CognitiveResult{AverageLatencyMs: 520}) }, StageCognitiveRecorded},
		{"behavioral", func() error { return s.RecordBehavioral(decision.BehavioralOutcome{}) }, StageBehavioralRecorded},
	}
	for _, st := range steps {
		if err := st.do(); err != nil {
			t.Fatalf("%s: unexpected error %v", st.name, err)
		}
		if s.Stage != st.wantStage {
			t.Fatalf("%s: stage = %s, want %s", st.name, s.Stage, st.wantStage)
		}
	}

	eval := greenEvaluator()
	verdict, err := s.Finalize(eval, 500)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if verdict.Status != decision.StatusGreen {
		t.Errorf("verdict = %s, want GREEN", verdict.Status)
	}
	if s.Stage != StageFinalized || !s.Finalized() {
		t.Errorf("stage after finalize = %s, want %s", s.Stage, StageFinalized)
	}
	if eval.calls != 1 {
		t.Errorf("evaluator calls = %d, want 1", eval.calls)
	}
}

func TestCheckSession_ShortPathVisionOnly(t *testing.T) {
	// A blocking vision result may finalize straight from VISION_RECORDED.
	s := New("rider-1")
	if err := s.RecordConsent(true); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordVision(decision.ImpairmentSignals{Fatigue: true}); err != nil {
		t.Fatal(err)
	}

	eval := &countingEvaluator{verdict: decision.ReadinessVerdict{Status: decision.StatusRed, Reason: decision.ReasonFatigue}}
	verdict, err := s.Finalize(eval, 500)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if verdict.Status != decision.StatusRed || verdict.Reason != decision.ReasonFatigue {
		t.Errorf("verdict = %s/%q, want RED/%q", verdict.Status, verdict.Reason, decision.ReasonFatigue)
	}
}

func TestCheckSession_ConsentIdempotentAndCorrectable(t *testing.T) {
	s := New("rider-1")

	if err := s.RecordConsent(true); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordConsent(true); err != nil {
		t.Fatalf("repeat with same value: %v", err)
	}
	if err := s.RecordConsent(false); err != nil {
		t.Fatalf("correction before finalize: %v", err)
	}
	if s.ConsentAgreed {
		t.Error("ConsentAgreed = true after correction to false")
	}
	if s.Stage != StageConsented {
		t.Errorf("stage = %s, want %s", s.Stage, StageConsented)
	}

	// Once vision data lands the consent step is closed.
	if err := s.RecordVision(decision.ImpairmentSignals{}); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordConsent(true); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("consent after vision: err = %v, want ErrInvalidTransition", err)
	}
}

func TestCheckSession_VisionExactlyOnce(t *testing.T) {
	s := New("rider-1")

	// No consent yet.
	if err := s.RecordVision(decision.ImpairmentSignals{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("vision before consent: err = %v, want ErrInvalidTransition", err)
	}

	if err := s.RecordConsent(true); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordVision(decision.ImpairmentSignals{Stress: true}); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordVision(decision.ImpairmentSignals{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second vision: err = %v, want ErrInvalidTransition", err)
	}
	if !s.Signals.Stress {
		t.Error("first signals overwritten by rejected second call")
	}
}

func TestCheckSession_OptionalStepOrdering(t *testing.T) {
	s := New("rider-1")
	if err := s.RecordCognitive(decision.CognitiveResult{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cognitive before vision: err = %v, want ErrInvalidTransition", err)
	}
	if err := s.RecordBehavioral(decision.BehavioralOutcome{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("behavioral before vision: err = %v, want ErrInvalidTransition", err)
	}

	if err := s.RecordConsent(true); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordVision(decision.ImpairmentSignals{}); err != nil {
		t.Fatal(err)
	}

	// Behavioral may follow vision directly, skipping cognitive.
	if err := s.RecordBehavioral(decision.BehavioralOutcome{}); err != nil {
		t.Fatalf("behavioral after vision: %v", err)
	}
	// Cognitive cannot arrive after the behavioral stage.
	if err := s.RecordCognitive(decision.CognitiveResult{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cognitive after behavioral: err = %v, want ErrInvalidTransition", err)
	}
}

func TestCheckSession_FinalizeWithoutVision(t *testing.T) {
	s := New("rider-1")
	if err := s.RecordConsent(true); err != nil {
		t.Fatal(err)
	}

	eval := greenEvaluator()
	_, err := s.Finalize(eval, 500)
	if !errors.Is(err, ErrMissingVisionData) {
		t.Fatalf("Finalize() err = %v, want ErrMissingVisionData", err)
	}
	if s.Stage != StageConsented {
		t.Errorf("stage after failed finalize = %s, want %s", s.Stage, StageConsented)
	}
	if eval.calls != 0 {
		t.Errorf("evaluator calls = %d, want 0", eval.calls)
	}

	// The session may still receive vision data and finalize afterwards.
	if err := s.RecordVision(decision.ImpairmentSignals{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Finalize(eval, 500); err != nil {
		t.Fatalf("Finalize() after attaching vision: %v", err)
	}
}

func TestCheckSession_FinalizeIdempotent(t *testing.T) {
	s := New("rider-1")
	if err := s.RecordConsent(true); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordVision(decision.ImpairmentSignals{}); err != nil {
		t.Fatal(err)
	}

	eval := greenEvaluator()
	first, err := s.Finalize(eval, 500)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Finalize(eval, 500)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("repeat Finalize() = %+v, want stored %+v", second, first)
	}
	if eval.calls != 1 {
		t.Errorf("evaluator calls = %d, want 1 (no re-evaluation)", eval.calls)
	}

	// Nothing mutates a finalized session.
	if err := s.RecordCognitive(decision.CognitiveResult{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cognitive after finalize: err = %v, want ErrInvalidTransition", err)
	}
	if err := s.RecordBehavioral(decision.BehavioralOutcome{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("behavioral after finalize: err = %v, want ErrInvalidTransition", err)
	}
	if err := s.RecordVision(decision.ImpairmentSignals{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("vision after finalize: err = %v, want ErrInvalidTransition", err)
	}
}
