package session

import (
	"errors"
	"fmt"
	"time"

	"signn-go/internal/decision"

	"github.com/google/uuid"
)

// Stage is a check session's position in the consent → vision → cognitive →
// behavioral → finalized flow. Stages only ever advance.
type Stage string

const (
	StageCreated            Stage = "CREATED"
	StageConsented          Stage = "CONSENTED"
	StageVisionRecorded     Stage = "VISION_RECORDED"
	StageCognitiveRecorded  Stage = "COGNITIVE_RECORDED"
	StageBehavioralRecorded Stage = "BEHAVIORAL_RECORDED"
	StageFinalized          Stage = "FINALIZED"
)

// ordinal gives the forward-only ordering of stages.
func (s Stage) ordinal() int {
	switch s {
	case StageCreated:
		return 0
	case StageConsented:
		return 1
	case StageVisionRecorded:
		return 2
	case StageCognitiveRecorded:
		return 3
	case StageBehavioralRecorded:
		return 4
	case StageFinalized:
		return 5
	}
	return -1
}

var (
	// ErrInvalidTransition marks a mutation attempted out of allowed order.
	// It is always recoverable: the session is left untouched and the caller
	// may retry the correct step.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrMissingVisionData marks a finalize attempt before any impairment
	// signals were attached. The session keeps its prior stage and may still
	// receive vision data afterwards.
	ErrMissingVisionData = errors.New("no vision data recorded")
)

// Evaluator produces the terminal verdict for a completed check. The
// decision engine satisfies it; tests substitute counting doubles.
type Evaluator interface {
	Evaluate(riderID string, signals decision.ImpairmentSignals, cognitive *decision.CognitiveResult, behavioral *decision.BehavioralOutcome, baselineLatencyMs float64) decision.ReadinessVerdict
}

// CheckSession tracks one rider's progress through a readiness check up to
// a single terminal verdict. It is not safe for concurrent use; the Manager
// serializes access per session id.
type CheckSession struct {
	ID        string
	OwnerID   string
	CreatedAt time.Time
	Stage     Stage

	ConsentAgreed bool
	Signals       *decision.ImpairmentSignals
	Cognitive     *decision.CognitiveResult
	Behavioral    *decision.BehavioralOutcome
	Verdict       *decision.ReadinessVerdict
}

// New starts a session for the given rider in stage CREATED.
func New(ownerID string) *CheckSession {
	return &CheckSession{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
		Stage:     StageCreated,
	}
}

// advance moves the stage forward, never backward.
func (s *CheckSession) advance(to Stage) {
	if to.ordinal() > s.Stage.ordinal() {
		s.Stage = to
	}
}

// RecordConsent stores the rider's consent decision. Consent is the one
// field that may be corrected before finalization: repeating the call with
// the same value is a no-op, a different value overwrites. Once vision data
// is attached the step is closed.
func (s *CheckSession) RecordConsent(agreed bool) error {
	if s.Stage != StageCreated && s.Stage != StageConsented {
		return fmt.Errorf("%w: consent not editable in stage %s", ErrInvalidTransition, s.Stage)
	}
	s.ConsentAgreed = agreed
	s.advance(StageConsented)
	return nil
}

// RecordVision attaches the classifier's impairment signals. Allowed
// exactly once, after consent.
func (s *CheckSession) RecordVision(signals decision.ImpairmentSignals) error {
	if s.Signals != nil {
		return fmt.Errorf("%w: vision data already recorded", ErrInvalidTransition)
	}
	if s.Stage != StageConsented {
		return fmt.Errorf("%w: vision data requires consent, stage is %s", ErrInvalidTransition, s.Stage)
	}
	s.Signals = &signals
	s.advance(StageVisionRecorded)
	return nil
}

// RecordCognitive attaches the reaction-latency result. Optional; allowed
// only after vision data and before finalization.
func (s *CheckSession) RecordCognitive(result decision.CognitiveResult) error {
	if s.Stage != StageVisionRecorded {
		return fmt.Errorf("%w: cognitive result not accepted in stage %s", ErrInvalidTransition, s.Stage)
	}
	s.Cognitive = &result
	s.advance(StageCognitiveRecorded)
	return nil
}

// RecordBehavioral attaches the quiz answers. Optional; allowed only after
// vision data and before finalization.
func (s *CheckSession) RecordBehavioral(outcome decision.BehavioralOutcome) error {
	if s.Stage != StageVisionRecorded && s.Stage != StageCognitiveRecorded {
		return fmt.Errorf("%w: behavioral outcome not accepted in stage %s", ErrInvalidTransition, s.Stage)
	}
	s.Behavioral = &outcome
	s.advance(StageBehavioralRecorded)
	return nil
}

// Finalize produces the session's single terminal verdict. The stored-
// verdict check makes repeats idempotent: once finalized, the same verdict
// is returned without re-invoking the evaluator, because the caller may
// have discarded the inputs after the first call.
func (s *CheckSession) Finalize(eval Evaluator, baselineLatencyMs float64) (decision.ReadinessVerdict, error) {
	if s.Verdict != nil {
		return *s.Verdict, nil
	}
	if s.Signals == nil {
		return decision.ReadinessVerdict{}, fmt.Errorf("%w: finalize requires a completed vision scan", ErrMissingVisionData)
	}
	verdict := eval.Evaluate(s.OwnerID, *s.Signals, s.Cognitive, s.Behavioral, baselineLatencyMs)
	s.Verdict = &verdict
	s.Stage = StageFinalized
	return verdict, nil
}

// Finalized reports whether the session has reached its terminal stage.
func (s *CheckSession) Finalized() bool {
	return s.Stage == StageFinalized
}
