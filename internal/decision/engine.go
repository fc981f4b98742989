package decision

// AnswerKey resolves the correct choice for a behavioral quiz question.
// Unknown question ids report ok=false and are skipped during grading.
type AnswerKey interface {
	CorrectChoice(questionID string) (string, bool)
}

// OverridePolicy may replace a computed verdict for a specific rider, e.g.
// for demo accounts. It is deliberately outside the rule table: the engine
// itself never special-cases identities.
type OverridePolicy interface {
	Override(riderID string, computed ReadinessVerdict) (ReadinessVerdict, bool)
}

// Latency delta thresholds, in percent over the rider's baseline.
const (
	criticalLatencyDeltaPercent = 40
	elevatedLatencyDeltaPercent = 20
)

// evalInput carries the derived values the rules predicate on.
type evalInput struct {
	signals           ImpairmentSignals
	latencyDelta      float64
	behavioralFailure bool
}

// rule is one row of the precedence table: the first rule whose predicate
// matches decides the verdict.
type rule struct {
	match  func(in evalInput) bool
	status Status
	reason string
}

// rules is the fusion cascade in strict priority order. Vision-derived
// blocking flags dominate cognitive and behavioral findings; critical
// cognitive fatigue dominates behavioral failure; stress and moderate
// cognitive delay are cautionary, never blocking. Reordering rows changes
// the product contract.
var rules = []rule{
	{func(in evalInput) bool { return in.signals.Eyewear }, StatusRed, ReasonEyewear},
	{func(in evalInput) bool { return in.signals.Fever }, StatusRed, ReasonFever},
	{func(in evalInput) bool { return in.signals.Intoxication }, StatusRed, ReasonIntoxication},
	{func(in evalInput) bool { return in.signals.Fatigue }, StatusRed, ReasonFatigue},
	{func(in evalInput) bool { return in.latencyDelta > criticalLatencyDeltaPercent }, StatusRed, ReasonCriticalCognitive},
	{func(in evalInput) bool { return in.behavioralFailure }, StatusRed, ReasonBehavioralFailure},
	{func(in evalInput) bool { return in.signals.Stress }, StatusYellow, ReasonHighStress},
	{func(in evalInput) bool { return in.latencyDelta > elevatedLatencyDeltaPercent }, StatusYellow, ReasonCognitiveDelay},
}

// Engine fuses impairment signals, cognitive latency and behavioral quiz
// results into a readiness verdict. It is stateless and safe for
// concurrent use.
type Engine struct {
	answerKey AnswerKey
	override  OverridePolicy
}

// NewEngine builds an engine grading behavioral answers against key.
// override may be nil.
func NewEngine(key AnswerKey, override OverridePolicy) *Engine {
	return &Engine{answerKey: key, override: override}
}

// Evaluate classifies one completed check. It is total over its input
// domain: cognitive and behavioral may be nil, which simply skips the
// rules that depend on them. The caller guarantees signals were produced
// by a completed vision scan.
func (e *Engine) Evaluate(riderID string, signals ImpairmentSignals, cognitive *CognitiveResult, behavioral *BehavioralOutcome, baselineLatencyMs float64) ReadinessVerdict {
	in := evalInput{
		signals:           signals,
		latencyDelta:      latencyDeltaPercent(cognitive, baselineLatencyMs),
		behavioralFailure: e.behavioralFailure(behavioral),
	}

	verdict := ReadinessVerdict{
		Status:              StatusGreen,
		Reason:              ReasonClear,
		LatencyDeltaPercent: in.latencyDelta,
	}
	for _, r := range rules {
		if r.match(in) {
			verdict.Status = r.status
			verdict.Reason = r.reason
			break
		}
	}

	if e.override != nil {
		if forced, ok := e.override.Override(riderID, verdict); ok {
			return forced
		}
	}
	return verdict
}

func latencyDeltaPercent(cognitive *CognitiveResult, baselineMs float64) float64 {
	if cognitive == nil || baselineMs <= 0 {
		return 0
	}
	return (cognitive.AverageLatencyMs - baselineMs) / baselineMs * 100
}

// behavioralFailure reports whether any graded answer differs from the
// key, short-circuiting on the first mismatch. No outcome means no failure.
func (e *Engine) behavioralFailure(outcome *BehavioralOutcome) bool {
	if outcome == nil || e.answerKey == nil {
		return false
	}
	for _, a := range outcome.Answers {
		correct, ok := e.answerKey.CorrectChoice(a.QuestionID)
		if !ok {
			continue
		}
		if a.Choice != correct {
			return true
		}
	}
	return false
}
