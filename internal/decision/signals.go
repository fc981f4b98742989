package decision

// ImpairmentSignals is the classifier's verdict for one completed vision
// scan. The engine consumes it as an opaque flag source; how the external
// classifier derives the flags is not this package's concern.
type ImpairmentSignals struct {
	Intoxication             bool    `json:"intoxication_detected"`
	Fatigue                  bool    `json:"fatigue_detected"`
	Stress                   bool    `json:"stress_detected"`
	Fever                    bool    `json:"fever_detected"`
	Eyewear                  bool    `json:"eyewear_detected"`
	FacialDrooping           bool    `json:"facial_drooping_detected"`
	MicroNods                bool    `json:"micro_nods_detected"`
	Mood                     string  `json:"mood"`
	EyeRedness               float64 `json:"eye_sclera_redness_score"`
	PupilReactivity          float64 `json:"pupil_reactivity_score"`
	BlinkInstructionFollowed bool    `json:"blink_instruction_followed"`
}

// CognitiveResult summarizes one reaction-latency test.
type CognitiveResult struct {
	AverageLatencyMs float64   `json:"average_latency_ms"`
	RoundLatenciesMs []float64 `json:"round_latencies_ms"`
}

// BehavioralAnswer is one submitted choice for a quiz question.
type BehavioralAnswer struct {
	QuestionID string `json:"question_id"`
	Choice     string `json:"choice"`
}

// BehavioralOutcome is the ordered set of answers a rider submitted.
// Correctness is judged against an AnswerKey, not stored here.
type BehavioralOutcome struct {
	Answers []BehavioralAnswer `json:"answers"`
}

// Status is the three-tier access decision.
type Status string

const (
	StatusGreen  Status = "GREEN"
	StatusYellow Status = "YELLOW"
	StatusRed    Status = "RED"
)

// Reason codes. These are a closed set and part of the wire contract;
// downstream consumers key localization and routing off them.
const (
	ReasonClear             = "clear"
	ReasonEyewear           = "eyewear-must-be-removed"
	ReasonFever             = "fever-detected"
	ReasonIntoxication      = "intoxication-detected"
	ReasonFatigue           = "fatigue-detected"
	ReasonCriticalCognitive = "critical-cognitive-fatigue"
	ReasonBehavioralFailure = "behavioral-assessment-failed"
	ReasonHighStress        = "high-stress-detected"
	ReasonCognitiveDelay    = "cognitive-delay-detected"
)

// ReadinessVerdict is the terminal outcome of one check.
type ReadinessVerdict struct {
	Status              Status  `json:"status"`
	Reason              string  `json:"reason"`
	LatencyDeltaPercent float64 `json:"latency_delta_percent"`
}
