package models

import (
	"time"

	"github.com/lib/pq"
)

// CheckRecord is the durable form of one check session. Open sessions are
// written with an empty Status; a record without a verdict is "pending",
// which downstream reporting must keep distinct from GREEN.
type CheckRecord struct {
	ID        string `gorm:"primaryKey"` // session uuid
	RiderID   uint   `gorm:"index"`
	Rider     Rider  `gorm:"foreignKey:RiderID"`
	Stage     string
	Consented bool

	// Impairment signals from the vision scan, flattened.
	VisionRecorded           bool
	Intoxication             bool
	Fatigue                  bool
	Stress                   bool
	Fever                    bool
	Eyewear                  bool
	FacialDrooping           bool
	MicroNods                bool
	Mood                     string
	EyeRedness               float64
	PupilReactivity          float64
	BlinkInstructionFollowed bool

	// Cognitive test summary. Nil average means the stage was skipped.
	AverageLatencyMs *float64
	RoundLatenciesMs pq.Float64Array `gorm:"type:float8[]"`

	// Terminal verdict, set exactly once.
	Status              string
	Reason              string
	LatencyDeltaPercent float64

	CreatedAt   time.Time
	UpdatedAt   time.Time
	FinalizedAt *time.Time
}

// BehavioralAnswerRecord is one graded quiz answer belonging to a check.
type BehavioralAnswerRecord struct {
	ID         uint   `gorm:"primaryKey"`
	CheckID    string `gorm:"index"`
	QuestionID string
	Choice     string
	Correct    bool
	CreatedAt  time.Time
}

// FaceSampleRecord is one FaceMetrics row captured during a vision scan.
// The raw camera frames never reach the backend; these smoothed indicators
// are all that is retained.
type FaceSampleRecord struct {
	ID               uint   `gorm:"primaryKey"`
	CheckID          string `gorm:"index"`
	EyeAspectRatio   float64
	EyeBlinkRate     float64
	BlinkVariance    float64
	BrowFurrow       float64
	LipTighten       float64
	MouthOpen        float64
	HeadStability    float64
	HeadTiltVariance float64
	FaceVisibility   float64
	TimestampMs      int64
	CreatedAt        time.Time
}
