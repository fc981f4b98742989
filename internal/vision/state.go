package vision

// Capacities of the rolling history buffers.
const (
	blinkHistoryCap = 30
	tiltHistoryCap  = 30
	openHistoryCap  = 10
)

// RollingState carries the per-scan rolling metrics between samples. It is
// exclusively owned by one active scan: ExtractMetrics mutates it and the
// caller must not share it across scans or feed it from two goroutines.
type RollingState struct {
	blinks        *Ring
	tilts         *Ring
	openDurations *Ring

	lastNose      *Point
	headStability float64

	openStartMs *int64
	lastBlink   bool
}

// NewRollingState returns an empty state with head stability seeded at 1.0.
func NewRollingState() *RollingState {
	return &RollingState{
		blinks:        NewRing(blinkHistoryCap),
		tilts:         NewRing(tiltHistoryCap),
		openDurations: NewRing(openHistoryCap),
		headStability: 1,
	}
}

// HeadStability reports the current smoothed stability score in [0,1].
func (s *RollingState) HeadStability() float64 {
	return s.headStability
}

// BlinkHistory returns the current blink buffer contents, oldest first.
func (s *RollingState) BlinkHistory() []float64 {
	return s.blinks.Values()
}

// OpenDurations returns the recorded open-eye intervals in seconds,
// oldest first.
func (s *RollingState) OpenDurations() []float64 {
	return s.openDurations.Values()
}
