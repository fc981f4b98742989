package vision

import (
	"math"
	"testing"
)

// faceSample builds a landmark set whose eye aspect ratio computes to ear
// for both eyes, with the nose tip at the given point and level eyes.
func faceSample(ear float64, nose Point) Landmarks {
	const width = 0.1
	gap := ear * width / 2
	return Landmarks{
		LandmarkLeftEyeInner:     {X: 0.30, Y: 0.50},
		LandmarkLeftEyeOuter:     {X: 0.40, Y: 0.50},
		LandmarkLeftEyeUpperLid:  {X: 0.35, Y: 0.50 - gap},
		LandmarkLeftEyeLowerLid:  {X: 0.35, Y: 0.50 + gap},
		LandmarkRightEyeInner:    {X: 0.60, Y: 0.50},
		LandmarkRightEyeOuter:    {X: 0.70, Y: 0.50},
		LandmarkRightEyeUpperLid: {X: 0.65, Y: 0.50 - gap},
		LandmarkRightEyeLowerLid: {X: 0.65, Y: 0.50 + gap},
		LandmarkNoseTip:          nose,
	}
}

func blinkShapes(score float64) Blendshapes {
	return Blendshapes{
		BlendshapeEyeBlinkLeft:  score,
		BlendshapeEyeBlinkRight: score,
	}
}

func TestExtractMetrics_BlinkHistoryBoundedAndRateIsMean(t *testing.T) {
	state := NewRollingState()
	// Alternate blink/open for longer than the buffer capacity.
	for i := 0; i < 45; i++ {
		score := 0.0
		if i%2 == 0 {
			score = 0.9
		}
		ExtractMetrics(faceSample(0.3, Point{X: 0.5, Y: 0.6}), blinkShapes(score), state, int64(i*33))
	}

	if got := len(state.BlinkHistory()); got != blinkHistoryCap {
		t.Fatalf("blink history length = %d, want %d", got, blinkHistoryCap)
	}

	m := ExtractMetrics(faceSample(0.3, Point{X: 0.5, Y: 0.6}), blinkShapes(0), state, 46*33)
	hist := state.BlinkHistory()
	var sum float64
	for _, v := range hist {
		sum += v
	}
	wantRate := sum / float64(len(hist))
	if math.Abs(m.EyeBlinkRate-wantRate) > 1e-12 {
		t.Errorf("EyeBlinkRate = %v, want mean of buffer %v", m.EyeBlinkRate, wantRate)
	}
}

func TestExtractMetrics_NoBlendshapes(t *testing.T) {
	tests := []struct {
		name      string
		ear       float64
		wantBlink bool
	}{
		{"eyes nearly closed falls back to aspect ratio", 0.10, true},
		{"eyes open falls back to aspect ratio", 0.30, false},
		{"exactly at threshold is not a blink", 0.18, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewRollingState()
			m := ExtractMetrics(faceSample(tt.ear, Point{X: 0.5, Y: 0.6}), nil, state, 1000)

			if m.BrowFurrow != 0 || m.LipTighten != 0 || m.MouthOpen != 0 {
				t.Errorf("blendshape metrics = (%v, %v, %v), want all 0",
					m.BrowFurrow, m.LipTighten, m.MouthOpen)
			}
			gotBlink := m.EyeBlinkRate == 1
			if gotBlink != tt.wantBlink {
				t.Errorf("blink classified = %v, want %v (rate %v)", gotBlink, tt.wantBlink, m.EyeBlinkRate)
			}
			if math.Abs(m.EyeAspectRatio-tt.ear) > 1e-9 {
				t.Errorf("EyeAspectRatio = %v, want %v", m.EyeAspectRatio, tt.ear)
			}
		})
	}
}

func TestExtractMetrics_BlendshapeBlinkThreshold(t *testing.T) {
	// Wide-open eyes, so any blink must come from the blendshape scores.
	tests := []struct {
		score     float64
		wantBlink bool
	}{
		{0.9, true},
		{0.61, true},
		{0.6, false},
		{0.2, false},
	}

	for _, tt := range tests {
		state := NewRollingState()
		m := ExtractMetrics(faceSample(0.3, Point{X: 0.5, Y: 0.6}), blinkShapes(tt.score), state, 0)
		gotBlink := m.EyeBlinkRate == 1
		if gotBlink != tt.wantBlink {
			t.Errorf("score %v: blink = %v, want %v", tt.score, gotBlink, tt.wantBlink)
		}
	}
}

func TestExtractMetrics_HeadStability(t *testing.T) {
	state := NewRollingState()

	// First sample only seeds the reference landmark.
	m := ExtractMetrics(faceSample(0.3, Point{X: 0.5, Y: 0.6}), nil, state, 0)
	if m.HeadStability != 1 {
		t.Fatalf("first sample HeadStability = %v, want 1", m.HeadStability)
	}

	// A small move blends the instantaneous score into the running one.
	m = ExtractMetrics(faceSample(0.3, Point{X: 0.52, Y: 0.6}), nil, state, 33)
	instant := 1 - math.Min(1, 0.02*5)
	want := 1*0.7 + instant*0.3
	if math.Abs(m.HeadStability-want) > 1e-9 {
		t.Errorf("HeadStability = %v, want %v", m.HeadStability, want)
	}

	// Violent jumps clamp the instantaneous score; the result stays in [0,1].
	for i := 0; i < 20; i++ {
		x := 0.1
		if i%2 == 0 {
			x = 0.9
		}
		m = ExtractMetrics(faceSample(0.3, Point{X: x, Y: 0.6}), nil, state, int64(66+i*33))
		if m.HeadStability < 0 || m.HeadStability > 1 {
			t.Fatalf("HeadStability = %v, out of [0,1]", m.HeadStability)
		}
	}
}

func TestExtractMetrics_OpenDurationTransitions(t *testing.T) {
	state := NewRollingState()
	steps := []struct {
		blink float64
		atMs  int64
	}{
		{0.9, 0},    // closed
		{0.0, 1000}, // closed->open, timer starts
		{0.0, 2000}, // still open, timer untouched
		{0.9, 3000}, // open->closed, 2.0s recorded
		{0.0, 4000}, // timer restarts
		{0.9, 5000}, // 1.0s recorded
	}
	for _, st := range steps {
		ExtractMetrics(faceSample(0.3, Point{X: 0.5, Y: 0.6}), blinkShapes(st.blink), state, st.atMs)
	}

	got := state.OpenDurations()
	want := []float64{2, 1}
	if len(got) != len(want) {
		t.Fatalf("OpenDurations() = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("OpenDurations()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExtractMetrics_OpenDurationBufferBounded(t *testing.T) {
	state := NewRollingState()
	ms := int64(0)
	// Each open/closed pair records one duration; overflow evicts the oldest.
	for i := 0; i < 2*(openHistoryCap+5); i++ {
		score := 0.0
		if i%2 == 1 {
			score = 0.9
		}
		ExtractMetrics(faceSample(0.3, Point{X: 0.5, Y: 0.6}), blinkShapes(score), state, ms)
		ms += 500
	}
	if got := len(state.OpenDurations()); got != openHistoryCap {
		t.Errorf("open durations length = %d, want %d", got, openHistoryCap)
	}
}

func TestExtractMetrics_HeadTiltVariance(t *testing.T) {
	state := NewRollingState()
	var m FaceMetrics
	for i := 0; i < 5; i++ {
		m = ExtractMetrics(faceSample(0.3, Point{X: 0.5, Y: 0.6}), nil, state, int64(i))
	}
	if m.HeadTiltVariance != 0 {
		t.Errorf("level eyes: HeadTiltVariance = %v, want 0", m.HeadTiltVariance)
	}

	// Tilt the head by shifting one outer eye corner.
	lm := faceSample(0.3, Point{X: 0.5, Y: 0.6})
	p := lm[LandmarkLeftEyeOuter]
	p.Y += 0.05
	lm[LandmarkLeftEyeOuter] = p
	m = ExtractMetrics(lm, nil, state, 5)
	if m.HeadTiltVariance <= 0 {
		t.Errorf("tilted sample: HeadTiltVariance = %v, want > 0", m.HeadTiltVariance)
	}
}

func TestExtractMetrics_DegenerateSample(t *testing.T) {
	state := NewRollingState()
	// Every landmark collapses onto the origin; nothing may panic or go NaN.
	m := ExtractMetrics(Landmarks{}, nil, state, 42)

	if m.EyeAspectRatio != 0 {
		t.Errorf("EyeAspectRatio = %v, want 0", m.EyeAspectRatio)
	}
	if math.IsNaN(m.HeadStability) || math.IsInf(m.HeadStability, 0) {
		t.Errorf("HeadStability = %v, want finite", m.HeadStability)
	}
	if m.FaceVisibility != 1 {
		t.Errorf("FaceVisibility = %v, want 1", m.FaceVisibility)
	}
	if m.TimestampMs != 42 {
		t.Errorf("TimestampMs = %v, want 42", m.TimestampMs)
	}
}

func TestTracker_IndependentScans(t *testing.T) {
	tr := NewTracker()

	tr.Process("a", faceSample(0.1, Point{X: 0.5, Y: 0.6}), nil, 0)
	m := tr.Process("b", faceSample(0.3, Point{X: 0.5, Y: 0.6}), nil, 0)
	if m.EyeBlinkRate != 0 {
		t.Errorf("fresh scan EyeBlinkRate = %v, want 0", m.EyeBlinkRate)
	}

	tr.Discard("a")
	if tr.Active("a") {
		t.Error("scan a still active after Discard")
	}
	if !tr.Active("b") {
		t.Error("scan b lost by discarding a")
	}
}
