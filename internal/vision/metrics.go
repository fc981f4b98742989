package vision

// FaceMetrics is one smoothed indicator record, emitted per processed
// sample. The JSON field names are the wire contract with the backend
// check ledger.
type FaceMetrics struct {
	EyeAspectRatio   float64 `json:"eye_aspect_ratio"`
	EyeBlinkRate     float64 `json:"eye_blink_rate"`
	BlinkVariance    float64 `json:"blink_variance"`
	BrowFurrow       float64 `json:"brow_furrow"`
	LipTighten       float64 `json:"lip_tighten"`
	MouthOpen        float64 `json:"mouth_open"`
	HeadStability    float64 `json:"head_stability"`
	HeadTiltVariance float64 `json:"head_tilt_variance"`
	FaceVisibility   float64 `json:"face_visibility"`
	TimestampMs      int64   `json:"timestamp_ms"`
}

// Blink classification thresholds. Blendshape scores are preferred; the
// eye-aspect-ratio cut-off is the fallback when the model produced none.
const (
	blinkBlendshapeThreshold = 0.6
	blinkAspectRatioFallback = 0.18
)

// Head stability smoothing: displacement of the nose tip between samples is
// scaled, clamped and blended into the running score.
const (
	stabilityDisplacementGain = 5
	stabilityHistoryWeight    = 0.7
	stabilitySampleWeight     = 0.3
)

// ExtractMetrics turns one landmark/blendshape sample into a FaceMetrics
// record, updating state in place. It may be called at arbitrary intervals;
// nowMs is the capture time of the sample, not a frame index. Missing
// blendshapes and degenerate geometry resolve to defaults, never to errors.
func ExtractMetrics(landmarks Landmarks, blendshapes Blendshapes, state *RollingState, nowMs int64) FaceMetrics {
	// Eye aspect ratio: lid gap over canthus width, averaged per eye.
	leftOpen := safeDiv(
		distance(landmarks[LandmarkLeftEyeUpperLid], landmarks[LandmarkLeftEyeLowerLid]),
		distance(landmarks[LandmarkLeftEyeInner], landmarks[LandmarkLeftEyeOuter]),
	)
	rightOpen := safeDiv(
		distance(landmarks[LandmarkRightEyeUpperLid], landmarks[LandmarkRightEyeLowerLid]),
		distance(landmarks[LandmarkRightEyeInner], landmarks[LandmarkRightEyeOuter]),
	)
	eyeOpen := (leftOpen + rightOpen) / 2

	// Blink classification for this sample.
	blinkLeft, okLeft := blendshapes.score(BlendshapeEyeBlinkLeft)
	blinkRight, okRight := blendshapes.score(BlendshapeEyeBlinkRight)
	var isBlink bool
	if okLeft && okRight {
		isBlink = (blinkLeft+blinkRight)/2 > blinkBlendshapeThreshold
	} else {
		isBlink = eyeOpen < blinkAspectRatioFallback
	}

	if isBlink {
		state.blinks.Push(1)
	} else {
		state.blinks.Push(0)
	}
	blinkRate := state.blinks.Mean()
	blinkVariance := state.blinks.Variance()

	// Open-eye duration: time the stretch between a closed->open transition
	// and the next open->closed transition.
	if !isBlink {
		if state.openStartMs == nil {
			start := nowMs
			state.openStartMs = &start
		}
	} else if state.openStartMs != nil && !state.lastBlink {
		state.openDurations.Push(float64(nowMs-*state.openStartMs) / 1000)
		state.openStartMs = nil
	}
	state.lastBlink = isBlink

	browFurrow := pairedScore(blendshapes, BlendshapeBrowDownLeft, BlendshapeBrowDownRight)
	lipTighten := pairedScore(blendshapes, BlendshapeMouthPressLeft, BlendshapeMouthPressRight)
	mouthOpen, _ := blendshapes.score(BlendshapeJawOpen)

	// Head stability: the first sample only seeds the reference landmark.
	nose := landmarks[LandmarkNoseTip]
	if state.lastNose != nil {
		delta := distance(nose, *state.lastNose)
		instant := 1 - clamp01(delta*stabilityDisplacementGain)
		state.headStability = state.headStability*stabilityHistoryWeight + instant*stabilitySampleWeight
	}
	state.lastNose = &Point{X: nose.X, Y: nose.Y}

	// Head tilt: vertical offset between the outer eye corners.
	tilt := landmarks[LandmarkLeftEyeOuter].Y - landmarks[LandmarkRightEyeOuter].Y
	state.tilts.Push(tilt)

	return FaceMetrics{
		EyeAspectRatio:   eyeOpen,
		EyeBlinkRate:     blinkRate,
		BlinkVariance:    blinkVariance,
		BrowFurrow:       browFurrow,
		LipTighten:       lipTighten,
		MouthOpen:        mouthOpen,
		HeadStability:    state.headStability,
		HeadTiltVariance: state.tilts.Variance(),
		FaceVisibility:   1,
		TimestampMs:      nowMs,
	}
}

// pairedScore averages a left/right blendshape pair, or returns 0 when
// either side is absent.
func pairedScore(b Blendshapes, left, right string) float64 {
	l, okL := b.score(left)
	r, okR := b.score(right)
	if !okL || !okR {
		return 0
	}
	return (l + r) / 2
}
