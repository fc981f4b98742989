package vision

import "math"

// Point is a 2D landmark position in normalized image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmark names supplied by the external face-landmark model. The pipeline
// only ever reads these; any extra points in a sample are ignored.
const (
	LandmarkLeftEyeUpperLid  = "leftEyeUpperLid"
	LandmarkLeftEyeLowerLid  = "leftEyeLowerLid"
	LandmarkLeftEyeInner     = "leftEyeInnerCorner"
	LandmarkLeftEyeOuter     = "leftEyeOuterCorner"
	LandmarkRightEyeUpperLid = "rightEyeUpperLid"
	LandmarkRightEyeLowerLid = "rightEyeLowerLid"
	LandmarkRightEyeInner    = "rightEyeInnerCorner"
	LandmarkRightEyeOuter    = "rightEyeOuterCorner"
	LandmarkNoseTip          = "noseTip"
)

// Blendshape names read by the pipeline.
const (
	BlendshapeEyeBlinkLeft    = "eyeBlinkLeft"
	BlendshapeEyeBlinkRight   = "eyeBlinkRight"
	BlendshapeBrowDownLeft    = "browDownLeft"
	BlendshapeBrowDownRight   = "browDownRight"
	BlendshapeMouthPressLeft  = "mouthPressLeft"
	BlendshapeMouthPressRight = "mouthPressRight"
	BlendshapeJawOpen         = "jawOpen"
)

// Landmarks maps landmark names to their positions for one sample.
type Landmarks map[string]Point

// Blendshapes maps blendshape names to activation scores in [0,1]. A nil
// map means the model produced no expression scores for this sample.
type Blendshapes map[string]float64

// score returns the named blendshape activation, reporting whether it was
// present in the sample.
func (b Blendshapes) score(name string) (float64, bool) {
	if b == nil {
		return 0, false
	}
	v, ok := b[name]
	return v, ok
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// safeDiv returns a/b, or 0 when the denominator is zero. Degenerate
// geometry must never surface as Inf or NaN.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
