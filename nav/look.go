package nav

import (
	"math"

	"github.com/echoflaresat/chartview/vectors"
)

// LookAngles is the camera's view direction relative to the tangent
// frame. Heading is measured clockwise from true north, pitch upward from
// the local horizon.
type LookAngles struct {
	Heading float64
	Pitch   float64
}

// Apply adds the deltas and clamps pitch to [-bound, bound].
func (a *LookAngles) Apply(headingDelta, pitchDelta, bound float64) {
	a.Heading += headingDelta
	a.Pitch = clampPitch(a.Pitch+pitchDelta, bound)
}

func clampPitch(p, bound float64) float64 {
	return math.Max(-bound, math.Min(bound, p))
}

// Forward returns the unit gaze direction for angles a in frame f.
func (f Frame) Forward(a LookAngles) vectors.Vec3 {
	sinH, cosH := math.Sincos(a.Heading)
	sinP, cosP := math.Sincos(a.Pitch)

	level := f.North.Scale(cosH).Add(f.East.Scale(sinH))
	return level.Scale(cosP).Add(f.Up.Scale(sinP))
}

// ComputeGaze returns the point dist along the gaze ray from pos.
func ComputeGaze(f Frame, a LookAngles, pos vectors.Vec3, dist float64) vectors.Vec3 {
	return pos.Add(f.Forward(a).Scale(dist))
}
