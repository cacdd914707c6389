package nav

import (
	"time"

	"github.com/echoflaresat/chartview/earth"
)

// Config collects the navigation tunables. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// Speed and FastSpeed are in nautical miles per integration unit.
	Speed     float64
	FastSpeed float64
	// TimeScale is the number of integration units per second of wall
	// clock (0.1 per millisecond).
	TimeScale float64

	// PixelsPerDegree is the drag distance that turns the view by one
	// degree. Values between 7 and 15 feel natural.
	PixelsPerDegree float64
	// ScaleTurnByTime weights drag turns by the frame time over
	// TurnReference. At TurnReference the raw sensitivity applies; at
	// lower frame rates the same drag distance turns further.
	ScaleTurnByTime bool
	TurnReference   time.Duration

	// PitchBound is the largest pitch magnitude, in radians.
	PitchBound float64
	// GazeDistance is how far along the gaze ray the look-at target is placed.
	GazeDistance float64

	// MaxStep is the longest single translation step; longer frames are
	// integrated in equal substeps. MaxSubsteps caps the substep count.
	MaxStep     time.Duration
	MaxSubsteps int

	// Radius is the radius of the navigation sphere.
	Radius float64

	// TileRadius is the number of 1° tiles around the camera to keep
	// loaded. Zero disables tile requests.
	TileRadius int
}

// UpDownBound is the pitch limit: 87°.
const UpDownBound = 87 * earth.DegToRad

func DefaultConfig() Config {
	return Config{
		Speed:           0.025,
		FastSpeed:       0.15,
		TimeScale:       100,
		PixelsPerDegree: 10,
		ScaleTurnByTime: true,
		TurnReference:   time.Second / 60,
		PitchBound:      UpDownBound,
		GazeDistance:    1,
		MaxStep:         10 * time.Millisecond,
		MaxSubsteps:     600,
		Radius:          earth.Radius,
	}
}
