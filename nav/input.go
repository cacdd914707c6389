package nav

import (
	"fmt"
	"time"

	"github.com/echoflaresat/chartview/earth"
	"github.com/echoflaresat/chartview/vectors"
)

// Key is a semantic navigation key; raw key codes are mapped by the caller.
type Key int

const (
	MoveForward Key = iota
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
	FastToggle
)

var keyNames = [...]string{
	MoveForward:  "MoveForward",
	MoveBackward: "MoveBackward",
	MoveLeft:     "MoveLeft",
	MoveRight:    "MoveRight",
	MoveUp:       "MoveUp",
	MoveDown:     "MoveDown",
	FastToggle:   "FastToggle",
}

func (k Key) String() string {
	if k >= 0 && int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// ParseKey returns the Key with the given name.
func ParseKey(s string) (Key, error) {
	for k, name := range keyNames {
		if name == s {
			return Key(k), nil
		}
	}
	return 0, fmt.Errorf("unknown navigation key %q", s)
}

// InputState holds the currently held navigation keys.
type InputState struct {
	MoveForward, MoveBackward bool
	MoveLeft, MoveRight       bool
	MoveUp, MoveDown          bool
	Fast                      bool
}

// Set records key k as held or released.
func (in *InputState) Set(k Key, down bool) {
	switch k {
	case MoveForward:
		in.MoveForward = down
	case MoveBackward:
		in.MoveBackward = down
	case MoveLeft:
		in.MoveLeft = down
	case MoveRight:
		in.MoveRight = down
	case MoveUp:
		in.MoveUp = down
	case MoveDown:
		in.MoveDown = down
	case FastToggle:
		in.Fast = down
	}
}

// DragState tracks a pointer drag. X and Y are the latest pointer
// coordinates; LastX and LastY are the coordinates consumed by the
// previous frame.
type DragState struct {
	Active bool
	// First is set when a drag begins so the first frame only records a
	// baseline.
	First bool
	// Touching is set while a touch drag is active. Mouse events that
	// browsers synthesize from the touch are then ignored.
	Touching     bool
	X, Y         float64
	LastX, LastY float64
}

// Begin starts a mouse drag at (x, y). During a touch drag it only
// restarts the baseline.
func (d *DragState) Begin(x, y float64) {
	d.Active = true
	d.First = true
	if !d.Touching {
		d.X, d.Y = x, y
	}
}

// Move records a mouse position. It is ignored during a touch drag.
func (d *DragState) Move(x, y float64) {
	if d.Touching {
		return
	}
	d.X, d.Y = x, y
}

// BeginTouch starts a touch drag at (x, y).
func (d *DragState) BeginTouch(x, y float64) {
	d.Active = true
	d.First = true
	d.Touching = true
	d.X, d.Y = x, y
}

func (d *DragState) MoveTouch(x, y float64) {
	d.X, d.Y = x, y
}

// End stops any drag, mouse or touch.
func (d *DragState) End() {
	d.Active = false
	d.Touching = false
}

// Axes are the directions translation is resolved against.
type Axes struct {
	// Up is the local vertical of the current frame.
	Up vectors.Vec3
	// Gaze is the camera's current view direction, which lags the look
	// angles when no drag is active.
	Gaze vectors.Vec3
}

// Motion is the result of integrating one frame of input.
type Motion struct {
	// Velocity is the world-space displacement for the frame.
	Velocity     vectors.Vec3
	HeadingDelta float64
	PitchDelta   float64
}

// Integrator turns held keys and pointer movement into motion.
type Integrator struct {
	cfg Config
}

func NewIntegrator(cfg Config) Integrator {
	return Integrator{cfg: cfg}
}

// Integrate resolves one frame of input of duration dt. It consumes the
// pointer movement recorded in drag.
func (ig Integrator) Integrate(in InputState, drag *DragState, axes Axes, dt time.Duration) Motion {
	heading, pitch := ig.Turn(drag, dt)
	return Motion{
		Velocity:     ig.Velocity(in, axes).Scale(ig.units(dt)),
		HeadingDelta: heading,
		PitchDelta:   pitch,
	}
}

// Velocity returns the world-space velocity per integration unit.
// Forward follows the gaze projected onto the tangent plane, right is
// perpendicular to gaze and up, and vertical motion is always along the
// local up regardless of pitch.
func (ig Integrator) Velocity(in InputState, axes Axes) vectors.Vec3 {
	speed := ig.cfg.Speed
	if in.Fast {
		speed = ig.cfg.FastSpeed
	}

	var fwd, side, vert float64
	if in.MoveForward {
		fwd = speed
	} else if in.MoveBackward {
		fwd = -speed
	}
	if in.MoveRight {
		side = speed
	} else if in.MoveLeft {
		side = -speed
	}
	if in.MoveUp {
		vert = speed
	} else if in.MoveDown {
		vert = -speed
	}

	right := axes.Gaze.Cross(axes.Up)
	if right.Norm() < poleEpsilon {
		// looking straight up or down; pitch clamping should prevent this
		right = axes.Up.Orthogonal()
	}
	right = right.Normalize()
	forward := axes.Up.Cross(right)

	return forward.Scale(fwd).
		Add(right.Scale(side)).
		Add(axes.Up.Scale(vert))
}

// Turn consumes the pointer movement since the last frame and returns
// heading and pitch deltas in radians. Dragging right turns right;
// dragging up looks up. With ScaleTurnByTime the deltas are weighted by
// dt over TurnReference, so a drag spread over slow frames turns further
// than the same drag at the reference rate.
func (ig Integrator) Turn(drag *DragState, dt time.Duration) (heading, pitch float64) {
	if !drag.Active {
		return 0, 0
	}
	defer func() {
		drag.LastX, drag.LastY = drag.X, drag.Y
	}()
	if drag.First {
		drag.First = false
		return 0, 0
	}

	scale := earth.DegToRad / ig.cfg.PixelsPerDegree
	if ig.cfg.ScaleTurnByTime && ig.cfg.TurnReference > 0 {
		scale *= dt.Seconds() / ig.cfg.TurnReference.Seconds()
	}
	return (drag.X - drag.LastX) * scale, -(drag.Y - drag.LastY) * scale
}

// units converts wall-clock time into integration units.
func (ig Integrator) units(dt time.Duration) float64 {
	return dt.Seconds() * ig.cfg.TimeScale
}
