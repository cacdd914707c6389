package nav

import (
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/echoflaresat/chartview/earth"
	"github.com/echoflaresat/chartview/tiles"
	"github.com/echoflaresat/chartview/vectors"
)

// CameraPose is what the renderer needs to draw one frame.
type CameraPose struct {
	Position vectors.Vec3
	Up       vectors.Vec3
	// GazeTarget is only meaningful when LookAt is set; otherwise the
	// renderer keeps its previous orientation.
	GazeTarget vectors.Vec3
	LookAt     bool
	// Jump is set on the pose issued by JumpTo.
	Jump     bool
	Geodetic earth.Geodetic
}

// Renderer receives one pose per frame.
type Renderer interface {
	SetCameraPose(pose CameraPose)
}

// TileRequester loads and unloads terrain tiles. Sync must not block.
type TileRequester interface {
	Sync(want []tiles.Key)
}

// procedureOffset is how far south of a procedure's first fix the camera
// is placed, and how far above it.
const (
	procedureOffsetDeg  = 0.1
	procedureOffsetFeet = 4000
)

// Core owns the navigation state and advances it once per frame. Tick,
// JumpTo and the accessors must be called from a single goroutine; the
// input methods may be called from any goroutine.
type Core struct {
	cfg        Config
	integrator Integrator
	renderer   Renderer
	tiles      TileRequester
	lg         *slog.Logger

	geo      GeodeticState
	position vectors.Vec3
	angles   LookAngles
	// gaze is the unit view direction last sent to the renderer.
	gaze vectors.Vec3

	wantTiles []tiles.Key

	mu    sync.Mutex
	input InputState
	drag  DragState
}

// NewCore returns a core positioned over latitude 0, longitude 0 at the
// surface, looking north. tr may be nil, and is ignored when
// cfg.TileRadius is zero.
func NewCore(cfg Config, renderer Renderer, tr TileRequester, lg *slog.Logger) *Core {
	if lg == nil {
		lg = slog.Default()
	}
	c := &Core{
		cfg:        cfg,
		integrator: NewIntegrator(cfg),
		renderer:   renderer,
		tiles:      tr,
		lg:         lg,
	}
	c.place(earth.Geodetic{}, cfg.Radius)
	return c
}

// KeyDown and KeyUp record key state for the next frame.
func (c *Core) KeyDown(k Key) { c.setKey(k, true) }
func (c *Core) KeyUp(k Key)   { c.setKey(k, false) }

func (c *Core) setKey(k Key, down bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input.Set(k, down)
}

func (c *Core) PointerDown(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag.Begin(x, y)
}

func (c *Core) PointerMove(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag.Move(x, y)
}

// TouchStart and TouchMove mirror the pointer events with negated
// coordinates, so touch drags move the scene under the finger. Until the
// touch ends, PointerMove is ignored.
func (c *Core) TouchStart(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag.BeginTouch(-x, -y)
}

func (c *Core) TouchMove(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag.MoveTouch(-x, -y)
}

func (c *Core) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag.End()
}

// TouchEnd ends a touch drag.
func (c *Core) TouchEnd() { c.PointerUp() }

// DragCancel ends a drag that was interrupted (pointer left the view,
// touch cancelled).
func (c *Core) DragCancel() { c.PointerUp() }

// Tick advances navigation by dt and sends the resulting pose to the
// renderer.
func (c *Core) Tick(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}

	c.mu.Lock()
	in := c.input
	motion := c.integrator.Integrate(in, &c.drag, c.axes(), dt)
	dragging := c.drag.Active
	c.mu.Unlock()

	n := c.substeps(dt)
	if n == 1 {
		c.move(motion.Velocity)
	} else {
		step := dt / time.Duration(n)
		units := c.integrator.units(step)
		for i := 0; i < n; i++ {
			c.move(c.integrator.Velocity(in, c.axes()).Scale(units))
		}
	}

	c.angles.Apply(motion.HeadingDelta, motion.PitchDelta, c.cfg.PitchBound)

	pose := c.pose()
	if dragging {
		pose.GazeTarget = ComputeGaze(c.geo.Frame(), c.angles, c.position, c.cfg.GazeDistance)
		pose.LookAt = true
		c.gaze = c.geo.Frame().Forward(c.angles)
	}
	c.renderer.SetCameraPose(pose)

	c.requestTiles()
}

// move translates the camera and re-derives everything that depends on
// its position.
func (c *Core) move(v vectors.Vec3) {
	if v == (vectors.Vec3{}) {
		return
	}
	c.position = c.position.Add(v)
	c.geo.SetFromCartesian(c.position)
	if c.geo.Degenerate() {
		lat, lon := c.geo.Current().Degrees()
		c.lg.Warn("tangent frame at pole, using fallback east", "lat", lat, "lon", lon)
	}
}

// substeps returns how many equal steps a frame of length dt is
// integrated in.
func (c *Core) substeps(dt time.Duration) int {
	if c.cfg.MaxStep <= 0 || dt <= c.cfg.MaxStep {
		return 1
	}
	// the epsilon keeps exact multiples from rounding up a step
	n := int(math.Ceil(float64(dt)/float64(c.cfg.MaxStep) - 1e-9))
	if c.cfg.MaxSubsteps > 0 && n > c.cfg.MaxSubsteps {
		n = c.cfg.MaxSubsteps
	}
	return max(n, 1)
}

func (c *Core) axes() Axes {
	return Axes{Up: c.geo.Frame().Up, Gaze: c.gaze}
}

// JumpTo places the camera altFeet above the given position, looking due
// north and level, and issues a look-at to the renderer.
func (c *Core) JumpTo(latDeg, lonDeg, altFeet float64) {
	g := earth.FromDegrees(latDeg, lonDeg)
	c.place(g, earth.AltitudeRadius(c.cfg.Radius, altFeet))

	c.lg.Info("jump", "lat", latDeg, "lon", lonDeg, "alt_ft", altFeet)

	pose := c.pose()
	pose.GazeTarget = ComputeGaze(c.geo.Frame(), c.angles, c.position, c.cfg.GazeDistance)
	pose.LookAt = true
	pose.Jump = true
	c.renderer.SetCameraPose(pose)

	c.requestTiles()
}

// FlyToProcedure jumps to a vantage point for a procedure whose first
// fix is at the given position and altitude: slightly south of the fix
// and above it, looking north.
func (c *Core) FlyToProcedure(latDeg, lonDeg, altFeet float64) {
	c.JumpTo(latDeg-procedureOffsetDeg, lonDeg, altFeet+procedureOffsetFeet)
}

// place resets position and orientation without notifying anyone.
func (c *Core) place(g earth.Geodetic, radius float64) {
	c.geo.JumpTo(g)
	c.position = g.ToCartesian(radius)
	c.angles = LookAngles{}
	c.gaze = c.geo.Frame().Forward(c.angles)
	if c.geo.Degenerate() {
		lat, lon := g.Degrees()
		c.lg.Warn("tangent frame at pole, using fallback east", "lat", lat, "lon", lon)
	}
}

func (c *Core) pose() CameraPose {
	return CameraPose{
		Position: c.position,
		Up:       c.geo.Frame().Up,
		Geodetic: c.geo.Current(),
	}
}

// requestTiles asks for the tiles around the camera when that set
// changes.
func (c *Core) requestTiles() {
	if c.cfg.TileRadius <= 0 || c.tiles == nil {
		return
	}
	want := tiles.Around(c.geo.Current(), c.cfg.TileRadius)
	if slices.Equal(want, c.wantTiles) {
		return
	}
	c.wantTiles = want
	c.lg.Debug("tile neighbourhood changed", "tiles", len(want))
	c.tiles.Sync(want)
}

// Geodetic returns the camera's current latitude and longitude.
func (c *Core) Geodetic() earth.Geodetic { return c.geo.Current() }

// SetFromCartesian re-derives the geodetic position from the camera's
// current Cartesian position and returns it.
func (c *Core) SetFromCartesian() earth.Geodetic {
	c.geo.SetFromCartesian(c.position)
	return c.geo.Current()
}

func (c *Core) Position() vectors.Vec3 { return c.position }
func (c *Core) Angles() LookAngles     { return c.angles }
func (c *Core) Frame() Frame           { return c.geo.Frame() }

// Gaze returns the unit view direction the renderer was last aimed along.
func (c *Core) Gaze() vectors.Vec3 { return c.gaze }

// Altitude returns the camera's height above the sphere in feet.
func (c *Core) Altitude() float64 {
	return earth.AltitudeFeet(c.cfg.Radius, c.position.Norm())
}
