package render

import (
	"math"

	"github.com/echoflaresat/chartview/vectors"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultFOV  = 70.0 // degrees, vertical
	DefaultNear = 0.1  // nautical miles
	DefaultFar  = 1000.0
)

// Camera is a perspective camera in world coordinates. Its orientation
// only changes through LookAt; moving it keeps the direction it faces.
type Camera struct {
	FOVDeg   float64
	Aspect   float64
	Near     float64
	Far      float64
	Position vectors.Vec3
	Forward  vectors.Vec3
	Up       vectors.Vec3
}

// NewCamera returns a camera at the origin facing -Z with +Y up.
func NewCamera(aspect float64) Camera {
	return Camera{
		FOVDeg:  DefaultFOV,
		Aspect:  aspect,
		Near:    DefaultNear,
		Far:     DefaultFar,
		Forward: vectors.Vec3{Z: -1},
		Up:      vectors.Vec3{Y: 1},
	}
}

// LookAt turns the camera towards target, keeping up as close to the
// requested up as the new forward direction allows.
func (c *Camera) LookAt(target, up vectors.Vec3) {
	fwd := target.Sub(c.Position).Normalize()
	if fwd == (vectors.Vec3{}) {
		return
	}
	right := fwd.Cross(up)
	if right.Norm() < 1e-9 {
		// looking along up; keep the previous roll
		right = fwd.Cross(c.Up)
		if right.Norm() < 1e-9 {
			right = fwd.Orthogonal()
		}
	}
	right = right.Normalize()
	c.Forward = fwd
	c.Up = right.Cross(fwd).Normalize()
}

// Right returns the camera's right-hand axis.
func (c Camera) Right() vectors.Vec3 {
	return c.Forward.Cross(c.Up).Normalize()
}

// View returns the world-to-camera matrix.
func (c Camera) View() mgl64.Mat4 {
	eye := toMgl(c.Position)
	return mgl64.LookAtV(eye, eye.Add(toMgl(c.Forward)), toMgl(c.Up))
}

// Projection returns the perspective projection matrix. A non-positive
// aspect (collapsed viewport) is treated as square.
func (c Camera) Projection() mgl64.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return mgl64.Perspective(mgl64.DegToRad(c.FOVDeg), aspect, c.Near, c.Far)
}

// ComputeRay returns the normalized viewing direction through pixel (i,j)
// of a width×height viewport. i and j may be fractional.
func (c Camera) ComputeRay(i, j float64, width, height int) vectors.Vec3 {
	w := float64(width)
	h := float64(height)

	// NDC in [-1, +1], Y flipped so +up is up on screen
	xNDC := (i - (w-1)/2.0) / ((w - 1) / 2.0)
	yNDC := -((j - (h-1)/2.0) / ((h - 1) / 2.0))

	tanHalf := math.Tan(c.FOVDeg * math.Pi / 360.0)
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}

	dir := c.Right().Scale(xNDC * tanHalf * aspect).
		Add(c.Up.Scale(yNDC * tanHalf)).
		Add(c.Forward)
	return dir.Normalize()
}

func toMgl(v vectors.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}
