package render

import (
	"log/slog"
	"math"
	"slices"

	"github.com/echoflaresat/chartview/colors"
	"github.com/echoflaresat/chartview/earth"
	"github.com/echoflaresat/chartview/nav"
	"github.com/echoflaresat/chartview/tiles"
	"github.com/echoflaresat/chartview/vectors"
	"github.com/go-gl/mathgl/mgl64"
)

// SidePanelWidth is the width in pixels of the procedure panel that
// shares the window with the 3D view.
const SidePanelWidth = 350

// Tile is a terrain tile attached to the scene. It is drawn once both its
// mesh and its texture have arrived.
type Tile struct {
	Key     tiles.Key
	Mesh    []byte
	Texture *Texture
}

func (t *Tile) Ready() bool {
	return t.Mesh != nil && t.Texture != nil
}

// Scene is the renderer side of the viewer: it holds the camera, the
// lighting and the tiles currently attached. Scene is not safe for
// concurrent use.
type Scene struct {
	Camera   Camera
	Lighting Lighting
	Sky      colors.Color4

	pose   nav.CameraPose
	frames int
	tiles  map[tiles.Key]*Tile
	lg     *slog.Logger

	// viewW and viewH are the size of the 3D view in pixels.
	viewW, viewH int
	procedure    []vectors.Vec3
}

func NewScene(lighting Lighting, lg *slog.Logger) *Scene {
	if lg == nil {
		lg = slog.Default()
	}
	return &Scene{
		Camera:   NewCamera(1),
		Lighting: lighting,
		Sky:      SkyColor,
		tiles:    make(map[tiles.Key]*Tile),
		lg:       lg,
	}
}

// Resize sets the aspect ratio for a window of the given size, leaving
// room for the side panel.
func (s *Scene) Resize(width, height int) {
	s.viewW = max(0, width-SidePanelWidth)
	s.viewH = max(0, height)
	if height <= 0 {
		s.Camera.Aspect = 0
		return
	}
	s.Camera.Aspect = float64(s.viewW) / float64(height)
}

// Hit is a point on the sphere picked through the view.
type Hit struct {
	Geodetic earth.Geodetic
	// Range is the distance from the camera in nautical miles.
	Range float64
}

// Pick casts a ray through pixel (i, j) of the 3D view and returns where it
// first meets the sphere. It returns false when the ray misses or the view
// is too small to cast through.
func (s *Scene) Pick(i, j float64) (Hit, bool) {
	if s.viewW < 2 || s.viewH < 2 {
		return Hit{}, false
	}
	o := s.Camera.Position
	d := s.Camera.ComputeRay(i, j, s.viewW, s.viewH)

	// |o + t·d|² = R² with |d| = 1
	b := o.Dot(d)
	c := o.Dot(o) - earth.Radius*earth.Radius
	disc := b*b - c
	if disc < 0 {
		return Hit{}, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 {
		// inside the sphere
		t = -b + math.Sqrt(disc)
	}
	if t < 0 {
		return Hit{}, false
	}
	p := o.Add(d.Scale(t))
	return Hit{Geodetic: earth.FromCartesian(p), Range: vectors.Distance(o, p)}, true
}

// PickCenter picks through the middle of the 3D view.
func (s *Scene) PickCenter() (Hit, bool) {
	return s.Pick(float64(s.viewW-1)/2, float64(s.viewH-1)/2)
}

// SetCameraPose implements nav.Renderer.
func (s *Scene) SetCameraPose(p nav.CameraPose) {
	s.pose = p
	s.frames++
	s.Camera.Position = p.Position
	if p.LookAt {
		s.Camera.LookAt(p.GazeTarget, p.Up)
	}
	if p.Jump {
		s.Lighting.Update(p.Geodetic)
		lat, lon := p.Geodetic.Degrees()
		s.lg.Debug("light re-aimed", "mode", s.Lighting.Mode.String(), "lat", lat, "lon", lon)
	}
}

// Pose returns the last pose received.
func (s *Scene) Pose() nav.CameraPose { return s.pose }

// Frames returns how many poses have been received.
func (s *Scene) Frames() int { return s.frames }

func (s *Scene) View() mgl64.Mat4       { return s.Camera.View() }
func (s *Scene) Projection() mgl64.Mat4 { return s.Camera.Projection() }

// ViewProjection returns projection × view.
func (s *Scene) ViewProjection() mgl64.Mat4 {
	return s.Camera.Projection().Mul4(s.Camera.View())
}

// Apply attaches or detaches a tile according to ev.
func (s *Scene) Apply(ev tiles.Event) {
	k := ev.TileKey()
	switch ev := ev.(type) {
	case tiles.MeshReady:
		s.tile(k).Mesh = ev.Mesh
	case tiles.TextureReady:
		tex := NewTexture(ev.Texture)
		s.tile(k).Texture = &tex
	case tiles.Unloaded:
		delete(s.tiles, k)
	case tiles.LoadFailed:
		s.lg.Warn("tile unavailable", "tile", k.String(), "error", ev.Err)
	}
}

func (s *Scene) tile(k tiles.Key) *Tile {
	t, ok := s.tiles[k]
	if !ok {
		t = &Tile{Key: k}
		s.tiles[k] = t
	}
	return t
}

// Tile returns the attached tile k, if any.
func (s *Scene) Tile(k tiles.Key) (*Tile, bool) {
	t, ok := s.tiles[k]
	return t, ok
}

// Tiles returns the keys of the attached tiles in lat-major order.
func (s *Scene) Tiles() []tiles.Key {
	keys := make([]tiles.Key, 0, len(s.tiles))
	for k := range s.tiles {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b tiles.Key) int {
		if a.Lat != b.Lat {
			return a.Lat - b.Lat
		}
		return a.Lon - b.Lon
	})
	return keys
}

// Ground returns the lit color of the terrain under g, or false when the
// tile there is not ready.
func (s *Scene) Ground(g earth.Geodetic) (colors.Color4, bool) {
	k := tiles.KeyAt(g)
	t, ok := s.tiles[k]
	if !ok || !t.Ready() {
		return colors.Color4{}, false
	}
	return s.Lighting.Shade(t.Texture.Sample(k, g), g.Up()), true
}

// SetProcedure replaces the procedure polyline drawn over the terrain.
func (s *Scene) SetProcedure(path []vectors.Vec3) {
	s.procedure = path
	s.lg.Debug("procedure path set", "points", len(path))
}

func (s *Scene) Procedure() []vectors.Vec3 { return s.procedure }

// Clear returns the color of empty sky.
func (s *Scene) Clear() colors.Color4 { return s.Sky }
