package render

import (
	"fmt"
	"math"
	"time"

	"github.com/echoflaresat/chartview/colors"
	"github.com/echoflaresat/chartview/earth"
	"github.com/echoflaresat/chartview/vectors"
)

// LightMode selects where the directional light comes from.
type LightMode int

const (
	// LightOffset places the light slightly north-west of the camera's
	// position, so the terrain below is always lit at an angle.
	LightOffset LightMode = iota
	// LightSun points the light at the Sun's real position.
	LightSun
)

func (m LightMode) String() string {
	switch m {
	case LightOffset:
		return "offset"
	case LightSun:
		return "sun"
	}
	return fmt.Sprintf("LightMode(%d)", int(m))
}

func ParseLightMode(s string) (LightMode, error) {
	switch s {
	case "offset":
		return LightOffset, nil
	case "sun":
		return LightSun, nil
	}
	return 0, fmt.Errorf("unknown light mode %q (want offset or sun)", s)
}

// lightShift is how far the offset light is moved in latitude and
// longitude, in radians.
const lightShift = 0.1

var (
	SkyColor     = colors.FromHex(0x86cdfa)
	LightColor   = colors.FromHex(0xaaaaaa)
	AmbientColor = colors.FromHex(0xffffff)
)

// Lighting is one directional light plus an ambient term.
type Lighting struct {
	Mode LightMode
	// Time is used by LightSun. The zero time means "now" at each update.
	Time time.Time

	// Direction is the unit vector pointing towards the light.
	Direction vectors.Vec3
	Color     colors.Color4
	Ambient   colors.Color4
	// AmbientIntensity scales Ambient when shading.
	AmbientIntensity float64
}

// NewLighting returns lighting for the initial view over latitude 0,
// longitude 0. The light starts out white; it dims once the camera jumps.
func NewLighting(mode LightMode, t time.Time) Lighting {
	l := Lighting{
		Mode:             mode,
		Time:             t,
		Ambient:          AmbientColor,
		AmbientIntensity: 0.4,
	}
	l.aim(earth.Geodetic{})
	l.Color = colors.White()
	return l
}

// Update re-aims the light for a camera over g.
func (l *Lighting) Update(g earth.Geodetic) {
	l.aim(g)
	l.Color = LightColor
}

func (l *Lighting) aim(g earth.Geodetic) {
	switch l.Mode {
	case LightSun:
		t := l.Time
		if t.IsZero() {
			t = time.Now()
		}
		l.Direction = earth.SunDirection(t)
	default:
		l.Direction = earth.Geodetic{Lat: g.Lat + lightShift, Lon: g.Lon + lightShift}.Up()
	}
}

// Shade applies Lambertian lighting to a surface of color base with unit
// normal n.
func (l Lighting) Shade(base colors.Color4, n vectors.Vec3) colors.Color4 {
	diffuse := math.Max(0, n.Dot(l.Direction))
	light := l.Ambient.Scale(l.AmbientIntensity).Add(l.Color.Scale(diffuse))
	out := base.Mul(light)
	out.A = base.A
	return out.Clamp01()
}
