package earth

import (
	"math"
	"time"

	"github.com/echoflaresat/chartview/vectors"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
)

const Radius = 3443.9184665 // Earth radius in nautical miles (spherical approximation)

const (
	NauticalMilesToFeet = 6076.12
	FeetToNauticalMiles = 1 / NauticalMilesToFeet

	DegToRad = math.Pi / 180
	RadToDeg = 180 / math.Pi
)

// Geodetic is a latitude/longitude pair in radians.
type Geodetic struct {
	Lat, Lon float64
}

// FromDegrees converts a latitude/longitude given in degrees.
func FromDegrees(latDeg, lonDeg float64) Geodetic {
	return Geodetic{Lat: latDeg * DegToRad, Lon: lonDeg * DegToRad}
}

// Degrees returns latitude and longitude in degrees.
func (g Geodetic) Degrees() (lat, lon float64) {
	return g.Lat * RadToDeg, g.Lon * RadToDeg
}

// Up returns the unit vector from the center of the sphere through g.
func (g Geodetic) Up() vectors.Vec3 {
	cosLat := math.Cos(g.Lat)
	return vectors.Vec3{
		X: cosLat * math.Cos(g.Lon),
		Y: math.Sin(g.Lat),
		Z: -cosLat * math.Sin(g.Lon),
	}
}

// ToCartesian returns the point at distance r from the center along g.
func (g Geodetic) ToCartesian(r float64) vectors.Vec3 {
	return g.Up().Scale(r)
}

// FromCartesian recovers latitude and longitude from a world position.
// p must not be the zero vector. The returned longitude is in (-π, π].
func FromCartesian(p vectors.Vec3) Geodetic {
	s := p.Y / p.Norm()
	// rounding can push |s| a hair past 1 right at the poles
	s = math.Max(-1, math.Min(1, s))
	return Geodetic{
		Lat: math.Asin(s),
		Lon: -math.Atan2(p.Z, p.X),
	}
}

// CentralAngle returns the angle in radians between a and b as seen from
// the center of the sphere.
func CentralAngle(a, b Geodetic) float64 {
	ua, ub := a.Up(), b.Up()
	return math.Atan2(ua.Cross(ub).Norm(), ua.Dot(ub))
}

// AltitudeRadius converts an altitude in feet above a sphere of the given
// radius into a distance from the center in nautical miles.
func AltitudeRadius(radius, altFeet float64) float64 {
	return radius + altFeet*FeetToNauticalMiles
}

// AltitudeFeet is the inverse of AltitudeRadius.
func AltitudeFeet(radius, r float64) float64 {
	return (r - radius) * NauticalMilesToFeet
}

// SunDirection returns the unit vector from the Earth's center towards
// the Sun at time t, in the viewer's world frame.
func SunDirection(t time.Time) vectors.Vec3 {
	t = t.UTC()
	jd := julian.TimeToJD(t)

	// Step 1: Apparent RA/Dec of the Sun (in radians)
	ra, dec := solar.ApparentEquatorial(jd)

	// Step 2: Unit vector in ECI (Earth-centered inertial)
	cosDec := math.Cos(dec.Rad())
	x := cosDec * math.Cos(ra.Rad())
	y := cosDec * math.Sin(ra.Rad())
	z := math.Sin(dec.Rad())

	// Step 3: Rotate ECI → ECEF using apparent sidereal time at t
	gmst := sidereal.Apparent(jd)
	cosGMST := math.Cos(gmst.Angle().Rad())
	sinGMST := math.Sin(gmst.Angle().Rad())

	xe := x*cosGMST + y*sinGMST
	ye := -x*sinGMST + y*cosGMST
	ze := z

	// ECEF has +Z north and +Y at 90°E; the world frame has +Y north
	// and +Z at 90°W.
	return vectors.Vec3{X: xe, Y: ze, Z: -ye}.Normalize()
}
