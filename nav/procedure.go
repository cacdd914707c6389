package nav

import (
	"math"

	"github.com/echoflaresat/chartview/earth"
	"github.com/echoflaresat/chartview/vectors"
)

// Fix is a procedure waypoint with its altitude constraint.
type Fix struct {
	Lat, Lon float64 // degrees
	AltFeet  float64
}

func (f Fix) Geodetic() earth.Geodetic { return earth.FromDegrees(f.Lat, f.Lon) }

// PathSpacing is the default largest ground distance, in nautical miles,
// between consecutive points of a procedure path.
const PathSpacing = 1.0

// ProcedurePath returns the world-space polyline through fixes on a sphere
// of the given radius. Each leg follows the great circle between its fixes
// with the altitude varying linearly, and is split so that consecutive
// points are at most spacing apart over the ground. A non-positive spacing
// leaves every leg as a single segment.
func ProcedurePath(fixes []Fix, radius, spacing float64) []vectors.Vec3 {
	if len(fixes) == 0 {
		return nil
	}
	first := fixes[0]
	path := []vectors.Vec3{first.Geodetic().ToCartesian(earth.AltitudeRadius(radius, first.AltFeet))}
	for i := 1; i < len(fixes); i++ {
		path = appendLeg(path, fixes[i-1], fixes[i], radius, spacing)
	}
	return path
}

// appendLeg adds the points after from up to and including to.
func appendLeg(path []vectors.Vec3, from, to Fix, radius, spacing float64) []vectors.Vec3 {
	a, b := from.Geodetic(), to.Geodetic()
	angle := earth.CentralAngle(a, b)

	n := 1
	if spacing > 0 {
		n = max(1, int(math.Ceil(angle*radius/spacing-1e-9)))
	}

	// the leg turns ua towards ortho, both unit and perpendicular
	ua := a.Up()
	ortho := b.Up().Sub(ua.Scale(ua.Dot(b.Up())))
	if ortho.Norm() < poleEpsilon {
		// coincident or antipodal fixes; any great circle through a will do
		ortho = ua.Orthogonal()
	}
	ortho = ortho.Normalize()

	for k := 1; k <= n; k++ {
		f := float64(k) / float64(n)
		sin, cos := math.Sincos(f * angle)
		dir := ua.Scale(cos).Add(ortho.Scale(sin))
		alt := from.AltFeet + f*(to.AltFeet-from.AltFeet)
		path = append(path, dir.Scale(earth.AltitudeRadius(radius, alt)))
	}
	return path
}

// PathLength returns the length of the polyline in nautical miles.
func PathLength(path []vectors.Vec3) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += vectors.Distance(path[i-1], path[i])
	}
	return total
}
