package nav

import (
	"github.com/echoflaresat/chartview/earth"
	"github.com/echoflaresat/chartview/vectors"
)

// Frame is the local tangent basis at a point on the sphere. East × North
// = Up.
type Frame struct {
	Up, East, North vectors.Vec3
}

// poleEpsilon is the smallest |polar × up| for which east is derived from
// the polar axis.
const poleEpsilon = 1e-9

// ComputeFrame returns the orthonormal up/east/north basis at g.
func ComputeFrame(g earth.Geodetic) Frame {
	f, _ := computeFrame(g)
	return f
}

// computeFrame also reports whether the pole fallback was used.
func computeFrame(g earth.Geodetic) (Frame, bool) {
	up := g.Up().Normalize()

	east := vectors.Polar.Cross(up)
	degenerate := east.Norm() < poleEpsilon
	if degenerate {
		east = up.Orthogonal() // fallback if at a pole
	} else {
		east = east.Normalize()
	}

	return Frame{
		Up:    up,
		East:  east,
		North: up.Cross(east),
	}, degenerate
}
