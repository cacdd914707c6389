package nav

import (
	"github.com/echoflaresat/chartview/earth"
	"github.com/echoflaresat/chartview/vectors"
)

// GeodeticState holds the camera's latitude and longitude and caches the
// tangent frame there. The frame is rebuilt from scratch after every
// mutation rather than updated incrementally.
type GeodeticState struct {
	pos        earth.Geodetic
	frame      Frame
	frameValid bool
	degenerate bool
}

func (s *GeodeticState) Current() earth.Geodetic {
	return s.pos
}

// SetFromCartesian derives latitude and longitude from a world position.
func (s *GeodeticState) SetFromCartesian(p vectors.Vec3) {
	s.pos = earth.FromCartesian(p)
	s.frameValid = false
}

// JumpTo sets the position directly. Longitude is stored as given.
func (s *GeodeticState) JumpTo(g earth.Geodetic) {
	s.pos = g
	s.frameValid = false
}

// Frame returns the tangent frame at the current position.
func (s *GeodeticState) Frame() Frame {
	if !s.frameValid {
		s.frame, s.degenerate = computeFrame(s.pos)
		s.frameValid = true
	}
	return s.frame
}

// Degenerate reports whether the current frame used the pole fallback.
func (s *GeodeticState) Degenerate() bool {
	s.Frame()
	return s.degenerate
}
