package nav

import (
	"math"
	"testing"
	"time"

	"github.com/echoflaresat/chartview/earth"
)

func testAxes() Axes {
	f := ComputeFrame(earth.Geodetic{})
	return Axes{Up: f.Up, Gaze: f.North}
}

func TestVelocity(t *testing.T) {
	ig := NewIntegrator(DefaultConfig())
	f := ComputeFrame(earth.Geodetic{})

	cases := []struct {
		name string
		in   InputState
		want float64 // speed along north
	}{
		{"forward", InputState{MoveForward: true}, 0.025},
		{"fast forward", InputState{MoveForward: true, Fast: true}, 0.15},
		{"forward wins", InputState{MoveForward: true, MoveBackward: true}, 0.025},
		{"backward", InputState{MoveBackward: true}, -0.025},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := ig.Velocity(c.in, testAxes())
			if got := v.Dot(f.North); math.Abs(got-c.want) > 1e-12 {
				t.Errorf("north component = %v, want %v", got, c.want)
			}
			if math.Abs(v.Dot(f.East)) > 1e-12 || math.Abs(v.Dot(f.Up)) > 1e-12 {
				t.Errorf("unexpected sideways/vertical motion %v", v)
			}
		})
	}

	t.Run("right is east", func(t *testing.T) {
		v := ig.Velocity(InputState{MoveRight: true}, testAxes())
		if !v.ApproxEqual(f.East.Scale(0.025), 1e-12) {
			t.Errorf("velocity = %v, want east", v)
		}
	})
	t.Run("vertical ignores pitch", func(t *testing.T) {
		axes := testAxes()
		axes.Gaze = f.Forward(LookAngles{Pitch: -1.2})
		v := ig.Velocity(InputState{MoveUp: true}, axes)
		if !v.ApproxEqual(f.Up.Scale(0.025), 1e-12) {
			t.Errorf("velocity = %v, want up", v)
		}
	})
	t.Run("forward stays level when pitched", func(t *testing.T) {
		axes := testAxes()
		axes.Gaze = f.Forward(LookAngles{Pitch: 0.8})
		v := ig.Velocity(InputState{MoveForward: true}, axes)
		if !v.ApproxEqual(f.North.Scale(0.025), 1e-12) {
			t.Errorf("velocity = %v, want level north", v)
		}
	})
}

func TestIntegrateScalesByTime(t *testing.T) {
	ig := NewIntegrator(DefaultConfig())
	var drag DragState
	m := ig.Integrate(InputState{MoveForward: true}, &drag, testAxes(), 100*time.Millisecond)
	// 0.025 per unit, 100 units per second
	if got := m.Velocity.Norm(); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("|velocity| = %v, want 0.25", got)
	}
	if m.HeadingDelta != 0 || m.PitchDelta != 0 {
		t.Errorf("turn without drag: %+v", m)
	}
}

func TestTurn(t *testing.T) {
	cfg := DefaultConfig()
	ig := NewIntegrator(cfg)
	frame := cfg.TurnReference

	var drag DragState
	drag.Begin(100, 100)
	drag.Move(150, 120)
	if h, p := ig.Turn(&drag, frame); h != 0 || p != 0 {
		t.Fatalf("first sample produced turn %v, %v", h, p)
	}

	drag.Move(160, 90)
	h, p := ig.Turn(&drag, frame)
	if want := 1 * earth.DegToRad; math.Abs(h-want) > 1e-12 {
		t.Errorf("heading delta = %v, want %v (right turns right)", h, want)
	}
	if want := 3 * earth.DegToRad; math.Abs(p-want) > 1e-12 {
		t.Errorf("pitch delta = %v, want %v (up looks up)", p, want)
	}

	// no movement since the last frame
	if h, p := ig.Turn(&drag, frame); h != 0 || p != 0 {
		t.Errorf("idle drag produced turn %v, %v", h, p)
	}

	drag.Move(170, 90)
	if h2, _ := ig.Turn(&drag, 2*frame); math.Abs(h2-2*earth.DegToRad) > 1e-12 {
		t.Errorf("heading delta over two reference frames = %v, want %v", h2, 2*earth.DegToRad)
	}

	drag.End()
	drag.Move(500, 500)
	if h, p := ig.Turn(&drag, frame); h != 0 || p != 0 {
		t.Errorf("inactive drag produced turn %v, %v", h, p)
	}
}

func TestTurnUnscaled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScaleTurnByTime = false
	cfg.PixelsPerDegree = 7
	ig := NewIntegrator(cfg)

	var drag DragState
	drag.Begin(0, 0)
	ig.Turn(&drag, time.Second)
	drag.Move(14, 0)
	if h, _ := ig.Turn(&drag, time.Second); math.Abs(h-2*earth.DegToRad) > 1e-12 {
		t.Errorf("heading delta = %v, want 2 degrees", h)
	}
}

func TestParseKey(t *testing.T) {
	for k := MoveForward; k <= FastToggle; k++ {
		got, err := ParseKey(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKey(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKey("Jump"); err == nil {
		t.Errorf("expected error for unknown key")
	}
}
