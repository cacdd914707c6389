package vectors

import (
	"math"
	"testing"
)

func TestCrossRightHanded(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	z := Vec3{0, 0, 1}

	cases := []struct {
		name string
		a, b Vec3
		want Vec3
	}{
		{"x*y", x, y, z},
		{"y*z", y, z, x},
		{"z*x", z, x, y},
		{"y*x", y, x, z.Scale(-1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Cross(c.b); !got.ApproxEqual(c.want, 0) {
				t.Errorf("%v x %v = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestNormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize of zero vector = %v, want zero", got)
	}
	v := Vec3{3, 4, 12}.Normalize()
	if math.Abs(v.Norm()-1) > 1e-12 {
		t.Errorf("|Normalize(v)| = %f, want 1", v.Norm())
	}
}

func TestOrthogonal(t *testing.T) {
	for _, v := range []Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {0.3, -0.9, 0.1}, Polar} {
		o := v.Orthogonal()
		if math.Abs(o.Dot(v)) > 1e-12 {
			t.Errorf("Orthogonal(%v) = %v is not perpendicular", v, o)
		}
		if math.Abs(o.Norm()-1) > 1e-12 {
			t.Errorf("Orthogonal(%v) = %v is not a unit vector", v, o)
		}
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(Vec3{1, 2, 3}, Vec3{4, 6, 3}); d != 5 {
		t.Errorf("Distance = %f, want 5", d)
	}
}
