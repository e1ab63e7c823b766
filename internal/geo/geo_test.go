package geo

import (
	"math"
	"testing"
)

func approxVec(a, b Vec3, eps float64) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestProject(t *testing.T) {
	tests := []struct {
		name   string
		c      Coordinates
		radius float64
		want   Vec3
	}{
		{"origin meridian", Coordinates{0, 0}, 1, Vec3{1, 0, 0}},
		{"antimeridian", Coordinates{0, 180}, 1, Vec3{-1, 0, 0}},
		{"north pole", Coordinates{90, 0}, 2, Vec3{0, 2, 0}},
		{"south pole", Coordinates{-90, 45}, 1, Vec3{0, -1, 0}},
		{"lon 90", Coordinates{0, 90}, 1, Vec3{0, 0, -1}},
		{"lon -90", Coordinates{0, -90}, 1, Vec3{0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.c, tt.radius)
			if !approxVec(got, tt.want, 1e-9) {
				t.Errorf("Project(%v, %v) = %v, want %v", tt.c, tt.radius, got, tt.want)
			}
		})
	}
}

func TestProjectRadius(t *testing.T) {
	for _, c := range []Coordinates{{1.3521, 103.8198}, {-33.8688, 151.2093}, {51.5, -0.12}} {
		got := Project(c, 300).Norm()
		if math.Abs(got-300) > 1e-9 {
			t.Errorf("|Project(%v, 300)| = %v, want 300", c, got)
		}
	}
}

func TestUnprojectRoundTrip(t *testing.T) {
	coords := []Coordinates{
		{0, 0}, {1.3521, 103.8198}, {-33.8688, 151.2093}, {51.5, -0.12}, {60, -179.5}, {-45, 179},
	}
	for _, c := range coords {
		got := Unproject(Project(c, 450))
		if math.Abs(got.Lat-c.Lat) > 1e-9 || math.Abs(got.Lon-c.Lon) > 1e-9 {
			t.Errorf("Unproject(Project(%v)) = %v", c, got)
		}
	}
}

func TestNormalizeLon(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0}, {180, -180}, {-180, -180}, {190, -170}, {-190, 170}, {540, -180}, {359, -1},
	}
	for _, tt := range tests {
		if got := NormalizeLon(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeLon(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCoordinatesKey(t *testing.T) {
	tests := []struct {
		c    Coordinates
		want string
	}{
		{Coordinates{1, 2}, "1,2"},
		{Coordinates{1.3521, 103.8198}, "1.3521,103.8198"},
		{Coordinates{-0.5, -120}, "-0.5,-120"},
	}
	for _, tt := range tests {
		if got := CoordinatesKey(tt.c); got != tt.want {
			t.Errorf("CoordinatesKey(%v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestVec3Ops(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	if got := x.Cross(y); !approxVec(got, Vec3{0, 0, 1}, 1e-12) {
		t.Errorf("x.Cross(y) = %v, want {0 0 1}", got)
	}
	if got := x.Dot(y); got != 0 {
		t.Errorf("x.Dot(y) = %v, want 0", got)
	}
	if got := (Vec3{3, 4, 0}).Normalized().Norm(); math.Abs(got-1) > 1e-12 {
		t.Errorf("Normalized().Norm() = %v, want 1", got)
	}
	if got := VecFrom(Vec3{1, 2, 3}.Slice()); got != (Vec3{1, 2, 3}) {
		t.Errorf("VecFrom(Slice()) = %v", got)
	}
	if got := x.Lerp(y, 0.25); !approxVec(got, Vec3{0.75, 0.25, 0}, 1e-12) {
		t.Errorf("x.Lerp(y, 0.25) = %v, want {0.75 0.25 0}", got)
	}
	if got := x.Lerp(y, 1); got != y {
		t.Errorf("x.Lerp(y, 1) = %v, want %v", got, y)
	}
	if got := VecFrom([]float64{1}); got != (Vec3{}) {
		t.Errorf("VecFrom(short) = %v, want zero", got)
	}
}
