package geometry

import (
	"math"
	"testing"

	"github.com/shemtrace/shemtrace/pkg/core"
)

func flatTriangleSurface(t *testing.T) *TriangleSurface {
	t.Helper()
	v0 := core.NewVec3(0, 0, 0)
	v1 := core.NewVec3(1, 0, 0)
	v2 := core.NewVec3(0, 1, 0)
	ts, err := NewTriangleSurface(SurfaceSample,
		[]core.Vec3{v0, v1, v2},
		[][3]int{{0, 1, 2}},
		[]core.Vec3{core.NewVec3(0, 0, -1)},
		[]int{3},
		[]float64{0.5},
	)
	if err != nil {
		t.Fatalf("unexpected error constructing surface: %v", err)
	}
	return ts
}

func TestTriangleSurface_Hit(t *testing.T) {
	ts := flatTriangleSurface(t)

	tests := []struct {
		name      string
		ray       core.Ray
		shouldHit bool
		expectedT float64
	}{
		{
			name:      "ray hits triangle center",
			ray:       core.NewRay(core.NewVec3(0.25, 0.25, -1), core.NewVec3(0, 0, 1)),
			shouldHit: true,
			expectedT: 1.0,
		},
		{
			name:      "ray hits triangle edge",
			ray:       core.NewRay(core.NewVec3(0.5, 0, -1), core.NewVec3(0, 0, 1)),
			shouldHit: true,
			expectedT: 1.0,
		},
		{
			name:      "ray misses triangle",
			ray:       core.NewRay(core.NewVec3(1, 1, -1), core.NewVec3(0, 0, 1)),
			shouldHit: false,
		},
		{
			name:      "ray parallel to triangle plane",
			ray:       core.NewRay(core.NewVec3(0.25, 0.25, 0), core.NewVec3(1, 0, 0)),
			shouldHit: false,
		},
		{
			name:      "back-facing ray rejected",
			ray:       core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1)),
			shouldHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := ts.Hit(tt.ray, math.Inf(1), SurfaceNone, -1)
			if isHit != tt.shouldHit {
				t.Fatalf("expected hit=%v, got hit=%v", tt.shouldHit, isHit)
			}
			if !tt.shouldHit {
				return
			}
			gotT := math.Sqrt(hit.DistSq)
			if math.Abs(gotT-tt.expectedT) > 1e-6 {
				t.Errorf("expected t=%f, got t=%f", tt.expectedT, gotT)
			}
		})
	}
}

func TestTriangleSurface_SelfIntersectionSkipped(t *testing.T) {
	ts := flatTriangleSurface(t)
	ray := core.NewRay(core.NewVec3(0.25, 0.25, -1), core.NewVec3(0, 0, 1))

	_, isHit := ts.Hit(ray, math.Inf(1), SurfaceSample, 0)
	if isHit {
		t.Error("expected self-intersection with the originating face to be skipped")
	}
}

func TestTriangleSurface_NearestFaceWinsRegardlessOfOrder(t *testing.T) {
	// Two parallel faces along the ray's path, declared far-then-near:
	// the nearer one must win even though it is evaluated second.
	near := core.NewVec3(0, 0, 1)
	far := core.NewVec3(0, 0, 2)
	ts, err := NewTriangleSurface(SurfaceSample,
		[]core.Vec3{
			far.Add(core.NewVec3(0, 0, 0)), far.Add(core.NewVec3(1, 0, 0)), far.Add(core.NewVec3(0, 1, 0)),
			near.Add(core.NewVec3(0, 0, 0)), near.Add(core.NewVec3(1, 0, 0)), near.Add(core.NewVec3(0, 1, 0)),
		},
		[][3]int{{0, 1, 2}, {3, 4, 5}},
		[]core.Vec3{core.NewVec3(0, 0, -1), core.NewVec3(0, 0, -1)},
		[]int{9, 1},
		[]float64{0, 0},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ray := core.NewRay(core.NewVec3(0.1, 0.1, 0), core.NewVec3(0, 0, 1))
	hit, isHit := ts.Hit(ray, math.Inf(1), SurfaceNone, -1)
	if !isHit {
		t.Fatal("expected hit")
	}
	if hit.MaterialID != 1 {
		t.Errorf("expected nearer face (material id 1) to win, got %d", hit.MaterialID)
	}
}

func TestNewTriangleSurface_RejectsMismatchedArrayLengths(t *testing.T) {
	_, err := NewTriangleSurface(SurfaceSample,
		[]core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)},
		[][3]int{{0, 1, 2}},
		nil,
		[]int{0},
		[]float64{0},
	)
	if err == nil {
		t.Fatal("expected geometry error for mismatched array lengths")
	}
}

func TestNewTriangleSurface_RejectsZeroAreaFace(t *testing.T) {
	v := core.NewVec3(0, 0, 0)
	_, err := NewTriangleSurface(SurfaceSample,
		[]core.Vec3{v, v, v},
		[][3]int{{0, 1, 2}},
		[]core.Vec3{core.NewVec3(0, 0, 1)},
		[]int{0},
		[]float64{0},
	)
	if err == nil {
		t.Fatal("expected geometry error for zero-area face")
	}
}

func TestNewTriangleSurface_RejectsNonUnitNormal(t *testing.T) {
	_, err := NewTriangleSurface(SurfaceSample,
		[]core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)},
		[][3]int{{0, 1, 2}},
		[]core.Vec3{core.NewVec3(0, 0, 2)},
		[]int{0},
		[]float64{0},
	)
	if err == nil {
		t.Fatal("expected geometry error for non-unit normal")
	}
}
