package geometry

import (
	"math"
	"testing"

	"github.com/shemtrace/shemtrace/pkg/core"
)

func TestAnalyticSphere_AbsentSphereNeverHits(t *testing.T) {
	s, err := NewAnalyticSphere(core.NewVec3(0, 0, 0), 1.0, 2, 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	_, isHit := s.Hit(ray, math.Inf(1), SurfaceNone, -1)
	if isHit {
		t.Error("expected absent sphere to never report a hit")
	}
}

func TestAnalyticSphere_Hit_Miss(t *testing.T) {
	s, _ := NewAnalyticSphere(core.NewVec3(0, 0, 0), 1.0, 2, 0, true)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	_, isHit := s.Hit(ray, math.Inf(1), SurfaceNone, -1)
	if isHit {
		t.Error("expected miss")
	}
}

func TestAnalyticSphere_Hit_FrontFace(t *testing.T) {
	s, _ := NewAnalyticSphere(core.NewVec3(0, 0, 0), 1.0, 2, 0, true)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	hit, isHit := s.Hit(ray, math.Inf(1), SurfaceNone, -1)
	if !isHit {
		t.Fatal("expected hit")
	}
	if math.Abs(math.Sqrt(hit.DistSq)-1.0) > 1e-9 {
		t.Errorf("expected t=1, got t=%f", math.Sqrt(hit.DistSq))
	}
	expectedNormal := core.NewVec3(0, 0, 1)
	if hit.Normal.Subtract(expectedNormal).Length() > 1e-9 {
		t.Errorf("expected normal %v, got %v", expectedNormal, hit.Normal)
	}
}

func TestAnalyticSphere_Hit_ClosestRootWins(t *testing.T) {
	s, _ := NewAnalyticSphere(core.NewVec3(0, 0, 0), 1.0, 2, 0, true)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	hit, isHit := s.Hit(ray, math.Inf(1), SurfaceNone, -1)
	if !isHit {
		t.Fatal("expected hit")
	}
	if hit.Point.Z < 0 {
		t.Errorf("expected the near intersection point, got %v", hit.Point)
	}
}

func TestAnalyticSphere_SelfIntersection_RejectsNearZeroRoot(t *testing.T) {
	// A ray leaving the sphere surface outward must not re-intersect near
	// t=0 due to floating point noise; only a strictly positive root
	// beyond a small epsilon is accepted.
	s, _ := NewAnalyticSphere(core.NewVec3(0, 0, 0), 1.0, 2, 0, true)
	origin := core.NewVec3(0, 0, 1)
	ray := core.NewRay(origin, core.NewVec3(0, 0, 1))

	_, isHit := s.Hit(ray, math.Inf(1), SurfaceSphere, -1)
	if isHit {
		t.Error("expected outward-leaving ray to miss its own surface")
	}
}

func TestAnalyticSphere_RejectsNonPositiveRadius(t *testing.T) {
	_, err := NewAnalyticSphere(core.NewVec3(0, 0, 0), 0, 2, 0, true)
	if err == nil {
		t.Fatal("expected geometry error for non-positive radius")
	}
}
