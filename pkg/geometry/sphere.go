package geometry

import (
	"math"

	"github.com/shemtrace/shemtrace/pkg/core"
)

// AnalyticSphere is the optional sphere resting on the sample (spec §3).
// When Present is false it is excluded from every intersection test:
// Hit checks Present first and reports no hit for an absent sphere.
type AnalyticSphere struct {
	Center        core.Vec3
	Radius        float64
	MaterialID    int
	MaterialParam float64
	Present       bool
}

// NewAnalyticSphere validates radius > 0 (spec §3 invariant) and
// constructs the sphere.
func NewAnalyticSphere(center core.Vec3, radius float64, materialID int, materialParam float64, present bool) (*AnalyticSphere, error) {
	if radius <= 0 {
		return nil, &core.GeometryError{Component: "AnalyticSphere", Reason: "radius must be positive"}
	}
	return &AnalyticSphere{
		Center:        center,
		Radius:        radius,
		MaterialID:    materialID,
		MaterialParam: materialParam,
		Present:       present,
	}, nil
}

// Hit solves the ray-sphere quadratic per spec §4.2/§4.5 candidate 2:
// t^2 + beta*t + gamma = 0 with beta = 2 d.(e-c), gamma = |e-c|^2 - r^2,
// taking the smaller root greater than 1e-9. onSurface/onElement are
// not consulted: a ray that just scattered off this same sphere has a
// root of numerically ~0, which that strict positivity threshold
// rejects in every case, per spec §4.6.
func (s *AnalyticSphere) Hit(ray core.Ray, maxDistSq float64, onSurface, onElement int) (HitRecord, bool) {
	if !s.Present {
		return HitRecord{}, false
	}

	oc := ray.Origin.Subtract(s.Center)
	beta := 2 * ray.Direction.Dot(oc)
	gamma := oc.LengthSquared() - s.Radius*s.Radius

	discriminant := beta*beta - 4*gamma
	if discriminant < 0 {
		return HitRecord{}, false
	}

	sqrtD := math.Sqrt(discriminant)
	t1 := (-beta - sqrtD) / 2
	t2 := (-beta + sqrtD) / 2

	t := t1
	if t <= 1e-9 {
		t = t2
	}
	if t <= 1e-9 {
		return HitRecord{}, false
	}

	point := ray.At(t)
	distSq := point.Subtract(ray.Origin).LengthSquared()
	if distSq >= maxDistSq {
		return HitRecord{}, false
	}

	normal := point.Subtract(s.Center).Multiply(1.0 / s.Radius)
	return HitRecord{
		DistSq:        distSq,
		Point:         point,
		Normal:        normal,
		SurfaceID:     SurfaceSphere,
		ElementIndex:  -1,
		MaterialID:    s.MaterialID,
		MaterialParam: s.MaterialParam,
	}, true
}
