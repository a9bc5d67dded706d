package geometry

import "github.com/shemtrace/shemtrace/pkg/core"

// Aperture is an elliptical detector opening in plate-local (x, z)
// coordinates: x^2/(a/2)^2 + z^2/(b/2)^2 = 1, per spec §3. Aperture
// indices within an ordered set are 1-based; index 0 is reserved for
// "no detection" (NoAperture).
type Aperture struct {
	Center core.Vec2
	Axes   core.Vec2 // full axes (a, b)
}

// Contains reports whether plate-local point p lies within this
// aperture's ellipse.
func (ap Aperture) Contains(p core.Vec2) bool {
	dx := p.X - ap.Center.X
	dz := p.Y - ap.Center.Y
	halfA := ap.Axes.X / 2
	halfB := ap.Axes.Y / 2
	return (dx*dx)/(halfA*halfA)+(dz*dz)/(halfB*halfB) <= 1
}

// BackWallPlate is the flat-disc plate model (spec §3): a circular
// region of radius Radius in the plane y=0 with outward normal
// (0,-1,0), carrying an ordered Apertures set and a PlateRepresent flag
// controlling whether a ray that misses every aperture but still lands
// on the plate disc is absorbed (true) or passes through (false).
type BackWallPlate struct {
	Radius         float64
	Apertures      []Aperture
	PlateRepresent bool
	MaterialID     int
	MaterialParam  float64
}

// NewBackWallPlate validates radius > 0 (spec §3 invariant).
func NewBackWallPlate(radius float64, apertures []Aperture, plateRepresent bool, materialID int, materialParam float64) (*BackWallPlate, error) {
	if radius <= 0 {
		return nil, &core.GeometryError{Component: "BackWallPlate", Reason: "radius must be positive"}
	}
	return &BackWallPlate{
		Radius:         radius,
		Apertures:      apertures,
		PlateRepresent: plateRepresent,
		MaterialID:     materialID,
		MaterialParam:  materialParam,
	}, nil
}

// Hit implements spec §4.5 candidate 3 for the back-wall plate model:
// intersect the plane y=0 at t = -e_y/d_y, only when d_y > 0 (plate
// faces -y, so only rays travelling toward it can hit it). Apertures
// are tested in declared order and the first containing ellipse wins.
// If none contain the hit and PlateRepresent is set and the hit lies
// within the plate disc, the plate absorbs the ray (an element hit with
// ApertureIndex == NoAperture); otherwise the ray passes through (miss).
func (p *BackWallPlate) Hit(ray core.Ray, maxDistSq float64, onSurface, onElement int) (HitRecord, bool) {
	if ray.Direction.Y <= 0 {
		return HitRecord{}, false
	}

	t := -ray.Origin.Y / ray.Direction.Y
	if t <= 0 {
		return HitRecord{}, false
	}

	point := ray.At(t)
	distSq := point.Subtract(ray.Origin).LengthSquared()
	if distSq >= maxDistSq {
		return HitRecord{}, false
	}

	local := core.NewVec2(point.X, point.Z)

	for i, ap := range p.Apertures {
		if ap.Contains(local) {
			return HitRecord{
				DistSq:        distSq,
				Point:         point,
				Normal:        core.NewVec3(0, -1, 0),
				SurfaceID:     SurfacePlate,
				ElementIndex:  -1,
				ApertureIndex: i + 1,
			}, true
		}
	}

	if local.X*local.X+local.Y*local.Y > p.Radius*p.Radius {
		return HitRecord{}, false
	}

	if !p.PlateRepresent {
		return HitRecord{}, false
	}

	return HitRecord{
		DistSq:        distSq,
		Point:         point,
		Normal:        core.NewVec3(0, -1, 0),
		SurfaceID:     SurfacePlate,
		ElementIndex:  -1,
		MaterialID:    p.MaterialID,
		MaterialParam: p.MaterialParam,
		ApertureIndex: NoAperture,
	}, true
}
