package geometry

import "github.com/shemtrace/shemtrace/pkg/core"

// NoAperture is the reserved "no detection" aperture index.
const NoAperture = 0

// HitRecord describes the nearest forward intersection of a ray with the
// scene: a point, its outward normal, which surface and element it came
// from, the scattering law to apply there, and (for plate hits only)
// which detector aperture captured the ray.
type HitRecord struct {
	DistSq        float64
	Point         core.Vec3
	Normal        core.Vec3
	SurfaceID     int
	ElementIndex  int // -1 for sphere and plate-disc hits
	MaterialID    int
	MaterialParam float64
	ApertureIndex int // NoAperture unless this is a plate hit through an aperture
}

// Surface identifiers. Zero is reserved so a freshly-created ray's
// on_surface/on_element pair (SurfaceNone, -1) never coincides with a
// real surface.
const (
	SurfaceNone = iota
	SurfaceSample
	SurfaceSphere
	SurfacePlate
)
