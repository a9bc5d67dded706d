package scene

import (
	"math"

	"github.com/shemtrace/shemtrace/pkg/core"
	"github.com/shemtrace/shemtrace/pkg/geometry"
)

// PlateSurface is satisfied by both plate models spec.md §3 allows: the
// analytic *geometry.BackWallPlate and a triangulated
// *geometry.TriangleSurface used as the plate.
type PlateSurface interface {
	Hit(ray core.Ray, maxDistSq float64, onSurface, onElement int) (geometry.HitRecord, bool)
}

// Scene is the immutable bundle C3 describes: sample surface, plate,
// optional sphere. It is built once per run and shared read-only across
// workers; the per-pixel sample translation is never stored on the
// Scene but carried by each pixel's own PixelView (see NewPixelView).
type Scene struct {
	Sample *geometry.TriangleSurface
	Plate  PlateSurface
	Sphere *geometry.AnalyticSphere
}

// DegenerateTriangleCount sums the degenerate-intersection counters
// (spec §7 "Numerical degeneracy") across every TriangleSurface in the
// scene: the sample always, and the plate too when it is triangulated
// rather than the analytic back-wall model.
func (s *Scene) DegenerateTriangleCount() int64 {
	count := s.Sample.DegenerateCount()
	if plate, ok := s.Plate.(*geometry.TriangleSurface); ok {
		count += plate.DegenerateCount()
	}
	return count
}

// PixelView is a per-pixel, per-worker handle on the shared Scene that
// carries the current sample translation. Constructing one is cheap
// (no allocation beyond the struct itself) since the translation is an
// implicit offset applied at intersection time, not a vertex-buffer
// clone (spec.md §5, resolved in SPEC_FULL.md §5).
type PixelView struct {
	scene       *Scene
	translation core.Vec3
}

// NewPixelView returns a view of scene translated by offset, per spec
// §4.8 step 2a: translation = (xrange.low + iΔ, 0, zrange.low + jΔ).
func NewPixelView(s *Scene, offset core.Vec3) *PixelView {
	return &PixelView{scene: s, translation: offset}
}

// NearestHit implements the C5 intersection-kernel ordering of spec
// §4.5: sample surface, then sphere, then plate, each candidate
// accepted only on strict squared-distance improvement. The sample and
// the sphere resting on it are tested in the translated frame; the
// plate is not translated. plateActive gates candidate 3, per the
// first-scatter policy of spec §4.6.
func (v *PixelView) NearestHit(ray core.Ray, onSurface, onElement int, plateActive bool) (geometry.HitRecord, bool) {
	maxDistSq := math.Inf(1)
	var best geometry.HitRecord
	found := false

	localRay := core.NewRay(ray.Origin.Subtract(v.translation), ray.Direction)
	if hit, ok := v.scene.Sample.Hit(localRay, maxDistSq, onSurface, onElement); ok {
		hit.Point = hit.Point.Add(v.translation)
		best, found = hit, true
		maxDistSq = hit.DistSq
	}

	if v.scene.Sphere != nil {
		if hit, ok := v.scene.Sphere.Hit(localRay, maxDistSq, onSurface, onElement); ok {
			hit.Point = hit.Point.Add(v.translation)
			best, found = hit, true
			maxDistSq = hit.DistSq
		}
	}

	if plateActive && v.scene.Plate != nil {
		if hit, ok := v.scene.Plate.Hit(ray, maxDistSq, onSurface, onElement); ok {
			best, found = hit, true
		}
	}

	return best, found
}
