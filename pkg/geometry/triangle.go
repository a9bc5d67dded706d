package geometry

import (
	"math"
	"sync/atomic"

	"github.com/shemtrace/shemtrace/pkg/core"
)

// TriangleSurface is the triangulated-mesh primitive shared by the
// sample and (optionally) the plate: vertices, faces, per-face outward
// normals, and per-face scattering-law selection (material id + real
// parameter). Faces, normals and material ids are parallel arrays of
// equal length, per spec.
//
// The per-pixel sample translation is realised as an implicit offset:
// TriangleSurface itself never moves. Instead Hit receives the ray
// already expressed in surface-local coordinates (the scene subtracts
// the current pixel offset from the ray origin before calling Hit and
// adds it back to the resulting hit point). This avoids cloning the
// vertex buffer per pixel while keeping the BVH, built once over the
// untranslated geometry, valid for the life of the run.
type TriangleSurface struct {
	SurfaceID      int
	Vertices       []core.Vec3
	Faces          [][3]int
	Normals        []core.Vec3
	MaterialIDs    []int
	MaterialParams []float64

	// ApertureIndices is optional (nil unless this surface is used as a
	// triangulated plate model): when set, it assigns each face a
	// detector aperture index (NoAperture for ordinary plate facets),
	// letting a triangulated plate detect through specific faces the
	// same way the back-wall model detects through ellipses.
	ApertureIndices []int

	faceBoxes   []core.AABB
	faceCenters []core.Vec3
	root        *faceBVHNode

	// degenerate counts Solve3x3 singularities skipped in hitFace (spec
	// §7 "Numerical degeneracy"). Workers call Hit concurrently against
	// the same shared surface, so this is an atomic counter rather than
	// a plain int.
	degenerate atomic.Int64
}

// DegenerateCount reports how many candidate intersections this surface
// has skipped due to a singular Solve3x3 since construction.
func (ts *TriangleSurface) DegenerateCount() int64 {
	return ts.degenerate.Load()
}

// NewTriangleSurface validates and constructs a triangulated surface.
// Invariants enforced here (spec §3): face count equals normal count
// equals material-id count; normals are unit-norm; vertex indices are
// in range. Violations are reported as *core.GeometryError, fatal at
// construction.
func NewTriangleSurface(surfaceID int, vertices []core.Vec3, faces [][3]int, normals []core.Vec3, materialIDs []int, materialParams []float64) (*TriangleSurface, error) {
	n := len(faces)
	if len(normals) != n || len(materialIDs) != n || len(materialParams) != n {
		return nil, &core.GeometryError{
			Component: "TriangleSurface",
			Reason:    "face, normal, and material-id arrays must have equal length",
		}
	}

	for i, f := range faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(vertices) {
				return nil, &core.GeometryError{
					Component: "TriangleSurface",
					Reason:    "face vertex index out of range",
				}
			}
		}
		if !normals[i].IsUnit(1e-6) {
			return nil, &core.GeometryError{
				Component: "TriangleSurface",
				Reason:    "face normal is not unit-norm",
			}
		}
		a, b, c := vertices[f[0]], vertices[f[1]], vertices[f[2]]
		area := b.Subtract(a).Cross(c.Subtract(a)).Length()
		if area < 1e-18 {
			return nil, &core.GeometryError{
				Component: "TriangleSurface",
				Reason:    "zero-area face",
			}
		}
	}

	ts := &TriangleSurface{
		SurfaceID:      surfaceID,
		Vertices:       vertices,
		Faces:          faces,
		Normals:        normals,
		MaterialIDs:    materialIDs,
		MaterialParams: materialParams,
	}
	ts.buildBVH()
	return ts, nil
}

func (ts *TriangleSurface) buildBVH() {
	n := len(ts.Faces)
	ts.faceBoxes = make([]core.AABB, n)
	ts.faceCenters = make([]core.Vec3, n)
	faceIdx := make([]int, n)
	for i, f := range ts.Faces {
		a, b, c := ts.Vertices[f[0]], ts.Vertices[f[1]], ts.Vertices[f[2]]
		box := core.NewAABBFromPoints(a, b, c)
		ts.faceBoxes[i] = box
		ts.faceCenters[i] = box.Center()
		faceIdx[i] = i
	}
	if n > 0 {
		ts.root = buildFaceBVH(faceIdx, ts.faceBoxes, ts.faceCenters)
	}
}

// Hit finds the nearest forward intersection of ray (already expressed
// in this surface's local frame) with this surface's faces, excluding
// the face identified by (onSurface, onElement) from consideration
// (self-intersection avoidance). maxDistSq bounds the squared distance of
// candidates already found elsewhere in the scene.
func (ts *TriangleSurface) Hit(ray core.Ray, maxDistSq float64, onSurface, onElement int) (HitRecord, bool) {
	if ts.root == nil {
		return HitRecord{}, false
	}
	best := HitRecord{DistSq: maxDistSq}
	found := false
	ts.hitNode(ts.root, ray, onSurface, onElement, &best, &found)
	return best, found
}

func (ts *TriangleSurface) hitNode(node *faceBVHNode, ray core.Ray, onSurface, onElement int, best *HitRecord, found *bool) {
	// Ray directions are unit-norm (spec invariant), so t along the ray
	// equals distance; the slab test's tMax can use sqrt(best.DistSq)
	// directly as a broad-phase reject.
	tMax := math.Sqrt(math.Max(best.DistSq, 0))
	if !node.bbox.Hit(ray, 0, tMax) {
		return
	}
	if node.faces != nil {
		for _, f := range node.faces {
			ts.hitFace(ray, f, onSurface, onElement, best, found)
		}
		return
	}
	if node.left != nil {
		ts.hitNode(node.left, ray, onSurface, onElement, best, found)
	}
	if node.right != nil {
		ts.hitNode(node.right, ray, onSurface, onElement, best, found)
	}
}

// hitFace tests a single face per spec §4.5 candidate 1. Candidates are
// accepted only on strictly smaller squared distance, which gives the
// earlier-evaluated candidate the tie-break win for exact ties since
// later candidates require a strict improvement to replace it.
func (ts *TriangleSurface) hitFace(ray core.Ray, faceIdx int, onSurface, onElement int, best *HitRecord, found *bool) {
	if onSurface == ts.SurfaceID && onElement == faceIdx {
		return
	}

	normal := ts.Normals[faceIdx]
	if ray.Direction.Dot(normal) > 0 {
		return
	}

	f := ts.Faces[faceIdx]
	a, b, c := ts.Vertices[f[0]], ts.Vertices[f[1]], ts.Vertices[f[2]]

	if allBehindOrigin(ray, a, b, c) {
		return
	}

	col0 := a.Subtract(b)
	col1 := a.Subtract(c)
	col2 := ray.Direction
	v := a.Subtract(ray.Origin)

	u, ok := core.Solve3x3(col0, col1, col2, v, core.Solve3x3Epsilon)
	if !ok {
		ts.degenerate.Add(1)
		return
	}

	beta, gamma, t := u.X, u.Y, u.Z
	if beta < 0 || gamma < 0 || beta+gamma > 1 || t <= 0 {
		return
	}

	point := ray.At(t)
	distSq := point.Subtract(ray.Origin).LengthSquared()
	if distSq >= best.DistSq {
		return
	}

	apertureIdx := NoAperture
	if ts.ApertureIndices != nil {
		apertureIdx = ts.ApertureIndices[faceIdx]
	}

	*best = HitRecord{
		DistSq:        distSq,
		Point:         point,
		Normal:        normal,
		SurfaceID:     ts.SurfaceID,
		ElementIndex:  faceIdx,
		MaterialID:    ts.MaterialIDs[faceIdx],
		MaterialParam: ts.MaterialParams[faceIdx],
		ApertureIndex: apertureIdx,
	}
	*found = true
}

// allBehindOrigin reports whether all three vertices lie strictly behind
// the ray origin along its direction — a cheap reject before the linear
// solve (spec §4.5 candidate 1).
func allBehindOrigin(ray core.Ray, a, b, c core.Vec3) bool {
	return a.Subtract(ray.Origin).Dot(ray.Direction) < 0 &&
		b.Subtract(ray.Origin).Dot(ray.Direction) < 0 &&
		c.Subtract(ray.Origin).Dot(ray.Direction) < 0
}
