// Package scene bundles the sample surface, plate, and optional sphere
// into the immutable Scene the intersection kernel queries, and
// provides a small library of programmatic scene constructors that
// stand in for the external STL/mesh-file loader (out of scope per
// spec.md §1/§6).
package scene

import "github.com/shemtrace/shemtrace/pkg/core"

// MeshData is the (V, F, N, C, P) ingestion contract of spec.md §6: an
// external collaborator (an STL/OBJ loader, or here, a programmatic
// constructor) delivers vertex positions, triangle indices, per-face
// outward normals, per-face material ids, and per-face material
// parameters. The core never parses a mesh file itself; it only
// consumes these arrays.
type MeshData struct {
	Vertices       []core.Vec3
	Faces          [][3]int
	Normals        []core.Vec3
	MaterialIDs    []int
	MaterialParams []float64

	// ApertureIndices is optional: when non-nil it must have one entry
	// per face, assigning each face a detector aperture index (spec §3),
	// for a mesh used as a triangulated plate rather than a sample.
	ApertureIndices []int
}
