package geometry

import "github.com/shemtrace/shemtrace/pkg/core"

// faceBVHNode is a node in the median-split BVH built over a triangle
// surface's faces. Leaf nodes hold the face indices directly; this
// mirrors the teacher's leaf-threshold median-split BVH but indexes into
// a TriangleSurface's own face arrays instead of a generic Shape slice,
// since every leaf test here is the same triangle-solve kernel.
type faceBVHNode struct {
	bbox        core.AABB
	left, right *faceBVHNode
	faces       []int // non-nil only for leaves
}

const bvhLeafThreshold = 8

// buildFaceBVH constructs a BVH over the given face indices using their
// precomputed bounding boxes and centers. faceBoxes/faceCenters are
// indexed by the same face index used elsewhere on TriangleSurface.
func buildFaceBVH(faces []int, faceBoxes []core.AABB, faceCenters []core.Vec3) *faceBVHNode {
	bbox := unionBoxes(faces, faceBoxes)

	if len(faces) <= bvhLeafThreshold {
		return &faceBVHNode{bbox: bbox, faces: faces}
	}

	axis := bbox.LongestAxis()
	size := bbox.Size()
	if axisValue(size, axis) <= 0 {
		return &faceBVHNode{bbox: bbox, faces: faces}
	}
	splitPos := axisValue(bbox.Center(), axis)

	var leftFaces, rightFaces []int
	for _, f := range faces {
		if axisValue(faceCenters[f], axis) < splitPos {
			leftFaces = append(leftFaces, f)
		} else {
			rightFaces = append(rightFaces, f)
		}
	}

	if len(leftFaces) == 0 || len(rightFaces) == 0 {
		return &faceBVHNode{bbox: bbox, faces: faces}
	}

	return &faceBVHNode{
		bbox:  bbox,
		left:  buildFaceBVH(leftFaces, faceBoxes, faceCenters),
		right: buildFaceBVH(rightFaces, faceBoxes, faceCenters),
	}
}

func unionBoxes(faces []int, faceBoxes []core.AABB) core.AABB {
	if len(faces) == 0 {
		return core.AABB{}
	}
	box := faceBoxes[faces[0]]
	for _, f := range faces[1:] {
		box = box.Union(faceBoxes[f])
	}
	return box
}

func axisValue(v core.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
