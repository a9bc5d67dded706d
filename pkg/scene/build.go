package scene

import (
	"github.com/shemtrace/shemtrace/pkg/core"
	"github.com/shemtrace/shemtrace/pkg/geometry"
	"github.com/shemtrace/shemtrace/pkg/material"
)

// NewTriangleSurfaceFromMesh adapts a MeshData value (the (V,F,N,C,P)
// contract of spec.md §6) into a *geometry.TriangleSurface, the one
// conversion point every scene constructor below goes through. An
// external STL/OBJ loader would produce the same MeshData shape; this
// repository supplies it programmatically instead.
func NewTriangleSurfaceFromMesh(surfaceID int, m MeshData) (*geometry.TriangleSurface, error) {
	ts, err := geometry.NewTriangleSurface(surfaceID, m.Vertices, m.Faces, m.Normals, m.MaterialIDs, m.MaterialParams)
	if err != nil {
		return nil, err
	}
	ts.ApertureIndices = m.ApertureIndices
	return ts, nil
}

// flatSquareMesh tessellates a square of the given half-side length
// centered at the origin in the plane y=planeY, outward normal (0,1,0),
// as a 4x4 grid of cells, two triangles each (enough to exercise BVH branching without
// needing a general-purpose tessellator the corpus doesn't carry).
func flatSquareMesh(halfSide, planeY float64, materialID int, materialParam float64) MeshData {
	const divisions = 4
	step := (2 * halfSide) / divisions

	var vertices []core.Vec3
	index := make(map[[2]int]int)
	at := func(i, j int) int {
		key := [2]int{i, j}
		if idx, ok := index[key]; ok {
			return idx
		}
		x := -halfSide + float64(i)*step
		z := -halfSide + float64(j)*step
		idx := len(vertices)
		vertices = append(vertices, core.NewVec3(x, planeY, z))
		index[key] = idx
		return idx
	}

	var faces [][3]int
	for i := 0; i < divisions; i++ {
		for j := 0; j < divisions; j++ {
			v00, v10 := at(i, j), at(i+1, j)
			v01, v11 := at(i, j+1), at(i+1, j+1)
			faces = append(faces, [3]int{v00, v10, v11})
			faces = append(faces, [3]int{v00, v11, v01})
		}
	}

	normals := make([]core.Vec3, len(faces))
	materialIDs := make([]int, len(faces))
	materialParams := make([]float64, len(faces))
	for i := range faces {
		normals[i] = core.NewVec3(0, 1, 0)
		materialIDs[i] = materialID
		materialParams[i] = materialParam
	}

	return MeshData{
		Vertices:       vertices,
		Faces:          faces,
		Normals:        normals,
		MaterialIDs:    materialIDs,
		MaterialParams: materialParams,
	}
}

// trenchMesh builds two parallel vertical walls (facing each other
// across a gap of the given width) plus a flat floor connecting them,
// all sharing one material/law, used by the scatter-budget exhaustion
// end-to-end scenario (spec.md §8 scenario 4): a ray entering the
// trench can specularly bounce between the walls many times before
// escaping or being killed.
func trenchMesh(halfLength, width, depth float64, materialID int, materialParam float64) MeshData {
	hl := halfLength
	var vertices []core.Vec3
	add := func(v core.Vec3) int {
		vertices = append(vertices, v)
		return len(vertices) - 1
	}

	// Floor at y=-depth, closing the bottom of the trench.
	f0 := add(core.NewVec3(-width/2, -depth, -hl))
	f1 := add(core.NewVec3(width/2, -depth, -hl))
	f2 := add(core.NewVec3(width/2, -depth, hl))
	f3 := add(core.NewVec3(-width/2, -depth, hl))

	// Left wall (x = -width/2), outward normal +x, spanning down to -depth.
	l0 := add(core.NewVec3(-width/2, 0, -hl))
	l1 := add(core.NewVec3(-width/2, -depth, -hl))
	l2 := add(core.NewVec3(-width/2, -depth, hl))
	l3 := add(core.NewVec3(-width/2, 0, hl))

	// Right wall (x = width/2), outward normal -x.
	r0 := add(core.NewVec3(width/2, 0, -hl))
	r1 := add(core.NewVec3(width/2, -depth, -hl))
	r2 := add(core.NewVec3(width/2, -depth, hl))
	r3 := add(core.NewVec3(width/2, 0, hl))

	faces := [][3]int{
		{f0, f1, f2}, {f0, f2, f3}, // floor, normal +y
		{l0, l3, l2}, {l0, l2, l1}, // left wall, normal +x
		{r0, r2, r3}, {r0, r1, r2}, // right wall, normal -x
	}
	normals := []core.Vec3{
		core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0),
		core.NewVec3(1, 0, 0), core.NewVec3(1, 0, 0),
		core.NewVec3(-1, 0, 0), core.NewVec3(-1, 0, 0),
	}

	materialIDs := make([]int, len(faces))
	materialParams := make([]float64, len(faces))
	for i := range faces {
		materialIDs[i] = materialID
		materialParams[i] = materialParam
	}

	return MeshData{
		Vertices:       vertices,
		Faces:          faces,
		Normals:        normals,
		MaterialIDs:    materialIDs,
		MaterialParams: materialParams,
	}
}

// singleAperturePlate builds a back-wall plate with a single detector
// aperture at apertureCenter, axes apertureAxes, radius plateRadius.
func singleAperturePlate(plateRadius float64, apertureCenter, apertureAxes core.Vec2) (*geometry.BackWallPlate, error) {
	ap := geometry.Aperture{Center: apertureCenter, Axes: apertureAxes}
	return geometry.NewBackWallPlate(plateRadius, []geometry.Aperture{ap}, true, 0, 0)
}

// triangulatedPlateMesh tessellates a square detector plate in the plane
// y=0, outward normal (0,-1,0), into a cellsPerSide x cellsPerSide grid,
// assigning every cell its own 1-based aperture index (spec §3's
// detector aperture, expressed as a mesh rather than BackWallPlate's
// analytic ellipse test).
func triangulatedPlateMesh(halfSide float64, cellsPerSide int) MeshData {
	step := (2 * halfSide) / float64(cellsPerSide)

	var vertices []core.Vec3
	index := make(map[[2]int]int)
	at := func(i, j int) int {
		key := [2]int{i, j}
		if idx, ok := index[key]; ok {
			return idx
		}
		x := -halfSide + float64(i)*step
		z := -halfSide + float64(j)*step
		idx := len(vertices)
		vertices = append(vertices, core.NewVec3(x, 0, z))
		index[key] = idx
		return idx
	}

	var faces [][3]int
	var apertureIndices []int
	cell := 0
	for i := 0; i < cellsPerSide; i++ {
		for j := 0; j < cellsPerSide; j++ {
			cell++
			v00, v10 := at(i, j), at(i+1, j)
			v01, v11 := at(i, j+1), at(i+1, j+1)
			faces = append(faces, [3]int{v00, v10, v11}, [3]int{v00, v11, v01})
			apertureIndices = append(apertureIndices, cell, cell)
		}
	}

	normals := make([]core.Vec3, len(faces))
	materialIDs := make([]int, len(faces))
	materialParams := make([]float64, len(faces))
	for i := range faces {
		normals[i] = core.NewVec3(0, -1, 0)
	}

	return MeshData{
		Vertices:        vertices,
		Faces:           faces,
		Normals:         normals,
		MaterialIDs:     materialIDs,
		MaterialParams:  materialParams,
		ApertureIndices: apertureIndices,
	}
}

// GridDetectorSceneParams configures NewGridDetectorScene.
type GridDetectorSceneParams struct {
	SampleY        float64
	SampleHalfSide float64
	ScatterLaw     material.Law
	ScatterParam   float64
	PlateHalfSide  float64
	CellsPerSide   int // defaults to 4 when <= 0
}

// NewGridDetectorScene builds a flat sample imaged against a
// triangulated grid-cell plate instead of BackWallPlate's analytic
// ellipse apertures, exercising TriangleSurface.ApertureIndices end to
// end: each grid cell is its own aperture, so the resulting scan
// resembles a coarse position-sensitive detector.
func NewGridDetectorScene(p GridDetectorSceneParams) (*Scene, error) {
	sampleMesh := flatSquareMesh(p.SampleHalfSide, p.SampleY, int(p.ScatterLaw), p.ScatterParam)
	sample, err := NewTriangleSurfaceFromMesh(geometry.SurfaceSample, sampleMesh)
	if err != nil {
		return nil, err
	}

	cells := p.CellsPerSide
	if cells <= 0 {
		cells = 4
	}
	plateMesh := triangulatedPlateMesh(p.PlateHalfSide, cells)
	plate, err := NewTriangleSurfaceFromMesh(geometry.SurfacePlate, plateMesh)
	if err != nil {
		return nil, err
	}

	return &Scene{Sample: sample, Plate: plate}, nil
}

// FlatSceneParams configures NewFlatScene.
type FlatSceneParams struct {
	SampleY        float64
	SampleHalfSide float64
	ScatterLaw     material.Law
	ScatterParam   float64
	PlateRadius    float64
	ApertureCenter core.Vec2
	ApertureAxes   core.Vec2
}

// NewFlatScene builds the flat-sample scene used by end-to-end
// scenarios 1 and 2 (spec.md §8): a single horizontal plane with a
// single scattering law and one back-wall detector.
func NewFlatScene(p FlatSceneParams) (*Scene, error) {
	mesh := flatSquareMesh(p.SampleHalfSide, p.SampleY, int(p.ScatterLaw), p.ScatterParam)
	sample, err := NewTriangleSurfaceFromMesh(geometry.SurfaceSample, mesh)
	if err != nil {
		return nil, err
	}
	plate, err := singleAperturePlate(p.PlateRadius, p.ApertureCenter, p.ApertureAxes)
	if err != nil {
		return nil, err
	}
	return &Scene{Sample: sample, Plate: plate}, nil
}

// SphereSceneParams configures NewSphereScene.
type SphereSceneParams struct {
	FlatSceneParams
	SphereCenter core.Vec3
	SphereRadius float64
	SphereLaw    material.Law
	SphereParam  float64
}

// NewSphereScene builds the flat-sample-plus-analytic-sphere scene used
// by end-to-end scenario 3 (spec.md §8): a sphere resting on the sample
// imaged via cosine scattering, expected to show a bright disc.
func NewSphereScene(p SphereSceneParams) (*Scene, error) {
	s, err := NewFlatScene(p.FlatSceneParams)
	if err != nil {
		return nil, err
	}
	sphere, err := geometry.NewAnalyticSphere(p.SphereCenter, p.SphereRadius, int(p.SphereLaw), p.SphereParam, true)
	if err != nil {
		return nil, err
	}
	s.Sphere = sphere
	return s, nil
}

// TrenchSceneParams configures NewTrenchScene.
type TrenchSceneParams struct {
	HalfLength, Width, Depth float64
	ScatterLaw               material.Law
	ScatterParam             float64
	PlateRadius              float64
	ApertureCenter           core.Vec2
	ApertureAxes             core.Vec2
}

// NewTrenchScene builds the deep-trench scene used by end-to-end
// scenario 4 (spec.md §8): specular walls close enough together that a
// pencil beam entering the trench bounces many times before escaping or
// exhausting the scatter budget.
func NewTrenchScene(p TrenchSceneParams) (*Scene, error) {
	mesh := trenchMesh(p.HalfLength, p.Width, p.Depth, int(p.ScatterLaw), p.ScatterParam)
	sample, err := NewTriangleSurfaceFromMesh(geometry.SurfaceSample, mesh)
	if err != nil {
		return nil, err
	}
	plate, err := singleAperturePlate(p.PlateRadius, p.ApertureCenter, p.ApertureAxes)
	if err != nil {
		return nil, err
	}
	return &Scene{Sample: sample, Plate: plate}, nil
}

// MultiDetectorSceneParams configures NewMultiDetectorScene.
type MultiDetectorSceneParams struct {
	SampleY          float64
	SampleHalfSide   float64
	ScatterLaw       material.Law
	ScatterParam     float64
	PlateRadius      float64
	ApertureDistance float64
	ApertureAxes     core.Vec2
}

// NewMultiDetectorScene builds the four-symmetric-detector scene used by
// end-to-end scenario 6 (spec.md §8): apertures placed at the four
// compass points around the origin, equidistant from a flat cosine
// sample, so per-detector counts should agree within Poisson tolerance.
func NewMultiDetectorScene(p MultiDetectorSceneParams) (*Scene, error) {
	mesh := flatSquareMesh(p.SampleHalfSide, p.SampleY, int(p.ScatterLaw), p.ScatterParam)
	sample, err := NewTriangleSurfaceFromMesh(geometry.SurfaceSample, mesh)
	if err != nil {
		return nil, err
	}

	d := p.ApertureDistance
	apertures := []geometry.Aperture{
		{Center: core.NewVec2(d, 0), Axes: p.ApertureAxes},
		{Center: core.NewVec2(-d, 0), Axes: p.ApertureAxes},
		{Center: core.NewVec2(0, d), Axes: p.ApertureAxes},
		{Center: core.NewVec2(0, -d), Axes: p.ApertureAxes},
	}
	plate, err := geometry.NewBackWallPlate(p.PlateRadius, apertures, true, 0, 0)
	if err != nil {
		return nil, err
	}

	return &Scene{Sample: sample, Plate: plate}, nil
}
