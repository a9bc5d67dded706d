package scene

import (
	"testing"

	"github.com/shemtrace/shemtrace/pkg/core"
	"github.com/shemtrace/shemtrace/pkg/geometry"
	"github.com/shemtrace/shemtrace/pkg/material"
)

func TestNewGridDetectorScene_DetectsThroughTriangulatedAperture(t *testing.T) {
	s, err := NewGridDetectorScene(GridDetectorSceneParams{
		SampleY:        -2.1,
		SampleHalfSide: 10,
		ScatterLaw:     material.Specular,
		PlateHalfSide:  10,
		CellsPerSide:   4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view := NewPixelView(s, core.Vec3{})
	// Straight up into the plate, well inside the grid: must be detected
	// through some non-zero aperture index rather than pass through.
	ray := core.NewRay(core.NewVec3(1, -1, 1), core.NewVec3(0, 1, 0))
	hit, ok := view.NearestHit(ray, geometry.SurfaceNone, -1, true)
	if !ok {
		t.Fatal("expected a hit on the triangulated plate")
	}
	if hit.SurfaceID != geometry.SurfacePlate {
		t.Fatalf("expected SurfacePlate, got %v", hit.SurfaceID)
	}
	if hit.ApertureIndex == geometry.NoAperture {
		t.Error("expected a non-zero aperture index from the triangulated grid")
	}
}

func TestNewGridDetectorScene_MissesPlateOutsideGrid(t *testing.T) {
	s, err := NewGridDetectorScene(GridDetectorSceneParams{
		SampleY:        -2.1,
		SampleHalfSide: 10,
		ScatterLaw:     material.Specular,
		PlateHalfSide:  2,
		CellsPerSide:   4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view := NewPixelView(s, core.Vec3{})
	ray := core.NewRay(core.NewVec3(100, -1, 100), core.NewVec3(0, 1, 0))
	_, ok := view.NearestHit(ray, geometry.SurfaceNone, -1, true)
	if ok {
		t.Error("expected no hit outside the grid's extent")
	}
}
