package source

import (
	"math"
	"testing"

	"github.com/shemtrace/shemtrace/pkg/core"
)

func TestSample_UniformPencil_DirectionUnitAndWithinAngle(t *testing.T) {
	p := Params{
		Model:         UniformPencil,
		PinholeRadius: 0.1,
		MeanDirection: core.NewVec3(0, -1, 0),
		Normal:        core.NewVec3(0, -1, 0),
		AngularSize:   0.3,
	}
	rng := core.NewRNG(1, 0)

	for i := 0; i < 500; i++ {
		pos, dir := Sample(p, rng)
		if !dir.IsUnit(1e-9) {
			t.Fatalf("expected unit direction, got %v", dir)
		}
		angle := math.Acos(clampForTest(dir.Dot(p.MeanDirection)))
		if angle > p.AngularSize+1e-9 {
			t.Fatalf("tilt angle %f exceeds AngularSize %f", angle, p.AngularSize)
		}
		if pos.X*pos.X+pos.Z*pos.Z > p.PinholeRadius*p.PinholeRadius+1e-9 {
			t.Fatalf("position %v outside pinhole disk", pos)
		}
	}
}

func TestSample_Gaussian_DirectionUnit(t *testing.T) {
	p := Params{
		Model:         Gaussian,
		PinholeRadius: 0.1,
		MeanDirection: core.NewVec3(0, -1, 0),
		Normal:        core.NewVec3(0, -1, 0),
		StdDev:        0.05,
	}
	rng := core.NewRNG(2, 0)

	for i := 0; i < 500; i++ {
		_, dir := Sample(p, rng)
		if !dir.IsUnit(1e-9) {
			t.Fatalf("expected unit direction, got %v", dir)
		}
	}
}

func TestSample_Effuse_DirectionInHemisphereAboutNormal(t *testing.T) {
	p := Params{
		Model:         Effuse,
		PinholeRadius: 0.1,
		Normal:        core.NewVec3(0, -1, 0),
	}
	rng := core.NewRNG(3, 0)

	for i := 0; i < 500; i++ {
		_, dir := Sample(p, rng)
		if !dir.IsUnit(1e-9) {
			t.Fatalf("expected unit direction, got %v", dir)
		}
		if dir.Dot(p.Normal) <= 0 {
			t.Fatalf("expected direction in hemisphere about normal, got %v", dir)
		}
	}
}

func clampForTest(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
