package material

import (
	"math"
	"testing"

	"github.com/shemtrace/shemtrace/pkg/core"
)

func TestScatter_SpecularIsAnglePreserving(t *testing.T) {
	n := core.NewVec3(0, 1, 0)
	d := core.NewVec3(0.3, -0.8, 0.2).Normalize()

	out := Scatter(Specular, d, n, 0, core.NewRNG(1, 0))

	angleIn := math.Acos(d.Negate().Dot(n))
	angleOut := math.Acos(out.Dot(n))
	if math.Abs(angleIn-angleOut) > 1e-9 {
		t.Errorf("expected angle preservation, got in=%f out=%f", angleIn, angleOut)
	}
}

func TestScatter_CosineAndUniformAreOutgoingAndUnit(t *testing.T) {
	n := core.NewVec3(0, 0, 1)
	d := core.NewVec3(0, 0, -1)
	rng := core.NewRNG(2, 0)

	for _, law := range []Law{Cosine, Uniform} {
		for i := 0; i < 500; i++ {
			out := Scatter(law, d, n, 0, rng)
			if !out.IsUnit(1e-9) {
				t.Fatalf("law %v: expected unit direction, got %v", law, out)
			}
			if out.Dot(n) <= 0 {
				t.Fatalf("law %v: expected outgoing direction, got %v", law, out)
			}
		}
	}
}

func TestScatter_BroadenedStaysOutgoingAndNearSpecular(t *testing.T) {
	n := core.NewVec3(0, 1, 0)
	d := core.NewVec3(0, -1, 0)
	rng := core.NewRNG(3, 0)

	nominal := core.Reflect(d, n)
	for i := 0; i < 200; i++ {
		out := Scatter(Broadened, d, n, 0.05, rng)
		if !out.IsUnit(1e-9) {
			t.Fatalf("expected unit direction, got %v", out)
		}
		if out.Dot(n) <= 0 {
			t.Fatalf("expected outgoing direction, got %v", out)
		}
		if out.Subtract(nominal).Length() > 0.5 {
			t.Errorf("expected small perturbation from nominal, got %v vs %v", out, nominal)
		}
	}
}

func TestScatter_MixedSelectsCosineOrSpecular(t *testing.T) {
	n := core.NewVec3(0, 0, 1)
	d := core.NewVec3(0.5, 0, -1).Normalize()
	rng := core.NewRNG(4, 0)

	specularOut := core.Reflect(d, n)
	sawCosine, sawSpecular := false, false
	for i := 0; i < 500; i++ {
		out := Scatter(Mixed, d, n, 0.5, rng)
		if out.Subtract(specularOut).Length() < 1e-9 {
			sawSpecular = true
		} else {
			sawCosine = true
		}
	}
	if !sawCosine || !sawSpecular {
		t.Error("expected a mix of cosine and specular outcomes at p=0.5")
	}
}

func TestScatter_UnknownLawFallsBackToSpecular(t *testing.T) {
	n := core.NewVec3(0, 1, 0)
	d := core.NewVec3(0.3, -0.8, 0.2).Normalize()

	out := Scatter(Law(99), d, n, 0, core.NewRNG(5, 0))
	expected := core.Reflect(d, n)
	if out.Subtract(expected).Length() > 1e-12 {
		t.Errorf("expected specular fallback, got %v vs %v", out, expected)
	}
}
