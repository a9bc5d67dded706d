package core

import (
	"math"
	"testing"
)

func TestSampleCosineHemisphere_StaysInHemisphere(t *testing.T) {
	n := NewVec3(0, 0, 1)
	rng := NewRNG(1, 0)

	for i := 0; i < 1000; i++ {
		d := SampleCosineHemisphere(n, rng)
		if !d.IsUnit(1e-9) {
			t.Fatalf("sample %d not unit length: %v", i, d)
		}
		if d.Dot(n) < -1e-12 {
			t.Fatalf("sample %d outside hemisphere: %v", i, d)
		}
	}
}

func TestSampleCosineHemisphere_ThetaMarginalMatchesSin2Theta(t *testing.T) {
	// p(theta) = sin(2 theta) on [0, pi/2] has mean theta = pi/4 and puts
	// very little mass near theta=0, unlike a uniform marginal would.
	n := NewVec3(0, 0, 1)
	rng := NewRNG(42, 7)

	const trials = 20000
	sum := 0.0
	nearZero := 0
	for i := 0; i < trials; i++ {
		d := SampleCosineHemisphere(n, rng)
		theta := math.Acos(clamp(d.Dot(n), -1, 1))
		sum += theta
		if theta < 0.05 {
			nearZero++
		}
	}
	mean := sum / trials
	if math.Abs(mean-math.Pi/4) > 0.03 {
		t.Errorf("expected mean theta near pi/4, got %f", mean)
	}
	if float64(nearZero)/trials > 0.01 {
		t.Errorf("too many samples near theta=0 for sin(2theta) density: %d/%d", nearZero, trials)
	}
}

func TestSampleUniformHemisphere_StaysInHemisphere(t *testing.T) {
	n := NewVec3(0, 1, 0)
	rng := NewRNG(2, 0)

	for i := 0; i < 1000; i++ {
		d := SampleUniformHemisphere(n, rng)
		if !d.IsUnit(1e-9) {
			t.Fatalf("sample %d not unit length: %v", i, d)
		}
		if d.Dot(n) < -1e-12 {
			t.Fatalf("sample %d outside hemisphere: %v", i, d)
		}
	}
}

func TestSampleUniformHemisphere_ThetaDensityDiffersFromCosine(t *testing.T) {
	// Uniform-solid-angle sampling has z = cos(theta) uniform on [0,1], so
	// the marginal mean of theta is the integral of acos(z) over [0,1],
	// which is 1 rad: above the pi/4 mean of the sin(2theta)
	// cosine-hemisphere law.
	n := NewVec3(0, 1, 0)
	rng := NewRNG(3, 0)

	const trials = 20000
	sum := 0.0
	for i := 0; i < trials; i++ {
		d := SampleUniformHemisphere(n, rng)
		theta := math.Acos(clamp(d.Dot(n), -1, 1))
		sum += theta
	}
	mean := sum / trials
	if math.Abs(mean-1) > 0.03 {
		t.Errorf("expected uniform-hemisphere mean theta near 1 rad (above pi/4), got %f", mean)
	}
}

func TestSampleUniformDisk_WithinRadius(t *testing.T) {
	rng := NewRNG(4, 0)
	const radius = 2.5

	for i := 0; i < 1000; i++ {
		p := SampleUniformDisk(radius, rng)
		if p.X*p.X+p.Y*p.Y > radius*radius+1e-9 {
			t.Fatalf("sample %d outside disk: %v", i, p)
		}
	}
}

func TestTiltDirection_PreservesAngleFromOriginal(t *testing.T) {
	d := NewVec3(0, 0, 1)
	theta := 0.2
	phi := 1.1

	tilted := TiltDirection(d, theta, phi)
	if !tilted.IsUnit(1e-9) {
		t.Fatalf("expected unit vector, got %v", tilted)
	}

	cosAngle := tilted.Dot(d)
	if math.Abs(cosAngle-math.Cos(theta)) > 1e-9 {
		t.Errorf("expected angle from d to be theta=%f, got acos=%f", theta, math.Acos(clamp(cosAngle, -1, 1)))
	}
}

func TestTiltDirection_ZeroThetaIsIdentity(t *testing.T) {
	d := NewVec3(0.3, 0.4, 0.866).Normalize()
	tilted := TiltDirection(d, 0, 0.7)

	if tilted.Subtract(d).Length() > 1e-9 {
		t.Errorf("expected tilt by 0 to return original direction, got %v vs %v", tilted, d)
	}
}

func TestSampleConeAngle_StaysWithinMax(t *testing.T) {
	rng := NewRNG(5, 0)
	const maxTheta = 0.3

	for i := 0; i < 1000; i++ {
		theta := SampleConeAngle(maxTheta, rng)
		if theta < 0 || theta > maxTheta+1e-9 {
			t.Fatalf("sample %d outside [0, maxTheta]: %f", i, theta)
		}
	}
}

func TestSampleConeAngle_ZeroMaxIsAlwaysZero(t *testing.T) {
	rng := NewRNG(6, 0)
	for i := 0; i < 10; i++ {
		if theta := SampleConeAngle(0, rng); theta != 0 {
			t.Fatalf("expected 0, got %f", theta)
		}
	}
}

func TestClamp(t *testing.T) {
	if clamp(5, 0, 1) != 1 {
		t.Error("expected clamp above range to saturate at hi")
	}
	if clamp(-5, 0, 1) != 0 {
		t.Error("expected clamp below range to saturate at lo")
	}
	if clamp(0.5, 0, 1) != 0.5 {
		t.Error("expected clamp within range to be unchanged")
	}
}
