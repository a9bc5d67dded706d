// Package source implements the C7 source sampler: given a source model
// and its parameters, produces an initial ray (position, direction).
package source

import (
	"math"

	"github.com/shemtrace/shemtrace/pkg/core"
)

// Model selects which source the sampler draws from (spec §4.7 /
// spec.md §6 "source model").
type Model int

const (
	UniformPencil Model = iota
	Gaussian
	Effuse
)

// Params bundles the source configuration. Normal is the pinhole's
// outward normal and MeanDirection the nominal beam axis; both are
// expected to already be unit vectors.
type Params struct {
	Model         Model
	PinholeRadius float64
	MeanDirection core.Vec3
	Normal        core.Vec3
	AngularSize   float64 // UniformPencil: max tilt angle (radians)
	StdDev        float64 // Gaussian: tilt standard deviation (radians)
}

// Sample draws (position, direction) from the configured source, per
// spec §4.7. All directions returned are unit-norm; the sampler is
// stateless apart from rng.
func Sample(p Params, rng *core.RNG) (position, direction core.Vec3) {
	disk := core.SampleUniformDisk(p.PinholeRadius, rng)
	position = diskPointOnPlane(disk, p.Normal)

	switch p.Model {
	case Gaussian:
		theta := math.Abs(sampleGaussianAngle(p.StdDev, rng))
		phi := 2 * math.Pi * rng.Uniform01()
		direction = core.TiltDirection(p.MeanDirection, theta, phi)
	case Effuse:
		direction = core.SampleCosineHemisphere(p.Normal, rng)
	default: // UniformPencil
		theta := core.SampleConeAngle(p.AngularSize, rng)
		phi := 2 * math.Pi * rng.Uniform01()
		direction = core.TiltDirection(p.MeanDirection, theta, phi)
	}

	return position, direction
}

// diskPointOnPlane places a 2D disk sample (in the tangent plane of
// normal n) into 3D, using the same orthonormal-basis construction the
// scattering kernel uses for tangent frames.
func diskPointOnPlane(disk core.Vec2, n core.Vec3) core.Vec3 {
	tangent, bitangent := core.OrthonormalBasis(n)
	return tangent.Multiply(disk.X).Add(bitangent.Multiply(disk.Y))
}

func sampleGaussianAngle(sigma float64, rng *core.RNG) float64 {
	z0, _ := rng.Gaussian(0, sigma)
	return z0
}
