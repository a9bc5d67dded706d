// Package material implements the per-facet scattering laws (spec §4.4):
// given an incoming direction, a surface normal, and a material
// parameter, it samples a new outgoing direction.
package material

import (
	"math"

	"github.com/shemtrace/shemtrace/pkg/core"
)

// Law selects which scattering kernel a facet or sphere uses. Values
// match the material-id field carried by geometry.HitRecord.
type Law int

const (
	Specular Law = iota + 1
	Cosine
	Uniform
	Broadened
	Mixed
)

// maxResampleAttempts bounds the broadened-specular resample loop (spec
// §4.4 post-condition): if perturbation keeps producing an incoming
// direction, fall back to the nominal specular reflection rather than
// loop indefinitely.
const maxResampleAttempts = 8

// Scatter samples an outgoing direction d' for a ray hitting a facet
// with the given law and parameter. d' is always unit-norm and outgoing
// (d'.n > 0); see spec §4.4 post-condition.
func Scatter(law Law, incoming, normal core.Vec3, param float64, rng *core.RNG) core.Vec3 {
	switch law {
	case Specular:
		return core.Reflect(incoming, normal)
	case Cosine:
		return core.SampleCosineHemisphere(normal, rng)
	case Uniform:
		return core.SampleUniformHemisphere(normal, rng)
	case Broadened:
		return scatterBroadened(incoming, normal, param, rng)
	case Mixed:
		if rng.Uniform01() < param {
			return core.SampleCosineHemisphere(normal, rng)
		}
		return core.Reflect(incoming, normal)
	default:
		return core.Reflect(incoming, normal)
	}
}

// scatterBroadened perturbs the specular direction by a Gaussian of
// standard deviation param radians, resampling up to
// maxResampleAttempts times if the result fails the outgoing test,
// falling back to the nominal specular direction (spec §4.4).
func scatterBroadened(incoming, normal core.Vec3, sigma float64, rng *core.RNG) core.Vec3 {
	nominal := core.Reflect(incoming, normal)

	for attempt := 0; attempt < maxResampleAttempts; attempt++ {
		theta, _ := rng.Gaussian(0, sigma)
		theta = math.Abs(theta)
		phi := 2 * math.Pi * rng.Uniform01()

		perturbed := core.TiltDirection(nominal, theta, phi)
		if perturbed.Dot(normal) > 0 {
			return perturbed
		}
	}
	return nominal
}
