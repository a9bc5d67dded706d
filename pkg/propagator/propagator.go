// Package propagator implements the per-ray state machine (spec §4.6)
// that combines the intersection kernel (pkg/geometry via pkg/scene)
// with the scattering kernel (pkg/material) and tracks termination by
// detection, escape, or scatter-budget exhaustion.
package propagator

import (
	"github.com/shemtrace/shemtrace/pkg/core"
	"github.com/shemtrace/shemtrace/pkg/geometry"
	"github.com/shemtrace/shemtrace/pkg/material"
	"github.com/shemtrace/shemtrace/pkg/scene"
)

// State is one of the terminal or transient states of spec §4.6.
type State int

const (
	Flight State = iota
	Detected
	Escaped
	Killed
)

// RayState carries the ray's position, direction, and the
// self-intersection pair (on_surface, on_element) mutated across
// flight/scatter steps (spec §3). It is a plain value, not a pointer
// into scene storage, so rays never alias scene geometry.
type RayState struct {
	Position     core.Vec3
	Direction    core.Vec3
	ScatterCount int
	OnSurface    int
	OnElement    int
}

// NewRayState constructs the Initial state of spec §4.6: scatter count
// 0, on_surface = none.
func NewRayState(position, direction core.Vec3) RayState {
	return RayState{
		Position:  position,
		Direction: direction,
		OnSurface: geometry.SurfaceNone,
		OnElement: -1,
	}
}

// Outcome is the terminal result of tracing one ray. Position and
// Direction are always the ray's final flight-step values; callers that
// don't need them (the common case) simply ignore the two extra
// float-vector copies rather than branching on a flag in the hot loop.
type Outcome struct {
	State         State
	ApertureIndex int // meaningful only when State == Detected
	ScatterCount  int
	Position      core.Vec3
	Direction     core.Vec3
}

// Config bundles the propagator's per-run settings.
type Config struct {
	MaxScatter int

	// FirstPlateActive controls the first-scatter policy of spec §4.6:
	// whether the plate participates in the very first flight step.
	// When false, the plate is left out of that step only; every later
	// step tests it.
	FirstPlateActive bool
}

// Trace drives ray through the Flight/Scatter loop against view until it
// reaches a terminal state (spec §4.6). rng supplies randomness for the
// scattering kernel.
func Trace(view *scene.PixelView, ray RayState, cfg Config, rng *core.RNG) Outcome {
	firstStep := true

	for {
		plateActive := cfg.FirstPlateActive || !firstStep
		firstStep = false

		hit, ok := view.NearestHit(core.NewRay(ray.Position, ray.Direction), ray.OnSurface, ray.OnElement, plateActive)
		if !ok {
			return Outcome{State: Escaped, ScatterCount: ray.ScatterCount, Position: ray.Position, Direction: ray.Direction}
		}

		if hit.SurfaceID == geometry.SurfacePlate && hit.ApertureIndex != geometry.NoAperture {
			return Outcome{State: Detected, ApertureIndex: hit.ApertureIndex, ScatterCount: ray.ScatterCount, Position: hit.Point, Direction: ray.Direction}
		}

		// A plate hit outside every aperture (plate_represent) is not
		// terminal: the ray scatters off the plate disc like any other
		// surface and can bounce back toward the sample before it
		// eventually escapes or is killed.
		ray.Position = hit.Point
		ray.OnSurface = hit.SurfaceID
		ray.OnElement = hit.ElementIndex
		ray.ScatterCount++

		ray.Direction = material.Scatter(material.Law(hit.MaterialID), ray.Direction, hit.Normal, hit.MaterialParam, rng)

		if ray.ScatterCount >= cfg.MaxScatter {
			return Outcome{State: Killed, ScatterCount: ray.ScatterCount, Position: ray.Position, Direction: ray.Direction}
		}
	}
}
