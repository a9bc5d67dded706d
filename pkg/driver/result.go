// Package driver implements the C8 Monte Carlo driver: for each pixel
// of a rectangular (or single-pixel/line) scan it positions the scene,
// launches a ray population through pkg/propagator, and reduces
// per-ray outcomes into the scan's pixel tallies, in parallel across
// pixels (spec §4.8, §5).
package driver

import "github.com/shemtrace/shemtrace/pkg/core"

// PixelTally is the per-pixel accumulator of spec §3: counters[k] holds
// the number of the primary beam's rays detected after exactly k+1
// scattering events, Killed counts the primary beam's scatter-budget
// exhaustion. The effuse population (spec §4.8 step 2b's "optional
// effuse population") is drawn from a separate N_effuse and is kept in
// its own Effuse/EffuseKilled accumulators rather than folded into
// Counters/Killed, so spec §8's conservation check
// (detected+killed+escaped == N) holds for the primary beam's N alone.
type PixelTally struct {
	Counters     []int
	Killed       int
	Effuse       int
	EffuseKilled int
	PerAperture  []int // length len(apertures)+1 when multi-detector is configured; index 0 unused
	Trajectories []Trajectory
}

// Trajectory records one detected ray's final position and direction,
// collected only when Config.CollectTrajectories is set (the redesigned
// "six outputs" resolution in SPEC_FULL.md): off by default since
// retaining every detected ray's state would grow without bound on a
// high-ray-count scan.
type Trajectory struct {
	PixelI, PixelJ int
	Position       core.Vec3
	Direction      core.Vec3
	ScatterCount   int
	ApertureIndex  int
}

func newPixelTally(maxScatter, numApertures int) PixelTally {
	var perAperture []int
	if numApertures > 0 {
		perAperture = make([]int, numApertures+1)
	}
	return PixelTally{
		Counters:    make([]int, maxScatter),
		PerAperture: perAperture,
	}
}

func (t *PixelTally) recordDetected(scatterCount, apertureIndex int) {
	if scatterCount >= 1 && scatterCount <= len(t.Counters) {
		t.Counters[scatterCount-1]++
	}
	t.recordAperture(apertureIndex)
}

// recordAperture updates the per-aperture histogram alone: shared by
// both the primary and effuse populations, since spec §4.8 step 2d's
// "per-aperture detection count" is not itself population-split.
func (t *PixelTally) recordAperture(apertureIndex int) {
	if t.PerAperture != nil && apertureIndex >= 0 && apertureIndex < len(t.PerAperture) {
		t.PerAperture[apertureIndex]++
	}
}

// Provenance records the run parameters needed to reproduce or audit a
// scan (spec §6 "Scan output").
type Provenance struct {
	Seed          int64
	NumWorkers    int
	RaysPerPixel  int
	EffuseRays    int
	MaxScatter    int
	ScanRangeX    [2]float64
	ScanRangeZ    [2]float64
	Step          float64
	ElapsedMillis int64
}

// Diagnostic is a structured anomaly record (spec §7): a per-run count
// of skipped-degenerate-triangle events plus, for configuration choices
// SPEC_FULL.md §9 calls out as explicitly unsupported, a descriptive
// diagnostic rather than silent neglect.
type Diagnostic struct {
	Kind    string
	Message string
}

const DiagUnsupportedFeature = "unsupported_feature"
const DiagDegenerateTriangle = "degenerate_triangle"

// ScanResult is the concrete realization of spec §6's "in-memory
// structure": counters[maxScatter][nz][nx], killed[nz][nx],
// effuse[nz][nx], plus per-aperture counts and provenance. EffuseKilled
// mirrors Killed for the effuse population, which is drawn from its own
// N_effuse and never shares the primary beam's budget.
type ScanResult struct {
	Counters     [][][]int // [scatterIndex][j][i]
	Killed       [][]int   // [j][i]
	Effuse       [][]int   // [j][i]
	EffuseKilled [][]int   // [j][i]
	PerAperture  [][][]int // [apertureIndex][j][i], nil unless multi-detector
	Diagnostics  []Diagnostic
	Provenance   Provenance

	// Trajectories holds every detected ray's final state, nil unless
	// Config.CollectTrajectories was set.
	Trajectories []Trajectory
}

// Escaped derives the primary beam's per-pixel escape count per spec
// §8: N minus detected minus killed.
func (r *ScanResult) Escaped(i, j, raysPerPixel int) int {
	detected := 0
	for k := range r.Counters {
		detected += r.Counters[k][j][i]
	}
	return raysPerPixel - detected - r.Killed[j][i]
}

// EffuseEscaped derives the effuse population's per-pixel escape count,
// the same conservation relation as Escaped applied to N_effuse rather
// than to N.
func (r *ScanResult) EffuseEscaped(i, j, effuseRays int) int {
	return effuseRays - r.Effuse[j][i] - r.EffuseKilled[j][i]
}

func newScanResult(nx, nz, maxScatter, numApertures int) *ScanResult {
	counters := make([][][]int, maxScatter)
	for k := range counters {
		counters[k] = make2D(nz, nx)
	}

	var perAperture [][][]int
	if numApertures > 0 {
		perAperture = make([][][]int, numApertures+1)
		for a := range perAperture {
			perAperture[a] = make2D(nz, nx)
		}
	}

	return &ScanResult{
		Counters:     counters,
		Killed:       make2D(nz, nx),
		Effuse:       make2D(nz, nx),
		EffuseKilled: make2D(nz, nx),
		PerAperture:  perAperture,
	}
}

func make2D(nz, nx int) [][]int {
	grid := make([][]int, nz)
	for j := range grid {
		grid[j] = make([]int, nx)
	}
	return grid
}

func (r *ScanResult) writePixel(i, j int, tally PixelTally) {
	for k, count := range tally.Counters {
		r.Counters[k][j][i] = count
	}
	r.Killed[j][i] = tally.Killed
	r.Effuse[j][i] = tally.Effuse
	r.EffuseKilled[j][i] = tally.EffuseKilled
	if r.PerAperture != nil {
		for a, count := range tally.PerAperture {
			if a < len(r.PerAperture) {
				r.PerAperture[a][j][i] = count
			}
		}
	}
	r.Trajectories = append(r.Trajectories, tally.Trajectories...)
}
