package driver

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/shemtrace/shemtrace/pkg/core"
	"github.com/shemtrace/shemtrace/pkg/propagator"
	"github.com/shemtrace/shemtrace/pkg/scene"
	"github.com/shemtrace/shemtrace/pkg/source"
)

// Config bundles a scan's parameters (spec §4.8, §6).
type Config struct {
	NX, NZ       int
	Step         float64
	OriginX      float64 // xrange.low
	OriginZ      float64 // zrange.low
	RaysPerPixel int
	EffuseRays   int
	MaxScatter   int
	NumWorkers   int
	Seed         int64

	FirstPlateActive bool
	NumApertures     int // 0 unless the scene's plate is multi-aperture

	// CollectTrajectories retains every detected ray's final position and
	// direction in ScanResult.Trajectories (the redesigned "six outputs"
	// resolution, SPEC_FULL.md §9). Off by default: a billion-ray scan
	// would otherwise grow the result without bound.
	CollectTrajectories bool

	Source       source.Params
	EffuseSource source.Params // only consulted when EffuseRays > 0

	// Logger receives one summary line per Run call (spec §4.11); per-ray
	// degeneracies are tallied, never logged individually. Nil disables
	// the summary.
	Logger core.Logger
}

// pixelTask is one scan pixel's unit of work for the worker pool,
// following the teacher's task/result-queue worker pool shape
// (pkg/renderer/worker_pool.go in the original) generalized from tile
// rendering to per-pixel Monte Carlo accumulation.
type pixelTask struct {
	I, J int
}

type pixelResult struct {
	I, J  int
	Tally PixelTally
}

// Run executes the Monte Carlo scan of spec §4.8: build scene once (the
// caller already did this), iterate pixels in parallel, and assemble the
// resulting tallies. Per spec §5, each pixel task owns its own RNG
// stream (see runPixel), and tallies land in disjoint ScanResult cells so the final assembly
// needs no locking.
func Run(sc *scene.Scene, cfg Config) *ScanResult {
	result := newScanResult(cfg.NX, cfg.NZ, cfg.MaxScatter, cfg.NumApertures)

	numWorkers := cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	tasks := make(chan pixelTask, cfg.NX*cfg.NZ)
	results := make(chan pixelResult, cfg.NX*cfg.NZ)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				results <- pixelResult{
					I:     task.I,
					J:     task.J,
					Tally: runPixel(sc, cfg, task.I, task.J),
				}
			}
		}()
	}

	for j := 0; j < cfg.NZ; j++ {
		for i := 0; i < cfg.NX; i++ {
			tasks <- pixelTask{I: i, J: j}
		}
	}
	close(tasks)

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		result.writePixel(r.I, r.J, r.Tally)
	}

	if n := sc.DegenerateTriangleCount(); n > 0 {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Kind:    DiagDegenerateTriangle,
			Message: fmt.Sprintf("%d degenerate triangle intersection(s) skipped", n),
		})
	}

	if cfg.Logger != nil {
		logSummary(cfg.Logger, result, cfg)
	}

	return result
}

// logSummary emits the single per-run diagnostic line spec §4.11 calls
// for: total rays, detected/killed counts, and any accumulated
// Diagnostics (degenerate triangles, unsupported features).
func logSummary(logger core.Logger, result *ScanResult, cfg Config) {
	totalRays := cfg.NX * cfg.NZ * (cfg.RaysPerPixel + cfg.EffuseRays)
	detected, killed := 0, 0
	for j := 0; j < cfg.NZ; j++ {
		for i := 0; i < cfg.NX; i++ {
			for k := range result.Counters {
				detected += result.Counters[k][j][i]
			}
			killed += result.Killed[j][i]
		}
	}
	logger.Printf("scan complete: %d pixels, %d rays, %d detected, %d killed, %d diagnostics",
		cfg.NX*cfg.NZ, totalRays, detected, killed, len(result.Diagnostics))
}

// runPixel positions the scene for pixel (i,j), launches the configured
// ray population, and reduces outcomes into a PixelTally (spec §4.8
// steps 2a-2d). The RNG is seeded from (seed, pixel index) rather than
// worker index, so a run's tallies do not depend on how pixels happen
// to be distributed across workers (spec §5).
func runPixel(sc *scene.Scene, cfg Config, i, j int) PixelTally {
	pixelIndex := j*cfg.NX + i
	rng := core.NewRNG(cfg.Seed, pixelIndex)

	offset := core.NewVec3(cfg.OriginX+float64(i)*cfg.Step, 0, cfg.OriginZ+float64(j)*cfg.Step)
	view := scene.NewPixelView(sc, offset)

	propCfg := propagator.Config{MaxScatter: cfg.MaxScatter, FirstPlateActive: cfg.FirstPlateActive}
	tally := newPixelTally(cfg.MaxScatter, cfg.NumApertures)

	for n := 0; n < cfg.RaysPerPixel; n++ {
		pos, dir := source.Sample(cfg.Source, rng)
		ray := propagator.NewRayState(pos, dir)
		outcome := propagator.Trace(view, ray, propCfg, rng)
		applyOutcome(&tally, outcome, false, cfg.CollectTrajectories, i, j)
	}

	for n := 0; n < cfg.EffuseRays; n++ {
		pos, dir := source.Sample(cfg.EffuseSource, rng)
		ray := propagator.NewRayState(pos, dir)
		outcome := propagator.Trace(view, ray, propCfg, rng)
		applyOutcome(&tally, outcome, true, cfg.CollectTrajectories, i, j)
	}

	return tally
}

// applyOutcome folds one ray's terminal state into tally. The effuse
// population is drawn from its own N_effuse and never shares the
// primary beam's Counters/Killed accumulators, so spec §8's
// conservation check holds independently for each population (see
// PixelTally's doc comment).
func applyOutcome(tally *PixelTally, outcome propagator.Outcome, isEffuse, collectTrajectories bool, i, j int) {
	switch outcome.State {
	case propagator.Detected:
		if isEffuse {
			tally.Effuse++
			tally.recordAperture(outcome.ApertureIndex)
		} else {
			tally.recordDetected(outcome.ScatterCount, outcome.ApertureIndex)
		}
		if collectTrajectories {
			tally.Trajectories = append(tally.Trajectories, Trajectory{
				PixelI:        i,
				PixelJ:        j,
				Position:      outcome.Position,
				Direction:     outcome.Direction,
				ScatterCount:  outcome.ScatterCount,
				ApertureIndex: outcome.ApertureIndex,
			})
		}
	case propagator.Killed:
		if isEffuse {
			tally.EffuseKilled++
		} else {
			tally.Killed++
		}
	case propagator.Escaped:
		// Not tallied directly; derivable as N - detected - killed
		// (spec §8), separately for each population.
	}
}

// UnsupportedDetectorModel reports the "abstract hemisphere" detector
// stub per SPEC_FULL.md §9 / spec.md REDESIGN FLAGS: rather than silently
// ignoring an unimplemented configuration, callers should surface this
// as a Diagnostic before calling Run.
func UnsupportedDetectorModel(model string) *Diagnostic {
	if model != "hemisphere" {
		return nil
	}
	return &Diagnostic{
		Kind:    DiagUnsupportedFeature,
		Message: "detector model \"hemisphere\" is an unimplemented placeholder in the original sources; no primary-aperture histogram is produced for it",
	}
}
