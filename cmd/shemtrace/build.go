package main

import (
	"fmt"

	"github.com/shemtrace/shemtrace/pkg/config"
	"github.com/shemtrace/shemtrace/pkg/core"
	"github.com/shemtrace/shemtrace/pkg/driver"
	"github.com/shemtrace/shemtrace/pkg/material"
	"github.com/shemtrace/shemtrace/pkg/scene"
	"github.com/shemtrace/shemtrace/pkg/source"
)

// defaultMaxScatter bounds a ray's scatter count when the parameter
// file doesn't otherwise constrain it; not a spec.md §6 key, just a
// generous backstop against unbounded trench-like geometry.
const defaultMaxScatter = 64

// defaultSeed makes a bare `shemtrace run file.params` reproducible
// without requiring a seed key the parameter-file format doesn't carry.
const defaultSeed int64 = 1

func scatterLaw(l config.ScatteringLaw) material.Law {
	switch l {
	case config.ScatterCosine:
		return material.Cosine
	case config.ScatterUniform:
		return material.Uniform
	case config.ScatterBroadened:
		return material.Broadened
	case config.ScatterMixed:
		return material.Mixed
	default:
		return material.Specular
	}
}

func scatterParam(p *config.Params) float64 {
	switch scatterLaw(p.Scattering) {
	case material.Broadened:
		return p.ScatteringStdDev
	case material.Mixed:
		return p.Reflectivity
	default:
		return 0
	}
}

// buildScene translates a parsed parameter file into a concrete Scene,
// per spec.md §6's sample-type/detector keys.
func buildScene(p *config.Params) (*scene.Scene, error) {
	halfSide := p.FlatSideLength / 2
	if halfSide <= 0 {
		halfSide = 5
	}
	sampleY := -p.WorkingDistance

	plateRadius := 10 * p.WorkingDistance
	if plateRadius <= 0 {
		plateRadius = 50
	}

	law := scatterLaw(p.Scattering)
	param := scatterParam(p)

	if p.DetectorCount > 1 {
		if p.SampleType == config.SampleSphere {
			return nil, &core.ConfigError{Key: "sample type", Reason: "multi-detector scans are only supported for flat samples"}
		}
		d := p.DetectorCentres[0]
		if d == 0 {
			d = p.WorkingDistance
		}
		return scene.NewMultiDetectorScene(scene.MultiDetectorSceneParams{
			SampleY:          sampleY,
			SampleHalfSide:   halfSide,
			ScatterLaw:       law,
			ScatterParam:     param,
			PlateRadius:      plateRadius,
			ApertureDistance: d,
			ApertureAxes:     core.NewVec2(p.DetectorFullAxes[0], p.DetectorFullAxes[1]),
		})
	}

	flatParams := scene.FlatSceneParams{
		SampleY:        sampleY,
		SampleHalfSide: halfSide,
		ScatterLaw:     law,
		ScatterParam:   param,
		PlateRadius:    plateRadius,
		ApertureCenter: core.NewVec2(p.DetectorCentres[0], p.DetectorCentres[1]),
		ApertureAxes:   core.NewVec2(p.DetectorFullAxes[0], p.DetectorFullAxes[1]),
	}

	switch p.SampleType {
	case config.SampleSphere:
		return scene.NewSphereScene(scene.SphereSceneParams{
			FlatSceneParams: flatParams,
			SphereCenter:    core.NewVec3(0, sampleY, 0),
			SphereRadius:    p.SphereRadius,
			SphereLaw:       law,
			SphereParam:     param,
		})
	case config.SampleCustom, config.SamplePhotoStereo:
		return nil, &core.ConfigError{Key: "sample type", Reason: fmt.Sprintf("sample type %q requires an external mesh loader, which this build does not carry", p.SampleType)}
	default:
		return scene.NewFlatScene(flatParams)
	}
}

func sourceParams(p *config.Params) source.Params {
	normal := core.TiltDirection(core.NewVec3(0, -1, 0), p.IncidenceAngle, 0)

	model := source.UniformPencil
	if p.SourceModel == config.SourceGaussian {
		model = source.Gaussian
	}

	return source.Params{
		Model:         model,
		PinholeRadius: p.PinholeRadius,
		MeanDirection: normal,
		Normal:        normal,
		AngularSize:   p.AngularSourceSize,
		StdDev:        p.SourceStdDev,
	}
}

// buildRun assembles a Scene and a driver.Config from parsed
// parameters, per spec.md §6's scan-range/ray-count/effuse-beam keys.
// Any non-fatal diagnostics (e.g. an unsupported detector model) are
// returned alongside the config rather than aborting the run.
func buildRun(p *config.Params) (*scene.Scene, driver.Config, []driver.Diagnostic, error) {
	sc, err := buildScene(p)
	if err != nil {
		return nil, driver.Config{}, nil, err
	}

	step := p.PixelSeparation
	if step <= 0 {
		step = 1
	}
	nx := int((p.ScanRangeX[1]-p.ScanRangeX[0])/step) + 1
	nz := int((p.ScanRangeY[1]-p.ScanRangeY[0])/step) + 1
	if nx < 1 {
		nx = 1
	}
	if nz < 1 {
		nz = 1
	}

	rays := p.RayCount
	if rays <= 0 {
		rays = 1000
	}

	effuseRays := 0
	effuseSrc := source.Params{}
	if p.EffuseBeam {
		effuseRays = int(float64(rays) * p.EffuseRelativeSize)
		effuseSrc = sourceParams(p)
		effuseSrc.Model = source.Effuse
	}

	numApertures := 0
	if p.DetectorCount > 1 {
		numApertures = p.DetectorCount
	}

	cfg := driver.Config{
		NX: nx, NZ: nz,
		Step:             step,
		OriginX:          p.ScanRangeX[0],
		OriginZ:          p.ScanRangeY[0],
		RaysPerPixel:     rays,
		EffuseRays:       effuseRays,
		MaxScatter:       defaultMaxScatter,
		NumWorkers:       0, // let driver.Run pick runtime.NumCPU()
		Seed:             defaultSeed,
		FirstPlateActive: true,
		NumApertures:     numApertures,
		Source:           sourceParams(p),
		EffuseSource:     effuseSrc,
	}

	var diagnostics []driver.Diagnostic
	if diag := driver.UnsupportedDetectorModel(p.STLPinholeModel); diag != nil {
		diagnostics = append(diagnostics, *diag)
	}

	return sc, cfg, diagnostics, nil
}

// builtinScene builds one of the programmatic reference scenes (spec.md
// §4.10) for `shemtrace run --scene ...`, bypassing the parameter-file
// sample-type keys entirely; useful for smoke-testing the engine
// without writing a parameter file first.
func builtinScene(name string) (*scene.Scene, error) {
	switch name {
	case "sphere":
		return scene.NewSphereScene(scene.SphereSceneParams{
			FlatSceneParams: scene.FlatSceneParams{
				SampleY: -2.1, SampleHalfSide: 5,
				ScatterLaw: material.Cosine, PlateRadius: 20,
				ApertureCenter: core.NewVec2(2.1, 0), ApertureAxes: core.NewVec2(1.4, 1),
			},
			SphereCenter: core.NewVec3(0, -2.1, 0),
			SphereRadius: 0.15,
			SphereLaw:    material.Cosine,
		})
	case "trench":
		return scene.NewTrenchScene(scene.TrenchSceneParams{
			HalfLength: 2, Width: 0.3, Depth: 2,
			ScatterLaw: material.Specular, PlateRadius: 20,
			ApertureCenter: core.NewVec2(2.1, 0), ApertureAxes: core.NewVec2(1.4, 1),
		})
	case "multi-detector":
		return scene.NewMultiDetectorScene(scene.MultiDetectorSceneParams{
			SampleY: -2.1, SampleHalfSide: 5,
			ScatterLaw: material.Cosine, PlateRadius: 20,
			ApertureDistance: 2.1, ApertureAxes: core.NewVec2(1.4, 1),
		})
	case "flat", "":
		return scene.NewFlatScene(scene.FlatSceneParams{
			SampleY: -2.1, SampleHalfSide: 5,
			ScatterLaw: material.Cosine, PlateRadius: 20,
			ApertureCenter: core.NewVec2(2.1, 0), ApertureAxes: core.NewVec2(1.4, 1),
		})
	default:
		return nil, &core.ConfigError{Key: "scene", Reason: fmt.Sprintf("unknown built-in scene %q", name)}
	}
}
