package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/shemtrace/shemtrace/pkg/config"
	"github.com/shemtrace/shemtrace/pkg/core"
	"github.com/shemtrace/shemtrace/pkg/driver"
	"github.com/shemtrace/shemtrace/pkg/scene"
	"github.com/shemtrace/shemtrace/pkg/source"
)

var CLI struct {
	Run   RunCmd   `cmd:"" help:"Run the scan described by a parameter file or a built-in scene."`
	Bench BenchCmd `cmd:"" help:"Benchmark single-pixel ray throughput."`
}

type RunCmd struct {
	Config       string `arg:"" optional:"" name:"config" help:"Parameter file to run (spec.md §6 key:value format)."`
	Scene        string `name:"scene" enum:"flat,sphere,trench,multi-detector," help:"Use a built-in programmatic scene instead of --config's sample-type keys."`
	Out          string `name:"out" help:"Write the scan result as JSON here instead of stdout."`
	Trajectories bool   `name:"trajectories" help:"Retain every detected ray's final position and direction in the output."`
}

// sceneAndConfig bundles what a scan needs to run plus the provenance
// fields that only the config-file path can supply.
type sceneAndConfig struct {
	sc         *scene.Scene
	cfg        driver.Config
	diag       []driver.Diagnostic
	scanRangeX [2]float64
	scanRangeY [2]float64
}

func configuredRun(path string) (*sceneAndConfig, error) {
	params, err := loadParams(path)
	if err != nil {
		return nil, err
	}
	sc, cfg, diag, err := buildRun(params)
	if err != nil {
		return nil, err
	}
	return &sceneAndConfig{sc: sc, cfg: cfg, diag: diag, scanRangeX: params.ScanRangeX, scanRangeY: params.ScanRangeY}, nil
}

func builtinRun(name string) (*sceneAndConfig, error) {
	sc, err := builtinScene(name)
	if err != nil {
		return nil, err
	}
	return &sceneAndConfig{
		sc: sc,
		cfg: driver.Config{
			NX: 1, NZ: 1,
			RaysPerPixel:     2000,
			MaxScatter:       defaultMaxScatter,
			Seed:             defaultSeed,
			FirstPlateActive: true,
			Source: source.Params{
				Model:         source.UniformPencil,
				PinholeRadius: 0.05,
				MeanDirection: core.NewVec3(0, -1, 0),
				Normal:        core.NewVec3(0, -1, 0),
				AngularSize:   0.05,
			},
		},
	}, nil
}

func (c RunCmd) Run() error {
	var run *sceneAndConfig
	var err error
	switch {
	case c.Scene != "":
		run, err = builtinRun(c.Scene)
	case c.Config != "":
		run, err = configuredRun(c.Config)
	default:
		err = fmt.Errorf("either a config file or --scene is required")
	}
	if err != nil {
		return err
	}

	run.cfg.Logger = core.NewStdLogger(nil)
	run.cfg.CollectTrajectories = c.Trajectories

	start := time.Now()
	result := driver.Run(run.sc, run.cfg)
	result.Diagnostics = append(result.Diagnostics, run.diag...)
	result.Provenance = driver.Provenance{
		Seed:          run.cfg.Seed,
		NumWorkers:    run.cfg.NumWorkers,
		RaysPerPixel:  run.cfg.RaysPerPixel,
		EffuseRays:    run.cfg.EffuseRays,
		MaxScatter:    run.cfg.MaxScatter,
		ScanRangeX:    run.scanRangeX,
		ScanRangeZ:    run.scanRangeY,
		Step:          run.cfg.Step,
		ElapsedMillis: time.Since(start).Milliseconds(),
	}

	out := os.Stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

type BenchCmd struct {
	Config string `arg:"" name:"config" help:"Parameter file supplying source/sample/scattering settings."`
	Rays   int    `name:"rays" default:"100000" help:"Rays to trace for the benchmark pixel."`
}

func (c BenchCmd) Run() error {
	run, err := configuredRun(c.Config)
	if err != nil {
		return err
	}
	run.cfg.NX, run.cfg.NZ = 1, 1
	run.cfg.RaysPerPixel = c.Rays
	run.cfg.EffuseRays = 0
	run.cfg.NumWorkers = 1

	start := time.Now()
	driver.Run(run.sc, run.cfg)
	elapsed := time.Since(start)

	fmt.Printf("%d rays in %v (%.0f rays/sec)\n", c.Rays, elapsed, float64(c.Rays)/elapsed.Seconds())
	return nil
}

func loadParams(path string) (*config.Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening parameter file: %w", err)
	}
	defer f.Close()

	params, err := config.Parse(f)
	if err != nil {
		return nil, err
	}
	for _, w := range params.Warnings {
		log.Printf("warning: %s", w)
	}
	return params, nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("shemtrace"),
		kong.Description("Monte Carlo scanning helium microscope ray tracer."))
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
