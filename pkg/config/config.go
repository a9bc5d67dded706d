// Package config parses the line-oriented parameter-file format of
// spec.md §6 into a typed Params struct. It is an ambient, convenience
// front end in front of scene construction (SPEC_FULL.md §4.9): it
// never touches mesh/vertex data, only the scalar and string
// parameters spec.md §6 lists.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shemtrace/shemtrace/pkg/core"
)

// ScanType enumerates spec.md §6's "scan type" values.
type ScanType string

const (
	ScanRectangular ScanType = "rectangular"
	ScanRotations    ScanType = "rotations"
	ScanSinglePixel  ScanType = "single pixel"
	ScanLine         ScanType = "line"
)

// SourceModel enumerates spec.md §6's "source model" values.
type SourceModel string

const (
	SourceUniform  SourceModel = "uniform"
	SourceGaussian SourceModel = "gaussian"
)

// ScatteringLaw enumerates spec.md §6's "scattering" values.
type ScatteringLaw string

const (
	ScatterSpecular  ScatteringLaw = "specular"
	ScatterCosine    ScatteringLaw = "cosine"
	ScatterUniform   ScatteringLaw = "uniform"
	ScatterBroadened ScatteringLaw = "broadened"
	ScatterMixed     ScatteringLaw = "mixed"
)

// SampleType enumerates spec.md §6's "sample type" values.
type SampleType string

const (
	SampleFlat        SampleType = "flat"
	SampleSphere      SampleType = "sphere"
	SampleCustom      SampleType = "custom"
	SamplePhotoStereo SampleType = "photostereo"
)

// Params is the parsed parameter-file contents (spec.md §6). Fields
// mirror the key table exactly. Enumerated values (scan type, source
// model, sample type, scattering) are stored lower-cased; free-text
// values (paths, labels, descriptions, STL pinhole model) are stored as
// given.
type Params struct {
	WorkingDistance      float64
	IncidenceAngle       float64
	ScanType             ScanType
	DetectorCount        int
	DetectorFullAxes     [2]float64
	DetectorCentres      [2]float64
	RotationAngles       []float64
	STLPinholeModel      string
	RayCount             int
	PinholeRadius        float64
	SourceModel          SourceModel
	AngularSourceSize    float64
	SourceStdDev         float64
	EffuseBeam           bool
	EffuseRelativeSize   float64
	SampleDescription    string
	SampleType           SampleType
	SampleWorkingDistance float64
	Scattering           ScatteringLaw
	Reflectivity         float64
	ScatteringStdDev     float64
	SphereRadius         float64
	FlatSideLength       float64
	CustomSTLPath        string
	ManualAlignment      bool
	PixelSeparation      float64
	ScanRangeX           [2]float64
	ScanRangeY           [2]float64
	IgnoreIncidenceAngle bool
	OutputLabel          string
	RecompileFlag        bool

	Warnings []string
}

// Parse reads a spec.md §6 parameter file from r. Lines beginning with
// `%` are comments; recognised lines match `<Key>: <Value>`, matched
// case-insensitively against the fixed key table. Unknown keys produce
// a warning (non-fatal, per spec §6); malformed or contradictory values
// for recognised keys produce a *core.ConfigError (fatal).
func Parse(r io.Reader) (*Params, error) {
	p := &Params{}
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			return nil, &core.ConfigError{Reason: fmt.Sprintf("line %d: expected \"Key: Value\", got %q", lineNo, line)}
		}

		if err := p.set(strings.ToLower(key), value); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &core.ConfigError{Reason: err.Error()}
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func splitKeyValue(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

func (p *Params) set(key, value string) error {
	switch key {
	case "working distance":
		return p.setFloat(&p.WorkingDistance, key, value)
	case "incidence angle":
		return p.setFloat(&p.IncidenceAngle, key, value)
	case "scan type":
		p.ScanType = ScanType(strings.ToLower(value))
	case "detector count":
		return p.setInt(&p.DetectorCount, key, value)
	case "detector full axes":
		return p.setPair(&p.DetectorFullAxes, key, value)
	case "detector centres":
		return p.setPair(&p.DetectorCentres, key, value)
	case "rotation angles":
		vals, err := parseFloatList(value)
		if err != nil {
			return &core.ConfigError{Key: key, Reason: err.Error()}
		}
		p.RotationAngles = vals
	case "stl pinhole model":
		p.STLPinholeModel = value
	case "ray count":
		return p.setInt(&p.RayCount, key, value)
	case "pinhole radius":
		return p.setFloat(&p.PinholeRadius, key, value)
	case "source model":
		p.SourceModel = SourceModel(strings.ToLower(value))
	case "angular source size":
		return p.setFloat(&p.AngularSourceSize, key, value)
	case "source stddev":
		return p.setFloat(&p.SourceStdDev, key, value)
	case "effuse beam":
		return p.setBoolOnOff(&p.EffuseBeam, key, value)
	case "effuse relative size":
		return p.setFloat(&p.EffuseRelativeSize, key, value)
	case "sample type":
		p.SampleType = SampleType(strings.ToLower(value))
	case "sample description":
		p.SampleDescription = value
	case "sample working distance":
		return p.setFloat(&p.SampleWorkingDistance, key, value)
	case "scattering":
		p.Scattering = ScatteringLaw(strings.ToLower(value))
	case "reflectivity":
		return p.setFloat(&p.Reflectivity, key, value)
	case "scattering stddev":
		return p.setFloat(&p.ScatteringStdDev, key, value)
	case "sphere radius":
		return p.setFloat(&p.SphereRadius, key, value)
	case "flat side length":
		return p.setFloat(&p.FlatSideLength, key, value)
	case "custom stl path":
		p.CustomSTLPath = value
	case "manual alignment":
		return p.setBoolYesNo(&p.ManualAlignment, key, value)
	case "pixel separation":
		return p.setFloat(&p.PixelSeparation, key, value)
	case "scan range x":
		return p.setPair(&p.ScanRangeX, key, value)
	case "scan range y":
		return p.setPair(&p.ScanRangeY, key, value)
	case "ignore incidence angle":
		return p.setBoolYesNo(&p.IgnoreIncidenceAngle, key, value)
	case "output label":
		p.OutputLabel = value
	case "recompile":
		return p.setBoolYesNo(&p.RecompileFlag, key, value)
	default:
		p.Warnings = append(p.Warnings, fmt.Sprintf("unknown key %q ignored", key))
	}
	return nil
}

func (p *Params) setFloat(dst *float64, key, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return &core.ConfigError{Key: key, Reason: "expected a number, got " + strconv.Quote(value)}
	}
	*dst = v
	return nil
}

func (p *Params) setInt(dst *int, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return &core.ConfigError{Key: key, Reason: "expected an integer, got " + strconv.Quote(value)}
	}
	*dst = v
	return nil
}

func (p *Params) setBoolOnOff(dst *bool, key, value string) error {
	switch strings.ToLower(value) {
	case "on":
		*dst = true
	case "off":
		*dst = false
	default:
		return &core.ConfigError{Key: key, Reason: "expected On or Off, got " + strconv.Quote(value)}
	}
	return nil
}

func (p *Params) setBoolYesNo(dst *bool, key, value string) error {
	switch strings.ToLower(value) {
	case "yes":
		*dst = true
	case "no":
		*dst = false
	default:
		return &core.ConfigError{Key: key, Reason: "expected yes or no, got " + strconv.Quote(value)}
	}
	return nil
}

func (p *Params) setPair(dst *[2]float64, key, value string) error {
	vals, err := parseFloatList(value)
	if err != nil || len(vals) != 2 {
		return &core.ConfigError{Key: key, Reason: "expected \"(x, y)\", got " + strconv.Quote(value)}
	}
	*dst = [2]float64{vals[0], vals[1]}
	return nil
}

func parseFloatList(value string) ([]float64, error) {
	trimmed := strings.Trim(value, "()")
	parts := strings.Split(trimmed, ",")
	vals := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", part)
		}
		vals[i] = v
	}
	return vals, nil
}

// validate checks cross-field contradictions that a single key:value
// line cannot catch on its own (spec §7 "contradictory settings").
func (p *Params) validate() error {
	if p.SampleType == SampleSphere && p.SphereRadius <= 0 {
		return &core.ConfigError{Key: "sphere radius", Reason: "must be positive when sample type is sphere"}
	}
	if p.SampleType == SampleCustom && p.CustomSTLPath == "" {
		return &core.ConfigError{Key: "custom stl path", Reason: "required when sample type is custom"}
	}
	if p.RayCount < 0 {
		return &core.ConfigError{Key: "ray count", Reason: "must be non-negative"}
	}
	if p.EffuseBeam && p.EffuseRelativeSize <= 0 {
		return &core.ConfigError{Key: "effuse relative size", Reason: "must be positive when effuse beam is On"}
	}
	return nil
}
