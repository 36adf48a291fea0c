// Package catalog resolves nominal exchanger sizes to physical geometry.
//
// Tables are built once at package initialisation, converted from inches to
// feet, and checked for internal consistency; a bad table panics at start-up
// rather than producing a wrong record later. Lookups never fall back to a
// default: a miss is a calcerr.ErrLookup.
package catalog

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"Thermex/internal/calc/calcerr"
)

const (
	InchesPerFoot       = 12.0
	SquareInchesPerFoot = 144.0

	// Tolerances used when checking the tables and matching tube diameters.
	wallTolerance  = 0.002
	matchTolerance = 1e-6
)

type Kind string

const (
	DoublePipe   Kind = "double-pipe"
	ShellAndTube Kind = "shell-and-tube"
)

// ParseKind accepts the canonical names and the spellings used in older case files.
func ParseKind(s string) (Kind, error) {
	switch normalize(s) {
	case "double-pipe", "doublepipe":
		return DoublePipe, nil
	case "shell-and-tube", "pipe-and-shell", "shell-tube":
		return ShellAndTube, nil
	}
	return "", calcerr.Config("catalog", "unrecognised exchanger kind %q", s)
}

type Arrangement string

const (
	Square     Arrangement = "square"
	Triangular Arrangement = "triangular"
)

func ParseArrangement(s string) (Arrangement, error) {
	switch normalize(s) {
	case "square":
		return Square, nil
	case "triangular", "triangle":
		return Triangular, nil
	}
	return "", calcerr.Config("catalog", "unrecognised tube arrangement %q", s)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), "-")
}

// Record is a resolved catalog entry. Linear dimensions are in ft, flow
// area in ft², linear surface in ft²/ft.
type Record struct {
	Kind    Kind   `json:"kind"`
	Nominal string `json:"nominal"`
	Gauge   int    `json:"gauge,omitempty"`

	// Inner pipe or tube.
	InnerDiameter float64 `json:"inner_diameter_ft"`
	OuterDiameter float64 `json:"outer_diameter_ft"`
	WallThickness float64 `json:"wall_thickness_ft"`
	FlowArea      float64 `json:"flow_area_ft2"`

	// Inside diameter of the outer pipe; double-pipe only.
	AnnulusDiameter float64 `json:"annulus_diameter_ft,omitempty"`

	LinearSurface float64 `json:"linear_surface_ft2_ft"`
}

type tubeKey struct {
	nominal string
	gauge   int
}

var (
	doublePipe   map[string]Record
	shellAndTube map[tubeKey]Record
)

func init() {
	var err error
	if doublePipe, err = buildDoublePipe(); err != nil {
		panic(err)
	}
	if shellAndTube, err = buildShellAndTube(); err != nil {
		panic(err)
	}
}

func buildDoublePipe() (map[string]Record, error) {
	out := make(map[string]Record, len(doublePipeRows))
	for code, r := range doublePipeRows {
		if r.pipeID <= 0 || r.pipeOD <= r.pipeID || r.annulusID <= r.pipeOD || r.flowArea <= 0 || r.linearSurface <= 0 {
			return nil, fmt.Errorf("catalog: inconsistent double-pipe entry %q", code)
		}
		out[code] = Record{
			Kind:            DoublePipe,
			Nominal:         code,
			InnerDiameter:   r.pipeID / InchesPerFoot,
			OuterDiameter:   r.pipeOD / InchesPerFoot,
			WallThickness:   (r.pipeOD - r.pipeID) / 2 / InchesPerFoot,
			FlowArea:        r.flowArea / SquareInchesPerFoot,
			AnnulusDiameter: r.annulusID / InchesPerFoot,
			LinearSurface:   r.linearSurface,
		}
	}
	return out, nil
}

func buildShellAndTube() (map[tubeKey]Record, error) {
	out := make(map[tubeKey]Record)
	for code, size := range tubeSizes {
		for _, r := range size.rows {
			key := tubeKey{code, r.bwg}
			if _, dup := out[key]; dup {
				return nil, fmt.Errorf("catalog: duplicate tube entry %s BWG %d", code, r.bwg)
			}
			if math.Abs(size.od-r.tubeID-2*r.wall) > wallTolerance {
				return nil, fmt.Errorf("catalog: tube %s BWG %d: OD %.3f != ID %.3f + 2*%.3f", code, r.bwg, size.od, r.tubeID, r.wall)
			}
			if r.flowArea <= 0 || r.linearSurface <= 0 {
				return nil, fmt.Errorf("catalog: tube %s BWG %d has non-positive area", code, r.bwg)
			}
			out[key] = Record{
				Kind:          ShellAndTube,
				Nominal:       code,
				Gauge:         r.bwg,
				InnerDiameter: r.tubeID / InchesPerFoot,
				OuterDiameter: size.od / InchesPerFoot,
				WallThickness: r.wall / InchesPerFoot,
				FlowArea:      r.flowArea / SquareInchesPerFoot,
				LinearSurface: r.linearSurface,
			}
		}
	}
	return out, nil
}

// trimNominal lets callers write "3/4 in" or "3/4\"" for the tube code "3/4".
func trimNominal(code string) string {
	code = strings.TrimSpace(code)
	code = strings.TrimSuffix(code, "\"")
	code = strings.TrimSuffix(code, " in")
	return strings.TrimSpace(code)
}

// ResolveDoublePipe returns the double-pipe record for a nominal code such as "3*2".
func ResolveDoublePipe(nominal string) (Record, error) {
	rec, ok := doublePipe[strings.TrimSpace(nominal)]
	if !ok {
		return Record{}, calcerr.Lookup("catalog", "no double-pipe entry for nominal size %q", nominal)
	}
	return rec, nil
}

// ResolveShellAndTube returns the tube record for a nominal tube size and BWG gauge.
func ResolveShellAndTube(nominal string, gauge int) (Record, error) {
	code := trimNominal(nominal)
	if _, ok := tubeSizes[code]; !ok {
		return Record{}, calcerr.Lookup("catalog", "no tube size %q", nominal)
	}
	rec, ok := shellAndTube[tubeKey{code, gauge}]
	if !ok {
		return Record{}, calcerr.Lookup("catalog", "tube size %q has no BWG %d entry", nominal, gauge)
	}
	return rec, nil
}

// Resolve dispatches on kind; gauge is ignored for double-pipe.
func Resolve(kind Kind, nominal string, gauge int) (Record, error) {
	switch kind {
	case DoublePipe:
		return ResolveDoublePipe(nominal)
	case ShellAndTube:
		return ResolveShellAndTube(nominal, gauge)
	}
	return Record{}, calcerr.Config("catalog", "unrecognised exchanger kind %q", kind)
}

// Pitch returns the centre-to-centre tube spacing in inches for a tube
// outside diameter in inches. ok is false when the table has no such diameter.
func Pitch(arr Arrangement, tubeODInches float64) (pitch float64, ok bool) {
	for _, e := range pitchRows[arr] {
		if math.Abs(e.tubeOD-tubeODInches) < matchTolerance {
			return e.pitch, true
		}
	}
	return 0, false
}

// ResolvePitch is Pitch with the miss turned into a lookup error.
func ResolvePitch(arr Arrangement, tubeODInches float64) (float64, error) {
	if _, known := pitchRows[arr]; !known {
		return 0, calcerr.Config("catalog", "unrecognised tube arrangement %q", arr)
	}
	p, ok := Pitch(arr, tubeODInches)
	if !ok {
		return 0, calcerr.Lookup("catalog", "no %s pitch for %.4g in tubes", arr, tubeODInches)
	}
	return p, nil
}

// Annulus is the outer passage of a double-pipe exchanger.
type Annulus struct {
	FlowArea float64 `json:"flow_area_ft2"`
	// HeatDiameter is the equivalent diameter for heat transfer, (D2²-D1²)/D1.
	HeatDiameter float64 `json:"heat_diameter_ft"`
	// FrictionDiameter is D2-D1, used for pressure drop.
	FrictionDiameter float64 `json:"friction_diameter_ft"`
}

func AnnulusOf(rec Record) (Annulus, error) {
	if rec.Kind != DoublePipe {
		return Annulus{}, calcerr.Config("catalog", "annulus requested for %s record", rec.Kind)
	}
	d1, d2 := rec.OuterDiameter, rec.AnnulusDiameter
	return Annulus{
		FlowArea:         math.Pi * (d2*d2 - d1*d1) / 4,
		HeatDiameter:     (d2*d2 - d1*d1) / d1,
		FrictionDiameter: d2 - d1,
	}, nil
}

// Shell is the shell-side passage of a shell-and-tube exchanger.
type Shell struct {
	Arrangement Arrangement `json:"arrangement"`
	PitchIn     float64     `json:"pitch_in"`
	// ClearanceIn is C', the gap between neighbouring tubes.
	ClearanceIn        float64 `json:"clearance_in"`
	FlowArea           float64 `json:"flow_area_ft2"`
	EquivalentDiameter float64 `json:"equivalent_diameter_ft"`
}

// ShellOf derives the shell side from a tube record. Shell inside diameter and
// baffle spacing are in inches.
func ShellOf(rec Record, arr Arrangement, shellDiameterIn, baffleSpacingIn float64) (Shell, error) {
	if rec.Kind != ShellAndTube {
		return Shell{}, calcerr.Config("catalog", "shell requested for %s record", rec.Kind)
	}
	if shellDiameterIn <= 0 || baffleSpacingIn <= 0 {
		return Shell{}, calcerr.Config("catalog", "shell diameter and baffle spacing must be positive")
	}
	do := rec.OuterDiameter * InchesPerFoot
	pt, err := ResolvePitch(arr, do)
	if err != nil {
		return Shell{}, err
	}
	di := rec.InnerDiameter * InchesPerFoot
	wall := rec.WallThickness * InchesPerFoot
	clearance := pt - (di + 2*wall)
	if clearance <= 0 {
		return Shell{}, calcerr.Domain("catalog", "pitch %.4g in leaves no clearance around %.4g in tubes", pt, do)
	}

	var de float64
	switch arr {
	case Square:
		de = 4 * (pt*pt - math.Pi*do*do/4) / (math.Pi * do)
	case Triangular:
		de = 4 * (0.5*pt*0.86*pt - 0.5*math.Pi*do*do/4) / (0.5 * math.Pi * do)
	}

	return Shell{
		Arrangement:        arr,
		PitchIn:            pt,
		ClearanceIn:        clearance,
		FlowArea:           shellDiameterIn * clearance * baffleSpacingIn / (SquareInchesPerFoot * pt),
		EquivalentDiameter: de / InchesPerFoot,
	}, nil
}

// DoublePipeCodes lists the double-pipe nominal codes in sorted order.
func DoublePipeCodes() []string {
	out := make([]string, 0, len(doublePipe))
	for code := range doublePipe {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// TubeEntry names one shell-and-tube catalog entry.
type TubeEntry struct {
	Nominal string `json:"nominal"`
	Gauge   int    `json:"gauge"`
}

// TubeEntries lists every shell-and-tube entry ordered by tube size then gauge.
func TubeEntries() []TubeEntry {
	out := make([]TubeEntry, 0, len(shellAndTube))
	for key := range shellAndTube {
		out = append(out, TubeEntry{Nominal: key.nominal, Gauge: key.gauge})
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := tubeSizes[out[i].Nominal].od, tubeSizes[out[j].Nominal].od
		if oi != oj {
			return oi < oj
		}
		return out[i].Gauge < out[j].Gauge
	})
	return out
}
