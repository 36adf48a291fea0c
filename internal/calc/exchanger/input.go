package exchanger

import (
	"errors"
	"fmt"
	"strings"

	"Thermex/internal/calc/calcerr"
	"Thermex/internal/calc/catalog"
	"Thermex/internal/calc/coefficient"
	"Thermex/internal/calc/lmtd"
	"Thermex/internal/calc/ntu"
	"Thermex/internal/calc/pressure"
	"Thermex/internal/calc/sizing"
	"Thermex/internal/fluid"
	"github.com/go-playground/validator/v10"
)

// Stream is one process stream as supplied by the caller. A zero mass flow
// is derived from the duty of the other stream. Properties may be given
// inline; otherwise they are looked up for Substance at the mean temperature.
type Stream struct {
	Substance   string            `json:"substance" yaml:"substance" validate:"required_without=Properties"`
	MassFlowLbH float64           `json:"mass_flow_lb_h" yaml:"mass_flow_lb_h" validate:"gte=0"`
	InletF      float64           `json:"inlet_f" yaml:"inlet_f"`
	OutletF     float64           `json:"outlet_f" yaml:"outlet_f"`
	Properties  *fluid.Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

type Input struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Kind string `json:"kind" yaml:"kind" validate:"required"`
	Flow string `json:"flow" yaml:"flow" validate:"required"`
	// Nominal is a double-pipe code such as "3*2" or a tube size such as "3/4".
	Nominal string `json:"nominal" yaml:"nominal" validate:"required"`
	// Gauge and Arrangement apply to shell-and-tube only.
	Gauge       int    `json:"gauge,omitempty" yaml:"gauge,omitempty" validate:"gte=0"`
	Arrangement string `json:"arrangement,omitempty" yaml:"arrangement,omitempty"`
	// InnerSide puts the hot (default) or cold stream in the inner pipe or tubes.
	InnerSide string `json:"inner_side,omitempty" yaml:"inner_side,omitempty" validate:"omitempty,oneof=hot cold"`
	// FoulingAllowance overrides the configured allowance when set.
	FoulingAllowance *float64 `json:"fouling_allowance,omitempty" yaml:"fouling_allowance,omitempty" validate:"omitempty,gte=0"`

	Hot  Stream `json:"hot" yaml:"hot"`
	Cold Stream `json:"cold" yaml:"cold"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field-level constraints. Physical feasibility is checked by
// the pipeline stages.
func (in Input) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return calcerr.Domain("input", "%v", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return calcerr.Domain("input", "invalid fields: %s", strings.Join(fields, ", "))
}

// StreamState is a stream after properties and flow are resolved.
type StreamState struct {
	Substance     string           `json:"substance,omitempty"`
	MassFlowLbH   float64          `json:"mass_flow_lb_h"`
	InletF        float64          `json:"inlet_f"`
	OutletF       float64          `json:"outlet_f"`
	MeanF         float64          `json:"mean_f"`
	Properties    fluid.Properties `json:"properties"`
	Capacity      float64          `json:"capacity_btu_h_f"`
	FlowDerived   bool             `json:"flow_derived,omitempty"`
	PropsLookedUp bool             `json:"properties_looked_up,omitempty"`
}

// Result is the design state of one run. Each stage fills its own fields.
type Result struct {
	ID          string              `json:"id"`
	Name        string              `json:"name,omitempty"`
	Kind        catalog.Kind        `json:"kind"`
	Flow        lmtd.Flow           `json:"flow"`
	Arrangement catalog.Arrangement `json:"arrangement,omitempty"`
	InnerSide   string              `json:"inner_side"`
	Geometry    catalog.Record      `json:"geometry"`
	Annulus     *catalog.Annulus    `json:"annulus,omitempty"`
	Shell       *catalog.Shell      `json:"shell,omitempty"`
	// Effective flow area and surface of the inner passage (all tubes of a pass).
	InnerFlowAreaFt2 float64 `json:"inner_flow_area_ft2"`
	LinearSurface    float64 `json:"linear_surface_ft2_ft"`

	Hot  StreamState `json:"hot"`
	Cold StreamState `json:"cold"`

	DutyBtuH float64     `json:"duty_btu_h"`
	Driving  lmtd.Result `json:"driving"`

	InnerFilm                 coefficient.Film `json:"inner_film"`
	OuterFilm                 coefficient.Film `json:"outer_film"`
	CorrectedInnerCoefficient float64          `json:"corrected_inner_coefficient"`
	CleanCoefficient          float64          `json:"clean_coefficient"`
	FoulingAllowance          float64          `json:"fouling_allowance"`
	DesignCoefficient         float64          `json:"design_coefficient"`

	Sizing sizing.Result `json:"sizing"`

	InnerPressure pressure.Result `json:"inner_pressure"`
	OuterPressure pressure.Result `json:"outer_pressure"`

	Check ntu.Result `json:"check"`
}
