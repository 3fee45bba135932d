package InputParameters

import (
	"fmt"
	"log"
	"math"

	"github.com/ghodss/yaml"
	"github.com/notargets/gobeamcontact/contact"
	"github.com/notargets/gobeamcontact/penalty"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
)

// Contact parameters obtained from the YAML input file, angles are in degrees
type ContactParameters struct {
	Title                    string   `json:"Title"`
	PenaltyLaw               string   `json:"BEAMS_PENALTYLAW"`
	PenRegParamG0            float64  `json:"BEAMS_PENREGPARAM_G0"`
	PenRegParamF0            float64  `json:"BEAMS_PENREGPARAM_F0"`
	PenRegParamC0            float64  `json:"BEAMS_PENREGPARAM_C0"`
	GapShiftParam            float64  `json:"BEAMS_GAPSHIFTPARAM"`
	PenaltyParam             float64  `json:"BEAMS_BTBPENALTYPARAM"`
	LinePenaltyParam         *float64 `json:"BEAMS_BTBLINEPENALTYPARAM"`
	PerpShiftAngle1          float64  `json:"BEAMS_PERPSHIFTANGLE1"`
	PerpShiftAngle2          float64  `json:"BEAMS_PERPSHIFTANGLE2"`
	ParShiftAngle1           float64  `json:"BEAMS_PARSHIFTANGLE1"`
	ParShiftAngle2           float64  `json:"BEAMS_PARSHIFTANGLE2"`
	SegAngle                 float64  `json:"BEAMS_SEGANGLE"`
	NumIntegrationInterval   int      `json:"BEAMS_NUMINTEGRATIONINTERVAL"`
	MaxSegments              int      `json:"BEAMS_MAXSEGMENTS"`
	EndpointPenalty          bool     `json:"BEAMS_ENDPOINTPENALTY"`
	EndpointSegmentation     bool     `json:"BEAMS_ENDPOINTSEGMENTATION"`
	ChangeEndpointProjection bool     `json:"BEAMS_CHANGEENDPOINTPROJECTION"`
	Smoothing                string   `json:"BEAMS_SMOOTHING"`
	Damping                  bool     `json:"BEAMS_DAMPING"`
	DampingParam             *float64 `json:"BEAMS_DAMPINGPARAM"`
	DampRegParam1            *float64 `json:"BEAMS_DAMPREGPARAM1"`
	DampRegParam2            *float64 `json:"BEAMS_DAMPREGPARAM2"`
	NewGap                   bool     `json:"BEAMS_NEWGAP"`
	AddItExt                 bool     `json:"BEAMS_ADDITEXT"`
	BasicStiffGap            float64  `json:"BEAMS_BASICSTIFFGAP"`
	InactiveStiff            bool     `json:"BEAMS_INACTIVESTIFF"`
	ConsistentTransition     bool     `json:"BEAMS_CONSISTENTTRANSITION"`
	CPPApprox                bool     `json:"BEAMS_CPPAPPROX"`
	SearchBoxInc             float64  `json:"BEAMS_SEARCHBOXINC"`
	MaxIterations            int      `json:"BEAMS_MAXITER"`
	Debug                    bool     `json:"BEAMS_DEBUG"`
}

// NewContactParameters returns the defaults, keys missing from a parsed file keep them
func NewContactParameters() (cp *ContactParameters) {
	cp = &ContactParameters{
		PenaltyLaw:             "LP",
		PenaltyParam:           1.e3,
		PerpShiftAngle1:        10,
		PerpShiftAngle2:        20,
		ParShiftAngle1:         10,
		ParShiftAngle2:         20,
		SegAngle:               1,
		NumIntegrationInterval: 8,
		MaxSegments:            utils.MAXSEGMENTS,
		Smoothing:              "none",
		BasicStiffGap:          -1,
		MaxIterations:          utils.BEAMCONTACTMAXITER,
	}
	return
}

func (cp *ContactParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, cp)
}

func (cp *ContactParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", cp.Title)
	fmt.Printf("[%s]\t\t\t= Penalty Law\n", cp.PenaltyLaw)
	fmt.Printf("%8.5g\t\t= Point Penalty\n", cp.PenaltyParam)
	if cp.LinePenaltyParam != nil {
		fmt.Printf("%8.5g\t\t= Line Penalty\n", *cp.LinePenaltyParam)
	}
	fmt.Printf("%8.5f\t\t= G0\n", cp.PenRegParamG0)
	fmt.Printf("%8.5f\t\t= F0\n", cp.PenRegParamF0)
	fmt.Printf("%8.5f\t\t= C0\n", cp.PenRegParamC0)
	fmt.Printf("%8.5f\t\t= Gap Shift\n", cp.GapShiftParam)
	fmt.Printf("[%5.2f,%5.2f]\t\t= Perpendicular Shift Angles\n", cp.PerpShiftAngle1, cp.PerpShiftAngle2)
	fmt.Printf("[%5.2f,%5.2f]\t\t= Parallel Shift Angles\n", cp.ParShiftAngle1, cp.ParShiftAngle2)
	fmt.Printf("%8.5f\t\t= Segment Angle\n", cp.SegAngle)
	fmt.Printf("[%d]\t\t\t\t= Integration Intervals\n", cp.NumIntegrationInterval)
	fmt.Printf("[%s]\t\t\t= Smoothing\n", cp.Smoothing)
	if cp.Damping && cp.dampingGiven() {
		fmt.Printf("[%g,%g,%g]\t= Damping, Reg Gap 1, Reg Gap 2\n",
			*cp.DampingParam, *cp.DampRegParam1, *cp.DampRegParam2)
	}
	flags := []struct {
		name string
		on   bool
	}{
		{"Endpoint Penalty", cp.EndpointPenalty},
		{"Endpoint Segmentation", cp.EndpointSegmentation},
		{"Change Endpoint Projection", cp.ChangeEndpointProjection},
		{"New Gap", cp.NewGap},
		{"Add It Ext", cp.AddItExt},
		{"Inactive Stiffness", cp.InactiveStiff},
		{"Consistent Transition", cp.ConsistentTransition},
		{"CPP Approx", cp.CPPApprox},
		{"Debug", cp.Debug},
	}
	for _, f := range flags {
		if f.on {
			fmt.Printf("[on]\t\t\t\t= %s\n", f.name)
		}
	}
	if cp.BasicStiffGap >= 0 {
		fmt.Printf("%8.5f\t\t= Basic Stiffness Gap\n", cp.BasicStiffGap)
	}
	if cp.SearchBoxInc > 0 {
		fmt.Printf("%8.5f\t\t= Search Box Increment\n", cp.SearchBoxInc)
	}
}

func badKey(key string, format string, args ...any) error {
	return fmt.Errorf("%s: "+format+": %w", append(append([]any{key}, args...), types.ErrBadInput)...)
}

// dampingGiven is true when all three damping values are in the file, the regularization gaps may be negative
func (cp *ContactParameters) dampingGiven() bool {
	return cp.DampingParam != nil && cp.DampRegParam1 != nil && cp.DampRegParam2 != nil
}

/*
Validate converts the parameters into a contact configuration. Angles go from degrees to radians and
have to lie in [0,90]; the remaining checks are those of contact.Config.Validate, run here so that a
bad file fails before any pair is built.
*/
func (cp *ContactParameters) Validate(logger *log.Logger) (cfg contact.Config, err error) {
	var (
		law penalty.Params
		sm  types.Smoothing
	)
	if law.Law, err = types.NewPenaltyLaw(cp.PenaltyLaw); err != nil {
		err = fmt.Errorf("BEAMS_PENALTYLAW: %w", err)
		return
	}
	if sm, err = types.NewSmoothing(cp.Smoothing); err != nil {
		err = fmt.Errorf("BEAMS_SMOOTHING: %w", err)
		return
	}
	angles := []struct {
		key string
		val float64
	}{
		{"BEAMS_PERPSHIFTANGLE1", cp.PerpShiftAngle1},
		{"BEAMS_PERPSHIFTANGLE2", cp.PerpShiftAngle2},
		{"BEAMS_PARSHIFTANGLE1", cp.ParShiftAngle1},
		{"BEAMS_PARSHIFTANGLE2", cp.ParShiftAngle2},
	}
	for _, a := range angles {
		if a.val < 0 || a.val > 90 || math.IsNaN(a.val) {
			err = badKey(a.key, "shift angle %g outside [0,90] degrees", a.val)
			return
		}
	}
	switch {
	case !(cp.PenaltyParam > 0):
		err = badKey("BEAMS_BTBPENALTYPARAM", "has to be positive, have %g", cp.PenaltyParam)
	case cp.SegAngle <= 0 || cp.SegAngle >= 90:
		err = badKey("BEAMS_SEGANGLE", "has to lie in (0,90) degrees, have %g", cp.SegAngle)
	case cp.Damping && !cp.dampingGiven():
		err = badKey("BEAMS_DAMPING", "needs BEAMS_DAMPINGPARAM, BEAMS_DAMPREGPARAM1 and BEAMS_DAMPREGPARAM2")
	case cp.Damping && *cp.DampRegParam1 < *cp.DampRegParam2:
		err = badKey("BEAMS_DAMPREGPARAM1", "below BEAMS_DAMPREGPARAM2, have %g < %g", *cp.DampRegParam1,
			*cp.DampRegParam2)
	case cp.SearchBoxInc < 0:
		err = badKey("BEAMS_SEARCHBOXINC", "negative, have %g", cp.SearchBoxInc)
	case cp.MaxIterations < 1:
		err = badKey("BEAMS_MAXITER", "at least one iteration, have %d", cp.MaxIterations)
	}
	if err != nil {
		return
	}
	law.G0, law.F0, law.C0 = cp.PenRegParamG0, cp.PenRegParamF0, cp.PenRegParamC0
	law.GapShift = cp.GapShiftParam
	if law.Damping = cp.Damping; law.Damping {
		law.DampingParam, law.DampRegParam1, law.DampRegParam2 = *cp.DampingParam, *cp.DampRegParam1,
			*cp.DampRegParam2
	}
	cfg = contact.Config{
		Law:                      law,
		PointPenalty:             cp.PenaltyParam,
		LinePenalty:              -1,
		PerpShift1:               utils.Deg2Rad(cp.PerpShiftAngle1),
		PerpShift2:               utils.Deg2Rad(cp.PerpShiftAngle2),
		ParShift1:                utils.Deg2Rad(cp.ParShiftAngle1),
		ParShift2:                utils.Deg2Rad(cp.ParShiftAngle2),
		SegAngle:                 utils.Deg2Rad(cp.SegAngle),
		NumIntervals:             cp.NumIntegrationInterval,
		MaxSegments:              cp.MaxSegments,
		MaxIter:                  cp.MaxIterations,
		EndpointPenalty:          cp.EndpointPenalty,
		EndpointSegmentation:     cp.EndpointSegmentation,
		ChangeEndpointProjection: cp.ChangeEndpointProjection,
		Smoothing:                sm,
		NewGap:                   cp.NewGap,
		AddItExt:                 cp.AddItExt,
		BasicStiffGap:            cp.BasicStiffGap,
		InactiveStiff:            cp.InactiveStiff,
		ConsistentTransition:     cp.ConsistentTransition,
		CPPApprox:                cp.CPPApprox,
		SearchBoxInc:             cp.SearchBoxInc,
		Debug:                    cp.Debug,
		Logger:                   logger,
	}
	if cp.LinePenaltyParam != nil {
		cfg.LinePenalty = *cp.LinePenaltyParam
	}
	if _, err = cfg.Validate(); err != nil {
		cfg = contact.Config{}
	}
	return
}
