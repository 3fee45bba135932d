package contact

import (
	"fmt"
	"log"
	"math"

	"github.com/notargets/gobeamcontact/penalty"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
)

// Config holds the contact options shared by all pairs. Angles are in radians. A Config is passed by
// value and not changed after NewPair or NewManager.
type Config struct {
	Law          penalty.Params
	PointPenalty float64 // large angle and endpoint contact
	LinePenalty  float64 // small angle contact, negative is unset

	PerpShift1, PerpShift2 float64 // point contact ramps up between these angles
	ParShift1, ParShift2   float64 // line contact ramps down between these angles
	SegAngle               float64
	NumIntervals           int // integration intervals per element for line contact
	MaxSegments            int
	MaxIter                int

	EndpointPenalty          bool
	EndpointSegmentation     bool
	ChangeEndpointProjection bool
	Smoothing                types.Smoothing
	NewGap, AddItExt         bool
	BasicStiffGap            float64 // negative is off
	InactiveStiff            bool
	ConsistentTransition     bool
	CPPApprox                bool
	SearchBoxInc             float64 // zero disables the step size checks
	Debug                    bool

	DofMap map[int]int // element dof -> problem dof, nil is the identity
	Logger *log.Logger
}

func DefaultConfig() Config {
	return Config{
		Law:           penalty.Params{Law: types.PL_LP},
		PointPenalty:  1.e3,
		LinePenalty:   1.e3,
		PerpShift1:    utils.Deg2Rad(10),
		PerpShift2:    utils.Deg2Rad(20),
		ParShift1:     utils.Deg2Rad(10),
		ParShift2:     utils.Deg2Rad(20),
		SegAngle:      utils.Deg2Rad(1),
		NumIntervals:  8,
		MaxSegments:   utils.MAXSEGMENTS,
		MaxIter:       utils.BEAMCONTACTMAXITER,
		BasicStiffGap: -1,
	}
}

// LineContact is on when small angle pairs are integrated along the beams
func (cfg Config) LineContact() bool {
	return cfg.ParShift2 > 0
}

func (cfg Config) logf(format string, args ...any) {
	if cfg.Logger != nil {
		cfg.Logger.Printf(format, args...)
	}
}

func (cfg Config) debugf(format string, args ...any) {
	if cfg.Debug {
		cfg.logf(format, args...)
	}
}

func badInput(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, types.ErrBadInput)...)
}

// Validate checks the options that do not depend on the elements and returns the penalty law
func (cfg Config) Validate() (law *penalty.Law, err error) {
	if law, err = penalty.NewLaw(cfg.Law); err != nil {
		return
	}
	if err = law.Check(cfg.PointPenalty); err != nil {
		return nil, fmt.Errorf("BEAMS_BTBPENALTYPARAM: %w", err)
	}
	if law.CutOffWarning(cfg.PointPenalty) {
		cfg.logf("warning: exponential penalty force at the cut off gap is above 1%% of f0")
	}
	switch {
	case cfg.LineContact() && cfg.LinePenalty < 0:
		err = badInput("BEAMS_BTBLINEPENALTYPARAM must be set for small angle contact")
	case cfg.LinePenalty > 0 && law.Check(cfg.LinePenalty) != nil:
		err = fmt.Errorf("BEAMS_BTBLINEPENALTYPARAM: %w", law.Check(cfg.LinePenalty))
	case cfg.PerpShift1 > cfg.PerpShift2:
		err = badInput("BEAMS_PERPSHIFTANGLE1 %g above BEAMS_PERPSHIFTANGLE2 %g",
			utils.Rad2Deg(cfg.PerpShift1), utils.Rad2Deg(cfg.PerpShift2))
	case cfg.ParShift1 > cfg.ParShift2:
		err = badInput("BEAMS_PARSHIFTANGLE1 %g above BEAMS_PARSHIFTANGLE2 %g",
			utils.Rad2Deg(cfg.ParShift1), utils.Rad2Deg(cfg.ParShift2))
	case cfg.LineContact() && cfg.ParShift2 <= cfg.PerpShift1:
		err = badInput("no angle overlap between large angle and small angle contact, "+
			"BEAMS_PARSHIFTANGLE2 %g <= BEAMS_PERPSHIFTANGLE1 %g",
			utils.Rad2Deg(cfg.ParShift2), utils.Rad2Deg(cfg.PerpShift1))
	case !cfg.Debug && cfg.PerpShift1 < math.Acos(1-2*utils.MAXCURVATURERADIUS):
		err = badInput("BEAMS_PERPSHIFTANGLE1 %g too small for a unique closest point",
			utils.Rad2Deg(cfg.PerpShift1))
	case !(cfg.SegAngle > 0):
		err = badInput("BEAMS_SEGANGLE has to be defined")
	case cfg.LineContact() && cfg.NumIntervals < 1:
		err = badInput("BEAMS_NUMINTEGRATIONINTERVAL %d", cfg.NumIntervals)
	case cfg.NewGap && !cfg.AddItExt:
		err = badInput("BEAMS_NEWGAP needs BEAMS_ADDITEXT")
	case cfg.EndpointSegmentation && !cfg.LineContact():
		err = badInput("BEAMS_ENDPOINTSEGMENTATION needs small angle contact")
	}
	if err != nil {
		law = nil
	}
	return
}

func (cfg Config) maxSegments() int {
	if cfg.MaxSegments < 1 {
		return utils.MAXSEGMENTS
	}
	return cfg.MaxSegments
}

// dofs maps element dof numbers through the dof map, unmapped dofs become -1
func (cfg Config) dofs(gids []int) (lm []int) {
	lm = make([]int, len(gids))
	for i, g := range gids {
		if cfg.DofMap == nil {
			lm[i] = g
			continue
		}
		if m, ok := cfg.DofMap[g]; ok {
			lm[i] = m
		} else {
			lm[i] = -1
		}
	}
	return
}
