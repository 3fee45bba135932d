package types

import (
	"fmt"
	"strings"
)

type PenaltyLaw uint8

const (
	PL_LP    PenaltyLaw = iota // linear
	PL_QP                      // quadratic
	PL_LPQP                    // linear, quadratic regularization for 0 < g < g0
	PL_LPCP                    // linear, cubic regularization for 0 < g < g0
	PL_LPDQP                   // linear, double quadratic regularization for 0 < g < g0
	PL_LPEP                    // linear, exponential regularization for g > 0
	PL_LNQP                    // quadratic for small penetration, linear beyond -g0
)

var PenaltyLawNameMap = map[string]PenaltyLaw{
	"lp":    PL_LP,
	"qp":    PL_QP,
	"lpqp":  PL_LPQP,
	"lpcp":  PL_LPCP,
	"lpdqp": PL_LPDQP,
	"lpep":  PL_LPEP,
	"lnqp":  PL_LNQP,
}

var penaltyLawNames = []string{"LP", "QP", "LPQP", "LPCP", "LPDQP", "LPEP", "LNQP"}

func (pl PenaltyLaw) String() string {
	if int(pl) < len(penaltyLawNames) {
		return penaltyLawNames[pl]
	}
	return fmt.Sprintf("PenaltyLaw(%d)", pl)
}

func NewPenaltyLaw(label string) (pl PenaltyLaw, err error) {
	var ok bool
	if pl, ok = PenaltyLawNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown penalty law %q: %w", label, ErrBadInput)
	}
	return
}

type Smoothing uint8

const (
	SM_None Smoothing = iota
	SM_CPP
)

var SmoothingNameMap = map[string]Smoothing{
	"none": SM_None,
	"":     SM_None,
	"cpp":  SM_CPP,
}

func (sm Smoothing) String() string {
	switch sm {
	case SM_None:
		return "none"
	case SM_CPP:
		return "cpp"
	}
	return fmt.Sprintf("Smoothing(%d)", sm)
}

func NewSmoothing(label string) (sm Smoothing, err error) {
	var ok bool
	if sm, ok = SmoothingNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown smoothing %q: %w", label, ErrBadInput)
	}
	return
}

// ContactKind tags how a contact point was found and how it is integrated
type ContactKind uint8

const (
	CK_LargeAngle   ContactKind = iota // point contact from a closest point projection
	CK_SmallAngleGP                    // line contact, one point per Gauss point
	CK_Endpoint                        // one parameter fixed at a physical beam end
)

func (ck ContactKind) String() string {
	switch ck {
	case CK_LargeAngle:
		return "LargeAngle"
	case CK_SmallAngleGP:
		return "SmallAngleGP"
	case CK_Endpoint:
		return "Endpoint"
	}
	return fmt.Sprintf("ContactKind(%d)", ck)
}
