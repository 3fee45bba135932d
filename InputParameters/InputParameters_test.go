package InputParameters

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/gobeamcontact/contact"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func near(a, b float64, tolI ...float64) bool {
	tol := 1.e-10
	if len(tolI) != 0 {
		tol = tolI[0]
	}
	return math.Abs(a-b) <= tol*math.Max(1, math.Abs(a))
}

var contactFile = `
Title: "crossing beams"
BEAMS_PENALTYLAW: LPQP
BEAMS_PENREGPARAM_G0: 0.02
BEAMS_BTBPENALTYPARAM: 100
BEAMS_BTBLINEPENALTYPARAM: 50
BEAMS_PERPSHIFTANGLE1: 15
BEAMS_PERPSHIFTANGLE2: 25
BEAMS_PARSHIFTANGLE1: 12
BEAMS_PARSHIFTANGLE2: 30
BEAMS_SEGANGLE: 2
BEAMS_NUMINTEGRATIONINTERVAL: 4
BEAMS_ENDPOINTPENALTY: true
BEAMS_SMOOTHING: none
BEAMS_SEARCHBOXINC: 0.05
`

func TestContactParameters(t *testing.T) {
	cp := NewContactParameters()
	require.NoError(t, cp.Parse([]byte(contactFile)))
	assert.Equal(t, "crossing beams", cp.Title)
	require.NotNil(t, cp.LinePenaltyParam)
	assert.Equal(t, 50., *cp.LinePenaltyParam)
	// keys missing from the file keep their defaults
	assert.Equal(t, -1., cp.BasicStiffGap)
	assert.Equal(t, utils.MAXSEGMENTS, cp.MaxSegments)
	cfg, err := cp.Validate(nil)
	require.NoError(t, err)
	assert.Equal(t, types.PL_LPQP, cfg.Law.Law)
	assert.Equal(t, 0.02, cfg.Law.G0)
	assert.True(t, near(cfg.PerpShift1, utils.Deg2Rad(15)))
	assert.True(t, near(cfg.ParShift2, math.Pi/6))
	assert.True(t, near(cfg.SegAngle, utils.Deg2Rad(2)))
	assert.Equal(t, 4, cfg.NumIntervals)
	assert.Equal(t, 50., cfg.LinePenalty)
	assert.True(t, cfg.EndpointPenalty)
	assert.Equal(t, types.SM_None, cfg.Smoothing)
	assert.Equal(t, 0.05, cfg.SearchBoxInc)
	assert.True(t, cfg.LineContact())
	_, err = contact.NewManager(cfg, nil, 2)
	assert.NoError(t, err)
}

func TestContactParametersErrors(t *testing.T) {
	bad := map[string]string{
		"BEAMS_PENALTYLAW":          "BEAMS_PENALTYLAW: XP\n",
		"BEAMS_SMOOTHING":           "BEAMS_SMOOTHING: spline\n",
		"BEAMS_PERPSHIFTANGLE1":     "BEAMS_PERPSHIFTANGLE1: -5\n",
		"BEAMS_PARSHIFTANGLE2":      "BEAMS_PARSHIFTANGLE2: 95\n",
		"BEAMS_BTBPENALTYPARAM":     "BEAMS_BTBPENALTYPARAM: 0\n",
		"BEAMS_SEGANGLE":            "BEAMS_SEGANGLE: 0\n",
		"BEAMS_DAMPING":             "BEAMS_DAMPING: true\nBEAMS_DAMPINGPARAM: 1\n",
		"BEAMS_DAMPREGPARAM1":       "BEAMS_DAMPING: true\nBEAMS_DAMPINGPARAM: 1\nBEAMS_DAMPREGPARAM1: -0.1\nBEAMS_DAMPREGPARAM2: 0.02\n",
		"BEAMS_GAPSHIFTPARAM":       "BEAMS_GAPSHIFTPARAM: 0.01\n",
		"BEAMS_NEWGAP":              "BEAMS_NEWGAP: true\n",
		"BEAMS_BTBLINEPENALTYPARAM": "BEAMS_PENALTYLAW: LP\n",
		"no overlap":                "BEAMS_PARSHIFTANGLE1: 5\nBEAMS_PARSHIFTANGLE2: 8\n",
		"BEAMS_SEARCHBOXINC":        "BEAMS_SEARCHBOXINC: -1\n",
	}
	for name, text := range bad {
		cp := NewContactParameters()
		if name != "BEAMS_BTBLINEPENALTYPARAM" {
			cp.LinePenaltyParam = new(float64)
		}
		require.NoError(t, cp.Parse([]byte(text)), name)
		_, err := cp.Validate(nil)
		assert.True(t, errors.Is(err, types.ErrBadInput), "%s: %v", name, err)
	}
	{ // the damping regularization may reach into the penetration
		cp := NewContactParameters()
		require.NoError(t, cp.Parse([]byte("BEAMS_BTBLINEPENALTYPARAM: 100\nBEAMS_DAMPING: true\n"+
			"BEAMS_DAMPINGPARAM: 5\nBEAMS_DAMPREGPARAM1: 0.02\nBEAMS_DAMPREGPARAM2: -0.1\n")))
		cfg, err := cp.Validate(nil)
		require.NoError(t, err)
		assert.True(t, cfg.Law.Damping)
		assert.Equal(t, 5., cfg.Law.DampingParam)
		assert.Equal(t, -0.1, cfg.Law.DampRegParam2)
		_, err = contact.NewManager(cfg, nil, 2)
		assert.NoError(t, err)
	}
	{ // small angle contact switched off does not need a line penalty
		cp := NewContactParameters()
		require.NoError(t, cp.Parse([]byte("BEAMS_PARSHIFTANGLE1: 0\nBEAMS_PARSHIFTANGLE2: 0\n")))
		cfg, err := cp.Validate(nil)
		require.NoError(t, err)
		assert.False(t, cfg.LineContact())
	}
}

var scenarioFile = `
Title: "slider"
NumSteps: 4
Dt: 0.1
Threads: 2
Beams:
  - Start: [-1, 0, 0]
    End: [1, 0, 0]
    NumElements: 2
    NodesPerElement: 3
    Radius: 0.1
  - Start: [-0.7, -1, 0.25]
    End: [-0.7, 1, 0.25]
    Velocity: [1, 0, -0.1]
    NumElements: 1
    Hermite: true
    Radius: 0.1
`

func TestScenario(t *testing.T) {
	sc := &Scenario{}
	require.NoError(t, sc.Parse([]byte(scenarioFile)))
	assert.Equal(t, 4, sc.NumSteps)
	require.Len(t, sc.Beams, 2)
	assert.True(t, sc.Beams[1].Hermite)
	elements, velocity, err := sc.Mesh()
	require.NoError(t, err)
	require.Len(t, elements, 3)
	{ // numbering runs on from beam to beam without shared dofs
		seen := make(map[int]bool)
		for i, e := range elements {
			assert.Equal(t, i, e.ID)
			for _, g := range e.DofGIDs {
				assert.False(t, seen[g] && e.ID == 2, "dof %d used twice", g)
				seen[g] = true
			}
		}
		assert.Equal(t, 2, elements[2].NumNodalValues)
		for _, id := range elements[2].NodeIDs {
			assert.True(t, id >= 5, "node %d", id)
		}
		assert.Equal(t, 0, elements[0].NodeIDs[0])
		assert.Equal(t, elements[0].NodeIDs[1], elements[1].NodeIDs[0])
	}
	assert.True(t, NumDofs(elements) > 3*5)
	{
		pos := Positions(elements, velocity, 0.2)
		assert.Equal(t, elements[0].RefPos, pos[0])
		d := r3.Sub(r3.Vec{X: pos[2][0], Y: pos[2][1], Z: pos[2][2]},
			r3.Vec{X: elements[2].RefPos[0], Y: elements[2].RefPos[1], Z: elements[2].RefPos[2]})
		assert.True(t, near(d.X, 0.2))
		assert.True(t, near(d.Z, -0.02))
	}
	{
		sc := &Scenario{Beams: sc.Beams[:1], NumSteps: 1, Dt: 1}
		_, _, err = sc.Mesh()
		assert.True(t, errors.Is(err, types.ErrBadInput))
		sc = &Scenario{Beams: []BeamInput{sc.Beams[0], sc.Beams[0]}, NumSteps: 1}
		_, _, err = sc.Mesh()
		assert.True(t, errors.Is(err, types.ErrBadInput))
	}
}

func TestRestartFile(t *testing.T) {
	rf := &RestartFile{
		Step: 7,
		Pairs: []contact.RestartData{{
			ID1: 1, ID2: 4, NormalOld: [3]float64{0, 0, 1}, XiOld: 0.25, EtaOld: -1.5, HasOld: true,
			Ele1PosOld: []float64{0, 0, 0, 1, 0, 0}, Ele2PosOld: []float64{0, 0, 0.3, 0, 1, 0.3},
		}},
	}
	data, err := rf.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "normal_old")
	back := &RestartFile{}
	require.NoError(t, back.Parse(data))
	assert.Equal(t, rf, back)
}
