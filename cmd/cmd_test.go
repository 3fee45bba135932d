package cmd

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/gobeamcontact/InputParameters"
	"github.com/notargets/gobeamcontact/penalty"
	"github.com/notargets/gobeamcontact/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testContactFile = []byte(`
Title: Test Case
BEAMS_PENALTYLAW: LP
BEAMS_BTBPENALTYPARAM: 100
BEAMS_BTBLINEPENALTYPARAM: 100
BEAMS_SEGANGLE: 1
`)

// a beam along x and a beam along y resting on it with a penetration of 0.01
var testScenarioFile = []byte(`
Title: Crossing
NumSteps: 2
Dt: 0.1
Threads: 2
Beams:
  - Start: [-1, 0, 0]
    End: [1, 0, 0]
    NumElements: 2
    NodesPerElement: 2
    Radius: 0.1
  - Start: [0.25, -0.9, 0.19]
    End: [0.25, 1.1, 0.19]
    NumElements: 2
    NodesPerElement: 2
    Radius: 0.1
`)

func testInput(t *testing.T) (cp *InputParameters.ContactParameters, sc *InputParameters.Scenario) {
	cp = InputParameters.NewContactParameters()
	require.NoError(t, cp.Parse(testContactFile))
	sc = &InputParameters.Scenario{}
	require.NoError(t, sc.Parse(testScenarioFile))
	return
}

func TestRunContact(t *testing.T) {
	var (
		dir     = t.TempDir()
		restart = filepath.Join(dir, "restart.yaml")
		out     bytes.Buffer
	)
	cp, sc := testInput(t)
	mc := &ModelContact{RestartOut: restart, MaxBisections: 2, Verbose: true}
	require.NoError(t, RunContact(mc, cp, sc, &out))
	text := out.String()
	assert.Contains(t, text, "4 elements")
	assert.Contains(t, text, "2 threads")
	assert.Equal(t, 2, strings.Count(text, "points = 1,"), text)
	assert.Contains(t, text, "energy = 5.000000e-03")
	assert.Contains(t, text, "LargeAngle")

	data, err := os.ReadFile(restart)
	require.NoError(t, err)
	rf := &InputParameters.RestartFile{}
	require.NoError(t, rf.Parse(data))
	assert.Equal(t, 2, rf.Step)
	require.Len(t, rf.Pairs, 1)
	assert.Equal(t, [2]int{1, 2}, [2]int{rf.Pairs[0].ID1, rf.Pairs[0].ID2})
	assert.True(t, rf.Pairs[0].HasOld)
	assert.InDelta(t, -1, rf.Pairs[0].NormalOld[2], 1.e-12)
	assert.InDelta(t, -0.5, rf.Pairs[0].XiOld, 1.e-8)
	assert.InDelta(t, 0.8, rf.Pairs[0].EtaOld, 1.e-8)
	{ // continue from the restart file
		out.Reset()
		sc.NumSteps = 1
		mc = &ModelContact{RestartIn: restart, Threads: 1}
		require.NoError(t, RunContact(mc, cp, sc, &out))
		assert.Contains(t, out.String(), "starting at step 2")
		assert.Contains(t, out.String(), "t =  0.30000")
	}
	{ // bad parameters are not retried
		cp.PenaltyParam = 0
		err = RunContact(&ModelContact{}, cp, sc, &out)
		assert.ErrorIs(t, err, types.ErrBadInput)
	}
}

func TestRunFDCheck(t *testing.T) {
	var (
		out bytes.Buffer
	)
	cp, sc := testInput(t)
	mf := &ModelFDCheck{Steps: 1, H: 1.e-6, Tol: 1.e-4}
	mf.MaxBisections = 1
	failed, err := RunFDCheck(mf, cp, sc, &out)
	require.NoError(t, err)
	assert.False(t, failed, out.String())
	text := out.String()
	assert.Contains(t, text, "pair (1,2)")
	assert.Contains(t, text, "tangent")
	assert.Contains(t, text, "residual")
	assert.Contains(t, text, "dual")
	assert.Contains(t, text, "eigenvalues")
	{ // endpoint segmentation has no dual check
		cp.EndpointSegmentation = true
		out.Reset()
		failed, err = RunFDCheck(mf, cp, sc, &out)
		require.NoError(t, err)
		assert.False(t, failed)
		assert.Contains(t, out.String(), "skipped")
	}
}

func TestPenaltyLaw(t *testing.T) {
	cp := InputParameters.NewContactParameters()
	require.NoError(t, cp.Parse([]byte("BEAMS_PENALTYLAW: LPQP\nBEAMS_PENREGPARAM_G0: 0.02\n"+
		"BEAMS_BTBLINEPENALTYPARAM: 100\nBEAMS_BTBPENALTYPARAM: 100\n")))
	cfg, err := cp.Validate(nil)
	require.NoError(t, err)
	law, err := penalty.NewLaw(cfg.Law)
	require.NoError(t, err)
	fp, e, d := PenaltyLawCurves(law, cfg.PointPenalty, -0.02, 0.03, 11)
	require.Len(t, fp, 11)
	assert.Nil(t, d)
	assert.InDelta(t, -0.02, fp[0].X, 1.e-15)
	assert.InDelta(t, 0.03, fp[10].X, 1.e-15)
	for i := range fp {
		switch {
		case fp[i].X > 0.021:
			assert.Zero(t, fp[i].Y)
			assert.Zero(t, e[i].Y)
		case fp[i].X < 0.019:
			assert.True(t, fp[i].Y > 0)
		}
		if i > 0 {
			assert.True(t, fp[i].Y <= fp[i-1].Y)
		}
	}
	assert.True(t, math.Abs(fp[0].Y-(100*0.02+100*0.02/2)) < 1.e-10)
	mp := &ModelPenaltyLaw{Output: filepath.Join(t.TempDir(), "law.png"), GMin: -0.02, NumPoints: 51}
	require.NoError(t, PlotPenaltyLaw(mp, cp))
	info, err := os.Stat(mp.Output)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
	mp.NumPoints = 1
	assert.Error(t, PlotPenaltyLaw(mp, cp))
}
