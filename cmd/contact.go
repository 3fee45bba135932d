/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/notargets/gobeamcontact/InputParameters"
	"github.com/notargets/gobeamcontact/contact"
	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/spatial/r3"
)

type ModelContact struct {
	ContactFile   string
	ScenarioFile  string
	RestartIn     string
	RestartOut    string
	Threads       int
	Verbose       bool
	MaxBisections int
}

// ContactCmd represents the contact command
var ContactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Drives beams through a scenario of prescribed motions and reports their contact",
	Long: `Drives beams through a scenario of prescribed motions. Each step evaluates all contact pairs,
assembles the global contact stiffness and residual and commits the contact history. Rejected steps
are bisected.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		mc := &ModelContact{}
		if mc.ContactFile, err = cmd.Flags().GetString("contactFile"); err != nil {
			panic(err)
		}
		if mc.ScenarioFile, err = cmd.Flags().GetString("scenarioFile"); err != nil {
			panic(err)
		}
		mc.RestartIn, _ = cmd.Flags().GetString("restartIn")
		mc.RestartOut, _ = cmd.Flags().GetString("restartOut")
		mc.MaxBisections, _ = cmd.Flags().GetInt("maxBisections")
		mc.Threads = viper.GetInt("threads")
		mc.Verbose = viper.GetBool("verbose")
		cp, sc := processContactInput(mc.ContactFile, mc.ScenarioFile)
		if err = RunContact(mc, cp, sc, os.Stdout); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

var exampleContactFile = `
########################################
Title: "Crossing Beams"
BEAMS_PENALTYLAW: LPQP # LP, QP, LPQP, LPCP, LPDQP, LPEP, LNQP
BEAMS_PENREGPARAM_G0: 0.02
BEAMS_BTBPENALTYPARAM: 100
BEAMS_BTBLINEPENALTYPARAM: 100
BEAMS_PERPSHIFTANGLE1: 10
BEAMS_PERPSHIFTANGLE2: 20
BEAMS_PARSHIFTANGLE1: 10
BEAMS_PARSHIFTANGLE2: 20
BEAMS_SEGANGLE: 1
BEAMS_NUMINTEGRATIONINTERVAL: 8
BEAMS_SEARCHBOXINC: 0.2
########################################
`

var exampleScenarioFile = `
########################################
Title: "Slider"
NumSteps: 10
Dt: 0.1
Beams:
  - Start: [-1, 0, 0]
    End: [1, 0, 0]
    NumElements: 4
    NodesPerElement: 2
    Radius: 0.1
  - Start: [-0.8, -1.1, 0.19]
    End: [-0.8, 0.9, 0.19]
    Velocity: [0.95, 0, 0]
    NumElements: 4
    NodesPerElement: 2
    Radius: 0.1
########################################
`

func processContactInput(contactFile, scenarioFile string) (cp *InputParameters.ContactParameters,
	sc *InputParameters.Scenario) {
	var (
		err      error
		willExit bool
	)
	if len(contactFile) == 0 {
		err = fmt.Errorf("must supply a contact parameters file (-C, --contactFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		fmt.Printf("Example File:%s\n", exampleContactFile)
		willExit = true
	}
	if len(scenarioFile) == 0 {
		err = fmt.Errorf("must supply a scenario file (-S, --scenarioFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		fmt.Printf("Example File:%s\n", exampleScenarioFile)
		willExit = true
	}
	if willExit {
		os.Exit(1)
	}
	var data []byte
	if data, err = os.ReadFile(contactFile); err != nil {
		panic(err)
	}
	cp = InputParameters.NewContactParameters()
	if err = cp.Parse(data); err != nil {
		panic(err)
	}
	if data, err = os.ReadFile(scenarioFile); err != nil {
		panic(err)
	}
	sc = &InputParameters.Scenario{}
	if err = sc.Parse(data); err != nil {
		panic(err)
	}
	return
}

func init() {
	rootCmd.AddCommand(ContactCmd)
	ContactCmd.Flags().StringP("contactFile", "C", "", "YAML file of the BEAMS_* contact parameters")
	ContactCmd.Flags().StringP("scenarioFile", "S", "", "YAML file of the beams and their motion")
	ContactCmd.Flags().String("restartIn", "", "YAML restart file to continue from")
	ContactCmd.Flags().String("restartOut", "", "YAML restart file written after the last step")
	ContactCmd.Flags().IntP("threads", "t", 0, "number of threads evaluating pairs, 0 takes the scenario value")
	ContactCmd.Flags().BoolP("verbose", "v", false, "print every active contact point")
	ContactCmd.Flags().Int("maxBisections", 4, "number of times a rejected step is halved")
	_ = viper.BindPFlag("threads", ContactCmd.Flags().Lookup("threads"))
	_ = viper.BindPFlag("verbose", ContactCmd.Flags().Lookup("verbose"))
}

// contactRun holds the state of a scenario run
type contactRun struct {
	mc       *ModelContact
	m        *contact.Manager
	elements []*geometry.Element
	velocity map[int]r3.Vec
	numDofs  int
	out      io.Writer
}

func RunContact(mc *ModelContact, cp *InputParameters.ContactParameters, sc *InputParameters.Scenario,
	out io.Writer) (err error) {
	var (
		cfg     contact.Config
		logger  = log.New(os.Stderr, "beamcontact: ", log.LstdFlags)
		threads = mc.Threads
		start   int
	)
	cp.Print()
	sc.Print()
	if cfg, err = cp.Validate(logger); err != nil {
		return
	}
	r := &contactRun{mc: mc, out: out}
	if r.elements, r.velocity, err = sc.Mesh(); err != nil {
		return
	}
	r.numDofs = InputParameters.NumDofs(r.elements)
	if threads < 1 {
		threads = max(1, sc.Threads)
	}
	if r.m, err = contact.NewManager(cfg, r.elements, threads); err != nil {
		return
	}
	if len(mc.RestartIn) != 0 {
		if start, err = r.restart(mc.RestartIn); err != nil {
			return
		}
	}
	fmt.Fprintf(out, "%d elements, %d dofs, %d threads, starting at step %d\n", len(r.elements), r.numDofs,
		threads, start)
	for i := start; i < start+sc.NumSteps; i++ {
		t0, t1 := float64(i)*sc.Dt, float64(i+1)*sc.Dt
		if err = r.advance(t0, t1, 0); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	if len(mc.RestartOut) != 0 {
		rf := &InputParameters.RestartFile{Step: start + sc.NumSteps, Pairs: r.m.Restart()}
		var data []byte
		if data, err = rf.Marshal(); err != nil {
			return
		}
		if err = os.WriteFile(mc.RestartOut, data, 0644); err != nil {
			return
		}
		fmt.Fprintf(out, "restart data of %d pairs written to %s\n", len(rf.Pairs), mc.RestartOut)
	}
	logger.Printf("%s\n", utils.GetMemUsage())
	return
}

func (r *contactRun) restart(file string) (step int, err error) {
	var (
		data []byte
		rf   = &InputParameters.RestartFile{}
	)
	if data, err = os.ReadFile(file); err != nil {
		return
	}
	if err = rf.Parse(data); err != nil {
		return
	}
	if err = r.m.ApplyRestart(rf.Step, rf.Pairs); err != nil {
		return
	}
	step = rf.Step
	return
}

// advance moves the beams from t0 to t1, halving the increment when the contact rejects it
func (r *contactRun) advance(t0, t1 float64, depth int) (err error) {
	if err = r.step(t1, t1-t0); err == nil {
		return
	}
	if errors.Is(err, types.ErrBadInput) || depth >= r.mc.MaxBisections {
		return
	}
	fmt.Fprintf(r.out, "step to t = %8.5f rejected: %v\n", t1, err)
	tm := 0.5 * (t0 + t1)
	if err = r.advance(t0, tm, depth+1); err != nil {
		return
	}
	return r.advance(tm, t1, depth+1)
}

func (r *contactRun) step(t, dt float64) (err error) {
	var (
		pos = InputParameters.Positions(r.elements, r.velocity, t)
		K   = utils.NewDOK(r.numDofs, r.numDofs)
		R   = utils.NewGlobalVector(r.numDofs, "contact residual")
	)
	if err = r.m.Evaluate(pos, dt, K, R); err != nil {
		return
	}
	if utils.IsNan(R.Data()) {
		err = fmt.Errorf("%w: contact residual is NaN at t = %8.5f", types.ErrStepTooLarge, t)
		return
	}
	if err = r.m.UpdateStep(); err != nil {
		return
	}
	aps := r.m.ActivePoints()
	fmt.Fprintf(r.out, "t = %8.5f, pairs = %d, points = %d, energy = %12.6e, min gap = %10.3e, "+
		"|R|max = %10.3e, nnz = %d, symmetric = %v\n",
		t, r.m.NumPairs(), len(aps), r.m.TotalEnergy(), r.m.MinGap(), R.MaxAbs(), K.NNZ(),
		K.ToCSR().IsSymmetric(1.e-8*max(1, R.MaxAbs())))
	if r.mc.Verbose {
		for _, ap := range aps {
			fmt.Fprintf(r.out, "\t%v %-12s xi = %8.5f eta = %8.5f gap = %10.3e angle = %6.2f fp = %10.3e\n",
				ap.Pair, ap.Kind, ap.Xi, ap.Eta, ap.Gap, utils.Rad2Deg(ap.Angle), ap.Fp)
		}
	}
	return
}
