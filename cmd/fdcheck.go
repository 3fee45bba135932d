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
	"os"

	"github.com/notargets/gobeamcontact/InputParameters"
	"github.com/notargets/gobeamcontact/contact"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

type ModelFDCheck struct {
	ModelContact
	Steps int
	H     float64
	Tol   float64
}

// FDCheckCmd represents the fdcheck command
var FDCheckCmd = &cobra.Command{
	Use:   "fdcheck",
	Short: "Verifies the contact tangents of a scenario state",
	Long: `Runs a scenario for a number of steps, then compares the analytic tangent and residual of every
pair in contact with central finite differences and with dual number derivatives.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		mf := &ModelFDCheck{}
		if mf.ContactFile, err = cmd.Flags().GetString("contactFile"); err != nil {
			panic(err)
		}
		if mf.ScenarioFile, err = cmd.Flags().GetString("scenarioFile"); err != nil {
			panic(err)
		}
		mf.Steps, _ = cmd.Flags().GetInt("steps")
		mf.H, _ = cmd.Flags().GetFloat64("h")
		mf.Tol, _ = cmd.Flags().GetFloat64("tol")
		mf.MaxBisections = 4
		mf.Threads = 1
		cp, sc := processContactInput(mf.ContactFile, mf.ScenarioFile)
		var failed bool
		if failed, err = RunFDCheck(mf, cp, sc, os.Stdout); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		if failed {
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(FDCheckCmd)
	FDCheckCmd.Flags().StringP("contactFile", "C", "", "YAML file of the BEAMS_* contact parameters")
	FDCheckCmd.Flags().StringP("scenarioFile", "S", "", "YAML file of the beams and their motion")
	FDCheckCmd.Flags().IntP("steps", "n", 1, "scenario steps run before the check")
	FDCheckCmd.Flags().Float64("h", 1.e-6, "finite difference step")
	FDCheckCmd.Flags().Float64("tol", 1.e-4, "relative tolerance of the comparison")
}

func printCheck(out io.Writer, what string, tc contact.TangentCheck, err error) (failed bool) {
	switch {
	case errors.Is(err, types.ErrBadInput):
		fmt.Fprintf(out, "\t%-10s skipped: %v\n", what, err)
	case err != nil:
		fmt.Fprintf(out, "\t%-10s error: %v\n", what, err)
		failed = true
	default:
		fmt.Fprintf(out, "\t%-10s points = %d, max error = %10.3e, reference = %10.3e, ok = %v\n",
			what, tc.Points, tc.MaxError, tc.Reference, tc.OK)
		failed = !tc.OK
	}
	return
}

// RunFDCheck returns failed when a check exceeds the tolerance
func RunFDCheck(mf *ModelFDCheck, cp *InputParameters.ContactParameters, sc *InputParameters.Scenario,
	out io.Writer) (failed bool, err error) {
	var (
		cfg contact.Config
		ins map[types.PairKey]contact.EvalInput
	)
	if cfg, err = cp.Validate(nil); err != nil {
		return
	}
	r := &contactRun{mc: &mf.ModelContact, out: io.Discard}
	if r.elements, r.velocity, err = sc.Mesh(); err != nil {
		return
	}
	r.numDofs = InputParameters.NumDofs(r.elements)
	if r.m, err = contact.NewManager(cfg, r.elements, 1); err != nil {
		return
	}
	for i := 0; i < mf.Steps; i++ {
		if err = r.advance(float64(i)*sc.Dt, float64(i+1)*sc.Dt, 0); err != nil {
			return
		}
	}
	var (
		t   = float64(mf.Steps) * sc.Dt
		pos = InputParameters.Positions(r.elements, r.velocity, t)
		K   = utils.NewDOK(r.numDofs, r.numDofs)
	)
	if err = r.m.Evaluate(pos, sc.Dt, K, nil); err != nil {
		return
	}
	if ins, err = r.m.Inputs(pos, sc.Dt); err != nil {
		return
	}
	for _, key := range r.m.Keys() {
		p := r.m.Pair(key)
		if len(p.ActivePoints()) == 0 {
			continue
		}
		fmt.Fprintf(out, "pair %v, energy %12.6e\n", key, p.Energy())
		tc, err := p.CheckTangentFD(ins[key], mf.H, mf.Tol)
		failed = printCheck(out, "tangent", tc, err) || failed
		if !cfg.EndpointSegmentation && !cfg.Law.Damping {
			tc, err = p.CheckResidualFD(ins[key], mf.H, mf.Tol)
			failed = printCheck(out, "residual", tc, err) || failed
		}
		tc, err = p.CheckTangentDual(ins[key], mf.Tol)
		failed = printCheck(out, "dual", tc, err) || failed
	}
	lmin, lmax := symmetricSpectrum(K.ToDense())
	fmt.Fprintf(out, "eigenvalues of the symmetric part of K in [%10.3e, %10.3e]\n", lmin, lmax)
	return
}

// symmetricSpectrum returns the extreme eigenvalues of (K + K^T)/2
func symmetricSpectrum(K *mat.Dense) (lmin, lmax float64) {
	var (
		n, _ = K.Dims()
		es   mat.EigenSym
	)
	if n == 0 {
		return
	}
	S := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			S.SetSym(i, j, 0.5*(K.At(i, j)+K.At(j, i)))
		}
	}
	if !es.Factorize(S, false) {
		return
	}
	vals := es.Values(nil)
	return vals[0], vals[len(vals)-1]
}
