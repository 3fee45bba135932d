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
	"fmt"
	"os"

	"github.com/notargets/gobeamcontact/InputParameters"
	"github.com/notargets/gobeamcontact/penalty"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

type ModelPenaltyLaw struct {
	ContactFile string
	Output      string
	GMin, GMax  float64
	NumPoints   int
}

// PenaltyLawCmd represents the penaltylaw command
var PenaltyLawCmd = &cobra.Command{
	Use:   "penaltylaw",
	Short: "Plots the penalty force and potential of a contact parameter file",
	Long: `Plots the scalar penalty force fp(g), the potential E(g) and, when damping is on, the damping
coefficient d(g) of the penalty law configured in a contact parameter file.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		mp := &ModelPenaltyLaw{}
		if mp.ContactFile, err = cmd.Flags().GetString("contactFile"); err != nil {
			panic(err)
		}
		mp.Output, _ = cmd.Flags().GetString("output")
		mp.GMin, _ = cmd.Flags().GetFloat64("gmin")
		mp.GMax, _ = cmd.Flags().GetFloat64("gmax")
		mp.NumPoints, _ = cmd.Flags().GetInt("points")
		if len(mp.ContactFile) == 0 {
			fmt.Printf("error: must supply a contact parameters file (-C, --contactFile) in YAML format\n")
			fmt.Printf("Example File:%s\n", exampleContactFile)
			os.Exit(1)
		}
		var (
			data []byte
			cp   = InputParameters.NewContactParameters()
		)
		if data, err = os.ReadFile(mp.ContactFile); err != nil {
			panic(err)
		}
		if err = cp.Parse(data); err != nil {
			panic(err)
		}
		if err = PlotPenaltyLaw(mp, cp); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(PenaltyLawCmd)
	PenaltyLawCmd.Flags().StringP("contactFile", "C", "", "YAML file of the BEAMS_* contact parameters")
	PenaltyLawCmd.Flags().StringP("output", "o", "penaltylaw.png", "image file of the plot")
	PenaltyLawCmd.Flags().Float64("gmin", -0.02, "smallest gap plotted")
	PenaltyLawCmd.Flags().Float64("gmax", 0, "largest gap plotted, 0 takes 1.5 times the max active distance")
	PenaltyLawCmd.Flags().Int("points", 201, "number of gap samples")
}

// PenaltyLawCurves samples the law of the point penalty between gmin and gmax
func PenaltyLawCurves(law *penalty.Law, pp, gmin, gmax float64, n int) (fp, e, d plotter.XYs) {
	fp, e = make(plotter.XYs, n), make(plotter.XYs, n)
	if law.Params().Damping {
		d = make(plotter.XYs, n)
	}
	for i := 0; i < n; i++ {
		g := gmin + (gmax-gmin)*float64(i)/float64(n-1)
		f, _, en := law.Eval(pp, g)
		fp[i] = plotter.XY{X: g, Y: f}
		e[i] = plotter.XY{X: g, Y: en}
		if d != nil {
			dd, _ := law.Damping(g)
			d[i] = plotter.XY{X: g, Y: dd}
		}
	}
	return
}

func PlotPenaltyLaw(mp *ModelPenaltyLaw, cp *InputParameters.ContactParameters) (err error) {
	var (
		law *penalty.Law
	)
	cfg, err := cp.Validate(nil)
	if err != nil {
		return
	}
	if law, err = penalty.NewLaw(cfg.Law); err != nil {
		return
	}
	gmax := mp.GMax
	if gmax <= mp.GMin {
		gmax = 1.5 * law.MaxActiveDist()
		if gmax <= mp.GMin {
			gmax = -0.25 * mp.GMin
		}
	}
	if mp.NumPoints < 2 {
		err = fmt.Errorf("need at least two gap samples, have %d", mp.NumPoints)
		return
	}
	fp, e, d := PenaltyLawCurves(law, cfg.PointPenalty, mp.GMin, gmax, mp.NumPoints)
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s, pp = %g", cfg.Law.Law, cfg.PointPenalty)
	p.X.Label.Text = "gap"
	lines := []interface{}{"fp", fp, "E", e}
	if d != nil {
		lines = append(lines, "d", d)
	}
	if err = plotutil.AddLines(p, lines...); err != nil {
		return
	}
	if err = p.Save(6*vg.Inch, 4*vg.Inch, mp.Output); err != nil {
		return
	}
	fmt.Printf("%s written, max active distance %8.5f\n", mp.Output, law.MaxActiveDist())
	return
}
