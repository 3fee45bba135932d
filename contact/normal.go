package contact

import (
	"fmt"
	"math"

	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

/*
normalGap returns the unit normal n = sgn (r1 - r2)/|r1 - r2| and the gap g = sgn |r1 - r2| - R1 - R2.
With the new gap the sign follows the normal of the last step, an unset old normal gives sgn = 1.
*/
func (p *Pair) normalGap(r1, r2, nOld r3.Vec) (n r3.Vec, g, sgn, norm float64, err error) {
	dr := r3.Sub(r1, r2)
	norm = r3.Norm(dr)
	if norm < utils.NORMTOL {
		err = fmt.Errorf("pair %v: centerline distance %g: %w", p.key, norm, types.ErrStepTooLarge)
		return
	}
	n = r3.Scale(1/norm, dr)
	sgn = 1
	if p.cfg.NewGap && r3.Dot(nOld, nOld) >= utils.NORMALTOL {
		c := r3.Dot(n, nOld)
		if math.Abs(c) < utils.NORMALTOL {
			err = fmt.Errorf("pair %v: n.n_old = %g: %w", p.key, c, types.ErrRotationTooLarge)
			return
		}
		sgn = utils.Sign(c)
	}
	n = r3.Scale(sgn, n)
	g = sgn*norm - p.e1.Radius - p.e2.Radius
	return
}
