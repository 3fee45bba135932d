package geometry

import (
	"fmt"
	"math"

	"github.com/notargets/gobeamcontact/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// EnclosedAngle is the angle in [0, pi/2] between the lines spanned by a and b
func EnclosedAngle(a, b r3.Vec) (angle float64, err error) {
	var (
		na, nb = r3.Norm(a), r3.Norm(b)
	)
	if na == 0 || nb == 0 {
		err = fmt.Errorf("angle of a zero vector: %w", types.ErrTangentZero)
		return
	}
	c := math.Abs(r3.Dot(a, b)) / (na * nb)
	if c > 1 {
		c = 1
	}
	angle = math.Acos(c)
	return
}

// AbsCosine is |cos| of the angle between a and b, the argument of the angle scale factors
func AbsCosine(a, b r3.Vec) float64 {
	c := math.Abs(r3.Dot(a, b)) / (r3.Norm(a) * r3.Norm(b))
	return math.Min(c, 1)
}
