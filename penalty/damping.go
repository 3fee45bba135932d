package penalty

import (
	"math"

	"github.com/notargets/gobeamcontact/utils"
)

// Damping returns the damping coefficient at gap g and its gap derivative
func (l *Law) Damping(g float64) (d, dd float64) {
	var (
		d0       = l.p.DampingParam
		gd1, gd2 = l.p.DampRegParam1, l.p.DampRegParam2
	)
	if !l.p.Damping || g >= gd1 {
		return
	}
	if math.Abs(gd1-gd2) < utils.DAMPTOL || g <= gd2 {
		return d0, 0
	}
	arg := math.Pi * (g - gd1) / (gd2 - gd1)
	d = 0.5 * d0 * (1 - math.Cos(arg))
	dd = 0.5 * d0 * math.Pi / (gd2 - gd1) * math.Sin(arg)
	return
}
