package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Basis holds one scalar value per basis function; basis function i multiplies dofs 3i, 3i+1, 3i+2
type Basis []float64

// Apply returns N*d
func (b Basis) Apply(d []float64) (v r3.Vec) {
	for i, val := range b {
		v.X += val * d[3*i]
		v.Y += val * d[3*i+1]
		v.Z += val * d[3*i+2]
	}
	return
}

// AddTransposed sums scale * N^T v into dst
func (b Basis) AddTransposed(dst []float64, v r3.Vec, scale float64) {
	for i, val := range b {
		f := scale * val
		dst[3*i] += f * v.X
		dst[3*i+1] += f * v.Y
		dst[3*i+2] += f * v.Z
	}
}

// Row returns v^T N as a dof-length row
func (b Basis) Row(v r3.Vec) (row []float64) {
	row = make([]float64, 3*len(b))
	b.AddTransposed(row, v, 1)
	return
}

// Component returns row j of the 3 x 3nv shape function matrix
func (b Basis) Component(j int) (row []float64) {
	row = make([]float64, 3*len(b))
	for i, val := range b {
		row[3*i+j] = val
	}
	return
}

/*
Cubic Hermite polynomials on [-1,1]. Tangent dofs are scaled by the element length, so the tangent
basis functions carry the factor l/8.
*/
func hermiteBasis(xi, l float64) (N, Nxi, Nxixi Basis) {
	var (
		xi2 = xi * xi
		xi3 = xi2 * xi
	)
	N = Basis{
		0.25 * (2 - 3*xi + xi3),
		l / 8 * (1 - xi - xi2 + xi3),
		0.25 * (2 + 3*xi - xi3),
		l / 8 * (-1 - xi + xi2 + xi3),
	}
	Nxi = Basis{
		0.25 * (-3 + 3*xi2),
		l / 8 * (-1 - 2*xi + 3*xi2),
		0.25 * (3 - 3*xi2),
		l / 8 * (-1 + 2*xi + 3*xi2),
	}
	Nxixi = Basis{
		1.5 * xi,
		l / 8 * (-2 + 6*xi),
		-1.5 * xi,
		l / 8 * (2 + 6*xi),
	}
	return
}

// hermiteThird is the constant third derivative of the Hermite basis
func hermiteThird(l float64) Basis {
	return Basis{1.5, 0.75 * l, -1.5, 0.75 * l}
}

// LagrangeNodes returns the parameter locations of the nodes: both ends first, then the interior
// nodes in increasing order
func LagrangeNodes(n int) (x []float64) {
	x = make([]float64, n)
	x[0], x[1] = -1, 1
	for k := 2; k < n; k++ {
		x[k] = -1 + 2*float64(k-1)/float64(n-1)
	}
	return
}

func lagrangeBasis(xi float64, n int) (N, Nxi, Nxixi Basis) {
	var (
		x = LagrangeNodes(n)
	)
	N, Nxi, Nxixi = make(Basis, n), make(Basis, n), make(Basis, n)
	for i := 0; i < n; i++ {
		N[i] = 1
		for m := 0; m < n; m++ {
			if m != i {
				N[i] *= (xi - x[m]) / (x[i] - x[m])
			}
		}
		for k := 0; k < n; k++ {
			if k == i {
				continue
			}
			prod := 1 / (x[i] - x[k])
			for m := 0; m < n; m++ {
				if m != i && m != k {
					prod *= (xi - x[m]) / (x[i] - x[m])
				}
			}
			Nxi[i] += prod
			for l := 0; l < n; l++ {
				if l == i || l == k {
					continue
				}
				prod2 := 1 / ((x[i] - x[k]) * (x[i] - x[l]))
				for m := 0; m < n; m++ {
					if m != i && m != k && m != l {
						prod2 *= (xi - x[m]) / (x[i] - x[m])
					}
				}
				Nxixi[i] += prod2
			}
		}
	}
	return
}

// lagrangeThird expands each Lagrange polynomial into monomials and differentiates three times
func lagrangeThird(xi float64, n int) (N3 Basis) {
	var (
		x = LagrangeNodes(n)
	)
	N3 = make(Basis, n)
	for i := 0; i < n; i++ {
		coef := []float64{1}
		for m := 0; m < n; m++ {
			if m == i {
				continue
			}
			scale := 1 / (x[i] - x[m])
			next := make([]float64, len(coef)+1)
			for q, c := range coef {
				next[q+1] += c * scale
				next[q] -= c * x[m] * scale
			}
			coef = next
		}
		for q := 3; q < len(coef); q++ {
			N3[i] += coef[q] * float64(q*(q-1)*(q-2)) * math.Pow(xi, float64(q-3))
		}
	}
	return
}
