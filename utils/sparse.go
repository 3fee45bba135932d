package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// DOK is the assembly form of a global sparse matrix; contributions are summed into it block by block
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)              { return m.M.Dims() }
func (m DOK) At(i, j int) float64           { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix                 { return m.M.T() }
func (m DOK) RawMatrix() *blas.SparseMatrix { return m.M.ToCSR().RawMatrix() }
func (m DOK) NNZ() int                      { return m.M.NNZ() }

func (m *DOK) SetReadOnly(name ...string) {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
}

// Assemble sums the local matrix into the rows rowLM and columns colLM. Negative entries of the
// location vectors mark dofs that are not part of this matrix and are skipped. The block is the
// ID of the contributing element pair and is only used to label errors.
func (m DOK) Assemble(block int, local mat.Matrix, rowLM, colLM []int) (err error) {
	var (
		nr, nc = m.Dims()
		lr, lc = local.Dims()
	)
	m.checkWritable()
	if lr != len(rowLM) || lc != len(colLM) {
		err = fmt.Errorf("block %d: local matrix is %dx%d, location vectors have %d and %d entries",
			block, lr, lc, len(rowLM), len(colLM))
		return
	}
	for ii, i := range rowLM {
		if i < 0 {
			continue
		}
		if i >= nr {
			err = fmt.Errorf("block %d: row %d out of range [0,%d)", block, i, nr)
			return
		}
		for jj, j := range colLM {
			if j < 0 {
				continue
			}
			if j >= nc {
				err = fmt.Errorf("block %d: column %d out of range [0,%d)", block, j, nc)
				return
			}
			val := local.At(ii, jj)
			if val == 0 {
				continue
			}
			m.M.Set(i, j, m.M.At(i, j)+val)
		}
	}
	return
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:        m.M.ToCSR(),
		readOnly: m.readOnly,
		name:     m.name,
	}
}

// ToDense is used by the diagnostics and tests on small systems
func (m DOK) ToDense() *mat.Dense {
	return mat.DenseCopyOf(m.M)
}

type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) NNZ() int                      { return m.M.NNZ() }
func (m CSR) Data() []float64 {
	return m.RawMatrix().Data
}

// MulVec returns m*x
func (m CSR) MulVec(x mat.Vector) (y *mat.VecDense) {
	var (
		nr, nc = m.Dims()
	)
	if x.Len() != nc {
		panic(fmt.Errorf("dimension mismatch: matrix \"%v\" has %d columns, vector has %d entries",
			m.name, nc, x.Len()))
	}
	y = mat.NewVecDense(nr, nil)
	y.MulVec(m.M, x)
	return
}

// IsSymmetric compares every stored entry with its transpose
func (m CSR) IsSymmetric(tol float64) bool {
	var (
		raw = m.RawMatrix()
	)
	for i := 0; i < raw.I; i++ {
		for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
			j := raw.Ind[k]
			diff := raw.Data[k] - m.M.At(j, i)
			if diff > tol || diff < -tol {
				return false
			}
		}
	}
	return true
}
