// Package linalg provides the dense matrix/vector kernel the MCP core is
// built on: in-place element access, gemv/gemm, and an LU factorization with
// partial pivoting. Every step's augmented system is small (spec.md caps
// dimensions under 200), so a dense kernel is the correct tool — there is no
// sparse fallback here, unlike the teacher's sparse.Matrix.
package linalg

import "fmt"

// Matrix is a dense, row-major matrix addressed with 0-based indices.
type Matrix struct {
	Rows, Cols int
	data       []float64
}

func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, data: make([]float64, rows*cols)}
}

func (m *Matrix) idx(i, j int) int { return i*m.Cols + j }

func (m *Matrix) Get(i, j int) float64 { return m.data[m.idx(i, j)] }

func (m *Matrix) Set(i, j int, v float64) { m.data[m.idx(i, j)] = v }

func (m *Matrix) Add(i, j int, v float64) { m.data[m.idx(i, j)] += v }

func (m *Matrix) Zero() {
	for i := range m.data {
		m.data[i] = 0
	}
}

func (m *Matrix) Clone() *Matrix {
	c := &Matrix{Rows: m.Rows, Cols: m.Cols, data: make([]float64, len(m.data))}
	copy(c.data, m.data)
	return c
}

// Row returns row i as a newly allocated slice.
func (m *Matrix) Row(i int) []float64 {
	out := make([]float64, m.Cols)
	copy(out, m.data[m.idx(i, 0):m.idx(i, 0)+m.Cols])
	return out
}

// Gemv computes y = A*x (A is m.Rows x m.Cols, x has length m.Cols).
func (m *Matrix) Gemv(x []float64) []float64 {
	y := make([]float64, m.Rows)
	for i := 0; i < m.Rows; i++ {
		sum := 0.0
		base := m.idx(i, 0)
		for j := 0; j < m.Cols; j++ {
			sum += m.data[base+j] * x[j]
		}
		y[i] = sum
	}
	return y
}

// Gemm computes A*B where A is m (Rows x Cols) and B is Cols x bCols.
func (m *Matrix) Gemm(b *Matrix) (*Matrix, error) {
	if m.Cols != b.Rows {
		return nil, fmt.Errorf("linalg: Gemm dimension mismatch %dx%d * %dx%d", m.Rows, m.Cols, b.Rows, b.Cols)
	}
	out := NewMatrix(m.Rows, b.Cols)
	for i := 0; i < m.Rows; i++ {
		for k := 0; k < m.Cols; k++ {
			aik := m.Get(i, k)
			if aik == 0 {
				continue
			}
			for j := 0; j < b.Cols; j++ {
				out.Add(i, j, aik*b.Get(k, j))
			}
		}
	}
	return out, nil
}

// Sub returns m - b, same shape.
func (m *Matrix) Sub(b *Matrix) *Matrix {
	out := NewMatrix(m.Rows, m.Cols)
	for i := range m.data {
		out.data[i] = m.data[i] - b.data[i]
	}
	return out
}

// Vector is a thin alias kept for readability at call sites; it is a plain
// []float64 everywhere the caller owns the slice.
type Vector = []float64

func NewVector(n int) Vector { return make(Vector, n) }

func CloneVector(v Vector) Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// SubVec returns a - b.
func SubVec(a, b Vector) Vector {
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}
