package vecmath

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidMatrixShape indicates a matrix or vector with the wrong number of rows or columns.
	ErrInvalidMatrixShape = errors.New("vecmath: invalid matrix shape")

	// ErrInvalidInput indicates non-finite (NaN or Inf) entries.
	ErrInvalidInput = errors.New("vecmath: invalid input (NaN or Inf detected)")
)

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

func Identity() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func Diag(a, b, c float64) Mat3 {
	return Mat3{{a, 0, 0}, {0, b, 0}, {0, 0, c}}
}

// Mat3FromRows validates a nested slice and converts it.
func Mat3FromRows(rows [][]float64) (Mat3, error) {
	var m Mat3
	if len(rows) != 3 {
		return m, fmt.Errorf("%w: expected 3 rows, got %d", ErrInvalidMatrixShape, len(rows))
	}
	for i, row := range rows {
		if len(row) != 3 {
			return m, fmt.Errorf("%w: row %d has %d columns", ErrInvalidMatrixShape, i, len(row))
		}
		copy(m[i][:], row)
	}
	if !m.IsFinite() {
		return m, fmt.Errorf("%w: matrix has non-finite entries", ErrInvalidInput)
	}
	return m, nil
}

func (m Mat3) Add(o Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j] + o[i][j]
		}
	}
	return r
}

func (m Mat3) Scale(f float64) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j] * f
		}
	}
	return r
}

func (m Mat3) Transpose() Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// Symmetrize returns (M + Mᵀ)/2.
func (m Mat3) Symmetrize() Mat3 {
	return m.Add(m.Transpose()).Scale(0.5)
}

func (m Mat3) AddDiagonal(s float64) Mat3 {
	r := m
	for i := 0; i < 3; i++ {
		r[i][i] += s
	}
	return r
}

func (m Mat3) MinDiagonal() float64 {
	return math.Min(m[0][0], math.Min(m[1][1], m[2][2]))
}

func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Quad returns vᵀ·M·v.
func (m Mat3) Quad(v Vec3) float64 {
	return v.Dot(m.MulVec(v))
}

func (m Mat3) IsFinite() bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.IsNaN(m[i][j]) || math.IsInf(m[i][j], 0) {
				return false
			}
		}
	}
	return true
}

func (m Mat3) IsSymmetric(tol float64) bool {
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if math.Abs(m[i][j]-m[j][i]) > tol {
				return false
			}
		}
	}
	return true
}

// Cholesky computes the lower factor L with M = L·Lᵀ. ok is false as soon as
// a pivot is not strictly positive, which means M is not positive definite.
func (m Mat3) Cholesky() (l Mat3, ok bool) {
	for j := 0; j < 3; j++ {
		d := m[j][j]
		for k := 0; k < j; k++ {
			d -= l[j][k] * l[j][k]
		}
		if !(d > 0) {
			return Mat3{}, false
		}
		l[j][j] = math.Sqrt(d)
		for i := j + 1; i < 3; i++ {
			s := m[i][j]
			for k := 0; k < j; k++ {
				s -= l[i][k] * l[j][k]
			}
			l[i][j] = s / l[j][j]
		}
	}
	return l, true
}

func (m Mat3) IsPositiveDefinite() bool {
	_, ok := m.Cholesky()
	return ok
}

// SolveSPD solves M·x = b for a positive definite M.
func (m Mat3) SolveSPD(b Vec3) (Vec3, bool) {
	l, ok := m.Cholesky()
	if !ok {
		return Vec3{}, false
	}
	var y, x [3]float64
	bb := [3]float64{b.X, b.Y, b.Z}
	for i := 0; i < 3; i++ {
		s := bb[i]
		for k := 0; k < i; k++ {
			s -= l[i][k] * y[k]
		}
		y[i] = s / l[i][i]
	}
	for i := 2; i >= 0; i-- {
		s := y[i]
		for k := i + 1; k < 3; k++ {
			s -= l[k][i] * x[k]
		}
		x[i] = s / l[i][i]
	}
	return Vec3{x[0], x[1], x[2]}, true
}

// GershgorinLowerBound returns a lower bound on the smallest eigenvalue of a
// symmetric matrix.
func (m Mat3) GershgorinLowerBound() float64 {
	lo := math.Inf(1)
	for i := 0; i < 3; i++ {
		r := 0.0
		for j := 0; j < 3; j++ {
			if j != i {
				r += math.Abs(m[i][j])
			}
		}
		lo = math.Min(lo, m[i][i]-r)
	}
	return lo
}

func (m Mat3) Rows() [][]float64 {
	rows := make([][]float64, 3)
	for i := range rows {
		rows[i] = []float64{m[i][0], m[i][1], m[i][2]}
	}
	return rows
}
