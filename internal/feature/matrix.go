// Package feature holds the binary ridge matrix extracted from a fingerprint
// and the seeded cancellable transform applied to it.
package feature

import (
	"fmt"

	"gocv.io/x/gocv"

	"cancellable-biokey/internal/algorithms"
)

// Matrix is a row-major grid of 0/1 cells.
type Matrix struct {
	Rows int
	Cols int
	Data []uint8
}

// NewMatrix allocates a zeroed rows×cols matrix.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{Rows: rows, Cols: cols, Data: make([]uint8, rows*cols)}
}

func (m Matrix) At(row, col int) uint8 {
	return m.Data[row*m.Cols+col]
}

// Ones counts the ridge cells.
func (m Matrix) Ones() int {
	n := 0
	for _, v := range m.Data {
		n += int(v)
	}
	return n
}

// Density is the fraction of ridge cells, 0 for an empty matrix.
func (m Matrix) Density() float64 {
	if len(m.Data) == 0 {
		return 0
	}
	return float64(m.Ones()) / float64(len(m.Data))
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	data := make([]uint8, len(m.Data))
	copy(data, m.Data)
	return Matrix{Rows: m.Rows, Cols: m.Cols, Data: data}
}

// SameShape reports whether both matrices have identical dimensions.
func (m Matrix) SameShape(o Matrix) bool {
	return m.Rows == o.Rows && m.Cols == o.Cols
}

// ToMat renders the matrix as an 8-bit image, 1 as white and 0 as black.
// The caller owns the returned Mat.
func (m Matrix) ToMat() (gocv.Mat, error) {
	if m.Rows <= 0 || m.Cols <= 0 || len(m.Data) != m.Rows*m.Cols {
		return gocv.NewMat(), fmt.Errorf("invalid matrix shape: %dx%d with %d cells", m.Rows, m.Cols, len(m.Data))
	}

	out := gocv.NewMatWithSize(m.Rows, m.Cols, gocv.MatTypeCV8UC1)
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if m.At(r, c) != 0 {
				out.SetUCharAt(r, c, algorithms.White)
			} else {
				out.SetUCharAt(r, c, algorithms.Black)
			}
		}
	}
	return out, nil
}

// Extract builds the feature matrix from a binarized image: a cell is 1
// exactly where the binary pixel is black (ink).
func Extract(binary gocv.Mat) (Matrix, error) {
	if binary.Empty() {
		return Matrix{}, fmt.Errorf("binary image is empty")
	}
	if binary.Type() != gocv.MatTypeCV8UC1 {
		return Matrix{}, fmt.Errorf("binary image must be single-channel 8-bit, got type %v", binary.Type())
	}

	m := NewMatrix(binary.Rows(), binary.Cols())
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if binary.GetUCharAt(r, c) == algorithms.Black {
				m.Data[r*m.Cols+c] = 1
			}
		}
	}
	return m, nil
}
