package forecast

import (
	"fmt"
	"math"
)

// ridgeEpsilon is a small diagonal regularizer keeping the normal equations
// solvable when seasonal regressors turn collinear on short histories.
const ridgeEpsilon = 1e-8

// solveLeastSquares solves min ||Xb - y|| via the normal equations with a
// tiny ridge term, using Gaussian elimination with partial pivoting.
func solveLeastSquares(x [][]float64, y []float64) ([]float64, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("mismatched design matrix: %d rows, %d observations", len(x), len(y))
	}
	p := len(x[0])

	// Form X'X (scaled by the ridge term) and X'y.
	ata := make([][]float64, p)
	aty := make([]float64, p)
	for i := 0; i < p; i++ {
		ata[i] = make([]float64, p)
	}
	for r, row := range x {
		if len(row) != p {
			return nil, fmt.Errorf("ragged design matrix at row %d", r)
		}
		for i := 0; i < p; i++ {
			aty[i] += row[i] * y[r]
			for j := i; j < p; j++ {
				ata[i][j] += row[i] * row[j]
			}
		}
	}
	for i := 0; i < p; i++ {
		ata[i][i] += ridgeEpsilon
		for j := 0; j < i; j++ {
			ata[i][j] = ata[j][i]
		}
	}

	return solveLinearSystem(ata, aty)
}

// solveLinearSystem solves a dense symmetric positive system in place.
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)

	for col := 0; col < n; col++ {
		// Partial pivoting.
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular system at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < n; r++ {
			factor := a[r][col] / a[col][col]
			if factor == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}

	// Back substitution.
	solution := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * solution[c]
		}
		solution[r] = sum / a[r][r]
		if math.IsNaN(solution[r]) || math.IsInf(solution[r], 0) {
			return nil, fmt.Errorf("non-finite coefficient at index %d", r)
		}
	}

	return solution, nil
}
