// Package tensor adapts gonum matrices to animation.Sequence.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Frames is one n_points x 3 matrix per frame.
type Frames []mat.Matrix

// Nested copies the matrices into a plain nested slice. Column counts are
// not checked here: animation.Validate reports them as shape errors.
func (f Frames) Nested() ([][][]float64, error) {
	out := make([][][]float64, len(f))
	for i, m := range f {
		if m == nil {
			return nil, fmt.Errorf("frame %d is nil", i)
		}
		r, c := m.Dims()
		rows := make([][]float64, r)
		for j := range r {
			rows[j] = make([]float64, c)
			mat.Row(rows[j], j, m)
		}
		out[i] = rows
	}
	return out, nil
}
