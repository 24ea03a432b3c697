// Package sample generates the demo animation: a cloud of random points in
// the [-1,1] cube rotating once around the z axis over the whole sequence.
package sample

import (
	"math"
	"math/rand/v2"

	"github.com/JackWithOneEye/pcviewer/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// RotatingCube returns points and colors as (frames, points, 3) tensors.
// Each point is colored by its position: rgb = p/2 + 0.5.
func RotatingCube(frames, points int, rng *rand.Rand) (tensor.Frames, tensor.Frames) {
	ps := make(tensor.Frames, frames)
	cs := make(tensor.Frames, frames)

	for i := range frames {
		if points == 0 {
			ps[i] = &mat.Dense{}
			cs[i] = &mat.Dense{}
			continue
		}

		raw := mat.NewDense(points, 3, nil)
		for j := range points {
			for k := range 3 {
				raw.Set(j, k, rng.Float64()*2-1)
			}
		}

		angle := float64(i) * 2 * math.Pi / float64(frames)
		sin, cos := math.Sincos(angle)
		rot := mat.NewDense(3, 3, []float64{
			cos, -sin, 0,
			sin, cos, 0,
			0, 0, 1,
		})

		rotated := mat.NewDense(points, 3, nil)
		rotated.Mul(raw, rot.T())

		colors := mat.NewDense(points, 3, nil)
		colors.Apply(func(_, _ int, v float64) float64 {
			return v/2 + 0.5
		}, rotated)

		ps[i] = rotated
		cs[i] = colors
	}
	return ps, cs
}
