package tensor

import (
	"testing"

	"github.com/JackWithOneEye/pcviewer/internal/animation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFramesNested(t *testing.T) {
	f := Frames{
		mat.NewDense(2, 3, []float64{0, 0, 0, 1, 1, 1}),
		mat.NewDense(2, 3, []float64{2, 2, 2, 3, 3, 3}).T().T(),
	}

	n, err := f.Nested()
	require.NoError(t, err)
	assert.Equal(t, [][][]float64{
		{{0, 0, 0}, {1, 1, 1}},
		{{2, 2, 2}, {3, 3, 3}},
	}, n)
}

func TestFramesNilFrame(t *testing.T) {
	_, err := Frames{nil}.Nested()
	assert.ErrorContains(t, err, "frame 0")
}

func TestFramesValidate(t *testing.T) {
	b, err := animation.Validate(Frames{mat.NewDense(1, 3, []float64{4, 5, 6})}, nil)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{4, 5, 6}, b.FrameAt(7).Points[0])
	assert.Equal(t, animation.DefaultColor, b.FrameAt(7).Colors[0])
}

func TestFramesWrongWidth(t *testing.T) {
	_, err := animation.Validate(Frames{mat.NewDense(5, 2, nil)}, nil)
	var shapeErr *animation.ShapeError
	assert.ErrorAs(t, err, &shapeErr)
}
