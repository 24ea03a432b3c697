package animation

import "fmt"

// ShapeError reports a points or colors array that is not (n_frames, n_points, 3)
// or whose shape differs between points and colors.
type ShapeError struct {
	Arg    string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid %s shape: %s", e.Arg, e.Reason)
}

// TypeError reports an input that is not a supported numeric representation.
type TypeError struct {
	Arg string
	Got string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s must be [][][]float64, [][][]float32 or an animation.Sequence, got %s", e.Arg, e.Got)
}
