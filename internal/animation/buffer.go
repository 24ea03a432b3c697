// Package animation holds the validated, immutable point-cloud sequence that
// every session reads from.
package animation

import (
	"fmt"
)

// DefaultColor is used for every point when no colors are supplied.
var DefaultColor = [3]float64{0, 0, 1}

// Sequence is implemented by tensor-like types that can convert themselves
// into a plain (n_frames, n_points, 3) nested slice.
type Sequence interface {
	Nested() ([][][]float64, error)
}

// Frame is one time step. Points and Colors always have the same length.
type Frame struct {
	Points [][3]float64
	Colors [][3]float64
}

// Buffer is read concurrently without locking and must never be mutated
// after Validate returns, including the slices handed out by FrameAt.
type Buffer struct {
	frames    []Frame
	numPoints int
}

// Validate checks points (and colors, when non-nil) and builds a Buffer.
// All frames must share one point count: ragged sequences are rejected.
func Validate(points, colors any) (*Buffer, error) {
	if points == nil {
		return nil, &TypeError{Arg: "points", Got: "nil"}
	}
	p, err := toNested("points", points)
	if err != nil {
		return nil, err
	}

	pf, numPoints, err := toFrames("points", p)
	if err != nil {
		return nil, err
	}

	var cf [][][3]float64
	if colors != nil {
		c, err := toNested("colors", colors)
		if err != nil {
			return nil, err
		}
		if c != nil {
			if len(c) != len(p) {
				return nil, &ShapeError{
					Arg:    "colors",
					Reason: fmt.Sprintf("has %d frames, points has %d", len(c), len(p)),
				}
			}
			cf, _, err = toFrames("colors", c)
			if err != nil {
				return nil, err
			}
			if len(cf[0]) != numPoints {
				return nil, &ShapeError{
					Arg:    "colors",
					Reason: fmt.Sprintf("has %d points per frame, points has %d", len(cf[0]), numPoints),
				}
			}
		}
	}

	b := &Buffer{frames: make([]Frame, len(pf)), numPoints: numPoints}
	for i := range pf {
		b.frames[i].Points = pf[i]
		if cf != nil {
			b.frames[i].Colors = cf[i]
		} else {
			b.frames[i].Colors = fill(numPoints, DefaultColor)
		}
	}
	return b, nil
}

// FrameCount returns n_frames, always at least 1.
func (b *Buffer) FrameCount() int {
	return len(b.frames)
}

// PointCount returns the number of points in every frame.
func (b *Buffer) PointCount() int {
	return b.numPoints
}

// Wrap maps any index, negative or out of range, into [0, FrameCount()).
func (b *Buffer) Wrap(index int) int {
	n := len(b.frames)
	i := index % n
	if i < 0 {
		i += n
	}
	return i
}

// FrameAt returns the frame at Wrap(index).
func (b *Buffer) FrameAt(index int) Frame {
	return b.frames[b.Wrap(index)]
}

func toNested(arg string, v any) ([][][]float64, error) {
	switch t := v.(type) {
	case [][][]float64:
		return t, nil
	case [][][]float32:
		if t == nil {
			return nil, nil
		}
		out := make([][][]float64, len(t))
		for i, frame := range t {
			out[i] = make([][]float64, len(frame))
			for j, row := range frame {
				out[i][j] = make([]float64, len(row))
				for k, x := range row {
					out[i][j][k] = float64(x)
				}
			}
		}
		return out, nil
	case Sequence:
		n, err := t.Nested()
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", arg, err)
		}
		return n, nil
	default:
		return nil, &TypeError{Arg: arg, Got: fmt.Sprintf("%T", v)}
	}
}

// toFrames enforces the (n_frames >= 1, n_points, 3) shape.
func toFrames(arg string, n [][][]float64) ([][][3]float64, int, error) {
	if len(n) == 0 {
		return nil, 0, &ShapeError{Arg: arg, Reason: "must contain at least one frame"}
	}

	numPoints := len(n[0])
	out := make([][][3]float64, len(n))
	for i, frame := range n {
		if len(frame) != numPoints {
			return nil, 0, &ShapeError{
				Arg:    arg,
				Reason: fmt.Sprintf("frame %d has %d points, frame 0 has %d", i, len(frame), numPoints),
			}
		}
		out[i] = make([][3]float64, len(frame))
		for j, row := range frame {
			if len(row) != 3 {
				return nil, 0, &ShapeError{
					Arg:    arg,
					Reason: fmt.Sprintf("frame %d row %d has %d components, want 3", i, j, len(row)),
				}
			}
			out[i][j] = [3]float64{row[0], row[1], row[2]}
		}
	}
	return out, numPoints, nil
}

func fill(n int, v [3]float64) [][3]float64 {
	out := make([][3]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
