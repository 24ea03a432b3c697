package tui

import (
	"math"

	"github.com/JackWithOneEye/pcviewer/internal/protocol"
)

const emptyCell uint32 = 0xffffffff

type cellAcc struct {
	r, g, b float64
	n       int
}

// rasterize projects the cloud onto the XY plane of a width x height grid and
// colors each cell by the mean color of the points that land on it. extent is
// the half-width of the visible region in world units. Terminal cells are
// about twice as tall as they are wide, so rows are scaled by one half.
func rasterize(pc *protocol.PointCloud, width, height int, extent float64) [][]uint32 {
	grid := make([][]uint32, height)
	for y := range grid {
		grid[y] = make([]uint32, width)
		for x := range grid[y] {
			grid[y][x] = emptyCell
		}
	}
	if pc == nil || width == 0 || height == 0 || extent <= 0 {
		return grid
	}

	cx := float64(width-1) / 2
	cy := float64(height-1) / 2
	scale := math.Min(cx, 2*cy) / extent

	acc := make(map[int]*cellAcc)
	for i, p := range pc.Points {
		col := int(math.Round(cx + p[0]*scale))
		row := int(math.Round(cy - p[1]*scale/2))
		if col < 0 || col >= width || row < 0 || row >= height {
			continue
		}
		key := row*width + col
		a, ok := acc[key]
		if !ok {
			a = &cellAcc{}
			acc[key] = a
		}
		if i < len(pc.Colors) {
			a.r += pc.Colors[i][0]
			a.g += pc.Colors[i][1]
			a.b += pc.Colors[i][2]
		}
		a.n++
	}

	for key, a := range acc {
		n := float64(a.n)
		grid[key/width][key%width] = packColor(a.r/n, a.g/n, a.b/n)
	}
	return grid
}

// maxExtent returns the largest |x| or |y| in the cloud.
func maxExtent(pc *protocol.PointCloud) float64 {
	var m float64
	for _, p := range pc.Points {
		m = math.Max(m, math.Max(math.Abs(p[0]), math.Abs(p[1])))
	}
	return m
}

func packColor(r, g, b float64) uint32 {
	return channel(r)<<16 | channel(g)<<8 | channel(b)
}

func channel(v float64) uint32 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint32(math.Round(v * 0xff))
}
