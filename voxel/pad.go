package voxel

import "ductflow/model"

// Pad returns a new grid with before[i] / after[i] open voxels added on each
// side of axis i. Existing cells keep their class.
func Pad(g *Grid, before, after [3]int) *Grid {
	for i := 0; i < 3; i++ {
		if before[i] < 0 || after[i] < 0 {
			panic("negative padding")
		}
	}
	out := NewGrid(g.Nx+before[0]+after[0], g.Ny+before[1]+after[1], g.Nz+before[2]+after[2])
	g.Each(func(x, y, z int, c model.Cell) {
		out.Set(x+before[0], y+before[1], z+before[2], c)
	})
	return out
}

// PadUniform adds n open voxels on every face.
func PadUniform(g *Grid, n int) *Grid {
	return Pad(g, [3]int{n, n, n}, [3]int{n, n, n})
}
