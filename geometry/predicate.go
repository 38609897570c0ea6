package geometry

import (
	"ductflow/model"
	"ductflow/voxel"
)

// Predicate 判断格点 (x, y, z) 是否为固体
type Predicate func(x, y, z int) bool

// Or merges boundary sources; order does not matter.
func Or(ps ...Predicate) Predicate {
	return func(x, y, z int) bool {
		for _, p := range ps {
			if p(x, y, z) {
				return true
			}
		}
		return false
	}
}

// DuctWalls marks the four lateral faces of an nx*ny duct, for every z.
func DuctWalls(nx, ny int) Predicate {
	return func(x, y, z int) bool {
		return x == 0 || x == nx-1 || y == 0 || y == ny-1
	}
}

// ObjectAt places a classified object grid at offset inside the lattice.
// Solid voxels and sealed voids are walls; anything outside the grid is open.
func ObjectAt(g *voxel.Grid, offset model.Coord) Predicate {
	return func(x, y, z int) bool {
		ox, oy, oz := x-offset.X, y-offset.Y, z-offset.Z
		if !g.InBounds(ox, oy, oz) {
			return false
		}
		return g.At(ox, oy, oz).IsWall()
	}
}
