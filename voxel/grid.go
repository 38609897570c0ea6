package voxel

import (
	"fmt"

	"ductflow/model"
)

// Grid 三维体素网格，尺寸在构造后固定
type Grid struct {
	Nx, Ny, Nz int
	cells      []model.Cell
}

func NewGrid(nx, ny, nz int) *Grid {
	if nx < 0 || ny < 0 || nz < 0 {
		panic(fmt.Sprintf("negative grid extent %dx%dx%d", nx, ny, nz))
	}
	return &Grid{
		Nx:    nx,
		Ny:    ny,
		Nz:    nz,
		cells: make([]model.Cell, nx*ny*nz),
	}
}

// FromOccupancy builds a grid from a boolean occupancy array indexed [x][y][z].
func FromOccupancy(occ [][][]bool) *Grid {
	nx := len(occ)
	ny, nz := 0, 0
	if nx > 0 {
		ny = len(occ[0])
		if ny > 0 {
			nz = len(occ[0][0])
		}
	}
	g := NewGrid(nx, ny, nz)
	for x := range occ {
		for y := range occ[x] {
			for z, solid := range occ[x][y] {
				if solid {
					g.Set(x, y, z, model.CellSolid)
				}
			}
		}
	}
	return g
}

func (g *Grid) Dims() [3]int {
	return [3]int{g.Nx, g.Ny, g.Nz}
}

func (g *Grid) Len() int {
	return len(g.cells)
}

func (g *Grid) Empty() bool {
	return g.Nx == 0 || g.Ny == 0 || g.Nz == 0
}

func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.Nx && y >= 0 && y < g.Ny && z >= 0 && z < g.Nz
}

// OnBoundary reports whether the voxel lies on one of the six outer faces.
func (g *Grid) OnBoundary(x, y, z int) bool {
	return x == 0 || y == 0 || z == 0 || x == g.Nx-1 || y == g.Ny-1 || z == g.Nz-1
}

func (g *Grid) offset(x, y, z int) int {
	if !g.InBounds(x, y, z) {
		panic(fmt.Sprintf("voxel (%d,%d,%d) out of range %dx%dx%d", x, y, z, g.Nx, g.Ny, g.Nz))
	}
	return (x*g.Ny+y)*g.Nz + z
}

func (g *Grid) At(x, y, z int) model.Cell {
	return g.cells[g.offset(x, y, z)]
}

func (g *Grid) AtCoord(c model.Coord) model.Cell {
	return g.At(c.X, c.Y, c.Z)
}

func (g *Grid) Set(x, y, z int, c model.Cell) {
	g.cells[g.offset(x, y, z)] = c
}

func (g *Grid) SetCoord(p model.Coord, c model.Cell) {
	g.Set(p.X, p.Y, p.Z, c)
}

func (g *Grid) Clone() *Grid {
	cells := make([]model.Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{Nx: g.Nx, Ny: g.Ny, Nz: g.Nz, cells: cells}
}

// Count 统计某一类体素个数
func (g *Grid) Count(c model.Cell) int {
	n := 0
	for _, v := range g.cells {
		if v == c {
			n++
		}
	}
	return n
}

// Each visits every voxel in x-major order.
func (g *Grid) Each(f func(x, y, z int, c model.Cell)) {
	i := 0
	for x := 0; x < g.Nx; x++ {
		for y := 0; y < g.Ny; y++ {
			for z := 0; z < g.Nz; z++ {
				f(x, y, z, g.cells[i])
				i++
			}
		}
	}
}

// Equal reports whether both grids have the same extent and contents.
func (g *Grid) Equal(o *Grid) bool {
	if g.Dims() != o.Dims() {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}
