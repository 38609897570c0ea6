package geometry

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"ductflow/model"
	"ductflow/voxel"
)

// SolidMask 格子固体掩码，true 为壁面节点
type SolidMask struct {
	Nx, Ny, Nz int
	solid      []bool
}

func (m *SolidMask) Dims() [3]int {
	return [3]int{m.Nx, m.Ny, m.Nz}
}

func (m *SolidMask) index(x, y, z int) int {
	if x < 0 || x >= m.Nx || y < 0 || y >= m.Ny || z < 0 || z >= m.Nz {
		panic(fmt.Sprintf("lattice node (%d,%d,%d) out of range %v", x, y, z, m.Dims()))
	}
	return (x*m.Ny+y)*m.Nz + z
}

// IsSolid is the node query handed to the solver at setup.
func (m *SolidMask) IsSolid(x, y, z int) bool {
	return m.solid[m.index(x, y, z)]
}

func (m *SolidMask) Count() int {
	n := 0
	for _, s := range m.solid {
		if s {
			n++
		}
	}
	return n
}

// Placement 物体在格子中的位置：横向居中，流向上游留 Upstream 层
type Placement struct {
	Lattice  [3]int
	Upstream int
}

// Padding returns how many open layers go before and after the object on
// each axis so that it fills the lattice exactly.
func (p Placement) Padding(obj [3]int) (before, after [3]int, err error) {
	for i := 0; i < 3; i++ {
		rest := p.Lattice[i] - obj[i]
		if i == model.FlowAxis {
			before[i] = p.Upstream
		} else {
			before[i] = rest / 2
		}
		after[i] = rest - before[i]
		if before[i] < 0 || after[i] < 0 {
			return before, after, fmt.Errorf("%w: object %v does not fit lattice %v with upstream margin %d",
				ErrInconsistentGeometry, obj, p.Lattice, p.Upstream)
		}
	}
	return before, after, nil
}

// Assemble merges the classified object and the duct walls into the lattice
// mask. The object must have passed through FloodFill.
func Assemble(obj *voxel.Grid, p Placement) (*SolidMask, error) {
	if err := Verify(obj); err != nil {
		return nil, err
	}
	before, after, err := p.Padding(obj.Dims())
	if err != nil {
		return nil, err
	}

	nx, ny, nz := p.Lattice[0], p.Lattice[1], p.Lattice[2]
	solid := Or(
		ObjectAt(obj, model.Coord{X: before[0], Y: before[1], Z: before[2]}),
		DuctWalls(nx, ny),
	)
	m := &SolidMask{Nx: nx, Ny: ny, Nz: nz, solid: make([]bool, nx*ny*nz)}
	i := 0
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				m.solid[i] = solid(x, y, z)
				i++
			}
		}
	}

	log.WithFields(log.Fields{
		"lattice": p.Lattice,
		"before":  before,
		"after":   after,
		"solid":   m.Count(),
	}).Info("geometry assembled")
	return m, nil
}
