package geometry

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"ductflow/deque"
	"ductflow/model"
	"ductflow/voxel"
)

var (
	ErrInvalidSeed          = errors.New("geometry: invalid flood fill seed")
	ErrInconsistentGeometry = errors.New("geometry: inconsistent geometry")
)

// FillStats 分类结果统计
type FillStats struct {
	Solid    int
	Exterior int
	Interior int
}

func Stats(g *voxel.Grid) FillStats {
	return FillStats{
		Solid:    g.Count(model.CellSolid),
		Exterior: g.Count(model.CellExterior),
		Interior: g.Count(model.CellInterior),
	}
}

// FloodFill classifies every non-solid voxel of g as exterior (6-connected to
// seed) or interior (sealed void). g is not modified; the classified copy is
// returned. Earlier exterior/interior marks in g are discarded first, so
// running the fill on its own output gives the same result.
func FloodFill(g *voxel.Grid, seed model.Coord) (*voxel.Grid, error) {
	if g.Empty() {
		return nil, fmt.Errorf("%w: empty grid %v", ErrInvalidSeed, g.Dims())
	}
	if !g.InBounds(seed.X, seed.Y, seed.Z) {
		return nil, fmt.Errorf("%w: %v outside grid %v", ErrInvalidSeed, seed, g.Dims())
	}
	if g.AtCoord(seed) == model.CellSolid {
		return nil, fmt.Errorf("%w: %v is solid", ErrInvalidSeed, seed)
	}

	out := g.Clone()
	out.Each(func(x, y, z int, c model.Cell) {
		if c != model.CellSolid {
			out.Set(x, y, z, model.CellOpen)
		}
	})

	// 当前前沿和下一层前沿，入队时即标记，保证每个体素只访问一次
	var edge, next deque.Deque = deque.NewArrDeque(64), deque.NewArrDeque(64)
	out.SetCoord(seed, model.CellExterior)
	edge.AddLast(seed)
	levels := 0
	for !edge.IsEmpty() {
		for !edge.IsEmpty() {
			c := edge.RemoveFirst()
			for _, d := range model.Neighbors6 {
				n := c.Add(d)
				if out.InBounds(n.X, n.Y, n.Z) && out.AtCoord(n) == model.CellOpen {
					out.SetCoord(n, model.CellExterior)
					next.AddLast(n)
				}
			}
		}
		edge, next = next, edge
		levels++
	}

	out.Each(func(x, y, z int, c model.Cell) {
		if c == model.CellOpen {
			out.Set(x, y, z, model.CellInterior)
		}
	})

	s := Stats(out)
	log.WithFields(log.Fields{
		"seed":     seed,
		"levels":   levels,
		"solid":    s.Solid,
		"exterior": s.Exterior,
		"interior": s.Interior,
	}).Info("flood fill done")
	return out, nil
}

// Verify checks that g is fully classified and that no sealed void touches
// the grid boundary, which would mean the seed could not reach all of the
// exterior space.
func Verify(g *voxel.Grid) error {
	var err error
	g.Each(func(x, y, z int, c model.Cell) {
		if err != nil {
			return
		}
		switch {
		case c == model.CellOpen:
			err = fmt.Errorf("%w: voxel (%d,%d,%d) unclassified", ErrInconsistentGeometry, x, y, z)
		case c == model.CellInterior && g.OnBoundary(x, y, z):
			err = fmt.Errorf("%w: boundary voxel (%d,%d,%d) not reachable from seed", ErrInconsistentGeometry, x, y, z)
		}
	})
	return err
}
