package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ductflow/model"
	"ductflow/voxel"
)

// 5x5x5 网格，中间 3x3x3 为空心立方壳，(2,2,2) 为封闭空腔
func hollowCube() *voxel.Grid {
	g := voxel.NewGrid(5, 5, 5)
	for x := 1; x <= 3; x++ {
		for y := 1; y <= 3; y++ {
			for z := 1; z <= 3; z++ {
				if x == 2 && y == 2 && z == 2 {
					continue
				}
				g.Set(x, y, z, model.CellSolid)
			}
		}
	}
	return g
}

func TestFloodFillEnclosedCavity(t *testing.T) {
	g := hollowCube()
	out, err := FloodFill(g, model.ExteriorSeed)
	require.NoError(t, err)

	assert.Equal(t, model.CellInterior, out.At(2, 2, 2))
	assert.True(t, out.At(2, 2, 2).IsWall())
	assert.Equal(t, FillStats{Solid: 26, Exterior: 98, Interior: 1}, Stats(out))
	assert.NoError(t, Verify(out))

	// 输入不被修改
	assert.Equal(t, model.CellOpen, g.At(2, 2, 2))
	assert.Equal(t, 0, g.Count(model.CellExterior))
}

func TestFloodFillIdempotent(t *testing.T) {
	out, err := FloodFill(hollowCube(), model.ExteriorSeed)
	require.NoError(t, err)
	again, err := FloodFill(out, model.ExteriorSeed)
	require.NoError(t, err)
	assert.True(t, again.Equal(out))
}

func TestFloodFillNoVoids(t *testing.T) {
	g := voxel.NewGrid(4, 3, 6)
	g.Set(1, 1, 2, model.CellSolid)
	g.Set(2, 1, 3, model.CellSolid)
	out, err := FloodFill(g, model.Coord{X: 3, Y: 2, Z: 5})
	require.NoError(t, err)

	s := Stats(out)
	assert.Equal(t, 0, s.Interior)
	assert.Equal(t, out.Len()-2, s.Exterior)
	assert.Equal(t, 0, out.Count(model.CellOpen))
}

func TestFloodFillDiagonalDoesNotLeak(t *testing.T) {
	// 只有对角相邻的空体素不连通
	g := voxel.NewGrid(3, 3, 1)
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			g.Set(x, y, 0, model.CellSolid)
		}
	}
	g.Set(0, 0, 0, model.CellOpen)
	g.Set(1, 1, 0, model.CellOpen)
	out, err := FloodFill(g, model.Coord{})
	require.NoError(t, err)
	assert.Equal(t, model.CellExterior, out.At(0, 0, 0))
	assert.Equal(t, model.CellInterior, out.At(1, 1, 0))
}

func TestFloodFillInvalidSeed(t *testing.T) {
	g := hollowCube()
	_, err := FloodFill(g, model.Coord{X: 1, Y: 1, Z: 1})
	assert.ErrorIs(t, err, ErrInvalidSeed)

	_, err = FloodFill(g, model.Coord{X: 5})
	assert.ErrorIs(t, err, ErrInvalidSeed)

	_, err = FloodFill(voxel.NewGrid(0, 2, 2), model.Coord{})
	assert.ErrorIs(t, err, ErrInvalidSeed)
}

func TestVerifyUnreachableExterior(t *testing.T) {
	// x=2 平面为实体墙，把区域一分为二
	g := voxel.NewGrid(5, 3, 3)
	for y := 0; y < 3; y++ {
		for z := 0; z < 3; z++ {
			g.Set(2, y, z, model.CellSolid)
		}
	}
	out, err := FloodFill(g, model.Coord{})
	require.NoError(t, err)
	assert.ErrorIs(t, Verify(out), ErrInconsistentGeometry)

	assert.ErrorIs(t, Verify(g), ErrInconsistentGeometry)
}
