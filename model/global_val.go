package model

// 格子尺寸约定
// 1. x, y 为管道横截面方向
// 2. z 为流动方向（体积力方向）
// 3. 物体体素与格子一一对应，不做缩放

const (
	// FlowAxis index of the streamwise component in Force and body-force vectors
	FlowAxis = 2

	// 原始实现中 binvox 读入后四周各补一层空体素，保证 (0,0,0) 是外部种子
	VoxelBorder = 1
)

// ExteriorSeed flood fill 的默认种子
var ExteriorSeed = Coord{0, 0, 0}
