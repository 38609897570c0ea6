package model

// Cell 体素分类
type Cell uint8

const (
	CellOpen     Cell = iota // not yet classified
	CellSolid                // object voxel
	CellExterior             // reached from the exterior seed
	CellInterior             // sealed void, treated as solid
)

func (c Cell) String() string {
	switch c {
	case CellOpen:
		return "open"
	case CellSolid:
		return "solid"
	case CellExterior:
		return "exterior"
	case CellInterior:
		return "interior"
	}
	return "unknown"
}

// IsWall reports whether the solver should treat the cell as impermeable.
func (c Cell) IsWall() bool {
	return c == CellSolid || c == CellInterior
}

// Coord lattice / voxel index
type Coord struct {
	X, Y, Z int
}

// Neighbors6 face-adjacent offsets
var Neighbors6 = [6]Coord{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

func (c Coord) Add(o Coord) Coord {
	return Coord{c.X + o.X, c.Y + o.Y, c.Z + o.Z}
}

// Force 力对象上积分得到的三分量合力
type Force [3]float64

// ForceSample 每个监测间隔产生一次，创建后不可修改
type ForceSample struct {
	Iteration int   `json:"iteration"`
	Force     Force `json:"force"`
}

// Progress 推送给前端的监测进度
type Progress struct {
	Iteration int     `json:"iteration"`
	Force     Force   `json:"force"`
	Diff      Force   `json:"diff"`
	State     string  `json:"state"`
	MaxDiff   float64 `json:"max_diff"`
}

// 前后端通信消息结构
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// 消息类型
const (
	MsgStatus   = "status"
	MsgProgress = "progress"
	MsgStop     = "stop"
	MsgStopped  = "stopped"
	MsgError    = "error"
)
