package profile

import (
	"gonum.org/v1/gonum/floats"
)

// Field 横截面初速度场（流向分量），按 [x][y] 展平
type Field struct {
	Nx, Ny int
	V      []float64
}

func NewField(nx, ny int) *Field {
	return &Field{Nx: nx, Ny: ny, V: make([]float64, nx*ny)}
}

func (f *Field) At(x, y int) float64 {
	return f.V[x*f.Ny+y]
}

// FillRows evaluates rows x in [start, end). Disjoint row ranges may be
// filled concurrently.
func (d *Duct) FillRows(f *Field, start, end int) {
	for x := start; x < end; x++ {
		row := f.V[x*f.Ny : (x+1)*f.Ny]
		for y := range row {
			row[y] = d.VelocityAt(x, y)
		}
	}
}

// Field evaluates the whole cross-section serially.
func (d *Duct) Field(nx, ny int) *Field {
	f := NewField(nx, ny)
	d.FillRows(f, 0, nx)
	return f
}

func (f *Field) Max() float64 {
	if len(f.V) == 0 {
		return 0
	}
	return floats.Max(f.V)
}

func (f *Field) Mean() float64 {
	if len(f.V) == 0 {
		return 0
	}
	return floats.Sum(f.V) / float64(len(f.V))
}
