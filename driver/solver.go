package driver

import (
	"context"

	"ductflow/geometry"
	"ductflow/model"
	"ductflow/monitor"
	"ductflow/profile"
)

// Boundary 交给外部求解器的全部初始/边界条件
type Boundary struct {
	Mask            *geometry.SolidMask
	Duct            *profile.Duct
	Inflow          *profile.Field // streamwise velocity on every cross-section
	BodyForce       model.Force
	CheckpointEvery int // 求解器写 "<prefix>.0.<iteration>" 检查点的间隔
}

// StepFunc is called by the solver once per monitoring interval with the
// force measured on the tracked object.
type StepFunc func(s model.ForceSample) (monitor.Decision, error)

// Solver is the external lattice-Boltzmann engine.
type Solver interface {
	// Setup receives the boundary once, before the first time step.
	Setup(b *Boundary) error
	// Run time-steps until step returns monitor.Stop, step fails, the
	// iteration budget ends or ctx is cancelled. every is the monitoring
	// interval.
	Run(ctx context.Context, every int, step StepFunc) error
}
