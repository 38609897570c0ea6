package driver

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"ductflow/config"
	"ductflow/geometry"
	"ductflow/model"
	"ductflow/monitor"
	"ductflow/profile"
	"ductflow/voxel"
)

// Driver 准备几何与初始条件，驱动外部求解器直到稳态
type Driver struct {
	cfg    *config.Config
	loader voxel.Loader
	solver Solver
	hub    *Hub
	exec   *executor
}

// Result 运行结束时的监测状态
type Result struct {
	State monitor.State
	Last  model.Progress
}

func (r Result) Converged() bool {
	return r.State == monitor.Converged
}

func New(cfg *config.Config, loader voxel.Loader, solver Solver, hub *Hub) *Driver {
	return &Driver{
		cfg:    cfg,
		loader: loader,
		solver: solver,
		hub:    hub,
		exec:   newExecutor(cfg.Workers),
	}
}

// Prepare runs the geometry pipeline and computes the inflow. The solid mask
// is written to disk before it is returned. Any error leaves the solver
// untouched.
func (d *Driver) Prepare(ctx context.Context) (*Boundary, error) {
	grid, err := d.loader.Load(d.cfg.Voxel.Filename)
	if err != nil {
		return nil, fmt.Errorf("load voxels: %w", err)
	}
	classified, err := geometry.FloodFill(grid, model.ExteriorSeed)
	if err != nil {
		return nil, fmt.Errorf("flood fill: %w", err)
	}
	mask, err := geometry.Assemble(classified, d.cfg.Placement())
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if err := geometry.SaveMask(d.cfg.BoundaryPath(), mask); err != nil {
		return nil, fmt.Errorf("save boundary: %w", err)
	}
	log.WithField("path", d.cfg.BoundaryPath()).Info("boundary saved")

	duct, err := d.cfg.Profile()
	if err != nil {
		return nil, err
	}
	n := d.cfg.Lattice()
	field := profile.NewField(n[0], n[1])
	cost, err := d.exec.dispatchTask(ctx, 0, n[0], func(start, end int) {
		duct.FillRows(field, start, end)
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"cost":    cost,
		"workers": d.exec.workers,
		"max":     field.Max(),
		"mean":    field.Mean(),
	}).Info("inflow profile computed")

	b := &Boundary{Mask: mask, Duct: duct, Inflow: field, CheckpointEvery: d.cfg.Output.Every}
	b.BodyForce[model.FlowAxis] = duct.BodyForce()
	return b, nil
}

// Run prepares the boundary, hands it to the solver and monitors forces
// until steady state, a stop request, or ctx cancellation.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	cleaner := monitor.CheckpointCleaner{Output: d.cfg.Output.Prefix, Every: d.cfg.Output.Every}
	mon, err := monitor.New(d.cfg.Monitor, cleaner)
	if err != nil {
		return Result{}, err
	}

	b, err := d.Prepare(ctx)
	if err != nil {
		return Result{}, err
	}
	if err := d.solver.Setup(b); err != nil {
		return Result{}, fmt.Errorf("solver setup: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if d.hub != nil {
		mon.OnProgress(d.hub.Publish)
		go func() {
			select {
			case <-d.hub.StopRequested():
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	log.WithFields(log.Fields{
		"interval":  d.cfg.Monitor.Interval,
		"min_iters": d.cfg.Monitor.MinIters,
		"max_iters": d.cfg.Monitor.MaxIters,
		"every":     b.CheckpointEvery,
	}).Info("simulation started")
	err = d.solver.Run(ctx, d.cfg.Monitor.Interval, mon.Observe)
	res := Result{State: mon.State(), Last: mon.Last()}
	if err != nil && !(errors.Is(err, context.Canceled) && d.stopRequested()) {
		return res, err
	}
	log.WithFields(log.Fields{
		"state":     res.State,
		"iteration": res.Last.Iteration,
	}).Info("simulation finished")
	return res, nil
}

func (d *Driver) stopRequested() bool {
	if d.hub == nil {
		return false
	}
	select {
	case <-d.hub.StopRequested():
		return true
	default:
		return false
	}
}
