package driver

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"ductflow/model"
	"ductflow/monitor"
)

// ReplaySolver stands in for the LB engine by replaying a recorded force
// history (iteration, fx, fy, fz). It lets the steady-state decision be
// re-run offline against logs of earlier simulations.
type ReplaySolver struct {
	samples  []model.ForceSample
	boundary *Boundary
}

func NewReplaySolver(samples []model.ForceSample) *ReplaySolver {
	return &ReplaySolver{samples: samples}
}

func OpenForceLog(path string) (*ReplaySolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	samples, err := ReadForceLog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewReplaySolver(samples), nil
}

// ReadForceLog parses "iteration,fx,fy,fz" records. Blank lines, lines
// starting with '#' and a non-numeric header row are skipped.
func ReadForceLog(r io.Reader) ([]model.ForceSample, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	var samples []model.ForceSample
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		it, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("record %d: iteration %q: %w", line, rec[0], err)
		}
		s := model.ForceSample{Iteration: it}
		for i := 0; i < 3; i++ {
			if s.Force[i], err = strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64); err != nil {
				return nil, fmt.Errorf("record %d: force: %w", line, err)
			}
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func (r *ReplaySolver) Setup(b *Boundary) error {
	if b == nil || b.Mask == nil {
		return errors.New("replay: setup without a solid mask")
	}
	r.boundary = b
	log.WithFields(log.Fields{
		"lattice":    b.Mask.Dims(),
		"body_force": b.BodyForce,
		"samples":    len(r.samples),
	}).Info("replay solver ready")
	return nil
}

func (r *ReplaySolver) Boundary() *Boundary {
	return r.boundary
}

func (r *ReplaySolver) Run(ctx context.Context, every int, step StepFunc) error {
	if r.boundary == nil {
		return errors.New("replay: Run before Setup")
	}
	for _, s := range r.samples {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !monitor.Due(s.Iteration, every) {
			continue
		}
		d, err := step(s)
		if err != nil {
			return err
		}
		if d == monitor.Stop {
			return nil
		}
	}
	log.WithField("samples", len(r.samples)).Warn("force history ended before the monitor stopped")
	return nil
}
