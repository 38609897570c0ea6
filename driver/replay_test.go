package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ductflow/geometry"
	"ductflow/model"
	"ductflow/monitor"
)

func TestReadForceLog(t *testing.T) {
	samples, err := ReadForceLog(strings.NewReader(`iteration,force_x,force_y,force_z
# warmup
500, 1.5, -0.25, 0
1000,1.25,-0.5,1e-3
`))
	require.NoError(t, err)
	assert.Equal(t, []model.ForceSample{
		{Iteration: 500, Force: model.Force{1.5, -0.25, 0}},
		{Iteration: 1000, Force: model.Force{1.25, -0.5, 1e-3}},
	}, samples)

	_, err = ReadForceLog(strings.NewReader("500,1,2,3\nx,1,2,3\n"))
	assert.Error(t, err)
	_, err = ReadForceLog(strings.NewReader("500,1,2\n"))
	assert.Error(t, err)
	_, err = ReadForceLog(strings.NewReader("500,1,2,nope\n"))
	assert.Error(t, err)
}

func TestOpenForceLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forces.csv")
	require.NoError(t, os.WriteFile(path, []byte("100,1,1,1\n200,1,1,1\n"), 0o644))
	r, err := OpenForceLog(path)
	require.NoError(t, err)
	assert.Len(t, r.samples, 2)

	_, err = OpenForceLog(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestReplaySolverRun(t *testing.T) {
	r := NewReplaySolver([]model.ForceSample{
		{Iteration: 50}, {Iteration: 100}, {Iteration: 150}, {Iteration: 200}, {Iteration: 300},
	})
	assert.Error(t, r.Run(context.Background(), 100, nil))
	assert.Error(t, r.Setup(&Boundary{}))
	require.NoError(t, r.Setup(&Boundary{Mask: &geometry.SolidMask{}}))

	var seen []int
	err := r.Run(context.Background(), 100, func(s model.ForceSample) (monitor.Decision, error) {
		seen = append(seen, s.Iteration)
		if s.Iteration == 200 {
			return monitor.Stop, nil
		}
		return monitor.Continue, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{100, 200}, seen)
}
