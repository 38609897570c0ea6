package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ductflow/geometry"
	"ductflow/model"
)

func testConfig() Config {
	return Config{
		Interval:  500,
		MinIters:  20000,
		MaxIters:  600000,
		Tolerance: 1e-4,
		Epsilon:   1e-2,
	}
}

type countingCleaner struct{ calls int }

func (c *countingCleaner) Clean() error {
	c.calls++
	return nil
}

func sample(it int, f ...float64) model.ForceSample {
	return model.ForceSample{Iteration: it, Force: model.Force{f[0], f[1], f[2]}}
}

func TestMonitorWarmupIgnoresSteadyForces(t *testing.T) {
	c := &countingCleaner{}
	m, err := New(testConfig(), c)
	require.NoError(t, err)

	for it := 500; it < 20000; it += 500 {
		d, err := m.Observe(sample(it, 1, 1, 1))
		require.NoError(t, err)
		assert.Equal(t, Continue, d)
		assert.Equal(t, Warmup, m.State())
	}
	assert.Equal(t, 0, c.calls)

	d, err := m.Observe(sample(20000, 1, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, Stop, d)
	assert.Equal(t, Converged, m.State())
	assert.Equal(t, 1, c.calls)
}

func TestMonitorIdenticalSamplesConvergeForAnyTolerance(t *testing.T) {
	for _, tol := range []float64{0, 1e-12, 1e-4, 1} {
		cfg := testConfig()
		cfg.Tolerance = tol
		m, err := New(cfg, nil)
		require.NoError(t, err)

		d, err := m.Observe(sample(25000, 3, -2, 0))
		require.NoError(t, err)
		assert.Equal(t, Continue, d)
		assert.Equal(t, Monitoring, m.State())

		d, err = m.Observe(sample(25500, 3, -2, 0))
		require.NoError(t, err)
		assert.Equal(t, Stop, d, "tolerance %v", tol)
		assert.Equal(t, Converged, m.State())
	}
}

func TestMonitorForcedAtBudget(t *testing.T) {
	cfg := testConfig()
	c := &countingCleaner{}
	m, err := New(cfg, c)
	require.NoError(t, err)

	d, err := m.Observe(sample(cfg.MaxIters-1000, 1, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, Continue, d)

	d, err = m.Observe(sample(cfg.MaxIters-1, 5, -7, 9))
	require.NoError(t, err)
	assert.Equal(t, Stop, d)
	assert.Equal(t, Converged, m.State())
	assert.Equal(t, 1, c.calls)
	assert.Greater(t, m.Last().MaxDiff, 1.0)
}

func TestMonitorSmallChangeConverges(t *testing.T) {
	m, err := New(testConfig(), nil)
	require.NoError(t, err)
	_, err = m.Observe(sample(24500, 1.0, 0.5, 0.0))
	require.NoError(t, err)

	d, err := m.Observe(sample(25000, 1.00005, 0.50002, 0.0))
	require.NoError(t, err)
	diff := m.Last().Diff
	assert.InDelta(t, 5e-5, diff[0], 1e-6)
	assert.InDelta(t, 4e-5, diff[1], 2e-6)
	assert.Equal(t, 0.0, diff[2])
	assert.Equal(t, Stop, d)
}

func TestMonitorNearZeroComponentUsesEpsilon(t *testing.T) {
	// z 分量 0 -> 1e-5：分母为 |f|+ε ≈ 1e-2，相对变化约 1e-3，大于容差
	m, err := New(testConfig(), nil)
	require.NoError(t, err)
	_, err = m.Observe(sample(24500, 1.0, 0.5, 0.0))
	require.NoError(t, err)

	d, err := m.Observe(sample(25000, 1.00005, 0.50002, 0.00001))
	require.NoError(t, err)
	diff := m.Last().Diff
	assert.InDelta(t, 1e-5/(1e-5+1e-2), diff[2], 1e-12)
	assert.Equal(t, Continue, d)
	assert.Equal(t, Monitoring, m.State())
}

func TestMonitorLargeChangeContinues(t *testing.T) {
	m, err := New(testConfig(), nil)
	require.NoError(t, err)
	_, err = m.Observe(sample(30000, 1, 1, 1))
	require.NoError(t, err)
	d, err := m.Observe(sample(30500, 1.1, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, Continue, d)
	assert.Equal(t, Monitoring, m.State())
}

func TestMonitorRejectsRegressingIteration(t *testing.T) {
	m, err := New(testConfig(), nil)
	require.NoError(t, err)
	_, err = m.Observe(sample(1000, 1, 1, 1))
	require.NoError(t, err)

	d, err := m.Observe(sample(1000, 1, 1, 1))
	assert.ErrorIs(t, err, ErrNonMonotonic)
	assert.ErrorIs(t, err, geometry.ErrInconsistentGeometry)
	assert.Equal(t, Stop, d)

	_, err = m.Observe(sample(500, 1, 1, 1))
	assert.ErrorIs(t, err, ErrNonMonotonic)
}

func TestMonitorStopsAfterConvergedWithoutCleaningTwice(t *testing.T) {
	c := &countingCleaner{}
	m, err := New(testConfig(), c)
	require.NoError(t, err)
	_, _ = m.Observe(sample(25000, 1, 1, 1))
	_, _ = m.Observe(sample(25500, 1, 1, 1))
	d, err := m.Observe(sample(26000, 9, 9, 9))
	require.NoError(t, err)
	assert.Equal(t, Stop, d)
	assert.Equal(t, 1, c.calls)
}

func TestMonitorProgressHook(t *testing.T) {
	m, err := New(testConfig(), nil)
	require.NoError(t, err)
	var got []model.Progress
	m.OnProgress(func(p model.Progress) { got = append(got, p) })

	_, _ = m.Observe(sample(500, 1, 2, 3))
	_, _ = m.Observe(sample(21000, 1, 2, 3))
	require.Len(t, got, 2)
	assert.Equal(t, "warmup", got[0].State)
	assert.Equal(t, 21000, got[1].Iteration)
	assert.Equal(t, "converged", got[1].State)
}

func TestMonitorCleanupError(t *testing.T) {
	m, err := New(testConfig(), CleanerFunc(func() error { return assert.AnError }))
	require.NoError(t, err)
	_, _ = m.Observe(sample(25000, 1, 1, 1))
	d, err := m.Observe(sample(25500, 1, 1, 1))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, Stop, d)
}

func TestDue(t *testing.T) {
	assert.True(t, Due(0, 500))
	assert.True(t, Due(1500, 500))
	assert.False(t, Due(1501, 500))
	assert.True(t, Due(1501, 0))
}

func TestConfigValidate(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.Interval = 0 },
		func(c *Config) { c.MinIters = -1 },
		func(c *Config) { c.MaxIters = 0 },
		func(c *Config) { c.MaxIters = c.MinIters - 1 },
		func(c *Config) { c.Tolerance = -1 },
		func(c *Config) { c.Epsilon = 0 },
	}
	for i, f := range bad {
		cfg := testConfig()
		f(&cfg)
		_, err := New(cfg, nil)
		assert.ErrorIs(t, err, ErrConfig, "case %d", i)
	}
}

func TestDiff(t *testing.T) {
	d := Diff(model.Force{1, 0, -2}, model.Force{1, 0, -2}, 1e-2)
	assert.Equal(t, model.Force{}, d)
	d = Diff(model.Force{0, 0, 0}, model.Force{0, 0, 1}, 1e-2)
	assert.InDelta(t, 1/1.01, d[2], 1e-12)
}
