package monitor

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"ductflow/geometry"
	"ductflow/model"
)

var (
	// ErrNonMonotonic is fatal like a geometry inconsistency: the callback
	// sequence can no longer be trusted.
	ErrNonMonotonic = fmt.Errorf("monitor: iteration counter did not advance: %w", geometry.ErrInconsistentGeometry)
	ErrConfig       = errors.New("monitor: invalid configuration")
)

type State int

const (
	Warmup State = iota
	Monitoring
	Converged
)

func (s State) String() string {
	switch s {
	case Warmup:
		return "warmup"
	case Monitoring:
		return "monitoring"
	case Converged:
		return "converged"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Decision 返回给求解器的控制信号
type Decision int

const (
	Continue Decision = iota
	Stop
)

func (d Decision) String() string {
	if d == Stop {
		return "stop"
	}
	return "continue"
}

// Config 监测参数，全部必须显式给出
type Config struct {
	Interval  int     // iterations between samples
	MinIters  int     // no termination check before this iteration
	MaxIters  int     // iteration budget
	Tolerance float64 // relative force change regarded as steady
	Epsilon   float64 // stabilises the relative difference near zero force
}

func (c Config) Validate() error {
	switch {
	case c.Interval <= 0:
		return fmt.Errorf("%w: interval %d", ErrConfig, c.Interval)
	case c.MinIters < 0:
		return fmt.Errorf("%w: min iters %d", ErrConfig, c.MinIters)
	case c.MaxIters <= 0 || c.MaxIters < c.MinIters:
		return fmt.Errorf("%w: max iters %d (min %d)", ErrConfig, c.MaxIters, c.MinIters)
	case c.Tolerance < 0 || math.IsNaN(c.Tolerance):
		return fmt.Errorf("%w: tolerance %v", ErrConfig, c.Tolerance)
	case c.Epsilon <= 0 || math.IsNaN(c.Epsilon):
		return fmt.Errorf("%w: epsilon %v", ErrConfig, c.Epsilon)
	}
	return nil
}

// Cleaner 收敛时调用一次，清理输出文件
type Cleaner interface {
	Clean() error
}

type CleanerFunc func() error

func (f CleanerFunc) Clean() error {
	return f()
}

// Monitor decides when the force on the tracked object has stopped changing.
// One solver drives one Monitor; it is not safe for concurrent use.
type Monitor struct {
	cfg     Config
	state   State
	prev    model.ForceSample
	hasPrev bool
	last    model.Progress

	cleaner    Cleaner
	onProgress func(model.Progress)
}

func New(cfg Config, cleaner Cleaner) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Monitor{cfg: cfg, cleaner: cleaner}, nil
}

// OnProgress registers a hook called after every sample. It runs on the
// solver's callback path and must not block.
func (m *Monitor) OnProgress(f func(model.Progress)) {
	m.onProgress = f
}

func (m *Monitor) State() State {
	return m.state
}

func (m *Monitor) Config() Config {
	return m.cfg
}

// Last returns the progress of the most recent sample.
func (m *Monitor) Last() model.Progress {
	return m.last
}

// Due reports whether forces are sampled after iteration for the given
// monitoring interval. A non-positive interval samples every iteration.
func Due(iteration, interval int) bool {
	return interval <= 0 || iteration%interval == 0
}

// Diff is |curr - prev| / (|curr| + eps) per component.
func Diff(prev, curr model.Force, eps float64) model.Force {
	var d model.Force
	for i := range d {
		d[i] = math.Abs(curr[i]-prev[i]) / (math.Abs(curr[i]) + eps)
	}
	return d
}

func (m *Monitor) steady(diff model.Force) bool {
	for _, d := range diff {
		if d != 0 && !(d < m.cfg.Tolerance) {
			return false
		}
	}
	return true
}

// budgetSpent is true once the next sample would pass MaxIters.
func (m *Monitor) budgetSpent(iteration int) bool {
	return m.cfg.MaxIters < iteration+m.cfg.Interval+1
}

// next is the transition table:
//
//	it < MinIters        -> Warmup
//	budget spent         -> Converged
//	no previous sample   -> Monitoring
//	all components still -> Converged
//	otherwise            -> Monitoring
func (m *Monitor) next(iteration int, steady bool) State {
	switch {
	case m.state == Converged:
		return Converged
	case iteration < m.cfg.MinIters:
		return Warmup
	case m.budgetSpent(iteration):
		return Converged
	case !m.hasPrev:
		return Monitoring
	case steady:
		return Converged
	}
	return Monitoring
}

// Observe consumes one force sample and tells the solver whether to go on.
// On the transition to Converged the cleaner runs exactly once.
func (m *Monitor) Observe(s model.ForceSample) (Decision, error) {
	if m.state == Converged {
		return Stop, nil
	}
	if m.hasPrev && s.Iteration <= m.prev.Iteration {
		return Stop, fmt.Errorf("%w: %d after %d", ErrNonMonotonic, s.Iteration, m.prev.Iteration)
	}

	var diff model.Force
	steady := false
	if m.hasPrev {
		diff = Diff(m.prev.Force, s.Force, m.cfg.Epsilon)
		steady = m.steady(diff)
	}
	from := m.state
	m.state = m.next(s.Iteration, steady)
	m.prev, m.hasPrev = s, true

	maxDiff := math.Max(diff[0], math.Max(diff[1], diff[2]))
	m.last = model.Progress{
		Iteration: s.Iteration,
		Force:     s.Force,
		Diff:      diff,
		State:     m.state.String(),
		MaxDiff:   maxDiff,
	}
	log.WithFields(log.Fields{
		"iteration": s.Iteration,
		"force":     s.Force,
		"diff":      diff,
		"state":     m.state,
	}).Debug("force sample")
	if m.onProgress != nil {
		m.onProgress(m.last)
	}

	if m.state != from {
		log.WithFields(log.Fields{
			"iteration": s.Iteration,
			"from":      from,
			"to":        m.state,
		}).Info("monitor state changed")
	}
	if m.state != Converged {
		return Continue, nil
	}

	if m.budgetSpent(s.Iteration) && !steady {
		log.WithField("max_diff", maxDiff).Warn("iteration budget exhausted before steady state")
	}
	if m.cleaner != nil {
		if err := m.cleaner.Clean(); err != nil {
			return Stop, fmt.Errorf("monitor: cleanup: %w", err)
		}
	}
	return Stop, nil
}
