package config

import (
	"errors"
	"fmt"
	"runtime"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"ductflow/geometry"
	"ductflow/monitor"
	"ductflow/profile"
)

const DefaultPath = "conf/config.ini"

var ErrConfiguration = errors.New("config: invalid configuration")

type Config struct {
	Voxel   VoxelCfg
	Duct    DuctCfg
	Monitor monitor.Config
	Output  OutputCfg
	Server  ServerCfg
	Log     LogCfg
	Workers int
}

type VoxelCfg struct {
	Filename string
	Size     int // 体素分辨率 L
	// Upstream open layers in front of the object along the flow axis
	Upstream int
}

type DuctCfg struct {
	Visc        float64
	ViscScale   float64 // visc = ViscScale * ny / 100 when Visc is not set
	MaxVelocity float64
	WallOffset  float64
}

type OutputCfg struct {
	Prefix string
	Every  int
}

type ServerCfg struct {
	Addr string
}

type LogCfg struct {
	Level string
}

// Load reads an ini file (or []byte / io.Reader, anything ini.Load accepts).
func Load(source interface{}) (*Config, error) {
	file, err := ini.Load(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	cfg, err := loadCfg(file)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadCfg(file *ini.File) (*Config, error) {
	vs := file.Section("voxel")
	size := vs.Key("size").MustInt(32)
	cfg := &Config{
		Voxel: VoxelCfg{
			Filename: vs.Key("filename").MustString("test.binvox"),
			Size:     size,
			Upstream: vs.Key("upstream_margin").MustInt(size / 2),
		},
		Duct: DuctCfg{
			Visc:        file.Section("duct").Key("visc").MustFloat64(0),
			ViscScale:   file.Section("duct").Key("visc_scale").MustFloat64(0.10),
			MaxVelocity: file.Section("duct").Key("max_velocity").MustFloat64(0.08),
			WallOffset:  file.Section("duct").Key("wall_offset").MustFloat64(0.5),
		},
		Output: OutputCfg{
			Prefix: file.Section("output").Key("prefix").MustString("test_flow"),
			Every:  file.Section("output").Key("every").MustInt(5000),
		},
		Server:  ServerCfg{Addr: file.Section("server").Key("addr").MustString(":9000")},
		Log:     LogCfg{Level: file.Section("log").Key("level").MustString("info")},
		Workers: file.Section("runtime").Key("workers").MustInt(runtime.NumCPU()),
	}

	// 监测间隔和预热步数与几何、粘度相关，必须在配置文件中显式给出
	ms := file.Section("monitor")
	for _, k := range []string{"interval", "min_iters"} {
		if !ms.HasKey(k) {
			return nil, fmt.Errorf("%w: [monitor] %s is required", ErrConfiguration, k)
		}
	}
	interval, err := ms.Key("interval").Int()
	if err != nil {
		return nil, fmt.Errorf("%w: [monitor] interval: %v", ErrConfiguration, err)
	}
	minIters, err := ms.Key("min_iters").Int()
	if err != nil {
		return nil, fmt.Errorf("%w: [monitor] min_iters: %v", ErrConfiguration, err)
	}
	cfg.Monitor = monitor.Config{
		Interval:  interval,
		MinIters:  minIters,
		MaxIters:  ms.Key("max_iters").MustInt(600000),
		Tolerance: ms.Key("tolerance").MustFloat64(1e-4),
		Epsilon:   ms.Key("epsilon").MustFloat64(1e-2),
	}

	// 未给出粘度时按格子宽度推导；显式给出的值（包括 0）交给 Validate
	if !file.Section("duct").HasKey("visc") {
		cfg.Duct.Visc = cfg.Duct.ViscScale * float64(cfg.Lattice()[1]) / 100.0
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Voxel.Size <= 0 {
		return fmt.Errorf("%w: voxel size %d", ErrConfiguration, c.Voxel.Size)
	}
	if c.Voxel.Upstream < 0 {
		return fmt.Errorf("%w: upstream margin %d", ErrConfiguration, c.Voxel.Upstream)
	}
	if c.Duct.Visc <= 0 {
		return fmt.Errorf("%w: viscosity %v", ErrConfiguration, c.Duct.Visc)
	}
	if c.Output.Prefix == "" {
		return fmt.Errorf("%w: empty output prefix", ErrConfiguration)
	}
	// 检查点必须落在监测采样点上，收敛时保留的最新检查点才与判定的采样对应
	if c.Output.Every <= 0 || c.Monitor.Interval <= 0 || c.Output.Every%c.Monitor.Interval != 0 {
		return fmt.Errorf("%w: checkpoint every %d is not a positive multiple of monitor interval %d",
			ErrConfiguration, c.Output.Every, c.Monitor.Interval)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if err := c.Monitor.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if _, err := c.Profile(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return nil
}

// Lattice 格子尺寸：横截面 3L/2 x 3L/2，流向 3L
func (c *Config) Lattice() [3]int {
	l := c.Voxel.Size
	return [3]int{3 * l / 2, 3 * l / 2, 3 * l}
}

func (c *Config) Placement() geometry.Placement {
	return geometry.Placement{Lattice: c.Lattice(), Upstream: c.Voxel.Upstream}
}

func (c *Config) Profile() (*profile.Duct, error) {
	n := c.Lattice()
	return profile.DuctFromLattice(n[0], n[1], c.Duct.Visc, c.Duct.MaxVelocity, c.Duct.WallOffset)
}

func (c *Config) BoundaryPath() string {
	return c.Output.Prefix + "_boundary.npy"
}

// ApplyLogging sets the logrus level from the [log] section.
func (c *Config) ApplyLogging() error {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	log.SetLevel(lvl)
	return nil
}
