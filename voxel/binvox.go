package voxel

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"ductflow/model"
)

var ErrFormat = errors.New("voxel: bad binvox data")

// MaxDim 每个轴允许的最大体素数，binvox 本身最多输出 1024^3
const MaxDim = 1024

// Loader 从外部格式读出占据网格
type Loader interface {
	Load(path string) (*Grid, error)
}

// Header binvox 文件头
type Header struct {
	Version   int
	Dims      [3]int
	Translate [3]float64
	Scale     float64
}

// BinvoxLoader reads .binvox files and surrounds the model with Border open
// voxels so that the lattice corner is guaranteed to be exterior space.
type BinvoxLoader struct {
	Border int
}

func (l BinvoxLoader) Load(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h, g, err := ReadBinvox(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.WithFields(log.Fields{
		"file":    path,
		"version": h.Version,
		"dims":    h.Dims,
		"solid":   g.Count(model.CellSolid),
		"border":  l.Border,
	}).Info("binvox loaded")

	if l.Border > 0 {
		g = PadUniform(g, l.Border)
	}
	return g, nil
}

// ReadBinvox decodes a binvox stream. Voxels are stored x-major with z
// before y in the file; the returned grid is indexed [x][y][z].
func ReadBinvox(r *bufio.Reader) (Header, *Grid, error) {
	var h Header
	line, err := readLine(r)
	if err != nil {
		return h, nil, err
	}
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[0] != "#binvox" {
		return h, nil, fmt.Errorf("%w: first line reads %q instead of #binvox", ErrFormat, line)
	}
	if h.Version, err = strconv.Atoi(fields[1]); err != nil {
		return h, nil, fmt.Errorf("%w: version %q", ErrFormat, fields[1])
	}

	h.Dims = [3]int{-1, -1, -1}
	h.Scale = 1
	done := false
	for !done {
		line, err = readLine(r)
		if err != nil {
			return h, nil, fmt.Errorf("%w: header: %v", ErrFormat, err)
		}
		fields = strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "data":
			done = true
		case "dim":
			if err := parseInts(fields[1:], h.Dims[:]); err != nil {
				return h, nil, err
			}
		case "translate":
			if err := parseFloats(fields[1:], h.Translate[:]); err != nil {
				return h, nil, err
			}
		case "scale":
			var s [1]float64
			if err := parseFloats(fields[1:], s[:]); err != nil {
				return h, nil, err
			}
			h.Scale = s[0]
		default:
			log.WithField("keyword", fields[0]).Warn("unrecognized binvox keyword, skipping")
		}
	}
	for _, d := range h.Dims {
		if d <= 0 {
			return h, nil, fmt.Errorf("%w: missing or invalid dim %v", ErrFormat, h.Dims)
		}
		if d > MaxDim {
			return h, nil, fmt.Errorf("%w: dim %v exceeds %d", ErrFormat, h.Dims, MaxDim)
		}
	}

	d0, d1, d2 := h.Dims[0], h.Dims[1], h.Dims[2]
	g := NewGrid(d0, d2, d1)
	total := d0 * d1 * d2
	idx := 0
	var pair [2]byte
	for idx < total {
		if _, err := io.ReadFull(r, pair[:]); err != nil {
			return h, nil, fmt.Errorf("%w: data ends after %d of %d voxels", ErrFormat, idx, total)
		}
		value, count := pair[0], int(pair[1])
		if idx+count > total {
			return h, nil, fmt.Errorf("%w: run overflows grid at voxel %d", ErrFormat, idx)
		}
		if value != 0 {
			for i := idx; i < idx+count; i++ {
				x := i / (d1 * d2)
				z := (i / d2) % d1
				y := i % d2
				g.Set(x, y, z, model.CellSolid)
			}
		}
		idx += count
	}
	return h, g, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func parseInts(fields []string, dst []int) error {
	if len(fields) < len(dst) {
		return fmt.Errorf("%w: expected %d values, got %v", ErrFormat, len(dst), fields)
	}
	for i := range dst {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFormat, err)
		}
		dst[i] = v
	}
	return nil
}

func parseFloats(fields []string, dst []float64) error {
	if len(fields) < len(dst) {
		return fmt.Errorf("%w: expected %d values, got %v", ErrFormat, len(dst), fields)
	}
	for i := range dst {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFormat, err)
		}
		dst[i] = v
	}
	return nil
}
