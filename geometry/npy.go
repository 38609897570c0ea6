package geometry

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// 掩码以 NumPy .npy (bool, C 顺序, shape (nx, ny, nz)) 保存，方便下游直接 np.load

const npyMagic = "\x93NUMPY"

// SaveMask writes m to path, replacing any existing file.
func SaveMask(path string, m *SolidMask) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := WriteMask(w, m); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func WriteMask(w io.Writer, m *SolidMask) error {
	header := fmt.Sprintf("{'descr': '|b1', 'fortran_order': False, 'shape': (%d, %d, %d), }", m.Nx, m.Ny, m.Nz)
	// magic(6) + version(2) + len(2) + header + '\n' 对齐到 64 字节
	total := len(npyMagic) + 4 + len(header) + 1
	if r := total % 64; r != 0 {
		header += strings.Repeat(" ", 64-r)
	}
	header += "\n"

	var buf bytes.Buffer
	buf.WriteString(npyMagic)
	buf.Write([]byte{1, 0})
	if err := binary.Write(&buf, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	buf.WriteString(header)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	data := make([]byte, len(m.solid))
	for i, s := range m.solid {
		if s {
			data[i] = 1
		}
	}
	_, err := w.Write(data)
	return err
}

func LoadMask(path string) (*SolidMask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := ReadMask(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func ReadMask(r io.Reader) (*SolidMask, error) {
	pre := make([]byte, len(npyMagic)+4)
	if _, err := io.ReadFull(r, pre); err != nil {
		return nil, err
	}
	if string(pre[:len(npyMagic)]) != npyMagic || pre[6] != 1 {
		return nil, fmt.Errorf("not a version 1 npy file")
	}
	hlen := binary.LittleEndian.Uint16(pre[8:])
	hb := make([]byte, hlen)
	if _, err := io.ReadFull(r, hb); err != nil {
		return nil, err
	}
	header := string(hb)
	if !strings.Contains(header, "'descr': '|b1'") || !strings.Contains(header, "'fortran_order': False") {
		return nil, fmt.Errorf("unsupported npy header %q", strings.TrimSpace(header))
	}
	shape, err := parseShape(header)
	if err != nil {
		return nil, err
	}

	m := &SolidMask{Nx: shape[0], Ny: shape[1], Nz: shape[2]}
	data := make([]byte, m.Nx*m.Ny*m.Nz)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	m.solid = make([]bool, len(data))
	for i, b := range data {
		m.solid[i] = b != 0
	}
	return m, nil
}

func parseShape(header string) ([3]int, error) {
	var shape [3]int
	start := strings.Index(header, "'shape': (")
	if start < 0 {
		return shape, fmt.Errorf("npy header has no shape")
	}
	rest := header[start+len("'shape': ("):]
	end := strings.Index(rest, ")")
	if end < 0 {
		return shape, fmt.Errorf("npy shape not terminated")
	}
	parts := strings.Split(rest[:end], ",")
	n := 0
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if n == 3 {
			return shape, fmt.Errorf("npy shape %q is not 3-dimensional", rest[:end])
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return shape, err
		}
		shape[n] = v
		n++
	}
	if n != 3 {
		return shape, fmt.Errorf("npy shape %q is not 3-dimensional", rest[:end])
	}
	return shape, nil
}
