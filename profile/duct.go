// Package profile evaluates the closed-form velocity of fully developed flow
// in a rectangular duct (White, Viscous Fluid Flow, eq. 3.48) and calibrates
// the body force that drives the lattice to a target peak velocity.
package profile

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// MaxSeriesIndex is the last odd index of the truncated series. Initial
// conditions and force calibration must use the same truncation.
const MaxSeriesIndex = 99

var ErrConfiguration = errors.New("profile: invalid duct configuration")

// Duct 管道截面参数，构造后只读
type Duct struct {
	A, B        float64 // half-widths, A <= B
	Visc        float64
	MaxVelocity float64
	// WallOffset lattice distance between the wall node and the no-slip plane
	WallOffset float64

	// AAxis lattice axis (0 = x, 1 = y) along which A is measured
	AAxis int

	prefactor float64
	force     float64
}

// NewDuct validates the parameters and calibrates the body force. a is
// measured along x. If b < a the two are swapped and A is measured along y.
func NewDuct(a, b, visc, maxV, wallOffset float64) (*Duct, error) {
	for name, v := range map[string]float64{"a": a, "b": b, "visc": visc, "max velocity": maxV, "wall offset": wallOffset} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s = %v", ErrConfiguration, name, v)
		}
	}
	if a <= 0 || b <= 0 {
		return nil, fmt.Errorf("%w: half-widths must be positive, got a=%v b=%v", ErrConfiguration, a, b)
	}
	if visc <= 0 {
		return nil, fmt.Errorf("%w: viscosity must be positive, got %v", ErrConfiguration, visc)
	}
	if wallOffset < 0 {
		return nil, fmt.Errorf("%w: negative wall offset %v", ErrConfiguration, wallOffset)
	}

	d := &Duct{A: a, B: b, Visc: visc, MaxVelocity: maxV, WallOffset: wallOffset}
	if b < a {
		d.A, d.B, d.AAxis = b, a, 1
	}
	d.prefactor = 16 * d.A * d.A / (d.Visc * math.Pi * math.Pi * math.Pi)
	d.force = d.MaxVelocity / (d.prefactor * d.Series(0, 0))
	return d, nil
}

// DuctFromLattice derives the half-widths from an nx*ny cross-section whose
// outermost nodes are walls.
func DuctFromLattice(nx, ny int, visc, maxV, wallOffset float64) (*Duct, error) {
	wx := float64(nx) - 1 - 2*wallOffset
	wy := float64(ny) - 1 - 2*wallOffset
	d, err := NewDuct(wx/2, wy/2, visc, maxV, wallOffset)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"a":     d.A,
		"b":     d.B,
		"visc":  d.Visc,
		"force": d.force,
		"Re":    d.Reynolds(),
	}).Info("duct profile calibrated")
	return d, nil
}

// Series sums the odd-index terms at transverse position (y, z), y along A
// and z along B, both measured from the duct centre.
func (d *Duct) Series(y, z float64) float64 {
	terms := make([]float64, 0, (MaxSeriesIndex+1)/2)
	z = math.Abs(z)
	for i := 1; i <= MaxSeriesIndex; i += 2 {
		fi := float64(i)
		sign := 1.0
		if ((i-1)/2)%2 == 1 {
			sign = -1
		}
		k := fi * math.Pi / (2 * d.A)
		terms = append(terms, sign*(1-coshRatio(k*z, k*d.B))*math.Cos(k*y)/(fi*fi*fi))
	}
	return floats.Sum(terms)
}

// coshRatio returns cosh(x)/cosh(y) for x, y >= 0 without overflowing for
// the large arguments reached by high series indices on wide ducts.
func coshRatio(x, y float64) float64 {
	return math.Exp(x-y) * (1 + math.Exp(-2*x)) / (1 + math.Exp(-2*y))
}

// Prefactor 16a²/(νπ³)
func (d *Duct) Prefactor() float64 {
	return d.prefactor
}

// BodyForce is the streamwise acceleration that yields MaxVelocity at the
// duct centre.
func (d *Duct) BodyForce() float64 {
	return d.force
}

func (d *Duct) Reynolds() float64 {
	return d.A * d.MaxVelocity / d.Visc
}

// Velocity at (y, z) relative to the centre; zero outside the duct.
func (d *Duct) Velocity(y, z float64) float64 {
	if math.Abs(y) > d.A || math.Abs(z) > d.B {
		return 0
	}
	return d.force * d.prefactor * d.Series(y, z)
}

// VelocityAt evaluates the profile at lattice node (hx, hy).
func (d *Duct) VelocityAt(hx, hy int) float64 {
	halfX, halfY := d.A, d.B
	if d.AAxis == 1 {
		halfX, halfY = d.B, d.A
	}
	rx := float64(hx) - d.WallOffset - halfX
	ry := float64(hy) - d.WallOffset - halfY
	if d.AAxis == 1 {
		return d.Velocity(ry, rx)
	}
	return d.Velocity(rx, ry)
}
