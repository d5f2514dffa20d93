package dis

import (
	"fmt"

	"github.com/batchatco/go-native-modflow/modflow/api"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Shape is the shape of one layer.
func (g *GridSpec) Shape() api.Shape {
	return api.Shape{NRow: g.NRow, NCol: g.NCol}
}

// NBotm is the number of BOTM arrays: one per layer and one per confining
// bed.
func (g *GridSpec) NBotm() int {
	n := g.NLay
	if g.NLay > 1 {
		for _, c := range g.LayCBD {
			if c != 0 {
				n++
			}
		}
	}
	return n
}

// Width is the extent along a row, the sum of DELR.
func (g *GridSpec) Width() float64 {
	return floats.Sum(g.DelR)
}

// Height is the extent along a column, the sum of DELC.
func (g *GridSpec) Height() float64 {
	return floats.Sum(g.DelC)
}

// TotalTime is the sum of the stress period lengths.
func (g *GridSpec) TotalTime() float64 {
	lens := make([]float64, len(g.StressPeriods))
	for i, sp := range g.StressPeriods {
		lens[i] = sp.PerLen
	}
	return floats.Sum(lens)
}

// NSteps is the total number of time steps.
func (g *GridSpec) NSteps() int {
	n := 0
	for _, sp := range g.StressPeriods {
		n += sp.NStp
	}
	return n
}

// StepLengths returns the length of each time step of the period. Each step
// is TSMULT times the one before.
func (sp StressPeriod) StepLengths() []float64 {
	if sp.NStp < 1 {
		return nil
	}
	dt := make([]float64, sp.NStp)
	first := sp.PerLen / float64(sp.NStp)
	if sp.TSMult != 1 && sp.TSMult > 0 {
		pow := 1.0
		for range sp.NStp {
			pow *= sp.TSMult
		}
		first = sp.PerLen * (sp.TSMult - 1) / (pow - 1)
	}
	dt[0] = first
	for i := 1; i < len(dt); i++ {
		dt[i] = dt[i-1]
		if sp.TSMult > 0 {
			dt[i] *= sp.TSMult
		}
	}
	return dt
}

// Area returns the cell areas, DELC(i)*DELR(j).
func (g *GridSpec) Area() *mat.Dense {
	var a mat.Dense
	a.Outer(1, mat.NewVecDense(g.NRow, g.DelC), mat.NewVecDense(g.NCol, g.DelR))
	return &a
}

// botmIndex is where the bottom of layer k (1-based) is in Botm.
func (g *GridSpec) botmIndex(k int) int {
	i := k - 1
	if g.NLay > 1 {
		for _, c := range g.LayCBD[:min(k-1, len(g.LayCBD))] {
			if c != 0 {
				i++
			}
		}
	}
	return i
}

// Thickness returns the thickness of layer k (1-based): the elevation above
// the layer minus its bottom. The elevation above is TOP for the first layer
// and the bottom of the layer or confining bed above for the others.
func (g *GridSpec) Thickness(k int) (*mat.Dense, error) {
	if k < 1 || k > g.NLay {
		return nil, fmt.Errorf("%w: layer %d out of range 1..%d", ErrInvalidGrid, k, g.NLay)
	}
	i := g.botmIndex(k)
	var above []float64
	if k == 1 {
		above = g.Top
	} else if i > 0 && i-1 < len(g.Botm) {
		above = g.Botm[i-1]
	}
	var below []float64
	if i < len(g.Botm) {
		below = g.Botm[i]
	}
	if above == nil || below == nil {
		return nil, fmt.Errorf("%w: layer %d", ErrMissingLayer, k)
	}
	n := g.NRow * g.NCol
	th := make([]float64, n)
	floats.SubTo(th, above, below)
	return mat.NewDense(g.NRow, g.NCol, th), nil
}

// Volume returns the cell volumes of layer k (1-based).
func (g *GridSpec) Volume(k int) (*mat.Dense, error) {
	th, err := g.Thickness(k)
	if err != nil {
		return nil, err
	}
	th.MulElem(th, g.Area())
	return th, nil
}

// GeoTransform returns the six-item affine transform of the grid with its
// top left corner at (x, y). Cell sizes are the mean of DELR and DELC; a
// warning is logged when they vary.
func (g *GridSpec) GeoTransform(x, y float64) [6]float64 {
	mean := func(name string, v []float64) float64 {
		m := floats.Sum(v) / float64(len(v))
		if lo, hi := floats.Min(v), floats.Max(v); lo != hi {
			logger.Warnf("%s ranges from %v to %v, using mean %v", name, lo, hi, m)
		}
		return m
	}
	dx := mean("DELR", g.DelR)
	dy := mean("DELC", g.DelC)
	return [6]float64{x, dx, 0, y, 0, -dy}
}

// Validate checks that the array lengths agree with the dimensions.
func (g *GridSpec) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidGrid, fmt.Sprintf(format, args...))
	}
	switch {
	case g.NLay < 1 || g.NRow < 1 || g.NCol < 1:
		return invalid("dimensions %d,%d,%d must be positive", g.NLay, g.NRow, g.NCol)
	case g.NPer < 0:
		return invalid("NPER %d is negative", g.NPer)
	case len(g.DelR) != g.NCol:
		return invalid("%d DELR values, want %d", len(g.DelR), g.NCol)
	case len(g.DelC) != g.NRow:
		return invalid("%d DELC values, want %d", len(g.DelC), g.NRow)
	case g.LayCBD != nil && len(g.LayCBD) != g.NLay:
		return invalid("%d LAYCBD values, want %d", len(g.LayCBD), g.NLay)
	case len(g.StressPeriods) != g.NPer:
		return invalid("%d stress periods, want %d", len(g.StressPeriods), g.NPer)
	case len(g.Botm) > g.NBotm():
		return invalid("%d BOTM arrays, want at most %d", len(g.Botm), g.NBotm())
	}
	n := g.NRow * g.NCol
	if g.Top != nil && len(g.Top) != n {
		return invalid("%d TOP values, want %d", len(g.Top), n)
	}
	for i, b := range g.Botm {
		if b != nil && len(b) != n {
			return invalid("%d BOTM(%d) values, want %d", len(b), i+1, n)
		}
	}
	return nil
}
