package dis

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/batchatco/go-native-modflow/internal"
	"github.com/batchatco/go-native-modflow/modflow/api"
	"github.com/batchatco/go-thrower"
	"gonum.org/v1/gonum/floats"
)

// values per line of INTERNAL arrays
const valuesPerLine = 10

type writer struct {
	bw *bufio.Writer
}

func (w *writer) printf(format string, args ...any) {
	_, err := fmt.Fprintf(w.bw, format, args...)
	thrower.ThrowIfError(err)
}

// WriteDIS writes g in the MODFLOW layout when it has stress periods and in
// the compact layout otherwise. Uniform arrays are written as CONSTANT. The
// writer is flushed but not closed.
func WriteDIS(w io.Writer, g *GridSpec) (err error) {
	defer thrower.RecoverError(&err)
	if err := g.Validate(); err != nil {
		return err
	}
	dw := &writer{bw: bufio.NewWriter(w)}
	for _, t := range g.Text {
		dw.printf("# %s\n", t)
	}
	if g.NPer > 0 {
		dw.modflow(g)
	} else {
		dw.compact(g)
	}
	thrower.ThrowIfError(dw.bw.Flush())
	logger.Infof("wrote %dx%dx%d grid, %d stress periods", g.NLay, g.NRow, g.NCol, g.NPer)
	return nil
}

func (w *writer) modflow(g *GridSpec) {
	w.printf("%d %d %d %d %d %d\n", g.NLay, g.NRow, g.NCol, g.NPer, int(g.ITMUNI), int(g.LENUNI))
	cbd := make([]string, g.NLay)
	for i := range cbd {
		cbd[i] = "0"
		if i < len(g.LayCBD) {
			cbd[i] = strconv.Itoa(g.LayCBD[i])
		}
	}
	w.printf("%s\n", strings.Join(cbd, " "))
	w.array("DELR", g.DelR)
	w.array("DELC", g.DelC)
	if g.Top == nil {
		thrower.Throw(fmt.Errorf("%w: TOP", ErrMissingLayer))
	}
	w.array("TOP", g.Top)
	if len(g.Botm) != g.NBotm() {
		thrower.Throw(fmt.Errorf("%w: %d BOTM arrays, want %d", ErrMissingLayer, len(g.Botm), g.NBotm()))
	}
	for i, b := range g.Botm {
		if b == nil {
			thrower.Throw(fmt.Errorf("%w: BOTM(%d)", ErrMissingLayer, i+1))
		}
		w.array(fmt.Sprintf("BOTM(%d)", i+1), b)
	}
	for _, sp := range g.StressPeriods {
		ss := "TR"
		if sp.SteadyState {
			ss = "SS"
		}
		w.printf("%s %d %s %s\n", num(sp.PerLen), sp.NStp, num(sp.TSMult), ss)
	}
}

// array writes an array control record and its values.
func (w *writer) array(label string, vals []float64) {
	if floats.Min(vals) == floats.Max(vals) {
		w.printf("CONSTANT %s %s\n", num(vals[0]), label)
		return
	}
	w.printf("INTERNAL 1.0 (FREE) -1 %s\n", label)
	w.values(vals)
}

// values writes vals, runs compacted, valuesPerLine to a line.
func (w *writer) values(vals []float64) {
	s := make([]string, len(vals))
	for i, v := range vals {
		s[i] = num(v)
	}
	s = internal.Compact(s)
	for len(s) > 0 {
		n := min(valuesPerLine, len(s))
		w.printf("%s\n", strings.Join(s[:n], " "))
		s = s[n:]
	}
}

func (w *writer) compact(g *GridSpec) {
	w.printf("%d %d %d\n", g.NLay, g.NRow, g.NCol)
	w.values(g.DelR)
	w.values(g.DelC)
	if g.Top != nil {
		w.block("TOP", 1, g.NRow, g.NCol, g.Top)
	}
	for i, b := range g.Botm {
		if b != nil {
			w.block("BOTM", i+1, g.NRow, g.NCol, b)
		}
	}
}

// block writes an elevation array as a text record labelled with its name.
func (w *writer) block(label string, ilay, nrow, ncol int, vals []float64) {
	arr, err := api.NewFloat64Array(nrow, ncol, vals)
	thrower.ThrowIfError(err)
	h := api.ArrayHeader{KStp: 1, KPer: 1, Text: label, NCol: ncol, NRow: nrow, ILay: ilay}
	thrower.ThrowIfError(internal.WriteTextRecord(w.bw, api.Record{Header: h, Array: arr}, api.Double))
}

func num(v float64) string {
	return internal.FormatValue(v, api.Double)
}
