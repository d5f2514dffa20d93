package dis

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/batchatco/go-native-modflow/internal"
	"github.com/batchatco/go-native-modflow/modflow/api"
	"github.com/batchatco/go-native-modflow/modflow/arrayfile"
	"github.com/batchatco/go-thrower"
)

// Limits of a grid worth reading.
const (
	maxCells   = 1 << 24 // per layer
	maxPeriods = 1 << 20
)

type parser struct {
	lr    *internal.LineReader
	opts  *options
	units map[int]*bufio.Reader
	g     *GridSpec
}

// ParseDIS reads a DIS file in either layout. The reader is not closed.
func ParseDIS(r io.Reader, opts ...Option) (g *GridSpec, err error) {
	defer thrower.RecoverError(&err)
	p := newParser(r, opts)
	p.comments()
	if p.header() {
		p.modflow()
	} else {
		p.compact()
	}
	p.checkEnd()
	if err := p.g.Validate(); err != nil {
		p.fail("grid", "inconsistent", err)
	}
	return p.g, nil
}

func newParser(r io.Reader, opts []Option) *parser {
	p := &parser{
		lr:    internal.NewLineReader(r),
		opts:  &options{},
		units: map[int]*bufio.Reader{},
		g:     &GridSpec{},
	}
	for _, opt := range opts {
		opt(p.opts)
	}
	return p
}

func (p *parser) fail(field, msg string, err error) {
	e := &GridParseError{Line: p.lr.Line(), Field: field, Msg: msg, Err: err}
	logger.Error(e)
	thrower.Throw(e)
}

func (p *parser) failf(field, format string, args ...any) {
	p.fail(field, fmt.Sprintf(format, args...), nil)
}

// line returns the next line, which must exist.
func (p *parser) line(field string) string {
	s, err := p.lr.Next()
	if err == io.EOF {
		p.failf(field, "unexpected end of file")
	}
	if err != nil {
		p.fail(field, "read failed", err)
	}
	return s
}

func (p *parser) tokens(field, line string) []internal.Token {
	toks, err := internal.Tokenize(line)
	if err != nil {
		p.fail(field, "bad input", err)
	}
	return toks
}

// expand expands toks, allowing repeat counts up to limit values in all.
func (p *parser) expand(field string, toks []internal.Token, limit int) []string {
	vals, err := internal.Expand(toks, limit)
	if err != nil {
		p.fail(field, "bad input", err)
	}
	return vals
}

func (p *parser) comments() {
	for {
		s, err := p.lr.Next()
		if err == io.EOF {
			p.failf("NLAY", "missing header")
		}
		if err != nil {
			p.fail("NLAY", "read failed", err)
		}
		trimmed := strings.TrimSpace(s)
		switch {
		case strings.HasPrefix(trimmed, "#"):
			p.g.Text = append(p.g.Text, strings.TrimSpace(trimmed[1:]))
		case trimmed == "":
		default:
			p.lr.Unread()
			return
		}
	}
}

// header reads NLAY NROW NCOL [NPER ITMUNI LENUNI] and reports whether it is
// the full MODFLOW header.
func (p *parser) header() bool {
	names := []string{"NLAY", "NROW", "NCOL", "NPER", "ITMUNI", "LENUNI"}
	vals := p.expand("NLAY", p.tokens("NLAY", p.line("NLAY")), len(names))
	if len(vals) < 3 {
		p.failf(names[len(vals)], "missing")
	}
	if len(vals) > len(names) {
		logger.Info("ignoring", len(vals)-len(names), "extra header fields")
		vals = vals[:len(names)]
	}
	ints := make([]int, len(names))
	for i, s := range vals {
		ints[i] = p.atoi(names[i], s)
	}
	for i := range 3 {
		if ints[i] < 1 {
			p.failf(names[i], "must be positive, got %d", ints[i])
		}
	}
	if ints[0] > arrayfile.MaxLayer {
		p.failf("NLAY", "%d layers, at most %d", ints[0], arrayfile.MaxLayer)
	}
	for i := 1; i < 3; i++ {
		if ints[i] > arrayfile.MaxDimension {
			p.failf(names[i], "%d, at most %d", ints[i], arrayfile.MaxDimension)
		}
	}
	if ints[1]*ints[2] > maxCells {
		p.failf("NCOL", "%d cells per layer, at most %d", ints[1]*ints[2], maxCells)
	}
	g := p.g
	g.NLay, g.NRow, g.NCol = ints[0], ints[1], ints[2]
	if len(vals) == 3 {
		return false
	}
	g.NPer, g.ITMUNI, g.LENUNI = ints[3], TimeUnit(ints[4]), LengthUnit(ints[5])
	if g.NPer < 1 || g.NPer > maxPeriods {
		p.failf("NPER", "must be 1 to %d, got %d", maxPeriods, g.NPer)
	}
	if g.ITMUNI < 0 || int(g.ITMUNI) >= len(timeUnitNames) {
		p.failf("ITMUNI", "unknown time unit %d", g.ITMUNI)
	}
	if g.LENUNI < 0 || int(g.LENUNI) >= len(lengthUnitNames) {
		p.failf("LENUNI", "unknown length unit %d", g.LENUNI)
	}
	return true
}

func (p *parser) atoi(field, s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		p.failf(field, "bad integer %q", s)
	}
	return v
}

func (p *parser) atof(field, s string) float64 {
	v, err := strconv.ParseFloat(fortranFloat(s), 64)
	if err != nil {
		p.failf(field, "bad number %q", s)
	}
	return v
}

// fortranFloat accepts the D exponent of double precision Fortran output.
func fortranFloat(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 'd' || r == 'D' {
			return 'e'
		}
		return r
	}, s)
}

func (p *parser) modflow() {
	g := p.g
	// LAYCBD may run over several lines
	var cbd []string
	for len(cbd) < g.NLay {
		cbd = append(cbd, p.expand("LAYCBD", p.tokens("LAYCBD", p.line("LAYCBD")), g.NLay-len(cbd))...)
	}
	g.LayCBD = make([]int, g.NLay)
	for i := range g.NLay {
		g.LayCBD[i] = p.atoi("LAYCBD", cbd[i])
	}
	if g.NLay > 1 && g.LayCBD[g.NLay-1] != 0 {
		logger.Errorf("line %d: LAYCBD for the bottom layer must be 0, found %d",
			p.lr.Line(), g.LayCBD[g.NLay-1])
	}
	g.DelR = p.array("DELR", 1, g.NCol)
	g.DelC = p.array("DELC", 1, g.NRow)
	g.Top = p.array("TOP", g.NRow, g.NCol)
	g.Botm = make([][]float64, g.NBotm())
	for i := range g.Botm {
		g.Botm[i] = p.array(fmt.Sprintf("BOTM(%d)", i+1), g.NRow, g.NCol)
	}
	g.StressPeriods = make([]StressPeriod, g.NPer)
	for i := range g.StressPeriods {
		g.StressPeriods[i] = p.stressPeriod(i + 1)
	}
	logger.Infof("read %d stress periods, last line %d", g.NPer, p.lr.Line())
}

func (p *parser) stressPeriod(n int) StressPeriod {
	field := fmt.Sprintf("PERIOD(%d)", n)
	vals := p.expand(field, p.tokens(field, p.line(field)), 4)
	if len(vals) < 4 {
		p.failf(field, "want PERLEN NSTP TSMULT SS/TR, got %d fields", len(vals))
	}
	sp := StressPeriod{
		PerLen: p.atof("PERLEN", vals[0]),
		NStp:   p.atoi("NSTP", vals[1]),
		TSMult: p.atof("TSMULT", vals[2]),
	}
	switch strings.ToUpper(vals[3]) {
	case "SS":
		sp.SteadyState = true
	case "TR":
	default:
		p.failf(field, "want SS or TR, got %q", vals[3])
	}
	if sp.NStp < 1 {
		p.failf("NSTP", "must be positive, got %d", sp.NStp)
	}
	return sp
}

func (p *parser) compact() {
	g := p.g
	g.DelR = p.bare("DELR", g.NCol)
	g.DelC = p.bare("DELC", g.NRow)
	shape := api.Shape{NRow: g.NRow, NCol: g.NCol}
	for {
		if err := p.lr.Skip(); err == io.EOF {
			return
		} else if err != nil {
			p.fail("TOP", "read failed", err)
		}
		rec, embedded, err := internal.ReadTextRecord(p.lr, api.Double, nil)
		if err != nil {
			var tre *internal.TextRecordError
			if errors.As(err, &tre) {
				p.fail("elevation", tre.Msg, tre.Err)
			}
			p.fail("elevation", "read failed", err)
		}
		if embedded != shape {
			p.failf(rec.Header.Text, "shape %v, grid is %v", embedded, shape)
		}
		label := strings.ToUpper(strings.TrimSpace(rec.Header.Text))
		switch label {
		case "TOP":
			g.Top = rec.Array.Float64
		case "BOTM":
			k := rec.Header.ILay
			if k < 1 || k > g.NLay {
				p.failf("BOTM", "layer %d out of range 1..%d", k, g.NLay)
			}
			if g.Botm == nil {
				g.Botm = make([][]float64, g.NLay)
			}
			g.Botm[k-1] = rec.Array.Float64
		default:
			p.failf("elevation", "unknown block %q, want TOP or BOTM", rec.Header.Text)
		}
	}
}

// bare reads n free-format values that may span several lines.
// The expanded count has to come out exactly at n.
// A line starting with a control keyword is read as an array control record.
func (p *parser) bare(field string, n int) []float64 {
	first := p.line(field)
	p.lr.Unread()
	if f := strings.Fields(first); len(f) > 0 && isControlWord(f[0]) {
		return p.array(field, 1, n)
	}
	var vals []string
	for len(vals) < n {
		vals = append(vals, p.expand(field, p.tokens(field, p.line(field)), n-len(vals))...)
	}
	if len(vals) != n {
		p.failf(field, "%d values after expansion, want %d", len(vals), n)
	}
	return p.floats(field, vals, 1)
}

func (p *parser) floats(field string, vals []string, scale float64) []float64 {
	out := make([]float64, len(vals))
	for i, s := range vals {
		out[i] = p.atof(field, s) * scale
	}
	return out
}

func (p *parser) checkEnd() {
	last := p.lr.Line()
	extra := 0
	for {
		s, err := p.lr.Next()
		if err != nil {
			break
		}
		if strings.TrimSpace(s) != "" {
			extra++
		}
	}
	if extra > 0 {
		logger.Warnf("finished reading %d lines, but %d more lines are not empty", last, extra)
	} else {
		logger.Infof("finished reading %d lines", last)
	}
}
