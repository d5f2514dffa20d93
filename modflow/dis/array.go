package dis

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/batchatco/go-native-modflow/internal"
	"github.com/batchatco/go-native-modflow/modflow/arrayfile"
	"github.com/batchatco/go-thrower"
)

// Array control records, as read by U1DREL and U2DREL:
//
//	CONSTANT   CNSTNT
//	INTERNAL   CNSTNT FMTIN [IPRN]
//	EXTERNAL   NUNIT CNSTNT FMTIN IPRN
//	OPEN/CLOSE FNAME CNSTNT FMTIN IPRN
//
// or the fixed-format LOCAT(I10) CNSTNT(F10) FMTIN(A20) IPRN(I10). Text
// after the fields, or after a '#', labels the array.

// ArrayKind is the type of the values of an array.
type ArrayKind int

const (
	Real    ArrayKind = iota + 1 // U2DREL, U1DREL
	Integer                      // U2DINT
)

func (k ArrayKind) String() string {
	switch k {
	case Real:
		return "real"
	case Integer:
		return "integer"
	}
	return "unknown"
}

// Array is one array read with its control record. Reals holds the values
// of a Real array and Ints those of an Integer one, row by row.
type Array struct {
	NRow  int
	NCol  int
	Kind  ArrayKind
	Reals []float64
	Ints  []int
	Text  string // label of the control record
}

// ReadArray reads one array of nrow*ncol values from r, control record
// first. EXTERNAL, OPEN/CLOSE and fixed-format records reading another unit
// need WithResolver. The CNSTNT of an Integer array must be an integer, and
// integer arrays can't be BINARY. The reader is not closed.
func ReadArray(r io.Reader, nrow, ncol int, kind ArrayKind, opts ...Option) (arr Array, err error) {
	defer thrower.RecoverError(&err)
	if nrow < 1 || ncol < 1 || nrow > arrayfile.MaxDimension || ncol > arrayfile.MaxDimension ||
		nrow*ncol > maxCells {
		return Array{}, fmt.Errorf("%w: array shape %dx%d", ErrInvalidGrid, nrow, ncol)
	}
	if kind != Real && kind != Integer {
		return Array{}, fmt.Errorf("%w: array kind %d", ErrInvalidGrid, int(kind))
	}
	p := newParser(r, opts)
	return p.read("ARRAY", nrow, ncol, kind), nil
}

var fmtinRe = regexp.MustCompile(`\((?:(\d*)([IEFG][SN]?)(\d+)(?:\.(\d+))?|(FREE)|(BINARY))\)`)

const fixedKind = "FIXED"

type controlRecord struct {
	kind   string
	locat  int
	nunit  int
	fname  string
	cnstnt string
	fmtin  string
	iprn   string
	text   string
}

// format is a parsed FMTIN.
type format struct {
	free   bool
	binary bool
	rep    int
	width  int
}

func isControlWord(s string) bool {
	switch strings.ToUpper(s) {
	case "CONSTANT", "INTERNAL", "EXTERNAL", "OPEN/CLOSE":
		return true
	}
	return false
}

func parseFormat(fmtin string) (format, bool) {
	m := fmtinRe.FindStringSubmatch(strings.ToUpper(fmtin))
	switch {
	case m == nil:
		return format{}, false
	case m[5] != "":
		return format{free: true}, true
	case m[6] != "":
		return format{binary: true}, true
	}
	f := format{rep: 1}
	if m[1] != "" {
		f.rep, _ = strconv.Atoi(m[1])
	}
	f.width, _ = strconv.Atoi(m[3])
	if f.rep < 1 || f.width < 1 {
		return format{}, false
	}
	return f, true
}

func (p *parser) control(field string) controlRecord {
	line := p.line(field)
	var cr controlRecord
	body := line
	if i := strings.IndexByte(line, '#'); i >= 0 {
		cr.text = strings.TrimSpace(line[i+1:])
		body = line[:i]
	}
	f := strings.Fields(body)
	if len(f) == 0 {
		p.failf(field, "missing array control record")
	}
	need := func(n int, syntax string) {
		if len(f) < n {
			p.failf(field, "want %s, got %q", syntax, line)
		}
	}
	label := func(from int) {
		if cr.text == "" && len(f) > from {
			cr.text = strings.Join(f[from:], " ")
		}
	}
	cr.kind = strings.ToUpper(f[0])
	switch cr.kind {
	case "CONSTANT":
		need(2, "CONSTANT CNSTNT")
		cr.cnstnt = f[1]
		label(2)
	case "INTERNAL":
		need(3, "INTERNAL CNSTNT FMTIN [IPRN]")
		cr.cnstnt = f[1]
		cr.fmtin = f[2]
		if len(f) > 3 {
			cr.iprn = f[3]
		}
		label(4)
	case "EXTERNAL":
		need(5, "EXTERNAL NUNIT CNSTNT FMTIN IPRN")
		cr.nunit = p.atoi(field, f[1])
		cr.cnstnt = f[2]
		cr.fmtin, cr.iprn = f[3], f[4]
		label(5)
	case "OPEN/CLOSE":
		need(5, "OPEN/CLOSE FNAME CNSTNT FMTIN IPRN")
		cr.fname = f[1]
		cr.cnstnt = f[2]
		cr.fmtin, cr.iprn = f[3], f[4]
		label(5)
	default:
		p.fixedControl(field, line, &cr)
	}
	return cr
}

func (p *parser) fixedControl(field, line string, cr *controlRecord) {
	col := func(from, to int) string {
		if from >= len(line) {
			return ""
		}
		return strings.TrimSpace(line[from:min(to, len(line))])
	}
	locat, err := strconv.Atoi(col(0, 10))
	if err != nil || len(line) <= 10 {
		p.failf(field, "array control record not understood: %q", line)
	}
	// text read from a unit needs FMTIN, which starts at column 21
	if locat > 0 && len(line) <= 20 {
		p.failf(field, "array control record has no FMTIN: %q", line)
	}
	cr.kind = fixedKind
	cr.locat = locat
	cr.cnstnt = col(10, 20)
	cr.fmtin = col(20, 40)
	cr.iprn = col(40, 50)
	if cr.text == "" {
		cr.text = col(50, len(line))
	}
}

// array reads one real array of nrow*ncol values, control record first.
func (p *parser) array(field string, nrow, ncol int) []float64 {
	return p.read(field, nrow, ncol, Real).Reals
}

func (p *parser) read(field string, nrow, ncol int, kind ArrayKind) Array {
	cr := p.control(field)
	start := p.lr.Line()
	n := nrow * ncol
	arr := Array{NRow: nrow, NCol: ncol, Kind: kind, Text: cr.text}
	if cr.kind == "CONSTANT" || (cr.kind == fixedKind && cr.locat == 0) {
		if kind == Integer {
			arr.Ints = slices.Repeat([]int{p.intConstant(field, cr.cnstnt)}, n)
		} else {
			arr.Reals = slices.Repeat([]float64{p.realConstant(field, cr.cnstnt)}, n)
		}
		logger.Infof("line %d: %s is constant %s", start, field, cr.cnstnt)
		return arr
	}
	fm, ok := parseFormat(cr.fmtin)
	if cr.kind == fixedKind && cr.locat < 0 {
		fm, ok = format{binary: true}, true
	}
	if !ok {
		p.failf(field, "cannot understand Fortran format %q", cr.fmtin)
	}
	if kind == Integer && fm.binary {
		p.failf(field, "binary integer arrays are not supported")
	}
	// a zero multiplier means none
	var iscale int
	var rscale float64
	if kind == Integer {
		if iscale = p.intConstant(field, cr.cnstnt); iscale == 0 {
			iscale = 1
		}
	} else if rscale = p.realConstant(field, cr.cnstnt); rscale == 0 {
		rscale = 1
	}
	src := p.source(field, cr, fm.binary)
	lr := p.lr
	if src != nil && !fm.binary {
		lr = internal.NewLineReader(src)
	}
	switch {
	case kind == Integer:
		arr.Ints = p.ints(field, p.text(field, lr, fm, n), iscale)
	case fm.binary:
		arr.Reals = p.binary(field, src, nrow, ncol, rscale)
	default:
		arr.Reals = p.floats(field, p.text(field, lr, fm, n), rscale)
	}
	if cr.text != "" {
		logger.Infof("line %d: read %s (%d values) with text %q", start, field, n, cr.text)
	} else {
		logger.Infof("line %d: read %s (%d values)", start, field, n)
	}
	return arr
}

func (p *parser) realConstant(field, s string) float64 {
	if s == "" {
		return 0
	}
	return p.atof(field, s)
}

// intConstant reads the CNSTNT of an integer array, which must be an integer.
func (p *parser) intConstant(field, s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.failf(field, "CNSTNT %q of an integer array is not an integer", s)
	}
	return v
}

func (p *parser) ints(field string, vals []string, scale int) []int {
	out := make([]int, len(vals))
	for i, s := range vals {
		out[i] = p.atoi(field, s) * scale
	}
	return out
}

// source returns where the array data of cr is, nil for the DIS file itself.
func (p *parser) source(field string, cr controlRecord, binary bool) *bufio.Reader {
	switch cr.kind {
	case "INTERNAL":
		if binary {
			p.failf(field, "INTERNAL arrays can't be binary")
		}
		return nil
	case "EXTERNAL":
		return p.unit(field, cr.nunit)
	case "OPEN/CLOSE":
		if p.opts.resolver == nil {
			p.fail(field, fmt.Sprintf("OPEN/CLOSE %s", cr.fname), ErrNoResolver)
		}
		r, err := p.opts.resolver.Open(cr.fname)
		if err != nil {
			p.fail(field, fmt.Sprintf("OPEN/CLOSE %s", cr.fname), err)
		}
		return bufio.NewReader(r)
	}
	nunit := cr.locat
	if nunit < 0 {
		nunit = -nunit
	}
	if nunit == p.opts.unit || (p.opts.resolver == nil && cr.locat > 0) {
		if binary {
			p.failf(field, "binary array on the DIS file's own unit %d", nunit)
		}
		return nil
	}
	return p.unit(field, nunit)
}

func (p *parser) unit(field string, nunit int) *bufio.Reader {
	if br, has := p.units[nunit]; has {
		return br
	}
	if p.opts.resolver == nil {
		p.fail(field, fmt.Sprintf("unit %d", nunit), ErrNoResolver)
	}
	r, err := p.opts.resolver.Unit(nunit)
	if err != nil {
		p.fail(field, fmt.Sprintf("unit %d", nunit), err)
	}
	br := bufio.NewReader(r)
	p.units[nunit] = br
	return br
}

// text reads n values in format fm.
func (p *parser) text(field string, lr *internal.LineReader, fm format, n int) []string {
	var vals []string
	for len(vals) < n {
		line := p.lineFrom(field, lr)
		if fm.free {
			vals = append(vals, p.expand(field, p.tokens(field, line), n-len(vals))...)
			continue
		}
		pos := 0
		for range fm.rep {
			if pos >= len(line) {
				break
			}
			item := strings.TrimSpace(line[pos:min(pos+fm.width, len(line))])
			pos += fm.width
			if item != "" {
				vals = append(vals, item)
			}
		}
	}
	if len(vals) != n {
		p.failf(field, "%d values after expansion, want %d", len(vals), n)
	}
	return vals
}

func (p *parser) lineFrom(field string, lr *internal.LineReader) string {
	if lr == p.lr {
		return p.line(field)
	}
	s, err := lr.Next()
	if err != nil {
		p.fail(field, "external array ended early", err)
	}
	return s
}

// binary reads one record of an unformatted array file.
func (p *parser) binary(field string, br *bufio.Reader, nrow, ncol int, scale float64) []float64 {
	rd := arrayfile.ReadArrays(br, arrayfile.WithShape(nrow, ncol))
	if !rd.Next() {
		err := rd.Err()
		if err == nil {
			err = fmt.Errorf("no array record")
		}
		p.fail(field, "binary array", err)
	}
	vals := rd.Record().Array.Values()
	for i := range vals {
		vals[i] *= scale
	}
	return vals
}
