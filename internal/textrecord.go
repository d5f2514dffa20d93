package internal

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/batchatco/go-native-modflow/modflow/api"
)

// Text arrays: a header line
//
//	KSTP KPER PERTIM TOTIM 'TEXT' NCOL NROW ILAY
//
// then NROW lines of NCOL values each.

var ErrTextTruncated = errors.New("text record truncated")

// TextRecordError locates a problem in a text record. Err is
// ErrTextTruncated when the input ended inside the record.
type TextRecordError struct {
	Line int
	Msg  string
	Err  error
	Have int // rows read, when truncated
}

func (e *TextRecordError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *TextRecordError) Unwrap() error {
	return e.Err
}

const textHeaderFields = 8

// MaxDimension bounds NROW and NCOL of any array read.
const MaxDimension = 1 << 20

// values reserved up front; the rest grows as rows arrive
const reserveLen = 1 << 16

// ReadTextRecord reads one text record from lr. Blank lines before the header
// are skipped; io.EOF means there was no record left. When shape is not nil
// it is used instead of the header shape, and the header shape is returned
// as found.
func ReadTextRecord(lr *LineReader, p api.Precision, shape *api.Shape) (api.Record, api.Shape, error) {
	if err := lr.Skip(); err != nil {
		return api.Record{}, api.Shape{}, err
	}
	line, err := lr.Next()
	if err != nil {
		return api.Record{}, api.Shape{}, err
	}
	h, err := parseTextHeader(line)
	if err != nil {
		return api.Record{}, api.Shape{}, &TextRecordError{Line: lr.Line(), Msg: err.Error()}
	}
	embedded := h.Shape()
	if shape != nil {
		h.NRow, h.NCol = shape.NRow, shape.NCol
	}
	if h.NRow < 1 || h.NCol < 1 || h.NRow > MaxDimension || h.NCol > MaxDimension {
		return api.Record{}, embedded, &TextRecordError{Line: lr.Line(),
			Msg: fmt.Sprintf("bad shape %v, dimensions must be 1 to %d", h.Shape(), MaxDimension)}
	}
	arr := api.Array{NRow: h.NRow, NCol: h.NCol, Precision: p}
	reserve := min(h.NRow*h.NCol, reserveLen)
	bits := 32
	if p == api.Double {
		bits = 64
		arr.Float64 = make([]float64, 0, reserve)
	} else {
		arr.Float32 = make([]float32, 0, reserve)
	}
	for row := range h.NRow {
		line, err := lr.Next()
		if err == io.EOF {
			return api.Record{}, embedded, &TextRecordError{Line: lr.Line(), Err: ErrTextTruncated, Have: row,
				Msg: fmt.Sprintf("input ends after %d of %d rows", row, h.NRow)}
		}
		if err != nil {
			return api.Record{}, embedded, err
		}
		tokens, err := Tokenize(line)
		if err != nil {
			return api.Record{}, embedded, &TextRecordError{Line: lr.Line(), Msg: err.Error(), Err: err}
		}
		vals, err := Expand(tokens, h.NCol)
		if err != nil {
			return api.Record{}, embedded, &TextRecordError{Line: lr.Line(), Msg: err.Error(), Err: err}
		}
		if len(vals) != h.NCol {
			return api.Record{}, embedded, &TextRecordError{Line: lr.Line(),
				Msg: fmt.Sprintf("row %d has %d values, want %d", row+1, len(vals), h.NCol)}
		}
		for _, s := range vals {
			v, err := strconv.ParseFloat(s, bits)
			if err != nil {
				return api.Record{}, embedded, &TextRecordError{Line: lr.Line(),
					Msg: fmt.Sprintf("bad value %q", s), Err: err}
			}
			if p == api.Double {
				arr.Float64 = append(arr.Float64, v)
			} else {
				arr.Float32 = append(arr.Float32, float32(v))
			}
		}
	}
	return api.Record{Header: h, Array: arr}, embedded, nil
}

func parseTextHeader(line string) (api.ArrayHeader, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return api.ArrayHeader{}, err
	}
	if len(tokens) != textHeaderFields {
		return api.ArrayHeader{}, fmt.Errorf("header has %d fields, want %d", len(tokens), textHeaderFields)
	}
	var h api.ArrayHeader
	ints := []struct {
		name string
		tok  Token
		dst  *int
	}{
		{"KSTP", tokens[0], &h.KStp},
		{"KPER", tokens[1], &h.KPer},
		{"NCOL", tokens[5], &h.NCol},
		{"NROW", tokens[6], &h.NRow},
		{"ILAY", tokens[7], &h.ILay},
	}
	for _, f := range ints {
		if f.tok.Kind != TokenWord {
			return api.ArrayHeader{}, fmt.Errorf("%s: bad integer %q", f.name, f.tok.Text)
		}
		v, err := strconv.Atoi(f.tok.Text)
		if err != nil {
			return api.ArrayHeader{}, fmt.Errorf("%s: bad integer %q", f.name, f.tok.Text)
		}
		*f.dst = v
	}
	for i, dst := range []*float64{&h.PerTim, &h.TotIm} {
		tok := tokens[2+i]
		if tok.Kind != TokenWord {
			return api.ArrayHeader{}, fmt.Errorf("bad time %q", tok.Text)
		}
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return api.ArrayHeader{}, fmt.Errorf("bad time %q", tok.Text)
		}
		*dst = v
	}
	if tokens[4].Kind == TokenRepeat {
		return api.ArrayHeader{}, fmt.Errorf("bad label %q", tokens[4].Text)
	}
	h.Text = strings.TrimRight(tokens[4].Text, " ")
	return h, nil
}

// FormatValue formats v with the fewest digits that read back exactly in precision p.
func FormatValue(v float64, p api.Precision) string {
	if p == api.Single {
		return strconv.FormatFloat(v, 'g', -1, 32)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func quote(label string) (string, error) {
	switch {
	case !strings.Contains(label, "'"):
		return "'" + label + "'", nil
	case !strings.Contains(label, `"`):
		return `"` + label + `"`, nil
	}
	return "", fmt.Errorf("label %q holds both quote characters", label)
}

// WriteTextRecord writes rec as text, values in precision p.
func WriteTextRecord(w io.Writer, rec api.Record, p api.Precision) error {
	h, arr := rec.Header, rec.Array
	label, err := quote(strings.TrimRight(h.Text, " "))
	if err != nil {
		return err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %d %s %s %s %d %d %d\n", h.KStp, h.KPer,
		strconv.FormatFloat(h.PerTim, 'g', -1, 64),
		strconv.FormatFloat(h.TotIm, 'g', -1, 64),
		label, h.NCol, h.NRow, h.ILay)
	for r := range arr.NRow {
		for c := range arr.NCol {
			if c > 0 {
				sb.WriteByte(' ')
			}
			v := arr.At(r, c)
			if p == api.Single && float64(float32(v)) != v && !math.IsNaN(v) {
				return fmt.Errorf("%w: row %d column %d is %v", api.ErrPrecisionLoss, r+1, c+1, v)
			}
			sb.WriteString(FormatValue(v, p))
		}
		sb.WriteByte('\n')
	}
	_, err = io.WriteString(w, sb.String())
	return err
}
