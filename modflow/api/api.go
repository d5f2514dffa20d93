// Package api is common to the different MODFLOW array codecs (binary and text).
package api

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Precision of the reals in an array file. The zero value means unknown.
type Precision int

const (
	Unknown Precision = iota
	Single            // 4-byte reals
	Double            // 8-byte reals
)

var (
	ErrShapeMismatch = errors.New("shape doesn't match values")
	ErrPrecisionLoss = errors.New("value not representable in single precision")
	ErrNoPrecision   = errors.New("precision not set")
)

func (p Precision) String() string {
	switch p {
	case Single:
		return "single"
	case Double:
		return "double"
	}
	return "unknown"
}

// Size is the width in bytes of one real.
func (p Precision) Size() int {
	switch p {
	case Single:
		return 4
	case Double:
		return 8
	}
	return 0
}

// HeaderSize is the width in bytes of an array header written in this precision.
func (p Precision) HeaderSize() int {
	if p == Unknown {
		return 0
	}
	// kstp, kper, ncol, nrow, ilay and the 16-byte label
	return 5*4 + 16 + 2*p.Size()
}

type Shape struct {
	NRow int
	NCol int
}

func (s Shape) Len() int {
	return s.NRow * s.NCol
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d,%d)", s.NRow, s.NCol)
}

// ArrayHeader is the header that precedes every array in an unformatted file.
// ILay is passed through as written; a negative value is a convention of the
// writing program and is not interpreted here.
type ArrayHeader struct {
	KStp   int
	KPer   int
	PerTim float64
	TotIm  float64
	Text   string
	NCol   int
	NRow   int
	ILay   int
}

func (h ArrayHeader) Shape() Shape {
	return Shape{NRow: h.NRow, NCol: h.NCol}
}

// Array is a row-major 2D block. Exactly one of Float32 and Float64 is
// populated, according to Precision.
type Array struct {
	NRow      int
	NCol      int
	Precision Precision
	Float32   []float32
	Float64   []float64
}

// NewFloat32Array returns a single precision array, which takes ownership of vals.
func NewFloat32Array(nrow, ncol int, vals []float32) (Array, error) {
	if nrow < 0 || ncol < 0 || len(vals) != nrow*ncol {
		return Array{}, fmt.Errorf("%w: %d values for shape (%d,%d)",
			ErrShapeMismatch, len(vals), nrow, ncol)
	}
	return Array{NRow: nrow, NCol: ncol, Precision: Single, Float32: vals}, nil
}

// NewFloat64Array returns a double precision array, which takes ownership of vals.
func NewFloat64Array(nrow, ncol int, vals []float64) (Array, error) {
	if nrow < 0 || ncol < 0 || len(vals) != nrow*ncol {
		return Array{}, fmt.Errorf("%w: %d values for shape (%d,%d)",
			ErrShapeMismatch, len(vals), nrow, ncol)
	}
	return Array{NRow: nrow, NCol: ncol, Precision: Double, Float64: vals}, nil
}

func (a Array) Shape() Shape {
	return Shape{NRow: a.NRow, NCol: a.NCol}
}

// Len is the number of values actually held.
func (a Array) Len() int {
	if a.Precision == Single {
		return len(a.Float32)
	}
	return len(a.Float64)
}

// At returns the value at row r, column c (both zero based).
func (a Array) At(r, c int) float64 {
	i := r*a.NCol + c
	if a.Precision == Single {
		return float64(a.Float32[i])
	}
	return a.Float64[i]
}

// Values returns a copy of all the values widened to float64.
func (a Array) Values() []float64 {
	if a.Precision == Double {
		return append([]float64(nil), a.Float64...)
	}
	vals := make([]float64, len(a.Float32))
	for i, v := range a.Float32 {
		vals[i] = float64(v)
	}
	return vals
}

// Rows32 returns the rows of a single precision array as views into its data.
func (a Array) Rows32() [][]float32 {
	rows := make([][]float32, a.NRow)
	for r := range rows {
		rows[r] = a.Float32[r*a.NCol : (r+1)*a.NCol : (r+1)*a.NCol]
	}
	return rows
}

// Rows64 returns the rows of a double precision array as views into its data.
func (a Array) Rows64() [][]float64 {
	rows := make([][]float64, a.NRow)
	for r := range rows {
		rows[r] = a.Float64[r*a.NCol : (r+1)*a.NCol : (r+1)*a.NCol]
	}
	return rows
}

// Dense returns a copy of the array as a gonum matrix.
func (a Array) Dense() *mat.Dense {
	if a.NRow == 0 || a.NCol == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(a.NRow, a.NCol, a.Values())
}

// Convert returns the array in precision p. Narrowing fails with
// ErrPrecisionLoss unless every value survives the conversion exactly.
func (a Array) Convert(p Precision) (Array, error) {
	if p == a.Precision {
		return a, nil
	}
	switch p {
	case Double:
		return Array{NRow: a.NRow, NCol: a.NCol, Precision: Double, Float64: a.Values()}, nil
	case Single:
		vals := make([]float32, len(a.Float64))
		for i, v := range a.Float64 {
			f := float32(v)
			if float64(f) != v && !math.IsNaN(v) {
				return Array{}, fmt.Errorf("%w: element %d is %v", ErrPrecisionLoss, i, v)
			}
			vals[i] = f
		}
		return Array{NRow: a.NRow, NCol: a.NCol, Precision: Single, Float32: vals}, nil
	}
	return Array{}, ErrNoPrecision
}

// Equal reports whether both arrays hold bit-identical values in the same
// precision and shape.
func (a Array) Equal(b Array) bool {
	if a.NRow != b.NRow || a.NCol != b.NCol || a.Precision != b.Precision {
		return false
	}
	if a.Precision == Single {
		if len(a.Float32) != len(b.Float32) {
			return false
		}
		for i := range a.Float32 {
			if math.Float32bits(a.Float32[i]) != math.Float32bits(b.Float32[i]) {
				return false
			}
		}
		return true
	}
	if len(a.Float64) != len(b.Float64) {
		return false
	}
	for i := range a.Float64 {
		if math.Float64bits(a.Float64[i]) != math.Float64bits(b.Float64[i]) {
			return false
		}
	}
	return true
}

// Record is one header and the array that follows it.
type Record struct {
	Header ArrayHeader
	Array  Array
}

// State of a record producer.
type State int

const (
	Ready     State = iota // more records may follow
	Exhausted              // clean end of input
	Failed                 // decoding stopped on an error, see Err
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// RecordReader is a forward-only producer of records. It cannot be restarted.
type RecordReader interface {
	// Next decodes the next record and reports whether one is available.
	// It returns false once the reader is exhausted or failed.
	Next() bool

	// Record returns the record decoded by the last successful Next.
	Record() Record

	// Err returns the error that made the reader fail, or nil.
	Err() error

	State() State
}
