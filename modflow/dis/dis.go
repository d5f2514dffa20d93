// Package dis reads and writes discretization (DIS) files, which give the
// grid shape, the cell widths along rows and columns, the layer elevations
// and the stress periods of a model.
//
// Two layouts are read. The MODFLOW layout:
//
//	# comments
//	NLAY NROW NCOL NPER ITMUNI LENUNI
//	LAYCBD(NLAY)
//	DELR(NCOL)           array control record and data
//	DELC(NROW)           array control record and data
//	TOP(NCOL,NROW)       array control record and data
//	BOTM(NCOL,NROW)      one per layer and confining bed
//	PERLEN NSTP TSMULT SS/TR    one line per stress period
//
// and a compact layout with a three-field header, bare DELR and DELC values,
// and optional TOP and BOTM blocks in the text array format.
// In both, count*value stands for count copies of value.
package dis

import (
	"errors"
	"fmt"

	"github.com/batchatco/go-native-modflow/internal"
)

var (
	logger = internal.NewLogger()
)

var (
	ErrGridParse    = errors.New("grid parse error")
	ErrInvalidGrid  = errors.New("invalid grid")
	ErrNoResolver   = errors.New("no resolver for external array")
	ErrMissingLayer = errors.New("missing layer elevations")
)

// GridParseError locates the line of a DIS file that could not be parsed.
type GridParseError struct {
	Line  int
	Field string
	Msg   string
	Err   error
}

func (e *GridParseError) Error() string {
	msg := fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GridParseError) Is(target error) bool {
	return target == ErrGridParse
}

func (e *GridParseError) Unwrap() error {
	return e.Err
}

// SetLogLevel sets the logging level to the given level, and returns
// the old level. The lowest level is 0 (fatal errors only) and the highest
// level is 3 (errors, warnings and debug messages).
func SetLogLevel(level int) int {
	return logger.SetLevel(level)
}

// TimeUnit is ITMUNI.
type TimeUnit int

const (
	TimeUndefined TimeUnit = iota
	Seconds
	Minutes
	Hours
	Days
	Years
)

var timeUnitNames = []string{"?", "s", "min", "h", "d", "y"}

func (u TimeUnit) String() string {
	if u < 0 || int(u) >= len(timeUnitNames) {
		return fmt.Sprintf("TimeUnit(%d)", int(u))
	}
	return timeUnitNames[u]
}

// LengthUnit is LENUNI.
type LengthUnit int

const (
	LengthUndefined LengthUnit = iota
	Feet
	Meters
	Centimeters
)

var lengthUnitNames = []string{"?", "ft", "m", "cm"}

func (u LengthUnit) String() string {
	if u < 0 || int(u) >= len(lengthUnitNames) {
		return fmt.Sprintf("LengthUnit(%d)", int(u))
	}
	return lengthUnitNames[u]
}

type StressPeriod struct {
	PerLen      float64
	NStp        int
	TSMult      float64
	SteadyState bool
}

// GridSpec is the content of a DIS file. Elevation arrays are row-major
// NROW*NCOL slices. Botm holds one array per layer and confining bed; in the
// compact layout entries for layers without a BOTM block are nil.
type GridSpec struct {
	Text          []string
	NLay          int
	NRow          int
	NCol          int
	NPer          int
	ITMUNI        TimeUnit
	LENUNI        LengthUnit
	LayCBD        []int
	DelR          []float64
	DelC          []float64
	Top           []float64
	Botm          [][]float64
	StressPeriods []StressPeriod
}
