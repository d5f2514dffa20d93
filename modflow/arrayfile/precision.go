package arrayfile

import (
	"fmt"
	"math"
	"strings"

	"github.com/batchatco/go-native-modflow/internal"
	"github.com/batchatco/go-native-modflow/modflow/api"
	"github.com/batchatco/go-native-modflow/modflow/util"
)

// Limits of a plausible header. Values outside them are taken as a sign that
// the bytes were decoded in the wrong precision.
const (
	MaxDimension = internal.MaxDimension
	MaxLayer     = 1 << 16
)

// Detection is the outcome of precision detection: either one definite
// precision, or several candidates in order of preference.
type Detection struct {
	candidates []api.Precision
}

// Definite returns the precision if exactly one interpretation was plausible.
func (d Detection) Definite() (api.Precision, bool) {
	if len(d.candidates) != 1 {
		return api.Unknown, false
	}
	return d.candidates[0], true
}

// Ambiguous reports whether more than one interpretation was plausible.
func (d Detection) Ambiguous() bool {
	return len(d.candidates) > 1
}

func (d Detection) Candidates() []api.Precision {
	return append([]api.Precision(nil), d.candidates...)
}

// Preferred is the precision to use: the definite one, or double when ambiguous.
func (d Detection) Preferred() api.Precision {
	if len(d.candidates) == 0 {
		return api.Unknown
	}
	return d.candidates[0]
}

func (d Detection) String() string {
	if p, ok := d.Definite(); ok {
		return "definite " + p.String()
	}
	names := make([]string, len(d.candidates))
	for i, p := range d.candidates {
		names[i] = p.String()
	}
	return "ambiguous " + strings.Join(names, "|")
}

// DetectPrecision works out whether b starts with a single or a double
// precision header. A header is plausible when its step and period are
// positive, its times finite and non-negative, its label printable, and its
// shape and layer small. When b is too short for a double header only single
// is tried.
func DetectPrecision(b []byte) (Detection, error) {
	return detectPrecision(b, true, 0)
}

func detectPrecision(b []byte, checkShape bool, offset int64) (Detection, error) {
	if len(b) < api.Single.HeaderSize() {
		return Detection{}, &util.TruncatedRecordError{Need: api.Single.HeaderSize(), Have: len(b)}
	}
	var d Detection
	// double first: it is the wider layout
	for _, p := range []api.Precision{api.Double, api.Single} {
		if len(b) < p.HeaderSize() {
			continue
		}
		h, err := decodeHeader(b, p, checkShape)
		if err != nil {
			logger.Info("not", p, "precision:", err)
			continue
		}
		if reason := implausible(h, checkShape); reason != "" {
			logger.Info("not", p, "precision:", reason)
			continue
		}
		d.candidates = append(d.candidates, p)
	}
	if len(d.candidates) == 0 {
		return Detection{}, &UnknownPrecisionError{Offset: offset}
	}
	return d, nil
}

func implausible(h api.ArrayHeader, checkShape bool) string {
	switch {
	case !validTime(h.PerTim):
		return fmt.Sprint("PERTIM ", h.PerTim)
	case !validTime(h.TotIm):
		return fmt.Sprint("TOTIM ", h.TotIm)
	case checkShape && (h.NCol > MaxDimension || h.NRow > MaxDimension):
		return fmt.Sprintf("shape (%d,%d)", h.NRow, h.NCol)
	case h.ILay > MaxLayer || h.ILay < -MaxLayer:
		return fmt.Sprint("ILAY ", h.ILay)
	}
	return ""
}

func validTime(t float64) bool {
	return !math.IsNaN(t) && !math.IsInf(t, 0) && t >= 0
}

// saneShape reports whether s could be a real grid shape.
func saneShape(s api.Shape) bool {
	return s.NRow >= 1 && s.NCol >= 1 && s.NRow <= MaxDimension && s.NCol <= MaxDimension
}
