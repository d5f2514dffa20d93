package arrayfile

import (
	"fmt"
	"math"
	"strings"

	"github.com/batchatco/go-native-modflow/internal"
	"github.com/batchatco/go-native-modflow/modflow/api"
	"github.com/batchatco/go-native-modflow/modflow/util"
)

const labelWidth = 16

// Header field names, as in the simulator's documentation.
const (
	fieldKStp   = "KSTP"
	fieldKPer   = "KPER"
	fieldPerTim = "PERTIM"
	fieldTotIm  = "TOTIM"
	fieldText   = "TEXT"
	fieldNCol   = "NCOL"
	fieldNRow   = "NROW"
	fieldILay   = "ILAY"
)

func headerLayout(p api.Precision) util.Layout {
	return util.Layout{
		util.IntField(fieldKStp),
		util.IntField(fieldKPer),
		util.RealField(fieldPerTim, p.Size()),
		util.RealField(fieldTotIm, p.Size()),
		util.TextField(fieldText, labelWidth),
		util.IntField(fieldNCol),
		util.IntField(fieldNRow),
		util.IntField(fieldILay),
	}
}

var layouts = map[api.Precision]util.Layout{
	api.Single: headerLayout(api.Single),
	api.Double: headerLayout(api.Double),
}

// HeaderLayout returns the header layout for precision p.
func HeaderLayout(p api.Precision) (util.Layout, error) {
	l, has := layouts[p]
	if !has {
		return nil, api.ErrNoPrecision
	}
	return l, nil
}

// DecodeHeader decodes a header written in precision p from the start of b.
func DecodeHeader(b []byte, p api.Precision) (api.ArrayHeader, error) {
	h, err := decodeHeader(b, p, true)
	if err != nil {
		return api.ArrayHeader{}, err
	}
	return h, nil
}

// decodeHeader skips the shape checks unless checkShape is set, for files
// whose real shape comes from elsewhere.
func decodeHeader(b []byte, p api.Precision, checkShape bool) (api.ArrayHeader, error) {
	l, err := HeaderLayout(p)
	if err != nil {
		return api.ArrayHeader{}, err
	}
	rec, err := util.DecodeFixed(b, l)
	if err != nil {
		return api.ArrayHeader{}, err
	}
	h := api.ArrayHeader{
		KStp:   rec.Int(fieldKStp),
		KPer:   rec.Int(fieldKPer),
		PerTim: rec.Float(fieldPerTim),
		TotIm:  rec.Float(fieldTotIm),
		Text:   rec.Text(fieldText),
		NCol:   rec.Int(fieldNCol),
		NRow:   rec.Int(fieldNRow),
		ILay:   rec.Int(fieldILay),
	}
	if mhe := checkHeader(h, checkShape); mhe != nil {
		return api.ArrayHeader{}, mhe
	}
	return h, nil
}

func checkHeader(h api.ArrayHeader, checkShape bool) *MalformedHeaderError {
	switch {
	case h.KStp < 1:
		return &MalformedHeaderError{Field: fieldKStp, Value: h.KStp, Reason: "must be at least 1"}
	case h.KPer < 1:
		return &MalformedHeaderError{Field: fieldKPer, Value: h.KPer, Reason: "must be at least 1"}
	case checkShape && h.NCol < 1:
		return &MalformedHeaderError{Field: fieldNCol, Value: h.NCol, Reason: "must be at least 1"}
	case checkShape && h.NRow < 1:
		return &MalformedHeaderError{Field: fieldNRow, Value: h.NRow, Reason: "must be at least 1"}
	case !internal.IsPrintableLabel(h.Text):
		return &MalformedHeaderError{Field: fieldText, Value: h.Text, Reason: "not printable ASCII"}
	}
	return nil
}

// EncodeHeader encodes h in precision p. Headers that would not decode back
// to h are refused: invalid fields, labels longer than 16 bytes, and times
// that single precision can't hold exactly. Trailing blanks of the label are
// padding and are not kept.
func EncodeHeader(h api.ArrayHeader, p api.Precision) ([]byte, error) {
	l, err := HeaderLayout(p)
	if err != nil {
		return nil, err
	}
	if mhe := checkHeader(h, true); mhe != nil {
		return nil, mhe
	}
	if len(h.Text) > labelWidth {
		return nil, &MalformedHeaderError{Field: fieldText, Value: h.Text,
			Reason: fmt.Sprintf("longer than %d bytes", labelWidth)}
	}
	ints := []struct {
		name string
		val  int
	}{
		{fieldKStp, h.KStp}, {fieldKPer, h.KPer},
		{fieldNCol, h.NCol}, {fieldNRow, h.NRow}, {fieldILay, h.ILay},
	}
	for _, f := range ints {
		if f.val < math.MinInt32 || f.val > math.MaxInt32 {
			return nil, &MalformedHeaderError{Field: f.name, Value: f.val, Reason: "overflows int32"}
		}
	}
	if p == api.Single {
		for _, f := range []struct {
			name string
			val  float64
		}{{fieldPerTim, h.PerTim}, {fieldTotIm, h.TotIm}} {
			if float64(float32(f.val)) != f.val {
				return nil, &MalformedHeaderError{Field: f.name, Value: f.val,
					Reason: api.ErrPrecisionLoss.Error()}
			}
		}
	}
	rec := util.NewRecord().
		Set(fieldKStp, h.KStp).
		Set(fieldKPer, h.KPer).
		Set(fieldPerTim, h.PerTim).
		Set(fieldTotIm, h.TotIm).
		Set(fieldText, strings.TrimRight(h.Text, " ")).
		Set(fieldNCol, h.NCol).
		Set(fieldNRow, h.NRow).
		Set(fieldILay, h.ILay)
	return util.EncodeFixed(rec, l)
}
