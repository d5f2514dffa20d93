package arrayfile

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/batchatco/go-native-modflow/modflow/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoStepsText = `1 1 1 1 '            HEAD' 3 2 1
1 2 3
4 5 6

2 1 2 2 '            HEAD' 3 2 1
10.5 20.25 -30
40 0 60.125
`

func TestReadText(t *testing.T) {
	tr := ReadTextArrays(strings.NewReader(twoStepsText))
	recs := collect(t, tr)
	require.NoError(t, tr.Err())
	require.Len(t, recs, 2)
	assert.Equal(t, api.Exhausted, tr.State())
	assert.Equal(t, api.Single, tr.Precision())
	assert.Equal(t, 1, recs[0].Header.KStp)
	assert.Equal(t, 2, recs[1].Header.KStp)
	assert.Equal(t, "            HEAD", recs[1].Header.Text)
	assert.Equal(t, step1, recs[0].Array.Values())
	assert.Equal(t, step2, recs[1].Array.Values())
}

func TestReadTextMatchesBinary(t *testing.T) {
	tr := ReadTextArrays(strings.NewReader(twoStepsText))
	text := collect(t, tr)
	require.NoError(t, tr.Err())
	rd := ReadArrays(bytes.NewReader(twoSteps()))
	bin := collect(t, rd)
	require.NoError(t, rd.Err())
	require.Len(t, text, len(bin))
	for i := range bin {
		assert.Equal(t, bin[i].Header, text[i].Header)
		assert.True(t, bin[i].Array.Equal(text[i].Array))
	}
}

func TestReadTextShorthand(t *testing.T) {
	in := "1 1 0 0 'TOP' 5 1 1\n5*2.0\n"
	tr := ReadTextArrays(strings.NewReader(in), WithPrecision(api.Double))
	require.True(t, tr.Next(), "%v", tr.Err())
	assert.Equal(t, []float64{2, 2, 2, 2, 2}, tr.Record().Array.Float64)
}

func TestReadTextErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"overshoot", "1 1 0 0 'X' 2 1 1\n1 2 3\n", ErrMalformedText},
		{"undershoot", "1 1 0 0 'X' 2 1 1\n1\n", ErrMalformedText},
		{"bad value", "1 1 0 0 'X' 2 1 1\n1 x\n", ErrMalformedText},
		{"short header", "1 1 0 0 'X' 2 1\n", ErrMalformedText},
		{"truncated", "1 1 0 0 'X' 2 2 1\n1 2\n", ErrTruncatedFile},
		{"zero step", "0 1 0 0 'X' 1 1 1\n1\n", ErrMalformedHeader},
		{"huge shape", "1 1 0 0 'HEAD' 2000000000 2000000000 1\n1 2\n", ErrMalformedText},
		{"wide row", "1 1 0 0 'HEAD' 1048577 1 1\n1\n", ErrMalformedText},
		{"huge repeat", "1 1 0 0 'X' 3 1 1\n4611686018427387904*1 4611686018427387904*1\n", ErrMalformedText},
		{"repeat overshoot", "1 1 0 0 'X' 3 1 1\n1 3*2\n", ErrMalformedText},
	}
	for _, tt := range tests {
		tr := ReadTextArrays(strings.NewReader(tt.in))
		if tr.Next() {
			t.Errorf("%s: unexpected record", tt.name)
			continue
		}
		assert.ErrorIs(t, tr.Err(), tt.want, tt.name)
		assert.Equal(t, api.Failed, tr.State(), tt.name)
	}
}

func TestReadTextTruncatedDetail(t *testing.T) {
	tr := ReadTextArrays(strings.NewReader("1 1 0 0 'X' 2 3 1\n1 2\n3 4\n"))
	assert.False(t, tr.Next())
	var tfe *TruncatedFileError
	require.ErrorAs(t, tr.Err(), &tfe)
	assert.Equal(t, 3, tfe.Need)
	assert.Equal(t, 2, tfe.Have)
	assert.EqualValues(t, 1, tfe.Offset)
}

func TestReadTextShapeHint(t *testing.T) {
	var seen int
	tr := ReadTextArrays(strings.NewReader(twoStepsText), WithShape(2, 3),
		WithWarningHandler(func(ShapeConflictWarning) { seen++ }))
	recs := collect(t, tr)
	require.NoError(t, tr.Err())
	assert.Len(t, recs, 2)
	assert.Zero(t, seen)

	tr = ReadTextArrays(strings.NewReader("1 1 0 0 'X' 4 4 1\n1 2 3\n4 5 6\n"), WithShape(2, 3))
	require.True(t, tr.Next(), "%v", tr.Err())
	require.Len(t, tr.Warnings(), 1)
	assert.Equal(t, api.Shape{NRow: 4, NCol: 4}, tr.Warnings()[0].Embedded)
	assert.Equal(t, api.Shape{NRow: 2, NCol: 3}, tr.Record().Header.Shape())
}

func TestTextRoundTrip(t *testing.T) {
	h := api.ArrayHeader{KStp: 3, KPer: 2, PerTim: 0.1, TotIm: 1.0 / 3, Text: "it's", NCol: 2, NRow: 2, ILay: -1}
	vals := []float64{math.Pi, math.SmallestNonzeroFloat64, math.Inf(1), -1e300}
	a, err := api.NewFloat64Array(2, 2, vals)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteTextArrays(&buf, []api.Record{{Header: h, Array: a}}, api.Double))
	assert.Contains(t, buf.String(), `"it's"`)

	tr := ReadTextArrays(&buf, WithPrecision(api.Double))
	require.True(t, tr.Next(), "%v", tr.Err())
	got := tr.Record()
	assert.Equal(t, h, got.Header)
	assert.True(t, a.Equal(got.Array))
}

func TestTextRoundTripSingle(t *testing.T) {
	h := api.ArrayHeader{KStp: 1, KPer: 1, PerTim: 1, TotIm: 1, Text: "HEAD", NCol: 3, NRow: 1, ILay: 1}
	a, err := api.NewFloat32Array(1, 3, []float32{0.1, float32(math.Pi), -7.25})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteTextArrays(&buf, []api.Record{{Header: h, Array: a}}, api.Single))
	assert.Equal(t, "1 1 1 1 'HEAD' 3 1 1\n0.1 3.1415927 -7.25\n", buf.String())
	tr := ReadTextArrays(&buf)
	require.True(t, tr.Next(), "%v", tr.Err())
	assert.True(t, a.Equal(tr.Record().Array))
}

func TestWriteTextErrors(t *testing.T) {
	h := api.ArrayHeader{KStp: 1, KPer: 1, PerTim: 1, TotIm: 1, Text: "HEAD", NCol: 1, NRow: 1, ILay: 1}
	lossy, err := api.NewFloat64Array(1, 1, []float64{0.1})
	require.NoError(t, err)
	err = WriteTextArrays(&bytes.Buffer{}, []api.Record{{Header: h, Array: lossy}}, api.Single)
	assert.ErrorIs(t, err, api.ErrPrecisionLoss)

	h.NCol = 2
	err = WriteTextArrays(&bytes.Buffer{}, []api.Record{{Header: h, Array: lossy}}, api.Double)
	assert.ErrorIs(t, err, api.ErrShapeMismatch)

	err = WriteTextArrays(&bytes.Buffer{}, nil, api.Unknown)
	assert.ErrorIs(t, err, api.ErrNoPrecision)
}
