package series

import (
	"errors"
	"io"
	"testing"

	"github.com/batchatco/go-native-modflow/internal"
	"github.com/batchatco/go-native-modflow/modflow/api"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(kper, kstp, ilay int, totim float64) api.Record {
	arr, err := api.NewFloat64Array(1, 2, []float64{float64(kper), float64(ilay)})
	if err != nil {
		panic(err)
	}
	return api.Record{
		Header: api.ArrayHeader{KStp: kstp, KPer: kper, PerTim: totim, TotIm: totim,
			Text: "HEAD", NCol: 2, NRow: 1, ILay: ilay},
		Array: arr,
	}
}

// reader produces recs, then fails with end (io.EOF for a clean end).
func reader(recs []api.Record, end error) api.RecordReader {
	i := 0
	return internal.NewProducer(func() (api.Record, error) {
		if i == len(recs) {
			return api.Record{}, end
		}
		i++
		return recs[i-1], nil
	})
}

func keys(ts *TimeSeries) []Key {
	var ks []Key
	for _, r := range ts.Records() {
		ks = append(ks, KeyOf(r.Header))
	}
	return ks
}

func TestInOrder(t *testing.T) {
	recs := []api.Record{rec(1, 1, 1, 1), rec(1, 1, 2, 1), rec(1, 2, 1, 2), rec(2, 1, 1, 3)}
	ts, err := Assemble(reader(recs, io.EOF))
	require.NoError(t, err)
	assert.False(t, ts.Reordered())
	assert.Equal(t, 4, ts.Len())
	assert.Equal(t, recs, ts.Records())
	if diff := cmp.Diff([]Step{{1, 1}, {1, 2}, {2, 1}}, ts.Steps()); diff != "" {
		t.Error(diff)
	}
	assert.Equal(t, []float64{1, 2, 3}, ts.Times())
}

func TestReordered(t *testing.T) {
	recs := []api.Record{rec(2, 1, 1, 3), rec(1, 2, 1, 2), rec(1, 1, 2, 1), rec(1, 1, 1, 1)}
	ts, err := AssembleRecords(recs)
	require.NoError(t, err)
	assert.True(t, ts.Reordered())
	// stable: the layers of a step keep their input order
	want := []Key{{1, 1, 2}, {1, 1, 1}, {1, 2, 1}, {2, 1, 1}}
	if diff := cmp.Diff(want, keys(ts)); diff != "" {
		t.Error(diff)
	}
	// the caller's slice is untouched
	assert.Equal(t, 2, recs[0].Header.KPer)

	step := ts.Step(1, 1)
	require.Len(t, step, 2)
	assert.Equal(t, 1, step[0].Header.ILay)
	assert.Equal(t, 2, step[1].Header.ILay)
	assert.Empty(t, ts.Step(3, 1))
}

func TestDuplicateKey(t *testing.T) {
	recs := []api.Record{rec(1, 1, 1, 1), rec(1, 2, 1, 2), rec(1, 1, 1, 1)}
	_, err := AssembleRecords(recs)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	var dke *DuplicateKeyError
	require.True(t, errors.As(err, &dke))
	assert.Equal(t, Key{KPer: 1, KStp: 1, ILay: 1}, dke.Key)
	assert.Equal(t, 0, dke.First)
	assert.Equal(t, 2, dke.Second)

	// a different layer of the same step is fine
	_, err = AssembleRecords([]api.Record{rec(1, 1, 1, 1), rec(1, 1, -1, 1)})
	assert.NoError(t, err)
}

func TestMaxRecords(t *testing.T) {
	recs := []api.Record{rec(1, 1, 1, 1), rec(1, 2, 1, 2), rec(1, 3, 1, 3)}
	_, err := Assemble(reader(recs, io.EOF), WithMaxRecords(2))
	assert.ErrorIs(t, err, ErrTooManyRecords)
	_, err = AssembleRecords(recs, WithMaxRecords(2))
	assert.ErrorIs(t, err, ErrTooManyRecords)

	ts, err := Assemble(reader(recs, io.EOF), WithMaxRecords(3))
	require.NoError(t, err)
	assert.Equal(t, 3, ts.Len())
}

func TestSourceFails(t *testing.T) {
	bad := errors.New("bad input")
	_, err := Assemble(reader([]api.Record{rec(1, 1, 1, 1)}, bad))
	assert.ErrorIs(t, err, bad)
}

func TestEmpty(t *testing.T) {
	ts, err := Assemble(reader(nil, io.EOF))
	require.NoError(t, err)
	assert.Zero(t, ts.Len())
	assert.Empty(t, ts.Steps())
	assert.False(t, ts.Reordered())
}

func TestLookupAndDense(t *testing.T) {
	ts, err := AssembleRecords([]api.Record{rec(1, 1, 1, 1), rec(2, 5, 3, 9)})
	require.NoError(t, err)
	r, ok := ts.Lookup(Key{KPer: 2, KStp: 5, ILay: 3})
	require.True(t, ok)
	assert.Equal(t, 9.0, r.Header.TotIm)
	_, ok = ts.Lookup(Key{KPer: 2, KStp: 5, ILay: 1})
	assert.False(t, ok)

	d, err := ts.Dense(2, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, 2.0, d.At(0, 0))
	assert.Equal(t, 3.0, d.At(0, 1))
	_, err = ts.Dense(9, 9, 9)
	assert.ErrorIs(t, err, ErrNoRecord)
	assert.Equal(t, 1, ts.At(0).Header.KPer)
}
