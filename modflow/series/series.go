// Package series assembles the records of an array file into a time series
// ordered by stress period and time step.
//
// The whole input is buffered. Records are sorted by (KPER, KSTP) only when
// the input is out of order, and a repeated (KPER, KSTP, ILAY) is an error:
// two arrays for the same layer and step are never merged.
package series

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/batchatco/go-native-modflow/internal"
	"github.com/batchatco/go-native-modflow/modflow/api"
	"gonum.org/v1/gonum/mat"
)

var (
	logger = internal.NewLogger()
)

var (
	ErrDuplicateKey   = errors.New("duplicate time series key")
	ErrTooManyRecords = errors.New("too many records")
	ErrNoRecord       = errors.New("no such record")
)

// SetLogLevel sets the logging level to the given level, and returns
// the old level. The lowest level is 0 (fatal errors only) and the highest
// level is 3 (errors, warnings and debug messages).
func SetLogLevel(level int) int {
	return logger.SetLevel(level)
}

// Key identifies a record of a time series.
type Key struct {
	KPer int
	KStp int
	ILay int
}

func KeyOf(h api.ArrayHeader) Key {
	return Key{KPer: h.KPer, KStp: h.KStp, ILay: h.ILay}
}

func (k Key) String() string {
	return fmt.Sprintf("kper %d kstp %d ilay %d", k.KPer, k.KStp, k.ILay)
}

// Step is one time step of one stress period.
type Step struct {
	KPer int
	KStp int
}

func (s Step) compare(o Step) int {
	if c := cmp.Compare(s.KPer, o.KPer); c != 0 {
		return c
	}
	return cmp.Compare(s.KStp, o.KStp)
}

func stepOf(h api.ArrayHeader) Step {
	return Step{KPer: h.KPer, KStp: h.KStp}
}

// DuplicateKeyError reports two records with the same key. First and Second
// are their positions in the input, counting from 0.
type DuplicateKeyError struct {
	Key    Key
	First  int
	Second int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: records %d and %d", e.Key, e.First, e.Second)
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// Option configures assembly.
type Option func(*options)

type options struct {
	maxRecords int
}

// WithMaxRecords bounds the number of records buffered. Zero means no bound.
func WithMaxRecords(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRecords = n
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TimeSeries is an ordered, duplicate-free sequence of records.
type TimeSeries struct {
	records   []api.Record
	index     map[Key]int
	reordered bool
}

// Assemble drains src and assembles what it produced. If src fails, its
// error is returned.
func Assemble(src api.RecordReader, opts ...Option) (*TimeSeries, error) {
	o := newOptions(opts)
	if o.maxRecords == 0 {
		recs, err := internal.Collect(src)
		if err != nil {
			return nil, err
		}
		return assemble(recs)
	}
	var recs []api.Record
	for src.Next() {
		if len(recs) == o.maxRecords {
			logger.Error("more than", o.maxRecords, "records")
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyRecords, o.maxRecords)
		}
		recs = append(recs, src.Record())
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	return assemble(recs)
}

// AssembleRecords assembles recs. The slice is not modified.
func AssembleRecords(recs []api.Record, opts ...Option) (*TimeSeries, error) {
	o := newOptions(opts)
	if o.maxRecords > 0 && len(recs) > o.maxRecords {
		logger.Error(len(recs), "records, limit is", o.maxRecords)
		return nil, fmt.Errorf("%w: %d, limit is %d", ErrTooManyRecords, len(recs), o.maxRecords)
	}
	return assemble(slices.Clone(recs))
}

// assemble owns recs.
func assemble(recs []api.Record) (*TimeSeries, error) {
	first := make(map[Key]int, len(recs))
	sorted := true
	for i, rec := range recs {
		key := KeyOf(rec.Header)
		if j, has := first[key]; has {
			err := &DuplicateKeyError{Key: key, First: j, Second: i}
			logger.Error(err)
			return nil, err
		}
		first[key] = i
		if i > 0 && stepOf(rec.Header).compare(stepOf(recs[i-1].Header)) < 0 {
			sorted = false
		}
	}
	ts := &TimeSeries{records: recs, reordered: !sorted}
	if !sorted {
		slices.SortStableFunc(ts.records, func(a, b api.Record) int {
			return stepOf(a.Header).compare(stepOf(b.Header))
		})
		logger.Info("records were out of order, sorted", len(recs), "records")
	}
	ts.index = make(map[Key]int, len(recs))
	for i, rec := range ts.records {
		ts.index[KeyOf(rec.Header)] = i
	}
	return ts, nil
}

// Reordered reports whether the input had to be sorted.
func (ts *TimeSeries) Reordered() bool {
	return ts.reordered
}

func (ts *TimeSeries) Len() int {
	return len(ts.records)
}

func (ts *TimeSeries) At(i int) api.Record {
	return ts.records[i]
}

// Records returns the records in order. The slice is a copy; the arrays are
// shared.
func (ts *TimeSeries) Records() []api.Record {
	return slices.Clone(ts.records)
}

func (ts *TimeSeries) Lookup(k Key) (api.Record, bool) {
	i, has := ts.index[k]
	if !has {
		return api.Record{}, false
	}
	return ts.records[i], true
}

// Steps returns the distinct time steps in order.
func (ts *TimeSeries) Steps() []Step {
	var steps []Step
	for _, rec := range ts.records {
		s := stepOf(rec.Header)
		if len(steps) == 0 || steps[len(steps)-1] != s {
			steps = append(steps, s)
		}
	}
	return steps
}

// Times returns the total simulation time of each step of Steps, taken from
// its first record.
func (ts *TimeSeries) Times() []float64 {
	var times []float64
	var last Step
	for i, rec := range ts.records {
		s := stepOf(rec.Header)
		if i == 0 || s != last {
			times = append(times, rec.Header.TotIm)
			last = s
		}
	}
	return times
}

// Step returns every record of one time step, ordered by layer.
func (ts *TimeSeries) Step(kper, kstp int) []api.Record {
	want := Step{KPer: kper, KStp: kstp}
	var recs []api.Record
	for _, rec := range ts.records {
		if stepOf(rec.Header) == want {
			recs = append(recs, rec)
		}
	}
	slices.SortStableFunc(recs, func(a, b api.Record) int {
		return cmp.Compare(a.Header.ILay, b.Header.ILay)
	})
	return recs
}

// Dense returns a copy of one array as a gonum matrix.
func (ts *TimeSeries) Dense(kper, kstp, ilay int) (*mat.Dense, error) {
	k := Key{KPer: kper, KStp: kstp, ILay: ilay}
	rec, has := ts.Lookup(k)
	if !has {
		return nil, fmt.Errorf("%w: %s", ErrNoRecord, k)
	}
	return rec.Array.Dense(), nil
}
