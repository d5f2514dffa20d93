package arrayfile

import (
	"bufio"
	"errors"
	"io"
	"slices"

	"github.com/batchatco/go-native-modflow/internal"
	"github.com/batchatco/go-native-modflow/modflow/api"
	"github.com/batchatco/go-native-modflow/modflow/util"
	"github.com/batchatco/go-thrower"
)

// values read per call, so a lying header can't make us allocate everything up front
const chunkLen = 1 << 16

// Reader decodes records from an unformatted array file on demand.
type Reader struct {
	*internal.Producer
	r         *bufio.Reader
	opts      *options
	precision api.Precision
	detection Detection
	warnings  []ShapeConflictWarning

	offset   int64 // of the next unread byte
	start    int64 // of the current record
	index    int   // of the current record
	part     string
	partNeed int
	partHave int
}

// ReadArrays returns a reader for the records in r. Nothing is read until
// Next is called. The reader never closes r.
func ReadArrays(r io.Reader, opts ...Option) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	rd := &Reader{r: br, opts: newOptions(opts)}
	if rd.opts.precision != api.Unknown {
		rd.precision = rd.opts.precision
		rd.detection = Detection{candidates: []api.Precision{rd.precision}}
	}
	rd.Producer = internal.NewProducer(rd.next)
	return rd
}

// Precision is the precision of the last record read, or Unknown before the first.
func (rd *Reader) Precision() api.Precision {
	return rd.precision
}

// Detection is the result of detecting the precision from the first header,
// or from the header where the precision last changed. With a precision hint
// it is the hinted precision.
func (rd *Reader) Detection() Detection {
	return rd.detection
}

// Warnings returns the shape conflicts seen so far.
func (rd *Reader) Warnings() []ShapeConflictWarning {
	return rd.warnings
}

// Offset is the number of bytes consumed so far.
func (rd *Reader) Offset() int64 {
	return rd.offset
}

func (rd *Reader) next() (api.Record, error) {
	rec, err := rd.decode()
	var tre *util.TruncatedRecordError
	if errors.As(err, &tre) {
		err = &TruncatedFileError{
			Offset: rd.start,
			Record: rd.index,
			Part:   rd.part,
			Need:   rd.partNeed,
			Have:   rd.partHave + tre.Have,
		}
	}
	switch {
	case err == io.EOF:
		logger.Info("read", rd.index, "records,", rd.offset, "bytes")
	case err != nil:
		logger.Error(err)
	default:
		rd.index++
	}
	return rec, err
}

func (rd *Reader) decode() (rec api.Record, err error) {
	defer thrower.RecoverError(&err)
	rd.start = rd.offset
	if _, err := rd.r.Peek(1); err != nil {
		if err == io.EOF {
			return api.Record{}, io.EOF
		}
		thrower.Throw(err)
	}
	h, p := rd.header()
	rd.applyShape(&h)
	n := h.NRow * h.NCol
	rd.part, rd.partNeed, rd.partHave = "payload", n*p.Size(), 0
	var arr api.Array
	switch p {
	case api.Single:
		arr = api.Array{NRow: h.NRow, NCol: h.NCol, Precision: p,
			Float32: readChunked(rd, n, 4, util.MustReadFloat32s)}
	case api.Double:
		arr = api.Array{NRow: h.NRow, NCol: h.NCol, Precision: p,
			Float64: readChunked(rd, n, 8, util.MustReadFloat64s)}
	}
	check(arr.Len() == n, "payload length doesn't match shape", api.ErrShapeMismatch)
	return api.Record{Header: h, Array: arr}, nil
}

func readChunked[T float32 | float64](rd *Reader, n, size int, read func(io.Reader, int) []T) []T {
	vals := make([]T, 0, min(n, chunkLen))
	for len(vals) < n {
		rd.partHave = len(vals) * size
		vals = append(vals, read(rd.r, min(n-len(vals), chunkLen))...)
	}
	rd.offset += int64(n * size)
	return vals
}

// peek returns the next n bytes without consuming them.
func (rd *Reader) peek(n int) []byte {
	rd.partNeed, rd.partHave = n, 0
	b, err := rd.r.Peek(n)
	if len(b) < n {
		if err == io.EOF || err == nil {
			thrower.Throw(&util.TruncatedRecordError{Need: n, Have: len(b)})
		}
		thrower.Throw(err)
	}
	return b
}

// peekAvailable returns up to n bytes without consuming them.
func (rd *Reader) peekAvailable(n int) []byte {
	b, err := rd.r.Peek(n)
	if err != nil && err != io.EOF {
		thrower.Throw(err)
	}
	return b
}

func (rd *Reader) header() (api.ArrayHeader, api.Precision) {
	rd.part = "header"
	checkShape := rd.opts.shape == nil
	if rd.precision == api.Unknown {
		rd.detect(checkShape)
	}
	h, err := rd.decodeHeader(checkShape)
	if err != nil {
		if rd.opts.precision != api.Unknown || !rd.redetect(checkShape) {
			thrower.Throw(err)
		}
		h, err = rd.decodeHeader(checkShape)
		thrower.ThrowIfError(err)
	}
	hs := rd.precision.HeaderSize()
	_, err = rd.r.Discard(hs)
	thrower.ThrowIfError(err)
	rd.offset += int64(hs)
	return h, rd.precision
}

func (rd *Reader) decodeHeader(checkShape bool) (api.ArrayHeader, error) {
	h, err := decodeHeader(rd.peek(rd.precision.HeaderSize()), rd.precision, checkShape)
	var mhe *MalformedHeaderError
	if errors.As(err, &mhe) {
		mhe.Offset = rd.start
	}
	return h, err
}

func (rd *Reader) detect(checkShape bool) {
	b := rd.peekAvailable(api.Double.HeaderSize())
	rd.partNeed, rd.partHave = api.Single.HeaderSize(), 0
	d, err := detectPrecision(b, checkShape, rd.start)
	thrower.ThrowIfError(err)
	rd.detection = d
	rd.precision = d.Preferred()
	if d.Ambiguous() {
		logger.Warnf("precision at offset %d is %v, using %v", rd.start, d, rd.precision)
	} else {
		logger.Info("precision is", rd.precision)
	}
}

// redetect is called when a header doesn't decode in the current precision.
// It reports whether another precision fits.
func (rd *Reader) redetect(checkShape bool) bool {
	b := rd.peekAvailable(api.Double.HeaderSize())
	d, err := detectPrecision(b, checkShape, rd.start)
	if err != nil {
		return false
	}
	for _, p := range d.candidates {
		if p != rd.precision {
			logger.Warnf("record %d at offset %d: precision changes from %v to %v",
				rd.index, rd.start, rd.precision, p)
			rd.precision = p
			// p first, so Detection stays in step with Precision
			d.candidates = append([]api.Precision{p}, slices.DeleteFunc(d.candidates, func(c api.Precision) bool {
				return c == p
			})...)
			rd.detection = d
			return true
		}
	}
	return false
}

// applyShape replaces the header shape by the hint, if there is one.
func (rd *Reader) applyShape(h *api.ArrayHeader) {
	hint := rd.opts.shape
	if hint == nil {
		return
	}
	embedded := h.Shape()
	if embedded != *hint {
		if saneShape(embedded) {
			w := ShapeConflictWarning{Offset: rd.start, Record: rd.index, Hint: *hint, Embedded: embedded}
			logger.Warn(w.Error())
			rd.warnings = append(rd.warnings, w)
			if rd.opts.onWarning != nil {
				rd.opts.onWarning(w)
			}
		} else {
			logger.Infof("record %d: header shape %v ignored, using %v", rd.index, embedded, *hint)
		}
	}
	h.NRow, h.NCol = hint.NRow, hint.NCol
}
