package arrayfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/batchatco/go-native-modflow/internal"
	"github.com/batchatco/go-native-modflow/modflow/api"
)

// TextReader decodes records from the text form of an array file:
// a header line
//
//	KSTP KPER PERTIM TOTIM 'TEXT' NCOL NROW ILAY
//
// followed by NROW lines of NCOL values. Values may use the count*value
// shorthand. Without a precision hint values are read as single precision.
type TextReader struct {
	*internal.Producer
	lr        *internal.LineReader
	opts      *options
	precision api.Precision
	warnings  []ShapeConflictWarning
	index     int
}

// ReadTextArrays returns a reader for the text records in r.
func ReadTextArrays(r io.Reader, opts ...Option) *TextReader {
	tr := &TextReader{lr: internal.NewLineReader(r), opts: newOptions(opts), precision: api.Single}
	if tr.opts.precision != api.Unknown {
		tr.precision = tr.opts.precision
	}
	tr.Producer = internal.NewProducer(tr.next)
	return tr
}

func (tr *TextReader) Precision() api.Precision {
	return tr.precision
}

func (tr *TextReader) Warnings() []ShapeConflictWarning {
	return tr.warnings
}

// Line is the number of the last line read.
func (tr *TextReader) Line() int {
	return tr.lr.Line()
}

func (tr *TextReader) next() (api.Record, error) {
	rec, err := tr.decode()
	switch {
	case err == io.EOF:
		logger.Info("read", tr.index, "text records,", tr.lr.Line(), "lines")
	case err != nil:
		logger.Error(err)
	default:
		tr.index++
	}
	return rec, err
}

func (tr *TextReader) decode() (api.Record, error) {
	start := tr.lr.Line() + 1
	rec, embedded, err := internal.ReadTextRecord(tr.lr, tr.precision, tr.opts.shape)
	if err != nil {
		var tre *internal.TextRecordError
		switch {
		case err == io.EOF:
			return api.Record{}, io.EOF
		case errors.Is(err, internal.ErrTextTruncated) && errors.As(err, &tre):
			return api.Record{}, &TruncatedFileError{Offset: int64(start), Record: tr.index,
				Part: "payload", Need: embeddedRows(embedded, tr.opts.shape), Have: tre.Have}
		case errors.As(err, &tre):
			return api.Record{}, &TextError{Line: tre.Line, Msg: tre.Msg}
		}
		return api.Record{}, err
	}
	if mhe := checkHeader(rec.Header, true); mhe != nil {
		mhe.Offset = int64(start)
		return api.Record{}, mhe
	}
	if hint := tr.opts.shape; hint != nil && embedded != *hint && saneShape(embedded) {
		w := ShapeConflictWarning{Offset: int64(start), Record: tr.index, Hint: *hint, Embedded: embedded}
		logger.Warn(w.Error())
		tr.warnings = append(tr.warnings, w)
		if tr.opts.onWarning != nil {
			tr.opts.onWarning(w)
		}
	}
	return rec, nil
}

func embeddedRows(embedded api.Shape, hint *api.Shape) int {
	if hint != nil {
		return hint.NRow
	}
	return embedded.NRow
}

// WriteTextArrays writes recs to w as text, values in precision p.
func WriteTextArrays(w io.Writer, recs []api.Record, p api.Precision) error {
	if p != api.Single && p != api.Double {
		return api.ErrNoPrecision
	}
	bw := bufio.NewWriter(w)
	for i, rec := range recs {
		h, arr := rec.Header, rec.Array
		if h.Shape() != arr.Shape() || arr.Len() != arr.Shape().Len() {
			return fmt.Errorf("record %d: %w: header %v, array %v with %d values",
				i, api.ErrShapeMismatch, h.Shape(), arr.Shape(), arr.Len())
		}
		if mhe := checkHeader(h, true); mhe != nil {
			return mhe
		}
		if err := internal.WriteTextRecord(bw, rec, p); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return bw.Flush()
}
