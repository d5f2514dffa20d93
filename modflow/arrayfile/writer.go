package arrayfile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/batchatco/go-native-modflow/modflow/api"
	"github.com/batchatco/go-native-modflow/modflow/util"
	"github.com/batchatco/go-thrower"
)

type countedWriter struct {
	w     *bufio.Writer
	count int64
}

func (c *countedWriter) Count() int64 {
	return c.count
}

func (c *countedWriter) Flush() error {
	return c.w.Flush()
}

func (c *countedWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.count += int64(n)
	return n, err
}

// Writer encodes records in one precision. Records are written in the order
// given, nothing is merged or reordered.
type Writer struct {
	bf        *countedWriter
	precision api.Precision
	records   int
}

// NewWriter returns a writer of records in precision p. Call Flush when done;
// the underlying writer is never closed.
func NewWriter(w io.Writer, p api.Precision) (*Writer, error) {
	if p != api.Single && p != api.Double {
		return nil, api.ErrNoPrecision
	}
	return &Writer{bf: &countedWriter{w: bufio.NewWriter(w)}, precision: p}, nil
}

// Write encodes one record. The array is converted to the writer's
// precision, which fails if narrowing would lose information.
func (aw *Writer) Write(rec api.Record) (err error) {
	defer thrower.RecoverError(&err)
	h, arr := rec.Header, rec.Array
	check(arr.Precision == api.Single || arr.Precision == api.Double,
		fmt.Sprintf("record %d: array has no precision", aw.records), api.ErrNoPrecision)
	if h.Shape() != arr.Shape() || arr.Len() != arr.Shape().Len() {
		fail(fmt.Sprintf("record %d: header shape %v, array shape %v with %d values",
			aw.records, h.Shape(), arr.Shape(), arr.Len()), api.ErrShapeMismatch)
	}
	arr, err = arr.Convert(aw.precision)
	thrower.ThrowIfError(err)
	b, err := EncodeHeader(h, aw.precision)
	thrower.ThrowIfError(err)
	util.MustWriteRaw(aw.bf, b)
	switch aw.precision {
	case api.Single:
		util.MustWriteLE(aw.bf, arr.Float32)
	case api.Double:
		util.MustWriteLE(aw.bf, arr.Float64)
	}
	aw.records++
	return nil
}

// WriteAll writes every record src produces, then flushes.
func (aw *Writer) WriteAll(src api.RecordReader) error {
	for src.Next() {
		if err := aw.Write(src.Record()); err != nil {
			return err
		}
	}
	if err := src.Err(); err != nil {
		return err
	}
	return aw.Flush()
}

func (aw *Writer) Flush() error {
	return aw.bf.Flush()
}

// Count is the number of bytes written so far, flushed or not.
func (aw *Writer) Count() int64 {
	return aw.bf.Count()
}

// Records is the number of records written so far.
func (aw *Writer) Records() int {
	return aw.records
}

// WriteArrays writes recs to w in precision p. If a record fails, the
// records before it are still flushed to w and the error is returned.
func WriteArrays(w io.Writer, recs []api.Record, p api.Precision) error {
	aw, err := NewWriter(w, p)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if err := aw.Write(rec); err != nil {
			if ferr := aw.Flush(); ferr != nil {
				logger.Error("flush after failed record:", ferr)
			}
			return err
		}
	}
	return aw.Flush()
}
