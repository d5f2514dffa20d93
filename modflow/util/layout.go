package util

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/batchatco/go-thrower"
)

// Kind is the encoding of one field of a fixed layout.
type Kind int

const (
	Int32 Kind = iota
	Float32
	Float64
	Text
)

func (k Kind) String() string {
	switch k {
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Text:
		return "text"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Field is one named member of a fixed layout.
type Field struct {
	Name  string
	Width int
	Kind  Kind
}

// Layout is an ordered list of fields stored back to back, little-endian, with no padding.
type Layout []Field

var (
	ErrTruncatedRecord = errors.New("truncated record")
	ErrBadLayout       = errors.New("bad layout")
	ErrMissingField    = errors.New("missing field")
	ErrFieldType       = errors.New("wrong field type")
	ErrTextTooLong     = errors.New("text too long for field")
)

// TruncatedRecordError is returned when fewer bytes remain than a layout needs.
type TruncatedRecordError struct {
	Need int
	Have int
}

func (e *TruncatedRecordError) Error() string {
	return fmt.Sprintf("truncated record: need %d bytes, have %d", e.Need, e.Have)
}

func (e *TruncatedRecordError) Is(target error) bool {
	return target == ErrTruncatedRecord
}

func IntField(name string) Field {
	return Field{Name: name, Width: 4, Kind: Int32}
}

func TextField(name string, width int) Field {
	return Field{Name: name, Width: width, Kind: Text}
}

// RealField returns a float field of the given width, 4 or 8.
func RealField(name string, width int) Field {
	if width == 8 {
		return Field{Name: name, Width: 8, Kind: Float64}
	}
	return Field{Name: name, Width: 4, Kind: Float32}
}

// Size is the number of bytes occupied by the layout.
func (l Layout) Size() int {
	size := 0
	for _, f := range l {
		size += f.Width
	}
	return size
}

// Offset returns the byte offset of the named field, or -1 if there is none.
func (l Layout) Offset(name string) int {
	off := 0
	for _, f := range l {
		if f.Name == name {
			return off
		}
		off += f.Width
	}
	return -1
}

func (l Layout) check() {
	for _, f := range l {
		var ok bool
		switch f.Kind {
		case Int32, Float32:
			ok = f.Width == 4
		case Float64:
			ok = f.Width == 8
		case Text:
			ok = f.Width > 0
		}
		if !ok {
			thrower.Throw(fmt.Errorf("%w: field %q is %s of width %d",
				ErrBadLayout, f.Name, f.Kind, f.Width))
		}
	}
}

// ReadFixed reads exactly one record of layout l from r.
func ReadFixed(r io.Reader, l Layout) (rec *Record, err error) {
	buf := make([]byte, l.Size())
	n, err := io.ReadFull(r, buf)
	switch {
	case err == io.EOF, err == io.ErrUnexpectedEOF:
		return nil, &TruncatedRecordError{Need: len(buf), Have: n}
	case err != nil:
		return nil, err
	}
	return DecodeFixed(buf, l)
}

// DecodeFixed decodes the leading bytes of b according to l.
func DecodeFixed(b []byte, l Layout) (rec *Record, err error) {
	defer thrower.RecoverError(&err)
	l.check()
	if len(b) < l.Size() {
		return nil, &TruncatedRecordError{Need: l.Size(), Have: len(b)}
	}
	rec = NewRecord()
	off := 0
	for _, f := range l {
		field := b[off : off+f.Width]
		off += f.Width
		switch f.Kind {
		case Int32:
			rec.Set(f.Name, int(int32(binary.LittleEndian.Uint32(field))))
		case Float32:
			rec.Set(f.Name, math.Float32frombits(binary.LittleEndian.Uint32(field)))
		case Float64:
			rec.Set(f.Name, math.Float64frombits(binary.LittleEndian.Uint64(field)))
		case Text:
			// only trailing blanks are padding
			rec.Set(f.Name, strings.TrimRight(string(field), " "))
		}
	}
	return rec, nil
}

// WriteFixed writes rec to w according to l and returns the number of bytes written.
func WriteFixed(w io.Writer, rec *Record, l Layout) (int, error) {
	b, err := EncodeFixed(rec, l)
	if err != nil {
		return 0, err
	}
	return w.Write(b)
}

// EncodeFixed encodes rec according to l.
func EncodeFixed(rec *Record, l Layout) (b []byte, err error) {
	defer thrower.RecoverError(&err)
	l.check()
	var buf bytes.Buffer
	buf.Grow(l.Size())
	for _, f := range l {
		val, has := rec.Get(f.Name)
		if !has {
			thrower.Throw(fmt.Errorf("%w: %q", ErrMissingField, f.Name))
		}
		switch f.Kind {
		case Int32:
			MustWriteLE(&buf, toInt32(f.Name, val))
		case Float32:
			MustWriteLE(&buf, float32(toFloat64(f.Name, val)))
		case Float64:
			MustWriteLE(&buf, toFloat64(f.Name, val))
		case Text:
			s, ok := val.(string)
			if !ok {
				thrower.Throw(fmt.Errorf("%w: %q is %T, not string", ErrFieldType, f.Name, val))
			}
			if len(s) > f.Width {
				thrower.Throw(fmt.Errorf("%w: %q has %d bytes, field holds %d",
					ErrTextTooLong, f.Name, len(s), f.Width))
			}
			MustWriteRaw(&buf, []byte(s+strings.Repeat(" ", f.Width-len(s))))
		}
	}
	return buf.Bytes(), nil
}

func toInt32(name string, val any) int32 {
	var i int64
	switch v := val.(type) {
	case int:
		i = int64(v)
	case int32:
		i = int64(v)
	case int64:
		i = v
	default:
		thrower.Throw(fmt.Errorf("%w: %q is %T, not an integer", ErrFieldType, name, val))
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		thrower.Throw(fmt.Errorf("%w: %q value %d overflows int32", ErrFieldType, name, i))
	}
	return int32(i)
}

func toFloat64(name string, val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	}
	thrower.Throw(fmt.Errorf("%w: %q is %T, not a float", ErrFieldType, name, val))
	return 0
}
