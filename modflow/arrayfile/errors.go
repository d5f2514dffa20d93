package arrayfile

import (
	"errors"
	"fmt"

	"github.com/batchatco/go-native-modflow/modflow/api"
)

var (
	ErrTruncatedFile    = errors.New("truncated file")
	ErrUnknownPrecision = errors.New("unknown precision")
	ErrMalformedHeader  = errors.New("malformed header")
	ErrShapeConflict    = errors.New("shape hint conflicts with header")
	ErrMalformedText    = errors.New("malformed text array")
)

// TruncatedFileError is returned when the input ends inside a record.
// For text files Offset is the line of the record and Need and Have count rows
// rather than bytes.
type TruncatedFileError struct {
	Offset int64  // offset of the record
	Record int    // zero-based index of the record
	Part   string // "header" or "payload"
	Need   int
	Have   int
}

func (e *TruncatedFileError) Error() string {
	return fmt.Sprintf("truncated file: record %d at offset %d: %s needs %d bytes, have %d",
		e.Record, e.Offset, e.Part, e.Need, e.Have)
}

func (e *TruncatedFileError) Is(target error) bool {
	return target == ErrTruncatedFile
}

// UnknownPrecisionError is returned when a header is valid in neither precision.
type UnknownPrecisionError struct {
	Offset int64
}

func (e *UnknownPrecisionError) Error() string {
	return fmt.Sprintf("unknown precision: no sane header at offset %d", e.Offset)
}

func (e *UnknownPrecisionError) Is(target error) bool {
	return target == ErrUnknownPrecision
}

// MalformedHeaderError names the header field that failed validation.
type MalformedHeaderError struct {
	Offset int64
	Field  string
	Value  any
	Reason string
}

func (e *MalformedHeaderError) Error() string {
	msg := fmt.Sprintf("malformed header at offset %d: %s = %#v", e.Offset, e.Field, e.Value)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *MalformedHeaderError) Is(target error) bool {
	return target == ErrMalformedHeader
}

// ShapeConflictWarning reports a shape hint that disagrees with a plausible
// embedded shape. Decoding continues with the hint.
type ShapeConflictWarning struct {
	Offset   int64
	Record   int
	Hint     api.Shape
	Embedded api.Shape
}

func (w ShapeConflictWarning) Error() string {
	return fmt.Sprintf("record %d at offset %d: shape hint %v overrides header shape %v",
		w.Record, w.Offset, w.Hint, w.Embedded)
}

func (w ShapeConflictWarning) Is(target error) bool {
	return target == ErrShapeConflict
}

// TextError locates a problem in a text array file.
type TextError struct {
	Line int
	Msg  string
}

func (e *TextError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *TextError) Is(target error) bool {
	return target == ErrMalformedText
}
