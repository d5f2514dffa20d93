package util

import (
	"encoding/binary"
	"io"

	"github.com/batchatco/go-thrower"
)

// MustWriteLE wraps binary.Write with LittleEndian and throws an error if it fails.
func MustWriteLE(w io.Writer, data any) {
	err := binary.Write(w, binary.LittleEndian, data)
	thrower.ThrowIfError(err)
}

// MustWriteRaw wraps Write and throws an error if it fails.
func MustWriteRaw(w io.Writer, p []byte) {
	_, err := w.Write(p)
	thrower.ThrowIfError(err)
}

// MustReadLE wraps binary.Read with LittleEndian and throws an error if it fails.
func MustReadLE(r io.Reader, data any) {
	err := binary.Read(r, binary.LittleEndian, data)
	thrower.ThrowIfError(err)
}

// MustReadFull fills p from r. A short read throws a *TruncatedRecordError.
func MustReadFull(r io.Reader, p []byte) {
	n, err := io.ReadFull(r, p)
	switch {
	case err == io.EOF, err == io.ErrUnexpectedEOF:
		thrower.Throw(&TruncatedRecordError{Need: len(p), Have: n})
	case err != nil:
		thrower.Throw(err)
	}
}

// MustReadFloat32s reads n little-endian float32 values.
func MustReadFloat32s(r io.Reader, n int) []float32 {
	buf := make([]byte, 4*n)
	MustReadFull(r, buf)
	vals := make([]float32, n)
	_, err := binary.Decode(buf, binary.LittleEndian, vals)
	thrower.ThrowIfError(err)
	return vals
}

// MustReadFloat64s reads n little-endian float64 values.
func MustReadFloat64s(r io.Reader, n int) []float64 {
	buf := make([]byte, 8*n)
	MustReadFull(r, buf)
	vals := make([]float64, n)
	_, err := binary.Decode(buf, binary.LittleEndian, vals)
	thrower.ThrowIfError(err)
	return vals
}
