// Package modflow reads MODFLOW array files without knowing in advance
// whether they are unformatted or text.
package modflow

import (
	"bufio"
	"io"
	"os"

	"github.com/batchatco/go-native-modflow/internal"
	"github.com/batchatco/go-native-modflow/modflow/api"
	"github.com/batchatco/go-native-modflow/modflow/arrayfile"
	"github.com/batchatco/go-native-modflow/modflow/dis"
	"github.com/batchatco/go-native-modflow/modflow/series"
)

// Kind of array file.
type Kind int

const (
	Binary Kind = iota + 1
	Text
)

func (k Kind) String() string {
	switch k {
	case Binary:
		return "binary"
	case Text:
		return "text"
	}
	return "unknown"
}

// how much of the file is looked at to tell text from binary
const sniffLen = 512

var (
	logger = internal.NewLogger()
)

// SetLogLevel sets the logging level of every package to the given level,
// and returns the old level of this one. The lowest level is 0 (fatal errors
// only) and the highest level is 3 (errors, warnings and debug messages).
func SetLogLevel(level int) int {
	arrayfile.SetLogLevel(level)
	dis.SetLogLevel(level)
	series.SetLogLevel(level)
	return logger.SetLevel(level)
}

// NewArrayReader returns a reader for r after looking at its first bytes:
// text when they are all printable or blank, binary otherwise. Empty input
// is an empty binary file. The reader is not closed.
func NewArrayReader(r io.Reader, opts ...arrayfile.Option) (api.RecordReader, Kind, error) {
	br := bufio.NewReader(r)
	kind, err := getKind(br)
	if err != nil {
		return nil, 0, err
	}
	logger.Info("array file is", kind)
	if kind == Text {
		return arrayfile.ReadTextArrays(br, opts...), kind, nil
	}
	return arrayfile.ReadArrays(br, opts...), kind, nil
}

func getKind(br *bufio.Reader) (Kind, error) {
	b, err := br.Peek(sniffLen)
	if len(b) == 0 {
		if err == io.EOF {
			return Binary, nil
		}
		return 0, err
	}
	for _, c := range b {
		switch {
		case c == '\t', c == '\n', c == '\r':
		case c < 0x20 || c > 0x7e:
			return Binary, nil
		}
	}
	return Text, nil
}

// ReadTimeSeries reads every record of r, binary or text, into a time series.
func ReadTimeSeries(r io.Reader, opts ...arrayfile.Option) (*series.TimeSeries, Kind, error) {
	rd, kind, err := NewArrayReader(r, opts...)
	if err != nil {
		return nil, 0, err
	}
	ts, err := series.Assemble(rd)
	if err != nil {
		return nil, kind, err
	}
	return ts, kind, nil
}

// Open reads the array file fname into a time series. The file is closed
// before returning.
func Open(fname string, opts ...arrayfile.Option) (*series.TimeSeries, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	ts, _, err := ReadTimeSeries(file, opts...)
	return ts, err
}
