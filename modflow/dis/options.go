package dis

import (
	"bytes"
	"fmt"
	"io"
)

// Resolver supplies the data of EXTERNAL and OPEN/CLOSE arrays. The parser
// never opens files itself. A unit is asked for once and then read
// sequentially by every array on it; a file is asked for on every use.
type Resolver interface {
	Unit(nunit int) (io.Reader, error)
	Open(name string) (io.Reader, error)
}

// MapResolver resolves units and file names from memory.
type MapResolver struct {
	Units map[int]io.Reader
	Files map[string][]byte
}

func (m MapResolver) Unit(nunit int) (io.Reader, error) {
	r, has := m.Units[nunit]
	if !has {
		return nil, fmt.Errorf("unit %d not found", nunit)
	}
	return r, nil
}

func (m MapResolver) Open(name string) (io.Reader, error) {
	b, has := m.Files[name]
	if !has {
		return nil, fmt.Errorf("file %q not found", name)
	}
	return bytes.NewReader(b), nil
}

// Option configures the parser.
type Option func(*options)

type options struct {
	resolver Resolver
	unit     int
}

// WithResolver sets where EXTERNAL and OPEN/CLOSE arrays come from.
func WithResolver(r Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithUnit sets the unit number of the DIS file itself. Fixed-format arrays
// on this unit are read inline.
func WithUnit(nunit int) Option {
	return func(o *options) {
		if nunit > 0 {
			o.unit = nunit
		}
	}
}
