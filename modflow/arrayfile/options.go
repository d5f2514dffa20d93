package arrayfile

import (
	"github.com/batchatco/go-native-modflow/modflow/api"
)

// Option configures a reader.
type Option func(*options)

type options struct {
	shape     *api.Shape
	precision api.Precision
	onWarning func(ShapeConflictWarning)
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithShape sets the array shape, overriding the shape written in each header.
// Non-positive dimensions are ignored.
func WithShape(nrow, ncol int) Option {
	return func(o *options) {
		if nrow > 0 && ncol > 0 {
			o.shape = &api.Shape{NRow: nrow, NCol: ncol}
		}
	}
}

// WithPrecision fixes the precision instead of detecting it.
func WithPrecision(p api.Precision) Option {
	return func(o *options) {
		if p == api.Single || p == api.Double {
			o.precision = p
		}
	}
}

// WithWarningHandler is called for every shape conflict, in addition to logging.
func WithWarningHandler(fn func(ShapeConflictWarning)) Option {
	return func(o *options) {
		o.onWarning = fn
	}
}
