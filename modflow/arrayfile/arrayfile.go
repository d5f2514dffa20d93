// Package arrayfile reads and writes the unformatted array files (heads,
// drawdown and the like) written by MODFLOW, and their text equivalent.
//
// A file is a plain sequence of records. Each record is a header followed by
// NROW*NCOL reals, all little-endian and without any record markers:
//
//	KSTP   int32
//	KPER   int32
//	PERTIM real
//	TOTIM  real
//	TEXT   16 bytes
//	NCOL   int32
//	NROW   int32
//	ILAY   int32
//	DATA   NROW*NCOL reals
//
// Reals are 4 or 8 bytes. Nothing in the file says which, so the precision is
// detected from the first header.
package arrayfile

import (
	"github.com/batchatco/go-native-modflow/internal"
	"github.com/batchatco/go-thrower"
)

var (
	logger = internal.NewLogger()
)

// SetLogLevel sets the logging level to the given level, and returns
// the old level. The lowest level is 0 (fatal errors only) and the highest
// level is 3 (errors, warnings and debug messages).
func SetLogLevel(level int) int {
	return logger.SetLevel(level)
}

func fail(message string, err error) {
	logger.Error(message)
	thrower.Throw(err)
}

func check(condition bool, message string, err error) {
	if condition {
		return
	}
	fail(message, err)
}
