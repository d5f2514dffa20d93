package internal

import (
	"regexp"
)

const (
	// Labels are printable ASCII, blanks included.
	labelPattern = `^[\x20-\x7e]*$`
)

var labelRe = regexp.MustCompile(labelPattern)

// IsPrintableLabel returns true if label only holds printable ASCII.
func IsPrintableLabel(label string) bool {
	return labelRe.MatchString(label)
}
