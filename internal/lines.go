package internal

import (
	"bufio"
	"io"
	"strings"
)

// LineReader reads text one line at a time and remembers the line number.
// One line can be pushed back with Unread.
type LineReader struct {
	r       *bufio.Reader
	line    int
	current string
	unread  bool
	err     error
}

func NewLineReader(r io.Reader) *LineReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &LineReader{r: br}
}

// Next returns the next line without its line ending. At end of input it
// returns io.EOF.
func (lr *LineReader) Next() (string, error) {
	if lr.unread {
		lr.unread = false
		lr.line++
		return lr.current, nil
	}
	if lr.err != nil {
		return "", lr.err
	}
	s, err := lr.r.ReadString('\n')
	if err != nil {
		if err != io.EOF || s == "" {
			lr.err = err
			return "", err
		}
		// last line without a newline
		lr.err = io.EOF
	}
	lr.line++
	lr.current = strings.TrimRight(s, "\r\n")
	return lr.current, nil
}

// Unread pushes the last line back.
func (lr *LineReader) Unread() {
	if lr.line == 0 || lr.unread {
		return
	}
	lr.unread = true
	lr.line--
}

// Line is the number of the last line returned by Next, starting at 1.
func (lr *LineReader) Line() int {
	return lr.line
}

// Skip reads lines until one is not blank, and pushes that one back.
func (lr *LineReader) Skip() error {
	for {
		s, err := lr.Next()
		if err != nil {
			return err
		}
		if strings.TrimSpace(s) != "" {
			lr.Unread()
			return nil
		}
	}
}
