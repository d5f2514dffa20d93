package internal

import (
	"io"
	"strings"
	"testing"
)

func TestLineReader(t *testing.T) {
	lr := NewLineReader(strings.NewReader("one\r\n\n  \nfour"))
	s, err := lr.Next()
	if err != nil || s != "one" || lr.Line() != 1 {
		t.Error("got", s, err, lr.Line())
		return
	}
	lr.Unread()
	if lr.Line() != 0 {
		t.Error("line after Unread", lr.Line())
	}
	s, _ = lr.Next()
	if s != "one" || lr.Line() != 1 {
		t.Error("unread line", s, lr.Line())
		return
	}
	if err := lr.Skip(); err != nil {
		t.Error(err)
		return
	}
	s, err = lr.Next()
	if err != nil || s != "four" || lr.Line() != 4 {
		t.Error("got", s, err, lr.Line())
		return
	}
	_, err = lr.Next()
	if err != io.EOF {
		t.Error("want EOF, got", err)
	}
	if lr.Line() != 4 {
		t.Error("line moved at EOF", lr.Line())
	}
}
