package internal

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Free-format input: values separated by blanks or commas, optionally quoted,
// with <count>*<value> standing for count copies of value.

type TokenKind int

const (
	TokenWord   TokenKind = iota
	TokenQuoted           // 'text' or "text", quotes removed
	TokenRepeat           // count*value
)

type Token struct {
	Kind  TokenKind
	Text  string // the value, without quotes or repeat count
	Count int    // 1 unless Kind is TokenRepeat
	Col   int    // 1-based column of the first character
}

var (
	ErrUnterminatedQuote = errors.New("unterminated quote")
	ErrBadRepeat         = errors.New("bad repeat count")
)

// TokenError locates a tokenizing error on its line.
type TokenError struct {
	Col int
	Err error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("column %d: %v", e.Col, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

func isSeparator(c byte) bool {
	return c == ' ' || c == '\t' || c == ',' || c == '\r' || c == '\n'
}

// Tokenize splits one line of free-format input.
func Tokenize(line string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(line) {
		c := line[i]
		if isSeparator(c) {
			i++
			continue
		}
		start := i
		if c == '\'' || c == '"' {
			end := strings.IndexByte(line[i+1:], c)
			if end < 0 {
				return nil, &TokenError{Col: start + 1, Err: ErrUnterminatedQuote}
			}
			tokens = append(tokens, Token{Kind: TokenQuoted, Text: line[i+1 : i+1+end], Count: 1, Col: start + 1})
			i += end + 2
			continue
		}
		for i < len(line) && !isSeparator(line[i]) {
			i++
		}
		tok, err := word(line[start:i], start+1)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func word(s string, col int) (Token, error) {
	star := strings.IndexByte(s, '*')
	if star < 0 {
		return Token{Kind: TokenWord, Text: s, Count: 1, Col: col}, nil
	}
	count, err := strconv.Atoi(s[:star])
	if err != nil || count < 1 {
		return Token{}, &TokenError{Col: col, Err: fmt.Errorf("%w: %q", ErrBadRepeat, s)}
	}
	value := s[star+1:]
	if value == "" || strings.IndexByte(value, '*') >= 0 {
		return Token{}, &TokenError{Col: col, Err: fmt.Errorf("%w: %q", ErrBadRepeat, s)}
	}
	return Token{Kind: TokenRepeat, Text: value, Count: count, Col: col}, nil
}

// Len is the number of values the tokens stand for once expanded. It stops
// at math.MaxInt.
func Len(tokens []Token) int {
	n := 0
	for _, t := range tokens {
		if t.Count > math.MaxInt-n {
			return math.MaxInt
		}
		n += t.Count
	}
	return n
}

// Expand replaces every repeat token by Count copies of its value. A repeat
// count larger than the room left under limit is an ErrBadRepeat. Plain
// values are always kept, so the result may still be longer than limit.
func Expand(tokens []Token, limit int) ([]string, error) {
	var vals []string
	for _, t := range tokens {
		if t.Kind == TokenRepeat && t.Count > limit-len(vals) {
			return nil, &TokenError{Col: t.Col,
				Err: fmt.Errorf("%w: %d*%s, at most %d values left", ErrBadRepeat, t.Count, t.Text, max(limit-len(vals), 0))}
		}
		for range t.Count {
			vals = append(vals, t.Text)
		}
	}
	return vals, nil
}

// Compact is the inverse of Expand: runs of equal values become count*value.
func Compact(vals []string) []string {
	var out []string
	for i := 0; i < len(vals); {
		j := i + 1
		for j < len(vals) && vals[j] == vals[i] {
			j++
		}
		if j-i > 1 {
			out = append(out, strconv.Itoa(j-i)+"*"+vals[i])
		} else {
			out = append(out, vals[i])
		}
		i = j
	}
	return out
}
