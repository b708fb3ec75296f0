package token

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// A Source supplies characters to the scanner.  Comments run from '#'
// to end of line, every whitespace character comes back as a single
// space, and one character of pushback is supported so the scanner
// can return a terminator it over-read.
type Source struct {
	name string
	r    io.ByteReader

	line int // 0-based internally
	col  int

	inComment   bool
	pushback    byte
	hasPushback bool
}

// NewSource reads characters from r; name labels positions in errors.
func NewSource(name string, r io.Reader) *Source {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Source{name: name, r: br}
}

// NewBufferSource reads characters from an in-memory buffer.
func NewBufferSource(d []byte) *Source {
	return &Source{name: "buffer", r: bytes.NewReader(d)}
}

// Name returns the label used in error positions.
func (s *Source) Name() string { return s.name }

// Pos reports the current 1-based line and the column of the last
// character returned.
func (s *Source) Pos() (line, col int) { return s.line + 1, s.col }

// NextCh returns the next printable character.  Newlines and other
// whitespace come back as single spaces.  io.EOF marks end of input.
func (s *Source) NextCh() (byte, error) {
	if s.hasPushback {
		s.hasPushback = false
		return s.pushback, nil
	}
	for {
		ch, err := s.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return 0, io.EOF
			}
			return 0, err
		}
		// newline ends a comment and counts as whitespace
		if ch == '\n' {
			s.line++
			s.col = 0
			s.inComment = false
			return ' ', nil
		}
		if ch == '#' {
			s.inComment = true
		}
		if s.inComment {
			continue
		}
		s.col++
		if isSpace(ch) {
			return ' ', nil
		}
		if !isPrint(ch) {
			return 0, fmt.Errorf("%w: %s:%d: non-printable character 0x%02x",
				ErrLex, s.name, s.line+1, ch)
		}
		return ch, nil
	}
}

// UngetCh hands ch back to the source so the next NextCh returns it.
// Only one character may be held back at a time.
func (s *Source) UngetCh(ch byte) {
	s.pushback = ch
	s.hasPushback = true
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\v', '\f':
		return true
	}
	return false
}

// isPrint admits printable ASCII plus any byte of a multi-byte UTF-8
// sequence.
func isPrint(ch byte) bool {
	return (ch >= 0x20 && ch < 0x7f) || ch >= 0x80
}
