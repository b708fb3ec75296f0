package token

import (
	"fmt"
	"io"
	"strings"
)

// DefaultLimit bounds the accumulated text of a single token.
const DefaultLimit = 256

// A Scanner turns a character Source into a stream of Tokens.
type Scanner struct {
	src   *Source
	limit int
}

// NewScanner returns a scanner over src with the default token size
// limit.
func NewScanner(src *Source) *Scanner {
	return &Scanner{src: src, limit: DefaultLimit}
}

// SetLimit overrides the maximum token size in bytes.
func (sc *Scanner) SetLimit(n int) { sc.limit = n }

// Name returns the label the scanner uses in error positions.
func (sc *Scanner) Name() string { return sc.src.Name() }

// Next returns the next token.  String and cast text excludes the
// surrounding delimiters; escape characters inside strings stay in
// the text as written.
func (sc *Scanner) Next() (Token, error) {
	var (
		ch  byte
		err error
	)
	for {
		ch, err = sc.src.NextCh()
		if err != nil || ch != ' ' {
			break
		}
	}
	line, col := sc.src.Pos()
	tok := Token{Line: line, Col: col}
	if err == io.EOF {
		tok.Type, tok.Text = EOF, "EOF"
		return tok, nil
	}
	if err != nil {
		return tok, err
	}

	switch ch {
	case ';':
		tok.Type, tok.Text = EndStatement, ";"
		return tok, nil
	case '=':
		tok.Type, tok.Text = Assign, "="
		return tok, nil
	case '[':
		tok.Type, tok.Text = OpenArray, "["
		return tok, nil
	case ']':
		tok.Type, tok.Text = CloseArray, "]"
		return tok, nil
	case '{':
		tok.Type, tok.Text = OpenContainer, "{"
		return tok, nil
	case '}':
		tok.Type, tok.Text = CloseContainer, "}"
		return tok, nil
	case ',':
		tok.Type, tok.Text = ArraySep, ","
		return tok, nil
	}

	var (
		b      strings.Builder
		endCh  byte
		escape byte
	)
	switch {
	case ch == '"':
		tok.Type = String
		endCh, escape = '"', '\\'
	case ch == '(':
		tok.Type = Cast
		endCh = ')'
	case isIdentCh(ch):
		tok.Type = Identifier
		b.WriteByte(ch)
	default:
		return tok, fmt.Errorf("%w: %s:%d: unexpected character %q",
			ErrLex, sc.src.Name(), line, string(ch))
	}

	var prev byte
	for {
		ch, err = sc.src.NextCh()
		if tok.Type == Identifier {
			if err == nil && isIdentCh(ch) {
				b.WriteByte(ch)
				if b.Len() >= sc.limit {
					return tok, sc.errTooLarge(line)
				}
				continue
			}
			if err == nil {
				sc.src.UngetCh(ch)
			} else if err != io.EOF {
				return tok, err
			}
			tok.Text = b.String()
			return tok, nil
		}
		if err == io.EOF {
			return tok, fmt.Errorf("%w: %s:%d: expected %q before end of input",
				ErrLex, sc.src.Name(), line, string(endCh))
		}
		if err != nil {
			return tok, err
		}
		if ch == endCh && (escape == 0 || prev != escape) {
			tok.Text = b.String()
			return tok, nil
		}
		prev = ch
		b.WriteByte(ch)
		if b.Len() >= sc.limit {
			return tok, sc.errTooLarge(line)
		}
	}
}

func (sc *Scanner) errTooLarge(line int) error {
	return fmt.Errorf("%w: %s:%d: token too large (limit %d bytes)",
		ErrLex, sc.src.Name(), line, sc.limit)
}

func isIdentCh(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z':
		return true
	case ch >= 'A' && ch <= 'Z':
		return true
	case ch >= '0' && ch <= '9':
		return true
	case ch == '_' || ch == '-' || ch == '.':
		return true
	}
	return false
}
