package parse

import (
	"errors"
	"fmt"
)

// ErrSyntax is the sentinel for grammar errors.
var ErrSyntax = errors.New("syntax error")

// A SyntaxError reports the position and text of an offending token.
type SyntaxError struct {
	Name string
	Line int
	Col  int
	Tok  string
	Want string
}

func (e *SyntaxError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("%s:%d:%d: unexpected token %q", e.Name, e.Line, e.Col, e.Tok)
	}
	return fmt.Sprintf("%s:%d:%d: unexpected token %q, expected %s",
		e.Name, e.Line, e.Col, e.Tok, e.Want)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }
