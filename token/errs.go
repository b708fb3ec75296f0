package token

import "errors"

// ErrLex is the sentinel for all lexical errors: non-printable input,
// unterminated strings and casts, oversized tokens, and characters
// that begin no token.
var ErrLex = errors.New("lex error")
