// Package token provides lexical scanning of param source text.
package token

import "fmt"

// Type classifies a lexical unit.
type Type int

const (
	Invalid Type = iota
	Identifier
	OpenContainer  // {
	CloseContainer // }
	OpenArray      // [
	CloseArray     // ]
	ArraySep       // ,
	Assign         // =
	String         // double-quoted literal
	EndStatement   // ;
	Cast           // (...)
	EOF
)

func (t Type) String() string {
	switch t {
	case Invalid:
		return "invalid"
	case Identifier:
		return "identifier"
	case OpenContainer:
		return "{"
	case CloseContainer:
		return "}"
	case OpenArray:
		return "["
	case CloseArray:
		return "]"
	case ArraySep:
		return ","
	case Assign:
		return "="
	case String:
		return "string"
	case EndStatement:
		return ";"
	case Cast:
		return "cast"
	case EOF:
		return "EOF"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// A Token is one lexical unit together with its literal text and the
// position where it began.  String and Cast tokens carry their text
// without the surrounding delimiters.
type Token struct {
	Type Type
	Text string
	Line int // 1-based
	Col  int
}
