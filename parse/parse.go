// Package parse builds param trees from source text by recursive
// descent over the token stream.
package parse

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/driftlab/param-format/debug"
	"github.com/driftlab/param-format/ir"
	"github.com/driftlab/param-format/token"
)

// Parse builds a tree from an in-memory buffer.
func Parse(d []byte) (*ir.Node, error) {
	return run(token.NewScanner(token.NewBufferSource(d)))
}

// ParseString builds a tree from s.
func ParseString(s string) (*ir.Node, error) {
	return Parse([]byte(s))
}

// ParseReader builds a tree from r; name labels positions in errors.
func ParseReader(name string, r io.Reader) (*ir.Node, error) {
	return run(token.NewScanner(token.NewSource(name, r)))
}

// ParseFile builds a tree from the file at path.
func ParseFile(path string) (*ir.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseReader(filepath.Base(path), f)
}

type parser struct {
	sc *token.Scanner
}

func run(sc *token.Scanner) (*ir.Node, error) {
	p := &parser{sc: sc}
	root := ir.NewRoot()
	if err := p.container(root, token.EOF); err != nil {
		return nil, err
	}
	return root, nil
}

func (p *parser) next() (token.Token, error) {
	tok, err := p.sc.Next()
	if err != nil {
		return tok, err
	}
	if debug.Tokens() {
		fmt.Fprintf(os.Stderr, "token %s %q at %s:%d\n", tok.Type, tok.Text, p.sc.Name(), tok.Line)
	}
	return tok, nil
}

// container consumes the body of a container until end arrives with
// no assignment or nested container half-built.  A pending child is
// attached only once its form is complete.
func (p *parser) container(cont *ir.Node, end token.Type) error {
	var child *ir.Node
	for {
		tok, err := p.next()
		if err != nil {
			return err
		}
		switch {
		case child == nil && tok.Type == token.Identifier:
			child = &ir.Node{Name: tok.Text}
		case child != nil && tok.Type == token.Assign:
			child.Type = ir.ArrayType
			if err := p.rightSide(child); err != nil {
				return err
			}
			cont.AddChild(child)
			child = nil
		case child != nil && tok.Type == token.OpenContainer:
			child.Type = ir.ContainerType
			if err := p.container(child, token.CloseContainer); err != nil {
				return err
			}
			cont.AddChild(child)
			child = nil
		case child == nil && tok.Type == end:
			return nil
		default:
			return p.syntaxError(tok, "")
		}
	}
}

// rightSide consumes everything after '=': an optional cast, then a
// single value or a bracketed list, then the closing ';'.  Casts are
// recognized and discarded; values keep their literal text.
func (p *parser) rightSide(el *ir.Node) error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok.Type == token.Cast {
		if tok, err = p.next(); err != nil {
			return err
		}
	}
	switch tok.Type {
	case token.Identifier, token.String:
		el.AddValue(tok.Text)
	case token.OpenArray:
		if err := p.array(el); err != nil {
			return err
		}
	default:
		return p.syntaxError(tok, "a value or '['")
	}
	tok, err = p.next()
	if err != nil {
		return err
	}
	if tok.Type != token.EndStatement {
		return p.syntaxError(tok, "';'")
	}
	return nil
}

// array consumes comma-separated values up to ']'.  A trailing comma
// before the closing bracket is accepted.
func (p *parser) array(el *ir.Node) error {
	for {
		tok, err := p.next()
		if err != nil {
			return err
		}
		switch tok.Type {
		case token.Identifier, token.String:
			el.AddValue(tok.Text)
		case token.CloseArray:
			return nil
		default:
			return p.syntaxError(tok, "a value or ']'")
		}
		tok, err = p.next()
		if err != nil {
			return err
		}
		switch tok.Type {
		case token.ArraySep:
		case token.CloseArray:
			return nil
		default:
			return p.syntaxError(tok, "',' or ']'")
		}
	}
}

func (p *parser) syntaxError(tok token.Token, want string) error {
	return &SyntaxError{
		Name: p.sc.Name(),
		Line: tok.Line,
		Col:  tok.Col,
		Tok:  tok.Text,
		Want: want,
	}
}
