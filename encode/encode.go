// Package encode writes param trees back out as source text.
package encode

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/driftlab/param-format/ir"
)

const indentWidth = 4

type encState struct {
	colors *Colors
}

// An Option configures encoding.
type Option func(*encState)

// WithColors turns on colorized output.
func WithColors(c *Colors) Option {
	return func(es *encState) { es.colors = c }
}

// Encode writes the children of root to w in source form.  Values are
// always quoted and every array element is followed by ", ", which
// the parser reads back as a trailing comma.
func Encode(root *ir.Node, w io.Writer, opts ...Option) error {
	es := &encState{}
	for _, opt := range opts {
		opt(es)
	}
	for _, child := range root.Children {
		if err := es.node(child, w, 0); err != nil {
			return err
		}
	}
	return nil
}

// Bytes renders root to a buffer.
func Bytes(root *ir.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(root, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (es *encState) node(n *ir.Node, w io.Writer, depth int) error {
	switch n.Type {
	case ir.ContainerType:
		return es.container(n, w, depth)
	case ir.ArrayType:
		return es.array(n, w, depth)
	}
	return fmt.Errorf("unknown element type %v", n.Type)
}

func (es *encState) container(n *ir.Node, w io.Writer, depth int) error {
	ind := strings.Repeat(" ", depth*indentWidth)
	if _, err := fmt.Fprintf(w, "%s%s {\n", ind, es.key(n.Name)); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := es.node(child, w, depth+1); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s}\n", ind)
	return err
}

func (es *encState) array(n *ir.Node, w io.Writer, depth int) error {
	ind := strings.Repeat(" ", depth*indentWidth)
	if _, err := fmt.Fprintf(w, "%s%s = [", ind, es.key(n.Name)); err != nil {
		return err
	}
	for _, v := range n.Values {
		if _, err := fmt.Fprintf(w, "%s, ", es.val(`"`+v+`"`)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "];\n")
	return err
}
