// Package ir defines the in-memory tree built from param source text:
// containers of named children and arrays of string values, addressed
// by dotted key paths with single-level scope inheritance.
package ir

// Type discriminates the two node kinds.
type Type int

const (
	// ContainerType nodes hold named children and no values.
	ContainerType Type = iota
	// ArrayType nodes hold an ordered list of string values.
	ArrayType
)

func (t Type) String() string {
	switch t {
	case ContainerType:
		return "container"
	case ArrayType:
		return "array"
	}
	return "unknown"
}

// A Node is one element of a param tree.  Parent is a navigation
// backreference used by inherited lookups; ownership flows from a
// container to its children.
type Node struct {
	Type   Type
	Name   string
	Parent *Node

	Children []*Node  // ContainerType
	Values   []string // ArrayType
}

// NewRoot returns an empty unnamed container.
func NewRoot() *Node { return &Node{Type: ContainerType} }

// NewContainer returns an empty named container.
func NewContainer(name string) *Node { return &Node{Type: ContainerType, Name: name} }

// NewArray returns an empty named array.
func NewArray(name string) *Node { return &Node{Type: ArrayType, Name: name} }

// AddChild appends child to n and sets its parent backreference.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Child returns the first direct child named name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AddValue appends a value to an array node.
func (n *Node) AddValue(v string) {
	n.Values = append(n.Values, v)
}

// Subkeys returns the names of n's children in insertion order.
func (n *Node) Subkeys() []string {
	names := make([]string, len(n.Children))
	for i, c := range n.Children {
		names[i] = c.Name
	}
	return names
}

// Clone deep-copies the subtree rooted at n.  The clone has no parent.
func (n *Node) Clone() *Node {
	res := &Node{Type: n.Type, Name: n.Name}
	if n.Values != nil {
		res.Values = append([]string(nil), n.Values...)
	}
	for _, c := range n.Children {
		cc := c.Clone()
		cc.Parent = res
		res.Children = append(res.Children, cc)
	}
	return res
}
