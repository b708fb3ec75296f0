package ir

import "strings"

// Find resolves a dotted key path against scope, searching direct
// children in insertion order.  With inherit set, a final path
// segment missing from its scope is retried against the enclosing
// scope, chaining upward ancestor by ancestor until it resolves or
// the root is reached.  A miss on a segment that still has a
// remainder never consults ancestors.
func Find(scope *Node, key string, inherit bool) *Node {
	seg, remainder, hasRemainder := strings.Cut(key, ".")
	if child := scope.Child(seg); child != nil {
		if hasRemainder {
			return Find(child, remainder, inherit)
		}
		return child
	}
	if inherit && !hasRemainder && scope.Parent != nil {
		return Find(scope.Parent, seg, inherit)
	}
	return nil
}

// Create resolves key like Find without inheritance, materializing
// missing segments along the way: containers for intermediate
// segments, an array for the final one.  Existing nodes on the path
// are reused.
func Create(scope *Node, key string) *Node {
	seg, remainder, hasRemainder := strings.Cut(key, ".")
	if child := scope.Child(seg); child != nil {
		if hasRemainder {
			return Create(child, remainder)
		}
		return child
	}
	if hasRemainder {
		child := NewContainer(seg)
		scope.AddChild(child)
		return Create(child, remainder)
	}
	child := NewArray(seg)
	scope.AddChild(child)
	return child
}
