package ir

import "fmt"

// scalarNode resolves key to an array node holding at least one
// value, with inheritance.
func scalarNode(root *Node, key string) (*Node, error) {
	el := Find(root, key, true)
	if el == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if el.Type != ArrayType {
		return nil, fmt.Errorf("%w: %s is a %s", ErrTypeMismatch, key, el.Type)
	}
	if len(el.Values) == 0 {
		return nil, fmt.Errorf("%w: %s has no value", ErrTypeMismatch, key)
	}
	return el, nil
}

// arrayNode resolves key to an array node, with inheritance.
func arrayNode(root *Node, key string) (*Node, error) {
	el := Find(root, key, true)
	if el == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if el.Type != ArrayType {
		return nil, fmt.Errorf("%w: %s is a %s", ErrTypeMismatch, key, el.Type)
	}
	return el, nil
}

// Int returns the first value at key cast to an integer.
func Int(root *Node, key string) (int64, error) {
	el, err := scalarNode(root, key)
	if err != nil {
		return 0, err
	}
	i, err := CastInt(el.Values[0])
	if err != nil {
		return 0, fmt.Errorf("key %s: %w", key, err)
	}
	return i, nil
}

// Bool returns the first value at key cast to a boolean.
func Bool(root *Node, key string) (bool, error) {
	el, err := scalarNode(root, key)
	if err != nil {
		return false, err
	}
	b, err := CastBool(el.Values[0])
	if err != nil {
		return false, fmt.Errorf("key %s: %w", key, err)
	}
	return b, nil
}

// Float returns the first value at key cast to a float.
func Float(root *Node, key string) (float64, error) {
	el, err := scalarNode(root, key)
	if err != nil {
		return 0, err
	}
	f, err := CastFloat(el.Values[0])
	if err != nil {
		return 0, fmt.Errorf("key %s: %w", key, err)
	}
	return f, nil
}

// Str returns the first value at key.
func Str(root *Node, key string) (string, error) {
	el, err := scalarNode(root, key)
	if err != nil {
		return "", err
	}
	return el.Values[0], nil
}

// IntArray fills out with values at key cast to integers, stopping at
// the capacity of out, and returns the count filled.
func IntArray(root *Node, key string, out []int64) (int, error) {
	el, err := arrayNode(root, key)
	if err != nil {
		return 0, err
	}
	n := min(len(el.Values), len(out))
	for i := 0; i < n; i++ {
		v, err := CastInt(el.Values[i])
		if err != nil {
			return i, fmt.Errorf("key %s: %w", key, err)
		}
		out[i] = v
	}
	return n, nil
}

// BoolArray fills out with values at key cast to booleans, stopping
// at the capacity of out, and returns the count filled.
func BoolArray(root *Node, key string, out []bool) (int, error) {
	el, err := arrayNode(root, key)
	if err != nil {
		return 0, err
	}
	n := min(len(el.Values), len(out))
	for i := 0; i < n; i++ {
		v, err := CastBool(el.Values[i])
		if err != nil {
			return i, fmt.Errorf("key %s: %w", key, err)
		}
		out[i] = v
	}
	return n, nil
}

// FloatArray fills out with values at key cast to floats, stopping at
// the capacity of out, and returns the count filled.
func FloatArray(root *Node, key string, out []float64) (int, error) {
	el, err := arrayNode(root, key)
	if err != nil {
		return 0, err
	}
	n := min(len(el.Values), len(out))
	for i := 0; i < n; i++ {
		v, err := CastFloat(el.Values[i])
		if err != nil {
			return i, fmt.Errorf("key %s: %w", key, err)
		}
		out[i] = v
	}
	return n, nil
}

// StrArray returns a copy of all values at key.
func StrArray(root *Node, key string) ([]string, error) {
	el, err := arrayNode(root, key)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), el.Values...), nil
}

// ArrayLen returns the number of values at key.
func ArrayLen(root *Node, key string) (int, error) {
	el, err := arrayNode(root, key)
	if err != nil {
		return 0, err
	}
	return len(el.Values), nil
}

// HasKey reports whether key resolves, with inheritance.
func HasKey(root *Node, key string) bool {
	return Find(root, key, true) != nil
}

// SubkeysAt lists the child names under key in insertion order.  An
// empty key addresses the root.
func SubkeysAt(root *Node, key string) ([]string, error) {
	el := root
	if key != "" {
		el = Find(root, key, true)
		if el == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
	}
	return el.Subkeys(), nil
}
