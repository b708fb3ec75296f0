package ir

import "fmt"

// settable resolves key without inheritance, creating the path when
// it is absent.  An existing container at key is a type mismatch.
func settable(root *Node, key string) (*Node, error) {
	el := Find(root, key, false)
	if el == nil {
		return Create(root, key), nil
	}
	if el.Type != ArrayType {
		return nil, fmt.Errorf("%w: %s is a %s", ErrTypeMismatch, key, el.Type)
	}
	return el, nil
}

// SetValue sets key to a single value, creating the path if absent.
// An existing first value is replaced; other values stay.
func SetValue(root *Node, key, val string) error {
	el, err := settable(root, key)
	if err != nil {
		return err
	}
	if len(el.Values) == 0 {
		el.AddValue(val)
	} else {
		el.Values[0] = val
	}
	return nil
}

// SetValues replaces the whole value list at key, creating the path
// if absent.
func SetValues(root *Node, key string, vals []string) error {
	el, err := settable(root, key)
	if err != nil {
		return err
	}
	el.Values = append([]string(nil), vals...)
	return nil
}
