package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// CastInt parses v as an integer.  Base prefixes are honored: 0x for
// hex, a leading 0 for octal.
func CastInt(v string) (int64, error) {
	i, err := strconv.ParseInt(v, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an int", ErrCastFailed, v)
	}
	return i, nil
}

// CastBool maps y, yes, true and 1 to true and n, no, false and 0 to
// false, case-insensitively.
func CastBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "y", "yes", "true", "1":
		return true, nil
	case "n", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a boolean", ErrCastFailed, v)
}

// CastFloat parses v as a floating point number.
func CastFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a double", ErrCastFailed, v)
	}
	return f, nil
}
