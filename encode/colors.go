package encode

import "github.com/fatih/color"

// Colors selects the output colors for keys and values.
type Colors struct {
	Key   *color.Color
	Value *color.Color
}

// NewColors returns the default color scheme.
func NewColors() *Colors {
	return &Colors{
		Key:   color.New(color.FgCyan),
		Value: color.New(color.FgGreen),
	}
}

func (es *encState) key(s string) string {
	if es.colors == nil || es.colors.Key == nil {
		return s
	}
	return es.colors.Key.Sprint(s)
}

func (es *encState) val(s string) string {
	if es.colors == nil || es.colors.Value == nil {
		return s
	}
	return es.colors.Value.Sprint(s)
}
