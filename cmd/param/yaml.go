package main

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/scott-cotton/cli"

	"github.com/driftlab/param-format/ir"
)

func yamlExport(cfg *YAMLConfig, cc *cli.Context, args []string) error {
	args, err := cfg.YAML.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	n := len(args)
	for i, file := range args {
		root, err := loadFile(file)
		if err != nil {
			return fmt.Errorf("error processing %s: %w", file, err)
		}
		d, err := yaml.Marshal(toYAML(root))
		if err != nil {
			return fmt.Errorf("error encoding %s: %w", file, err)
		}
		if _, err := cc.Out.Write(d); err != nil {
			return err
		}
		if i < n-1 {
			if _, err := cc.Out.Write([]byte("---\n")); err != nil {
				return err
			}
		}
	}
	return nil
}

// toYAML converts a tree to plain maps and slices: containers become
// mappings, single-value arrays become scalars, multi-value arrays
// become sequences.  Child insertion order is not preserved by the
// mapping.
func toYAML(n *ir.Node) any {
	if n.Type == ir.ArrayType {
		if len(n.Values) == 1 {
			return n.Values[0]
		}
		vals := make([]any, len(n.Values))
		for i, v := range n.Values {
			vals[i] = v
		}
		return vals
	}
	m := make(map[string]any, len(n.Children))
	for _, c := range n.Children {
		m[c.Name] = toYAML(c)
	}
	return m
}
