package main

import (
	"fmt"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/driftlab/param-format/encode"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff a b", cli.ErrUsage)
	}
	a, err := diffText(cfg, args[0])
	if err != nil {
		return err
	}
	b, err := diffText(cfg, args[1])
	if err != nil {
		return err
	}
	dmp := diffpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	if useColor(cc, cfg.MainConfig) {
		fmt.Fprint(cc.Out, dmp.DiffPrettyText(diffs))
		return nil
	}
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffInsert:
			fmt.Fprintf(cc.Out, "+%s", d.Text)
		case diffpatch.DiffDelete:
			fmt.Fprintf(cc.Out, "-%s", d.Text)
		case diffpatch.DiffEqual:
			fmt.Fprint(cc.Out, d.Text)
		}
	}
	return nil
}

// diffText renders a file for diffing.  By default the tree is
// parsed and re-encoded first so formatting differences wash out;
// -raw compares the source text as-is.
func diffText(cfg *DiffConfig, file string) (string, error) {
	if cfg.Raw {
		d, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(d), nil
	}
	root, err := loadFile(file)
	if err != nil {
		return "", fmt.Errorf("error processing %s: %w", file, err)
	}
	d, err := encode.Bytes(root)
	if err != nil {
		return "", err
	}
	return string(d), nil
}

func useColor(cc *cli.Context, cfg *MainConfig) bool {
	if cfg.Color {
		return true
	}
	f, ok := cc.Out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
