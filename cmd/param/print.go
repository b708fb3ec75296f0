package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/driftlab/param-format/encode"
)

func printFiles(cfg *PrintConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Print.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, file := range args {
		root, err := loadFile(file)
		if err != nil {
			return fmt.Errorf("error processing %s: %w", file, err)
		}
		if err := encode.Encode(root, cc.Out, cfg.encOpts(cc.Out)...); err != nil {
			return fmt.Errorf("error encoding %s: %w", file, err)
		}
	}
	return nil
}
