package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/driftlab/param-format/ir"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: get <keypath> [files]", cli.ErrUsage)
	}
	key := args[0]
	files := args[1:]
	if len(files) == 0 {
		files = []string{"-"}
	}
	for _, file := range files {
		root, err := loadFile(file)
		if err != nil {
			return fmt.Errorf("error processing %s: %w", file, err)
		}
		el := ir.Find(root, key, !cfg.NoInherit)
		if el == nil {
			return fmt.Errorf("%w: %s in %s", ir.ErrNotFound, key, file)
		}
		switch el.Type {
		case ir.ArrayType:
			for _, v := range el.Values {
				fmt.Fprintln(cc.Out, v)
			}
		case ir.ContainerType:
			for _, name := range el.Subkeys() {
				fmt.Fprintln(cc.Out, name)
			}
		}
	}
	return nil
}

func keys(cfg *KeysConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Keys.Parse(cc, args)
	if err != nil {
		return err
	}
	key := ""
	if len(args) > 0 {
		key = args[0]
		args = args[1:]
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, file := range args {
		root, err := loadFile(file)
		if err != nil {
			return fmt.Errorf("error processing %s: %w", file, err)
		}
		names, err := ir.SubkeysAt(root, key)
		if err != nil {
			return fmt.Errorf("%w in %s", err, file)
		}
		for _, name := range names {
			fmt.Fprintln(cc.Out, name)
		}
	}
	return nil
}
