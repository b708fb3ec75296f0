package main

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/scott-cotton/cli"

	"github.com/driftlab/param-format/ir"
)

func eval(cfg *EvalConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Eval.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Expr == "" {
		return fmt.Errorf("%w: -e <expr> is required", cli.ErrUsage)
	}
	file := "-"
	switch len(args) {
	case 0:
	case 1:
		file = args[0]
	default:
		return fmt.Errorf("%w: eval -e <expr> [file]", cli.ErrUsage)
	}
	root, err := loadFile(file)
	if err != nil {
		return fmt.Errorf("error processing %s: %w", file, err)
	}
	prg, err := expr.Compile(cfg.Expr, treeFuncs(root)...)
	if err != nil {
		return fmt.Errorf("error compiling %q: %w", cfg.Expr, err)
	}
	res, err := expr.Run(prg, map[string]any{})
	if err != nil {
		return fmt.Errorf("error evaluating %q: %w", cfg.Expr, err)
	}
	fmt.Fprintf(cc.Out, "%v\n", res)
	return nil
}

// treeFuncs exposes tree lookups to the expression language.  All key
// resolution happens with scope inheritance, matching the getters.
func treeFuncs(root *ir.Node) []expr.Option {
	return []expr.Option{
		expr.Function("getstr",
			func(params ...any) (any, error) {
				v, err := ir.Str(root, params[0].(string))
				return v, err
			},
			new(func(string) string)),
		expr.Function("getint",
			func(params ...any) (any, error) {
				v, err := ir.Int(root, params[0].(string))
				return v, err
			},
			new(func(string) int64)),
		expr.Function("getnum",
			func(params ...any) (any, error) {
				v, err := ir.Float(root, params[0].(string))
				return v, err
			},
			new(func(string) float64)),
		expr.Function("getbool",
			func(params ...any) (any, error) {
				v, err := ir.Bool(root, params[0].(string))
				return v, err
			},
			new(func(string) bool)),
		expr.Function("haskey",
			func(params ...any) (any, error) {
				return ir.HasKey(root, params[0].(string)), nil
			},
			new(func(string) bool)),
		expr.Function("subkeys",
			func(params ...any) (any, error) {
				v, err := ir.SubkeysAt(root, params[0].(string))
				return v, err
			},
			new(func(string) []string)),
		expr.Function("arraylen",
			func(params ...any) (any, error) {
				v, err := ir.ArrayLen(root, params[0].(string))
				return v, err
			},
			new(func(string) int)),
	}
}
