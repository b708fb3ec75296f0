package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})

	return cli.NewCommandAt(&cfg.Main, "param").
		WithSynopsis("param [opts] command [opts]").
		WithDescription("param is a tool for working with param configuration trees.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return paramMain(cfg, cc, args)
		}).
		WithSubs(
			PrintCommand(cfg),
			GetCommand(cfg),
			KeysCommand(cfg),
			DiffCommand(cfg),
			EvalCommand(cfg),
			YAMLCommand(cfg),
			ServeCommand(cfg),
			FetchCommand(cfg))
}

func PrintCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PrintConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Print, "print").
		WithAliases("p", "pr").
		WithSynopsis("print [files]").
		WithDescription("parse param files and re-encode them").
		WithRun(func(cc *cli.Context, args []string) error {
			return printFiles(cfg, cc, args)
		})
}

func GetCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GetConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Get, "get").
		WithAliases("g", "ge").
		WithSynopsis("get <keypath> [files]").
		WithDescription("resolve a dotted key path and print its values").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return get(cfg, cc, args)
		})
}

func KeysCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &KeysConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Keys, "keys").
		WithAliases("k", "ls").
		WithSynopsis("keys <keypath> [files]").
		WithDescription("list the subkeys of a container ('' addresses the root)").
		WithRun(func(cc *cli.Context, args []string) error {
			return keys(cfg, cc, args)
		})
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithAliases("d", "di").
		WithSynopsis("diff a b").
		WithDescription("diff two param files").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
}

func EvalCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &EvalConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Eval, "eval").
		WithAliases("e", "ev").
		WithSynopsis("eval -e <expr> [file]").
		WithDescription(evalDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return eval(cfg, cc, args)
		})
}

const evalDescription = `Evaluate an expression against a param file.

The expression language exposes the tree through functions:

  getstr(key)    first value at key, as a string
  getint(key)    first value at key, as an integer
  getnum(key)    first value at key, as a number
  getbool(key)   first value at key, as a boolean
  haskey(key)    whether key resolves
  subkeys(key)   names under a container key
  arraylen(key)  number of values at key

Key paths resolve with scope inheritance, so
'getstr("outer.inner.val")' finds val in an enclosing scope.`

func YAMLCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &YAMLConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.YAML, "yaml").
		WithAliases("y").
		WithSynopsis("yaml [files]").
		WithDescription("export param trees as YAML").
		WithRun(func(cc *cli.Context, args []string) error {
			return yamlExport(cfg, cc, args)
		})
}

func ServeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ServeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Serve, "serve").
		WithSynopsis("serve [-addr :7310] [-republish 5s] <file>").
		WithDescription("run the param server, publishing the file to subscribers").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return serve(cfg, cc, args)
		})
}

func FetchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &FetchConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Fetch, "fetch").
		WithAliases("f").
		WithSynopsis("fetch [-addr host:port] [-watch]").
		WithDescription("bootstrap a tree from a param server and print it").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return fetch(cfg, cc, args)
		})
}
