package main

import (
	"io"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"

	"github.com/driftlab/param-format/encode"
)

type MainConfig struct {
	Color bool `cli:"name=color desc='encode with color'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.Option {
	if cfg.Color {
		return []encode.Option{encode.WithColors(encode.NewColors())}
	}
	// it would be nicer if cli supported
	// pointers to builtin types as well...
	colorsSet := false
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		colorsSet = opt.Value != nil
		break
	}
	if colorsSet {
		return nil
	}
	f, ok := w.(*os.File)
	if !ok {
		return nil
	}
	if isatty.IsTerminal(f.Fd()) {
		return []encode.Option{encode.WithColors(encode.NewColors())}
	}
	return nil
}

type PrintConfig struct {
	*MainConfig

	Print *cli.Command
}

type GetConfig struct {
	*MainConfig

	NoInherit bool `cli:"name=noinherit desc='resolve without scope inheritance'"`

	Get *cli.Command
}

type KeysConfig struct {
	*MainConfig

	Keys *cli.Command
}

type DiffConfig struct {
	*MainConfig

	Raw bool `cli:"name=raw desc='diff source text without normalizing'"`

	Diff *cli.Command
}

type EvalConfig struct {
	*MainConfig

	Expr string `cli:"name=e desc='expression to evaluate'"`

	Eval *cli.Command
}

type YAMLConfig struct {
	*MainConfig

	YAML *cli.Command
}

type ServeConfig struct {
	*MainConfig

	Addr      string `cli:"name=addr desc='listen address (default :7310)'"`
	Republish string `cli:"name=republish desc='rebroadcast interval, e.g. 5s'"`

	Serve *cli.Command
}

type FetchConfig struct {
	*MainConfig

	Addr  string `cli:"name=addr desc='server address (default 127.0.0.1:7310)'"`
	Watch bool   `cli:"name=watch desc='stay subscribed and print each generation'"`

	Fetch *cli.Command
}

const defaultAddr = "127.0.0.1:7310"
