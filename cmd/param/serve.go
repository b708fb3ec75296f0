package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gops/agent"
	"github.com/scott-cotton/cli"

	"github.com/driftlab/param-format/system/paramd"
)

func serve(cfg *ServeConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Serve.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: serve [-addr :7310] [-republish 5s] <file>", cli.ErrUsage)
	}
	var republish time.Duration
	if cfg.Republish != "" {
		republish, err = time.ParseDuration(cfg.Republish)
		if err != nil {
			return fmt.Errorf("%w: bad -republish %q: %v", cli.ErrUsage, cfg.Republish, err)
		}
	}
	addr := cfg.Addr
	if addr == "" {
		addr = ":7310"
	}

	// gops agent for runtime diagnostics
	if err := agent.Listen(agent.Options{}); err != nil {
		fmt.Fprintf(cc.Out, "gops agent failed: %v\n", err)
	}

	srv, err := paramd.New(&paramd.Spec{
		Config: &paramd.Config{
			File:      args[0],
			Addr:      addr,
			Republish: republish,
		},
	})
	if err != nil {
		return err
	}
	l, err := paramd.NewTCPListener(addr, srv)
	if err != nil {
		return err
	}
	return l.Serve(context.Background())
}
