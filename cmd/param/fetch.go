package main

import (
	"context"
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/driftlab/param-format/store"
	"github.com/driftlab/param-format/transport/jrpc"
)

func fetch(cfg *FetchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Fetch.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: fetch [-addr host:port] [-watch]", cli.ErrUsage)
	}
	addr := cfg.Addr
	if addr == "" {
		addr = defaultAddr
	}
	ctx := context.Background()
	client, err := jrpc.Dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("could not connect to %s: %w", addr, err)
	}
	defer client.Close()

	st, err := store.NewFromServer(ctx, client, store.KeepUpdated(cfg.Watch))
	if err != nil {
		return err
	}
	if _, err := st.WriteTo(cc.Out); err != nil {
		return err
	}
	if !cfg.Watch {
		return nil
	}

	w := st.Watch(4)
	defer st.Unwatch(w)
	for {
		select {
		case gen := <-w.Events:
			fmt.Fprintf(cc.Out, "# generation %d from server %d\n", gen.SeqNo, gen.ServerID)
			if _, err := st.WriteTo(cc.Out); err != nil {
				return err
			}
		case <-w.Failed:
			return fmt.Errorf("watch failed: events not consumed in time")
		case <-client.Done():
			return client.Err()
		}
	}
}
