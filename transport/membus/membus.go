// Package membus is an in-process transport for tests and for
// servers colocated with their clients.  Publication is synchronous:
// Publish returns after every subscriber has run.
package membus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/driftlab/param-format/debug"
	"github.com/driftlab/param-format/transport"
)

// ErrNoAuthority reports a snapshot or set request on a bus with no
// authority attached.
var ErrNoAuthority = errors.New("membus: no authority attached")

// Bus fans updates out to subscribers and routes requests to an
// attached authority.
type Bus struct {
	mu        sync.RWMutex
	subs      map[int64]func(*transport.Update)
	nextID    int64
	onRequest func(*transport.Request)
	onSet     func(*transport.SetRequest)
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[int64]func(*transport.Update))}
}

// Publish delivers u to every subscriber.
func (b *Bus) Publish(u *transport.Update) {
	if debug.Bus() {
		fmt.Fprintf(os.Stderr, "membus: publish seq %d from server %d\n", u.SeqNo, u.ServerID)
	}
	b.mu.RLock()
	fns := make([]func(*transport.Update), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(u)
	}
}

// HandleRequests registers the authority's snapshot request handler.
func (b *Bus) HandleRequests(fn func(*transport.Request)) {
	b.mu.Lock()
	b.onRequest = fn
	b.mu.Unlock()
}

// HandleSets registers the authority's set request handler.
func (b *Bus) HandleSets(fn func(*transport.SetRequest)) {
	b.mu.Lock()
	b.onSet = fn
	b.mu.Unlock()
}

// Set routes a set request to the authority.
func (b *Bus) Set(values map[string]string) error {
	b.mu.RLock()
	fn := b.onSet
	b.mu.RUnlock()
	if fn == nil {
		return ErrNoAuthority
	}
	fn(&transport.SetRequest{UTime: time.Now().UnixMicro(), Values: values})
	return nil
}

// Client returns a Transport view of the bus.
func (b *Bus) Client() transport.Transport {
	return &client{bus: b}
}

type client struct {
	bus *Bus
}

func (c *client) RequestSnapshot(ctx context.Context) error {
	c.bus.mu.RLock()
	fn := c.bus.onRequest
	c.bus.mu.RUnlock()
	if fn == nil {
		return ErrNoAuthority
	}
	fn(&transport.Request{UTime: time.Now().UnixMicro()})
	return nil
}

func (c *client) Subscribe(fn func(*transport.Update)) (transport.Subscription, error) {
	c.bus.mu.Lock()
	c.bus.nextID++
	id := c.bus.nextID
	c.bus.subs[id] = fn
	c.bus.mu.Unlock()
	return &sub{bus: c.bus, id: id}, nil
}

func (c *client) Close() error { return nil }

type sub struct {
	bus *Bus
	id  int64
}

func (s *sub) Close() error {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
	return nil
}
