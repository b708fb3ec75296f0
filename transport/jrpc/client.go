package jrpc

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"sync"
	"time"

	"go.lsp.dev/jsonrpc2"

	"github.com/driftlab/param-format/transport"
)

// Client is the client half of the wire transport.  It implements
// transport.Transport: snapshot results and pushed updates both flow
// to subscribers, so a store admits them through a single path.
type Client struct {
	conn jsonrpc2.Conn

	mu     sync.Mutex
	subs   map[int64]func(*transport.Update)
	nextID int64
}

// Dial connects to a param server at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, nc), nil
}

// NewClient runs the client protocol over rwc.
func NewClient(ctx context.Context, rwc io.ReadWriteCloser) *Client {
	c := &Client{subs: make(map[int64]func(*transport.Update))}
	c.conn = jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	c.conn.Go(ctx, c.handle)
	return c
}

func (c *Client) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case MethodUpdate:
		u := &transport.Update{}
		if err := json.Unmarshal(req.Params(), u); err != nil {
			return reply(ctx, nil, err)
		}
		c.dispatch(u)
		return reply(ctx, nil, nil)
	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

func (c *Client) dispatch(u *transport.Update) {
	c.mu.Lock()
	fns := make([]func(*transport.Update), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(u)
	}
}

// RequestSnapshot fetches the server's current generation and feeds
// it to subscribers.
func (c *Client) RequestSnapshot(ctx context.Context) error {
	u := &transport.Update{}
	req := &transport.Request{UTime: time.Now().UnixMicro()}
	if _, err := c.conn.Call(ctx, MethodRequest, req, u); err != nil {
		return err
	}
	c.dispatch(u)
	return nil
}

// Set asks the server to assign values and publish.  The resulting
// generation is fed to subscribers without waiting for the broadcast
// notification.
func (c *Client) Set(ctx context.Context, values map[string]string) error {
	u := &transport.Update{}
	req := &transport.SetRequest{UTime: time.Now().UnixMicro(), Values: values}
	if _, err := c.conn.Call(ctx, MethodSet, req, u); err != nil {
		return err
	}
	c.dispatch(u)
	return nil
}

// Subscribe registers fn for every update the server delivers.
func (c *Client) Subscribe(fn func(*transport.Update)) (transport.Subscription, error) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs[id] = fn
	c.mu.Unlock()
	return &clientSub{c: c, id: id}, nil
}

// Close shuts the connection down.
func (c *Client) Close() error { return c.conn.Close() }

// Done is closed when the connection has fully shut down.
func (c *Client) Done() <-chan struct{} { return c.conn.Done() }

// Err returns the error that shut the connection down, if any.
func (c *Client) Err() error { return c.conn.Err() }

type clientSub struct {
	c  *Client
	id int64
}

func (s *clientSub) Close() error {
	s.c.mu.Lock()
	delete(s.c.subs, s.id)
	s.c.mu.Unlock()
	return nil
}
