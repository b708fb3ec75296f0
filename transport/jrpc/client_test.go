package jrpc

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"go.lsp.dev/jsonrpc2"

	"github.com/driftlab/param-format/transport"
)

// testServer answers param/request and param/set over one connection
// and can push update notifications.
type testServer struct {
	conn jsonrpc2.Conn
	sets chan *transport.SetRequest
}

func newTestServer(ctx context.Context, rwc net.Conn) *testServer {
	s := &testServer{sets: make(chan *transport.SetRequest, 4)}
	s.conn = jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	s.conn.Go(ctx, s.handle)
	return s
}

func (s *testServer) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case MethodRequest:
		return reply(ctx, &transport.Update{ServerID: 9, SeqNo: 1, Params: "a = 1;"}, nil)
	case MethodSet:
		var setReq transport.SetRequest
		if err := json.Unmarshal(req.Params(), &setReq); err != nil {
			return reply(ctx, nil, err)
		}
		s.sets <- &setReq
		return reply(ctx, &transport.Update{ServerID: 9, SeqNo: 2, Params: "a = 2;"}, nil)
	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

func (s *testServer) notify(ctx context.Context, t *testing.T, u *transport.Update) {
	t.Helper()
	if err := s.conn.Notify(ctx, MethodUpdate, u); err != nil {
		t.Fatalf("notify: %v", err)
	}
}

func pipeClient(t *testing.T) (*Client, *testServer) {
	t.Helper()
	ctx := context.Background()
	cend, send := net.Pipe()
	srv := newTestServer(ctx, send)
	client := NewClient(ctx, cend)
	t.Cleanup(func() {
		client.Close()
		srv.conn.Close()
	})
	return client, srv
}

func waitFor(t *testing.T, ch <-chan *transport.Update) *transport.Update {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(5 * time.Second):
		t.Fatal("no update delivered")
		return nil
	}
}

func TestRequestSnapshotFeedsSubscribers(t *testing.T) {
	client, _ := pipeClient(t)
	got := make(chan *transport.Update, 4)
	sub, err := client.Subscribe(func(u *transport.Update) { got <- u })
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	if err := client.RequestSnapshot(context.Background()); err != nil {
		t.Fatal(err)
	}
	u := waitFor(t, got)
	if u.ServerID != 9 || u.SeqNo != 1 || u.Params != "a = 1;" {
		t.Errorf("update = %+v", u)
	}
}

func TestNotificationsFeedSubscribers(t *testing.T) {
	client, srv := pipeClient(t)
	got := make(chan *transport.Update, 4)
	sub, err := client.Subscribe(func(u *transport.Update) { got <- u })
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	srv.notify(context.Background(), t, &transport.Update{ServerID: 9, SeqNo: 3, Params: "a = 3;"})
	u := waitFor(t, got)
	if u.SeqNo != 3 {
		t.Errorf("update = %+v", u)
	}
}

func TestSetReachesServerAndFeedsResult(t *testing.T) {
	client, srv := pipeClient(t)
	got := make(chan *transport.Update, 4)
	sub, err := client.Subscribe(func(u *transport.Update) { got <- u })
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	if err := client.Set(context.Background(), map[string]string{"a": "2"}); err != nil {
		t.Fatal(err)
	}
	select {
	case setReq := <-srv.sets:
		if setReq.Values["a"] != "2" {
			t.Errorf("server saw %+v", setReq)
		}
	default:
		t.Error("server did not receive the set")
	}
	u := waitFor(t, got)
	if u.SeqNo != 2 {
		t.Errorf("update = %+v", u)
	}
}

func TestClosedSubscriptionStops(t *testing.T) {
	client, srv := pipeClient(t)
	got := make(chan *transport.Update, 4)
	sub, err := client.Subscribe(func(u *transport.Update) { got <- u })
	if err != nil {
		t.Fatal(err)
	}
	sub.Close()
	srv.notify(context.Background(), t, &transport.Update{ServerID: 9, SeqNo: 4})
	// the notification is processed asynchronously; give it a moment
	time.Sleep(50 * time.Millisecond)
	select {
	case u := <-got:
		t.Errorf("closed subscription received %+v", u)
	default:
	}
}
