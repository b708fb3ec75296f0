package paramd

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"go.lsp.dev/jsonrpc2"

	"github.com/driftlab/param-format/transport"
	"github.com/driftlab/param-format/transport/jrpc"
)

const defaultNotifyTimeout = 5 * time.Second

// A Session serves one client connection over JSON-RPC.
type Session struct {
	id     string
	server *Server
	conn   jsonrpc2.Conn

	notifyTimeout time.Duration
}

// NewSession wraps rwc in a JSON-RPC connection serving the param
// protocol.
func NewSession(id string, rwc io.ReadWriteCloser, server *Server) *Session {
	return &Session{
		id:            id,
		server:        server,
		conn:          jsonrpc2.NewConn(jsonrpc2.NewStream(rwc)),
		notifyTimeout: defaultNotifyTimeout,
	}
}

// Run serves requests until the connection closes.
func (s *Session) Run(ctx context.Context) {
	s.conn.Go(ctx, s.handle)
	<-s.conn.Done()
}

func (s *Session) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	log := s.server.Spec.Log
	switch req.Method() {
	case jrpc.MethodRequest:
		u, err := s.server.Update()
		if err != nil {
			return reply(ctx, nil, err)
		}
		log.Debug("snapshot requested", "session", s.id, "seqNo", u.SeqNo)
		return reply(ctx, u, nil)
	case jrpc.MethodSet:
		var setReq transport.SetRequest
		if err := json.Unmarshal(req.Params(), &setReq); err != nil {
			return reply(ctx, nil, err)
		}
		u, err := s.server.ApplySet(&setReq)
		if err != nil {
			return reply(ctx, nil, err)
		}
		log.Info("set applied", "session", s.id, "keys", len(setReq.Values), "seqNo", u.SeqNo)
		if err := reply(ctx, u, nil); err != nil {
			return err
		}
		if l := s.server.tcpListener; l != nil {
			l.Broadcast(ctx, u)
		}
		return nil
	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

// Notify pushes u to the client, bounded by the notify timeout.
func (s *Session) Notify(ctx context.Context, u *transport.Update) {
	nctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	if err := s.conn.Notify(nctx, jrpc.MethodUpdate, u); err != nil {
		s.server.Spec.Log.Warn("update notify failed", "session", s.id, "error", err)
	}
}

// Close shuts the session's connection down.
func (s *Session) Close() {
	s.conn.Close()
}
