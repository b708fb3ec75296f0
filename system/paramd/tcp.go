package paramd

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/driftlab/param-format/transport"
)

// TCPListener accepts client connections and runs a JSON-RPC session
// per connection.
type TCPListener struct {
	listener net.Listener
	server   *Server

	sessions   map[string]*Session
	sessionsMu sync.RWMutex
	sessionSeq atomic.Int64

	done   chan struct{}
	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewTCPListener listens on addr and attaches itself to server so
// set requests reach every session.
func NewTCPListener(addr string, server *Server) (*TCPListener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	l := &TCPListener{
		listener: listener,
		server:   server,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	server.tcpListener = l
	return l, nil
}

// Addr returns the bound listen address.
func (l *TCPListener) Addr() net.Addr {
	return l.listener.Addr()
}

// Serve accepts connections until Close.  With a republish interval
// configured it also rebroadcasts the current generation on a ticker.
func (l *TCPListener) Serve(ctx context.Context) error {
	log := l.server.Spec.Log
	log.Info("param server listening",
		"addr", l.listener.Addr().String(),
		"serverId", l.server.ServerID())
	if d := l.server.Spec.Config.Republish; d > 0 {
		l.wg.Add(1)
		go l.republish(ctx, d)
	}
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			if l.closed.Load() {
				return nil
			}
			log.Error("accept error", "error", err)
			continue
		}
		l.wg.Add(1)
		go l.handleConnection(ctx, conn)
	}
}

func (l *TCPListener) republish(ctx context.Context, every time.Duration) {
	defer l.wg.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			u, err := l.server.Update()
			if err != nil {
				l.server.Spec.Log.Error("republish failed", "error", err)
				continue
			}
			l.Broadcast(ctx, u)
		case <-l.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (l *TCPListener) handleConnection(ctx context.Context, conn net.Conn) {
	defer l.wg.Done()
	log := l.server.Spec.Log
	sessionID := fmt.Sprintf("tcp-%d", l.sessionSeq.Add(1))
	log.Debug("new connection", "session", sessionID, "remote", conn.RemoteAddr().String())

	session := NewSession(sessionID, conn, l.server)
	l.sessionsMu.Lock()
	l.sessions[sessionID] = session
	l.sessionsMu.Unlock()

	session.Run(ctx)

	l.sessionsMu.Lock()
	delete(l.sessions, sessionID)
	l.sessionsMu.Unlock()
	log.Debug("session ended", "session", sessionID)
}

// Broadcast notifies every live session of u.
func (l *TCPListener) Broadcast(ctx context.Context, u *transport.Update) {
	l.sessionsMu.RLock()
	sessions := make([]*Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		sessions = append(sessions, s)
	}
	l.sessionsMu.RUnlock()
	for _, s := range sessions {
		s.Notify(ctx, u)
	}
}

// SessionCount returns the number of live sessions.
func (l *TCPListener) SessionCount() int {
	l.sessionsMu.RLock()
	defer l.sessionsMu.RUnlock()
	return len(l.sessions)
}

// Close stops accepting, closes every session, and waits for the
// handlers to drain.
func (l *TCPListener) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	close(l.done)
	err := l.listener.Close()
	l.sessionsMu.RLock()
	sessions := make([]*Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		sessions = append(sessions, s)
	}
	l.sessionsMu.RUnlock()
	for _, s := range sessions {
		s.Close()
	}
	l.wg.Wait()
	l.server.Spec.Log.Info("param server stopped")
	return err
}
