// Package paramd implements the param server.  It owns the
// authoritative tree, binds a fresh server identity at startup, and
// publishes sequence-numbered generations of the tree's source text
// to subscribed clients.
package paramd

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/driftlab/param-format/store"
	"github.com/driftlab/param-format/transport"
	"github.com/driftlab/param-format/transport/membus"
)

// Server owns the authoritative tree and its generation counter.
type Server struct {
	Spec Spec

	mu       sync.Mutex
	st       *store.Store
	serverID int64
	seqNo    int64

	tcpListener *TCPListener
}

// New loads the configured file and binds a fresh server identity
// from the wall clock.
func New(spec *Spec) (*Server, error) {
	if spec.Config == nil {
		return nil, fmt.Errorf("paramd: no config in spec")
	}
	if spec.Log == nil {
		spec.Log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slogLevel(),
		}))
	}
	st, err := store.NewFromFile(spec.Config.File, store.WithLogger(spec.Log))
	if err != nil {
		return nil, fmt.Errorf("paramd: loading %s: %w", spec.Config.File, err)
	}
	return &Server{
		Spec:     *spec,
		st:       st,
		serverID: time.Now().UnixMicro(),
		seqNo:    1,
	}, nil
}

func slogLevel() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// ServerID returns the identity bound at startup.
func (s *Server) ServerID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverID
}

// SeqNo returns the current generation's sequence number.
func (s *Server) SeqNo() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqNo
}

// Update renders the current generation.
func (s *Server) Update() (*transport.Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked()
}

func (s *Server) updateLocked() (*transport.Update, error) {
	text, err := s.st.Dump()
	if err != nil {
		return nil, err
	}
	return &transport.Update{
		ServerID: s.serverID,
		SeqNo:    s.seqNo,
		UTime:    time.Now().UnixMicro(),
		Params:   text,
	}, nil
}

// ApplySet assigns the requested values, bumps the sequence number,
// and returns the new generation for broadcast.  A failed assignment
// aborts without bumping the sequence number.
func (s *Server) ApplySet(req *transport.SetRequest) (*transport.Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, val := range req.Values {
		if err := s.st.SetStr(key, val); err != nil {
			return nil, fmt.Errorf("set %s: %w", key, err)
		}
	}
	s.seqNo++
	return s.updateLocked()
}

// AttachBus serves an in-process bus: snapshot requests republish the
// current generation, set requests publish new ones.
func (s *Server) AttachBus(bus *membus.Bus) {
	bus.HandleRequests(func(*transport.Request) {
		u, err := s.Update()
		if err != nil {
			s.Spec.Log.Error("snapshot publish failed", "error", err)
			return
		}
		bus.Publish(u)
	})
	bus.HandleSets(func(req *transport.SetRequest) {
		u, err := s.ApplySet(req)
		if err != nil {
			s.Spec.Log.Warn("set rejected", "error", err)
			return
		}
		bus.Publish(u)
	})
}
