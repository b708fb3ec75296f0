package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/driftlab/param-format/ir"
	"github.com/driftlab/param-format/parse"
	"github.com/driftlab/param-format/transport"
)

// Apply runs the admission protocol on a candidate update.
//
// The first update a store ever sees binds the server identity,
// whether or not its text parses.  After that, updates from any other
// server are rejected, and updates whose sequence number does not
// advance past the current generation are rejected as stale.
// Candidates that pass are parsed outside the state lock; on success
// the new tree and sequence number are swapped in atomically.  A
// parse failure leaves the previous generation fully intact.
func (s *Store) Apply(u *transport.Update) error {
	s.admitMu.Lock()
	defer s.admitMu.Unlock()

	s.mu.Lock()
	if s.serverID <= 0 {
		// first contact: bind identity and baseline the sequence so
		// the monotonicity check passes for this update
		s.serverID = u.ServerID
		s.seqNo = u.SeqNo - 1
		s.debugAdmit("bound to server", "serverId", u.ServerID)
	}
	if u.ServerID != s.serverID {
		bound := s.serverID
		s.mu.Unlock()
		return fmt.Errorf("%w: got server %d, bound to %d", ErrForeignSource, u.ServerID, bound)
	}
	if u.SeqNo <= s.seqNo {
		cur := s.seqNo
		s.mu.Unlock()
		return fmt.Errorf("%w: seq %d does not advance past %d", ErrStaleUpdate, u.SeqNo, cur)
	}
	s.mu.Unlock()

	root, err := parse.ParseString(u.Params)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.root = root
	s.seqNo = u.SeqNo
	s.mu.Unlock()

	s.debugAdmit("admitted update", "serverId", u.ServerID, "seqNo", u.SeqNo)
	s.popOnce.Do(func() { close(s.populated) })
	s.hub.broadcast(Generation{ServerID: u.ServerID, SeqNo: u.SeqNo})
	return nil
}

// Admit is Apply shaped for transport subscriptions.  Rejections are
// logged rather than surfaced: stale and foreign updates are normal
// on a shared channel and must not disturb the current generation.
func (s *Store) Admit(u *transport.Update) {
	err := s.Apply(u)
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, ErrStaleUpdate):
		s.debugAdmit("ignoring stale update", "serverId", u.ServerID, "seqNo", u.SeqNo)
	case errors.Is(err, ErrForeignSource):
		s.log.Warn("ignoring params from foreign server",
			"serverId", u.ServerID, "boundServerId", s.ServerID())
	default:
		s.log.Warn("rejecting unparseable params from server",
			"seqNo", u.SeqNo, "error", err)
	}
}

// NewFromServer bootstraps a store from tr: it subscribes, then
// requests snapshots until one is admitted or the retry budget runs
// out.  With KeepUpdated the subscription stays open so later
// generations keep replacing the tree; otherwise it is dropped once
// the store is populated.
func NewFromServer(ctx context.Context, tr transport.Transport, opts ...Option) (*Store, error) {
	o := newOptions(opts)
	s := newStore(ir.NewRoot(), o)
	sub, err := tr.Subscribe(s.Admit)
	if err != nil {
		return nil, err
	}
	admitted := false
	for i := 0; i < o.bootstrapTries && !admitted; i++ {
		if err := tr.RequestSnapshot(ctx); err != nil {
			s.log.Warn("snapshot request failed", "try", i+1, "error", err)
		}
		select {
		case <-s.populated:
			admitted = true
		case <-time.After(o.bootstrapWait):
		case <-ctx.Done():
			sub.Close()
			return nil, ctx.Err()
		}
	}
	if !admitted {
		sub.Close()
		return nil, ErrBootstrap
	}
	if !o.keepUpdated {
		sub.Close()
	}
	return s, nil
}
