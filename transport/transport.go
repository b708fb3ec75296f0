// Package transport defines the boundary between a param store and
// the authority publishing its updates.
package transport

import "context"

// An Update carries one published generation of a param tree as
// source text, stamped with the publisher's identity and sequence
// number.
type Update struct {
	ServerID int64  `json:"serverId"`
	SeqNo    int64  `json:"seqNo"`
	UTime    int64  `json:"utime"`
	Params   string `json:"params"`
}

// A Request asks the authority to publish a fresh snapshot.
type Request struct {
	UTime int64 `json:"utime"`
}

// A SetRequest asks the authority to assign values and publish the
// resulting generation.
type SetRequest struct {
	UTime  int64             `json:"utime"`
	Values map[string]string `json:"values"`
}

// A Subscription delivers updates until closed.
type Subscription interface {
	Close() error
}

// Transport connects a store to its publishing authority.
type Transport interface {
	// RequestSnapshot asks the authority to publish the current
	// tree to subscribers.
	RequestSnapshot(ctx context.Context) error
	// Subscribe registers fn to run for every incoming update.
	Subscribe(fn func(*Update)) (Subscription, error)
	// Close releases the transport.
	Close() error
}
