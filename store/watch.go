package store

import (
	"sync"
	"time"
)

// DefaultBroadcastTimeout is the default timeout for sending events
// to watchers.  If a watcher doesn't read within this time, the watch
// is failed.
const DefaultBroadcastTimeout = 5 * time.Second

// A Generation identifies one accepted snapshot.
type Generation struct {
	ServerID int64
	SeqNo    int64
}

// A Watcher receives a Generation for every snapshot the store
// accepts.  If the watcher can't keep up (Events channel blocks), the
// watch is failed and the Failed channel is closed.
type Watcher struct {
	Events chan Generation
	Failed chan struct{}

	failOnce sync.Once
}

// IsFailed reports whether the watch has failed (slow consumer).
func (w *Watcher) IsFailed() bool {
	select {
	case <-w.Failed:
		return true
	default:
		return false
	}
}

// hub fans accepted generations out to watchers.
type hub struct {
	mu               sync.RWMutex
	watchers         map[*Watcher]struct{}
	broadcastTimeout time.Duration
}

func newHub() *hub {
	return &hub{
		watchers:         make(map[*Watcher]struct{}),
		broadcastTimeout: DefaultBroadcastTimeout,
	}
}

func (h *hub) add(w *Watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.watchers[w] = struct{}{}
}

func (h *hub) remove(w *Watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.watchers, w)
}

// broadcast sends gen to all watchers.  A watcher whose channel
// blocks for longer than the broadcast timeout is failed and removed,
// so slow consumers learn they missed events instead of missing them
// silently.
func (h *hub) broadcast(gen Generation) {
	h.mu.RLock()
	targets := make([]*Watcher, 0, len(h.watchers))
	for w := range h.watchers {
		targets = append(targets, w)
	}
	h.mu.RUnlock()

	var failed []*Watcher
	for _, w := range targets {
		select {
		case <-w.Failed:
			continue
		default:
		}
		select {
		case w.Events <- gen:
		case <-time.After(h.broadcastTimeout):
			w.failOnce.Do(func() { close(w.Failed) })
			failed = append(failed, w)
		case <-w.Failed:
		}
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, w := range failed {
			delete(h.watchers, w)
		}
		h.mu.Unlock()
	}
}

// Watch registers a watcher with a buffered events channel.
// bufferSize controls how many generations can queue before the watch
// is failed due to slow consumption.
func (s *Store) Watch(bufferSize int) *Watcher {
	w := &Watcher{
		Events: make(chan Generation, bufferSize),
		Failed: make(chan struct{}),
	}
	s.hub.add(w)
	return w
}

// Unwatch removes a watcher.  The caller is responsible for draining
// the Events channel.
func (s *Store) Unwatch(w *Watcher) {
	s.hub.remove(w)
}
