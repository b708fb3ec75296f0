package store

import "sync"

// maxRefs saturates the reference count so pathological
// acquire/release imbalances cannot overflow it.
const maxRefs = 1 << 60

// Shared hands out reference-counted access to one lazily
// constructed store.  The first Acquire runs the construct function;
// the Release that drops the count back to zero runs the teardown.
// Callers hold an explicit handle instead of reaching for a process
// global, so tests and embedders can each carry their own.
type Shared struct {
	mu        sync.Mutex
	refs      int64
	store     *Store
	construct func() (*Store, error)
	teardown  func(*Store)
}

// NewShared returns a handle that builds its store with construct on
// first acquire.  teardown may be nil.
func NewShared(construct func() (*Store, error), teardown func(*Store)) *Shared {
	return &Shared{construct: construct, teardown: teardown}
}

// Acquire returns the shared store, constructing it on first use.  A
// construction failure leaves the handle unreferenced so a later
// Acquire retries.
func (sh *Shared) Acquire() (*Store, error) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.refs == 0 {
		st, err := sh.construct()
		if err != nil {
			return nil, err
		}
		sh.store = st
	}
	if sh.refs < maxRefs {
		sh.refs++
	}
	return sh.store, nil
}

// Release drops one reference; the last release tears the store
// down.  Releasing an unreferenced handle is a no-op.
func (sh *Shared) Release() {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.refs == 0 {
		return
	}
	sh.refs--
	if sh.refs == 0 {
		if sh.teardown != nil {
			sh.teardown(sh.store)
		}
		sh.store = nil
	}
}

// Refs reports the current reference count.
func (sh *Shared) Refs() int64 {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.refs
}
