// Package store provides a concurrency-safe param tree kept in sync
// with a publishing server.  Readers always observe a complete,
// successfully parsed snapshot; updates replace the tree atomically
// after passing the admission protocol.
package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/driftlab/param-format/debug"
	"github.com/driftlab/param-format/encode"
	"github.com/driftlab/param-format/ir"
	"github.com/driftlab/param-format/parse"
)

var (
	// ErrForeignSource reports an update from a server other than
	// the one this store is bound to.
	ErrForeignSource = errors.New("update from foreign server")
	// ErrStaleUpdate reports a duplicate or out-of-order update.
	ErrStaleUpdate = errors.New("stale update")
	// ErrBootstrap reports that no snapshot was admitted within the
	// bootstrap retry budget.
	ErrBootstrap = errors.New("no snapshot from server")
)

// Store holds one generation of a param tree behind a store-wide
// lock, together with the identity and sequence number of the server
// that published it.
type Store struct {
	mu       sync.Mutex
	root     *ir.Node
	serverID int64
	seqNo    int64

	// admitMu serializes admissions so candidate parsing can happen
	// outside the state lock without racing a concurrent admission.
	admitMu sync.Mutex

	populated chan struct{}
	popOnce   sync.Once

	hub *hub
	log *slog.Logger
}

// An Option configures store construction.
type Option func(*options)

type options struct {
	log            *slog.Logger
	keepUpdated    bool
	bootstrapTries int
	bootstrapWait  time.Duration
}

// WithLogger routes store diagnostics to log.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// KeepUpdated leaves the server subscription open after bootstrap so
// later generations keep replacing the tree.
func KeepUpdated(v bool) Option {
	return func(o *options) { o.keepUpdated = v }
}

// BootstrapTries sets how many snapshot requests to issue before
// giving up.
func BootstrapTries(n int) Option {
	return func(o *options) { o.bootstrapTries = n }
}

// BootstrapWait bounds the wait after each snapshot request.
func BootstrapWait(d time.Duration) Option {
	return func(o *options) { o.bootstrapWait = d }
}

func newOptions(opts []Option) *options {
	o := &options{
		bootstrapTries: 5,
		bootstrapWait:  time.Second,
	}
	for _, f := range opts {
		f(o)
	}
	if o.log == nil {
		o.log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slogLevel(),
		}))
	}
	return o
}

func slogLevel() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func newStore(root *ir.Node, o *options) *Store {
	return &Store{
		root:      root,
		populated: make(chan struct{}),
		hub:       newHub(),
		log:       o.log,
	}
}

// New returns an empty store bound to no server.
func New(opts ...Option) *Store {
	return newStore(ir.NewRoot(), newOptions(opts))
}

// NewFromBytes parses d and wraps the tree in a store.
func NewFromBytes(d []byte, opts ...Option) (*Store, error) {
	root, err := parse.Parse(d)
	if err != nil {
		return nil, err
	}
	return newStore(root, newOptions(opts)), nil
}

// NewFromString parses s and wraps the tree in a store.
func NewFromString(s string, opts ...Option) (*Store, error) {
	return NewFromBytes([]byte(s), opts...)
}

// NewFromFile parses the file at path and wraps the tree in a store.
func NewFromFile(path string, opts ...Option) (*Store, error) {
	root, err := parse.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return newStore(root, newOptions(opts)), nil
}

// ServerID returns the bound server identity, 0 before first contact.
func (s *Store) ServerID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverID
}

// SeqNo returns the sequence number of the current generation.
func (s *Store) SeqNo() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqNo
}

// Populated is closed once the store has admitted its first
// generation.
func (s *Store) Populated() <-chan struct{} {
	return s.populated
}

// HasKey reports whether key resolves, with inheritance.
func (s *Store) HasKey(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.HasKey(s.root, key)
}

// Subkeys lists the child names under key; an empty key addresses
// the root.
func (s *Store) Subkeys(key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.SubkeysAt(s.root, key)
}

// NumSubkeys returns the number of children under key.
func (s *Store) NumSubkeys(key string) (int, error) {
	names, err := s.Subkeys(key)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// Int returns the first value at key cast to an integer.
func (s *Store) Int(key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.Int(s.root, key)
}

// Bool returns the first value at key cast to a boolean.
func (s *Store) Bool(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.Bool(s.root, key)
}

// Float returns the first value at key cast to a float.
func (s *Store) Float(key string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.Float(s.root, key)
}

// Str returns the first value at key.
func (s *Store) Str(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.Str(s.root, key)
}

// MustInt is Int for mandatory keys; it panics on any failure.
func (s *Store) MustInt(key string) int64 {
	v, err := s.Int(key)
	if err != nil {
		panic(fmt.Sprintf("required config key %s: %v", key, err))
	}
	return v
}

// MustBool is Bool for mandatory keys; it panics on any failure.
func (s *Store) MustBool(key string) bool {
	v, err := s.Bool(key)
	if err != nil {
		panic(fmt.Sprintf("required config key %s: %v", key, err))
	}
	return v
}

// MustFloat is Float for mandatory keys; it panics on any failure.
func (s *Store) MustFloat(key string) float64 {
	v, err := s.Float(key)
	if err != nil {
		panic(fmt.Sprintf("required config key %s: %v", key, err))
	}
	return v
}

// MustStr is Str for mandatory keys; it panics on any failure.
func (s *Store) MustStr(key string) string {
	v, err := s.Str(key)
	if err != nil {
		panic(fmt.Sprintf("required config key %s: %v", key, err))
	}
	return v
}

// IntArray fills out with values at key, stopping at the capacity of
// out, and returns the count filled.
func (s *Store) IntArray(key string, out []int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.IntArray(s.root, key, out)
}

// BoolArray fills out with values at key, stopping at the capacity
// of out, and returns the count filled.
func (s *Store) BoolArray(key string, out []bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.BoolArray(s.root, key, out)
}

// FloatArray fills out with values at key, stopping at the capacity
// of out, and returns the count filled.
func (s *Store) FloatArray(key string, out []float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.FloatArray(s.root, key, out)
}

// StrArray returns a copy of all values at key.
func (s *Store) StrArray(key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.StrArray(s.root, key)
}

// ArrayLen returns the number of values at key.
func (s *Store) ArrayLen(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.ArrayLen(s.root, key)
}

// MustIntArray panics unless exactly len(out) values fill out.
func (s *Store) MustIntArray(key string, out []int64) {
	n, err := s.IntArray(key, out)
	if err != nil || n != len(out) {
		panic(fmt.Sprintf("required config key %s: read %d of %d values: %v", key, n, len(out), err))
	}
}

// MustBoolArray panics unless exactly len(out) values fill out.
func (s *Store) MustBoolArray(key string, out []bool) {
	n, err := s.BoolArray(key, out)
	if err != nil || n != len(out) {
		panic(fmt.Sprintf("required config key %s: read %d of %d values: %v", key, n, len(out), err))
	}
}

// MustFloatArray panics unless exactly len(out) values fill out.
func (s *Store) MustFloatArray(key string, out []float64) {
	n, err := s.FloatArray(key, out)
	if err != nil || n != len(out) {
		panic(fmt.Sprintf("required config key %s: read %d of %d values: %v", key, n, len(out), err))
	}
}

// SetInt sets key to a single integer value, creating the path if
// absent.
func (s *Store) SetInt(key string, v int64) error {
	return s.set(key, strconv.FormatInt(v, 10))
}

// SetBool sets key to a single boolean value, creating the path if
// absent.
func (s *Store) SetBool(key string, v bool) error {
	return s.set(key, strconv.FormatBool(v))
}

// SetFloat sets key to a single float value, creating the path if
// absent.
func (s *Store) SetFloat(key string, v float64) error {
	return s.set(key, strconv.FormatFloat(v, 'f', -1, 64))
}

// SetStr sets key to a single string value, creating the path if
// absent.
func (s *Store) SetStr(key, v string) error {
	return s.set(key, v)
}

func (s *Store) set(key, val string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.SetValue(s.root, key, val)
}

// SetIntArray replaces the value list at key with integer values.
func (s *Store) SetIntArray(key string, vals []int64) error {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = strconv.FormatInt(v, 10)
	}
	return s.setValues(key, strs)
}

// SetBoolArray replaces the value list at key with boolean values.
func (s *Store) SetBoolArray(key string, vals []bool) error {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = strconv.FormatBool(v)
	}
	return s.setValues(key, strs)
}

// SetFloatArray replaces the value list at key with float values.
func (s *Store) SetFloatArray(key string, vals []float64) error {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return s.setValues(key, strs)
}

// SetStrArray replaces the value list at key with string values.
func (s *Store) SetStrArray(key string, vals []string) error {
	return s.setValues(key, vals)
}

func (s *Store) setValues(key string, vals []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.SetValues(s.root, key, vals)
}

// Snapshot returns a deep copy of the current tree.
func (s *Store) Snapshot() *ir.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root.Clone()
}

// Dump renders the current tree as source text.
func (s *Store) Dump() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := encode.Bytes(s.root)
	if err != nil {
		return "", err
	}
	return string(d), nil
}

// WriteTo renders the current tree as source text on w.  Encoding
// happens into a buffer under the lock; the write to w does not hold
// it.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	s.mu.Lock()
	d, err := encode.Bytes(s.root)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(d)
	return int64(n), err
}

var _ io.WriterTo = (*Store)(nil)

func (s *Store) debugAdmit(msg string, args ...any) {
	if debug.Admit() {
		s.log.Debug(msg, args...)
	}
}
