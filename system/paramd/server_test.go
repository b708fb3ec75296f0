package paramd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/driftlab/param-format/store"
	"github.com/driftlab/param-format/transport"
	"github.com/driftlab/param-format/transport/jrpc"
	"github.com/driftlab/param-format/transport/membus"
)

func setReq(key, val string) *transport.SetRequest {
	return &transport.SetRequest{
		UTime:  time.Now().UnixMicro(),
		Values: map[string]string{key: val},
	}
}

const testSrc = `
robot {
    name = "rover";
    retries = 3;
}
`

func testSpec(t *testing.T) *Spec {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.cfg")
	if err := os.WriteFile(path, []byte(testSrc), 0o644); err != nil {
		t.Fatal(err)
	}
	return &Spec{
		Config: &Config{File: path},
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestNewBindsIdentity(t *testing.T) {
	srv, err := New(testSpec(t))
	if err != nil {
		t.Fatal(err)
	}
	if srv.ServerID() <= 0 {
		t.Errorf("serverID = %d, want positive", srv.ServerID())
	}
	if srv.SeqNo() != 1 {
		t.Errorf("seqNo = %d, want 1", srv.SeqNo())
	}
}

func TestNewMissingFile(t *testing.T) {
	spec := testSpec(t)
	spec.Config.File = filepath.Join(t.TempDir(), "nope.cfg")
	if _, err := New(spec); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestUpdateCarriesTree(t *testing.T) {
	srv, err := New(testSpec(t))
	if err != nil {
		t.Fatal(err)
	}
	u, err := srv.Update()
	if err != nil {
		t.Fatal(err)
	}
	if u.ServerID != srv.ServerID() || u.SeqNo != 1 {
		t.Errorf("update stamped %d/%d", u.ServerID, u.SeqNo)
	}
	s := store.New(store.WithLogger(srv.Spec.Log))
	if err := s.Apply(u); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Str("robot.name"); got != "rover" {
		t.Errorf("robot.name = %q", got)
	}
}

func TestApplySetBumpsSeq(t *testing.T) {
	srv, err := New(testSpec(t))
	if err != nil {
		t.Fatal(err)
	}
	u, err := srv.ApplySet(setReq("robot.retries", "9"))
	if err != nil {
		t.Fatal(err)
	}
	if u.SeqNo != 2 {
		t.Errorf("seqNo = %d, want 2", u.SeqNo)
	}
	s := store.New(store.WithLogger(srv.Spec.Log))
	if err := s.Apply(u); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Int("robot.retries"); got != 9 {
		t.Errorf("retries = %d", got)
	}
}

func TestApplySetRejectsContainerKey(t *testing.T) {
	srv, err := New(testSpec(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := srv.ApplySet(setReq("robot", "x")); err == nil {
		t.Error("expected an error setting a container key")
	}
	if srv.SeqNo() != 1 {
		t.Errorf("seqNo = %d after failed set", srv.SeqNo())
	}
}

func TestAttachBusServesBootstrap(t *testing.T) {
	srv, err := New(testSpec(t))
	if err != nil {
		t.Fatal(err)
	}
	bus := membus.New()
	srv.AttachBus(bus)

	s, err := store.NewFromServer(context.Background(), bus.Client(),
		store.WithLogger(srv.Spec.Log), store.KeepUpdated(true))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Int("robot.retries"); got != 3 {
		t.Errorf("retries = %d", got)
	}

	if err := bus.Set(map[string]string{"robot.retries": "7"}); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Int("robot.retries"); got != 7 {
		t.Errorf("retries after set = %d", got)
	}
	if s.SeqNo() != 2 {
		t.Errorf("seqNo = %d", s.SeqNo())
	}
}

func TestTCPServeAndFetch(t *testing.T) {
	srv, err := New(testSpec(t))
	if err != nil {
		t.Fatal(err)
	}
	l, err := NewTCPListener("127.0.0.1:0", srv)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Serve(ctx)

	client, err := jrpc.Dial(ctx, l.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	s, err := store.NewFromServer(ctx, client,
		store.WithLogger(srv.Spec.Log), store.KeepUpdated(true))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Str("robot.name"); got != "rover" {
		t.Errorf("robot.name = %q", got)
	}
	if s.ServerID() != srv.ServerID() {
		t.Errorf("store bound to %d, server is %d", s.ServerID(), srv.ServerID())
	}

	// a remote set propagates back through the update notification
	w := s.Watch(4)
	defer s.Unwatch(w)
	if err := client.Set(ctx, map[string]string{"robot.retries": "5"}); err != nil {
		t.Fatal(err)
	}
	select {
	case gen := <-w.Events:
		if gen.SeqNo != 2 {
			t.Errorf("generation %d, want 2", gen.SeqNo)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no generation after set")
	}
	if got, _ := s.Int("robot.retries"); got != 5 {
		t.Errorf("retries = %d", got)
	}
}
