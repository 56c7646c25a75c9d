package localserver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/reqguard/internal/telemetry/logger"
)

type fakeServer struct {
	draining atomic.Bool
	reloads  atomic.Int32
	level    atomic.Value
	stopped  atomic.Bool
	started  time.Time
}

func newFake() *fakeServer {
	f := &fakeServer{started: time.Unix(1_700_000_000, 0)}
	f.level.Store("info")
	return f
}

func (f *fakeServer) actions() Actions {
	return Actions{
		Status: func() Status {
			return Status{
				Version:  "v1.2.3",
				Started:  f.started,
				Draining: f.draining.Load(),
				LogLevel: f.level.Load().(string),
				Clients:  7,
			}
		},
		SetDraining: f.draining.Store,
		Reload: func() error {
			f.reloads.Add(1)
			return nil
		},
		SetLogLevel: func(level string) error {
			if level == "loud" {
				return errors.New("bad level")
			}
			f.level.Store(level)
			return nil
		},
		Shutdown: func() { f.stopped.Store(true) },
	}
}

func TestHandler_Execute(t *testing.T) {
	f := newFake()
	h := NewHandler(f.actions())
	h.now = func() time.Time { return f.started.Add(90 * time.Second) }

	tests := []struct {
		cmd     string
		args    []string
		want    string
		wantErr bool
	}{
		{cmd: "status", want: "uptime: 1m30s"},
		{cmd: "drain", want: "ok: draining"},
		{cmd: "STATUS", want: "draining: true"},
		{cmd: "resume", want: "ok: resumed"},
		{cmd: "reload", want: "ok: reloaded"},
		{cmd: "loglevel", args: []string{"debug"}, want: "ok: log level debug"},
		{cmd: "loglevel", wantErr: true},
		{cmd: "loglevel", args: []string{"loud"}, wantErr: true},
		{cmd: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.cmd+strings.Join(tt.args, "_"), func(t *testing.T) {
			var buf bytes.Buffer
			err := h.Execute(&buf, tt.cmd, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("Execute() output = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}

	if f.reloads.Load() != 1 {
		t.Errorf("reloads = %d, want 1", f.reloads.Load())
	}
	if f.draining.Load() {
		t.Error("resume should clear draining")
	}
}

func TestHandler_UnknownCommand(t *testing.T) {
	err := NewHandler(Actions{}).Execute(io.Discard, "bogus", nil)
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Execute() error = %v, want ErrUnknownCommand", err)
	}
}

func TestHandler_Unsupported(t *testing.T) {
	h := NewHandler(Actions{})
	for _, cmd := range []string{"status", "drain", "reload", "loglevel", "shutdown"} {
		if err := h.Execute(io.Discard, cmd, []string{"info"}); err == nil {
			t.Errorf("Execute(%q) with no action should fail", cmd)
		}
	}
}

func TestServer_RoundTrip(t *testing.T) {
	f := newFake()
	s, path := startServer(t, f.actions())

	if got := send(t, path, "drain"); got != "ok: draining\n" {
		t.Errorf("drain reply = %q", got)
	}
	if !f.draining.Load() {
		t.Error("drain did not reach the action")
	}

	if got := send(t, path, "bogus"); !strings.HasPrefix(got, "error: ") {
		t.Errorf("bogus reply = %q, want error prefix", got)
	}

	if got := send(t, path, "shutdown"); got != "ok: shutting down\n" {
		t.Errorf("shutdown reply = %q", got)
	}
	if !f.stopped.Load() {
		t.Error("shutdown did not reach the action")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("socket file should be removed after Shutdown")
	}
}

func TestServer_ReplacesStaleSocket(t *testing.T) {
	dir := shortTempDir(t)
	path := filepath.Join(dir, "admin.sock")

	// Leave a socket file behind with nobody listening.
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	ln.Close()

	s := New(path, NewHandler(newFake().actions()), logger.Discard())
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen() over stale socket error = %v", err)
	}
	s.Shutdown(context.Background())
}

func TestServer_RefusesRegularFile(t *testing.T) {
	path := filepath.Join(shortTempDir(t), "admin.sock")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := New(path, NewHandler(Actions{}), logger.Discard())
	if err := s.Listen(); err == nil {
		s.Shutdown(context.Background())
		t.Fatal("Listen() should refuse to replace a regular file")
	}
}

func TestServer_ServeBeforeListen(t *testing.T) {
	s := New("unused.sock", NewHandler(Actions{}), logger.Discard())
	if err := s.Serve(); err == nil {
		t.Error("Serve() before Listen should fail")
	}
}

func startServer(t *testing.T, actions Actions) (*Server, string) {
	t.Helper()
	path := filepath.Join(shortTempDir(t), "admin.sock")
	s := New(path, NewHandler(actions), logger.Discard())
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	go s.Serve()
	t.Cleanup(func() { s.Shutdown(context.Background()) })

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Errorf("socket mode = %v, want 0600", fi.Mode().Perm())
	}
	return s, path
}

func send(t *testing.T, path, line string) string {
	t.Helper()
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if _, err := io.WriteString(conn, line+"\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(reply)
}

// shortTempDir keeps socket paths under the sun_path length limit.
func shortTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "rg")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}
