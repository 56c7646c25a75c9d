package localserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// connDeadline bounds a single command exchange.
const connDeadline = 10 * time.Second

// Server represents the local management server.
type Server struct {
	listener net.Listener
	path     string
	handler  *Handler
	logger   *slog.Logger
	running  atomic.Bool
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// New creates a new local server.
func New(socketPath string, handler *Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		path:    socketPath,
		handler: handler,
		logger:  logger,
	}
}

// Listen binds the socket, replacing a stale socket file left by a
// previous process.
func (s *Server) Listen() error {
	if err := removeStaleSocket(s.path); err != nil {
		return err
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("localserver: listen %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		ln.Close()
		return fmt.Errorf("localserver: chmod %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.running.Store(true)
	return nil
}

// Serve accepts connections until Shutdown. Listen must be called first.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("localserver: Serve called before Listen")
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			// Check if server is shutting down
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		// Track goroutine for graceful shutdown
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// ListenAndServe binds the socket and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Addr returns the socket path.
func (s *Server) Addr() string {
	return s.path
}

// Shutdown closes the listener, waits for in-flight commands (bounded by
// ctx) and removes the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var closeErr error
	s.mu.Lock()
	if s.listener != nil {
		closeErr = s.listener.Close()
		if errors.Is(closeErr, net.ErrClosed) {
			closeErr = nil
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Join(closeErr, err)
	}
	return closeErr
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(connDeadline))

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		return
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) == 0 {
		fmt.Fprintln(conn, "error: empty command")
		return
	}

	cmd, args := fields[0], fields[1:]
	s.logger.Info("local command", "command", cmd, "args", args)

	if err := s.handler.Execute(conn, cmd, args); err != nil {
		s.logger.Warn("local command failed", "command", cmd, "error", err)
		fmt.Fprintf(conn, "error: %v\n", err)
	}
}

// removeStaleSocket deletes path if it is a socket nobody is listening on.
func removeStaleSocket(path string) error {
	fi, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("localserver: stat %s: %w", path, err)
	}
	if fi.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("localserver: %s exists and is not a socket", path)
	}

	conn, err := net.DialTimeout("unix", path, time.Second)
	if err == nil {
		conn.Close()
		return fmt.Errorf("localserver: %s is in use by another process", path)
	}
	return os.Remove(path)
}
