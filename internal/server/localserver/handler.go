package localserver

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrUnknownCommand is returned for commands the handler does not know.
var ErrUnknownCommand = errors.New("localserver: unknown command")

// Status is the snapshot reported by the status command.
type Status struct {
	Version  string
	Started  time.Time
	Draining bool
	LogLevel string
	Clients  int
}

// Actions are the server operations reachable from the socket. Nil
// actions report the command as unsupported.
type Actions struct {
	Status      func() Status
	SetDraining func(bool)
	Reload      func() error
	SetLogLevel func(level string) error
	Shutdown    func()
}

// Handler handles local management commands.
type Handler struct {
	actions Actions
	now     func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(actions Actions) *Handler {
	return &Handler{actions: actions, now: time.Now}
}

// Execute executes a local management command and writes the reply to w.
func (h *Handler) Execute(w io.Writer, cmd string, args []string) error {
	switch strings.ToLower(cmd) {
	case "status":
		return h.handleStatus(w)
	case "drain":
		return h.handleDrain(w, true)
	case "resume":
		return h.handleDrain(w, false)
	case "reload":
		return h.handleReload(w)
	case "loglevel":
		return h.handleLogLevel(w, args)
	case "shutdown":
		return h.handleShutdown(w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}

func (h *Handler) handleStatus(w io.Writer) error {
	if h.actions.Status == nil {
		return errUnsupported("status")
	}
	st := h.actions.Status()
	_, err := fmt.Fprintf(w,
		"version: %s\nuptime: %s\ndraining: %t\nlog_level: %s\nclients: %d\n",
		st.Version,
		h.now().Sub(st.Started).Truncate(time.Second),
		st.Draining,
		st.LogLevel,
		st.Clients,
	)
	return err
}

func (h *Handler) handleDrain(w io.Writer, draining bool) error {
	if h.actions.SetDraining == nil {
		return errUnsupported("drain")
	}
	h.actions.SetDraining(draining)
	if draining {
		return ok(w, "draining")
	}
	return ok(w, "resumed")
}

func (h *Handler) handleReload(w io.Writer) error {
	if h.actions.Reload == nil {
		return errUnsupported("reload")
	}
	if err := h.actions.Reload(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return ok(w, "reloaded")
}

func (h *Handler) handleLogLevel(w io.Writer, args []string) error {
	if h.actions.SetLogLevel == nil {
		return errUnsupported("loglevel")
	}
	if len(args) != 1 {
		return errors.New("usage: loglevel <debug|info|warn|error>")
	}
	if err := h.actions.SetLogLevel(args[0]); err != nil {
		return err
	}
	return ok(w, "log level "+strings.ToLower(args[0]))
}

func (h *Handler) handleShutdown(w io.Writer) error {
	if h.actions.Shutdown == nil {
		return errUnsupported("shutdown")
	}
	if err := ok(w, "shutting down"); err != nil {
		return err
	}
	h.actions.Shutdown()
	return nil
}

func ok(w io.Writer, msg string) error {
	_, err := fmt.Fprintf(w, "ok: %s\n", msg)
	return err
}

func errUnsupported(cmd string) error {
	return fmt.Errorf("localserver: %s is not supported", cmd)
}
