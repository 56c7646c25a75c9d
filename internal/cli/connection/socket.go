package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// ErrRemote wraps an "error: ..." reply from the management socket.
var ErrRemote = errors.New("server error")

// SocketClient talks to the reqguard-server management socket. Each
// Execute dials a fresh connection; the server answers one command per
// connection.
type SocketClient struct {
	path    string
	timeout time.Duration
}

// NewSocketClient creates a new socket client.
func NewSocketClient(socketPath string) *SocketClient {
	return &SocketClient{path: socketPath, timeout: 10 * time.Second}
}

// Execute sends cmd with args and returns the reply text.
func (c *SocketClient) Execute(ctx context.Context, cmd string, args ...string) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.path)
	if err != nil {
		return "", fmt.Errorf("connect %s: %w", c.path, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	conn.SetDeadline(deadline)

	line := strings.Join(append([]string{cmd}, args...), " ") + "\n"
	if _, err := io.WriteString(conn, line); err != nil {
		return "", fmt.Errorf("send command: %w", err)
	}

	reply, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}

	text := string(reply)
	if msg, ok := strings.CutPrefix(text, "error: "); ok {
		return "", fmt.Errorf("%w: %s", ErrRemote, strings.TrimSpace(msg))
	}
	return text, nil
}
