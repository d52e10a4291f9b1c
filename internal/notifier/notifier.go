// Package notifier pushes one-shot JSON messages to the engine's editor port.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 3 * time.Second

// Config addresses the engine listener.
type Config struct {
	Addr    string
	Timeout time.Duration
}

// Notifier sends fire-and-forget messages. It is safe for concurrent use.
type Notifier struct {
	addr    string
	timeout time.Duration
	dialer  net.Dialer
	log     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Notifier{
		addr:    cfg.Addr,
		timeout: timeout,
		log:     logger,
	}
}

// Addr returns the default target.
func (n *Notifier) Addr() string {
	return n.addr
}

// Send pushes message to the configured address.
func (n *Notifier) Send(ctx context.Context, message map[string]any) {
	n.SendTo(ctx, n.addr, message)
}

// SendTo dials addr, writes message as one JSON document and closes the
// connection. Failures are logged and never returned.
func (n *Notifier) SendTo(ctx context.Context, addr string, message map[string]any) {
	command, _ := message["command"].(string)
	fields := []zap.Field{zap.String("addr", addr), zap.String("command", command)}

	defer func() {
		if p := recover(); p != nil {
			n.log.Error("push panicked", append(fields, zap.Any("panic", p))...)
		}
	}()

	if err := n.push(ctx, addr, message); err != nil {
		n.log.Error("push to engine failed", append(fields, zap.Error(err))...)
		return
	}
	n.log.Info("pushed to engine", fields...)
}

func (n *Notifier) push(ctx context.Context, addr string, message map[string]any) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	conn, err := n.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
