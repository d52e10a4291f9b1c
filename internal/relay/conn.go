package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auranova/uebridge/internal/model/envelope"
)

var errMessageTooLarge = errors.New("message too large")

const (
	stateActive int32 = iota
	stateIdle
)

// conn is one accepted engine connection. It is owned by its serve goroutine.
type conn struct {
	srv     *Server
	rwc     net.Conn
	id      string
	log     *zap.Logger
	limiter *messageLimiter
	dec     *json.Decoder
	state   atomic.Int32
}

func (s *Server) newConn(rwc net.Conn) *conn {
	id := uuid.NewString()
	limiter := &messageLimiter{r: rwc, max: s.opts.MaxMessageBytes}
	c := &conn{
		srv:     s,
		rwc:     rwc,
		id:      id,
		log:     s.log.With(zap.String("conn_id", id), zap.String("remote", rwc.RemoteAddr().String())),
		limiter: limiter,
		dec:     json.NewDecoder(limiter),
	}
	return c
}

// serve runs the request/response loop until the peer disconnects, a fatal
// decode error occurs or the server shuts down.
func (c *conn) serve() {
	metrics := c.srv.registry.Metrics()
	metrics.incAccepted()
	metrics.incActive()
	c.log.Info("engine connected")

	ctx, cancel := context.WithCancel(c.srv.baseCtx)
	defer func() {
		if p := recover(); p != nil {
			c.log.Error("connection goroutine panicked", zap.Any("panic", p), zap.Stack("stack"))
		}
		cancel()
		_ = c.rwc.Close()
		metrics.decActive()
		c.srv.untrackConn(c)
		c.log.Info("engine disconnected")
	}()

	for {
		raw, ok := c.readRequest()
		if !ok {
			return
		}

		resp := c.srv.registry.DispatchJSON(ctx, raw)
		if !c.write(resp) {
			return
		}
	}
}

// readRequest waits for the next JSON document. It reports false when the
// loop should end.
func (c *conn) readRequest() (json.RawMessage, bool) {
	if c.srv.opts.IdleTimeout > 0 {
		_ = c.rwc.SetReadDeadline(time.Now().Add(c.srv.opts.IdleTimeout))
	} else {
		_ = c.rwc.SetReadDeadline(time.Time{})
	}
	c.state.Store(stateIdle)
	if c.srv.closing.Load() {
		return nil, false
	}

	c.limiter.reset()
	var raw json.RawMessage
	err := c.dec.Decode(&raw)
	c.state.Store(stateActive)
	if err == nil {
		return raw, true
	}

	var netErr net.Error
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF):
		c.log.Debug("peer closed connection")
	case errors.Is(err, errMessageTooLarge):
		c.srv.registry.Metrics().incDecodeErrors()
		c.log.Warn("request exceeds size limit", zap.Int64("limit", c.srv.opts.MaxMessageBytes))
		c.write(envelope.StatusResponse{
			Status: envelope.StatusInvalidRequest,
			Error:  fmt.Sprintf("request exceeds %d bytes", c.srv.opts.MaxMessageBytes),
		})
	case errors.As(err, &syntaxErr):
		c.srv.registry.Metrics().incDecodeErrors()
		c.log.Warn("malformed request; closing connection", zap.Error(err))
		c.write(envelope.StatusResponse{Status: envelope.StatusInvalidRequest, Error: err.Error()})
	case errors.As(err, &netErr) && netErr.Timeout():
		c.log.Info("connection idle; closing")
	case errors.Is(err, io.ErrUnexpectedEOF):
		c.log.Warn("peer closed connection mid-request")
	default:
		c.log.Warn("read failed", zap.Error(err))
	}
	return nil, false
}

// write encodes exactly one response followed by a newline.
func (c *conn) write(resp any) bool {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		c.srv.registry.Metrics().incHandlerFailures()
		c.log.Error("response is not encodable", zap.Error(err))
		buf.Reset()
		_ = enc.Encode(envelope.StatusResponse{Status: envelope.StatusError, Error: "response is not encodable"})
	}

	if c.srv.opts.WriteTimeout > 0 {
		_ = c.rwc.SetWriteDeadline(time.Now().Add(c.srv.opts.WriteTimeout))
	}
	if _, err := c.rwc.Write(buf.Bytes()); err != nil {
		c.log.Warn("write failed", zap.Error(err))
		return false
	}
	return true
}

// interruptIfIdle unblocks a connection waiting for its next request.
func (c *conn) interruptIfIdle() {
	if c.state.Load() == stateIdle {
		_ = c.rwc.SetReadDeadline(time.Now())
	}
}

// messageLimiter bounds the bytes read for a single request.
type messageLimiter struct {
	r         io.Reader
	max       int64
	remaining int64
}

func (l *messageLimiter) Read(p []byte) (int, error) {
	if l.max <= 0 {
		return l.r.Read(p)
	}
	if l.remaining <= 0 {
		return 0, errMessageTooLarge
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}

func (l *messageLimiter) reset() {
	l.remaining = l.max
}
