package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSendDeliversOneDocument(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		b, _ := io.ReadAll(conn)
		received <- b
	}()

	core, logs := observer.New(zapcore.InfoLevel)
	n := New(Config{Addr: ln.Addr().String(), Timeout: time.Second}, zap.New(core))
	n.Send(context.Background(), map[string]any{"command": "live_reload", "file": "Source/Hero.cpp"})

	select {
	case b := <-received:
		var m map[string]any
		require.NoError(t, json.Unmarshal(b, &m))
		assert.Equal(t, "live_reload", m["command"])
		assert.Equal(t, "Source/Hero.cpp", m["file"])
	case <-time.After(2 * time.Second):
		t.Fatal("engine never received the push")
	}

	require.Equal(t, 1, logs.FilterMessage("pushed to engine").Len())
}

func TestSendToUnreachableLogsOnce(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	core, logs := observer.New(zapcore.InfoLevel)
	n := New(Config{Addr: "unused:1", Timeout: 200 * time.Millisecond}, zap.New(core))

	assert.NotPanics(t, func() {
		n.SendTo(context.Background(), addr, map[string]any{"command": "spawn_character"})
	})

	failures := logs.FilterMessage("push to engine failed")
	require.Equal(t, 1, failures.Len())
	entry := failures.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "spawn_character", entry.ContextMap()["command"])
	assert.Equal(t, addr, entry.ContextMap()["addr"])
}

func TestSendUnencodableMessage(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := New(Config{Addr: "127.0.0.1:1"}, zap.New(core))

	n.Send(context.Background(), map[string]any{"command": "bad", "ch": make(chan int)})

	assert.Equal(t, 1, logs.FilterMessage("push to engine failed").Len())
}
