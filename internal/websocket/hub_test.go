package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.done
	})
	return hub
}

func newClient(hub *Hub, sessionID string, buffer int) *Client {
	c := &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte, buffer)}
	hub.register <- c
	return c
}

func TestHub_DeliversOnlyToWatchersOfSession(t *testing.T) {
	hub := startHub(t)
	a := newClient(hub, "a", 4)
	b := newClient(hub, "b", 4)

	require.Eventually(t, func() bool { return hub.ClientCount("a") == 1 && hub.ClientCount("b") == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, hub.SessionCount())

	hub.SendToSession("a", []byte(`{"type":"SOURCES_SELECTED"}`))

	select {
	case msg := <-a.Send:
		assert.JSONEq(t, `{"type":"SOURCES_SELECTED"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("watcher of a got nothing")
	}
	assert.Len(t, b.Send, 0)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	c := newClient(hub, "s", 1)
	hub.unregister <- c

	require.Eventually(t, func() bool { return hub.ClientCount("s") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := startHub(t)
	newClient(hub, "slow", 1)
	require.Eventually(t, func() bool { return hub.ClientCount("slow") == 1 }, time.Second, 5*time.Millisecond)

	hub.SendToSession("slow", []byte(`{}`))
	hub.SendToSession("slow", []byte(`{}`))

	require.Eventually(t, func() bool { return hub.ClientCount("slow") == 0 }, time.Second, 5*time.Millisecond)
}
