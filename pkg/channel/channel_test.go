package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/bbnode/pkg/wire"
)

var upgrader = websocket.Upgrader{}

// fakeNode runs handler for each inbound frame and returns a ws:// URL.
func fakeNode(t *testing.T, handler func(conn *websocket.Conn, env *wire.Envelope)) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			env := &wire.Envelope{}
			if err := json.Unmarshal(data, env); err != nil {
				continue
			}

			handler(conn, env)
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func reply(conn *websocket.Conn, env *wire.Envelope) {
	b, _ := json.Marshal(env)
	conn.WriteMessage(websocket.TextMessage, b)
}

func TestRequestResponse(t *testing.T) {
	addr := fakeNode(t, func(conn *websocket.Conn, env *wire.Envelope) {
		if env.Type == wire.TypeTransfer {
			reply(conn, &wire.Envelope{Type: wire.TypeTransfer, State: "Approved"})
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer c.Close()

	resp, err := c.Request(ctx, &wire.Envelope{Type: wire.TypeTransfer}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Approved", resp.State)
}

func TestRequestSkipsUnrelatedFrames(t *testing.T) {
	addr := fakeNode(t, func(conn *websocket.Conn, env *wire.Envelope) {
		reply(conn, &wire.Envelope{Type: wire.TypeSubscribeBalance})
		reply(conn, &wire.Envelope{Type: env.Type, State: "Done"})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer c.Close()

	resp, err := c.Request(ctx, &wire.Envelope{Type: wire.TypeOrderAlteration}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Done", resp.State)

	// the unrelated frame landed on the notification stream
	select {
	case n := <-c.Notifications():
		assert.Equal(t, wire.TypeSubscribeBalance, n.Type)
	case <-time.After(time.Second):
		t.Fatal("expected push notification")
	}
}

func TestRequestCustomPredicate(t *testing.T) {
	addr := fakeNode(t, func(conn *websocket.Conn, env *wire.Envelope) {
		reply(conn, &wire.Envelope{Type: wire.TypeTransfer, State: "Pending"})
		reply(conn, &wire.Envelope{Type: wire.TypeTransfer, State: "Approved"})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer c.Close()

	resp, err := c.Request(ctx, &wire.Envelope{Type: wire.TypeTransfer}, func(e *wire.Envelope) bool {
		return e.Type == wire.TypeTransfer && e.State == "Approved"
	})
	require.NoError(t, err)
	assert.Equal(t, "Approved", resp.State)
}

func TestMalformedFrameDoesNotKillReadLoop(t *testing.T) {
	addr := fakeNode(t, func(conn *websocket.Conn, env *wire.Envelope) {
		conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		reply(conn, &wire.Envelope{Type: env.Type, State: "OK"})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer c.Close()

	resp, err := c.Request(ctx, &wire.Envelope{Type: wire.TypeTransfer}, nil)
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.State)
}

func TestConnectionDropReleasesPending(t *testing.T) {
	addr := fakeNode(t, func(conn *websocket.Conn, env *wire.Envelope) {
		conn.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Request(ctx, &wire.Envelope{Type: wire.TypeTransfer}, nil)
	assert.True(t, errors.Is(err, ErrConnClosed))
}

func TestRequestTimeout(t *testing.T) {
	addr := fakeNode(t, func(conn *websocket.Conn, env *wire.Envelope) {
		// never reply
	})

	c, err := Dial(context.Background(), addr)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = c.Request(ctx, &wire.Envelope{Type: wire.TypeTransfer}, nil)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCloseDuringNotificationFlood(t *testing.T) {
	addr := fakeNode(t, func(conn *websocket.Conn, env *wire.Envelope) {
		for i := 0; i < 5000; i++ {
			reply(conn, &wire.Envelope{Type: wire.TypeSubscribeBalance})
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, addr)
	require.NoError(t, err)

	require.NoError(t, c.Send(&wire.Envelope{Type: wire.TypeSubscribeBalance}))

	go func() {
		time.Sleep(5 * time.Millisecond)
		c.Close()
	}()

	// tearing down mid-flood must end the stream cleanly, not panic
	// the read loop on a closed channel
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-c.Notifications():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("notification stream never closed")
		}
	}
}

func TestUnsolicitedFramesDuringRequests(t *testing.T) {
	// the node volunteers same-Type frames around every answer, landing
	// them in the window where the correlation slot is freshly claimed
	addr := fakeNode(t, func(conn *websocket.Conn, env *wire.Envelope) {
		for i := 0; i < 3; i++ {
			reply(conn, &wire.Envelope{Type: wire.TypeTransfer, State: "Pending"})
		}
		reply(conn, &wire.Envelope{Type: wire.TypeTransfer, State: "Approved"})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer c.Close()

	for i := 0; i < 50; i++ {
		resp, err := c.Request(ctx, &wire.Envelope{Type: wire.TypeTransfer}, func(e *wire.Envelope) bool {
			return e.Type == wire.TypeTransfer && e.State == "Approved"
		})
		require.NoError(t, err)
		assert.Equal(t, "Approved", resp.State)
	}
}

func TestSameTypeRequestsSerialized(t *testing.T) {
	addr := fakeNode(t, func(conn *websocket.Conn, env *wire.Envelope) {
		reply(conn, &wire.Envelope{Type: env.Type, State: env.State})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer c.Close()

	done := make(chan string, 2)
	for i := 0; i < 2; i++ {
		go func() {
			resp, err := c.Request(ctx, &wire.Envelope{Type: wire.TypeTransfer}, nil)
			if err != nil {
				done <- "err"
				return
			}
			done <- resp.State
		}()
	}

	for i := 0; i < 2; i++ {
		select {
		case s := <-done:
			assert.NotEqual(t, "err", s)
		case <-time.After(4 * time.Second):
			t.Fatal("requests deadlocked")
		}
	}
}
