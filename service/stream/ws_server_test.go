package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"DProject/middleware/security"
	"DProject/module/message"
	"DProject/module/thread"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// newStreamFixture serves HandleWS behind a stub auth layer that fixes the
// acting user, over thread 1 between alice and bob.
func newStreamFixture(t *testing.T, actor string) (*Broker, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	threads := thread.NewMemStore()
	if _, _, err := threads.CreateIfAbsent(context.Background(), &thread.Thread{
		ID: 1, UserLowID: "alice", UserHighID: "bob", Status: thread.StatusActive,
	}); err != nil {
		t.Fatalf("seed thread: %v", err)
	}

	broker := NewBroker()
	srv := NewServer(broker, threads, nil, "test-node")

	r := gin.New()
	r.GET("/threads/:id/stream", func(c *gin.Context) {
		c.Set(security.CtxUserIDKey, actor)
	}, srv.HandleWS)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return broker, ts
}

func dialStream(t *testing.T, ts *httptest.Server, threadID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/threads/" + threadID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	return conn
}

func waitForCount(t *testing.T, b *Broker, threadID int64, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.SubscriberCount(threadID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscriber count never reached %d, still %d", want, b.SubscriberCount(threadID))
}

func TestStreamDeliversPublishedMessages(t *testing.T) {
	broker, ts := newStreamFixture(t, "alice")
	conn := dialStream(t, ts, "1")
	defer func() { _ = conn.Close() }()

	waitForCount(t, broker, 1, 1)
	broker.Publish(1, &message.Message{ID: 7, ThreadID: 1, AuthorID: "bob", Body: "hi"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if f.Type != "message" || f.Data == nil || f.Data.ID != 7 || f.Data.Body != "hi" {
		t.Fatalf("unexpected frame: %+v", f)
	}
}

func TestStreamUnsubscribesOnDisconnect(t *testing.T) {
	broker, ts := newStreamFixture(t, "alice")
	conn := dialStream(t, ts, "1")

	waitForCount(t, broker, 1, 1)

	_ = conn.Close()
	// the read loop notices the close and the deferred cancel runs
	waitForCount(t, broker, 1, 0)

	// publishing afterwards is a no-op, nothing left to receive it
	broker.Publish(1, &message.Message{ID: 8, ThreadID: 1})
	if n := broker.SubscriberCount(1); n != 0 {
		t.Fatalf("expected no subscribers after disconnect, got %d", n)
	}
}

func TestStreamHeartbeatWithoutTraffic(t *testing.T) {
	old := pingInterval
	pingInterval = 50 * time.Millisecond
	defer func() { pingInterval = old }()

	broker, ts := newStreamFixture(t, "alice")
	conn := dialStream(t, ts, "1")
	defer func() { _ = conn.Close() }()
	waitForCount(t, broker, 1, 1)

	pings := make(chan struct{}, 1)
	conn.SetPingHandler(func(string) error {
		select {
		case pings <- struct{}{}:
		default:
		}
		return nil
	})
	// control frames are only processed while a read is in flight
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pings:
	case <-time.After(2 * time.Second):
		t.Fatalf("no ping frame on an idle connection")
	}
}

func TestStreamRejectsOutsiderBeforeUpgrade(t *testing.T) {
	_, ts := newStreamFixture(t, "carol")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/threads/1/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		_ = conn.Close()
		t.Fatalf("expected handshake rejection for non-participant")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("expected 404 before upgrade, got %+v", resp)
	}
}

func TestStreamRejectsUnknownThread(t *testing.T) {
	_, ts := newStreamFixture(t, "alice")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/threads/999/stream"
	if conn, resp, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		_ = conn.Close()
		t.Fatalf("expected handshake rejection for unknown thread")
	} else if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("expected 404 before upgrade, got %+v", resp)
	}
}
