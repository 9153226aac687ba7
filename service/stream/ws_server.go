package stream

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"DProject/logger"
	"DProject/middleware/security"
	"DProject/module/message"
	"DProject/module/thread"
	"DProject/service/storage"
	"DProject/tools/errs"
	"DProject/tools/ids"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Vars so tests can shrink the heartbeat cadence.
var (
	pingInterval = 25 * time.Second
	pongWait     = 75 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Frame is the one message-shaped payload per event pushed to viewers.
type Frame struct {
	Type string           `json:"type"` // "message"
	Data *message.Message `json:"data"`
}

type Server struct {
	broker   *Broker
	threads  thread.Store
	presence *storage.Presence // nil when redis is disabled
	nodeID   string
}

func NewServer(broker *Broker, threads thread.Store, presence *storage.Presence, nodeID string) *Server {
	return &Server{broker: broker, threads: threads, presence: presence, nodeID: nodeID}
}

// Broker exposes the injected broker so the message service can publish into
// the same instance.
func (s *Server) Broker() *Broker { return s.broker }

// HandleWS upgrades the connection and streams the thread's new messages to
// the caller until it disconnects. Cancellation propagates from the
// transport: the read loop unblocks on close and the deferred cancel
// unregisters the subscriber, so nothing leaks past disconnect.
func (s *Server) HandleWS(c *gin.Context) {
	actor := security.ActingUser(c)
	threadID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrNotFound.WithDetail("bad thread id"))
		return
	}
	t, terr := s.threads.GetByID(c.Request.Context(), threadID)
	if terr != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}
	if t == nil || !t.Involves(actor) {
		c.JSON(http.StatusNotFound, errs.ErrNotFound.WithDetail("thread not found for caller"))
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[stream] upgrade error: %v", err)
		return
	}
	cli := NewClient(ids.GenerateString(), actor, threadID, ws)
	defer func() { _ = ws.Close() }()

	sub, cancel := s.broker.Subscribe(threadID)
	defer cancel()

	ctx := context.Background()
	if s.presence != nil {
		if err := s.presence.Online(ctx, actor, s.nodeID); err != nil {
			logger.Warnf("[stream] presence online user=%s: %v", actor, err)
		}
		defer func() {
			if err := s.presence.Offline(ctx, actor); err != nil {
				logger.Warnf("[stream] presence offline user=%s: %v", actor, err)
			}
		}()
	}

	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		if s.presence != nil {
			if err := s.presence.Touch(ctx, actor); err != nil {
				logger.Warnf("[stream] presence touch user=%s: %v", actor, err)
			}
		}
		return nil
	})

	done := make(chan struct{})
	go s.readLoop(cli, done)
	s.writeLoop(cli, sub, done)
}

// readLoop only notices the peer going away; inbound frames are ignored
// (the push channel is one-way, writes go through the HTTP API).
func (s *Server) readLoop(cli *Client, done chan struct{}) {
	defer close(done)
	for {
		if _, _, err := cli.WS.ReadMessage(); err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[stream] peer closed conn=%s", cli.ConnID)
			} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
				logger.Infof("[stream] read timeout conn=%s", cli.ConnID)
			} else {
				logger.Infof("[stream] read err conn=%s err=%v", cli.ConnID, err)
			}
			return
		}
	}
}

// writeLoop blocks on "new event or heartbeat elapsed, whichever first" and
// returns promptly when the client disconnects.
func (s *Server) writeLoop(cli *Client, sub *Subscription, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case m, ok := <-sub.C:
			if !ok {
				return
			}
			payload, err := json.Marshal(Frame{Type: "message", Data: m})
			if err != nil {
				logger.Errorf("[stream] marshal frame: %v", err)
				continue
			}
			_ = cli.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cli.WS.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Infof("[stream] write err conn=%s err=%v", cli.ConnID, err)
				return
			}
		case <-ticker.C:
			// liveness signal independent of message traffic
			if err := cli.WS.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				logger.Infof("[stream] ping err conn=%s err=%v", cli.ConnID, err)
				return
			}
		case <-done:
			return
		}
	}
}
