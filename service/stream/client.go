package stream

import (
	"github.com/gorilla/websocket"
)

// Client wraps one live viewer connection. The write side is owned by a
// single goroutine (writeLoop in ws_server.go); the read side exists only to
// notice disconnects.
type Client struct {
	ConnID   string
	UserID   string
	ThreadID int64
	WS       *websocket.Conn
}

func NewClient(connID, userID string, threadID int64, ws *websocket.Conn) *Client {
	return &Client{
		ConnID:   connID,
		UserID:   userID,
		ThreadID: threadID,
		WS:       ws,
	}
}
