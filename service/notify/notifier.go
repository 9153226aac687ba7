// Package notify is the fire-and-forget notification dispatch collaborator.
// Failures are logged and swallowed; a messaging caller never sees them.
package notify

import (
	"encoding/json"
	"time"

	"DProject/logger"
	"DProject/tools/safe"
)

const (
	EventThreadRequested = "thread.requested"
	EventThreadAccepted  = "thread.accepted"
	EventMessageCreated  = "message.created"
)

// Event is the payload published per notification.
type Event struct {
	Kind     string `json:"kind"`
	ThreadID int64  `json:"thread_id"`
	ActorID  string `json:"actor_id"`
	PeerID   string `json:"peer_id"`
	TS       int64  `json:"ts"`
}

// Notifier delivers events best-effort. Implementations must never block the
// caller on broker trouble.
type Notifier interface {
	Notify(ev Event)
}

// Noop is used when dispatch is disabled (tests, local runs without NATS).
type Noop struct{}

func (Noop) Notify(Event) {}

func encode(ev Event) []byte {
	if ev.TS == 0 {
		ev.TS = time.Now().UnixMilli()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf("[notify] marshal event: %v", err)
		return nil
	}
	return b
}

// Dispatch runs fn on a guarded goroutine so a slow broker never holds up
// the triggering write.
func Dispatch(n Notifier, ev Event) {
	if n == nil {
		return
	}
	safe.Go(func() { n.Notify(ev) })
}
