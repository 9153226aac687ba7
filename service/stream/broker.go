// Package stream delivers newly appended messages to live viewers.
//
// The Broker is a constructed, process-local pub/sub registry keyed by
// thread id, explicitly not a distributed guarantee. It is injected into
// the serving layer so tests run isolated instances and a distributed
// implementation can replace it behind the same interface later.
package stream

import (
	"sync"

	"DProject/module/message"
)

const defaultSubBuffer = 64

// Subscription is one live viewer of a thread. C closes when the
// subscription is canceled.
type Subscription struct {
	C        <-chan *message.Message
	ch       chan *message.Message
	threadID int64
	id       int64
}

type Broker struct {
	mu     sync.RWMutex
	subs   map[int64]map[int64]*Subscription // thread -> sub id -> sub
	nextID int64
	buffer int
}

func NewBroker() *Broker {
	return &Broker{
		subs:   make(map[int64]map[int64]*Subscription),
		buffer: defaultSubBuffer,
	}
}

// Subscribe registers interest in a thread's stream. The returned cancel
// func is the only path that removes the subscriber; it is idempotent and
// must be called on client disconnect or the registry grows without bound.
func (b *Broker) Subscribe(threadID int64) (*Subscription, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		ch:       make(chan *message.Message, b.buffer),
		threadID: threadID,
		id:       b.nextID,
	}
	sub.C = sub.ch

	m := b.subs[threadID]
	if m == nil {
		m = make(map[int64]*Subscription)
		b.subs[threadID] = m
	}
	m[sub.id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if m := b.subs[threadID]; m != nil {
				delete(m, sub.id)
				if len(m) == 0 {
					delete(b.subs, threadID)
				}
			}
			// Safe to close here: publishers send under RLock, which this
			// Lock excludes.
			close(sub.ch)
		})
	}
	return sub, cancel
}

// Publish hands m to every live subscriber of the thread, at most once each,
// best-effort: a subscriber whose buffer is full is skipped (it recovers via
// cursor replay on reconnect). With no subscribers this is a no-op; it never
// fails the write that triggered it.
func (b *Broker) Publish(threadID int64, m *message.Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[threadID] {
		select {
		case sub.ch <- m:
		default:
			// slow client, skip
		}
	}
}

// SubscriberCount is used by tests and debug endpoints.
func (b *Broker) SubscriberCount(threadID int64) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[threadID])
}
