// Package memory is an in-process fan-out Transport: every node
// registered on a shared Hub receives every other node's broadcasts
// through a buffered channel. It is meant for unit tests and the demo
// harness, not for crossing a process boundary — see the sibling ws
// package for that.
package memory

import (
	"sync"
	"time"

	"github.com/paxoscore/quorum/paxos"
	"github.com/paxoscore/quorum/transport"
)

const inboxSize = 256

// Hub is the shared medium a cluster of in-process nodes registers on.
type Hub struct {
	mu      sync.RWMutex
	inboxes map[string]chan paxos.Message
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{inboxes: make(map[string]chan paxos.Message)}
}

// Register creates a Transport for networkUID and wires it into the hub.
func (h *Hub) Register(networkUID string) *Endpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	inbox := make(chan paxos.Message, inboxSize)
	h.inboxes[networkUID] = inbox
	return &Endpoint{hub: h, self: networkUID, inbox: inbox}
}

func (h *Hub) deliver(to string, msg paxos.Message) {
	h.mu.RLock()
	inbox, ok := h.inboxes[to]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case inbox <- msg:
	default:
		// Slow reader: drop rather than block the sender. The core
		// tolerates loss (spec.md §5), so this is a legal outcome of
		// this transport's implementation choice, not a protocol bug.
	}
}

// Endpoint is one node's view of a Hub.
type Endpoint struct {
	hub    *Hub
	self   string
	inbox  chan paxos.Message
	closed bool
	mu     sync.Mutex
}

var _ transport.Transport = (*Endpoint)(nil)

func (e *Endpoint) Broadcast(msg paxos.Message) error {
	e.hub.mu.RLock()
	defer e.hub.mu.RUnlock()
	for uid := range e.hub.inboxes {
		if uid == e.self {
			continue
		}
		e.hub.deliver(uid, msg)
	}
	return nil
}

func (e *Endpoint) Send(to string, msg paxos.Message) error {
	e.hub.deliver(to, msg)
	return nil
}

func (e *Endpoint) Receive() (paxos.Message, error) {
	msg, ok := <-e.inbox
	if !ok {
		return nil, transport.ErrClosed
	}
	return msg, nil
}

func (e *Endpoint) ReceiveTimeout(d time.Duration) (paxos.Message, error) {
	select {
	case msg, ok := <-e.inbox:
		if !ok {
			return nil, transport.ErrClosed
		}
		return msg, nil
	case <-time.After(d):
		return nil, transport.ErrTimeout
	}
}

func (e *Endpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	close(e.inbox)
	return nil
}
