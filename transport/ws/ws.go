// Package ws is a Transport that moves paxos.Message values over
// gorilla/websocket connections, one per peer. It exists to give the
// demo harness a transport that actually crosses a process boundary,
// unlike transport/memory.
//
// Message values are framed as a small JSON envelope tagging which of
// the six variants follows. This means Accept/Accepted's opaque Value
// payload must itself be JSON-marshalable; the in-process transport
// carries arbitrary Go values, this one does not.
package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/paxoscore/quorum/paxos"
	"github.com/paxoscore/quorum/transport"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func encode(msg paxos.Message) ([]byte, error) {
	var kind string
	switch msg.(type) {
	case paxos.Prepare:
		kind = "prepare"
	case paxos.Promise:
		kind = "promise"
	case paxos.Nack:
		kind = "nack"
	case paxos.Accept:
		kind = "accept"
	case paxos.Accepted:
		kind = "accepted"
	case paxos.Resolution:
		kind = "resolution"
	default:
		return nil, fmt.Errorf("ws: %w: %T", paxos.ErrInvalidMessageKind, msg)
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("ws: encode %s: %w", kind, err)
	}
	return json.Marshal(envelope{Kind: kind, Payload: payload})
}

func decode(data []byte) (paxos.Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("ws: decode envelope: %w", err)
	}
	var msg paxos.Message
	switch env.Kind {
	case "prepare":
		var m paxos.Prepare
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return nil, err
		}
		msg = m
	case "promise":
		var m paxos.Promise
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return nil, err
		}
		msg = m
	case "nack":
		var m paxos.Nack
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return nil, err
		}
		msg = m
	case "accept":
		var m paxos.Accept
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return nil, err
		}
		msg = m
	case "accepted":
		var m paxos.Accepted
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return nil, err
		}
		msg = m
	case "resolution":
		var m paxos.Resolution
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return nil, err
		}
		msg = m
	default:
		return nil, fmt.Errorf("ws: %w: unknown envelope kind %q", paxos.ErrInvalidMessageKind, env.Kind)
	}
	return msg, nil
}

// Endpoint is one node's view of a websocket mesh: a set of peer
// connections keyed by network uid, and a single inbox fed by all of
// them.
type Endpoint struct {
	self string

	mu     sync.RWMutex
	peers  map[string]*websocket.Conn
	closed bool

	inbox chan paxos.Message
	errs  chan error
}

var _ transport.Transport = (*Endpoint)(nil)

// NewEndpoint creates an Endpoint with no peers yet attached.
func NewEndpoint(self string) *Endpoint {
	return &Endpoint{
		self:  self,
		peers: make(map[string]*websocket.Conn),
		inbox: make(chan paxos.Message, 256),
		errs:  make(chan error, 1),
	}
}

// Dial opens an outbound connection to uid at url, tagging the request
// with this endpoint's own uid so the peer's ServeHTTP can register the
// connection under the right key on its side.
func (e *Endpoint) Dial(uid, url string) error {
	dialURL := fmt.Sprintf("%s?uid=%s", url, e.self)
	conn, _, err := websocket.DefaultDialer.Dial(dialURL, nil)
	if err != nil {
		return fmt.Errorf("ws: dial %s: %w", uid, err)
	}
	e.AddPeer(uid, conn)
	return nil
}

// ServeHTTP upgrades an inbound connection and registers it under the
// uid carried in the "uid" query parameter. A peer that omits it gets a
// generated uid — it can still be broadcast to, just not individually
// addressed by Send until the caller learns the uid some other way.
func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	if uid == "" {
		uid = uuid.NewString()
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	e.AddPeer(uid, conn)
}

// AddPeer registers an already-established connection and starts
// reading from it into the endpoint's inbox.
func (e *Endpoint) AddPeer(uid string, conn *websocket.Conn) {
	e.mu.Lock()
	e.peers[uid] = conn
	e.mu.Unlock()
	go e.readLoop(conn)
}

func (e *Endpoint) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := decode(data)
		if err != nil {
			select {
			case e.errs <- err:
			default:
			}
			continue
		}
		e.mu.RLock()
		closed := e.closed
		e.mu.RUnlock()
		if closed {
			return
		}
		e.inbox <- msg
	}
}

func (e *Endpoint) Broadcast(msg paxos.Message) error {
	data, err := encode(msg)
	if err != nil {
		return err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	var firstErr error
	for uid, conn := range e.peers {
		if uid == e.self {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("ws: broadcast to %s: %w", uid, err)
		}
	}
	return firstErr
}

// Send delivers msg to to. A self-addressed Send — the node acting as
// an Acceptor/Learner replying to a Prepare/Accept it fed itself — has
// no peer connection to write to, so it loops straight into this
// endpoint's own inbox instead of going out over the wire.
func (e *Endpoint) Send(to string, msg paxos.Message) error {
	if to == e.self {
		e.inbox <- msg
		return nil
	}
	data, err := encode(msg)
	if err != nil {
		return err
	}
	e.mu.RLock()
	conn, ok := e.peers[to]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("ws: send to %s: %w", to, transport.ErrClosed)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("ws: send to %s: %w", to, err)
	}
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
	for _, conn := range e.peers {
		conn.Close()
	}
	close(e.inbox)
	return nil
}
