// Package node wires one paxos.Instance to a transport.Transport and a
// storage.AcceptorStore: it is the thing that actually runs, as opposed
// to the pure core it drives. A Node plays all three roles for a single
// decree, which is the common deployment shape (spec.md §5) — one
// process per cluster member, not one process per role.
package node

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/paxoscore/quorum/paxos"
	"github.com/paxoscore/quorum/storage"
	"github.com/paxoscore/quorum/transport"
)

// baseRetryInterval bounds how long Propose waits for a round to close
// before retrying it through kickOffRound. spec.md leaves retry/backoff policy to the driver (§5); each
// node offsets this by a uid-derived jitter (see retryInterval) so that
// two competing proposers retrying on the same fixed period don't duel
// forever, each invalidating the other's round before it can close.
const baseRetryInterval = 400 * time.Millisecond

// retryInterval adds up to 250ms of deterministic, uid-derived jitter to
// baseRetryInterval, so competing proposers on the same decree drift out
// of lockstep instead of retrying in lockstep indefinitely.
func (n *Node) retryInterval() time.Duration {
	var sum int
	for _, b := range []byte(n.ID()) {
		sum += int(b)
	}
	jitter := time.Duration(sum%250) * time.Millisecond
	return baseRetryInterval + jitter
}

// Node co-locates the Proposer, Acceptor and Learner for one decree atop
// a Transport and an AcceptorStore.
type Node struct {
	instance  *paxos.Instance
	transport transport.Transport
	store     storage.AcceptorStore

	// instMu serializes every access to instance: handleMessages's
	// goroutine and the goroutine calling Propose both mutate it, and the
	// core itself assumes single-threaded access (spec.md §5 puts
	// concurrency entirely on the driver's side).
	instMu sync.Mutex

	mu           sync.Mutex
	running      bool
	stopCh       chan struct{}
	wg           sync.WaitGroup
	resolutionCh chan paxos.Value
}

// New constructs a Node, rehydrating the Acceptor's durable state from
// store before the instance handles its first message.
func New(networkUID string, quorumSize int, t transport.Transport, s storage.AcceptorStore) (*Node, error) {
	promisedID, accepted, err := s.Load()
	if err != nil {
		return nil, fmt.Errorf("node %s: load state: %w", networkUID, err)
	}
	return &Node{
		instance:  paxos.NewInstance(networkUID, quorumSize, promisedID, accepted),
		transport: t,
		store:     s,
	}, nil
}

// ID returns this node's network uid.
func (n *Node) ID() string {
	return n.instance.NetworkUID
}

// Start launches the message loop in a goroutine and returns immediately.
func (n *Node) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running {
		return nil
	}
	n.running = true
	n.stopCh = make(chan struct{})
	n.wg.Add(1)
	go n.handleMessages()
	return nil
}

// Stop signals the message loop to exit and waits for it to finish.
func (n *Node) Stop() error {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return nil
	}
	n.running = false
	close(n.stopCh)
	n.mu.Unlock()
	n.wg.Wait()
	return nil
}

func (n *Node) handleMessages() {
	defer n.wg.Done()
	for {
		select {
		case <-n.stopCh:
			return
		default:
			msg, err := n.transport.ReceiveTimeout(100 * time.Millisecond)
			if err == transport.ErrTimeout {
				continue
			}
			if err != nil {
				log.Printf("[%s] receive error: %v", n.ID(), err)
				continue
			}
			n.routeMessage(msg)
		}
	}
}

// routeMessage feeds one inbound message through the instance and
// dispatches whatever it produces. A Prepare or Accept may change the
// Acceptor's durable state, so that state is flushed to storage before
// routeMessage lets the response reach the network — the persist-then-
// reply discipline spec.md §5 requires.
func (n *Node) routeMessage(msg paxos.Message) {
	n.instMu.Lock()
	defer n.instMu.Unlock()
	n.routeMessageLocked(msg)
}

// routeMessageLocked is routeMessage's body, callable by a caller that
// already holds instMu — kickOffRound needs this so the locally
// generated Prepare/Accept it loops back through the same instance
// doesn't try to re-lock a mutex it already holds.
func (n *Node) routeMessageLocked(msg paxos.Message) {
	resp, err := n.instance.Receive(msg)
	if err != nil {
		log.Printf("[%s] %v", n.ID(), err)
		return
	}
	if resp == nil {
		return
	}

	switch msg.(type) {
	case paxos.Prepare, paxos.Accept:
		if err := n.persistAcceptorState(); err != nil {
			// Storage is the one safety-critical dependency here: an
			// Acceptor that answers without having durably recorded
			// its new promise can forget it on restart and violate
			// the protocol's core safety rule.
			log.Fatalf("[%s] persist acceptor state: %v", n.ID(), err)
		}
	}

	n.dispatch(resp, msg)
}

func (n *Node) dispatch(resp, trigger paxos.Message) {
	switch r := resp.(type) {
	case paxos.Promise:
		if t, ok := trigger.(paxos.Prepare); ok {
			n.sendOrLog(t.FromUID, r)
		}
	case paxos.Nack:
		switch t := trigger.(type) {
		case paxos.Prepare:
			n.sendOrLog(t.FromUID, r)
		case paxos.Accept:
			n.sendOrLog(t.FromUID, r)
		}
	case paxos.Accepted:
		if err := n.transport.Broadcast(r); err != nil {
			log.Printf("[%s] broadcast accepted: %v", n.ID(), err)
		}
		if res := n.instance.Learner.ReceiveAccepted(r); res != nil {
			n.onResolved(*res)
		}
	case paxos.Accept:
		if err := n.transport.Broadcast(r); err != nil {
			log.Printf("[%s] broadcast accept: %v", n.ID(), err)
		}
	case paxos.Prepare:
		if err := n.transport.Broadcast(r); err != nil {
			log.Printf("[%s] broadcast prepare: %v", n.ID(), err)
		}
	case paxos.Resolution:
		n.onResolved(r)
	}
}

func (n *Node) sendOrLog(to string, msg paxos.Message) {
	if err := n.transport.Send(to, msg); err != nil {
		log.Printf("[%s] send to %s: %v", n.ID(), to, err)
	}
}

func (n *Node) persistAcceptorState() error {
	promisedID, accepted := n.instance.Acceptor.GetState()
	if promisedID != nil {
		if err := n.store.SavePromised(*promisedID); err != nil {
			return err
		}
	}
	if accepted != nil {
		if err := n.store.SaveAccepted(*accepted); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) onResolved(res paxos.Resolution) {
	n.mu.Lock()
	ch := n.resolutionCh
	n.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- res.Value:
	default:
	}
}

// Propose drives this node's Proposer to push value into the decree,
// retrying every retryInterval until either a value is resolved or ctx
// is cancelled. Each retry re-sends the current round's Accept while
// this node still believes itself leader, and otherwise starts a fresh,
// higher-numbered round. The resolved value may
// differ from value — any already-accepted value wins per the adoption
// rule in paxos.Proposer.ReceivePromise.
func (n *Node) Propose(ctx context.Context, value paxos.Value) (paxos.Value, error) {
	n.instMu.Lock()
	v, _, ok := n.instance.Learner.GetResolution()
	n.instMu.Unlock()
	if ok {
		return v, nil
	}

	n.mu.Lock()
	if n.resolutionCh == nil {
		n.resolutionCh = make(chan paxos.Value, 1)
	}
	ch := n.resolutionCh
	n.mu.Unlock()

	n.kickOffRound(value)

	ticker := time.NewTicker(n.retryInterval())
	defer ticker.Stop()
	for {
		select {
		case v := <-ch:
			return v, nil
		case <-ticker.C:
			n.kickOffRound(value)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// kickOffRound starts (or restarts) a round and feeds the resulting
// Prepare/Accept to this node's own Acceptor in addition to broadcasting
// it — transports address Broadcast at every *other* node, but this
// node plays the Acceptor role for itself too and must vote in its own
// rounds like any peer.
func (n *Node) kickOffRound(value paxos.Value) {
	n.instMu.Lock()
	defer n.instMu.Unlock()

	if accept := n.instance.Proposer.ProposeValue(value); accept != nil {
		if err := n.transport.Broadcast(*accept); err != nil {
			log.Printf("[%s] broadcast accept: %v", n.ID(), err)
		}
		n.routeMessageLocked(*accept)
		return
	}
	prep := n.instance.Proposer.Prepare()
	if err := n.transport.Broadcast(prep); err != nil {
		log.Printf("[%s] broadcast prepare: %v", n.ID(), err)
	}
	n.routeMessageLocked(prep)
}

// GetResolution reports the value this node's Learner has observed
// chosen, if any.
func (n *Node) GetResolution() (value paxos.Value, ok bool) {
	n.instMu.Lock()
	defer n.instMu.Unlock()
	v, _, ok := n.instance.Learner.GetResolution()
	return v, ok
}
