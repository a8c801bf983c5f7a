// Package transport defines the message-delivery collaborator the paxos
// core never touches directly. spec.md keeps the wire and the network
// out of scope (§1): the core produces messages as return values and
// consumes them through receive operations, and it is a driver's job to
// actually move bytes between nodes.
package transport

import (
	"errors"
	"time"

	"github.com/paxoscore/quorum/paxos"
)

// ErrTimeout is returned by ReceiveTimeout when no message arrives
// within the given duration.
var ErrTimeout = errors.New("transport: receive timed out")

// ErrClosed is returned by Receive/ReceiveTimeout once the transport has
// been closed. The ws transport's Send also returns it, wrapped, for a
// uid it has no peer connection to.
var ErrClosed = errors.New("transport: closed")

// Transport carries paxos.Message values between nodes. Implementations
// own serialization; the core is agnostic to wire format as long as the
// six message variants and ProposalID orderings round-trip.
type Transport interface {
	// Broadcast delivers msg to every other known node.
	Broadcast(msg paxos.Message) error
	// Send delivers msg to exactly one node, identified by network uid.
	Send(to string, msg paxos.Message) error
	// Receive blocks until a message addressed to this node arrives.
	Receive() (paxos.Message, error)
	// ReceiveTimeout is Receive bounded by d, returning ErrTimeout if
	// nothing arrives in time.
	ReceiveTimeout(d time.Duration) (paxos.Message, error)
	// Close releases the transport's resources. Receive and
	// ReceiveTimeout return ErrClosed afterwards; Broadcast and Send do
	// not check whether the transport has been closed.
	Close() error
}
