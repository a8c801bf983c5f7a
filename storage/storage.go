// Package storage defines the durable-storage collaborator the paxos
// core never touches directly. spec.md keeps the acceptor's durable
// state — the only durable state anywhere in this system — strictly
// outside the core: the core returns a Promise or Accepted as a pure
// value, and it is the caller's job to persist the acceptor's new state
// to stable media before that message reaches a peer.
package storage

import "github.com/paxoscore/quorum/paxos"

// AcceptorStore persists the single versioned record an Acceptor needs
// to survive a restart: the promised id, and the last accepted (id,
// value) pair. Implementations must guarantee that a Save call has
// reached stable media before it returns — the "persist, then reply"
// discipline described in spec.md §5 is the caller's to enforce, but it
// can only be upheld if Save is synchronous and durable.
type AcceptorStore interface {
	SavePromised(id paxos.ProposalID) error
	SaveAccepted(accepted paxos.AcceptedProposal) error
	Load() (promisedID *paxos.ProposalID, accepted *paxos.AcceptedProposal, err error)
	Close() error
}
