// Package paxos implements the algorithmic core of single-decree Paxos: a
// set of pure, event-driven state machines (Proposer, Acceptor, Learner)
// that converge on at most one chosen value under the classical Paxos
// safety guarantees.
//
// Nothing in this package touches I/O, the clock, or the network. Every
// exported method is a total function from (current state, input message)
// to (new state, optional output message). Driving the protocol across a
// real cluster — transport, durable storage, timers, retries — is the
// caller's job; see the sibling transport, storage and node packages for
// reference collaborators.
package paxos

import "fmt"

// ProposalID totally orders proposals across every proposer in the
// system. Proposers only ever mint numbers locally, so uniqueness across
// the whole cluster is guaranteed by pairing the round number with the
// proposer's network identity as a tie-breaker — no coordination needed.
type ProposalID struct {
	Number uint64
	UID    string
}

// Equal reports whether the two ids are identical.
func (p ProposalID) Equal(other ProposalID) bool {
	return p.Number == other.Number && p.UID == other.UID
}

// Less reports whether p sorts strictly before other: Number first, UID
// as the tie-breaker.
func (p ProposalID) Less(other ProposalID) bool {
	if p.Number != other.Number {
		return p.Number < other.Number
	}
	return p.UID < other.UID
}

// Greater reports whether p sorts strictly after other.
func (p ProposalID) Greater(other ProposalID) bool {
	return other.Less(p)
}

// LessOrEqual reports whether p sorts at or before other.
func (p ProposalID) LessOrEqual(other ProposalID) bool {
	return !other.Less(p)
}

// GreaterOrEqual reports whether p sorts at or after other.
func (p ProposalID) GreaterOrEqual(other ProposalID) bool {
	return !p.Less(other)
}

func (p ProposalID) String() string {
	return fmt.Sprintf("(%d,%s)", p.Number, p.UID)
}

// zeroProposalID is the sentinel a fresh Proposer starts from. It is
// strictly less than any id that proposer will ever issue after its
// first Prepare call, since Prepare always mints Number+1.
func zeroProposalID(networkUID string) ProposalID {
	return ProposalID{Number: 0, UID: networkUID}
}

// Value is the opaque payload a proposal carries. The core never
// inspects it beyond equality comparisons (via valuesEqual), which use
// reflect.DeepEqual so that non-comparable payloads (byte slices, maps)
// remain safe to propose.
type Value = any

// AcceptedProposal pairs a proposal id with the value accepted under it.
// The two fields are always jointly present or jointly absent — modeled
// as a single optional pointer rather than two independently optional
// fields, so a promise or an acceptor can never end up with one set and
// not the other.
type AcceptedProposal struct {
	ID    ProposalID
	Value Value
}
