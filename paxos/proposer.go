package paxos

// Proposer drives Phase 1 (Prepare -> Promise) and Phase 2 (Accept) from
// one node. It is the only role that mints proposal numbers, and the
// only way it does so is inside Prepare, which guarantees the sequence
// of proposal ids this proposer issues is strictly increasing.
//
// leader is a belief, not a cluster-authoritative fact: multiple
// proposers may believe themselves the leader for the same decree at
// once. That is expected, not a bug.
type Proposer struct {
	NetworkUID string
	QuorumSize int

	leader            bool
	proposalID        ProposalID
	highestProposalID ProposalID
	highestAcceptedID *ProposalID

	proposedValue    Value
	hasProposedValue bool

	promisesReceived map[string]struct{}
	nacksReceived    map[string]struct{}

	currentPrepareMsg *Prepare
	currentAcceptMsg  *Accept
}

// NewProposer constructs a Proposer at its initial round. Its starting
// proposal id, (0, networkUID), is a sentinel strictly below anything
// Prepare will ever mint.
func NewProposer(networkUID string, quorumSize int) *Proposer {
	zero := zeroProposalID(networkUID)
	return &Proposer{
		NetworkUID:        networkUID,
		QuorumSize:        quorumSize,
		proposalID:        zero,
		highestProposalID: zero,
	}
}

// ProposeValue sets the value this proposer intends to push, unless one
// is already set — once proposedValue is set it is never overwritten by
// this method (the adoption rule in ReceivePromise may still overwrite
// it). If this proposer already believes itself leader, the Accept for
// the current round is returned immediately; otherwise nil is returned
// and the Accept is emitted later, from ReceivePromise, once quorum is
// reached.
func (p *Proposer) ProposeValue(value Value) *Accept {
	if !p.hasProposedValue {
		p.proposedValue = value
		p.hasProposedValue = true
	}
	if !p.leader {
		return nil
	}
	msg := Accept{
		FromUID:       p.NetworkUID,
		ProposalID:    p.proposalID,
		ProposalValue: p.proposedValue,
	}
	p.currentAcceptMsg = &msg
	return &msg
}

// Prepare starts a new round: clears the leader belief and the quorum
// sets, mints a proposal id strictly higher than any this proposer has
// used or observed, and returns the Prepare to broadcast. This is the
// only way new proposal numbers are minted, and the only way to
// abandon an in-flight round.
func (p *Proposer) Prepare() Prepare {
	p.leader = false
	p.promisesReceived = make(map[string]struct{})
	p.nacksReceived = make(map[string]struct{})
	p.proposalID = ProposalID{Number: p.highestProposalID.Number + 1, UID: p.NetworkUID}
	p.highestProposalID = p.proposalID
	msg := Prepare{FromUID: p.NetworkUID, ProposalID: p.proposalID}
	p.currentPrepareMsg = &msg
	return msg
}

// ObserveProposal records the highest proposal id ever seen, from
// anywhere. Called on every received Promise and Nack, and may be
// called by the driver on any observed message to short-circuit a
// doomed round before a Prepare would even be attempted.
func (p *Proposer) ObserveProposal(id ProposalID) {
	if id.Greater(p.highestProposalID) {
		p.highestProposalID = id
	}
}

// ReceiveNack folds a Nack into the current round's tally. Once
// QuorumSize distinct acceptors have nacked this round, the round is
// abandoned and a fresh Prepare — numbered past everything observed so
// far — is returned.
func (p *Proposer) ReceiveNack(msg Nack) *Prepare {
	p.ObserveProposal(msg.PromisedProposalID)
	if p.nacksReceived == nil || !msg.ProposalID.Equal(p.proposalID) {
		return nil
	}
	p.nacksReceived[msg.FromUID] = struct{}{}
	if len(p.nacksReceived) == p.QuorumSize {
		prep := p.Prepare()
		return &prep
	}
	return nil
}

// ReceivePromise folds a Promise into the current round's tally. It
// implements the safety-critical adoption rule: if any acceptor reports
// a previously accepted value, this proposer must adopt the value from
// the highest such accepted id among all promises it has seen, rather
// than pushing its own. If the promise closes the quorum and a value is
// already known (the proposer's own, or one adopted from a peer), the
// Accept for Phase 2 is returned immediately; if no value is known yet,
// leadership is still granted but nil is returned — a later
// ProposeValue call supplies the value.
func (p *Proposer) ReceivePromise(msg Promise) *Accept {
	p.ObserveProposal(msg.ProposalID)

	if p.leader || !msg.ProposalID.Equal(p.proposalID) {
		return nil
	}
	if p.promisesReceived == nil {
		return nil
	}
	if _, seen := p.promisesReceived[msg.FromUID]; seen {
		return nil
	}
	p.promisesReceived[msg.FromUID] = struct{}{}

	if msg.LastAccepted != nil {
		if p.highestAcceptedID == nil || msg.LastAccepted.ID.Greater(*p.highestAcceptedID) {
			id := msg.LastAccepted.ID
			p.highestAcceptedID = &id
			p.proposedValue = msg.LastAccepted.Value
			p.hasProposedValue = true
		}
	}

	if len(p.promisesReceived) != p.QuorumSize {
		return nil
	}
	p.leader = true
	if !p.hasProposedValue {
		return nil
	}
	msg2 := Accept{
		FromUID:       p.NetworkUID,
		ProposalID:    p.proposalID,
		ProposalValue: p.proposedValue,
	}
	p.currentAcceptMsg = &msg2
	return &msg2
}
