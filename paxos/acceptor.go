package paxos

// Acceptor is the durable memory of Paxos. It answers Prepare and Accept
// requests with Promise/Accepted or Nack according to the two rules that
// make the protocol safe:
//
//  1. Once it promises a proposal number, it never accepts (or
//     re-promises below) anything numbered lower.
//  2. It only accepts a value at a number it has not promised past.
//
// Acceptor never touches storage itself. The caller owns the "persist,
// then reply" discipline: GetState returns the triple that must reach
// stable media before the Promise or Accepted this call produced is
// handed to a peer.
type Acceptor struct {
	NetworkUID string

	promisedID *ProposalID
	accepted   *AcceptedProposal
}

// NewAcceptor constructs an Acceptor, optionally rehydrated from durable
// storage on restart. promisedID and accepted may each be nil.
func NewAcceptor(networkUID string, promisedID *ProposalID, accepted *AcceptedProposal) *Acceptor {
	return &Acceptor{
		NetworkUID: networkUID,
		promisedID: promisedID,
		accepted:   accepted,
	}
}

// ReceivePrepare answers a Prepare. An absent promisedID is treated as
// -infinity, so the very first Prepare an acceptor ever sees is always
// promised.
func (a *Acceptor) ReceivePrepare(msg Prepare) Message {
	if a.promisedID == nil || msg.ProposalID.GreaterOrEqual(*a.promisedID) {
		id := msg.ProposalID
		a.promisedID = &id
		return Promise{
			FromUID:      a.NetworkUID,
			ProposerUID:  msg.FromUID,
			ProposalID:   id,
			LastAccepted: a.accepted,
		}
	}
	return Nack{
		FromUID:            a.NetworkUID,
		ProposerUID:        msg.FromUID,
		ProposalID:         msg.ProposalID,
		PromisedProposalID: *a.promisedID,
	}
}

// ReceiveAccept answers an Accept. The >= (not >) is deliberate: an
// acceptor must accept a proposal numbered exactly what it promised,
// otherwise the promise it just made would be pointless.
func (a *Acceptor) ReceiveAccept(msg Accept) Message {
	if a.promisedID == nil || msg.ProposalID.GreaterOrEqual(*a.promisedID) {
		id := msg.ProposalID
		a.promisedID = &id
		a.accepted = &AcceptedProposal{ID: id, Value: msg.ProposalValue}
		return Accepted{
			FromUID:       a.NetworkUID,
			ProposalID:    id,
			ProposalValue: msg.ProposalValue,
		}
	}
	return Nack{
		FromUID:            a.NetworkUID,
		ProposerUID:        msg.FromUID,
		ProposalID:         msg.ProposalID,
		PromisedProposalID: *a.promisedID,
	}
}

// GetState returns the current durable triple: the promised id and the
// last accepted (id, value) pair, either of which may be nil. Callers
// persist this before releasing the Promise/Accepted this call's
// ReceivePrepare/ReceiveAccept produced.
func (a *Acceptor) GetState() (promisedID *ProposalID, accepted *AcceptedProposal) {
	return a.promisedID, a.accepted
}
