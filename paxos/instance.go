package paxos

import "fmt"

// Instance composes one Proposer, one Acceptor and one Learner sharing
// a network uid and quorum size — the single-node aggregate a driver
// actually talks to for one decree. Co-location lets it feed every
// observed proposal id to the Proposer without an extra network hop:
// ReceivePrepare and ReceiveAccept call Proposer.ObserveProposal before
// delegating to the Acceptor.
type Instance struct {
	NetworkUID string
	QuorumSize int

	Proposer *Proposer
	Acceptor *Acceptor
	Learner  *Learner
}

// NewInstance constructs the three co-located roles for one decree.
// promisedID and accepted rehydrate the Acceptor from durable storage on
// restart; both may be nil for a fresh decree.
func NewInstance(networkUID string, quorumSize int, promisedID *ProposalID, accepted *AcceptedProposal) *Instance {
	return &Instance{
		NetworkUID: networkUID,
		QuorumSize: quorumSize,
		Proposer:   NewProposer(networkUID, quorumSize),
		Acceptor:   NewAcceptor(networkUID, promisedID, accepted),
		Learner:    NewLearner(networkUID, quorumSize),
	}
}

// ReceivePrepare routes a Prepare to the Acceptor, first feeding its
// proposal id to the co-located Proposer.
func (i *Instance) ReceivePrepare(msg Prepare) Message {
	i.Proposer.ObserveProposal(msg.ProposalID)
	return i.Acceptor.ReceivePrepare(msg)
}

// ReceiveAccept routes an Accept to the Acceptor, first feeding its
// proposal id to the co-located Proposer.
func (i *Instance) ReceiveAccept(msg Accept) Message {
	i.Proposer.ObserveProposal(msg.ProposalID)
	return i.Acceptor.ReceiveAccept(msg)
}

// Receive dispatches an inbound message to the role that owns it and
// returns the (optional) outbound message for the driver to transmit.
// A message variant no role here accepts as input — Resolution is
// output-only — is a taxonomy error: ErrInvalidMessageKind.
func (i *Instance) Receive(msg Message) (Message, error) {
	switch m := msg.(type) {
	case Prepare:
		return i.ReceivePrepare(m), nil
	case Accept:
		return i.ReceiveAccept(m), nil
	case Promise:
		if accept := i.Proposer.ReceivePromise(m); accept != nil {
			return *accept, nil
		}
		return nil, nil
	case Nack:
		if prep := i.Proposer.ReceiveNack(m); prep != nil {
			return *prep, nil
		}
		return nil, nil
	case Accepted:
		if res := i.Learner.ReceiveAccepted(m); res != nil {
			return *res, nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidMessageKind, msg)
	}
}
