package paxos

import (
	"errors"
	"fmt"
)

// ErrInvalidMessageKind is returned by Instance.Receive when a message
// variant is delivered to a role that does not handle it. Per the error
// taxonomy this is a programmer error, never retried or recovered
// locally — the driver is expected to surface it.
var ErrInvalidMessageKind = errors.New("paxos: invalid message kind for this receiver")

// SafetyViolationError is raised when a Learner observes two Accepted
// messages for the same ProposalID carrying different values. That can
// only happen if some Acceptor broke its promise or a peer is buggy; it
// is not a recoverable domain outcome, so Learner.ReceiveAccepted panics
// with this type rather than returning an error. Callers must not catch
// and resume from it.
type SafetyViolationError struct {
	ProposalID ProposalID
	Existing   Value
	Received   Value
}

func (e *SafetyViolationError) Error() string {
	return fmt.Sprintf("paxos: safety violation: proposal %s already has value %#v, received conflicting value %#v", e.ProposalID, e.Existing, e.Received)
}
