package paxos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLearnerResolvesOnQuorum(t *testing.T) {
	l := NewLearner("L", 2)
	pid := ProposalID{Number: 1, UID: "X"}

	res := l.ReceiveAccepted(Accepted{FromUID: "A", ProposalID: pid, ProposalValue: "v"})
	assert.Nil(t, res)

	res = l.ReceiveAccepted(Accepted{FromUID: "B", ProposalID: pid, ProposalValue: "v"})
	require.NotNil(t, res)
	assert.Equal(t, "v", res.Value)
}

func TestLearnerDuplicateAcceptedIsNoOp(t *testing.T) {
	l := NewLearner("L", 2)
	pid := ProposalID{Number: 1, UID: "X"}

	l.ReceiveAccepted(Accepted{FromUID: "A", ProposalID: pid, ProposalValue: "v"})
	res := l.ReceiveAccepted(Accepted{FromUID: "A", ProposalID: pid, ProposalValue: "v"})
	assert.Nil(t, res, "second delivery from the same acceptor for the same id must not advance the tally")

	_, _, ok := l.GetResolution()
	assert.False(t, ok)
}

func TestLearnerLateAcceptedAfterResolutionGrowsAcceptors(t *testing.T) {
	l := NewLearner("L", 2)
	pid := ProposalID{Number: 1, UID: "X"}

	l.ReceiveAccepted(Accepted{FromUID: "A", ProposalID: pid, ProposalValue: "v"})
	res := l.ReceiveAccepted(Accepted{FromUID: "B", ProposalID: pid, ProposalValue: "v"})
	require.NotNil(t, res)

	res = l.ReceiveAccepted(Accepted{FromUID: "C", ProposalID: pid, ProposalValue: "v"})
	require.NotNil(t, res)
	assert.Equal(t, "v", res.Value)

	_, acceptors, ok := l.GetResolution()
	require.True(t, ok)
	assert.Contains(t, acceptors, "A")
	assert.Contains(t, acceptors, "B")
	assert.Contains(t, acceptors, "C")
}

func TestLearnerPostResolutionMismatchedValueIgnored(t *testing.T) {
	l := NewLearner("L", 2)
	pid := ProposalID{Number: 1, UID: "X"}
	l.ReceiveAccepted(Accepted{FromUID: "A", ProposalID: pid, ProposalValue: "v"})
	l.ReceiveAccepted(Accepted{FromUID: "B", ProposalID: pid, ProposalValue: "v"})

	res := l.ReceiveAccepted(Accepted{FromUID: "C", ProposalID: pid, ProposalValue: "other"})
	require.NotNil(t, res)
	assert.Equal(t, "v", res.Value)

	_, acceptors, _ := l.GetResolution()
	assert.NotContains(t, acceptors, "C")
}

func TestLearnerStaleAcceptedDropped(t *testing.T) {
	l := NewLearner("L", 3)
	low := ProposalID{Number: 1, UID: "X"}
	high := ProposalID{Number: 2, UID: "X"}

	l.ReceiveAccepted(Accepted{FromUID: "A", ProposalID: high, ProposalValue: "v2"})
	res := l.ReceiveAccepted(Accepted{FromUID: "A", ProposalID: low, ProposalValue: "v1"})
	assert.Nil(t, res)
}

func TestLearnerMovingVoteRetiresPriorProposal(t *testing.T) {
	l := NewLearner("L", 2)
	p1 := ProposalID{Number: 1, UID: "X"}
	p2 := ProposalID{Number: 2, UID: "X"}

	l.ReceiveAccepted(Accepted{FromUID: "A", ProposalID: p1, ProposalValue: "v1"})
	l.ReceiveAccepted(Accepted{FromUID: "A", ProposalID: p2, ProposalValue: "v2"})

	// A's vote moved to p2, p1 should have been garbage collected since
	// its retain count dropped to zero.
	_, exists := l.proposals[p1]
	assert.False(t, exists)
}

func TestLearnerValueMismatchPanics(t *testing.T) {
	l := NewLearner("L", 3)
	pid := ProposalID{Number: 1, UID: "X"}
	l.ReceiveAccepted(Accepted{FromUID: "A", ProposalID: pid, ProposalValue: "v"})

	assert.Panics(t, func() {
		l.ReceiveAccepted(Accepted{FromUID: "B", ProposalID: pid, ProposalValue: "different"})
	})
}
