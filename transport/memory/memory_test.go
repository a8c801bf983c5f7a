package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paxoscore/quorum/paxos"
	"github.com/paxoscore/quorum/transport"
)

func TestEndpointSendAndReceive(t *testing.T) {
	hub := NewHub()
	a := hub.Register("A")
	b := hub.Register("B")

	msg := paxos.Prepare{FromUID: "A", ProposalID: paxos.ProposalID{Number: 1, UID: "A"}}
	require.NoError(t, a.Send("B", msg))

	got, err := b.ReceiveTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestEndpointBroadcastSkipsSelf(t *testing.T) {
	hub := NewHub()
	a := hub.Register("A")
	b := hub.Register("B")
	c := hub.Register("C")

	msg := paxos.Prepare{FromUID: "A", ProposalID: paxos.ProposalID{Number: 1, UID: "A"}}
	require.NoError(t, a.Broadcast(msg))

	_, err := a.ReceiveTimeout(10 * time.Millisecond)
	assert.ErrorIs(t, err, transport.ErrTimeout)

	gotB, err := b.ReceiveTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, msg, gotB)

	gotC, err := c.ReceiveTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, msg, gotC)
}

func TestEndpointReceiveTimeout(t *testing.T) {
	hub := NewHub()
	a := hub.Register("A")

	_, err := a.ReceiveTimeout(10 * time.Millisecond)
	assert.ErrorIs(t, err, transport.ErrTimeout)
}

func TestEndpointCloseUnblocksReceive(t *testing.T) {
	hub := NewHub()
	a := hub.Register("A")

	require.NoError(t, a.Close())
	_, err := a.Receive()
	assert.ErrorIs(t, err, transport.ErrClosed)
	assert.NoError(t, a.Close())
}
