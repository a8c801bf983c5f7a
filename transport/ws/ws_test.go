package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paxoscore/quorum/paxos"
)

func TestEndpointRoundTripsOverWebsocket(t *testing.T) {
	b := NewEndpoint("B")
	server := httptest.NewServer(b)
	defer server.Close()

	a := NewEndpoint("A")
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	require.NoError(t, a.Dial("B", url))

	msg := paxos.Accept{FromUID: "A", ProposalID: paxos.ProposalID{Number: 1, UID: "A"}, ProposalValue: "v"}

	require.Eventually(t, func() bool {
		return a.Send("B", msg) == nil
	}, time.Second, 10*time.Millisecond)

	got, err := b.ReceiveTimeout(2 * time.Second)
	require.NoError(t, err)
	assertAccept(t, msg, got)
}

func assertAccept(t *testing.T, want paxos.Accept, got paxos.Message) {
	t.Helper()
	accept, ok := got.(paxos.Accept)
	require.True(t, ok, "expected paxos.Accept, got %T", got)
	require.Equal(t, want.FromUID, accept.FromUID)
	require.Equal(t, want.ProposalID, accept.ProposalID)
	require.Equal(t, want.ProposalValue, accept.ProposalValue)
}

func TestEncodeDecodeRoundTripsEveryVariant(t *testing.T) {
	accepted := paxos.AcceptedProposal{ID: paxos.ProposalID{Number: 2, UID: "X"}, Value: "v"}
	msgs := []paxos.Message{
		paxos.Prepare{FromUID: "A", ProposalID: paxos.ProposalID{Number: 1, UID: "A"}},
		paxos.Promise{FromUID: "B", ProposerUID: "A", ProposalID: paxos.ProposalID{Number: 1, UID: "A"}, LastAccepted: &accepted},
		paxos.Nack{FromUID: "B", ProposerUID: "A", ProposalID: paxos.ProposalID{Number: 1, UID: "A"}, PromisedProposalID: paxos.ProposalID{Number: 2, UID: "X"}},
		paxos.Accept{FromUID: "A", ProposalID: paxos.ProposalID{Number: 1, UID: "A"}, ProposalValue: "v"},
		paxos.Accepted{FromUID: "B", ProposalID: paxos.ProposalID{Number: 1, UID: "A"}, ProposalValue: "v"},
		paxos.Resolution{FromUID: "B", Value: "v"},
	}
	for _, m := range msgs {
		data, err := encode(m)
		require.NoError(t, err)
		got, err := decode(data)
		require.NoError(t, err)
		require.IsType(t, m, got)
	}
}
