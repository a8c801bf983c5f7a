package node

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	memstore "github.com/paxoscore/quorum/storage/memory"
	memtransport "github.com/paxoscore/quorum/transport/memory"
)

type ClusterSuite struct {
	suite.Suite
	hub   *memtransport.Hub
	nodes []*Node
}

const quorumSize = 2

func (s *ClusterSuite) SetupTest() {
	s.hub = memtransport.NewHub()
	s.nodes = nil
	for _, uid := range []string{"A", "B", "C"} {
		n, err := New(uid, quorumSize, s.hub.Register(uid), memstore.New())
		s.Require().NoError(err)
		s.Require().NoError(n.Start())
		s.nodes = append(s.nodes, n)
	}
}

func (s *ClusterSuite) TearDownTest() {
	for _, n := range s.nodes {
		s.Require().NoError(n.Stop())
	}
}

func (s *ClusterSuite) TestSingleProposerReachesConsensus() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	v, err := s.nodes[0].Propose(ctx, "first")
	s.Require().NoError(err)
	s.Equal("first", v)

	require.Eventually(s.T(), func() bool {
		for _, n := range s.nodes {
			if _, ok := n.GetResolution(); !ok {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)

	for _, n := range s.nodes {
		got, ok := n.GetResolution()
		s.True(ok)
		s.Equal("first", got)
	}
}

func (s *ClusterSuite) TestCompetingProposersConvergeOnOneValue() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results := make(chan interface{}, 2)
	go func() {
		v, err := s.nodes[0].Propose(ctx, "from-A")
		s.Require().NoError(err)
		results <- v
	}()
	go func() {
		v, err := s.nodes[1].Propose(ctx, "from-B")
		s.Require().NoError(err)
		results <- v
	}()

	first := <-results
	second := <-results
	s.Equal(first, second)
}

func TestClusterSuite(t *testing.T) {
	suite.Run(t, new(ClusterSuite))
}
