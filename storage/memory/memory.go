// Package memory is an in-memory AcceptorStore, useful for tests and the
// demo harness. It satisfies the interface's durability contract only in
// the trivial sense that writes are visible to later reads within the
// same process — a real deployment needs a disk-backed implementation.
package memory

import (
	"sync"

	"github.com/paxoscore/quorum/paxos"
	"github.com/paxoscore/quorum/storage"
)

type Store struct {
	mu       sync.RWMutex
	promised *paxos.ProposalID
	accepted *paxos.AcceptedProposal
	closed   bool
}

var _ storage.AcceptorStore = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) SavePromised(id paxos.ProposalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promised = &id
	return nil
}

func (s *Store) SaveAccepted(accepted paxos.AcceptedProposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepted = &accepted
	return nil
}

func (s *Store) Load() (*paxos.ProposalID, *paxos.AcceptedProposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.promised, s.accepted, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
