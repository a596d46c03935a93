package blueocean

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// OrderState is the per-hash bookkeeping record. Approved is set by the
// maker ahead of time so the order needs no signature; Finalized is the
// permanent filled-or-cancelled flag that makes a hash unfillable forever.
type OrderState struct {
	Approved  bool
	Finalized bool
}

// OrderStore persists order state keyed by the hash-to-sign digest. The
// zero OrderState must be returned for hashes never written.
type OrderStore interface {
	Get(hash common.Hash) (OrderState, error)
	Set(hash common.Hash, state OrderState) error
}

// MemoryOrderStore is the in-process OrderStore. Relayers that must
// survive restarts should use the badger-backed store instead.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	states map[common.Hash]OrderState
}

// NewMemoryOrderStore creates an empty in-memory store.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{states: make(map[common.Hash]OrderState)}
}

// Get returns the state recorded for hash.
func (s *MemoryOrderStore) Get(hash common.Hash) (OrderState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[hash], nil
}

// Set records state for hash.
func (s *MemoryOrderStore) Set(hash common.Hash, state OrderState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[hash] = state
	return nil
}
