// Package store provides a persistent order state store backed by
// BadgerDB. It mirrors the in-memory store's semantics: unknown hashes
// read as the zero state.
package store

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/ethereum/go-ethereum/common"

	blueocean "github.com/blueoceanlabs/exchange-go"
)

const (
	flagApproved  = 1 << 0
	flagFinalized = 1 << 1
)

// BadgerOrderStore persists order states keyed by signable hash.
type BadgerOrderStore struct {
	db *badger.DB
}

// OpenBadgerOrderStore opens (or creates) a store at the given path.
func OpenBadgerOrderStore(path string) (*BadgerOrderStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open order store: %w", err)
	}
	return &BadgerOrderStore{db: db}, nil
}

// Get returns the stored state for hash, or the zero state when the
// hash has never been written.
func (s *BadgerOrderStore) Get(hash common.Hash) (blueocean.OrderState, error) {
	var state blueocean.OrderState
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(hash[:])
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 1 {
				return fmt.Errorf("corrupt order state for %s", hash.Hex())
			}
			state.Approved = val[0]&flagApproved != 0
			state.Finalized = val[0]&flagFinalized != 0
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return blueocean.OrderState{}, nil
	}
	if err != nil {
		return blueocean.OrderState{}, err
	}
	return state, nil
}

// Set writes the state for hash.
func (s *BadgerOrderStore) Set(hash common.Hash, state blueocean.OrderState) error {
	var b byte
	if state.Approved {
		b |= flagApproved
	}
	if state.Finalized {
		b |= flagFinalized
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(hash[:], []byte{b})
	})
}

// Close releases the underlying database.
func (s *BadgerOrderStore) Close() error {
	return s.db.Close()
}
