// Package state models the shared mutable state the exchange settles
// against: native currency balances plus ERC-20 and ERC-721 ledgers keyed
// by contract address. All mutations are journaled so a settlement can be
// reverted wholesale when any later step fails.
package state

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// State mutation errors
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrNotTokenOwner         = errors.New("not the token owner")
	ErrNotAuthorizedOperator = errors.New("caller is not owner or approved operator")
	ErrUnknownToken          = errors.New("unknown token id")
	ErrTokenExists           = errors.New("token id already minted")
)

type undo func()

// World owns every balance ledger. Mutations append undo entries to a
// journal; Snapshot and RevertToSnapshot give the settlement engine
// all-or-nothing semantics over an arbitrary run of mutations.
//
// Methods are safe for concurrent use, but snapshot/revert only make sense
// under a single writer; the exchange engine serializes all settlement
// through its own lock.
type World struct {
	mu       sync.RWMutex
	balances map[common.Address]*big.Int
	erc20    map[common.Address]*erc20Ledger
	erc721   map[common.Address]*erc721Ledger
	journal  []undo
}

type erc20Ledger struct {
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
}

type erc721Ledger struct {
	owners    map[string]common.Address // token id (big.Int string) -> owner
	operators map[common.Address]map[common.Address]bool
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		balances: make(map[common.Address]*big.Int),
		erc20:    make(map[common.Address]*erc20Ledger),
		erc721:   make(map[common.Address]*erc721Ledger),
	}
}

// Snapshot marks the current journal position. Reverting to the returned
// id undoes every mutation made after this call.
func (w *World) Snapshot() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.journal)
}

// RevertToSnapshot unwinds the journal back to id.
func (w *World) RevertToSnapshot(id int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := len(w.journal) - 1; i >= id; i-- {
		w.journal[i]()
	}
	w.journal = w.journal[:id]
}

// Commit discards accumulated undo entries. Mutations made so far become
// permanent; earlier snapshot ids are invalidated.
func (w *World) Commit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.journal = w.journal[:0]
}

// BalanceOf returns addr's native currency balance.
func (w *World) BalanceOf(addr common.Address) *big.Int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if b, ok := w.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Mint credits addr with native currency out of thin air. Intended for
// test and genesis setup; journaled like any other mutation.
func (w *World) Mint(addr common.Address, amount *big.Int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.credit(addr, amount)
}

// Transfer moves native currency between accounts.
func (w *World) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return ErrInsufficientBalance
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	bal := w.balances[from]
	if bal == nil || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	w.debit(from, amount)
	w.credit(to, amount)
	return nil
}

// credit and debit assume w.mu is held.
func (w *World) credit(addr common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	prev := w.balances[addr]
	next := new(big.Int).Add(orZero(prev), amount)
	w.balances[addr] = next
	w.journal = append(w.journal, func() {
		if prev == nil {
			delete(w.balances, addr)
		} else {
			w.balances[addr] = prev
		}
	})
}

func (w *World) debit(addr common.Address, amount *big.Int) {
	prev := w.balances[addr]
	next := new(big.Int).Sub(orZero(prev), amount)
	w.balances[addr] = next
	w.journal = append(w.journal, func() {
		if prev == nil {
			delete(w.balances, addr)
		} else {
			w.balances[addr] = prev
		}
	})
}

func (w *World) erc20Ledger(token common.Address) *erc20Ledger {
	l, ok := w.erc20[token]
	if !ok {
		l = &erc20Ledger{
			balances:   make(map[common.Address]*big.Int),
			allowances: make(map[common.Address]map[common.Address]*big.Int),
		}
		w.erc20[token] = l
	}
	return l
}

func (w *World) erc721Ledger(token common.Address) *erc721Ledger {
	l, ok := w.erc721[token]
	if !ok {
		l = &erc721Ledger{
			owners:    make(map[string]common.Address),
			operators: make(map[common.Address]map[common.Address]bool),
		}
		w.erc721[token] = l
	}
	return l
}

func orZero(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return x
}
