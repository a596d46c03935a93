package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NFT is a handle to an ERC-721 ledger inside a World.
type NFT struct {
	world   *World
	address common.Address
}

// NFT returns the ERC-721 handle for the contract at addr.
func (w *World) NFT(addr common.Address) *NFT {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.erc721Ledger(addr)
	return &NFT{world: w, address: addr}
}

// Address returns the collection contract address.
func (n *NFT) Address() common.Address {
	return n.address
}

// Mint assigns a fresh token id to owner.
func (n *NFT) Mint(owner common.Address, tokenID *big.Int) error {
	w := n.world
	w.mu.Lock()
	defer w.mu.Unlock()
	l := w.erc721Ledger(n.address)
	key := tokenID.String()
	if _, ok := l.owners[key]; ok {
		return ErrTokenExists
	}
	l.owners[key] = owner
	w.journal = append(w.journal, func() { delete(l.owners, key) })
	return nil
}

// OwnerOf returns the current owner of tokenID.
func (n *NFT) OwnerOf(tokenID *big.Int) (common.Address, error) {
	w := n.world
	w.mu.RLock()
	defer w.mu.RUnlock()
	owner, ok := w.erc721Ledger(n.address).owners[tokenID.String()]
	if !ok {
		return common.Address{}, ErrUnknownToken
	}
	return owner, nil
}

// SetApprovalForAll grants or revokes operator's right to move any of
// owner's tokens in this collection.
func (n *NFT) SetApprovalForAll(owner, operator common.Address, approved bool) {
	w := n.world
	w.mu.Lock()
	defer w.mu.Unlock()
	l := w.erc721Ledger(n.address)
	ops, ok := l.operators[owner]
	if !ok {
		ops = make(map[common.Address]bool)
		l.operators[owner] = ops
	}
	prev, had := ops[operator]
	ops[operator] = approved
	w.journal = append(w.journal, func() {
		if had {
			ops[operator] = prev
		} else {
			delete(ops, operator)
		}
	})
}

// IsApprovedForAll reports whether operator may move owner's tokens.
func (n *NFT) IsApprovedForAll(owner, operator common.Address) bool {
	w := n.world
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.erc721Ledger(n.address).operators[owner][operator]
}

// TransferFrom moves tokenID from from to to. The caller must be the
// owner or an approved operator, and from must be the current owner.
func (n *NFT) TransferFrom(caller, from, to common.Address, tokenID *big.Int) error {
	w := n.world
	w.mu.Lock()
	defer w.mu.Unlock()
	l := w.erc721Ledger(n.address)
	key := tokenID.String()
	owner, ok := l.owners[key]
	if !ok {
		return ErrUnknownToken
	}
	if owner != from {
		return ErrNotTokenOwner
	}
	if caller != owner && !l.operators[owner][caller] {
		return ErrNotAuthorizedOperator
	}
	l.owners[key] = to
	w.journal = append(w.journal, func() { l.owners[key] = owner })
	return nil
}
