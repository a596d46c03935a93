package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Token is a handle to an ERC-20 ledger inside a World. Callers are
// identified explicitly; there is no ambient transaction sender.
type Token struct {
	world   *World
	address common.Address
}

// Token returns the ERC-20 handle for the contract at addr, creating an
// empty ledger on first use.
func (w *World) Token(addr common.Address) *Token {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.erc20Ledger(addr)
	return &Token{world: w, address: addr}
}

// Address returns the token contract address.
func (t *Token) Address() common.Address {
	return t.address
}

// Mint credits to with freshly issued tokens.
func (t *Token) Mint(to common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	w := t.world
	w.mu.Lock()
	defer w.mu.Unlock()
	l := w.erc20Ledger(t.address)
	w.setTokenBalance(l, to, new(big.Int).Add(orZero(l.balances[to]), amount))
}

// BalanceOf returns owner's token balance.
func (t *Token) BalanceOf(owner common.Address) *big.Int {
	w := t.world
	w.mu.RLock()
	defer w.mu.RUnlock()
	if b := w.erc20Ledger(t.address).balances[owner]; b != nil {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Allowance returns how much spender may move out of owner's balance.
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	w := t.world
	w.mu.RLock()
	defer w.mu.RUnlock()
	if a := w.erc20Ledger(t.address).allowances[owner][spender]; a != nil {
		return new(big.Int).Set(a)
	}
	return new(big.Int)
}

// Approve sets spender's allowance over owner's balance.
func (t *Token) Approve(owner, spender common.Address, amount *big.Int) {
	w := t.world
	w.mu.Lock()
	defer w.mu.Unlock()
	l := w.erc20Ledger(t.address)
	w.setAllowance(l, owner, spender, new(big.Int).Set(orZero(amount)))
}

// Transfer moves tokens from from's own balance.
func (t *Token) Transfer(from, to common.Address, amount *big.Int) error {
	w := t.world
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.moveTokens(w.erc20Ledger(t.address), from, to, amount)
}

// TransferFrom moves tokens on behalf of from, consuming spender's
// allowance. A spender equal to from bypasses the allowance check.
func (t *Token) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	w := t.world
	w.mu.Lock()
	defer w.mu.Unlock()
	l := w.erc20Ledger(t.address)
	if spender != from {
		allowance := l.allowances[from][spender]
		if allowance == nil || allowance.Cmp(amount) < 0 {
			return ErrInsufficientAllowance
		}
		w.setAllowance(l, from, spender, new(big.Int).Sub(allowance, amount))
	}
	return w.moveTokens(l, from, to, amount)
}

// moveTokens assumes w.mu is held.
func (w *World) moveTokens(l *erc20Ledger, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return ErrInsufficientBalance
	}
	bal := l.balances[from]
	if bal == nil || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	w.setTokenBalance(l, from, new(big.Int).Sub(bal, amount))
	w.setTokenBalance(l, to, new(big.Int).Add(orZero(l.balances[to]), amount))
	return nil
}

func (w *World) setTokenBalance(l *erc20Ledger, addr common.Address, next *big.Int) {
	prev := l.balances[addr]
	l.balances[addr] = next
	w.journal = append(w.journal, func() {
		if prev == nil {
			delete(l.balances, addr)
		} else {
			l.balances[addr] = prev
		}
	})
}

func (w *World) setAllowance(l *erc20Ledger, owner, spender common.Address, next *big.Int) {
	owned, ok := l.allowances[owner]
	if !ok {
		owned = make(map[common.Address]*big.Int)
		l.allowances[owner] = owned
	}
	prev := owned[spender]
	owned[spender] = next
	w.journal = append(w.journal, func() {
		if prev == nil {
			delete(owned, spender)
		} else {
			owned[spender] = prev
		}
	})
}
