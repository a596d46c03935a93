package registry

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Transfer proxy errors
var (
	ErrUnauthenticatedCaller = errors.New("caller is not an authenticated exchange contract")
)

// ERC20 is the transfer surface the exchange consumes. state.Token
// satisfies it; embedders may supply their own ledger.
type ERC20 interface {
	Address() common.Address
	TransferFrom(spender, from, to common.Address, amount *big.Int) error
}

// TokenTransferProxy moves ERC-20 tokens on behalf of exchange contracts.
// Users grant their allowance to the transfer proxy once; which exchange
// contracts may spend it is decided live by the registry's authorization
// table.
type TokenTransferProxy struct {
	address  common.Address
	registry *ProxyRegistry
}

// NewTokenTransferProxy creates a transfer proxy at address checking
// callers against registry.
func NewTokenTransferProxy(address common.Address, registry *ProxyRegistry) *TokenTransferProxy {
	return &TokenTransferProxy{address: address, registry: registry}
}

// Address returns the transfer proxy address users approve as spender.
func (t *TokenTransferProxy) Address() common.Address {
	return t.address
}

// TransferFrom moves amount of token from from to to. The caller must be
// a currently authenticated exchange contract.
func (t *TokenTransferProxy) TransferFrom(caller common.Address, token ERC20, from, to common.Address, amount *big.Int) error {
	if !t.registry.AuthorizedContract(caller) {
		return ErrUnauthenticatedCaller
	}
	return token.TransferFrom(t.address, from, to, amount)
}
