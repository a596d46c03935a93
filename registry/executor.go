package registry

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/blueoceanlabs/exchange-go/chain"
)

// Execution errors
var (
	ErrNoHandler = errors.New("no handler registered for target")
)

// Executor carries out a proxy's embedded call against a target. The
// caller argument is the proxy's own address, which is the identity the
// target sees.
type Executor interface {
	Execute(caller, target common.Address, how chain.HowToCall, calldata []byte) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(caller, target common.Address, how chain.HowToCall, calldata []byte) error

// Execute calls f.
func (f ExecutorFunc) Execute(caller, target common.Address, how chain.HowToCall, calldata []byte) error {
	return f(caller, target, how, calldata)
}

// Handler services calls addressed to a single target contract.
type Handler func(caller common.Address, calldata []byte) error

// CallRouter dispatches proxy calls to handlers registered per target
// address. Call and DelegateCall both reach the same handler; delegated
// code runs with the proxy's identity either way in this model.
type CallRouter struct {
	mu       sync.RWMutex
	handlers map[common.Address]Handler
}

// NewCallRouter creates an empty router.
func NewCallRouter() *CallRouter {
	return &CallRouter{handlers: make(map[common.Address]Handler)}
}

// Register installs the handler for target, replacing any previous one.
func (r *CallRouter) Register(target common.Address, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[target] = h
}

// Execute routes the call to target's handler.
func (r *CallRouter) Execute(caller, target common.Address, how chain.HowToCall, calldata []byte) error {
	r.mu.RLock()
	h := r.handlers[target]
	r.mu.RUnlock()
	if h == nil {
		return ErrNoHandler
	}
	return h(caller, calldata)
}
