package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/blueoceanlabs/exchange-go/chain"
)

// Proxy errors
var (
	ErrNotProxyUser  = errors.New("caller is not the proxy user")
	ErrNotAuthorized = errors.New("caller may not direct this proxy")
)

// AuthenticatedProxy is a user's capability for maker-authorized call
// execution. The user may always direct it; a registry-authorized exchange
// contract may direct it only while the user has not revoked access.
type AuthenticatedProxy struct {
	mu       sync.RWMutex
	address  common.Address
	user     common.Address
	registry *ProxyRegistry
	executor Executor
	revoked  bool
}

// Address returns the proxy's own address, the identity targets see.
func (p *AuthenticatedProxy) Address() common.Address {
	return p.address
}

// User returns the proxy owner.
func (p *AuthenticatedProxy) User() common.Address {
	return p.user
}

// Revoked reports whether the user has cut off registry-authorized access.
func (p *AuthenticatedProxy) Revoked() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.revoked
}

// SetRevoke toggles registry-authorized access. Only the user may call it;
// the user's own access is unaffected.
func (p *AuthenticatedProxy) SetRevoke(caller common.Address, revoke bool) error {
	if caller != p.user {
		return ErrNotProxyUser
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked = revoke
	return nil
}

// Proxy executes calldata against dest on the user's behalf. The caller
// must be the user, or a currently registry-authorized contract while the
// proxy is not revoked. Authorization is checked live on every call.
func (p *AuthenticatedProxy) Proxy(caller, dest common.Address, how chain.HowToCall, calldata []byte) error {
	if !p.authorized(caller) {
		return ErrNotAuthorized
	}
	if err := p.executor.Execute(p.address, dest, how, calldata); err != nil {
		return fmt.Errorf("proxy call to %s failed: %w", dest.Hex(), err)
	}
	return nil
}

func (p *AuthenticatedProxy) authorized(caller common.Address) bool {
	if caller == p.user {
		return true
	}
	p.mu.RLock()
	revoked := p.revoked
	p.mu.RUnlock()
	return !revoked && p.registry.AuthorizedContract(caller)
}
