// Package registry provides the authorization collaborators of the
// exchange: per-user authenticated proxies that execute maker-approved
// calls, the registry that says which exchange contracts may direct those
// proxies, and the transfer proxy that gates ERC-20 movements on the same
// authorization table.
package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
)

// Registry errors
var (
	ErrNotOwner            = errors.New("caller is not the registry owner")
	ErrInitialAuthSet      = errors.New("initial authentication already granted")
	ErrAlreadyAuthorized   = errors.New("address already authorized")
	ErrGrantPending        = errors.New("authentication grant already pending")
	ErrGrantNotPending     = errors.New("no pending authentication grant")
	ErrGrantDelayNotPassed = errors.New("authentication delay period has not passed")
	ErrProxyExists         = errors.New("caller already has a proxy")
)

// DelayPeriod is how long a new authentication grant must sit in the
// pending state before it can be finalized, giving users time to revoke
// their proxies if the registry owner turns hostile.
const DelayPeriod = 14 * 24 * time.Hour

// ProxyRegistry owns the per-user proxies and the table of exchange
// contracts authorized to direct them. One initial contract is granted
// access without delay; every later grant waits out DelayPeriod.
type ProxyRegistry struct {
	mu                sync.RWMutex
	address           common.Address
	owner             common.Address
	executor          Executor
	contracts         map[common.Address]bool
	pending           map[common.Address]time.Time
	proxies           map[common.Address]*AuthenticatedProxy
	proxyNonce        uint64
	initialAddressSet bool
	delay             time.Duration
	now               func() time.Time
	log               logrus.FieldLogger
}

// RegistryOption customizes a ProxyRegistry.
type RegistryOption func(*ProxyRegistry)

// WithClock overrides the registry's time source. Used in tests to step
// past the grant delay.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *ProxyRegistry) { r.now = now }
}

// WithDelay overrides the authentication grant delay.
func WithDelay(d time.Duration) RegistryOption {
	return func(r *ProxyRegistry) { r.delay = d }
}

// WithLogger sets the registry logger.
func WithLogger(log logrus.FieldLogger) RegistryOption {
	return func(r *ProxyRegistry) { r.log = log }
}

// NewProxyRegistry creates a registry at address, owned by owner. Proxies
// created through RegisterProxy dispatch their calls to executor.
func NewProxyRegistry(address, owner common.Address, executor Executor, opts ...RegistryOption) *ProxyRegistry {
	r := &ProxyRegistry{
		address:   address,
		owner:     owner,
		executor:  executor,
		contracts: make(map[common.Address]bool),
		pending:   make(map[common.Address]time.Time),
		proxies:   make(map[common.Address]*AuthenticatedProxy),
		delay:     DelayPeriod,
		now:       time.Now,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Address returns the registry's own address.
func (r *ProxyRegistry) Address() common.Address {
	return r.address
}

// Owner returns the registry owner.
func (r *ProxyRegistry) Owner() common.Address {
	return r.owner
}

// GrantInitialAuthentication authorizes the first exchange contract
// without the delay period. Callable once, by the owner.
func (r *ProxyRegistry) GrantInitialAuthentication(caller, authAddress common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.owner {
		return ErrNotOwner
	}
	if r.initialAddressSet {
		return ErrInitialAuthSet
	}
	r.initialAddressSet = true
	r.contracts[authAddress] = true
	r.log.WithField("contract", authAddress.Hex()).Info("initial authentication granted")
	return nil
}

// StartGrantAuthentication begins the delayed authorization of addr.
func (r *ProxyRegistry) StartGrantAuthentication(caller, addr common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.owner {
		return ErrNotOwner
	}
	if r.contracts[addr] {
		return ErrAlreadyAuthorized
	}
	if _, ok := r.pending[addr]; ok {
		return ErrGrantPending
	}
	r.pending[addr] = r.now()
	return nil
}

// PendingSince returns when the grant for addr was started, or the zero
// time when none is pending.
func (r *ProxyRegistry) PendingSince(addr common.Address) time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pending[addr]
}

// EndGrantAuthentication finalizes a pending grant after the delay period.
func (r *ProxyRegistry) EndGrantAuthentication(caller, addr common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.owner {
		return ErrNotOwner
	}
	started, ok := r.pending[addr]
	if !ok || r.contracts[addr] {
		return ErrGrantNotPending
	}
	if r.now().Before(started.Add(r.delay)) {
		return ErrGrantDelayNotPassed
	}
	delete(r.pending, addr)
	r.contracts[addr] = true
	r.log.WithField("contract", addr.Hex()).Info("authentication granted")
	return nil
}

// RevokeAuthentication removes addr from the authorization table.
func (r *ProxyRegistry) RevokeAuthentication(caller, addr common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.owner {
		return ErrNotOwner
	}
	delete(r.contracts, addr)
	r.log.WithField("contract", addr.Hex()).Info("authentication revoked")
	return nil
}

// AuthorizedContract reports whether addr may currently direct proxies and
// token transfers.
func (r *ProxyRegistry) AuthorizedContract(addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contracts[addr]
}

// RegisterProxy creates the caller's authenticated proxy. Each user gets
// exactly one; a second registration fails.
func (r *ProxyRegistry) RegisterProxy(caller common.Address) (*AuthenticatedProxy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.proxies[caller]; ok {
		return nil, ErrProxyExists
	}
	r.proxyNonce++
	proxy := &AuthenticatedProxy{
		address:  crypto.CreateAddress(r.address, r.proxyNonce),
		user:     caller,
		registry: r,
		executor: r.executor,
	}
	r.proxies[caller] = proxy
	r.log.WithFields(logrus.Fields{
		"user":  caller.Hex(),
		"proxy": proxy.address.Hex(),
	}).Info("proxy registered")
	return proxy, nil
}

// Proxy returns user's proxy, or nil when none is registered.
func (r *ProxyRegistry) Proxy(user common.Address) *AuthenticatedProxy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.proxies[user]
}
