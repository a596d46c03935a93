package blueocean

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/blueoceanlabs/exchange-go/chain"
	"github.com/blueoceanlabs/exchange-go/registry"
)

// Precondition evaluates an order's static read-only check. chain.StaticCaller
// implements it over RPC; tests supply their own.
type Precondition interface {
	Check(target common.Address, calldata, extradata []byte) bool
}

// TokenResolver maps a payment token address to its transfer surface.
// Returning nil means the token is unknown and settlement fails.
type TokenResolver func(addr common.Address) registry.ERC20

// NativeLedger is the native-currency surface the engine settles ether
// payments against. state.World satisfies it.
type NativeLedger interface {
	Transfer(from, to common.Address, amount *big.Int) error
	Snapshot() int
	RevertToSnapshot(id int)
	Commit()
}

// Params configures a new Exchange.
type Params struct {
	// Address is the exchange's own identity; orders must bind to it.
	Address common.Address
	// Owner may change fee configuration.
	Owner common.Address
	// ProtocolFeeRecipient receives protocol fees under the separate
	// fee method.
	ProtocolFeeRecipient common.Address
	// MinimumMakerProtocolFee and MinimumTakerProtocolFee are the
	// global protocol fee floors in basis points; nil means zero.
	MinimumMakerProtocolFee *big.Int
	MinimumTakerProtocolFee *big.Int
	// Registry authorizes proxies and the transfer proxy.
	Registry *registry.ProxyRegistry
	// TransferProxy moves ERC-20 payments.
	TransferProxy *registry.TokenTransferProxy
	// Ledger settles native currency payments.
	Ledger NativeLedger
	// Tokens resolves payment token addresses.
	Tokens TokenResolver
	// Orders persists approval and fill state; defaults to an
	// in-memory store.
	Orders OrderStore
	// Static evaluates static preconditions; nil fails closed for
	// orders that declare one.
	Static Precondition
	// Notifier receives lifecycle events; nil disables notification.
	Notifier Notifier
	// Logger defaults to the logrus standard logger.
	Logger logrus.FieldLogger
	// Now overrides the clock; defaults to time.Now.
	Now func() time.Time
}

// Exchange is the settlement engine. Every state-mutating entry point is
// serialized under one lock, which supplies the all-or-nothing transaction
// boundary the protocol assumes.
type Exchange struct {
	mu sync.Mutex

	address              common.Address
	owner                common.Address
	protocolFeeRecipient common.Address
	minimumMakerFee      *big.Int
	minimumTakerFee      *big.Int

	registry      *registry.ProxyRegistry
	transferProxy *registry.TokenTransferProxy
	ledger        NativeLedger
	tokens        TokenResolver
	orders        OrderStore
	static        Precondition
	notify        Notifier
	log           logrus.FieldLogger
	now           func() time.Time
}

// NewExchange creates an engine from p.
func NewExchange(p Params) (*Exchange, error) {
	if p.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if p.Ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	e := &Exchange{
		address:              p.Address,
		owner:                p.Owner,
		protocolFeeRecipient: p.ProtocolFeeRecipient,
		minimumMakerFee:      cloneOrZero(p.MinimumMakerProtocolFee),
		minimumTakerFee:      cloneOrZero(p.MinimumTakerProtocolFee),
		registry:             p.Registry,
		transferProxy:        p.TransferProxy,
		ledger:               p.Ledger,
		tokens:               p.Tokens,
		orders:               p.Orders,
		static:               p.Static,
		notify:               p.Notifier,
		log:                  p.Logger,
		now:                  p.Now,
	}
	if e.orders == nil {
		e.orders = NewMemoryOrderStore()
	}
	if e.notify == nil {
		e.notify = nopNotifier{}
	}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// Address returns the exchange's own address.
func (e *Exchange) Address() common.Address {
	return e.address
}

// ProtocolFeeRecipient returns the current protocol fee recipient.
func (e *Exchange) ProtocolFeeRecipient() common.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.protocolFeeRecipient
}

// ChangeMinimumMakerProtocolFee sets the maker protocol fee floor.
// Owner only.
func (e *Exchange) ChangeMinimumMakerProtocolFee(caller common.Address, fee *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller != e.owner {
		return ErrNotOwner
	}
	e.minimumMakerFee = cloneOrZero(fee)
	return nil
}

// ChangeMinimumTakerProtocolFee sets the taker protocol fee floor.
// Owner only.
func (e *Exchange) ChangeMinimumTakerProtocolFee(caller common.Address, fee *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller != e.owner {
		return ErrNotOwner
	}
	e.minimumTakerFee = cloneOrZero(fee)
	return nil
}

// ChangeProtocolFeeRecipient sets the protocol fee recipient. Owner only.
func (e *Exchange) ChangeProtocolFeeRecipient(caller, recipient common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller != e.owner {
		return ErrNotOwner
	}
	e.protocolFeeRecipient = recipient
	return nil
}

// HashOrder returns the canonical order hash.
func (e *Exchange) HashOrder(o *chain.Order) common.Hash {
	return chain.HashOrder(o)
}

// HashToSign returns the digest makers sign, which is also the order's
// bookkeeping identity.
func (e *Exchange) HashToSign(o *chain.Order) common.Hash {
	return chain.HashToSign(o)
}

// CalculateCurrentPrice computes o's price at the engine clock.
func (e *Exchange) CalculateCurrentPrice(o *chain.Order) *big.Int {
	return CalculateCurrentPrice(o, e.now().Unix())
}

// ApproveOrder sets the order's pre-approval flag so it validates without
// a signature. Maker only; a finalized order can no longer be approved.
func (e *Exchange) ApproveOrder(caller common.Address, o *chain.Order, approved bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller != o.Maker {
		return ErrNotMaker
	}
	hash := chain.HashToSign(o)
	st, err := e.orders.Get(hash)
	if err != nil {
		return fmt.Errorf("failed to read order state: %w", err)
	}
	if st.Finalized {
		return ErrOrderFinalized
	}
	st.Approved = approved
	if err := e.orders.Set(hash, st); err != nil {
		return fmt.Errorf("failed to write order state: %w", err)
	}
	e.log.WithFields(logrus.Fields{
		"hash":     hash.Hex(),
		"maker":    o.Maker.Hex(),
		"approved": approved,
	}).Info("order approval changed")
	e.notify.OrderApproved(OrderApprovedEvent{Hash: hash, Maker: o.Maker, Approved: approved})
	return nil
}

// CancelOrder permanently finalizes the order's hash so it can never be
// filled. The order must validate for the caller, and only the maker may
// cancel; a maker calling directly needs no signature.
func (e *Exchange) CancelOrder(caller common.Address, o *chain.Order, sig chain.Signature) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	hash := chain.HashToSign(o)
	if !e.validateOrderLocked(caller, hash, o, sig) {
		return ErrInvalidOrder
	}
	if caller != o.Maker {
		return ErrNotMaker
	}
	st, err := e.orders.Get(hash)
	if err != nil {
		return fmt.Errorf("failed to read order state: %w", err)
	}
	st.Finalized = true
	if err := e.orders.Set(hash, st); err != nil {
		return fmt.Errorf("failed to write order state: %w", err)
	}
	e.log.WithFields(logrus.Fields{
		"hash":  hash.Hex(),
		"maker": o.Maker.Hex(),
	}).Info("order cancelled")
	e.notify.OrderCancelled(OrderCancelledEvent{Hash: hash, Maker: o.Maker})
	return nil
}

// ApprovedOrFinalized returns the recorded state of an order's hash.
func (e *Exchange) ApprovedOrFinalized(o *chain.Order) (OrderState, error) {
	return e.orders.Get(chain.HashToSign(o))
}

func cloneOrZero(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(x)
}
