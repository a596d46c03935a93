package blueocean

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/blueoceanlabs/exchange-go/chain"
)

// ValidateOrderParameters checks an order's structural validity: exchange
// binding, enum values, sale-kind parameter combination, and the global
// protocol fee floors. Window and signature checks live elsewhere.
func (e *Exchange) ValidateOrderParameters(o *chain.Order) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validateOrderParametersLocked(o)
}

func (e *Exchange) validateOrderParametersLocked(o *chain.Order) bool {
	if o.Exchange != e.address {
		return false
	}
	if !o.FeeMethod.Valid() || !o.Side.Valid() || !o.SaleKind.Valid() || !o.HowToCall.Valid() {
		return false
	}
	// A Dutch auction with no expiry has no price curve to follow.
	if o.SaleKind == chain.SaleKindDutchAuction && isZero(o.ExpirationTime) {
		return false
	}
	if cmpOrZero(o.MakerProtocolFee, e.minimumMakerFee) < 0 {
		return false
	}
	if cmpOrZero(o.TakerProtocolFee, e.minimumTakerFee) < 0 {
		return false
	}
	return true
}

// ValidateOrder checks everything ValidateOrderParameters does plus the
// replay flag and maker authorization: the caller being the maker, a
// recorded pre-approval, or a valid maker signature over the order's
// hash-to-sign digest. Fails closed.
func (e *Exchange) ValidateOrder(caller common.Address, o *chain.Order, sig chain.Signature) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validateOrderLocked(caller, chain.HashToSign(o), o, sig)
}

func (e *Exchange) validateOrderLocked(caller common.Address, hash common.Hash, o *chain.Order, sig chain.Signature) bool {
	if !e.validateOrderParametersLocked(o) {
		return false
	}
	st, err := e.orders.Get(hash)
	if err != nil || st.Finalized {
		return false
	}
	if caller == o.Maker {
		return true
	}
	if st.Approved {
		return true
	}
	signer, err := chain.RecoverSigner(hash, sig)
	return err == nil && signer == o.Maker
}

// OrdersCanMatch is the stateless match gate: it reports whether the
// buy/sell pair is compatible at the engine clock. Replay and signature
// state are the per-order validation's concern.
func (e *Exchange) OrdersCanMatch(buy, sell *chain.Order) bool {
	now := e.now().Unix()
	if !ordersCompatible(buy, sell, now) {
		return false
	}
	ok, err := OrderCalldataCanMatch(buy.Calldata, buy.ReplacementPattern, sell.Calldata, sell.ReplacementPattern)
	return err == nil && ok
}

// ordersCompatible checks every match clause except calldata.
func ordersCompatible(buy, sell *chain.Order, now int64) bool {
	if buy.Side != chain.SideBuy || sell.Side != chain.SideSell {
		return false
	}
	if buy.FeeMethod != sell.FeeMethod {
		return false
	}
	if buy.PaymentToken != sell.PaymentToken {
		return false
	}
	if sell.Taker != (common.Address{}) && sell.Taker != buy.Maker {
		return false
	}
	if buy.Taker != (common.Address{}) && buy.Taker != sell.Maker {
		return false
	}
	// Exactly one order carries the fee schedule: one maker, one taker.
	buyIsFeeSide := buy.FeeRecipient != (common.Address{})
	sellIsFeeSide := sell.FeeRecipient != (common.Address{})
	if buyIsFeeSide == sellIsFeeSide {
		return false
	}
	if buy.Target != sell.Target {
		return false
	}
	if buy.HowToCall != sell.HowToCall {
		return false
	}
	if !canSettleOrder(buy.ListingTime, buy.ExpirationTime, now) {
		return false
	}
	if !canSettleOrder(sell.ListingTime, sell.ExpirationTime, now) {
		return false
	}
	return true
}

// canSettleOrder reports whether the validity window is currently open.
func canSettleOrder(listingTime, expirationTime *big.Int, now int64) bool {
	if cmpOrZero(listingTime, big.NewInt(now)) >= 0 {
		return false
	}
	return isZero(expirationTime) || cmpOrZero(expirationTime, big.NewInt(now)) > 0
}

// CalculateMatchPrice reconciles the pair's prices at the engine clock.
func (e *Exchange) CalculateMatchPrice(buy, sell *chain.Order) (*big.Int, error) {
	return CalculateMatchPrice(buy, sell, e.now().Unix())
}

func isZero(x *big.Int) bool {
	return x == nil || x.Sign() == 0
}

func cmpOrZero(a, b *big.Int) int {
	return orZero(a).Cmp(orZero(b))
}
