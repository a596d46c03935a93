package blueocean

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/blueoceanlabs/exchange-go/chain"
)

// MatchReceipt summarizes a settled match.
type MatchReceipt struct {
	BuyHash  common.Hash
	SellHash common.Hash
	Price    *big.Int
}

// AtomicMatch validates, prices, and settles a buy/sell pair in one
// all-or-nothing step: fee and payment transfers, the maker-authorized
// target call through the sell maker's proxy, and permanent fill-marking
// of both hashes. Any failing sub-step undoes everything done before it.
//
// caller stands in for the transaction sender: it authorizes caller-made
// orders without a signature and supplies value when the pair settles in
// native currency. Overpayment beyond the required amount is kept by the
// exchange account; underpayment fails.
func (e *Exchange) AtomicMatch(caller common.Address, value *big.Int, buy *chain.Order, buySig chain.Signature, sell *chain.Order, sellSig chain.Signature) (*MatchReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return nil, ErrInsufficientValue
	}

	buyHash := chain.HashToSign(buy)
	sellHash := chain.HashToSign(sell)
	if !e.validateOrderLocked(caller, buyHash, buy, buySig) {
		return nil, fmt.Errorf("buy order: %w", ErrInvalidOrder)
	}
	if !e.validateOrderLocked(caller, sellHash, sell, sellSig) {
		return nil, fmt.Errorf("sell order: %w", ErrInvalidOrder)
	}

	now := e.now().Unix()
	if !ordersCompatible(buy, sell, now) {
		return nil, ErrOrdersCannotMatch
	}

	calldata, err := matchCalldata(buy.Calldata, buy.ReplacementPattern, sell.Calldata, sell.ReplacementPattern)
	if err != nil {
		return nil, err
	}

	proxy := e.registry.Proxy(sell.Maker)
	if proxy == nil {
		return nil, ErrUnknownProxy
	}

	// Static preconditions are read-only and carry no state to roll
	// back, so they run before any transfer.
	for _, o := range []*chain.Order{buy, sell} {
		if o.StaticTarget == (common.Address{}) {
			continue
		}
		if e.static == nil || !e.static.Check(o.StaticTarget, calldata, o.StaticExtradata) {
			return nil, ErrStaticCallFailed
		}
	}

	price, err := CalculateMatchPrice(buy, sell, now)
	if err != nil {
		return nil, err
	}

	snapshot := e.ledger.Snapshot()
	if err := e.executeFundsTransfer(caller, value, buy, sell, price); err != nil {
		e.ledger.RevertToSnapshot(snapshot)
		return nil, err
	}

	// Both hashes are finalized before the external target call so a
	// re-entrant fill of the same pair can only fail validation.
	prevBuy, prevSell, err := e.finalizePair(buyHash, sellHash)
	if err != nil {
		e.ledger.RevertToSnapshot(snapshot)
		return nil, err
	}

	if err := proxy.Proxy(e.address, sell.Target, sell.HowToCall, calldata); err != nil {
		e.restorePair(buyHash, prevBuy, sellHash, prevSell)
		e.ledger.RevertToSnapshot(snapshot)
		return nil, fmt.Errorf("%w: %v", ErrTargetCallFailed, err)
	}

	e.ledger.Commit()
	e.log.WithFields(logrus.Fields{
		"buyHash":  buyHash.Hex(),
		"sellHash": sellHash.Hex(),
		"maker":    sell.Maker.Hex(),
		"taker":    buy.Maker.Hex(),
		"price":    price.String(),
		"relayer":  caller.Hex(),
	}).Info("orders matched")
	e.notify.OrdersMatched(OrdersMatchedEvent{
		BuyHash:  buyHash,
		SellHash: sellHash,
		Maker:    sell.Maker,
		Taker:    buy.Maker,
		Price:    new(big.Int).Set(price),
	})
	return &MatchReceipt{BuyHash: buyHash, SellHash: sellHash, Price: price}, nil
}

// executeFundsTransfer charges fees and moves the payment. The order with
// a nonzero fee recipient is the fee side; its schedule governs, and the
// counter-order must have consented to at least the demanded taker fees.
func (e *Exchange) executeFundsTransfer(caller common.Address, value *big.Int, buy, sell *chain.Order, price *big.Int) error {
	feeSide, counter := sell, buy
	if sell.FeeRecipient == (common.Address{}) {
		feeSide, counter = buy, sell
	}

	if cmpOrZero(counter.TakerRelayerFee, feeSide.TakerRelayerFee) < 0 {
		return ErrInsufficientTakerFee
	}
	if cmpOrZero(counter.TakerProtocolFee, feeSide.TakerProtocolFee) < 0 {
		return ErrInsufficientTakerFee
	}

	makerRelayer := basisPoints(feeSide.MakerRelayerFee, price)
	takerRelayer := basisPoints(feeSide.TakerRelayerFee, price)
	makerProtocol := basisPoints(feeSide.MakerProtocolFee, price)
	takerProtocol := basisPoints(feeSide.TakerProtocolFee, price)

	relayerRecipient := feeSide.FeeRecipient
	protocolRecipient := e.protocolFeeRecipient
	if feeSide.FeeMethod == chain.FeeMethodSplitFee {
		// Merged routing: protocol components also go to the fee
		// recipient.
		protocolRecipient = relayerRecipient
	}

	if buy.PaymentToken != (common.Address{}) {
		return e.settleInToken(value, buy, sell, price, feeSide.Maker, counter.Maker,
			relayerRecipient, protocolRecipient, makerRelayer, takerRelayer, makerProtocol, takerProtocol)
	}
	return e.settleInNative(caller, value, buy, sell, price, feeSide == sell,
		relayerRecipient, protocolRecipient, makerRelayer, takerRelayer, makerProtocol, takerProtocol)
}

func (e *Exchange) settleInToken(value *big.Int, buy, sell *chain.Order, price *big.Int,
	makerParty, takerParty, relayerRecipient, protocolRecipient common.Address,
	makerRelayer, takerRelayer, makerProtocol, takerProtocol *big.Int) error {

	if value.Sign() > 0 {
		return ErrUnexpectedValue
	}
	if e.tokens == nil || e.transferProxy == nil {
		return ErrUnknownPaymentToken
	}
	token := e.tokens(buy.PaymentToken)
	if token == nil {
		return ErrUnknownPaymentToken
	}

	transfers := []struct {
		from, to common.Address
		amount   *big.Int
	}{
		{makerParty, relayerRecipient, makerRelayer},
		{makerParty, protocolRecipient, makerProtocol},
		{takerParty, relayerRecipient, takerRelayer},
		{takerParty, protocolRecipient, takerProtocol},
		{buy.Maker, sell.Maker, price},
	}
	for _, tr := range transfers {
		if tr.amount.Sign() == 0 {
			continue
		}
		if err := e.transferProxy.TransferFrom(e.address, token, tr.from, tr.to, tr.amount); err != nil {
			return fmt.Errorf("token transfer %s -> %s failed: %w", tr.from.Hex(), tr.to.Hex(), err)
		}
	}
	return nil
}

func (e *Exchange) settleInNative(caller common.Address, value *big.Int, buy, sell *chain.Order, price *big.Int,
	sellIsFeeSide bool, relayerRecipient, protocolRecipient common.Address,
	makerRelayer, takerRelayer, makerProtocol, takerProtocol *big.Int) error {

	makerTotal := new(big.Int).Add(makerRelayer, makerProtocol)
	takerTotal := new(big.Int).Add(takerRelayer, takerProtocol)

	required := new(big.Int).Set(price)
	receive := new(big.Int).Set(price)
	if sellIsFeeSide {
		// Seller's own fees come out of the proceeds, the buyer pays
		// the demanded taker fees on top of the price.
		receive.Sub(receive, makerTotal)
		required.Add(required, takerTotal)
	} else {
		required.Add(required, makerTotal)
		receive.Sub(receive, takerTotal)
	}
	if receive.Sign() < 0 {
		return ErrFeeExceedsPrice
	}
	if value.Cmp(required) < 0 {
		return ErrInsufficientValue
	}

	// The full supplied value moves through the exchange account;
	// anything beyond the required amount stays there.
	if err := e.ledger.Transfer(caller, e.address, value); err != nil {
		return fmt.Errorf("failed to collect value from %s: %w", caller.Hex(), err)
	}
	payouts := []struct {
		to     common.Address
		amount *big.Int
	}{
		{relayerRecipient, new(big.Int).Add(makerRelayer, takerRelayer)},
		{protocolRecipient, new(big.Int).Add(makerProtocol, takerProtocol)},
		{sell.Maker, receive},
	}
	for _, p := range payouts {
		if p.amount.Sign() == 0 {
			continue
		}
		if err := e.ledger.Transfer(e.address, p.to, p.amount); err != nil {
			return fmt.Errorf("failed to pay %s: %w", p.to.Hex(), err)
		}
	}
	return nil
}

func (e *Exchange) finalizePair(buyHash, sellHash common.Hash) (prevBuy, prevSell OrderState, err error) {
	prevBuy, err = e.orders.Get(buyHash)
	if err != nil {
		return OrderState{}, OrderState{}, fmt.Errorf("failed to read order state: %w", err)
	}
	prevSell, err = e.orders.Get(sellHash)
	if err != nil {
		return OrderState{}, OrderState{}, fmt.Errorf("failed to read order state: %w", err)
	}
	if err = e.orders.Set(buyHash, OrderState{Approved: prevBuy.Approved, Finalized: true}); err != nil {
		return OrderState{}, OrderState{}, fmt.Errorf("failed to write order state: %w", err)
	}
	if err = e.orders.Set(sellHash, OrderState{Approved: prevSell.Approved, Finalized: true}); err != nil {
		e.orders.Set(buyHash, prevBuy)
		return OrderState{}, OrderState{}, fmt.Errorf("failed to write order state: %w", err)
	}
	return prevBuy, prevSell, nil
}

func (e *Exchange) restorePair(buyHash common.Hash, prevBuy OrderState, sellHash common.Hash, prevSell OrderState) {
	if err := e.orders.Set(buyHash, prevBuy); err != nil {
		e.log.WithField("hash", buyHash.Hex()).WithError(err).Error("failed to restore order state")
	}
	if err := e.orders.Set(sellHash, prevSell); err != nil {
		e.log.WithField("hash", sellHash.Hex()).WithError(err).Error("failed to restore order state")
	}
}

// basisPoints computes fee/InverseBasisPoint of price.
func basisPoints(fee, price *big.Int) *big.Int {
	out := new(big.Int).Mul(orZero(fee), orZero(price))
	return out.Div(out, big.NewInt(InverseBasisPoint))
}
