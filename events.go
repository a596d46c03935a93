package blueocean

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// OrderApprovedEvent is emitted when a maker sets an order's pre-approval
// flag.
type OrderApprovedEvent struct {
	Hash     common.Hash    `json:"hash"`
	Maker    common.Address `json:"maker"`
	Approved bool           `json:"approved"`
}

// OrderCancelledEvent is emitted when an order is permanently cancelled.
type OrderCancelledEvent struct {
	Hash  common.Hash    `json:"hash"`
	Maker common.Address `json:"maker"`
}

// OrdersMatchedEvent is emitted after an atomic match settles.
type OrdersMatchedEvent struct {
	BuyHash  common.Hash    `json:"buyHash"`
	SellHash common.Hash    `json:"sellHash"`
	Maker    common.Address `json:"maker"`
	Taker    common.Address `json:"taker"`
	Price    *big.Int       `json:"price"`
}

// Notifier receives engine lifecycle events. Implementations must not
// call back into the engine.
type Notifier interface {
	OrderApproved(OrderApprovedEvent)
	OrderCancelled(OrderCancelledEvent)
	OrdersMatched(OrdersMatchedEvent)
}

type nopNotifier struct{}

func (nopNotifier) OrderApproved(OrderApprovedEvent)   {}
func (nopNotifier) OrderCancelled(OrderCancelledEvent) {}
func (nopNotifier) OrdersMatched(OrdersMatchedEvent)   {}
