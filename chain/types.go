package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Side represents the side of an order
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

// Valid reports whether the side is a known value.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// SaleKind represents the kind of sale an order describes
type SaleKind uint8

const (
	SaleKindFixedPrice SaleKind = iota
	SaleKindDutchAuction
)

// Valid reports whether the sale kind is a known value.
func (k SaleKind) Valid() bool {
	return k == SaleKindFixedPrice || k == SaleKindDutchAuction
}

// FeeMethod selects how relayer and protocol fees are routed
type FeeMethod uint8

const (
	// FeeMethodProtocolFee routes relayer fees to the order's fee
	// recipient and protocol fees to the global protocol fee recipient.
	FeeMethodProtocolFee FeeMethod = iota
	// FeeMethodSplitFee routes both fee components to the order's fee
	// recipient.
	FeeMethodSplitFee
)

// Valid reports whether the fee method is a known value.
func (m FeeMethod) Valid() bool {
	return m == FeeMethodProtocolFee || m == FeeMethodSplitFee
}

// HowToCall selects the dispatch mode for the order's embedded call
type HowToCall uint8

const (
	HowToCallCall HowToCall = iota
	HowToCallDelegateCall
)

// Valid reports whether the dispatch mode is a known value.
func (h HowToCall) Valid() bool {
	return h == HowToCallCall || h == HowToCallDelegateCall
}

// Order is a signed intent to trade through the exchange. Orders are
// created and signed off-chain; the engine only ever sees them when an
// approval, cancellation, or match references them.
//
// The field set and its ordering are load-bearing: the order hash covers
// every field in declaration order, so any change to a field yields a new
// order identity.
type Order struct {
	// Exchange binds the order to a specific exchange deployment.
	Exchange common.Address
	// Maker is the order creator and signer.
	Maker common.Address
	// Taker restricts who may fill the order; the zero address means
	// any taker.
	Taker common.Address
	// MakerRelayerFee is the relayer fee paid by the fee-side maker, in
	// basis points of the settlement price.
	MakerRelayerFee *big.Int
	// TakerRelayerFee is the relayer fee demanded of the counterparty.
	TakerRelayerFee *big.Int
	// MakerProtocolFee is the protocol fee paid by the fee-side maker.
	MakerProtocolFee *big.Int
	// TakerProtocolFee is the protocol fee demanded of the counterparty.
	TakerProtocolFee *big.Int
	// FeeRecipient receives relayer fees. The zero address marks a
	// taker-side order whose fee schedule is determined by the
	// counter-order.
	FeeRecipient common.Address
	// FeeMethod selects fee routing.
	FeeMethod FeeMethod
	// Side is buy or sell.
	Side Side
	// SaleKind is fixed price or Dutch auction.
	SaleKind SaleKind
	// Target is the execution target of the embedded call.
	Target common.Address
	// HowToCall is the dispatch mode for the embedded call.
	HowToCall HowToCall
	// Calldata is the embedded call payload.
	Calldata []byte
	// ReplacementPattern masks the bytes of Calldata the counter-order
	// may fill in; empty means no replacement.
	ReplacementPattern []byte
	// StaticTarget is an optional read-only precondition contract; the
	// zero address means no check.
	StaticTarget common.Address
	// StaticExtradata is prepended to the call payload for the static
	// precondition check.
	StaticExtradata []byte
	// PaymentToken is the settlement token, or the zero address for
	// native currency.
	PaymentToken common.Address
	// BasePrice is the order price, in payment token base units.
	BasePrice *big.Int
	// Extra is the Dutch auction start/end price difference.
	Extra *big.Int
	// ListingTime is the start of the validity window (unix seconds).
	ListingTime *big.Int
	// ExpirationTime is the end of the validity window; zero means no
	// expiry.
	ExpirationTime *big.Int
	// Salt distinguishes otherwise-identical orders.
	Salt *big.Int
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	c := *o
	c.MakerRelayerFee = cloneBig(o.MakerRelayerFee)
	c.TakerRelayerFee = cloneBig(o.TakerRelayerFee)
	c.MakerProtocolFee = cloneBig(o.MakerProtocolFee)
	c.TakerProtocolFee = cloneBig(o.TakerProtocolFee)
	c.BasePrice = cloneBig(o.BasePrice)
	c.Extra = cloneBig(o.Extra)
	c.ListingTime = cloneBig(o.ListingTime)
	c.ExpirationTime = cloneBig(o.ExpirationTime)
	c.Salt = cloneBig(o.Salt)
	c.Calldata = append([]byte(nil), o.Calldata...)
	c.ReplacementPattern = append([]byte(nil), o.ReplacementPattern...)
	c.StaticExtradata = append([]byte(nil), o.StaticExtradata...)
	return &c
}

func cloneBig(x *big.Int) *big.Int {
	if x == nil {
		return nil
	}
	return new(big.Int).Set(x)
}
