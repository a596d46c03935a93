package chain

import (
	"crypto/ecdsa"
	"errors"
	"math/big"
	"math/rand"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Order building errors
var (
	ErrNoSigningKey    = errors.New("order builder has no signing key")
	ErrMissingTarget   = errors.New("order target is required")
	ErrInvalidEnum     = errors.New("invalid side, sale kind, fee method, or call mode")
	ErrNegativeAmount  = errors.New("price parameters must not be negative")
	ErrAuctionNoExpiry = errors.New("dutch auction requires an expiration time")
)

// OrderData carries the caller-supplied parameters for building an order.
// Zero-valued fee and price fields default to zero; a zero ListingTime
// defaults to the current time.
type OrderData struct {
	Taker              common.Address
	MakerRelayerFee    *big.Int
	TakerRelayerFee    *big.Int
	MakerProtocolFee   *big.Int
	TakerProtocolFee   *big.Int
	FeeRecipient       common.Address
	FeeMethod          FeeMethod
	Side               Side
	SaleKind           SaleKind
	Target             common.Address
	HowToCall          HowToCall
	Calldata           []byte
	ReplacementPattern []byte
	StaticTarget       common.Address
	StaticExtradata    []byte
	PaymentToken       common.Address
	BasePrice          *big.Int
	Extra              *big.Int
	ListingTime        *big.Int
	ExpirationTime     *big.Int
}

// OrderBuilder builds and signs orders for a single maker against a single
// exchange deployment.
type OrderBuilder struct {
	exchange common.Address
	maker    common.Address
	signer   *ecdsa.PrivateKey
	rng      *rand.Rand
	now      func() time.Time
}

// SignedOrder pairs an order with its maker signature.
type SignedOrder struct {
	Order     *Order
	Signature Signature
}

// NewOrderBuilder creates an OrderBuilder signing with key. The maker
// address is derived from the key.
func NewOrderBuilder(exchange common.Address, key *ecdsa.PrivateKey) *OrderBuilder {
	return &OrderBuilder{
		exchange: exchange,
		maker:    crypto.PubkeyToAddress(key.PublicKey),
		signer:   key,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

// BuildOrder builds an order from data, filling in the exchange address,
// maker, a random salt, and a default listing time.
func (ob *OrderBuilder) BuildOrder(data *OrderData) (*Order, error) {
	if err := ob.validate(data); err != nil {
		return nil, err
	}

	listing := data.ListingTime
	if listing == nil || listing.Sign() == 0 {
		listing = big.NewInt(ob.now().Unix())
	}

	order := &Order{
		Exchange:           ob.exchange,
		Maker:              ob.maker,
		Taker:              data.Taker,
		MakerRelayerFee:    orZero(data.MakerRelayerFee),
		TakerRelayerFee:    orZero(data.TakerRelayerFee),
		MakerProtocolFee:   orZero(data.MakerProtocolFee),
		TakerProtocolFee:   orZero(data.TakerProtocolFee),
		FeeRecipient:       data.FeeRecipient,
		FeeMethod:          data.FeeMethod,
		Side:               data.Side,
		SaleKind:           data.SaleKind,
		Target:             data.Target,
		HowToCall:          data.HowToCall,
		Calldata:           append([]byte(nil), data.Calldata...),
		ReplacementPattern: append([]byte(nil), data.ReplacementPattern...),
		StaticTarget:       data.StaticTarget,
		StaticExtradata:    append([]byte(nil), data.StaticExtradata...),
		PaymentToken:       data.PaymentToken,
		BasePrice:          orZero(data.BasePrice),
		Extra:              orZero(data.Extra),
		ListingTime:        new(big.Int).Set(listing),
		ExpirationTime:     orZero(data.ExpirationTime),
		Salt:               ob.generateSalt(),
	}
	return order, nil
}

// BuildSignedOrder builds an order and signs its hash-to-sign digest.
func (ob *OrderBuilder) BuildSignedOrder(data *OrderData) (*SignedOrder, error) {
	order, err := ob.BuildOrder(data)
	if err != nil {
		return nil, err
	}
	sig, err := ob.SignOrder(order)
	if err != nil {
		return nil, err
	}
	return &SignedOrder{Order: order, Signature: sig}, nil
}

// SignOrder signs an existing order's hash-to-sign digest.
func (ob *OrderBuilder) SignOrder(order *Order) (Signature, error) {
	if ob.signer == nil {
		return Signature{}, ErrNoSigningKey
	}
	return SignHash(HashToSign(order), ob.signer)
}

// Maker returns the maker address of every order this builder produces.
func (ob *OrderBuilder) Maker() common.Address {
	return ob.maker
}

func (ob *OrderBuilder) validate(data *OrderData) error {
	if data.Target == (common.Address{}) {
		return ErrMissingTarget
	}
	if !data.Side.Valid() || !data.SaleKind.Valid() ||
		!data.FeeMethod.Valid() || !data.HowToCall.Valid() {
		return ErrInvalidEnum
	}
	for _, x := range []*big.Int{
		data.MakerRelayerFee, data.TakerRelayerFee,
		data.MakerProtocolFee, data.TakerProtocolFee,
		data.BasePrice, data.Extra,
	} {
		if x != nil && x.Sign() < 0 {
			return ErrNegativeAmount
		}
	}
	if data.SaleKind == SaleKindDutchAuction &&
		(data.ExpirationTime == nil || data.ExpirationTime.Sign() == 0) {
		return ErrAuctionNoExpiry
	}
	return nil
}

func (ob *OrderBuilder) generateSalt() *big.Int {
	// Two random 64-bit halves are plenty to keep identical orders from
	// colliding.
	salt := new(big.Int).SetUint64(ob.rng.Uint64())
	salt.Lsh(salt, 64)
	return salt.Or(salt, new(big.Int).SetUint64(ob.rng.Uint64()))
}

func orZero(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(x)
}
