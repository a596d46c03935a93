package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *Order {
	return &Order{
		Exchange:           common.HexToAddress("0x1000000000000000000000000000000000000001"),
		Maker:              common.HexToAddress("0x2000000000000000000000000000000000000002"),
		Taker:              common.Address{},
		MakerRelayerFee:    big.NewInt(250),
		TakerRelayerFee:    big.NewInt(0),
		MakerProtocolFee:   big.NewInt(0),
		TakerProtocolFee:   big.NewInt(0),
		FeeRecipient:       common.HexToAddress("0x3000000000000000000000000000000000000003"),
		FeeMethod:          FeeMethodSplitFee,
		Side:               SideSell,
		SaleKind:           SaleKindFixedPrice,
		Target:             common.HexToAddress("0x4000000000000000000000000000000000000004"),
		HowToCall:          HowToCallCall,
		Calldata:           []byte{0xde, 0xad, 0xbe, 0xef},
		ReplacementPattern: []byte{0x00, 0x00, 0x00, 0x00},
		StaticTarget:       common.Address{},
		StaticExtradata:    nil,
		PaymentToken:       common.Address{},
		BasePrice:          big.NewInt(1000),
		Extra:              big.NewInt(0),
		ListingTime:        big.NewInt(1_700_000_000),
		ExpirationTime:     big.NewInt(0),
		Salt:               big.NewInt(42),
	}
}

func TestHashOrderDeterministic(t *testing.T) {
	a := sampleOrder()
	b := sampleOrder()
	assert.Equal(t, HashOrder(a), HashOrder(b))
	assert.Equal(t, HashOrder(a), HashOrder(a.Clone()))
}

func TestHashOrderFieldSensitivity(t *testing.T) {
	base := HashOrder(sampleOrder())

	perturbations := map[string]func(*Order){
		"exchange":        func(o *Order) { o.Exchange = common.HexToAddress("0xff") },
		"maker":           func(o *Order) { o.Maker = common.HexToAddress("0xff") },
		"taker":           func(o *Order) { o.Taker = common.HexToAddress("0xff") },
		"makerRelayerFee": func(o *Order) { o.MakerRelayerFee = big.NewInt(251) },
		"takerRelayerFee": func(o *Order) { o.TakerRelayerFee = big.NewInt(1) },
		"feeRecipient":    func(o *Order) { o.FeeRecipient = common.Address{} },
		"feeMethod":       func(o *Order) { o.FeeMethod = FeeMethodProtocolFee },
		"side":            func(o *Order) { o.Side = SideBuy },
		"saleKind":        func(o *Order) { o.SaleKind = SaleKindDutchAuction },
		"target":          func(o *Order) { o.Target = common.HexToAddress("0xff") },
		"howToCall":       func(o *Order) { o.HowToCall = HowToCallDelegateCall },
		"calldata":        func(o *Order) { o.Calldata = []byte{0xde, 0xad, 0xbe, 0xee} },
		"pattern":         func(o *Order) { o.ReplacementPattern = []byte{0xff, 0x00, 0x00, 0x00} },
		"paymentToken":    func(o *Order) { o.PaymentToken = common.HexToAddress("0xff") },
		"basePrice":       func(o *Order) { o.BasePrice = big.NewInt(1001) },
		"extra":           func(o *Order) { o.Extra = big.NewInt(1) },
		"listingTime":     func(o *Order) { o.ListingTime = big.NewInt(1_700_000_001) },
		"expirationTime":  func(o *Order) { o.ExpirationTime = big.NewInt(1) },
		"salt":            func(o *Order) { o.Salt = big.NewInt(43) },
	}
	for name, mutate := range perturbations {
		t.Run(name, func(t *testing.T) {
			o := sampleOrder()
			mutate(o)
			assert.NotEqual(t, base, HashOrder(o), "changing %s must change the hash", name)
		})
	}
}

func TestHashOrderNilBigIntsHashAsZero(t *testing.T) {
	a := sampleOrder()
	a.TakerRelayerFee = nil
	a.Extra = nil
	a.ExpirationTime = nil
	b := sampleOrder()
	b.TakerRelayerFee = big.NewInt(0)
	b.Extra = big.NewInt(0)
	b.ExpirationTime = big.NewInt(0)
	assert.Equal(t, HashOrder(a), HashOrder(b))
}

func TestHashToSignAppliesPrefix(t *testing.T) {
	o := sampleOrder()
	require.NotEqual(t, HashOrder(o), HashToSign(o))

	// The signable digest must also commit to every order field.
	other := sampleOrder()
	other.Salt = big.NewInt(43)
	assert.NotEqual(t, HashToSign(o), HashToSign(other))
}
