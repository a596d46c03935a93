// Command example runs a complete match end to end against an in-memory
// world: a seller lists an NFT, a buyer bids in native currency, and the
// exchange settles the pair atomically through the seller's proxy.
package main

import (
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	blueocean "github.com/blueoceanlabs/exchange-go"
	"github.com/blueoceanlabs/exchange-go/chain"
	"github.com/blueoceanlabs/exchange-go/feed"
	"github.com/blueoceanlabs/exchange-go/registry"
	"github.com/blueoceanlabs/exchange-go/state"
)

var (
	registryAddr      = common.HexToAddress("0x0000000000000000000000000000000000001001")
	exchangeAddr      = common.HexToAddress("0x0000000000000000000000000000000000001002")
	transferProxyAddr = common.HexToAddress("0x0000000000000000000000000000000000001003")
	nftAddr           = common.HexToAddress("0x0000000000000000000000000000000000002001")
	ownerAddr         = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	relayerFeeAddr    = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	protocolFeeAddr   = common.HexToAddress("0x00000000000000000000000000000000000000cc")
)

func main() {
	log := logrus.New()

	cfg, err := blueocean.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	sellerKey, err := crypto.GenerateKey()
	if err != nil {
		log.WithError(err).Fatal("keygen")
	}
	buyerKey, err := crypto.GenerateKey()
	if err != nil {
		log.WithError(err).Fatal("keygen")
	}
	seller := crypto.PubkeyToAddress(sellerKey.PublicKey)
	buyer := crypto.PubkeyToAddress(buyerKey.PublicKey)

	world := state.NewWorld()
	router := registry.NewCallRouter()
	reg := registry.NewProxyRegistry(registryAddr, ownerAddr, router, registry.WithLogger(log))
	if err := reg.GrantInitialAuthentication(ownerAddr, exchangeAddr); err != nil {
		log.WithError(err).Fatal("grant")
	}
	tokenProxy := registry.NewTokenTransferProxy(transferProxyAddr, reg)

	// The NFT collection, reachable through proxy calls.
	nft := world.NFT(nftAddr)
	router.Register(nftAddr, func(caller common.Address, calldata []byte) error {
		from, to, tokenID, err := chain.DecodeTransferFrom(calldata)
		if err != nil {
			return err
		}
		return nft.TransferFrom(caller, from, to, tokenID)
	})

	tokenID := big.NewInt(1337)
	if err := nft.Mint(seller, tokenID); err != nil {
		log.WithError(err).Fatal("mint")
	}
	sellerProxy, err := reg.RegisterProxy(seller)
	if err != nil {
		log.WithError(err).Fatal("register proxy")
	}
	nft.SetApprovalForAll(seller, sellerProxy.Address(), true)

	var hub *feed.Hub
	if cfg.FeedListenAddr != "" {
		hub = feed.NewHub(log)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/feed", hub)
			log.WithField("addr", cfg.FeedListenAddr).Info("feed listening")
			if err := http.ListenAndServe(cfg.FeedListenAddr, mux); err != nil {
				log.WithError(err).Error("feed server")
			}
		}()
	}

	params := blueocean.Params{
		Address:              exchangeAddr,
		Owner:                ownerAddr,
		ProtocolFeeRecipient: protocolFeeAddr,
		Registry:             reg,
		TransferProxy:        tokenProxy,
		Ledger:               world,
		Tokens: func(addr common.Address) registry.ERC20 {
			return world.Token(addr)
		},
		Logger: log,
	}
	if hub != nil {
		params.Notifier = hub
	}
	ex, err := blueocean.NewExchange(params)
	if err != nil {
		log.WithError(err).Fatal("exchange")
	}

	price := new(big.Int).Mul(big.NewInt(1), big.NewInt(1e18))
	listed := big.NewInt(time.Now().Add(-time.Minute).Unix())

	// The seller commits to the item leaving their wallet but leaves the
	// recipient open; the buyer commits to receiving it from anyone.
	sellCalldata, err := chain.TransferFromCalldata(seller, common.Address{}, tokenID)
	if err != nil {
		log.WithError(err).Fatal("calldata")
	}
	sellPattern, err := chain.WildcardArgumentPattern(len(sellCalldata), 1)
	if err != nil {
		log.WithError(err).Fatal("pattern")
	}
	buyCalldata, err := chain.TransferFromCalldata(common.Address{}, buyer, tokenID)
	if err != nil {
		log.WithError(err).Fatal("calldata")
	}
	buyPattern, err := chain.WildcardArgumentPattern(len(buyCalldata), 0)
	if err != nil {
		log.WithError(err).Fatal("pattern")
	}

	sellBuilder := chain.NewOrderBuilder(exchangeAddr, sellerKey)
	sell, err := sellBuilder.BuildSignedOrder(&chain.OrderData{
		FeeRecipient:       relayerFeeAddr,
		FeeMethod:          chain.FeeMethodSplitFee,
		MakerRelayerFee:    big.NewInt(250),
		TakerRelayerFee:    big.NewInt(100),
		Side:               chain.SideSell,
		SaleKind:           chain.SaleKindFixedPrice,
		Target:             nftAddr,
		HowToCall:          chain.HowToCallCall,
		Calldata:           sellCalldata,
		ReplacementPattern: sellPattern,
		BasePrice:          price,
		ListingTime:        listed,
	})
	if err != nil {
		log.WithError(err).Fatal("sell order")
	}

	buyBuilder := chain.NewOrderBuilder(exchangeAddr, buyerKey)
	buy, err := buyBuilder.BuildSignedOrder(&chain.OrderData{
		FeeMethod:          chain.FeeMethodSplitFee,
		TakerRelayerFee:    big.NewInt(100),
		Side:               chain.SideBuy,
		SaleKind:           chain.SaleKindFixedPrice,
		Target:             nftAddr,
		HowToCall:          chain.HowToCallCall,
		Calldata:           buyCalldata,
		ReplacementPattern: buyPattern,
		BasePrice:          price,
		ListingTime:        listed,
	})
	if err != nil {
		log.WithError(err).Fatal("buy order")
	}

	// Price plus the 1% taker relayer fee the seller demands.
	required := new(big.Int).Add(price, blueocean.BasisPointFee(price, 100))
	world.Mint(buyer, required)

	receipt, err := ex.AtomicMatch(buyer, required, buy.Order, buy.Signature, sell.Order, sell.Signature)
	if err != nil {
		log.WithError(err).Fatal("match")
	}

	newOwner, err := nft.OwnerOf(tokenID)
	if err != nil {
		log.WithError(err).Fatal("owner")
	}
	log.WithFields(logrus.Fields{
		"buyHash":       receipt.BuyHash.Hex(),
		"sellHash":      receipt.SellHash.Hex(),
		"price":         receipt.Price.String(),
		"nftOwner":      newOwner.Hex(),
		"sellerBalance": world.BalanceOf(seller).String(),
		"relayerFees":   world.BalanceOf(relayerFeeAddr).String(),
	}).Info("match settled")

	if hub != nil {
		// Give feed subscribers a moment to receive the final event.
		time.Sleep(100 * time.Millisecond)
		hub.Close()
	}
}
