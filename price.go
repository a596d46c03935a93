package blueocean

import (
	"math/big"

	"github.com/blueoceanlabs/exchange-go/chain"
)

// CalculateFinalPrice computes the price of an order's terms at time now
// (unix seconds). Fixed-price orders are constant. Dutch auctions move
// linearly across [listingTime, expirationTime]: sell orders descend from
// basePrice toward basePrice-extra, buy orders ascend from basePrice
// toward basePrice+extra. Elapsed time is clamped to the window, so the
// price pins at the bounds outside it; whether the order is fillable at
// all is the match gate's concern, not pricing's.
func CalculateFinalPrice(side chain.Side, saleKind chain.SaleKind, basePrice, extra, listingTime, expirationTime *big.Int, now int64) *big.Int {
	base := orZero(basePrice)
	if saleKind != chain.SaleKindDutchAuction {
		return new(big.Int).Set(base)
	}

	listing := orZero(listingTime)
	expiration := orZero(expirationTime)
	total := new(big.Int).Sub(expiration, listing)
	if total.Sign() <= 0 {
		return new(big.Int).Set(base)
	}

	elapsed := new(big.Int).Sub(big.NewInt(now), listing)
	if elapsed.Sign() < 0 {
		elapsed.SetInt64(0)
	}
	if elapsed.Cmp(total) > 0 {
		elapsed.Set(total)
	}

	diff := new(big.Int).Mul(orZero(extra), elapsed)
	diff.Div(diff, total)

	if side == chain.SideSell {
		price := new(big.Int).Sub(base, diff)
		if price.Sign() < 0 {
			price.SetInt64(0)
		}
		return price
	}
	return new(big.Int).Add(base, diff)
}

// CalculateCurrentPrice computes o's price at time now.
func CalculateCurrentPrice(o *chain.Order, now int64) *big.Int {
	return CalculateFinalPrice(o.Side, o.SaleKind, o.BasePrice, o.Extra, o.ListingTime, o.ExpirationTime, now)
}

// CalculateMatchPrice reconciles the two orders' current prices into the
// settlement price: the sell price is a floor, the buy price a ceiling,
// and the buy price is what actually settles.
func CalculateMatchPrice(buy, sell *chain.Order, now int64) (*big.Int, error) {
	buyPrice := CalculateCurrentPrice(buy, now)
	sellPrice := CalculateCurrentPrice(sell, now)
	if sellPrice.Cmp(buyPrice) > 0 {
		return nil, ErrPriceMismatch
	}
	return buyPrice, nil
}

func orZero(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return x
}
