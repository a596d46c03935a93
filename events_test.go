package blueocean

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueoceanlabs/exchange-go/chain"
)

type recordingNotifier struct {
	approved  []OrderApprovedEvent
	cancelled []OrderCancelledEvent
	matched   []OrdersMatchedEvent
}

func (r *recordingNotifier) OrderApproved(ev OrderApprovedEvent)   { r.approved = append(r.approved, ev) }
func (r *recordingNotifier) OrderCancelled(ev OrderCancelledEvent) { r.cancelled = append(r.cancelled, ev) }
func (r *recordingNotifier) OrdersMatched(ev OrdersMatchedEvent)   { r.matched = append(r.matched, ev) }

func TestEngineEmitsLifecycleEvents(t *testing.T) {
	env := newTestEnv(t)
	rec := &recordingNotifier{}

	ex, err := NewExchange(Params{
		Address:  testExchangeAddr,
		Owner:    testOwnerAddr,
		Registry: env.reg,
		Ledger:   env.world,
		Notifier: rec,
		Logger:   quietLogger(),
		Now:      func() time.Time { return time.Unix(env.now, 0) },
	})
	require.NoError(t, err)

	sell := env.sellOrder()
	buy := env.buyOrder()

	require.NoError(t, ex.ApproveOrder(env.seller, sell.Order, true))
	require.Len(t, rec.approved, 1)
	assert.Equal(t, chain.HashToSign(sell.Order), rec.approved[0].Hash)
	assert.Equal(t, env.seller, rec.approved[0].Maker)
	assert.True(t, rec.approved[0].Approved)

	env.world.Mint(env.buyer, big.NewInt(10000))
	receipt, err := ex.AtomicMatch(env.buyer, big.NewInt(10000),
		buy.Order, buy.Signature, sell.Order, sell.Signature)
	require.NoError(t, err)
	require.Len(t, rec.matched, 1)
	assert.Equal(t, receipt.BuyHash, rec.matched[0].BuyHash)
	assert.Equal(t, receipt.SellHash, rec.matched[0].SellHash)
	assert.Equal(t, env.seller, rec.matched[0].Maker)
	assert.Equal(t, env.buyer, rec.matched[0].Taker)
	assert.Zero(t, rec.matched[0].Price.Cmp(big.NewInt(10000)))

	other := env.sellOrder()
	require.NoError(t, ex.CancelOrder(env.seller, other.Order, chain.Signature{}))
	require.Len(t, rec.cancelled, 1)
	assert.Equal(t, chain.HashToSign(other.Order), rec.cancelled[0].Hash)
}

func TestMemoryOrderStoreZeroState(t *testing.T) {
	store := NewMemoryOrderStore()
	st, err := store.Get(chain.HashToSign(minimalOrder(t)))
	require.NoError(t, err)
	assert.False(t, st.Approved)
	assert.False(t, st.Finalized)
}

func minimalOrder(t *testing.T) *chain.Order {
	t.Helper()
	return &chain.Order{
		BasePrice:   big.NewInt(1),
		Salt:        big.NewInt(1),
		ListingTime: big.NewInt(1),
	}
}

func TestMemoryOrderStoreRoundTrip(t *testing.T) {
	store := NewMemoryOrderStore()
	hash := chain.HashToSign(minimalOrder(t))

	require.NoError(t, store.Set(hash, OrderState{Approved: true}))
	st, err := store.Get(hash)
	require.NoError(t, err)
	assert.True(t, st.Approved)
	assert.False(t, st.Finalized)

	require.NoError(t, store.Set(hash, OrderState{Approved: true, Finalized: true}))
	st, err = store.Get(hash)
	require.NoError(t, err)
	assert.True(t, st.Finalized)
}
