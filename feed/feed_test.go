package feed

import (
	"encoding/json"
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blueocean "github.com/blueoceanlabs/exchange-go"
)

func dialTestHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return hub, conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(payload, &env))
	return env
}

func TestHubBroadcastsApproval(t *testing.T) {
	hub, conn := dialTestHub(t)

	hub.OrderApproved(blueocean.OrderApprovedEvent{
		Hash:     common.HexToHash("0x01"),
		Maker:    common.HexToAddress("0x02"),
		Approved: true,
	})

	env := readEnvelope(t, conn)
	assert.Equal(t, ChannelOrderApproved, env.Channel)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["approved"])
}

func TestHubBroadcastsMatch(t *testing.T) {
	hub, conn := dialTestHub(t)

	hub.OrdersMatched(blueocean.OrdersMatchedEvent{
		BuyHash:  common.HexToHash("0x0a"),
		SellHash: common.HexToHash("0x0b"),
		Maker:    common.HexToAddress("0x0c"),
		Taker:    common.HexToAddress("0x0d"),
		Price:    big.NewInt(10000),
	})

	env := readEnvelope(t, conn)
	assert.Equal(t, ChannelOrdersMatched, env.Channel)
}

func TestHubMultipleSubscribers(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	var conns []*websocket.Conn
	for i := 0; i < 3; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		conns = append(conns, conn)
	}

	hub.OrderCancelled(blueocean.OrderCancelledEvent{
		Hash:  common.HexToHash("0x01"),
		Maker: common.HexToAddress("0x02"),
	})

	for _, conn := range conns {
		env := readEnvelope(t, conn)
		assert.Equal(t, ChannelOrderCancelled, env.Channel)
	}
}

func TestHubSurvivesDisconnectedSubscriber(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	gone, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	gone.Close()

	alive, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { alive.Close() })

	hub.OrderCancelled(blueocean.OrderCancelledEvent{Hash: common.HexToHash("0x01")})
	env := readEnvelope(t, alive)
	assert.Equal(t, ChannelOrderCancelled, env.Channel)
}
