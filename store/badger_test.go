package store

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blueocean "github.com/blueoceanlabs/exchange-go"
)

func openTestStore(t *testing.T) *BadgerOrderStore {
	t.Helper()
	s, err := OpenBadgerOrderStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBadgerStoreUnknownHashIsZeroState(t *testing.T) {
	s := openTestStore(t)

	st, err := s.Get(common.HexToHash("0x01"))
	require.NoError(t, err)
	assert.False(t, st.Approved)
	assert.False(t, st.Finalized)
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)
	hash := common.HexToHash("0x02")

	require.NoError(t, s.Set(hash, blueocean.OrderState{Approved: true}))
	st, err := s.Get(hash)
	require.NoError(t, err)
	assert.True(t, st.Approved)
	assert.False(t, st.Finalized)

	require.NoError(t, s.Set(hash, blueocean.OrderState{Approved: true, Finalized: true}))
	st, err = s.Get(hash)
	require.NoError(t, err)
	assert.True(t, st.Approved)
	assert.True(t, st.Finalized)

	require.NoError(t, s.Set(hash, blueocean.OrderState{}))
	st, err = s.Get(hash)
	require.NoError(t, err)
	assert.False(t, st.Approved)
	assert.False(t, st.Finalized)
}

func TestBadgerStoreIsolatesHashes(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set(common.HexToHash("0x03"), blueocean.OrderState{Finalized: true}))
	st, err := s.Get(common.HexToHash("0x04"))
	require.NoError(t, err)
	assert.False(t, st.Finalized)
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	hash := common.HexToHash("0x05")

	s, err := OpenBadgerOrderStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(hash, blueocean.OrderState{Approved: true, Finalized: true}))
	require.NoError(t, s.Close())

	s, err = OpenBadgerOrderStore(dir)
	require.NoError(t, err)
	defer s.Close()

	st, err := s.Get(hash)
	require.NoError(t, err)
	assert.True(t, st.Approved)
	assert.True(t, st.Finalized)
}
