package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol = common.HexToAddress("0x0000000000000000000000000000000000000ca1")

	tokenAddr      = common.HexToAddress("0x0000000000000000000000000000000000000202")
	collectionAddr = common.HexToAddress("0x0000000000000000000000000000000000000201")
)

func TestNativeTransfer(t *testing.T) {
	w := NewWorld()
	w.Mint(alice, big.NewInt(100))

	require.NoError(t, w.Transfer(alice, bob, big.NewInt(40)))
	assert.Zero(t, w.BalanceOf(alice).Cmp(big.NewInt(60)))
	assert.Zero(t, w.BalanceOf(bob).Cmp(big.NewInt(40)))
}

func TestNativeTransferInsufficient(t *testing.T) {
	w := NewWorld()
	w.Mint(alice, big.NewInt(10))

	assert.ErrorIs(t, w.Transfer(alice, bob, big.NewInt(11)), ErrInsufficientBalance)
	assert.ErrorIs(t, w.Transfer(carol, bob, big.NewInt(1)), ErrInsufficientBalance)
	assert.ErrorIs(t, w.Transfer(alice, bob, big.NewInt(-1)), ErrInsufficientBalance)
}

func TestNativeTransferZeroIsNoop(t *testing.T) {
	w := NewWorld()
	require.NoError(t, w.Transfer(alice, bob, big.NewInt(0)))
	require.NoError(t, w.Transfer(alice, bob, nil))
}

func TestSnapshotRevertNative(t *testing.T) {
	w := NewWorld()
	w.Mint(alice, big.NewInt(100))
	w.Commit()

	snap := w.Snapshot()
	require.NoError(t, w.Transfer(alice, bob, big.NewInt(30)))
	require.NoError(t, w.Transfer(bob, carol, big.NewInt(10)))

	w.RevertToSnapshot(snap)
	assert.Zero(t, w.BalanceOf(alice).Cmp(big.NewInt(100)))
	assert.Zero(t, w.BalanceOf(bob).Sign())
	assert.Zero(t, w.BalanceOf(carol).Sign())
}

func TestSnapshotRevertSpansLedgers(t *testing.T) {
	w := NewWorld()
	w.Mint(alice, big.NewInt(100))
	token := w.Token(tokenAddr)
	token.Mint(alice, big.NewInt(50))
	nft := w.NFT(collectionAddr)
	require.NoError(t, nft.Mint(alice, big.NewInt(1)))
	w.Commit()

	snap := w.Snapshot()
	require.NoError(t, w.Transfer(alice, bob, big.NewInt(10)))
	require.NoError(t, token.Transfer(alice, bob, big.NewInt(20)))
	require.NoError(t, nft.TransferFrom(alice, alice, bob, big.NewInt(1)))

	w.RevertToSnapshot(snap)
	assert.Zero(t, w.BalanceOf(alice).Cmp(big.NewInt(100)))
	assert.Zero(t, token.BalanceOf(alice).Cmp(big.NewInt(50)))
	assert.Zero(t, token.BalanceOf(bob).Sign())
	owner, err := nft.OwnerOf(big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, alice, owner)
}

func TestCommitMakesSnapshotPermanent(t *testing.T) {
	w := NewWorld()
	w.Mint(alice, big.NewInt(100))

	snap := w.Snapshot()
	require.NoError(t, w.Transfer(alice, bob, big.NewInt(30)))
	w.Commit()

	// The journal was discarded, so the old snapshot no longer undoes
	// anything.
	w.RevertToSnapshot(snap)
	assert.Zero(t, w.BalanceOf(bob).Cmp(big.NewInt(30)))
}

func TestNestedSnapshots(t *testing.T) {
	w := NewWorld()
	w.Mint(alice, big.NewInt(100))
	w.Commit()

	outer := w.Snapshot()
	require.NoError(t, w.Transfer(alice, bob, big.NewInt(10)))
	inner := w.Snapshot()
	require.NoError(t, w.Transfer(alice, bob, big.NewInt(10)))

	w.RevertToSnapshot(inner)
	assert.Zero(t, w.BalanceOf(bob).Cmp(big.NewInt(10)))

	w.RevertToSnapshot(outer)
	assert.Zero(t, w.BalanceOf(bob).Sign())
}

func TestTokenTransferFromConsumesAllowance(t *testing.T) {
	w := NewWorld()
	token := w.Token(tokenAddr)
	token.Mint(alice, big.NewInt(100))
	token.Approve(alice, carol, big.NewInt(60))

	require.NoError(t, token.TransferFrom(carol, alice, bob, big.NewInt(40)))
	assert.Zero(t, token.BalanceOf(bob).Cmp(big.NewInt(40)))
	assert.Zero(t, token.Allowance(alice, carol).Cmp(big.NewInt(20)))

	err := token.TransferFrom(carol, alice, bob, big.NewInt(30))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
}

func TestTokenTransferFromSelfBypassesAllowance(t *testing.T) {
	w := NewWorld()
	token := w.Token(tokenAddr)
	token.Mint(alice, big.NewInt(100))

	require.NoError(t, token.TransferFrom(alice, alice, bob, big.NewInt(10)))
	assert.Zero(t, token.BalanceOf(bob).Cmp(big.NewInt(10)))
}

func TestTokenAllowanceRevertsWithSnapshot(t *testing.T) {
	w := NewWorld()
	token := w.Token(tokenAddr)
	token.Mint(alice, big.NewInt(100))
	token.Approve(alice, carol, big.NewInt(50))
	w.Commit()

	snap := w.Snapshot()
	require.NoError(t, token.TransferFrom(carol, alice, bob, big.NewInt(50)))
	assert.Zero(t, token.Allowance(alice, carol).Sign())

	w.RevertToSnapshot(snap)
	assert.Zero(t, token.Allowance(alice, carol).Cmp(big.NewInt(50)))
	assert.Zero(t, token.BalanceOf(alice).Cmp(big.NewInt(100)))
}

func TestNFTMintAndOwnership(t *testing.T) {
	w := NewWorld()
	nft := w.NFT(collectionAddr)

	require.NoError(t, nft.Mint(alice, big.NewInt(7)))
	assert.ErrorIs(t, nft.Mint(bob, big.NewInt(7)), ErrTokenExists)

	owner, err := nft.OwnerOf(big.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, alice, owner)

	_, err = nft.OwnerOf(big.NewInt(8))
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestNFTTransferAuthorization(t *testing.T) {
	w := NewWorld()
	nft := w.NFT(collectionAddr)
	require.NoError(t, nft.Mint(alice, big.NewInt(7)))

	// A stranger cannot move the token.
	err := nft.TransferFrom(carol, alice, bob, big.NewInt(7))
	assert.ErrorIs(t, err, ErrNotAuthorizedOperator)

	// Wrong from fails even for the owner.
	err = nft.TransferFrom(alice, bob, carol, big.NewInt(7))
	assert.ErrorIs(t, err, ErrNotTokenOwner)

	// An approved operator can.
	nft.SetApprovalForAll(alice, carol, true)
	assert.True(t, nft.IsApprovedForAll(alice, carol))
	require.NoError(t, nft.TransferFrom(carol, alice, bob, big.NewInt(7)))

	owner, err := nft.OwnerOf(big.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
}

func TestNFTApprovalRevocation(t *testing.T) {
	w := NewWorld()
	nft := w.NFT(collectionAddr)
	require.NoError(t, nft.Mint(alice, big.NewInt(7)))

	nft.SetApprovalForAll(alice, carol, true)
	nft.SetApprovalForAll(alice, carol, false)
	err := nft.TransferFrom(carol, alice, bob, big.NewInt(7))
	assert.ErrorIs(t, err, ErrNotAuthorizedOperator)
}
