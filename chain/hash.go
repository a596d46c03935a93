package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// signedMessagePrefix namespaces order signatures against raw-transaction
// replay; the "32" is the byte length of the digest that follows.
const signedMessagePrefix = "\x19Ethereum Signed Message:\n32"

// HashOrder computes the canonical order hash: keccak256 over the tightly
// packed encoding of every order field, in declaration order. Addresses
// pack to 20 bytes, uint256 fields to 32 big-endian bytes, enums to a
// single byte, and dynamic byte fields to their raw contents.
func HashOrder(o *Order) common.Hash {
	return crypto.Keccak256Hash(packOrder(o))
}

// HashToSign computes the prefixed digest the maker actually signs:
// keccak256 of the signed-message prefix concatenated with the order hash.
func HashToSign(o *Order) common.Hash {
	orderHash := HashOrder(o)
	return crypto.Keccak256Hash([]byte(signedMessagePrefix), orderHash.Bytes())
}

func packOrder(o *Order) []byte {
	// 3 addresses + 4 fee words + fee recipient + 3 enum bytes + target +
	// howToCall byte + static target + payment token + 5 price/time words,
	// plus the dynamic fields.
	buf := make([]byte, 0,
		7*common.AddressLength+9*common.HashLength+4+
			len(o.Calldata)+len(o.ReplacementPattern)+len(o.StaticExtradata))

	buf = append(buf, o.Exchange.Bytes()...)
	buf = append(buf, o.Maker.Bytes()...)
	buf = append(buf, o.Taker.Bytes()...)
	buf = appendUint256(buf, o.MakerRelayerFee)
	buf = appendUint256(buf, o.TakerRelayerFee)
	buf = appendUint256(buf, o.MakerProtocolFee)
	buf = appendUint256(buf, o.TakerProtocolFee)
	buf = append(buf, o.FeeRecipient.Bytes()...)
	buf = append(buf, byte(o.FeeMethod))
	buf = append(buf, byte(o.Side))
	buf = append(buf, byte(o.SaleKind))
	buf = append(buf, o.Target.Bytes()...)
	buf = append(buf, byte(o.HowToCall))
	buf = append(buf, o.Calldata...)
	buf = append(buf, o.ReplacementPattern...)
	buf = append(buf, o.StaticTarget.Bytes()...)
	buf = append(buf, o.StaticExtradata...)
	buf = append(buf, o.PaymentToken.Bytes()...)
	buf = appendUint256(buf, o.BasePrice)
	buf = appendUint256(buf, o.Extra)
	buf = appendUint256(buf, o.ListingTime)
	buf = appendUint256(buf, o.ExpirationTime)
	buf = appendUint256(buf, o.Salt)
	return buf
}

// appendUint256 packs x as a 32-byte big-endian word; nil packs as zero.
func appendUint256(buf []byte, x *big.Int) []byte {
	var word [32]byte
	if x != nil {
		x.FillBytes(word[:])
	}
	return append(buf, word[:]...)
}
