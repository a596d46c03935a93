package chain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signature related errors
var (
	ErrInvalidRecoveryID = errors.New("invalid signature recovery id")
	ErrEmptySignature    = errors.New("empty signature")
)

// Signature is a (v, r, s) secp256k1 signature over an order's
// hash-to-sign digest. The zero value means "no signature supplied".
type Signature struct {
	V uint8
	R [32]byte
	S [32]byte
}

// IsZero reports whether the signature is entirely unset.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

// RecoverSigner recovers the address that produced sig over hash. V is
// accepted in both raw (0/1) and Ethereum (27/28) form.
func RecoverSigner(hash common.Hash, sig Signature) (common.Address, error) {
	if sig.IsZero() {
		return common.Address{}, ErrEmptySignature
	}
	v := sig.V
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return common.Address{}, ErrInvalidRecoveryID
	}

	raw := make([]byte, crypto.SignatureLength)
	copy(raw[:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = v

	pub, err := crypto.SigToPub(hash.Bytes(), raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// SignHash signs hash with key and returns the signature with V in
// Ethereum form (27/28).
func SignHash(hash common.Hash, key *ecdsa.PrivateKey) (Signature, error) {
	raw, err := crypto.Sign(hash.Bytes(), key)
	if err != nil {
		return Signature{}, fmt.Errorf("failed to sign hash: %w", err)
	}
	var sig Signature
	copy(sig.R[:], raw[:32])
	copy(sig.S[:], raw[32:64])
	sig.V = raw[64] + 27
	return sig, nil
}
