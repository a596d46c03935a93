package chain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Calldata helper errors
var (
	ErrShortCalldata     = errors.New("calldata shorter than a method selector")
	ErrSelectorMismatch  = errors.New("calldata selector is not transferFrom")
	ErrArgumentOutOfBand = errors.New("argument index out of calldata range")
)

// Minimal transfer ABI shared by ERC-20 and ERC-721; transferFrom has the
// same shape for both (the last word is an amount or a token id).
const transferFromABIJSON = `[
	{
		"constant": false,
		"inputs": [
			{"name": "from", "type": "address"},
			{"name": "to", "type": "address"},
			{"name": "value", "type": "uint256"}
		],
		"name": "transferFrom",
		"outputs": [],
		"type": "function"
	}
]`

var transferFromABI = mustParseABI(transferFromABIJSON)

func mustParseABI(jsonDef string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(jsonDef))
	if err != nil {
		panic("invalid embedded ABI: " + err.Error())
	}
	return parsed
}

// TransferFromCalldata encodes transferFrom(from, to, valueOrID) calldata
// suitable for both ERC-20 amounts and ERC-721 token ids.
func TransferFromCalldata(from, to common.Address, valueOrID *big.Int) ([]byte, error) {
	data, err := transferFromABI.Pack("transferFrom", from, to, orZero(valueOrID))
	if err != nil {
		return nil, fmt.Errorf("failed to encode transferFrom: %w", err)
	}
	return data, nil
}

// DecodeTransferFrom decodes transferFrom calldata produced by
// TransferFromCalldata (or any standards-conforming encoder).
func DecodeTransferFrom(calldata []byte) (from, to common.Address, valueOrID *big.Int, err error) {
	method := transferFromABI.Methods["transferFrom"]
	if len(calldata) < 4 {
		return common.Address{}, common.Address{}, nil, ErrShortCalldata
	}
	if string(calldata[:4]) != string(method.ID) {
		return common.Address{}, common.Address{}, nil, ErrSelectorMismatch
	}
	args, err := method.Inputs.Unpack(calldata[4:])
	if err != nil {
		return common.Address{}, common.Address{}, nil, fmt.Errorf("failed to decode transferFrom: %w", err)
	}
	return args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int), nil
}

// WildcardArgumentPattern builds a replacement pattern of the given
// calldata length with the 32-byte word of argument argIndex fully
// wildcarded, so the counter-order may fill that argument in.
func WildcardArgumentPattern(calldataLen, argIndex int) ([]byte, error) {
	start := 4 + 32*argIndex
	if argIndex < 0 || start+32 > calldataLen {
		return nil, ErrArgumentOutOfBand
	}
	pattern := make([]byte, calldataLen)
	for i := start; i < start+32; i++ {
		pattern[i] = 0xff
	}
	return pattern, nil
}
