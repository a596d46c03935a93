package blueocean

import (
	"bytes"
	"fmt"
)

// GuardedArrayReplace copies array and, for every bit set in mask, takes
// the corresponding bit from desired instead. All three slices must have
// the same length; anything else fails closed rather than truncating.
func GuardedArrayReplace(array, desired, mask []byte) ([]byte, error) {
	if len(array) != len(desired) {
		return nil, fmt.Errorf("%w: array %d bytes, desired %d bytes", ErrLengthMismatch, len(array), len(desired))
	}
	if len(array) != len(mask) {
		return nil, fmt.Errorf("%w: array %d bytes, mask %d bytes", ErrLengthMismatch, len(array), len(mask))
	}
	out := make([]byte, len(array))
	for i := range array {
		out[i] = array[i]&^mask[i] | desired[i]&mask[i]
	}
	return out, nil
}

// OrderCalldataCanMatch decides whether buy and sell calldata, each with
// its own replacement pattern, describe the same logical call. A side with
// an empty pattern commits to its calldata byte for byte; a side with a
// pattern borrows the masked bytes from its counterpart before comparison.
func OrderCalldataCanMatch(buyCalldata, buyPattern, sellCalldata, sellPattern []byte) (bool, error) {
	if len(buyCalldata) != len(sellCalldata) {
		return false, fmt.Errorf("%w: buy calldata %d bytes, sell calldata %d bytes",
			ErrLengthMismatch, len(buyCalldata), len(sellCalldata))
	}
	buy := buyCalldata
	if len(buyPattern) > 0 {
		replaced, err := GuardedArrayReplace(buyCalldata, sellCalldata, buyPattern)
		if err != nil {
			return false, err
		}
		buy = replaced
	}
	sell := sellCalldata
	if len(sellPattern) > 0 {
		replaced, err := GuardedArrayReplace(sellCalldata, buyCalldata, sellPattern)
		if err != nil {
			return false, err
		}
		sell = replaced
	}
	return bytes.Equal(buy, sell), nil
}

// matchCalldata reconciles the two orders' calldata into the single
// canonical call to execute, or fails when they cannot be reconciled.
func matchCalldata(buyCalldata, buyPattern, sellCalldata, sellPattern []byte) ([]byte, error) {
	if len(buyCalldata) != len(sellCalldata) {
		return nil, fmt.Errorf("%w: buy calldata %d bytes, sell calldata %d bytes",
			ErrLengthMismatch, len(buyCalldata), len(sellCalldata))
	}
	buy := buyCalldata
	if len(buyPattern) > 0 {
		replaced, err := GuardedArrayReplace(buyCalldata, sellCalldata, buyPattern)
		if err != nil {
			return nil, err
		}
		buy = replaced
	}
	sell := sellCalldata
	if len(sellPattern) > 0 {
		replaced, err := GuardedArrayReplace(sellCalldata, buyCalldata, sellPattern)
		if err != nil {
			return nil, err
		}
		sell = replaced
	}
	if !bytes.Equal(buy, sell) {
		return nil, ErrCalldataMismatch
	}
	return buy, nil
}
