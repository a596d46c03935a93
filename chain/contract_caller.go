package chain

import (
	"context"
	"fmt"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// defaultStaticCallTimeout bounds a single precondition RPC round trip.
const defaultStaticCallTimeout = 10 * time.Second

// StaticCaller evaluates order static preconditions against a live node:
// the extradata and matched calldata are concatenated and sent as a
// read-only eth_call to the order's static target. The precondition holds
// when the call executes without reverting.
type StaticCaller struct {
	client  *ethclient.Client
	timeout time.Duration
}

// DialStaticCaller connects to an RPC endpoint and returns a StaticCaller
// backed by it.
func DialStaticCaller(rpcURL string) (*StaticCaller, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	return NewStaticCaller(client), nil
}

// NewStaticCaller wraps an existing client.
func NewStaticCaller(client *ethclient.Client) *StaticCaller {
	return &StaticCaller{client: client, timeout: defaultStaticCallTimeout}
}

// Check reports whether the static precondition at target holds for the
// given calldata and extradata.
func (sc *StaticCaller) Check(target common.Address, calldata, extradata []byte) bool {
	combined := make([]byte, 0, len(extradata)+len(calldata))
	combined = append(combined, extradata...)
	combined = append(combined, calldata...)

	ctx, cancel := context.WithTimeout(context.Background(), sc.timeout)
	defer cancel()

	_, err := sc.client.CallContract(ctx, ethereum.CallMsg{
		To:   &target,
		Data: combined,
	}, nil)
	return err == nil
}

// Close releases the underlying RPC connection.
func (sc *StaticCaller) Close() {
	sc.client.Close()
}
