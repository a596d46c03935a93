// Package blueocean implements an order-matching exchange engine for
// fungible tokens and NFTs: makers sign orders off-line, and any relayer
// submits a compatible buy/sell pair for atomic settlement through
// maker-authorized proxies.
package blueocean

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// InverseBasisPoint is the fee denominator: a fee field of 100 charges
// 1% of the settlement price.
const InverseBasisPoint = 10000

// Config is the environment-supplied runtime configuration. Engine
// construction takes explicit Params; Config is the edge layer that feeds
// them in deployments.
type Config struct {
	// MinimumMakerProtocolFee is the global maker protocol fee floor,
	// in basis points.
	MinimumMakerProtocolFee uint64 `envconfig:"MINIMUM_MAKER_PROTOCOL_FEE" default:"0"`
	// MinimumTakerProtocolFee is the global taker protocol fee floor.
	MinimumTakerProtocolFee uint64 `envconfig:"MINIMUM_TAKER_PROTOCOL_FEE" default:"0"`
	// ProtocolFeeRecipient receives protocol fees under the separate
	// fee method, hex encoded.
	ProtocolFeeRecipient string `envconfig:"PROTOCOL_FEE_RECIPIENT"`
	// RPCURL is an optional node endpoint for static precondition
	// checks.
	RPCURL string `envconfig:"RPC_URL"`
	// FeedListenAddr is an optional listen address for the websocket
	// event feed.
	FeedListenAddr string `envconfig:"FEED_LISTEN_ADDR"`
	// LogLevel is a logrus level name.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig reads configuration from BLUEOCEAN_-prefixed environment
// variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("blueocean", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
