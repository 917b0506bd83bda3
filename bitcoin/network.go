// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package bitcoin

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

// Network defines supported bitcoin network tag.
type Network string

const (
	// NetworkMainnet defines the main bitcoin network.
	NetworkMainnet Network = "Mainnet"
	// NetworkTestnet defines the testnet3 bitcoin network.
	NetworkTestnet Network = "Testnet"
	// NetworkSignet defines the signet bitcoin network.
	NetworkSignet Network = "Signet"
	// NetworkMutinynet defines the Mutiny signet fork.
	// It shares signet address encoding parameters.
	NetworkMutinynet Network = "Mutinynet"
)

// ParseNetwork parses a network tag from a string.
func ParseNetwork(s string) (Network, error) {
	switch Network(s) {
	case NetworkMainnet, NetworkTestnet, NetworkSignet, NetworkMutinynet:
		return Network(s), nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedNetwork, s)
}

// ChainParams returns chain parameters for the network tag.
func (n Network) ChainParams() (*chaincfg.Params, error) {
	switch n {
	case NetworkMainnet:
		return &chaincfg.MainNetParams, nil
	case NetworkTestnet:
		return &chaincfg.TestNet3Params, nil
	case NetworkSignet, NetworkMutinynet:
		return &chaincfg.SigNetParams, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedNetwork, string(n))
}
