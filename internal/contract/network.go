package contract

import (
	"fmt"
	"strings"
)

// NetworkID selects the execution context a Simulator runs in.
//
// The network never changes the initial state or the transition rules. It
// is carried so that callers building transactions on top of a Simulator
// know which environment the state belongs to.
type NetworkID string

const (
	// NetworkUndeployed is the local, never-deployed test context.
	NetworkUndeployed NetworkID = "undeployed"
	// NetworkDevNet is the shared development network.
	NetworkDevNet NetworkID = "devnet"
	// NetworkTestNet is the public test network.
	NetworkTestNet NetworkID = "testnet"
	// NetworkMainNet is the production network.
	NetworkMainNet NetworkID = "mainnet"
)

// ValidNetworks lists the accepted network identifiers in a stable order.
var ValidNetworks = []NetworkID{
	NetworkUndeployed,
	NetworkDevNet,
	NetworkTestNet,
	NetworkMainNet,
}

// ParseNetworkID converts a user supplied name into a NetworkID.
// Matching is case-insensitive; the empty string selects NetworkUndeployed.
func ParseNetworkID(s string) (NetworkID, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return NetworkUndeployed, nil
	}
	for _, n := range ValidNetworks {
		if string(n) == name {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown network %q: must be one of %v", s, ValidNetworks)
}

func (n NetworkID) String() string {
	return string(n)
}

// Config is the runtime context a Simulator is constructed with.
// It is passed explicitly; there is no process-wide network setting.
type Config struct {
	Network NetworkID
}

// DefaultConfig returns the configuration used by tests: the undeployed network.
func DefaultConfig() Config {
	return Config{Network: NetworkUndeployed}
}

// normalize fills defaults so a zero Config behaves like DefaultConfig.
func (c Config) normalize() Config {
	if c.Network == "" {
		c.Network = NetworkUndeployed
	}
	return c
}
