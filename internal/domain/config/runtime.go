package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into adapters and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot  string
	ArtifactsDir string

	// Network and signer replace any ambient "current network" lookup
	Network    *Network
	PrivateKey string

	// Transaction settings
	GasLimit       uint64 // 0 means estimate
	ConfirmTimeout time.Duration
	PollInterval   time.Duration

	LogLevel string

	// Resolved configurations
	FoundryConfig *FoundryConfig
}

// Network represents network configuration
type Network struct {
	Name    string `json:"name"`
	RPCURL  string `json:"rpcUrl"`
	ChainID uint64 `json:"chainId,omitempty"` // 0 skips the chain ID check
}
