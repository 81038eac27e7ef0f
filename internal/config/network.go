package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/crowdmint/deployer/internal/domain/config"
)

// ErrUnknownNetwork is returned when a network name has no RPC endpoint
var ErrUnknownNetwork = errors.New("unknown network")

// LocalRPCURL is the JSON-RPC endpoint of a local Hardhat or Anvil node
const LocalRPCURL = "http://127.0.0.1:8545"

// builtinNetworks are available without any foundry.toml entry
var builtinNetworks = map[string]string{
	"localhost": LocalRPCURL,
	"hardhat":   LocalRPCURL,
	"anvil":     LocalRPCURL,
}

// NetworkResolver resolves network names to endpoints
type NetworkResolver struct {
	foundryConfig *config.FoundryConfig
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(foundryConfig *config.FoundryConfig) *NetworkResolver {
	return &NetworkResolver{foundryConfig: foundryConfig}
}

// Resolve resolves a network name to its configuration. An explicit rpcURL
// takes precedence over foundry.toml and the built-in local networks.
func (r *NetworkResolver) Resolve(name, rpcURL string, chainID uint64) (*config.Network, error) {
	if name == "" {
		name = DefaultNetwork
	}

	if rpcURL != "" {
		return &config.Network{Name: name, RPCURL: rpcURL, ChainID: chainID}, nil
	}

	if r.foundryConfig != nil {
		if url, ok := r.foundryConfig.RpcEndpoints[name]; ok {
			if ref, unresolved := DetectEnvVar(url); unresolved {
				return nil, fmt.Errorf("rpc endpoint for network %s references %s which is not set (try %s in .env)",
					name, ref, GenerateEnvVarName(name))
			}
			return &config.Network{Name: name, RPCURL: url, ChainID: chainID}, nil
		}
	}

	if url, ok := builtinNetworks[name]; ok {
		return &config.Network{Name: name, RPCURL: url, ChainID: chainID}, nil
	}

	return nil, fmt.Errorf("%w: %s (known: %v)", ErrUnknownNetwork, name, r.Names())
}

// Names returns all resolvable network names, sorted
func (r *NetworkResolver) Names() []string {
	names := lo.Keys(builtinNetworks)
	if r.foundryConfig != nil {
		names = append(names, lo.Keys(r.foundryConfig.RpcEndpoints)...)
	}
	names = lo.Uniq(names)
	sort.Strings(names)
	return names
}
