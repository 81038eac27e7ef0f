package blockchain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crowdmint/deployer/internal/domain"
)

// checkChainID returns the chain served by the backend, failing when it is not
// the expected one. An expected chain ID of 0 accepts any chain.
func checkChainID(ctx context.Context, backend Backend, expected uint64) (*big.Int, error) {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	if expected != 0 && chainID.Uint64() != expected {
		return nil, fmt.Errorf("%w: RPC endpoint serves chain %d, expected %d",
			domain.ErrNetworkMismatch, chainID.Uint64(), expected)
	}

	return chainID, nil
}

// checkDeploymentExists fails unless there is code at address
func checkDeploymentExists(ctx context.Context, backend Backend, address common.Address) error {
	code, err := backend.CodeAt(ctx, address, nil)
	if err != nil {
		return fmt.Errorf("failed to read code at %s: %w", address.Hex(), err)
	}

	// A mined creation without code means the constructor returned nothing
	if len(code) == 0 {
		return fmt.Errorf("%w at %s", domain.ErrNoContractCode, address.Hex())
	}

	return nil
}
