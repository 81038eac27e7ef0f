package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/crowdmint/deployer/internal/domain/config"
)

// Backend is the part of the JSON-RPC client used for deployments.
// *ethclient.Client satisfies it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

var _ Backend = (*ethclient.Client)(nil)

// ProvideClient dials the configured RPC endpoint. The returned cleanup closes it.
func ProvideClient(cfg *config.RuntimeConfig) (*ethclient.Client, func(), error) {
	if cfg.Network == nil || cfg.Network.RPCURL == "" {
		return nil, nil, errors.New("no RPC endpoint configured (set DEPLOY_RPC_URL or DEPLOY_NETWORK)")
	}

	client, err := ethclient.DialContext(context.Background(), cfg.Network.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", cfg.Network.Name, err)
	}

	return client, client.Close, nil
}

// Signer holds the deployer key
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner creates the deployer signer from runtime configuration
func NewSigner(cfg *config.RuntimeConfig) (*Signer, error) {
	return ParsePrivateKey(cfg.PrivateKey)
}

// ParsePrivateKey parses a hex private key with or without 0x prefix
func ParsePrivateKey(hexKey string) (*Signer, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, errors.New("no deployer private key configured (set DEPLOY_PRIVATE_KEY)")
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the deployer address
func (s *Signer) Address() common.Address {
	return s.address
}

// SignTx signs a transaction for the given chain
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}
