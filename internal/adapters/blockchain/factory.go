package blockchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/crowdmint/deployer/internal/domain"
	"github.com/crowdmint/deployer/internal/domain/config"
	"github.com/crowdmint/deployer/internal/usecase"
)

const (
	// gasHeadroomPercent is added on top of eth_estimateGas
	gasHeadroomPercent = 20

	defaultPollInterval = 2 * time.Second
)

// Options control how deployments are sent and awaited
type Options struct {
	ChainID        uint64 // expected chain, 0 accepts any
	GasLimit       uint64 // 0 means estimate
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

// FactoryResolver builds contract factories from compiled artifacts
type FactoryResolver struct {
	artifacts usecase.ArtifactRepository
	backend   Backend
	signer    *Signer
	opts      Options
	log       *slog.Logger
}

// NewFactoryResolver creates a resolver using runtime configuration
func NewFactoryResolver(
	cfg *config.RuntimeConfig,
	artifacts usecase.ArtifactRepository,
	backend Backend,
	signer *Signer,
	log *slog.Logger,
) *FactoryResolver {
	opts := Options{
		GasLimit:       cfg.GasLimit,
		ConfirmTimeout: cfg.ConfirmTimeout,
		PollInterval:   cfg.PollInterval,
	}
	if cfg.Network != nil {
		opts.ChainID = cfg.Network.ChainID
	}
	return NewFactoryResolverWithOptions(artifacts, backend, signer, opts, log)
}

// NewFactoryResolverWithOptions creates a resolver with explicit options
func NewFactoryResolverWithOptions(
	artifacts usecase.ArtifactRepository,
	backend Backend,
	signer *Signer,
	opts Options,
	log *slog.Logger,
) *FactoryResolver {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	return &FactoryResolver{
		artifacts: artifacts,
		backend:   backend,
		signer:    signer,
		opts:      opts,
		log:       log,
	}
}

// GetContractFactory loads the artifact for contractName and prepares a factory for it
func (r *FactoryResolver) GetContractFactory(ctx context.Context, contractName string) (usecase.ContractFactory, error) {
	contract, err := r.artifacts.GetContract(ctx, contractName)
	if err != nil {
		return nil, err
	}

	parsed, err := abi.JSON(bytes.NewReader(contract.Artifact.ABI))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ABI in %s: %w", domain.ErrArtifactUnavailable, contract.ArtifactPath, err)
	}

	bytecode, err := contract.Artifact.Bytecode.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid bytecode in %s: %w", domain.ErrArtifactUnavailable, contract.ArtifactPath, err)
	}

	r.log.Debug("resolved contract factory",
		"contract", contract.Key(),
		"artifact", contract.ArtifactPath,
		"constructorInputs", len(parsed.Constructor.Inputs),
		"bytecodeSize", len(bytecode),
	)

	return &ContractFactory{
		name:     contract.Name,
		abi:      parsed,
		bytecode: bytecode,
		backend:  r.backend,
		signer:   r.signer,
		opts:     r.opts,
		log:      r.log,
	}, nil
}

// ContractFactory deploys one compiled contract. It sends EIP-1559 transactions,
// or legacy ones on chains whose blocks carry no base fee.
type ContractFactory struct {
	name     string
	abi      abi.ABI
	bytecode []byte
	backend  Backend
	signer   *Signer
	opts     Options
	log      *slog.Logger
}

// Deploy packs the constructor arguments, signs and sends the creation transaction
func (f *ContractFactory) Deploy(ctx context.Context, args ...any) (*domain.PendingDeployment, error) {
	// Arguments are checked before touching the network
	input, err := f.abi.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArguments, err)
	}
	data := append(slices.Clone(f.bytecode), input...)

	chainID, err := checkChainID(ctx, f.backend, f.opts.ChainID)
	if err != nil {
		return nil, err
	}

	from := f.signer.Address()

	nonce, err := f.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	fees, err := f.suggestFees(ctx)
	if err != nil {
		return nil, err
	}

	gas := f.opts.GasLimit
	if gas == 0 {
		estimated, err := f.backend.EstimateGas(ctx, fees.callMsg(from, data))
		if err != nil {
			return nil, classifySendError(fmt.Errorf("gas estimation failed: %w", err))
		}
		gas = estimated + estimated*gasHeadroomPercent/100
	}

	tx := fees.tx(chainID, nonce, gas, data)

	signed, err := f.signer.SignTx(tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := f.backend.SendTransaction(ctx, signed); err != nil {
		return nil, classifySendError(err)
	}

	f.log.Debug("sent deployment transaction",
		"contract", f.name,
		"tx", signed.Hash().Hex(),
		"nonce", nonce,
		"type", signed.Type(),
		"gas", gas,
		"gasPrice", fees.gasPrice,
		"feeCap", fees.feeCap,
		"tipCap", fees.tipCap,
	)

	return &domain.PendingDeployment{
		ContractName: f.name,
		TxHash:       signed.Hash().Hex(),
		Address:      crypto.CreateAddress(from, nonce).Hex(),
		From:         from.Hex(),
		Nonce:        nonce,
		ChainID:      chainID.Uint64(),
	}, nil
}

// txFees holds either a legacy gas price or an EIP-1559 tip and fee cap
type txFees struct {
	gasPrice *big.Int
	tipCap   *big.Int
	feeCap   *big.Int
}

// suggestFees prices the transaction from the latest header. Without a base
// fee the chain predates London and only takes a gas price.
func (f *ContractFactory) suggestFees(ctx context.Context) (*txFees, error) {
	head, err := f.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}

	if head.BaseFee == nil {
		gasPrice, err := f.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}
		return &txFees{gasPrice: gasPrice}, nil
	}

	tipCap, err := f.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas tip cap: %w", err)
	}

	// 2 * base fee + tip
	feeCap := new(big.Int).Mul(head.BaseFee, big.NewInt(2))
	feeCap.Add(feeCap, tipCap)

	return &txFees{tipCap: tipCap, feeCap: feeCap}, nil
}

func (p *txFees) legacy() bool {
	return p.gasPrice != nil
}

func (p *txFees) callMsg(from common.Address, data []byte) ethereum.CallMsg {
	if p.legacy() {
		return ethereum.CallMsg{From: from, GasPrice: p.gasPrice, Data: data}
	}
	return ethereum.CallMsg{From: from, GasFeeCap: p.feeCap, GasTipCap: p.tipCap, Data: data}
}

func (p *txFees) tx(chainID *big.Int, nonce, gas uint64, data []byte) *types.Transaction {
	if p.legacy() {
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: p.gasPrice,
			Gas:      gas,
			Data:     data,
		})
	}
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: p.tipCap,
		GasFeeCap: p.feeCap,
		Gas:       gas,
		Data:      data,
	})
}

// WaitDeployed polls for the receipt until it shows up or the confirm timeout expires
func (f *ContractFactory) WaitDeployed(ctx context.Context, pending *domain.PendingDeployment) (*domain.Confirmation, error) {
	if f.opts.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.ConfirmTimeout)
		defer cancel()
	}

	txHash := common.HexToHash(pending.TxHash)

	ticker := time.NewTicker(f.opts.PollInterval)
	defer ticker.Stop()

	var receipt *types.Receipt
	for {
		r, err := f.backend.TransactionReceipt(ctx, txHash)
		if err == nil && r != nil {
			receipt = r
			break
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil {
			f.log.Debug("receipt lookup failed, retrying", "tx", pending.TxHash, "error", err)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: no receipt for %s after %s", domain.ErrConfirmationTimeout, pending.TxHash, f.opts.ConfirmTimeout)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: status %d", domain.ErrTransactionReverted, receipt.Status)
	}

	address := receipt.ContractAddress
	if address == (common.Address{}) {
		address = common.HexToAddress(pending.Address)
	}

	if err := checkDeploymentExists(ctx, f.backend, address); err != nil {
		return nil, err
	}

	confirmation := &domain.Confirmation{
		ContractAddress: address.Hex(),
		GasUsed:         receipt.GasUsed,
	}
	if receipt.BlockNumber != nil {
		confirmation.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return confirmation, nil
}

// classifySendError maps node errors onto submission sentinels
func classifySendError(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "insufficient funds") {
		return fmt.Errorf("%w: %w", domain.ErrInsufficientFunds, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrTransactionRejected, err)
}

var (
	_ usecase.ContractFactoryResolver = (*FactoryResolver)(nil)
	_ usecase.ContractFactory         = (*ContractFactory)(nil)
)
