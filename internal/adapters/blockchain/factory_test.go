package blockchain

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdmint/deployer/internal/domain"
	"github.com/crowdmint/deployer/internal/domain/models"
)

const nftMinterABI = `[{
	"type": "constructor",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "name_", "type": "string"},
		{"name": "symbol_", "type": "string"},
		{"name": "maxSupply_", "type": "uint256"},
		{"name": "mintPrice_", "type": "uint256"},
		{"name": "baseURI_", "type": "string"}
	]
}]`

var testBytecode = []byte{0x60, 0x80, 0x60, 0x40, 0x52}

// fakeBackend is an in-memory stand-in for the JSON-RPC client
type fakeBackend struct {
	mu sync.Mutex

	chainID     *big.Int
	nonce       uint64
	tipCap      *big.Int
	gasPrice    *big.Int
	baseFee     *big.Int
	gasEstimate uint64
	estimateErr error
	sendErr     error
	lastCall    ethereum.CallMsg

	// receipt is returned once receiptAfter lookups have come back empty
	receipt      *types.Receipt
	receiptAfter int
	lookups      int
	code         []byte

	sent []*types.Transaction
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		chainID:     big.NewInt(31337),
		nonce:       3,
		tipCap:      big.NewInt(1_000_000_000),
		gasPrice:    big.NewInt(20_000_000_000),
		baseFee:     big.NewInt(7),
		gasEstimate: 1_000_000,
		code:        []byte{0x60, 0x80},
	}
}

func (b *fakeBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return b.chainID, nil
}

func (b *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return b.nonce, nil
}

func (b *fakeBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return b.tipCap, nil
}

func (b *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return b.gasPrice, nil
}

func (b *fakeBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1), BaseFee: b.baseFee}, nil
}

func (b *fakeBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	b.lastCall = call
	if b.estimateErr != nil {
		return 0, b.estimateErr
	}
	return b.gasEstimate, nil
}

func (b *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return b.sendErr
	}
	b.sent = append(b.sent, tx)
	return nil
}

func (b *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.lookups++
	if b.receipt == nil || b.lookups <= b.receiptAfter {
		return nil, ethereum.NotFound
	}
	return b.receipt, nil
}

func (b *fakeBackend) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return b.code, nil
}

// fakeArtifacts serves a fixed set of contracts
type fakeArtifacts map[string]*models.Contract

func (f fakeArtifacts) GetContract(ctx context.Context, key string) (*models.Contract, error) {
	c, ok := f[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrContractNotFound, key)
	}
	return c, nil
}

func testArtifacts() fakeArtifacts {
	return fakeArtifacts{
		"NFTMinter": {
			Name:         "NFTMinter",
			Path:         "contracts/NFTMinter.sol",
			ArtifactPath: "contracts/NFTMinter.sol/NFTMinter.json",
			Artifact: &models.Artifact{
				ABI:      json.RawMessage(nftMinterABI),
				Bytecode: models.BytecodeObject{Object: "0x" + hex.EncodeToString(testBytecode)},
			},
		},
		"Crowdfund": {
			Name:         "Crowdfund",
			Path:         "contracts/Crowdfund.sol",
			ArtifactPath: "contracts/Crowdfund.sol/Crowdfund.json",
			Artifact: &models.Artifact{
				ABI:      json.RawMessage(`[]`),
				Bytecode: models.BytecodeObject{Object: "0x" + hex.EncodeToString(testBytecode)},
			},
		},
		"Broken": {
			Name: "Broken",
			Artifact: &models.Artifact{
				ABI:      json.RawMessage(`{not json`),
				Bytecode: models.BytecodeObject{Object: "0x60"},
			},
		},
	}
}

func testSigner(t *testing.T) *Signer {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer, err := ParsePrivateKey("0x" + hex.EncodeToString(crypto.FromECDSA(key)))
	require.NoError(t, err)
	return signer
}

func newTestResolver(t *testing.T, backend *fakeBackend, opts Options) (*FactoryResolver, *Signer) {
	t.Helper()
	signer := testSigner(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFactoryResolverWithOptions(testArtifacts(), backend, signer, opts, log), signer
}

func nftMinterArgs() []any {
	return []any{
		"Core NFT Collection",
		"CNFT",
		big.NewInt(1000),
		big.NewInt(10_000_000_000_000_000),
		"ipfs://CID/",
	}
}

func TestGetContractFactory(t *testing.T) {
	resolver, _ := newTestResolver(t, newFakeBackend(), Options{})
	ctx := context.Background()

	factory, err := resolver.GetContractFactory(ctx, "NFTMinter")
	require.NoError(t, err)
	require.NotNil(t, factory)

	_, err = resolver.GetContractFactory(ctx, "Unknown")
	assert.ErrorIs(t, err, domain.ErrContractNotFound)

	_, err = resolver.GetContractFactory(ctx, "Broken")
	assert.ErrorIs(t, err, domain.ErrArtifactUnavailable)
}

func TestDeploy(t *testing.T) {
	ctx := context.Background()

	t.Run("signs a creation transaction with packed constructor args", func(t *testing.T) {
		backend := newFakeBackend()
		resolver, signer := newTestResolver(t, backend, Options{ChainID: 31337})

		factory, err := resolver.GetContractFactory(ctx, "NFTMinter")
		require.NoError(t, err)

		pending, err := factory.Deploy(ctx, nftMinterArgs()...)
		require.NoError(t, err)

		require.Len(t, backend.sent, 1)
		tx := backend.sent[0]

		assert.Nil(t, tx.To())
		assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
		assert.Equal(t, uint64(3), tx.Nonce())
		assert.Equal(t, uint64(1_200_000), tx.Gas())
		assert.Equal(t, big.NewInt(1_000_000_014), tx.GasFeeCap())

		sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), tx)
		require.NoError(t, err)
		assert.Equal(t, signer.Address(), sender)

		data := tx.Data()
		require.Greater(t, len(data), len(testBytecode))
		assert.Equal(t, testBytecode, data[:len(testBytecode)])

		values, err := factory.(*ContractFactory).abi.Constructor.Inputs.Unpack(data[len(testBytecode):])
		require.NoError(t, err)
		require.Len(t, values, 5)
		assert.Equal(t, "Core NFT Collection", values[0])
		assert.Equal(t, "CNFT", values[1])
		assert.Equal(t, 0, big.NewInt(1000).Cmp(values[2].(*big.Int)))
		assert.Equal(t, "ipfs://CID/", values[4])

		assert.Equal(t, tx.Hash().Hex(), pending.TxHash)
		assert.Equal(t, crypto.CreateAddress(signer.Address(), 3).Hex(), pending.Address)
		assert.Equal(t, signer.Address().Hex(), pending.From)
		assert.Equal(t, uint64(31337), pending.ChainID)
		assert.True(t, common.IsHexAddress(pending.Address))
	})

	t.Run("chain without base fee gets a legacy transaction", func(t *testing.T) {
		backend := newFakeBackend()
		backend.baseFee = nil
		resolver, signer := newTestResolver(t, backend, Options{ChainID: 31337})

		factory, err := resolver.GetContractFactory(ctx, "Crowdfund")
		require.NoError(t, err)

		pending, err := factory.Deploy(ctx)
		require.NoError(t, err)

		require.Len(t, backend.sent, 1)
		tx := backend.sent[0]

		assert.Equal(t, uint8(types.LegacyTxType), tx.Type())
		assert.Equal(t, big.NewInt(20_000_000_000), tx.GasPrice())
		assert.Equal(t, uint64(1_200_000), tx.Gas())
		assert.Equal(t, big.NewInt(31337), tx.ChainId())

		assert.Equal(t, big.NewInt(20_000_000_000), backend.lastCall.GasPrice)
		assert.Nil(t, backend.lastCall.GasFeeCap)

		sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), tx)
		require.NoError(t, err)
		assert.Equal(t, signer.Address(), sender)
		assert.Equal(t, tx.Hash().Hex(), pending.TxHash)
	})

	t.Run("configured gas limit skips estimation", func(t *testing.T) {
		backend := newFakeBackend()
		backend.estimateErr = errors.New("should not be called")
		resolver, _ := newTestResolver(t, backend, Options{GasLimit: 3_000_000})

		factory, err := resolver.GetContractFactory(ctx, "Crowdfund")
		require.NoError(t, err)

		_, err = factory.Deploy(ctx)
		require.NoError(t, err)
		require.Len(t, backend.sent, 1)
		assert.Equal(t, uint64(3_000_000), backend.sent[0].Gas())
		assert.Equal(t, testBytecode, backend.sent[0].Data())
	})

	t.Run("argument count mismatch is rejected before sending", func(t *testing.T) {
		backend := newFakeBackend()
		resolver, _ := newTestResolver(t, backend, Options{})

		factory, err := resolver.GetContractFactory(ctx, "NFTMinter")
		require.NoError(t, err)

		_, err = factory.Deploy(ctx, "Core NFT Collection")
		assert.ErrorIs(t, err, domain.ErrInvalidArguments)
		assert.Empty(t, backend.sent)
	})

	t.Run("argument type mismatch is rejected before sending", func(t *testing.T) {
		backend := newFakeBackend()
		resolver, _ := newTestResolver(t, backend, Options{})

		factory, err := resolver.GetContractFactory(ctx, "NFTMinter")
		require.NoError(t, err)

		args := nftMinterArgs()
		args[2] = "one thousand"
		_, err = factory.Deploy(ctx, args...)
		assert.ErrorIs(t, err, domain.ErrInvalidArguments)
		assert.Empty(t, backend.sent)
	})

	t.Run("unexpected arguments for an argless constructor", func(t *testing.T) {
		resolver, _ := newTestResolver(t, newFakeBackend(), Options{})

		factory, err := resolver.GetContractFactory(ctx, "Crowdfund")
		require.NoError(t, err)

		_, err = factory.Deploy(ctx, "surprise")
		assert.ErrorIs(t, err, domain.ErrInvalidArguments)
	})

	t.Run("chain mismatch", func(t *testing.T) {
		backend := newFakeBackend()
		resolver, _ := newTestResolver(t, backend, Options{ChainID: 1})

		factory, err := resolver.GetContractFactory(ctx, "Crowdfund")
		require.NoError(t, err)

		_, err = factory.Deploy(ctx)
		assert.ErrorIs(t, err, domain.ErrNetworkMismatch)
		assert.Empty(t, backend.sent)
	})

	t.Run("insufficient funds during estimation", func(t *testing.T) {
		backend := newFakeBackend()
		backend.estimateErr = errors.New("insufficient funds for gas * price + value: balance 0")
		resolver, _ := newTestResolver(t, backend, Options{})

		factory, err := resolver.GetContractFactory(ctx, "Crowdfund")
		require.NoError(t, err)

		_, err = factory.Deploy(ctx)
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	})

	t.Run("node rejects the transaction", func(t *testing.T) {
		backend := newFakeBackend()
		backend.sendErr = errors.New("nonce too low")
		resolver, _ := newTestResolver(t, backend, Options{})

		factory, err := resolver.GetContractFactory(ctx, "Crowdfund")
		require.NoError(t, err)

		_, err = factory.Deploy(ctx)
		assert.ErrorIs(t, err, domain.ErrTransactionRejected)
		assert.Contains(t, err.Error(), "nonce too low")
	})
}

func TestWaitDeployed(t *testing.T) {
	ctx := context.Background()
	deployed := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

	pending := &domain.PendingDeployment{
		ContractName: "Crowdfund",
		TxHash:       common.HexToHash("0x01").Hex(),
		Address:      deployed.Hex(),
	}

	t.Run("polls until the receipt shows up", func(t *testing.T) {
		backend := newFakeBackend()
		backend.receiptAfter = 2
		backend.receipt = &types.Receipt{
			Status:          types.ReceiptStatusSuccessful,
			ContractAddress: deployed,
			BlockNumber:     big.NewInt(42),
			GasUsed:         812_345,
		}
		resolver, _ := newTestResolver(t, backend, Options{PollInterval: time.Millisecond, ConfirmTimeout: 5 * time.Second})

		factory, err := resolver.GetContractFactory(ctx, "Crowdfund")
		require.NoError(t, err)

		confirmation, err := factory.WaitDeployed(ctx, pending)
		require.NoError(t, err)
		assert.Equal(t, deployed.Hex(), confirmation.ContractAddress)
		assert.Equal(t, uint64(42), confirmation.BlockNumber)
		assert.Equal(t, uint64(812_345), confirmation.GasUsed)
		assert.Equal(t, 3, backend.lookups)
	})

	t.Run("reverted deployment", func(t *testing.T) {
		backend := newFakeBackend()
		backend.receipt = &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(1)}
		resolver, _ := newTestResolver(t, backend, Options{PollInterval: time.Millisecond})

		factory, err := resolver.GetContractFactory(ctx, "Crowdfund")
		require.NoError(t, err)

		_, err = factory.WaitDeployed(ctx, pending)
		assert.ErrorIs(t, err, domain.ErrTransactionReverted)
	})

	t.Run("mined without code", func(t *testing.T) {
		backend := newFakeBackend()
		backend.code = nil
		backend.receipt = &types.Receipt{Status: types.ReceiptStatusSuccessful, ContractAddress: deployed}
		resolver, _ := newTestResolver(t, backend, Options{PollInterval: time.Millisecond})

		factory, err := resolver.GetContractFactory(ctx, "Crowdfund")
		require.NoError(t, err)

		_, err = factory.WaitDeployed(ctx, pending)
		assert.ErrorIs(t, err, domain.ErrNoContractCode)
	})

	t.Run("never confirmed times out", func(t *testing.T) {
		backend := newFakeBackend()
		resolver, _ := newTestResolver(t, backend, Options{PollInterval: time.Millisecond, ConfirmTimeout: 30 * time.Millisecond})

		factory, err := resolver.GetContractFactory(ctx, "Crowdfund")
		require.NoError(t, err)

		start := time.Now()
		_, err = factory.WaitDeployed(ctx, pending)
		assert.ErrorIs(t, err, domain.ErrConfirmationTimeout)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("caller cancellation is not reported as a timeout", func(t *testing.T) {
		backend := newFakeBackend()
		resolver, _ := newTestResolver(t, backend, Options{PollInterval: time.Millisecond})

		factory, err := resolver.GetContractFactory(ctx, "Crowdfund")
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err = factory.WaitDeployed(cancelled, pending)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, domain.ErrConfirmationTimeout)
	})
}

func TestParsePrivateKey(t *testing.T) {
	_, err := ParsePrivateKey("")
	assert.Error(t, err)

	_, err = ParsePrivateKey("0xnothex")
	assert.Error(t, err)

	// Well-known first Hardhat/Anvil dev account
	signer, err := ParsePrivateKey("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", signer.Address().Hex())
}
