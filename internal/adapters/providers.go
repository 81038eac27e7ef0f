package adapters

import (
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/wire"

	"github.com/crowdmint/deployer/internal/adapters/blockchain"
	"github.com/crowdmint/deployer/internal/adapters/repository/contracts"
	"github.com/crowdmint/deployer/internal/usecase"
)

// ArtifactsSet provides the compiled artifact repository
var ArtifactsSet = wire.NewSet(
	contracts.NewRepository,
	wire.Bind(new(usecase.ArtifactRepository), new(*contracts.Repository)),
)

// BlockchainSet provides the RPC client, the deployer signer and contract factories
var BlockchainSet = wire.NewSet(
	blockchain.ProvideClient,
	wire.Bind(new(blockchain.Backend), new(*ethclient.Client)),

	blockchain.NewSigner,

	blockchain.NewFactoryResolver,
	wire.Bind(new(usecase.ContractFactoryResolver), new(*blockchain.FactoryResolver)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ArtifactsSet,
	BlockchainSet,
)
