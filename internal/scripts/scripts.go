// Package scripts holds the deployment requests behind each deploy binary.
package scripts

import (
	"math/big"

	"github.com/crowdmint/deployer/internal/domain"
	"github.com/crowdmint/deployer/internal/domain/units"
)

// NFTMinter collection settings
const (
	NFTName      = "Core NFT Collection"
	NFTSymbol    = "CNFT"
	NFTMaxSupply = 1000
	NFTMintPrice = "0.01" // ether
	NFTBaseURI   = "ipfs://CID/"
)

// Crowdfund deploys the Crowdfund contract, which takes no constructor arguments
func Crowdfund() domain.DeploymentRequest {
	return domain.DeploymentRequest{ContractName: "Crowdfund"}
}

// NFTMinter deploys the NFTMinter collection
func NFTMinter() domain.DeploymentRequest {
	mintPrice, err := units.ParseEther(NFTMintPrice)
	if err != nil {
		panic(err) // constant input
	}

	return domain.DeploymentRequest{
		ContractName: "NFTMinter",
		Parameters: []domain.Parameter{
			{Name: "name", Value: NFTName},
			{Name: "symbol", Value: NFTSymbol},
			{Name: "maxSupply", Value: big.NewInt(NFTMaxSupply)},
			{Name: "mintPrice", Value: mintPrice, Display: units.FormatEther(mintPrice) + " ETH"},
			{Name: "baseURI", Value: NFTBaseURI},
		},
	}
}
