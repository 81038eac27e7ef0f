package domain

import (
	"fmt"
	"math/big"

	"github.com/samber/lo"
)

// Parameter is a named constructor argument.
type Parameter struct {
	Name  string
	Value any
	// Display overrides how the value is echoed, e.g. wei amounts shown in ether.
	Display string
}

// String returns the echoed form of the parameter value
func (p Parameter) String() string {
	if p.Display != "" {
		return p.Display
	}
	switch v := p.Value.(type) {
	case *big.Int:
		if v == nil {
			return "<nil>"
		}
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// DeploymentRequest describes a single contract deployment
type DeploymentRequest struct {
	ContractName string
	Parameters   []Parameter
}

// Args returns the constructor arguments in declaration order
func (r DeploymentRequest) Args() []any {
	return lo.Map(r.Parameters, func(p Parameter, _ int) any {
		return p.Value
	})
}

// PendingDeployment is a deployment transaction that has been accepted by the node
type PendingDeployment struct {
	ContractName string
	TxHash       string
	// Address is predicted from the sender and nonce until the receipt confirms it.
	Address string
	From    string
	Nonce   uint64
	ChainID uint64
}

// Confirmation is what the chain reports once a deployment is mined
type Confirmation struct {
	ContractAddress string
	BlockNumber     uint64
	GasUsed         uint64
}

// DeploymentResult is the outcome of a successful deployment
type DeploymentResult struct {
	ContractName    string
	ContractAddress string
	TxHash          string
	Deployer        string
	ChainID         uint64
	BlockNumber     uint64
	GasUsed         uint64
	Parameters      []Parameter
}

// EchoedParameters returns the constructor parameters keyed by name
func (r *DeploymentResult) EchoedParameters() map[string]string {
	return lo.SliceToMap(r.Parameters, func(p Parameter) (string, string) {
		return p.Name, p.String()
	})
}
