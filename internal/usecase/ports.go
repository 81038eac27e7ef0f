package usecase

import (
	"context"

	"github.com/crowdmint/deployer/internal/domain"
	"github.com/crowdmint/deployer/internal/domain/models"
)

// ArtifactRepository provides access to compiled contracts
type ArtifactRepository interface {
	GetContract(ctx context.Context, key string) (*models.Contract, error)
}

// ContractFactoryResolver turns a contract name into something that can deploy it
type ContractFactoryResolver interface {
	GetContractFactory(ctx context.Context, contractName string) (ContractFactory, error)
}

// ContractFactory submits deployments of one contract and waits for them to land
type ContractFactory interface {
	Deploy(ctx context.Context, args ...any) (*domain.PendingDeployment, error)
	WaitDeployed(ctx context.Context, pending *domain.PendingDeployment) (*domain.Confirmation, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}
