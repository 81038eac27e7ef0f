package app

import (
	"github.com/crowdmint/deployer/internal/domain/config"
	"github.com/crowdmint/deployer/internal/usecase"
)

// App is the application container for a deployment run
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Use cases
	DeployContract *usecase.DeployContract
}

// NewApp creates a new application instance
func NewApp(
	cfg *config.RuntimeConfig,
	deployContract *usecase.DeployContract,
) (*App, error) {
	return &App{
		Config:         cfg,
		DeployContract: deployContract,
	}, nil
}
