//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/crowdmint/deployer/internal/adapters"
	"github.com/crowdmint/deployer/internal/config"
	"github.com/crowdmint/deployer/internal/logging"
	"github.com/crowdmint/deployer/internal/usecase"
)

// InitApp creates a fully wired App instance. The cleanup closes the RPC client.
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, func(), error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewDeployContract,

		// App
		NewApp,
	)
	return nil, nil, nil
}
