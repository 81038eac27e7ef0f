package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crowdmint/deployer/internal/adapters/progress"
	"github.com/crowdmint/deployer/internal/cli/render"
	"github.com/crowdmint/deployer/internal/config"
	"github.com/crowdmint/deployer/internal/domain"
	"github.com/crowdmint/deployer/internal/usecase"
)

// NewDeployCmd creates a command that deploys a single hard-coded request.
// The command takes no arguments; network and signer come from the environment.
func NewDeployCmd(use string, req domain.DeploymentRequest, initApp AppInitializer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Deploy the %s contract", req.ContractName),
		Long: fmt.Sprintf(`Deploy the %s contract from the project's compiled artifacts and wait
for the deployment to be confirmed.

Configuration is read from DEPLOY_* environment variables, .env and
an optional deploy.{toml,yaml,json} in the project root:

  DEPLOY_NETWORK          network name (default: localhost)
  DEPLOY_RPC_URL          explicit RPC endpoint
  DEPLOY_PRIVATE_KEY      deployer key (PRIVATE_KEY is also accepted)
  DEPLOY_CHAIN_ID         expected chain ID
  DEPLOY_ARTIFACTS_DIR    compiled artifacts directory
  DEPLOY_GAS_LIMIT        fixed gas limit (default: estimate)
  DEPLOY_CONFIRM_TIMEOUT  how long to wait for the receipt (default: 5m)
  DEPLOY_LOG_LEVEL        debug, info, warn or error`, req.ContractName),
		Args:          cobra.NoArgs,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, req, initApp)
		},
	}

	cmd.SetVersionTemplate(fmt.Sprintf("%s version {{.Version}}\n", use))

	return cmd
}

func runDeploy(cmd *cobra.Command, req domain.DeploymentRequest, initApp AppInitializer) error {
	projectRoot, err := config.FindProjectRoot()
	if err != nil {
		return fmt.Errorf("failed to find project root: %w", err)
	}

	v := config.SetupViper(projectRoot, cmd)

	out := cmd.OutOrStdout()
	renderer := render.NewDeployRenderer(out, useColor(out))
	sink := progress.NewDeployProgress(renderer, progress.NewSpinnerProgressReporter(cmd.ErrOrStderr()))

	appInstance, cleanup, err := initApp(v, sink)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer cleanup()

	result, err := appInstance.DeployContract.Run(cmd.Context(), usecase.DeployContractParams{
		Request: req,
	})
	if err != nil {
		return err
	}

	return renderer.RenderDeployment(result)
}
