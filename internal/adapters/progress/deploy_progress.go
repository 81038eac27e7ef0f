package progress

import (
	"context"

	"github.com/crowdmint/deployer/internal/cli/render"
	"github.com/crowdmint/deployer/internal/domain"
	"github.com/crowdmint/deployer/internal/usecase"
)

// DeployProgress prints the deployment banner and drives the stage spinner
type DeployProgress struct {
	renderer *render.DeployRenderer
	spinner  *SpinnerProgressReporter
}

func NewDeployProgress(renderer *render.DeployRenderer, spinner *SpinnerProgressReporter) *DeployProgress {
	return &DeployProgress{
		renderer: renderer,
		spinner:  spinner,
	}
}

// OnProgress prints the banner when resolution starts and forwards everything to the spinner
func (p *DeployProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if event.Stage == usecase.StageResolving {
		if req, ok := event.Metadata.(domain.DeploymentRequest); ok {
			p.renderer.PrintBanner(req.ContractName)
		} else {
			p.spinner.Info("Warning: wrong data-type in deployment request")
		}
	}

	p.spinner.OnProgress(ctx, event)
}

// Info forwards to the spinner
func (p *DeployProgress) Info(message string) {
	p.spinner.Info(message)
}

// Error forwards to the spinner
func (p *DeployProgress) Error(message string) {
	p.spinner.Error(message)
}

var _ usecase.ProgressSink = (*DeployProgress)(nil)
