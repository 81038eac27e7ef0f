package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crowdmint/deployer/internal/domain"
)

// Progress stages reported by DeployContract
const (
	StageResolving  = "resolving"
	StageSubmitting = "submitting"
	StageConfirming = "confirming"
	StageComplete   = "complete"
	StageFailed     = "failed"
)

// DeployContractParams contains parameters for a deployment
type DeployContractParams struct {
	Request domain.DeploymentRequest
}

// DeployContract resolves a contract factory, submits the deployment and waits
// for confirmation. A single attempt is made.
type DeployContract struct {
	resolver ContractFactoryResolver
	sink     ProgressSink
	log      *slog.Logger
}

// NewDeployContract creates a new DeployContract use case
func NewDeployContract(resolver ContractFactoryResolver, sink ProgressSink, log *slog.Logger) *DeployContract {
	return &DeployContract{
		resolver: resolver,
		sink:     sink,
		log:      log,
	}
}

// Run executes the deployment
func (uc *DeployContract) Run(ctx context.Context, params DeployContractParams) (*domain.DeploymentResult, error) {
	req := params.Request
	name := req.ContractName

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:    StageResolving,
		Message:  fmt.Sprintf("Resolving %s artifact", name),
		Spinner:  true,
		Metadata: req,
	})

	factory, err := uc.resolver.GetContractFactory(ctx, name)
	if err != nil {
		return nil, uc.fail(ctx, asResolutionError(name, err))
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageSubmitting,
		Message: fmt.Sprintf("Submitting %s deployment", name),
		Spinner: true,
	})

	pending, err := factory.Deploy(ctx, req.Args()...)
	if err != nil {
		return nil, uc.fail(ctx, asSubmissionError(name, err))
	}
	uc.log.Debug("deployment submitted", "contract", name, "tx", pending.TxHash, "address", pending.Address, "nonce", pending.Nonce)
	uc.sink.Info(fmt.Sprintf("Sent %s deployment in %s, expected at %s", name, pending.TxHash, pending.Address))

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:    StageConfirming,
		Message:  fmt.Sprintf("Waiting for %s to be confirmed", pending.TxHash),
		Spinner:  true,
		Metadata: pending,
	})

	confirmation, err := factory.WaitDeployed(ctx, pending)
	if err != nil {
		return nil, uc.fail(ctx, asConfirmationError(name, pending.TxHash, err))
	}

	address := confirmation.ContractAddress
	if address == "" {
		address = pending.Address
	}

	result := &domain.DeploymentResult{
		ContractName:    name,
		ContractAddress: address,
		TxHash:          pending.TxHash,
		Deployer:        pending.From,
		ChainID:         pending.ChainID,
		BlockNumber:     confirmation.BlockNumber,
		GasUsed:         confirmation.GasUsed,
		Parameters:      req.Parameters,
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:    StageComplete,
		Message:  fmt.Sprintf("%s deployed", name),
		Metadata: result,
	})

	return result, nil
}

func (uc *DeployContract) fail(ctx context.Context, err error) error {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageFailed,
		Message: err.Error(),
	})
	return err
}

func asResolutionError(contract string, err error) error {
	var typed *domain.ResolutionError
	if errors.As(err, &typed) {
		return err
	}
	return &domain.ResolutionError{Contract: contract, Err: err}
}

func asSubmissionError(contract string, err error) error {
	var typed *domain.SubmissionError
	if errors.As(err, &typed) {
		return err
	}
	return &domain.SubmissionError{Contract: contract, Err: err}
}

func asConfirmationError(contract, txHash string, err error) error {
	var typed *domain.ConfirmationError
	if errors.As(err, &typed) {
		return err
	}
	return &domain.ConfirmationError{Contract: contract, TxHash: txHash, Err: err}
}
