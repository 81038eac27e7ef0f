package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for deployment operations
var (
	// ErrContractNotFound is returned when no compiled artifact matches a contract name
	ErrContractNotFound = errors.New("contract not found")

	// ErrArtifactUnavailable is returned when an artifact exists but cannot be deployed
	ErrArtifactUnavailable = errors.New("artifact unavailable")

	// ErrInvalidArguments is returned when constructor arguments don't match the ABI
	ErrInvalidArguments = errors.New("invalid constructor arguments")

	// ErrInsufficientFunds is returned when the deployer can't pay for the deployment
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrTransactionRejected is returned when the node refuses the deployment transaction
	ErrTransactionRejected = errors.New("transaction rejected")

	// ErrNetworkMismatch is returned when the RPC endpoint serves a different chain than configured
	ErrNetworkMismatch = errors.New("network mismatch")

	// ErrConfirmationTimeout is returned when the receipt doesn't show up in time
	ErrConfirmationTimeout = errors.New("confirmation timed out")

	// ErrTransactionReverted is returned when the deployment transaction is mined with failed status
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrNoContractCode is returned when the deployment was mined but left no code behind
	ErrNoContractCode = errors.New("no contract code after deployment")
)

// ResolutionError means a deployable factory could not be built for a contract.
type ResolutionError struct {
	Contract string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve contract %s: %v", e.Contract, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// SubmissionError means the deployment transaction never made it into the mempool.
type SubmissionError struct {
	Contract string
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("failed to submit %s deployment: %v", e.Contract, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// ConfirmationError means the deployment transaction was sent but not confirmed.
type ConfirmationError struct {
	Contract string
	TxHash   string
	Err      error
}

func (e *ConfirmationError) Error() string {
	if e.TxHash == "" {
		return fmt.Sprintf("failed to confirm %s deployment: %v", e.Contract, e.Err)
	}
	return fmt.Sprintf("failed to confirm %s deployment (tx %s): %v", e.Contract, e.TxHash, e.Err)
}

func (e *ConfirmationError) Unwrap() error { return e.Err }

// AmbiguousContractErr is returned when a contract key matches several artifacts.
type AmbiguousContractErr struct {
	Name    string
	Matches []string // "source:name" keys, or artifact paths where those repeat
}

func (e AmbiguousContractErr) Error() string {
	sorted := make([]string, len(e.Matches))
	copy(sorted, e.Matches)
	sort.Strings(sorted)

	suggestions := make([]string, 0, len(sorted))
	for _, m := range sorted {
		suggestions = append(suggestions, "  - "+m)
	}

	return fmt.Sprintf("multiple contracts found matching %s - use source:contract or the artifact path to disambiguate:\n%s",
		e.Name, strings.Join(suggestions, "\n"))
}

// Is lets errors.Is(err, ErrArtifactUnavailable) match an ambiguous lookup.
func (e AmbiguousContractErr) Is(target error) bool {
	return target == ErrArtifactUnavailable
}
