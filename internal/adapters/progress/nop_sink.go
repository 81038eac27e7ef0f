package progress

import (
	"context"

	"github.com/crowdmint/deployer/internal/usecase"
)

// NopSink discards every deployment event and message
type NopSink struct{}

var _ usecase.ProgressSink = NopSink{}

// NewNopSink returns a sink for runs that report nothing, such as tests
// and non-interactive callers.
func NewNopSink() usecase.ProgressSink {
	return NopSink{}
}

func (NopSink) OnProgress(context.Context, usecase.ProgressEvent) {}
func (NopSink) Info(string)                                       {}
func (NopSink) Error(string)                                      {}
