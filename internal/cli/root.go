package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/crowdmint/deployer/internal/app"
	"github.com/crowdmint/deployer/internal/usecase"
)

// AppInitializer builds the wired application for a command run.
// The returned cleanup releases network resources.
type AppInitializer func(v *viper.Viper, sink usecase.ProgressSink) (*app.App, func(), error)

// DefaultAppInitializer wires the application against the configured network
var DefaultAppInitializer AppInitializer = app.InitApp

// Execute runs cmd and maps the outcome to a process exit code:
// 0 on success, 1 on any failure with the error on stderr.
func Execute(cmd *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

// useColor reports whether w is a terminal that should get colored output
func useColor(w any) bool {
	f, ok := w.(*os.File)
	return ok && f == os.Stdout && !color.NoColor
}
