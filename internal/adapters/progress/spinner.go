package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/crowdmint/deployer/internal/usecase"
)

// SpinnerProgressReporter shows a spinner with the deployment stages on stderr
type SpinnerProgressReporter struct {
	out     io.Writer
	spinner *spinner.Spinner
	stages  []stageInfo
}

type stageInfo struct {
	Stage     string
	StartTime time.Time
	EndTime   time.Time
	Status    string
}

// stageNames are the stages shown in the spinner, in order
var stageNames = map[string]string{
	usecase.StageResolving:  "Resolving",
	usecase.StageSubmitting: "Submitting",
	usecase.StageConfirming: "Confirming",
}

// NewSpinnerProgressReporter creates a new spinner-based progress reporter writing to out.
// The spinner only animates when out is a terminal.
func NewSpinnerProgressReporter(out io.Writer) *SpinnerProgressReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &SpinnerProgressReporter{
		out:     out,
		spinner: s,
	}
}

// OnProgress handles progress events
func (r *SpinnerProgressReporter) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if len(r.stages) > 0 {
		last := &r.stages[len(r.stages)-1]
		if last.Status == "running" {
			last.EndTime = time.Now()
			last.Status = "completed"
			if event.Stage == usecase.StageFailed {
				last.Status = "failed"
			}
		}
	}

	if _, tracked := stageNames[event.Stage]; tracked {
		r.stages = append(r.stages, stageInfo{
			Stage:     event.Stage,
			StartTime: time.Now(),
			Status:    "running",
		})
	}

	if event.Spinner {
		r.spinner.Suffix = " " + r.display()
		if !r.spinner.Active() {
			r.spinner.Start()
		}
	} else if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// Info prints an info message
func (r *SpinnerProgressReporter) Info(message string) {
	r.pause(func() {
		color.New(color.FgCyan).Fprintln(r.out, message)
	})
}

// Error prints an error message
func (r *SpinnerProgressReporter) Error(message string) {
	r.pause(func() {
		color.New(color.FgRed).Fprintln(r.out, message)
	})
}

// pause stops the spinner while fn writes, then restarts it
func (r *SpinnerProgressReporter) pause(fn func()) {
	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}

	fn()

	if wasActive {
		r.spinner.Start()
	}
}

// display renders the stage trail, e.g. "✓ Resolving (12ms) → ● Confirming (3s)"
func (r *SpinnerProgressReporter) display() string {
	var display string

	for i, stage := range r.stages {
		var icon string
		var stageColor *color.Color

		switch stage.Status {
		case "completed":
			icon = "✓"
			stageColor = color.New(color.FgGreen)
		case "failed":
			icon = "✗"
			stageColor = color.New(color.FgRed)
		default:
			icon = "●"
			stageColor = color.New(color.FgYellow)
		}

		duration := ""
		if !stage.EndTime.IsZero() {
			duration = fmt.Sprintf(" (%s)", stage.EndTime.Sub(stage.StartTime).Round(time.Millisecond))
		}

		if i > 0 {
			display += " → "
		}
		display += fmt.Sprintf("%s %s%s", icon, stageColor.Sprint(stageNames[stage.Stage]), duration)
	}

	return display
}

var _ usecase.ProgressSink = (*SpinnerProgressReporter)(nil)
