package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig holds configuration for a multi-step command
type RunnerConfig struct {
	Title           string    // Command title (e.g., "Camera Probe")
	Command         string    // Full command (e.g., "onvifctl probe gate")
	Params          []Field   // Parameters to display in header
	TotalSteps      int       // Total number of steps (for progress)
	Troubleshooting []string  // Tips shown when the operation fails
	Output          io.Writer // Output writer (default: os.Stdout)
	Width           int       // Rendering width (default: terminal width)
}

// Runner orchestrates the UI for a multi-step command: header, one line
// per finished step, then a result box.
type Runner struct {
	config   RunnerConfig
	progress *Progress
	output   io.Writer
	width    int
}

// Operation is the work a Runner wraps. It reports steps through onStep and
// returns details for the result box.
type Operation func(onStep StepCallback) ([]Field, error)

// NewRunner creates a new runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := config.Width
	if width == 0 {
		width = GetTerminalWidth()
	}

	progress := NewProgress("", config.TotalSteps)
	progress.SetWidth(width)

	return &Runner{
		config:   config,
		progress: progress,
		output:   config.Output,
		width:    width,
	}
}

// Progress returns the runner's step tracker
func (r *Runner) Progress() *Progress {
	return r.progress
}

// Run executes the operation with UI updates and returns its error. An
// operation that succeeds but had failed steps gets a warning box.
func (r *Runner) Run(operation Operation) error {
	start := time.Now()

	header := NewHeader(r.config.Title, r.config.Command, r.config.Params).SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := operation(r.onStep)
	details = append(details, Field{Key: "Duration", Value: time.Since(start).Round(time.Millisecond).String()})

	var result *Result
	_, failed := r.progress.Counts()
	switch {
	case err != nil:
		result = NewFailureResult(r.config.Title+" failed", err, r.config.Troubleshooting)
		result.Details = details
	case failed > 0:
		result = NewWarningResult(fmt.Sprintf("%s finished with %d failed steps", r.config.Title, failed), details)
	default:
		result = NewSuccessResult(r.config.Title+" complete", details)
	}

	_, _ = fmt.Fprintln(r.output)
	_, _ = fmt.Fprintln(r.output, result.SetWidth(r.width).Render())
	return err
}

func (r *Runner) onStep(stepNumber int, name string, status StepStatus, message string) {
	r.progress.UpdateStep(stepNumber, name, status, message)
	if stepNumber < 1 || stepNumber > len(r.progress.Steps) {
		return
	}

	line := r.progress.RenderStepLine(r.progress.Steps[stepNumber-1])
	if status.finished() {
		_, _ = fmt.Fprintln(r.output, line)
	} else if status == StepRunning {
		// overwritten when the step finishes
		_, _ = fmt.Fprint(r.output, line+"\r")
	}
}
