package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus represents the current state of a step
type StepStatus int

const (
	StepPending  StepStatus = iota // Not yet started
	StepRunning                    // Currently executing
	StepComplete                   // Successfully completed
	StepFailed                     // Failed
	StepSkipped                    // Skipped (e.g., not implemented by the camera)
)

// finished reports whether a step with this status counts as done
func (s StepStatus) finished() bool {
	return s == StepComplete || s == StepFailed || s == StepSkipped
}

// Step represents a single step in a multi-step operation
type Step struct {
	Number  int        // Step number (1-based)
	Name    string     // Step description (e.g., "ptz GetStatus")
	Status  StepStatus // Current status
	Message string     // Optional status message (e.g., "3 presets")
}

// StepCallback is the function signature for step progress updates.
type StepCallback func(stepNumber int, name string, status StepStatus, message string)

// Progress represents a progress display with bar and step list
type Progress struct {
	Label string // e.g., "Probing camera..."
	Steps []Step
	Width int
	bar   progress.Model
}

// NewProgress creates a new progress display
func NewProgress(label string, totalSteps int) *Progress {
	steps := make([]Step, totalSteps)
	for i := range steps {
		steps[i] = Step{Number: i + 1, Status: StepPending}
	}

	p := &Progress{Label: label, Steps: steps}
	p.SetWidth(GetTerminalWidth())
	return p
}

// SetWidth sets the terminal width and resizes the bar to fit
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	barWidth := width - 20 // Leave room for percentage and step count
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	p.bar = progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
	)
	return p
}

// SetTotal resizes the step list for operations that learn their length
// late. Existing steps are kept.
func (p *Progress) SetTotal(totalSteps int) {
	for len(p.Steps) < totalSteps {
		p.Steps = append(p.Steps, Step{Number: len(p.Steps) + 1, Status: StepPending})
	}
	if totalSteps >= 0 && totalSteps < len(p.Steps) {
		p.Steps = p.Steps[:totalSteps]
	}
}

// UpdateStep updates a step's name, status and message. An empty name
// keeps the current one.
func (p *Progress) UpdateStep(stepNumber int, name string, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return
	}
	step := &p.Steps[stepNumber-1]
	if name != "" {
		step.Name = name
	}
	step.Status = status
	step.Message = message
}

// Percent returns the finished share of steps (0.0 - 1.0). Failed steps
// count as finished.
func (p *Progress) Percent() float64 {
	if len(p.Steps) == 0 {
		return 1
	}
	done := 0
	for _, s := range p.Steps {
		if s.Status.finished() {
			done++
		}
	}
	return float64(done) / float64(len(p.Steps))
}

// Counts returns how many steps completed and how many failed
func (p *Progress) Counts() (complete, failed int) {
	for _, s := range p.Steps {
		switch s.Status {
		case StepComplete:
			complete++
		case StepFailed:
			failed++
		}
	}
	return complete, failed
}

// Render returns the styled progress display as a string
func (p *Progress) Render() string {
	var b strings.Builder

	if p.Label != "" {
		b.WriteString(ProgressLabelStyle.Render(p.Label))
		b.WriteString("\n\n")
	}

	b.WriteString(p.RenderBar())
	b.WriteString("\n\n")

	lines := make([]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		lines = append(lines, p.RenderStepLine(step))
	}
	b.WriteString(strings.Join(lines, "\n"))

	return b.String()
}

// RenderBar renders the progress bar with percentage and step count
func (p *Progress) RenderBar() string {
	percent := p.Percent()
	done := 0
	for _, s := range p.Steps {
		if s.Status.finished() {
			done++
		}
	}
	return lipgloss.NewStyle().
		PaddingLeft(2).
		Render(fmt.Sprintf("%s  %3.0f%%  [%d/%d]", p.bar.ViewAs(percent), percent*100, done, len(p.Steps)))
}

// RenderStepLine renders a single step line
func (p *Progress) RenderStepLine(step Step) string {
	var (
		marker string
		style  lipgloss.Style
	)
	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, ErrorTitleStyle
	case StepSkipped:
		marker, style = StepMarkerSkipped, StepPendingStyle
	default:
		marker, style = StepMarkerPending, StepPendingStyle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  [%d/%d] ", step.Number, len(p.Steps))
	b.WriteString(style.Render(step.Name))

	// Keep markers in one column
	padding := 36 - lipgloss.Width(step.Name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(style.Render(marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}

	return b.String()
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}
