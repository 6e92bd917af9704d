// Package ui provides terminal UI components for the onvifctl CLI.
//
// This package uses Bubble Tea and Lipgloss to render styled terminal
// output. The components follow a "run once and exit" pattern: they render
// output but don't require user interaction.
//
// # Architecture
//
//   - Header: Command banner showing the operation and its parameters
//   - Progress: Progress bar with a step list, used by probe
//   - Result: Success/failure/warning boxes with ordered details
//   - Tree: Indented rendering of a parsed SOAP response
//
// Runner orchestrates the header → progress → result flow for multi-step
// commands such as probe.
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:      "Camera Probe",
//	    Command:    "onvifctl probe gate",
//	    Params:     []ui.Field{{Key: "Camera", Value: "192.168.1.64"}},
//	    TotalSteps: 16,
//	})
//	err := runner.Run(func(onStep ui.StepCallback) ([]ui.Field, error) {
//	    onStep(1, "device GetDeviceInformation", ui.StepComplete, "Acme Dome")
//	    return nil, nil
//	})
//
// # Logging Integration
//
// Logging is controlled via the ONVIFCTL_LOG_LEVEL environment variable and
// goes to stderr, so it never mixes with the output rendered here.
package ui
