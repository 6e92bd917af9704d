package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/onvifctl/internal/camera"
	"github.com/muurk/onvifctl/internal/config"
	"github.com/muurk/onvifctl/internal/device"
	"github.com/muurk/onvifctl/internal/logging"
	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/ui"
)

var probeSuites []string

func init() {
	probeCmd.Flags().StringSliceVar(&probeSuites, "suite", nil, "Suites to run: device, media, imaging, ptz (default from config, all)")

	rootCmd.AddCommand(probeCmd)
}

// probeCmd runs the read-only operations of each suite against a camera
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check which operations a camera supports",
	Long: `Run every read-only operation of the selected suites and report
which ones the camera answers.

Failures are reported per step and do not stop the run. For saved cameras
the manufacturer and model are recorded in the config.`,
	Example: `  # Full probe of a saved camera
  onvifctl probe --camera gate

  # Only PTZ, against an address
  onvifctl probe --host 192.168.1.64 --user admin --suite ptz`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	names := probeSuites
	if len(names) == 0 {
		names = reg.Preferences.ProbeSuites
	}
	suites, err := camera.ParseSuites(names)
	if err != nil {
		return err
	}

	// connect before the runner draws anything so a password prompt is clean
	cam, label, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Camera Probe",
		Command: cmd.CommandPath() + " " + label,
		Params: []ui.Field{
			{Key: "Camera", Value: cam.Session.Address().String()},
			{Key: "User", Value: orNone(cam.Session.Username())},
			{Key: "Suites", Value: suiteNames(suites)},
		},
		Troubleshooting: []string{
			"Check the username and password",
			"Use --log-level debug to see each request",
			"Use --capture <dir> to save the exchanged XML",
		},
		Output: cmd.OutOrStdout(),
	})

	err = runner.Run(func(onStep ui.StepCallback) ([]ui.Field, error) {
		steps, probeErr := cam.Probe(cmd.Context(), suites, func(done, total int, step camera.Step) {
			runner.Progress().SetTotal(total)
			status, msg := stepStatus(step)
			onStep(done, string(step.Suite)+" "+step.Method, status, msg)
		})
		return probeDetails(cam, steps), probeErr
	})
	if err != nil {
		return err
	}

	if cameraName != "" {
		recordIdentity(cmd, cam, reg)
	}
	return nil
}

// stepStatus maps a probe outcome to a progress line
func stepStatus(step camera.Step) (ui.StepStatus, string) {
	switch {
	case step.Err == nil:
		return ui.StepComplete, step.Summary
	case soap.IsNotImplemented(step.Err):
		return ui.StepSkipped, "not implemented"
	default:
		return ui.StepFailed, soap.ShortMessage(step.Err)
	}
}

func probeDetails(cam *camera.Camera, steps []camera.Step) []ui.Field {
	passed := 0
	for _, s := range steps {
		if s.Err == nil {
			passed++
		}
	}
	fields := []ui.Field{
		{Key: "Operations", Value: fmt.Sprintf("%d of %d answered", passed, len(steps))},
		{Key: "Clock offset", Value: cam.Session.ClockDifference().String()},
	}
	if token := cam.ProfileToken(); token != "" {
		fields = append(fields, ui.Field{Key: "Profile", Value: token})
	}
	if token := cam.Imaging.DefaultVideoSourceToken(); token != "" {
		fields = append(fields, ui.Field{Key: "Video source", Value: token})
	}
	return fields
}

// recordIdentity saves what the camera says it is. Failures only warn; the
// probe result stands on its own.
func recordIdentity(cmd *cobra.Command, cam *camera.Camera, reg *config.Registry) {
	res, err := cam.Device.GetDeviceInformation(cmd.Context(), nil).Await(cmd.Context())
	if err != nil {
		logging.Warn("Could not read device information", zap.Error(err))
		return
	}
	info := device.ParseInformation(res)
	reg.UpdateCameraIdentity(cameraName, info.Manufacturer, info.Model)
	if err := reg.Save(); err != nil {
		logging.Warn("Could not save camera identity", zap.Error(err))
	}
}

func suiteNames(suites []camera.Suite) string {
	if len(suites) == 0 {
		suites = camera.Suites
	}
	names := make([]string, len(suites))
	for i, s := range suites {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
