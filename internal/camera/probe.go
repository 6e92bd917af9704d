package camera

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/onvifctl/internal/core"
	"github.com/muurk/onvifctl/internal/device"
	"github.com/muurk/onvifctl/internal/logging"
	"github.com/muurk/onvifctl/internal/media"
	"github.com/muurk/onvifctl/internal/ptz"
	"github.com/muurk/onvifctl/internal/soap"
)

// Suite is a group of read-only probe operations
type Suite string

const (
	SuiteDevice  Suite = "device"
	SuiteMedia   Suite = "media"
	SuiteImaging Suite = "imaging"
	SuitePTZ     Suite = "ptz"
)

// Suites lists every suite in the order Probe runs them
var Suites = []Suite{SuiteDevice, SuiteMedia, SuiteImaging, SuitePTZ}

// ParseSuites converts names to suites, rejecting unknown ones
func ParseSuites(names []string) ([]Suite, error) {
	out := make([]Suite, 0, len(names))
	for _, name := range names {
		s := Suite(strings.ToLower(strings.TrimSpace(name)))
		found := false
		for _, known := range Suites {
			if s == known {
				found = true
				break
			}
		}
		if !found {
			return nil, soap.NewInvalidArgument("Probe", "suite", fmt.Sprintf("unknown suite %q", name))
		}
		out = append(out, s)
	}
	return out, nil
}

// Step is the outcome of one probe operation
type Step struct {
	Suite   Suite
	Method  string
	Summary string
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called after each step with the number done so far
type ProgressFunc func(done, total int, step Step)

type probeStep struct {
	suite  Suite
	method string
	run    func(ctx context.Context) (string, error)
}

// ProfileToken returns the media profile used by ptz and media probes, once
// a media profile has been found
func (c *Camera) ProfileToken() string {
	return c.profileToken
}

// Probe runs the read-only operations of each selected suite in order and
// reports every outcome. A failing step does not stop the run; only a
// cancelled context does. Empty suites selects all of them.
func (c *Camera) Probe(ctx context.Context, suites []Suite, progress ProgressFunc) ([]Step, error) {
	if len(suites) == 0 {
		suites = Suites
	}
	selected := make(map[Suite]bool, len(suites))
	for _, s := range suites {
		selected[s] = true
	}

	var plan []probeStep
	for _, s := range Suites {
		if selected[s] {
			plan = append(plan, c.suiteSteps(s)...)
		}
	}
	// imaging and ptz need tokens that only the media profiles carry
	if !selected[SuiteMedia] && (selected[SuiteImaging] || selected[SuitePTZ]) {
		plan = append([]probeStep{c.profilesStep()}, plan...)
	}

	steps := make([]Step, 0, len(plan))
	for i, p := range plan {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		start := time.Now()
		summary, err := p.run(ctx)
		step := Step{Suite: p.suite, Method: p.method, Summary: summary, Err: err, Elapsed: time.Since(start)}
		steps = append(steps, step)

		if err != nil {
			logging.Debug("Probe step failed",
				zap.String("suite", string(p.suite)),
				zap.String("method", p.method),
				zap.Error(err))
		}
		if progress != nil {
			progress(i+1, len(plan), step)
		}
	}
	return steps, nil
}

func await(ctx context.Context, f *core.Future) (*soap.Result, error) {
	return f.Await(ctx)
}

func (c *Camera) profilesStep() probeStep {
	return probeStep{SuiteMedia, "GetProfiles", func(ctx context.Context) (string, error) {
		res, err := await(ctx, c.Media.GetProfiles(ctx, nil))
		if err != nil {
			return "", err
		}
		profiles := media.ParseProfiles(res)
		if len(profiles) == 0 {
			return "no profiles", nil
		}
		c.useProfile(profiles[0])
		names := make([]string, len(profiles))
		for i, p := range profiles {
			names[i] = p.Token
		}
		return fmt.Sprintf("%d profiles: %s", len(profiles), strings.Join(names, ", ")), nil
	}}
}

// useProfile adopts p for later token-based calls
func (c *Camera) useProfile(p media.Profile) {
	if c.profileToken == "" {
		c.profileToken = p.Token
	}
	if p.VideoSourceToken != "" && c.Imaging.DefaultVideoSourceToken() == "" {
		if err := c.Imaging.SetDefaultVideoSourceToken(p.VideoSourceToken); err != nil {
			logging.Debug("Could not set default video source", zap.Error(err))
		}
	}
}

func (c *Camera) suiteSteps(s Suite) []probeStep {
	switch s {
	case SuiteDevice:
		return c.deviceSteps()
	case SuiteMedia:
		return c.mediaSteps()
	case SuiteImaging:
		return c.imagingSteps()
	case SuitePTZ:
		return c.ptzSteps()
	}
	return nil
}

func (c *Camera) deviceSteps() []probeStep {
	return []probeStep{
		{SuiteDevice, "GetDeviceInformation", func(ctx context.Context) (string, error) {
			res, err := await(ctx, c.Device.GetDeviceInformation(ctx, nil))
			if err != nil {
				return "", err
			}
			info := device.ParseInformation(res)
			return fmt.Sprintf("%s %s (firmware %s)", info.Manufacturer, info.Model, info.FirmwareVersion), nil
		}},
		{SuiteDevice, "GetSystemDateAndTime", func(ctx context.Context) (string, error) {
			res, err := await(ctx, c.Device.GetSystemDateAndTime(ctx, nil))
			if err != nil {
				return "", err
			}
			t, err := device.DeviceTime(res)
			if err != nil {
				return "", err
			}
			return t.Format(time.RFC3339), nil
		}},
		{SuiteDevice, "GetHostname", func(ctx context.Context) (string, error) {
			res, err := await(ctx, c.Device.GetHostname(ctx, nil))
			if err != nil {
				return "", err
			}
			return device.ParseHostname(res), nil
		}},
		{SuiteDevice, "GetServices", func(ctx context.Context) (string, error) {
			res, err := await(ctx, c.Device.GetServices(ctx, false, nil))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d known services", len(device.ServiceXAddrs(res))), nil
		}},
	}
}

func (c *Camera) mediaSteps() []probeStep {
	return []probeStep{
		c.profilesStep(),
		{SuiteMedia, "GetVideoSources", func(ctx context.Context) (string, error) {
			res, err := await(ctx, c.Media.GetVideoSources(ctx, nil))
			if err != nil {
				return "", err
			}
			return strings.Join(media.ParseVideoSourceTokens(res), ", "), nil
		}},
		{SuiteMedia, "GetStreamUri", func(ctx context.Context) (string, error) {
			res, err := await(ctx, c.Media.GetStreamUri(ctx, c.profileToken, "", "", nil))
			if err != nil {
				return "", err
			}
			return media.ParseMediaUri(res), nil
		}},
		{SuiteMedia, "GetSnapshotUri", func(ctx context.Context) (string, error) {
			res, err := await(ctx, c.Media.GetSnapshotUri(ctx, c.profileToken, nil))
			if err != nil {
				return "", err
			}
			return media.ParseMediaUri(res), nil
		}},
	}
}

func (c *Camera) imagingSteps() []probeStep {
	return []probeStep{
		{SuiteImaging, "GetImagingSettings", func(ctx context.Context) (string, error) {
			res, err := await(ctx, c.Imaging.GetImagingSettings(ctx, "", nil))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("brightness %s, contrast %s",
				orDash(res.String("GetImagingSettingsResponse", "ImagingSettings", "Brightness")),
				orDash(res.String("GetImagingSettingsResponse", "ImagingSettings", "Contrast"))), nil
		}},
		{SuiteImaging, "GetOptions", func(ctx context.Context) (string, error) {
			_, err := await(ctx, c.Imaging.GetOptions(ctx, "", nil))
			return "", err
		}},
		{SuiteImaging, "GetMoveOptions", func(ctx context.Context) (string, error) {
			_, err := await(ctx, c.Imaging.GetMoveOptions(ctx, "", nil))
			return "", err
		}},
		{SuiteImaging, "GetStatus", func(ctx context.Context) (string, error) {
			res, err := await(ctx, c.Imaging.GetImagingStatus(ctx, "", nil))
			if err != nil {
				return "", err
			}
			return orDash(res.String("GetStatusResponse", "Status", "FocusStatus20", "MoveStatus")), nil
		}},
	}
}

func (c *Camera) ptzSteps() []probeStep {
	return []probeStep{
		{SuitePTZ, "GetNodes", func(ctx context.Context) (string, error) {
			res, err := await(ctx, c.PTZ.GetNodes(ctx, nil))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d nodes", len(soap.All(res.Response()["PTZNode"]))), nil
		}},
		{SuitePTZ, "GetConfigurations", func(ctx context.Context) (string, error) {
			res, err := await(ctx, c.PTZ.GetConfigurations(ctx, nil))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d configurations", len(ptz.ParseConfigurations(res))), nil
		}},
		{SuitePTZ, "GetStatus", func(ctx context.Context) (string, error) {
			res, err := await(ctx, c.PTZ.GetStatus(ctx, c.profileToken, nil))
			if err != nil {
				return "", err
			}
			st := ptz.ParseStatus(res)
			if st.Position.PanTilt == nil {
				return orDash(st.PanTiltMoving), nil
			}
			return fmt.Sprintf("pan %s tilt %s (%s)",
				soap.FormatFloat(st.Position.PanTilt.X),
				soap.FormatFloat(st.Position.PanTilt.Y),
				orDash(st.PanTiltMoving)), nil
		}},
		{SuitePTZ, "GetPresets", func(ctx context.Context) (string, error) {
			res, err := await(ctx, c.PTZ.GetPresets(ctx, c.profileToken, nil))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d presets", len(ptz.ParsePresets(res))), nil
		}},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
