package ptz

import (
	"context"
	"time"

	"github.com/muurk/onvifctl/internal/core"
	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/validate"
)

// Prefix is the XML prefix of PTZ method elements
const Prefix = "tptz"

// Namespaces declared on every PTZ envelope
var Namespaces = []string{
	`xmlns:tptz="http://www.onvif.org/ver20/ptz/wsdl"`,
	`xmlns:tt="http://www.onvif.org/ver10/schema"`,
}

// Service is the PTZ feature module
type Service struct {
	*core.Service
}

// New creates a PTZ module. Call Init before any operation.
func New(dispatcher soap.Dispatcher) *Service {
	return &Service{Service: core.NewService(soap.CategoryPTZ, Prefix, Namespaces, dispatcher)}
}

// profileBody validates the profile token and starts a body holding it
func profileBody(method, profileToken string) (*soap.Fragment, error) {
	if msg := validate.InvalidValue(profileToken, validate.String); msg != "" {
		return nil, soap.NewInvalidArgument(method, "profileToken", msg)
	}
	f := soap.NewFragment()
	f.AddText("tptz:ProfileToken", profileToken)
	return f, nil
}

func checkVector(method, argument string, v Vector) error {
	if err := v.Validate(); err != nil {
		return soap.NewInvalidArgument(method, argument, err.Error())
	}
	return nil
}

func (s *Service) profileOnly(ctx context.Context, method, profileToken string, callback any) *core.Future {
	f, err := profileBody(method, profileToken)
	if err != nil {
		return s.Reject(method, err, callback)
	}
	return s.SendFragment(ctx, method, f, callback)
}

// GetServiceCapabilities returns the capabilities of the PTZ service
func (s *Service) GetServiceCapabilities(ctx context.Context, callback any) *core.Future {
	return s.BuildRequest(ctx, "GetServiceCapabilities", "", callback)
}

// GetNodes lists the PTZ nodes of the device
func (s *Service) GetNodes(ctx context.Context, callback any) *core.Future {
	return s.BuildRequest(ctx, "GetNodes", "", callback)
}

// GetConfigurations lists the PTZ configurations of the device
func (s *Service) GetConfigurations(ctx context.Context, callback any) *core.Future {
	return s.BuildRequest(ctx, "GetConfigurations", "", callback)
}

// ContinuousMove starts moving at velocity. A positive timeout stops the move
// after that long; zero leaves it to the device default.
func (s *Service) ContinuousMove(ctx context.Context, profileToken string, velocity Vector, timeout time.Duration, callback any) *core.Future {
	const method = "ContinuousMove"

	f, err := profileBody(method, profileToken)
	if err != nil {
		return s.Reject(method, err, callback)
	}
	if err := checkVector(method, "velocity", velocity); err != nil {
		return s.Reject(method, err, callback)
	}
	if timeout < 0 {
		return s.Reject(method, soap.NewInvalidArgument(method, "timeout", "must not be negative"), callback)
	}

	appendVector(f.Add("tptz:Velocity"), velocity)
	if timeout > 0 {
		f.AddText("tptz:Timeout", FormatDuration(timeout))
	}
	return s.SendFragment(ctx, method, f, callback)
}

// RelativeMove moves by translation. speed may be nil.
func (s *Service) RelativeMove(ctx context.Context, profileToken string, translation Vector, speed *Vector, callback any) *core.Future {
	return s.positional(ctx, "RelativeMove", "tptz:Translation", "translation", profileToken, translation, speed, callback)
}

// AbsoluteMove moves to position. speed may be nil.
func (s *Service) AbsoluteMove(ctx context.Context, profileToken string, position Vector, speed *Vector, callback any) *core.Future {
	return s.positional(ctx, "AbsoluteMove", "tptz:Position", "position", profileToken, position, speed, callback)
}

func (s *Service) positional(ctx context.Context, method, element, argument, profileToken string, v Vector, speed *Vector, callback any) *core.Future {
	f, err := profileBody(method, profileToken)
	if err != nil {
		return s.Reject(method, err, callback)
	}
	if err := checkVector(method, argument, v); err != nil {
		return s.Reject(method, err, callback)
	}
	if speed != nil {
		if err := checkVector(method, "speed", *speed); err != nil {
			return s.Reject(method, err, callback)
		}
	}

	appendVector(f.Add(element), v)
	if speed != nil {
		appendVector(f.Add("tptz:Speed"), *speed)
	}
	return s.SendFragment(ctx, method, f, callback)
}

// Stop halts pan/tilt, zoom or both
func (s *Service) Stop(ctx context.Context, profileToken string, panTilt, zoom bool, callback any) *core.Future {
	const method = "Stop"

	f, err := profileBody(method, profileToken)
	if err != nil {
		return s.Reject(method, err, callback)
	}
	if !panTilt && !zoom {
		return s.Reject(method, soap.NewInvalidArgument(method, "panTilt", "and zoom are both false; nothing to stop"), callback)
	}
	f.AddBool("tptz:PanTilt", panTilt)
	f.AddBool("tptz:Zoom", zoom)
	return s.SendFragment(ctx, method, f, callback)
}

// GetStatus returns position and move status; see ParseStatus
func (s *Service) GetStatus(ctx context.Context, profileToken string, callback any) *core.Future {
	return s.profileOnly(ctx, "GetStatus", profileToken, callback)
}

// GetPresets lists presets; see ParsePresets
func (s *Service) GetPresets(ctx context.Context, profileToken string, callback any) *core.Future {
	return s.profileOnly(ctx, "GetPresets", profileToken, callback)
}

// GotoPreset moves to a stored preset. speed may be nil.
func (s *Service) GotoPreset(ctx context.Context, profileToken, presetToken string, speed *Vector, callback any) *core.Future {
	const method = "GotoPreset"

	f, err := profileBody(method, profileToken)
	if err != nil {
		return s.Reject(method, err, callback)
	}
	if msg := validate.InvalidValue(presetToken, validate.String); msg != "" {
		return s.Reject(method, soap.NewInvalidArgument(method, "presetToken", msg), callback)
	}
	f.AddText("tptz:PresetToken", presetToken)
	if speed != nil {
		if err := checkVector(method, "speed", *speed); err != nil {
			return s.Reject(method, err, callback)
		}
		appendVector(f.Add("tptz:Speed"), *speed)
	}
	return s.SendFragment(ctx, method, f, callback)
}

// SetPreset stores the current position. An empty presetToken creates a new
// preset; a non-empty one overwrites it. presetName is optional.
func (s *Service) SetPreset(ctx context.Context, profileToken, presetName, presetToken string, callback any) *core.Future {
	const method = "SetPreset"

	f, err := profileBody(method, profileToken)
	if err != nil {
		return s.Reject(method, err, callback)
	}
	if presetName != "" {
		f.AddText("tptz:PresetName", presetName)
	}
	if presetToken != "" {
		f.AddText("tptz:PresetToken", presetToken)
	}
	return s.SendFragment(ctx, method, f, callback)
}

// RemovePreset deletes a preset
func (s *Service) RemovePreset(ctx context.Context, profileToken, presetToken string, callback any) *core.Future {
	const method = "RemovePreset"

	f, err := profileBody(method, profileToken)
	if err != nil {
		return s.Reject(method, err, callback)
	}
	if msg := validate.InvalidValue(presetToken, validate.String); msg != "" {
		return s.Reject(method, soap.NewInvalidArgument(method, "presetToken", msg), callback)
	}
	f.AddText("tptz:PresetToken", presetToken)
	return s.SendFragment(ctx, method, f, callback)
}

// GotoHomePosition moves to the home position. speed may be nil.
func (s *Service) GotoHomePosition(ctx context.Context, profileToken string, speed *Vector, callback any) *core.Future {
	const method = "GotoHomePosition"

	f, err := profileBody(method, profileToken)
	if err != nil {
		return s.Reject(method, err, callback)
	}
	if speed != nil {
		if err := checkVector(method, "speed", *speed); err != nil {
			return s.Reject(method, err, callback)
		}
		appendVector(f.Add("tptz:Speed"), *speed)
	}
	return s.SendFragment(ctx, method, f, callback)
}

// SetHomePosition stores the current position as home
func (s *Service) SetHomePosition(ctx context.Context, profileToken string, callback any) *core.Future {
	return s.profileOnly(ctx, "SetHomePosition", profileToken, callback)
}

// GetPresetTours is not implemented
func (s *Service) GetPresetTours(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("GetPresetTours", callback)
}

// GetPresetTour is not implemented
func (s *Service) GetPresetTour(_ context.Context, _, _ string, callback any) *core.Future {
	return s.NotImplemented("GetPresetTour", callback)
}

// CreatePresetTour is not implemented
func (s *Service) CreatePresetTour(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("CreatePresetTour", callback)
}

// ModifyPresetTour is not implemented
func (s *Service) ModifyPresetTour(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("ModifyPresetTour", callback)
}

// OperatePresetTour is not implemented
func (s *Service) OperatePresetTour(_ context.Context, _, _, _ string, callback any) *core.Future {
	return s.NotImplemented("OperatePresetTour", callback)
}

// RemovePresetTour is not implemented
func (s *Service) RemovePresetTour(_ context.Context, _, _ string, callback any) *core.Future {
	return s.NotImplemented("RemovePresetTour", callback)
}
