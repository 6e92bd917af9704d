package imaging

import (
	"context"
	"sync"

	"github.com/muurk/onvifctl/internal/core"
	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/validate"
)

// Prefix is the XML prefix of imaging method elements
const Prefix = "timg"

// Namespaces declared on every imaging envelope
var Namespaces = []string{
	`xmlns:tns1="http://www.onvif.org/ver10/topics"`,
	`xmlns:timg="http://www.onvif.org/ver20/imaging/wsdl"`,
	`xmlns:tt="http://www.onvif.org/ver10/schema"`,
}

// Service is the imaging feature module
type Service struct {
	*core.Service

	mu                      sync.RWMutex
	defaultVideoSourceToken string
}

// New creates an imaging module. Call Init before any operation.
func New(dispatcher soap.Dispatcher) *Service {
	return &Service{
		Service: core.NewService(soap.CategoryImaging, Prefix, Namespaces, dispatcher),
	}
}

// SetDefaultVideoSourceToken sets the token used when an operation is given
// an empty one. It may be set once.
func (s *Service) SetDefaultVideoSourceToken(token string) error {
	if msg := validate.InvalidValue(token, validate.String); msg != "" {
		return soap.NewInvalidArgument("SetDefaultVideoSourceToken", "videoSourceToken", msg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.defaultVideoSourceToken != "" {
		return soap.NewInvalidArgument("SetDefaultVideoSourceToken", "videoSourceToken", "is already set")
	}
	s.defaultVideoSourceToken = token
	return nil
}

// DefaultVideoSourceToken returns the default token, or ""
func (s *Service) DefaultVideoSourceToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultVideoSourceToken
}

// tokenBody resolves token against the default and starts a body holding it
func (s *Service) tokenBody(method, token string) (*soap.Fragment, error) {
	if token == "" {
		token = s.DefaultVideoSourceToken()
	}
	if msg := validate.InvalidValue(token, validate.String); msg != "" {
		return nil, soap.NewInvalidArgument(method, "videoSourceToken", msg)
	}
	f := soap.NewFragment()
	f.AddText("timg:VideoSourceToken", token)
	return f, nil
}

func (s *Service) tokenOnly(ctx context.Context, method, token string, callback any) *core.Future {
	f, err := s.tokenBody(method, token)
	if err != nil {
		return s.Reject(method, err, callback)
	}
	return s.SendFragment(ctx, method, f, callback)
}

// GetServiceCapabilities returns the capabilities of the imaging service
func (s *Service) GetServiceCapabilities(ctx context.Context, callback any) *core.Future {
	return s.BuildRequest(ctx, "GetServiceCapabilities", "", callback)
}

// GetImagingSettings returns the imaging configuration of a video source
func (s *Service) GetImagingSettings(ctx context.Context, videoSourceToken string, callback any) *core.Future {
	return s.tokenOnly(ctx, "GetImagingSettings", videoSourceToken, callback)
}

// SetImagingSettings changes the fields of settings that are set
func (s *Service) SetImagingSettings(ctx context.Context, videoSourceToken string, settings *Settings, callback any) *core.Future {
	const method = "SetImagingSettings"

	f, err := s.tokenBody(method, videoSourceToken)
	if err != nil {
		return s.Reject(method, err, callback)
	}
	if msg := validate.InvalidValue(settings, validate.Object); msg != "" {
		return s.Reject(method, soap.NewInvalidArgument(method, "settings", msg), callback)
	}
	if err := settings.Validate(); err != nil {
		return s.Reject(method, soap.NewInvalidArgument(method, "settings", err.Error()), callback)
	}

	settings.appendTo(f.Add("timg:ImagingSettings"))
	if settings.ForcePersistence != nil {
		f.AddBool("timg:ForcePersistence", *settings.ForcePersistence)
	}
	return s.SendFragment(ctx, method, f, callback)
}

// GetOptions returns the valid ranges for the imaging settings
func (s *Service) GetOptions(ctx context.Context, videoSourceToken string, callback any) *core.Future {
	return s.tokenOnly(ctx, "GetOptions", videoSourceToken, callback)
}

// GetMoveOptions returns the focus move modes and ranges supported
func (s *Service) GetMoveOptions(ctx context.Context, videoSourceToken string, callback any) *core.Future {
	return s.tokenOnly(ctx, "GetMoveOptions", videoSourceToken, callback)
}

// Move moves the focus lens. Exactly one of the move modes must be set.
// Focus moves turn autofocus off on most devices.
func (s *Service) Move(ctx context.Context, videoSourceToken string, focus *FocusMove, callback any) *core.Future {
	const method = "Move"

	f, err := s.tokenBody(method, videoSourceToken)
	if err != nil {
		return s.Reject(method, err, callback)
	}
	if msg := validate.InvalidValue(focus, validate.Object); msg != "" {
		return s.Reject(method, soap.NewInvalidArgument(method, "focus", msg), callback)
	}
	if err := focus.Validate(); err != nil {
		return s.Reject(method, soap.NewInvalidArgument(method, "focus", err.Error()), callback)
	}

	focus.appendTo(f.Add("timg:Focus"))
	return s.SendFragment(ctx, method, f, callback)
}

// Stop halts an ongoing focus move
func (s *Service) Stop(ctx context.Context, videoSourceToken string, callback any) *core.Future {
	return s.tokenOnly(ctx, "Stop", videoSourceToken, callback)
}

// GetImagingStatus returns the focus position and move status
func (s *Service) GetImagingStatus(ctx context.Context, videoSourceToken string, callback any) *core.Future {
	return s.tokenOnly(ctx, "GetStatus", videoSourceToken, callback)
}

// GetPresets lists the imaging presets of a video source
func (s *Service) GetPresets(ctx context.Context, videoSourceToken string, callback any) *core.Future {
	return s.tokenOnly(ctx, "GetPresets", videoSourceToken, callback)
}

// GetCurrentPreset returns the preset last applied, if any
func (s *Service) GetCurrentPreset(ctx context.Context, videoSourceToken string, callback any) *core.Future {
	return s.tokenOnly(ctx, "GetCurrentPreset", videoSourceToken, callback)
}

// SetCurrentPreset applies an imaging preset
func (s *Service) SetCurrentPreset(ctx context.Context, videoSourceToken, presetToken string, callback any) *core.Future {
	const method = "SetCurrentPreset"

	f, err := s.tokenBody(method, videoSourceToken)
	if err != nil {
		return s.Reject(method, err, callback)
	}
	if msg := validate.InvalidValue(presetToken, validate.String); msg != "" {
		return s.Reject(method, soap.NewInvalidArgument(method, "presetToken", msg), callback)
	}
	f.AddText("timg:PresetToken", presetToken)
	return s.SendFragment(ctx, method, f, callback)
}
