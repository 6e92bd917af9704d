// Package display declares the ONVIF display service. No display operation
// is implemented yet: each one fails with a NotImplemented error without
// sending anything, which lets callers probe for support.
package display

import (
	"context"

	"github.com/muurk/onvifctl/internal/core"
	"github.com/muurk/onvifctl/internal/soap"
)

// Prefix is the XML prefix of display method elements
const Prefix = "tls"

// Namespaces declared on every display envelope
var Namespaces = []string{
	`xmlns:tls="http://www.onvif.org/ver10/display/wsdl"`,
	`xmlns:tt="http://www.onvif.org/ver10/schema"`,
}

// Operations lists the display operations in WSDL order
var Operations = []string{
	"GetPaneConfigurations",
	"GetPaneConfiguration",
	"SetPaneConfigurations",
	"SetPaneConfiguration",
	"CreatePaneConfiguration",
	"DeletePaneConfiguration",
	"GetLayout",
	"SetLayout",
	"GetDisplayOptions",
	"GetServiceCapabilities",
}

// Service is the display feature module
type Service struct {
	*core.Service
}

// New creates a display module
func New(dispatcher soap.Dispatcher) *Service {
	return &Service{Service: core.NewService(soap.CategoryDisplay, Prefix, Namespaces, dispatcher)}
}

// GetPaneConfigurations is not implemented
func (s *Service) GetPaneConfigurations(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("GetPaneConfigurations", callback)
}

// GetPaneConfiguration is not implemented
func (s *Service) GetPaneConfiguration(_ context.Context, _, _ string, callback any) *core.Future {
	return s.NotImplemented("GetPaneConfiguration", callback)
}

// SetPaneConfigurations is not implemented
func (s *Service) SetPaneConfigurations(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("SetPaneConfigurations", callback)
}

// SetPaneConfiguration is not implemented
func (s *Service) SetPaneConfiguration(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("SetPaneConfiguration", callback)
}

// CreatePaneConfiguration is not implemented
func (s *Service) CreatePaneConfiguration(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("CreatePaneConfiguration", callback)
}

// DeletePaneConfiguration is not implemented
func (s *Service) DeletePaneConfiguration(_ context.Context, _, _ string, callback any) *core.Future {
	return s.NotImplemented("DeletePaneConfiguration", callback)
}

// GetLayout is not implemented
func (s *Service) GetLayout(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("GetLayout", callback)
}

// SetLayout is not implemented
func (s *Service) SetLayout(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("SetLayout", callback)
}

// GetDisplayOptions is not implemented
func (s *Service) GetDisplayOptions(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("GetDisplayOptions", callback)
}

// GetServiceCapabilities is not implemented
func (s *Service) GetServiceCapabilities(_ context.Context, callback any) *core.Future {
	return s.NotImplemented("GetServiceCapabilities", callback)
}
