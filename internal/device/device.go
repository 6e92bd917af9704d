// Package device implements the ONVIF device management service (ver10)
// operations a client needs before anything else: the device clock, the
// service addresses and identity.
package device

import (
	"context"
	"fmt"
	"slices"

	"github.com/muurk/onvifctl/internal/core"
	"github.com/muurk/onvifctl/internal/soap"
)

// Prefix is the XML prefix of device method elements
const Prefix = "tds"

// Namespaces declared on every device envelope
var Namespaces = []string{
	`xmlns:tds="http://www.onvif.org/ver10/device/wsdl"`,
	`xmlns:tt="http://www.onvif.org/ver10/schema"`,
}

// Capability categories accepted by GetCapabilities
var CapabilityCategories = []string{"All", "Analytics", "Device", "Events", "Imaging", "Media", "PTZ"}

// Service is the device feature module
type Service struct {
	*core.Service
}

// New creates a device module. Call Init before any operation.
func New(dispatcher soap.Dispatcher) *Service {
	return &Service{Service: core.NewService(soap.CategoryDevice, Prefix, Namespaces, dispatcher)}
}

// GetSystemDateAndTime reads the device clock. Devices answer it without
// credentials, so it works on an unauthenticated session.
func (s *Service) GetSystemDateAndTime(ctx context.Context, callback any) *core.Future {
	return s.BuildRequest(ctx, "GetSystemDateAndTime", "", callback)
}

// GetDeviceInformation reads manufacturer, model and firmware
func (s *Service) GetDeviceInformation(ctx context.Context, callback any) *core.Future {
	return s.BuildRequest(ctx, "GetDeviceInformation", "", callback)
}

// GetCapabilities reads the capabilities of one category, or all of them
// when category is empty
func (s *Service) GetCapabilities(ctx context.Context, category string, callback any) *core.Future {
	const method = "GetCapabilities"

	if category == "" {
		category = "All"
	}
	if !slices.Contains(CapabilityCategories, category) {
		return s.Reject(method, soap.NewInvalidArgument(method, "category",
			fmt.Sprintf("must be one of %v, got %q", CapabilityCategories, category)), callback)
	}
	f := soap.NewFragment()
	f.AddText("tds:Category", category)
	return s.SendFragment(ctx, method, f, callback)
}

// GetServices lists the services the device offers
func (s *Service) GetServices(ctx context.Context, includeCapability bool, callback any) *core.Future {
	f := soap.NewFragment()
	f.AddBool("tds:IncludeCapability", includeCapability)
	return s.SendFragment(ctx, "GetServices", f, callback)
}

// GetHostname reads the device host name
func (s *Service) GetHostname(ctx context.Context, callback any) *core.Future {
	return s.BuildRequest(ctx, "GetHostname", "", callback)
}

// SystemReboot restarts the device
func (s *Service) SystemReboot(ctx context.Context, callback any) *core.Future {
	return s.BuildRequest(ctx, "SystemReboot", "", callback)
}
