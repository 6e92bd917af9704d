// Package media implements the part of the ONVIF media service (ver10)
// needed to find a camera's profiles and stream URIs. OSD operations are
// declared but not implemented.
package media

import (
	"context"
	"fmt"

	"github.com/muurk/onvifctl/internal/core"
	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/validate"
)

// Prefix is the XML prefix of media method elements
const Prefix = "trt"

// Namespaces declared on every media envelope
var Namespaces = []string{
	`xmlns:trt="http://www.onvif.org/ver10/media/wsdl"`,
	`xmlns:tt="http://www.onvif.org/ver10/schema"`,
}

// Stream types
const (
	StreamUnicast   = "RTP-Unicast"
	StreamMulticast = "RTP-Multicast"
)

// Transport protocols
const (
	TransportUDP  = "UDP"
	TransportTCP  = "TCP"
	TransportRTSP = "RTSP"
	TransportHTTP = "HTTP"
)

// Service is the media feature module
type Service struct {
	*core.Service
}

// New creates a media module. Call Init before any operation.
func New(dispatcher soap.Dispatcher) *Service {
	return &Service{Service: core.NewService(soap.CategoryMedia, Prefix, Namespaces, dispatcher)}
}

// GetProfiles lists media profiles; see ParseProfiles
func (s *Service) GetProfiles(ctx context.Context, callback any) *core.Future {
	return s.BuildRequest(ctx, "GetProfiles", "", callback)
}

// GetVideoSources lists the physical video inputs
func (s *Service) GetVideoSources(ctx context.Context, callback any) *core.Future {
	return s.BuildRequest(ctx, "GetVideoSources", "", callback)
}

// GetStreamUri asks for a stream URI of a profile. Empty stream and
// protocol default to RTP-Unicast over RTSP.
func (s *Service) GetStreamUri(ctx context.Context, profileToken, stream, protocol string, callback any) *core.Future {
	const method = "GetStreamUri"

	if msg := validate.InvalidValue(profileToken, validate.String); msg != "" {
		return s.Reject(method, soap.NewInvalidArgument(method, "profileToken", msg), callback)
	}
	if stream == "" {
		stream = StreamUnicast
	}
	if protocol == "" {
		protocol = TransportRTSP
	}
	if stream != StreamUnicast && stream != StreamMulticast {
		return s.Reject(method, soap.NewInvalidArgument(method, "stream",
			fmt.Sprintf("must be %s or %s, got %q", StreamUnicast, StreamMulticast, stream)), callback)
	}
	switch protocol {
	case TransportUDP, TransportTCP, TransportRTSP, TransportHTTP:
	default:
		return s.Reject(method, soap.NewInvalidArgument(method, "protocol",
			fmt.Sprintf("must be UDP, TCP, RTSP or HTTP, got %q", protocol)), callback)
	}

	f := soap.NewFragment()
	setup := f.Add("trt:StreamSetup")
	soap.SetText(setup, "tt:Stream", stream)
	soap.SetText(setup.CreateElement("tt:Transport"), "tt:Protocol", protocol)
	f.AddText("trt:ProfileToken", profileToken)
	return s.SendFragment(ctx, method, f, callback)
}

// GetSnapshotUri asks for a JPEG snapshot URI of a profile
func (s *Service) GetSnapshotUri(ctx context.Context, profileToken string, callback any) *core.Future {
	const method = "GetSnapshotUri"

	if msg := validate.InvalidValue(profileToken, validate.String); msg != "" {
		return s.Reject(method, soap.NewInvalidArgument(method, "profileToken", msg), callback)
	}
	f := soap.NewFragment()
	f.AddText("trt:ProfileToken", profileToken)
	return s.SendFragment(ctx, method, f, callback)
}

// GetOSDs is not implemented
func (s *Service) GetOSDs(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("GetOSDs", callback)
}

// GetOSD is not implemented
func (s *Service) GetOSD(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("GetOSD", callback)
}

// SetOSD is not implemented
func (s *Service) SetOSD(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("SetOSD", callback)
}

// CreateOSD is not implemented
func (s *Service) CreateOSD(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("CreateOSD", callback)
}

// DeleteOSD is not implemented
func (s *Service) DeleteOSD(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("DeleteOSD", callback)
}

// GetOSDOptions is not implemented
func (s *Service) GetOSDOptions(_ context.Context, _ string, callback any) *core.Future {
	return s.NotImplemented("GetOSDOptions", callback)
}
