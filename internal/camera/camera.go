// Package camera connects to an ONVIF device and wires every feature module
// to one shared session.
//
// Connect measures the device clock offset with an unauthenticated
// GetSystemDateAndTime, discovers per-service paths with GetCapabilities and
// then initializes the device, imaging, ptz, media and display modules with
// the same session. Modules never share a session with another camera.
package camera

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/onvifctl/internal/core"
	"github.com/muurk/onvifctl/internal/device"
	"github.com/muurk/onvifctl/internal/display"
	"github.com/muurk/onvifctl/internal/imaging"
	"github.com/muurk/onvifctl/internal/logging"
	"github.com/muurk/onvifctl/internal/media"
	"github.com/muurk/onvifctl/internal/ptz"
	"github.com/muurk/onvifctl/internal/soap"
)

// Options configures Connect
type Options struct {
	// Host is a host name or IP address. Ignored when XAddr is set.
	Host string
	// Port defaults to 80, or 443 for https
	Port int
	// Scheme is "http" (default) or "https"
	Scheme string
	// XAddr is a full device service URL, as returned by discovery
	XAddr string

	Username string
	Password string

	// Dispatcher sends requests. When nil an HTTPDispatcher is built from
	// Timeout, InsecureTLS and Capture.
	Dispatcher  soap.Dispatcher
	Timeout     time.Duration
	InsecureTLS bool
	Capture     soap.Capture

	// SkipCapabilities keeps the default service path for every category
	SkipCapabilities bool

	// Now is the local clock; time.Now when nil
	Now func() time.Time
}

// Camera is a connected device with every feature module initialized
type Camera struct {
	Session *core.Session

	Device  *device.Service
	Imaging *imaging.Service
	PTZ     *ptz.Service
	Media   *media.Service
	Display *display.Service

	profileToken string
}

func (o Options) address() (soap.ServiceAddress, error) {
	if o.XAddr != "" {
		return soap.ParseServiceAddress(o.XAddr)
	}

	scheme := o.Scheme
	if scheme == "" {
		scheme = "http"
	}
	port := o.Port
	if port == 0 {
		port = soap.DefaultPort
		if scheme == "https" {
			port = 443
		}
	}
	addr, err := soap.NewServiceAddress(o.Host, port)
	if err != nil {
		return soap.ServiceAddress{}, err
	}
	return addr.WithScheme(scheme)
}

func (o Options) dispatcher() soap.Dispatcher {
	if o.Dispatcher != nil {
		return o.Dispatcher
	}
	var opts []soap.DispatcherOption
	if o.Timeout > 0 {
		opts = append(opts, soap.WithTimeout(o.Timeout))
	}
	if o.InsecureTLS {
		opts = append(opts, soap.WithInsecureTLS())
	}
	if o.Username != "" {
		opts = append(opts, soap.WithHTTPDigest(o.Username, o.Password))
	}
	if o.Capture != nil {
		opts = append(opts, soap.WithCapture(o.Capture))
	}
	return soap.NewHTTPDispatcher(opts...)
}

// Connect resolves the device clock offset and service paths, then returns
// a Camera whose modules all share one session
func Connect(ctx context.Context, opts Options) (*Camera, error) {
	addr, err := opts.address()
	if err != nil {
		return nil, err
	}
	if opts.Password != "" && opts.Username == "" {
		return nil, soap.NewInvalidArgument("Connect", "password", "is set without a username")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	dispatcher := opts.dispatcher()

	clockDiff, err := measureClock(ctx, dispatcher, addr, now)
	if err != nil {
		return nil, err
	}

	if !opts.SkipCapabilities {
		addr, err = resolvePaths(ctx, dispatcher, addr, clockDiff, opts.Username, opts.Password)
		if err != nil {
			return nil, err
		}
	}

	session, err := core.NewSession(clockDiff, addr, opts.Username, opts.Password)
	if err != nil {
		return nil, err
	}
	cam := &Camera{
		Session: session,
		Device:  device.New(dispatcher),
		Imaging: imaging.New(dispatcher),
		PTZ:     ptz.New(dispatcher),
		Media:   media.New(dispatcher),
		Display: display.New(dispatcher),
	}
	for _, m := range cam.modules() {
		if err := m.Init(session); err != nil {
			return nil, fmt.Errorf("failed to initialize %s module: %w", m.Category(), err)
		}
	}

	logging.Info("Connected to camera",
		zap.String("session", session.Redacted()),
		zap.Duration("clock_difference", clockDiff))
	return cam, nil
}

// Module returns the initialized module serving category, or nil when no
// module does
func (c *Camera) Module(category soap.Category) *core.Service {
	for _, m := range c.modules() {
		if m.Category() == category {
			return m
		}
	}
	return nil
}

func (c *Camera) modules() []*core.Service {
	return []*core.Service{
		c.Device.Service,
		c.Imaging.Service,
		c.PTZ.Service,
		c.Media.Service,
		c.Display.Service,
	}
}

// measureClock returns device time minus local time. A device that refuses
// the unauthenticated call is assumed to be in sync; an unreachable one is
// an error.
func measureClock(ctx context.Context, dispatcher soap.Dispatcher, addr soap.ServiceAddress, now func() time.Time) (time.Duration, error) {
	session, err := core.NewSession(0, addr, "", "")
	if err != nil {
		return 0, err
	}
	dev := device.New(dispatcher)
	if err := dev.Init(session); err != nil {
		return 0, err
	}

	res, err := dev.GetSystemDateAndTime(ctx, nil).Await(ctx)
	local := now()
	if err != nil {
		if soap.IsProtocolFault(err) || soap.IsMalformedResponse(err) {
			logging.Warn("Could not read device clock, assuming no skew", zap.Error(err))
			return 0, nil
		}
		return 0, fmt.Errorf("failed to reach camera at %s: %w", addr, err)
	}

	diff, err := device.ClockDifference(res, local)
	if err != nil {
		logging.Warn("Could not decode device clock, assuming no skew", zap.Error(err))
		return 0, nil
	}
	logging.Debug("Measured device clock", zap.Duration("difference", diff))
	return diff, nil
}

// resolvePaths asks the device for its service XAddrs and copies their
// paths onto addr. Host and port stay as given so NATed devices still work.
func resolvePaths(ctx context.Context, dispatcher soap.Dispatcher, addr soap.ServiceAddress, clockDiff time.Duration, username, password string) (soap.ServiceAddress, error) {
	session, err := core.NewSession(clockDiff, addr, username, password)
	if err != nil {
		return addr, err
	}
	dev := device.New(dispatcher)
	if err := dev.Init(session); err != nil {
		return addr, err
	}

	res, err := dev.GetCapabilities(ctx, "All", nil).Await(ctx)
	if err != nil {
		if soap.IsInvalidArgument(err) || ctx.Err() != nil {
			return addr, err
		}
		logging.Warn("GetCapabilities failed, using default service paths", zap.Error(err))
		return addr, nil
	}

	for category, xaddr := range device.ServiceXAddrs(res) {
		u, err := url.Parse(xaddr)
		if err != nil || u.Path == "" {
			logging.Debug("Ignoring service address", zap.String("category", string(category)), zap.String("xaddr", xaddr))
			continue
		}
		addr = addr.WithPath(category, u.Path)
	}
	return addr, nil
}
