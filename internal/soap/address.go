package soap

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Category names the device service an operation belongs to
type Category string

const (
	CategoryDevice    Category = "device"
	CategoryImaging   Category = "imaging"
	CategoryPTZ       Category = "ptz"
	CategoryMedia     Category = "media"
	CategoryDisplay   Category = "display"
	CategoryEvents    Category = "events"
	CategoryAnalytics Category = "analytics"
)

// Categories lists every known category in a stable order
var Categories = []Category{
	CategoryDevice,
	CategoryImaging,
	CategoryPTZ,
	CategoryMedia,
	CategoryDisplay,
	CategoryEvents,
	CategoryAnalytics,
}

const (
	// DefaultServicePath is used for any category without a known path
	DefaultServicePath = "/onvif/device_service"

	// DefaultPort is the HTTP port assumed when none is given
	DefaultPort = 80
)

// ServiceAddress is an immutable device endpoint: scheme, host, port and
// optional per-category service paths. The zero value is not usable; build
// one with NewServiceAddress or ParseServiceAddress.
type ServiceAddress struct {
	scheme string
	host   string
	port   int
	paths  map[Category]string
}

// NewServiceAddress creates an address for host:port using plain HTTP
func NewServiceAddress(host string, port int) (ServiceAddress, error) {
	return newServiceAddress("http", host, port)
}

func newServiceAddress(scheme, host string, port int) (ServiceAddress, error) {
	if host == "" {
		return ServiceAddress{}, NewInvalidArgument("ServiceAddress", "host", "is empty")
	}
	if strings.ContainsAny(host, "/?#@ ") {
		return ServiceAddress{}, NewInvalidArgument("ServiceAddress", "host", fmt.Sprintf("%q is not a host name or IP address", host))
	}
	if port < 1 || port > 65535 {
		return ServiceAddress{}, NewInvalidArgument("ServiceAddress", "port", fmt.Sprintf("%d is out of range (1-65535)", port))
	}
	if scheme != "http" && scheme != "https" {
		return ServiceAddress{}, NewInvalidArgument("ServiceAddress", "scheme", fmt.Sprintf("%q is not http or https", scheme))
	}
	return ServiceAddress{scheme: scheme, host: host, port: port}, nil
}

// ParseServiceAddress builds an address from a device XAddr such as
// "http://192.168.1.10/onvif/device_service". The XAddr's path becomes the
// device category path.
func ParseServiceAddress(xaddr string) (ServiceAddress, error) {
	u, err := url.Parse(xaddr)
	if err != nil || u.Host == "" {
		return ServiceAddress{}, NewInvalidArgument("ServiceAddress", "xaddr", fmt.Sprintf("%q is not an absolute URL", xaddr))
	}

	port := DefaultPort
	if u.Scheme == "https" {
		port = 443
	}
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return ServiceAddress{}, NewInvalidArgument("ServiceAddress", "xaddr", fmt.Sprintf("has invalid port %q", p))
		}
	}

	addr, err := newServiceAddress(u.Scheme, u.Hostname(), port)
	if err != nil {
		return ServiceAddress{}, err
	}
	if u.Path != "" && u.Path != "/" {
		addr = addr.WithPath(CategoryDevice, u.Path)
	}
	return addr, nil
}

// WithPath returns a copy of a with the service path for category replaced
func (a ServiceAddress) WithPath(category Category, path string) ServiceAddress {
	paths := make(map[Category]string, len(a.paths)+1)
	for k, v := range a.paths {
		paths[k] = v
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	paths[category] = path
	a.paths = paths
	return a
}

// WithScheme returns a copy of a using scheme ("http" or "https")
func (a ServiceAddress) WithScheme(scheme string) (ServiceAddress, error) {
	b, err := newServiceAddress(scheme, a.host, a.port)
	if err != nil {
		return ServiceAddress{}, err
	}
	b.paths = a.paths
	return b, nil
}

// Host returns the host name or IP address
func (a ServiceAddress) Host() string { return a.host }

// Port returns the TCP port
func (a ServiceAddress) Port() int { return a.port }

// Scheme returns "http" or "https"
func (a ServiceAddress) Scheme() string { return a.scheme }

// IsZero reports whether a was never initialized
func (a ServiceAddress) IsZero() bool { return a.host == "" }

// Path returns the service path for category, or DefaultServicePath
func (a ServiceAddress) Path(category Category) string {
	if p, ok := a.paths[category]; ok && p != "" {
		return p
	}
	return DefaultServicePath
}

// URL resolves the concrete endpoint for category
func (a ServiceAddress) URL(category Category) string {
	u := url.URL{
		Scheme: a.scheme,
		Host:   net.JoinHostPort(a.host, strconv.Itoa(a.port)),
		Path:   a.Path(category),
	}
	return u.String()
}

// String returns the device endpoint URL
func (a ServiceAddress) String() string {
	return a.URL(CategoryDevice)
}
