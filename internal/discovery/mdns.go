package discovery

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/onvifctl/internal/logging"
)

const (
	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for camera discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is used when an answer carries no port
	DefaultPort = 80

	// genericService is browsed too, but only camera-looking answers are kept
	genericService = "_http._tcp"
)

// CameraServices are DNS-SD service types only cameras announce
var CameraServices = []string{
	"_axis-video._tcp",
	"_onvif._tcp",
	"_rtsp._tcp",
}

// cameraPattern matches instance or host names of cameras announced as
// generic web servers
var cameraPattern = regexp.MustCompile(`(?i)(cam|ipc|nvr|dvr|onvif|axis|hikvision|dahua|reolink|amcrest|hanwha|uniview)`)

// Scanner handles mDNS camera discovery
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration

	// Services are the service types to browse; CameraServices plus
	// "_http._tcp" by default
	Services []string
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout:  DefaultScanTimeout,
		Services: append(append([]string{}, CameraServices...), genericService),
	}
}

// Scan browses every configured service type until the timeout and returns
// the cameras found, one per address and port, sorted by IP
func (s *Scanner) Scan(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		found      = make(map[string]*Device)
		browseErrs []error
	)

	for _, service := range s.Services {
		resolver, err := zeroconf.NewResolver(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
		}

		entries := make(chan *zeroconf.ServiceEntry)
		wg.Add(1)
		go func(service string) {
			defer wg.Done()
			for entry := range entries {
				device := parseServiceEntry(service, entry)
				if device == nil {
					continue
				}
				key := fmt.Sprintf("%s:%d", device.IP, device.Port)
				mu.Lock()
				if existing, ok := found[key]; !ok || existing.Service == genericService {
					found[key] = device
				}
				mu.Unlock()
			}
		}(service)

		if err := resolver.Browse(ctx, service, ServiceDomain, entries); err != nil {
			logging.Debug("mDNS browse failed", zap.String("service", service), zap.Error(err))
			browseErrs = append(browseErrs, err)
			// the resolver only closes entries once browsing has started
			close(entries)
		}
	}

	<-ctx.Done()
	wg.Wait()

	if len(browseErrs) == len(s.Services) && len(browseErrs) > 0 {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", browseErrs[0])
	}

	devices := make([]*Device, 0, len(found))
	for _, d := range found {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].IP != devices[j].IP {
			return devices[i].IP < devices[j].IP
		}
		return devices[i].Port < devices[j].Port
	})
	return devices, nil
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Returns nil if the entry has no address or does not look like a camera.
func parseServiceEntry(service string, entry *zeroconf.ServiceEntry) *Device {
	if entry == nil {
		return nil
	}
	if service == genericService &&
		!cameraPattern.MatchString(entry.Instance) && !cameraPattern.MatchString(entry.HostName) {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	// RTSP answers carry the stream port, not the web one
	if port == 0 || service == "_rtsp._tcp" {
		port = DefaultPort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Device{
		Instance:     entry.Instance,
		Service:      service,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
