package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/muurk/onvifctl/internal/soap"
)

// Device represents a camera found on the network
type Device struct {
	// Instance is the advertised service instance name (e.g., "AXIS M3045-V - ACCC8E123456")
	Instance string

	// Service is the DNS-SD service type it was found under
	Service string

	// Hostname is the mDNS hostname (e.g., "axis-accc8e123456.local.")
	Hostname string

	// IP is the address, IPv4 preferred
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Metadata contains the TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s (%s) at %s", d.Instance, d.Service, net.JoinHostPort(d.IP, strconv.Itoa(d.Port)))
}

// XAddr returns the conventional ONVIF device service URL of the camera
func (d *Device) XAddr() string {
	return fmt.Sprintf("http://%s%s", net.JoinHostPort(d.IP, strconv.Itoa(d.Port)), soap.DefaultServicePath)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
