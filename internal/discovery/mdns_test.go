package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		service  string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name:    "axis camera with IPv4",
			service: "_axis-video._tcp",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "AXIS M3045-V - ACCC8E123456"},
				HostName:      "axis-accc8e123456.local.",
				Port:          80,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"macaddress=ACCC8E123456"},
			},
			wantIP:   "192.168.4.16",
			wantPort: 80,
		},
		{
			name:    "camera announced as web server",
			service: "_http._tcp",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Hikvision DS-2CD2143"},
				HostName:      "ds-2cd2143.local.",
				Port:          8080,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantIP:   "10.0.0.5",
			wantPort: 8080,
		},
		{
			name:    "printer announced as web server",
			service: "_http._tcp",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Office Printer"},
				HostName:      "printer.local.",
				Port:          80,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.9")},
			},
			wantNil: true,
		},
		{
			name:    "rtsp answer uses web port",
			service: "_rtsp._tcp",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Garage"},
				HostName:      "garage.local.",
				Port:          554,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.7")},
			},
			wantIP:   "10.0.0.7",
			wantPort: 80,
		},
		{
			name:    "no port defaults to 80",
			service: "_onvif._tcp",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Yard"},
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantIP:   "172.16.0.1",
			wantPort: 80,
		},
		{
			name:    "IPv6 only",
			service: "_onvif._tcp",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Yard"},
				Port:          80,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantIP:   "fe80::1",
			wantPort: 80,
		},
		{
			name:    "no address",
			service: "_onvif._tcp",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Yard"},
				Port:          80,
			},
			wantNil: true,
		},
		{
			name:    "nil entry",
			service: "_onvif._tcp",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := parseServiceEntry(tt.service, tt.entry)

			if tt.wantNil {
				if device != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", device)
				}
				return
			}
			if device == nil {
				t.Fatal("parseServiceEntry() = nil, want device")
			}
			if device.IP != tt.wantIP {
				t.Errorf("device.IP = %v, want %v", device.IP, tt.wantIP)
			}
			if device.Port != tt.wantPort {
				t.Errorf("device.Port = %v, want %v", device.Port, tt.wantPort)
			}
			if device.Service != tt.service {
				t.Errorf("device.Service = %v, want %v", device.Service, tt.service)
			}
			if time.Since(device.DiscoveredAt) > time.Second {
				t.Errorf("device.DiscoveredAt is not recent: %v", device.DiscoveredAt)
			}
		})
	}
}

func TestParseServiceEntry_Metadata(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "Gate"},
		Port:          80,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
		Text:          []string{"macaddress=ACCC8E123456", "flag", "path=/onvif"},
	}

	device := parseServiceEntry("_axis-video._tcp", entry)
	if device == nil {
		t.Fatal("parseServiceEntry() = nil, want device")
	}

	expectedMetadata := map[string]string{
		"macaddress": "ACCC8E123456",
		"flag":       "", // Key without value
		"path":       "/onvif",
	}

	if len(device.Metadata) != len(expectedMetadata) {
		t.Errorf("device.Metadata has %d entries, want %d", len(device.Metadata), len(expectedMetadata))
	}
	for key, expectedValue := range expectedMetadata {
		if actualValue, ok := device.Metadata[key]; !ok {
			t.Errorf("device.Metadata missing key %q", key)
		} else if actualValue != expectedValue {
			t.Errorf("device.Metadata[%q] = %q, want %q", key, actualValue, expectedValue)
		}
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
	if len(scanner.Services) != len(CameraServices)+1 {
		t.Errorf("scanner.Services = %v, want camera services plus %s", scanner.Services, genericService)
	}

	// the default list must not alias the package variable
	scanner.Services[0] = "_changed._tcp"
	if CameraServices[0] == "_changed._tcp" {
		t.Error("NewScanner() shares its service list with CameraServices")
	}
}

func TestCameraPattern(t *testing.T) {
	tests := []struct {
		name        string
		shouldMatch bool
	}{
		{"AXIS P1448-LE", true},
		{"ipc-garage.local.", true},
		{"Reolink RLC-810A", true},
		{"FrontDoorCam", true},
		{"Living Room Speaker", false},
		{"nas.local.", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cameraPattern.MatchString(tt.name); got != tt.shouldMatch {
				t.Errorf("cameraPattern.MatchString(%q) = %v, want %v", tt.name, got, tt.shouldMatch)
			}
		})
	}
}
