package discovery

import (
	"testing"
)

func TestDevice_String(t *testing.T) {
	device := &Device{
		Instance: "AXIS M3045-V",
		Service:  "_axis-video._tcp",
		IP:       "192.168.4.16",
		Port:     80,
	}

	expected := "AXIS M3045-V (_axis-video._tcp) at 192.168.4.16:80"
	if device.String() != expected {
		t.Errorf("Device.String() = %v, want %v", device.String(), expected)
	}
}

func TestDevice_XAddr(t *testing.T) {
	tests := []struct {
		name     string
		device   *Device
		expected string
	}{
		{
			name:     "standard HTTP port",
			device:   &Device{IP: "192.168.4.16", Port: 80},
			expected: "http://192.168.4.16:80/onvif/device_service",
		},
		{
			name:     "custom port",
			device:   &Device{IP: "10.0.0.5", Port: 8080},
			expected: "http://10.0.0.5:8080/onvif/device_service",
		},
		{
			name:     "IPv6",
			device:   &Device{IP: "fe80::1", Port: 80},
			expected: "http://[fe80::1]:80/onvif/device_service",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.XAddr(); got != tt.expected {
				t.Errorf("Device.XAddr() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDevice_GetMetadata(t *testing.T) {
	device := &Device{Metadata: map[string]string{"macaddress": "ACCC8E123456"}}

	if got := device.GetMetadata("macaddress"); got != "ACCC8E123456" {
		t.Errorf("GetMetadata(macaddress) = %q", got)
	}
	if got := device.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q, want empty", got)
	}

	var empty Device
	if got := empty.GetMetadata("anything"); got != "" {
		t.Errorf("GetMetadata on nil map = %q, want empty", got)
	}
}
