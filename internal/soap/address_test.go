package soap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceAddress_DefaultPath(t *testing.T) {
	addr, err := NewServiceAddress("192.168.1.64", 8080)
	require.NoError(t, err)

	for _, c := range Categories {
		assert.Equal(t, "http://192.168.1.64:8080/onvif/device_service", addr.URL(c))
	}
}

func TestServiceAddress_WithPathIsCopy(t *testing.T) {
	addr, err := NewServiceAddress("cam.local", 80)
	require.NoError(t, err)

	imaging := addr.WithPath(CategoryImaging, "onvif/imaging_service")
	assert.Equal(t, "http://cam.local:80/onvif/imaging_service", imaging.URL(CategoryImaging))
	assert.Equal(t, "http://cam.local:80/onvif/device_service", addr.URL(CategoryImaging))

	both := imaging.WithPath(CategoryPTZ, "/onvif/ptz_service")
	assert.Equal(t, "/onvif/imaging_service", both.Path(CategoryImaging))
	assert.Equal(t, DefaultServicePath, imaging.Path(CategoryPTZ))
}

func TestServiceAddress_IPv6(t *testing.T) {
	addr, err := NewServiceAddress("fe80::1", 80)
	require.NoError(t, err)
	assert.Equal(t, "http://[fe80::1]:80/onvif/device_service", addr.URL(CategoryDevice))
}

func TestServiceAddress_Invalid(t *testing.T) {
	tests := []struct {
		name string
		host string
		port int
	}{
		{"empty host", "", 80},
		{"path in host", "cam/onvif", 80},
		{"zero port", "cam", 0},
		{"port too large", "cam", 70000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewServiceAddress(tt.host, tt.port)
			assert.True(t, IsInvalidArgument(err), "got %v", err)
		})
	}
}

func TestParseServiceAddress(t *testing.T) {
	tests := []struct {
		xaddr      string
		wantScheme string
		wantHost   string
		wantPort   int
		wantPath   string
	}{
		{"http://192.168.1.64/onvif/device_service", "http", "192.168.1.64", 80, "/onvif/device_service"},
		{"http://192.168.1.64:8000/onvif/Imaging", "http", "192.168.1.64", 8000, "/onvif/Imaging"},
		{"https://cam.local/", "https", "cam.local", 443, DefaultServicePath},
	}

	for _, tt := range tests {
		t.Run(tt.xaddr, func(t *testing.T) {
			addr, err := ParseServiceAddress(tt.xaddr)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScheme, addr.Scheme())
			assert.Equal(t, tt.wantHost, addr.Host())
			assert.Equal(t, tt.wantPort, addr.Port())
			assert.Equal(t, tt.wantPath, addr.Path(CategoryDevice))
		})
	}

	for _, bad := range []string{"", "not a url", "ftp://cam/onvif", "http://cam:port/x"} {
		_, err := ParseServiceAddress(bad)
		assert.Error(t, err, bad)
	}
}

func TestServiceAddress_WithScheme(t *testing.T) {
	addr, err := NewServiceAddress("cam", 443)
	require.NoError(t, err)
	addr = addr.WithPath(CategoryMedia, "/onvif/media")

	secure, err := addr.WithScheme("https")
	require.NoError(t, err)
	assert.Equal(t, "https://cam:443/onvif/media", secure.URL(CategoryMedia))

	_, err = addr.WithScheme("gopher")
	assert.Error(t, err)
}
