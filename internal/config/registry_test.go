package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	}

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "onvifctl") {
		t.Errorf("GetConfigDir() = %v, should contain 'onvifctl'", configDir)
	}

	if runtime.GOOS == "linux" && configDir != filepath.Join("/tmp/xdg", "onvifctl") {
		t.Errorf("GetConfigDir() = %v, want XDG_CONFIG_HOME based path", configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestGetConfigPathOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "cameras.yaml")
	t.Setenv(ConfigEnvVar, want)

	got, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Cameras == nil {
		t.Error("NewRegistry().Cameras should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if got := reg.Preferences.Timeout(); got != 15*time.Second {
		t.Errorf("Timeout() = %v, want 15s", got)
	}
	if len(reg.Preferences.ProbeSuites) != 4 {
		t.Errorf("ProbeSuites = %v, want all four suites", reg.Preferences.ProbeSuites)
	}
}

func TestRegistryAddCamera(t *testing.T) {
	tests := []struct {
		name    string
		camName string
		cam     *Camera
		wantErr bool
	}{
		{"valid", "gate", &Camera{Address: "192.168.1.64", Username: "admin"}, false},
		{"valid https", "door-2", &Camera{Address: "cam.local", Port: 8443, Scheme: "https"}, false},
		{"empty name", "", &Camera{Address: "192.168.1.64"}, true},
		{"name with space", "front door", &Camera{Address: "192.168.1.64"}, true},
		{"nil camera", "gate", nil, true},
		{"no address", "gate", &Camera{}, true},
		{"bad port", "gate", &Camera{Address: "cam", Port: 70000}, true},
		{"bad scheme", "gate", &Camera{Address: "cam", Scheme: "rtsp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			err := reg.AddCamera(tt.camName, tt.cam)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AddCamera() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && reg.GetCamera(tt.camName) != tt.cam {
				t.Error("GetCamera() did not return the added camera")
			}
		})
	}
}

func TestRegistryRemoveCamera(t *testing.T) {
	reg := NewRegistry()
	if err := reg.AddCamera("gate", &Camera{Address: "192.168.1.64"}); err != nil {
		t.Fatal(err)
	}

	if !reg.RemoveCamera("gate") {
		t.Error("RemoveCamera() = false for existing camera")
	}
	if reg.RemoveCamera("gate") {
		t.Error("RemoveCamera() = true for removed camera")
	}
	if reg.GetCamera("gate") != nil {
		t.Error("camera still present after removal")
	}
}

func TestRegistryCameraNames(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"yard", "gate", "porch"} {
		if err := reg.AddCamera(name, &Camera{Address: "10.0.0.1"}); err != nil {
			t.Fatal(err)
		}
	}

	got := strings.Join(reg.CameraNames(), ",")
	if got != "gate,porch,yard" {
		t.Errorf("CameraNames() = %v, want sorted names", got)
	}
}

func TestRegistryUpdateCameraIdentity(t *testing.T) {
	reg := NewRegistry()
	if err := reg.AddCamera("gate", &Camera{Address: "10.0.0.1"}); err != nil {
		t.Fatal(err)
	}

	before := time.Now()
	reg.UpdateCameraIdentity("gate", "Acme", "Dome")
	reg.UpdateCameraIdentity("missing", "Acme", "Dome")

	cam := reg.GetCamera("gate")
	if cam.Manufacturer != "Acme" || cam.Model != "Dome" {
		t.Errorf("identity = %q %q, want Acme Dome", cam.Manufacturer, cam.Model)
	}
	if cam.LastSeen.Before(before) {
		t.Error("LastSeen was not updated")
	}
	if reg.GetCamera("missing") != nil {
		t.Error("UpdateCameraIdentity() created a camera")
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	reg.Preferences.TimeoutSeconds = 5
	reg.Preferences.CaptureRoot = "/tmp/captures"
	if err := reg.AddCamera("gate", &Camera{
		Address:       "192.168.1.64",
		Port:          8080,
		Username:      "admin",
		CaptureFolder: "gate",
		InsecureTLS:   true,
	}); err != nil {
		t.Fatal(err)
	}

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(strings.ToLower(string(data)), "password:") {
		t.Error("config file must not contain a password field")
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	cam := loaded.GetCamera("gate")
	if cam == nil {
		t.Fatal("camera not loaded")
	}
	if cam.Address != "192.168.1.64" || cam.Port != 8080 || cam.Username != "admin" || !cam.InsecureTLS {
		t.Errorf("loaded camera = %+v", cam)
	}
	if loaded.Preferences.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", loaded.Preferences.Timeout())
	}
	if loaded.Preferences.CaptureRoot != "/tmp/captures" {
		t.Errorf("CaptureRoot = %q", loaded.Preferences.CaptureRoot)
	}
}

func TestLoadRegistryFromMissingFile(t *testing.T) {
	reg, err := LoadRegistryFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Version != 1 || reg.Preferences == nil {
		t.Errorf("expected default registry, got %+v", reg)
	}
}

func TestLoadRegistryFromRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong version", "version: 2\n"},
		{"not yaml", "version: [1\n"},
		{"camera without address", "version: 1\ncameras:\n  gate:\n    port: 80\n"},
		{"bad camera name", "version: 1\ncameras:\n  \"-gate\":\n    address: 10.0.0.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadRegistryFrom(path); err == nil {
				t.Error("LoadRegistryFrom() expected error")
			}
		})
	}
}
