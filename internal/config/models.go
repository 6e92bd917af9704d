package config

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                `yaml:"version"`
	Cameras     map[string]*Camera `yaml:"cameras,omitempty"` // Keyed by camera name
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Camera is one saved device
type Camera struct {
	Address       string    `yaml:"address"`                  // Host name or IP address
	Port          int       `yaml:"port,omitempty"`           // 0 means the scheme default
	Scheme        string    `yaml:"scheme,omitempty"`         // http (default) or https
	Username      string    `yaml:"username,omitempty"`       // Empty for unauthenticated cameras
	CaptureFolder string    `yaml:"capture_folder,omitempty"` // Per-camera folder under the capture root
	InsecureTLS   bool      `yaml:"insecure_tls,omitempty"`   // Skip certificate verification
	Manufacturer  string    `yaml:"manufacturer,omitempty"`   // Last reported by the device
	Model         string    `yaml:"model,omitempty"`
	LastSeen      time.Time `yaml:"last_seen,omitempty"`
	// Password is NEVER stored in config file for security reasons
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	TimeoutSeconds  int      `yaml:"timeout_seconds"`        // Per-request HTTP timeout
	CaptureRoot     string   `yaml:"capture_root,omitempty"` // Enables request/response capture when set
	DiscoverTimeout int      `yaml:"discover_timeout"`       // mDNS discovery timeout in seconds
	ProbeSuites     []string `yaml:"probe_suites,omitempty"` // Suites run by "probe" without --suite
}

var cameraNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

func defaultPreferences() *Preferences {
	return &Preferences{
		TimeoutSeconds:  15,
		DiscoverTimeout: 5,
		ProbeSuites:     []string{"device", "media", "imaging", "ptz"},
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     currentVersion,
		Cameras:     make(map[string]*Camera),
		Preferences: defaultPreferences(),
	}
}

// GetCamera retrieves a camera by name.
// Returns nil if the camera doesn't exist in the registry.
func (r *Registry) GetCamera(name string) *Camera {
	return r.Cameras[name]
}

// AddCamera stores cam under name, replacing any camera of that name.
func (r *Registry) AddCamera(name string, cam *Camera) error {
	if err := validateCamera(name, cam); err != nil {
		return err
	}
	if r.Cameras == nil {
		r.Cameras = make(map[string]*Camera)
	}
	r.Cameras[name] = cam
	return nil
}

func validateCamera(name string, cam *Camera) error {
	if !cameraNamePattern.MatchString(name) {
		return fmt.Errorf("invalid camera name %q: use letters, digits, '.', '_' or '-'", name)
	}
	if cam == nil || cam.Address == "" {
		return fmt.Errorf("camera %q has no address", name)
	}
	if cam.Port < 0 || cam.Port > 65535 {
		return fmt.Errorf("camera %q has invalid port %d", name, cam.Port)
	}
	if cam.Scheme != "" && cam.Scheme != "http" && cam.Scheme != "https" {
		return fmt.Errorf("camera %q has invalid scheme %q (expected http or https)", name, cam.Scheme)
	}
	return nil
}

// RemoveCamera deletes a camera. Returns false if it did not exist.
func (r *Registry) RemoveCamera(name string) bool {
	if _, ok := r.Cameras[name]; !ok {
		return false
	}
	delete(r.Cameras, name)
	return true
}

// UpdateCameraIdentity records what the device reported about itself.
func (r *Registry) UpdateCameraIdentity(name, manufacturer, model string) {
	cam := r.Cameras[name]
	if cam == nil {
		return
	}
	cam.Manufacturer = manufacturer
	cam.Model = model
	cam.LastSeen = time.Now()
}

// CameraNames returns the saved camera names in sorted order.
func (r *Registry) CameraNames() []string {
	names := make([]string, 0, len(r.Cameras))
	for name := range r.Cameras {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Timeout returns the request timeout preference.
func (p *Preferences) Timeout() time.Duration {
	if p == nil || p.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}
