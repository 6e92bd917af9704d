// Package config manages the onvifctl camera registry.
//
// The registry is a YAML file listing cameras by a user-chosen name (address,
// port, scheme, username and capture settings) plus application preferences
// such as the request timeout and the probe suites to run by default.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/onvifctl/config.yaml or $HOME/.config/onvifctl/config.yaml
//   - macOS: $HOME/.config/onvifctl/config.yaml
//   - Windows: %LOCALAPPDATA%\onvifctl\config.yaml
//
// ONVIFCTL_CONFIG, when set, names the file directly.
//
// # Security
//
// Camera passwords are NEVER stored. They are prompted for, or read from the
// ONVIFCTL_PASSWORD environment variable, every time they are needed.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = registry.AddCamera("gate", &config.Camera{
//	    Address:  "192.168.1.64",
//	    Username: "admin",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
