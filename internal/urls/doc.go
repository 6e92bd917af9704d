// Package urls holds the documentation links onvifctl prints in help text
// and troubleshooting hints, so they can be updated in one place.
package urls
