package ptz

import (
	"strconv"
	"time"

	"github.com/muurk/onvifctl/internal/soap"
)

// Status is the decoded GetStatus response
type Status struct {
	Position      Vector
	PanTiltMoving string // IDLE, MOVING or UNKNOWN
	ZoomMoving    string
	Error         string
	UTCTime       time.Time
}

// Preset is one entry of a GetPresets response
type Preset struct {
	Token    string
	Name     string
	Position *Vector
}

// Configuration is one entry of a GetConfigurations response
type Configuration struct {
	Token          string
	Name           string
	NodeToken      string
	DefaultTimeout time.Duration
}

// ParseStatus decodes a GetStatus result. Missing parts stay zero.
func ParseStatus(res *soap.Result) *Status {
	status := soap.Lookup(res.Response(), "PTZStatus")
	st := &Status{}
	if pos := parseVector(soap.Lookup(asNode(status), "Position")); pos != nil {
		st.Position = *pos
	}
	st.PanTiltMoving = soap.Text(soap.Lookup(asNode(status), "MoveStatus", "PanTilt"))
	st.ZoomMoving = soap.Text(soap.Lookup(asNode(status), "MoveStatus", "Zoom"))
	st.Error = soap.Text(soap.Lookup(asNode(status), "Error"))
	if t, err := time.Parse(time.RFC3339, soap.Text(soap.Lookup(asNode(status), "UtcTime"))); err == nil {
		st.UTCTime = t
	}
	return st
}

// ParsePresets decodes a GetPresets result in device order, skipping
// presets without a token
func ParsePresets(res *soap.Result) []Preset {
	var presets []Preset
	for _, p := range soap.All(res.Response()["Preset"]) {
		token := soap.Attr(p, "token")
		if token == "" {
			continue
		}
		n := asNode(p)
		presets = append(presets, Preset{
			Token:    token,
			Name:     soap.Text(n["Name"]),
			Position: parseVector(n["PTZPosition"]),
		})
	}
	return presets
}

// ParseConfigurations decodes a GetConfigurations result
func ParseConfigurations(res *soap.Result) []Configuration {
	var configs []Configuration
	for _, c := range soap.All(res.Response()["PTZConfiguration"]) {
		n := asNode(c)
		cfg := Configuration{
			Token:     soap.Attr(c, "token"),
			Name:      soap.Text(n["Name"]),
			NodeToken: soap.Text(n["NodeToken"]),
		}
		if d, err := ParseDuration(soap.Text(n["DefaultPTZTimeout"])); err == nil {
			cfg.DefaultTimeout = d
		}
		configs = append(configs, cfg)
	}
	return configs
}

func asNode(v any) soap.Node {
	n, _ := soap.First(v).(soap.Node)
	return n
}

func parseVector(v any) *Vector {
	n := asNode(v)
	if n == nil {
		return nil
	}
	var out Vector
	if pt, ok := n["PanTilt"]; ok {
		out.PanTilt = &Vector2D{
			X:     parseFloat(soap.Attr(pt, "x")),
			Y:     parseFloat(soap.Attr(pt, "y")),
			Space: soap.Attr(pt, "space"),
		}
	}
	if z, ok := n["Zoom"]; ok {
		out.Zoom = &Vector1D{
			X:     parseFloat(soap.Attr(z, "x")),
			Space: soap.Attr(z, "space"),
		}
	}
	if out.PanTilt == nil && out.Zoom == nil {
		return nil
	}
	return &out
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
