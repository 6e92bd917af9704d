package ptz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/validate"
)

// Generic coordinate spaces
const (
	PanTiltPositionGenericSpace    = "http://www.onvif.org/ver10/tptz/PanTiltSpaces/PositionGenericSpace"
	ZoomPositionGenericSpace       = "http://www.onvif.org/ver10/tptz/ZoomSpaces/PositionGenericSpace"
	PanTiltTranslationGenericSpace = "http://www.onvif.org/ver10/tptz/PanTiltSpaces/TranslationGenericSpace"
	ZoomTranslationGenericSpace    = "http://www.onvif.org/ver10/tptz/ZoomSpaces/TranslationGenericSpace"
	PanTiltVelocityGenericSpace    = "http://www.onvif.org/ver10/tptz/PanTiltSpaces/VelocityGenericSpace"
	ZoomVelocityGenericSpace       = "http://www.onvif.org/ver10/tptz/ZoomSpaces/VelocityGenericSpace"
	PanTiltSpeedGenericSpace       = "http://www.onvif.org/ver10/tptz/PanTiltSpaces/GenericSpeedSpace"
	ZoomSpeedGenericSpace          = "http://www.onvif.org/ver10/tptz/ZoomSpaces/ZoomGenericSpeedSpace"
)

// Vector is a pan/tilt and/or zoom value. At least one part must be set.
type Vector struct {
	PanTilt *Vector2D
	Zoom    *Vector1D
}

// Vector2D is a pan (X) and tilt (Y) value
type Vector2D struct {
	X, Y  float64
	Space string
}

// Vector1D is a zoom value
type Vector1D struct {
	X     float64
	Space string
}

// PanTilt returns a vector moving only pan/tilt
func PanTilt(x, y float64) Vector {
	return Vector{PanTilt: &Vector2D{X: x, Y: y}}
}

// Zoom returns a vector moving only zoom
func Zoom(x float64) Vector {
	return Vector{Zoom: &Vector1D{X: x}}
}

// Validate checks that the vector has a component and that its values are numbers
func (v Vector) Validate() error {
	if v.PanTilt == nil && v.Zoom == nil {
		return errors.New("must set PanTilt, Zoom or both")
	}
	if v.PanTilt != nil {
		if msg := validate.InvalidValue(v.PanTilt.X, validate.Number); msg != "" {
			return fmt.Errorf("PanTilt.X %s", msg)
		}
		if msg := validate.InvalidValue(v.PanTilt.Y, validate.Number); msg != "" {
			return fmt.Errorf("PanTilt.Y %s", msg)
		}
	}
	if v.Zoom != nil {
		if msg := validate.InvalidValue(v.Zoom.X, validate.Number); msg != "" {
			return fmt.Errorf("Zoom.X %s", msg)
		}
	}
	return nil
}

// appendVector writes v into el as <tt:PanTilt x y space/><tt:Zoom x space/>
func appendVector(el *etree.Element, v Vector) {
	if v.PanTilt != nil {
		pt := el.CreateElement("tt:PanTilt")
		pt.CreateAttr("x", soap.FormatFloat(v.PanTilt.X))
		pt.CreateAttr("y", soap.FormatFloat(v.PanTilt.Y))
		if v.PanTilt.Space != "" {
			pt.CreateAttr("space", v.PanTilt.Space)
		}
	}
	if v.Zoom != nil {
		z := el.CreateElement("tt:Zoom")
		z.CreateAttr("x", soap.FormatFloat(v.Zoom.X))
		if v.Zoom.Space != "" {
			z.CreateAttr("space", v.Zoom.Space)
		}
	}
}

// FormatDuration renders d as an xs:duration ("PT1.5S")
func FormatDuration(d time.Duration) string {
	return "PT" + soap.FormatFloat(d.Seconds()) + "S"
}

// ParseDuration reads the subset of xs:duration devices use for timeouts
// (PnDTnHnMnS, without years or months)
func ParseDuration(s string) (time.Duration, error) {
	orig := s
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("invalid duration %q", orig)
	}
	s = s[1:]

	var total time.Duration
	inTime := false
	parts := 0
	for s != "" {
		if s[0] == 'T' {
			inTime = true
			s = s[1:]
			continue
		}
		i := strings.IndexAny(s, "DHMS")
		if i <= 0 {
			return 0, fmt.Errorf("invalid duration %q", orig)
		}
		unit := s[i]
		n, err := time.ParseDuration(s[:i] + "s")
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", orig)
		}
		switch {
		case unit == 'D' && !inTime:
			total += n * 24 * 60 * 60
		case unit == 'H' && inTime:
			total += n * 60 * 60
		case unit == 'M' && inTime:
			total += n * 60
		case unit == 'S' && inTime:
			total += n
		default:
			return 0, fmt.Errorf("invalid duration %q", orig)
		}
		s = s[i+1:]
		parts++
	}
	if parts == 0 {
		return 0, fmt.Errorf("invalid duration %q", orig)
	}
	if neg {
		total = -total
	}
	return total, nil
}
