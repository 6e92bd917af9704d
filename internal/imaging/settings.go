package imaging

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/validate"
)

// IrCutFilter modes
const (
	IrCutFilterOn   = "ON"
	IrCutFilterOff  = "OFF"
	IrCutFilterAuto = "AUTO"
)

// AutoFocus modes
const (
	AutoFocusAuto   = "AUTO"
	AutoFocusManual = "MANUAL"
)

// Settings holds the imaging settings to change. Nil and empty fields are
// left out of the request and keep their current value on the device.
type Settings struct {
	Brightness      *float64
	ColorSaturation *float64
	Contrast        *float64
	Focus           *FocusConfiguration
	IrCutFilter     string
	Sharpness       *float64

	// ForcePersistence asks the device to keep the change across reboots
	ForcePersistence *bool
}

// FocusConfiguration is the focus part of Settings
type FocusConfiguration struct {
	AutoFocusMode string
	DefaultSpeed  *float64
	NearLimit     *float64
	FarLimit      *float64
}

// Float returns a pointer to v, for filling optional fields
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }

// Validate checks enumerated values, that numbers are finite and that at
// least one field is set
func (s *Settings) Validate() error {
	if s.Brightness == nil && s.ColorSaturation == nil && s.Contrast == nil &&
		s.Focus == nil && s.IrCutFilter == "" && s.Sharpness == nil {
		return errors.New("has no fields set")
	}
	numbers := []struct {
		name  string
		value *float64
	}{
		{"Brightness", s.Brightness},
		{"ColorSaturation", s.ColorSaturation},
		{"Contrast", s.Contrast},
		{"Sharpness", s.Sharpness},
	}
	if s.Focus != nil {
		numbers = append(numbers, []struct {
			name  string
			value *float64
		}{
			{"Focus.DefaultSpeed", s.Focus.DefaultSpeed},
			{"Focus.NearLimit", s.Focus.NearLimit},
			{"Focus.FarLimit", s.Focus.FarLimit},
		}...)
	}
	for _, n := range numbers {
		if err := checkNumber(n.name, n.value); err != nil {
			return err
		}
	}
	switch s.IrCutFilter {
	case "", IrCutFilterOn, IrCutFilterOff, IrCutFilterAuto:
	default:
		return fmt.Errorf("IrCutFilter must be ON, OFF or AUTO, got %q", s.IrCutFilter)
	}
	if s.Focus != nil {
		switch s.Focus.AutoFocusMode {
		case AutoFocusAuto, AutoFocusManual:
		default:
			return fmt.Errorf("Focus.AutoFocusMode must be AUTO or MANUAL, got %q", s.Focus.AutoFocusMode)
		}
	}
	return nil
}

// checkNumber rejects a set value that is NaN or infinite
func checkNumber(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if msg := validate.InvalidValue(*v, validate.Number); msg != "" {
		return fmt.Errorf("%s %s", name, msg)
	}
	return nil
}

// appendTo writes the settings in schema order (tt:ImagingSettings20)
func (s *Settings) appendTo(el *etree.Element) {
	if s.Brightness != nil {
		soap.SetFloat(el, "tt:Brightness", *s.Brightness)
	}
	if s.ColorSaturation != nil {
		soap.SetFloat(el, "tt:ColorSaturation", *s.ColorSaturation)
	}
	if s.Contrast != nil {
		soap.SetFloat(el, "tt:Contrast", *s.Contrast)
	}
	if s.Focus != nil {
		focus := el.CreateElement("tt:Focus")
		soap.SetText(focus, "tt:AutoFocusMode", s.Focus.AutoFocusMode)
		if s.Focus.DefaultSpeed != nil {
			soap.SetFloat(focus, "tt:DefaultSpeed", *s.Focus.DefaultSpeed)
		}
		if s.Focus.NearLimit != nil {
			soap.SetFloat(focus, "tt:NearLimit", *s.Focus.NearLimit)
		}
		if s.Focus.FarLimit != nil {
			soap.SetFloat(focus, "tt:FarLimit", *s.Focus.FarLimit)
		}
	}
	if s.IrCutFilter != "" {
		soap.SetText(el, "tt:IrCutFilter", s.IrCutFilter)
	}
	if s.Sharpness != nil {
		soap.SetFloat(el, "tt:Sharpness", *s.Sharpness)
	}
}

// FocusMove selects one focus move mode
type FocusMove struct {
	Absolute   *AbsoluteFocus
	Relative   *RelativeFocus
	Continuous *ContinuousFocus
}

// AbsoluteFocus moves to Position; Speed is optional
type AbsoluteFocus struct {
	Position float64
	Speed    *float64
}

// RelativeFocus moves by Distance (negative is toward near); Speed is optional
type RelativeFocus struct {
	Distance float64
	Speed    *float64
}

// ContinuousFocus moves at Speed until Stop (negative is toward near)
type ContinuousFocus struct {
	Speed float64
}

// Validate checks that exactly one mode is set and its numbers are finite
func (m *FocusMove) Validate() error {
	n := 0
	if m.Absolute != nil {
		n++
	}
	if m.Relative != nil {
		n++
	}
	if m.Continuous != nil {
		n++
	}
	if n != 1 {
		return fmt.Errorf("must set exactly one of Absolute, Relative or Continuous, got %d", n)
	}

	switch {
	case m.Absolute != nil:
		if err := checkNumber("Absolute.Position", &m.Absolute.Position); err != nil {
			return err
		}
		return checkNumber("Absolute.Speed", m.Absolute.Speed)
	case m.Relative != nil:
		if err := checkNumber("Relative.Distance", &m.Relative.Distance); err != nil {
			return err
		}
		return checkNumber("Relative.Speed", m.Relative.Speed)
	default:
		return checkNumber("Continuous.Speed", &m.Continuous.Speed)
	}
}

func (m *FocusMove) appendTo(el *etree.Element) {
	switch {
	case m.Absolute != nil:
		abs := el.CreateElement("tt:Absolute")
		soap.SetFloat(abs, "tt:Position", m.Absolute.Position)
		if m.Absolute.Speed != nil {
			soap.SetFloat(abs, "tt:Speed", *m.Absolute.Speed)
		}
	case m.Relative != nil:
		rel := el.CreateElement("tt:Relative")
		soap.SetFloat(rel, "tt:Distance", m.Relative.Distance)
		if m.Relative.Speed != nil {
			soap.SetFloat(rel, "tt:Speed", *m.Relative.Speed)
		}
	case m.Continuous != nil:
		cont := el.CreateElement("tt:Continuous")
		soap.SetFloat(cont, "tt:Speed", m.Continuous.Speed)
	}
}
