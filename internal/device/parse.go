package device

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/muurk/onvifctl/internal/soap"
)

// ClockDifference returns how far the device clock in a GetSystemDateAndTime
// result is ahead of localNow (negative when behind). The result feeds
// core.NewSession.
func ClockDifference(res *soap.Result, localNow time.Time) (time.Duration, error) {
	device, err := DeviceTime(res)
	if err != nil {
		return 0, err
	}
	return device.Sub(localNow), nil
}

// DeviceTime decodes the UTCDateTime of a GetSystemDateAndTime result
func DeviceTime(res *soap.Result) (time.Time, error) {
	const method = "GetSystemDateAndTime"

	dt := soap.Lookup(res.Response(), "SystemDateAndTime", "UTCDateTime")
	if dt == nil {
		return time.Time{}, soap.NewMalformedResponse(method, fmt.Errorf("no UTCDateTime in response"))
	}
	n, _ := soap.First(dt).(soap.Node)

	fields := []struct {
		path []string
		val  int
	}{
		{path: []string{"Date", "Year"}},
		{path: []string{"Date", "Month"}},
		{path: []string{"Date", "Day"}},
		{path: []string{"Time", "Hour"}},
		{path: []string{"Time", "Minute"}},
		{path: []string{"Time", "Second"}},
	}
	for i := range fields {
		text := strings.TrimSpace(soap.Text(soap.Lookup(n, fields[i].path...)))
		v, err := strconv.Atoi(text)
		if err != nil {
			return time.Time{}, soap.NewMalformedResponse(method,
				fmt.Errorf("bad %s %q", strings.Join(fields[i].path, "/"), text))
		}
		fields[i].val = v
	}
	return time.Date(fields[0].val, time.Month(fields[1].val), fields[2].val,
		fields[3].val, fields[4].val, fields[5].val, 0, time.UTC), nil
}

var capabilityCategories = map[string]soap.Category{
	"Device":    soap.CategoryDevice,
	"Imaging":   soap.CategoryImaging,
	"PTZ":       soap.CategoryPTZ,
	"Media":     soap.CategoryMedia,
	"Events":    soap.CategoryEvents,
	"Analytics": soap.CategoryAnalytics,
}

var serviceNamespaces = map[string]soap.Category{
	"http://www.onvif.org/ver10/device/wsdl":    soap.CategoryDevice,
	"http://www.onvif.org/ver20/imaging/wsdl":   soap.CategoryImaging,
	"http://www.onvif.org/ver20/ptz/wsdl":       soap.CategoryPTZ,
	"http://www.onvif.org/ver10/media/wsdl":     soap.CategoryMedia,
	"http://www.onvif.org/ver10/display/wsdl":   soap.CategoryDisplay,
	"http://www.onvif.org/ver10/events/wsdl":    soap.CategoryEvents,
	"http://www.onvif.org/ver20/analytics/wsdl": soap.CategoryAnalytics,
}

// ServiceXAddrs maps categories to service addresses found in a
// GetCapabilities or GetServices result. Unknown services are skipped.
func ServiceXAddrs(res *soap.Result) map[soap.Category]string {
	out := make(map[soap.Category]string)
	resp := res.Response()

	if caps, ok := soap.First(resp["Capabilities"]).(soap.Node); ok {
		for name, category := range capabilityCategories {
			if xaddr := strings.TrimSpace(soap.Text(soap.Lookup(caps, name, "XAddr"))); xaddr != "" {
				out[category] = xaddr
			}
		}
	}
	for _, svc := range soap.All(resp["Service"]) {
		n, _ := svc.(soap.Node)
		category, ok := serviceNamespaces[strings.TrimSpace(soap.Text(n["Namespace"]))]
		if !ok {
			continue
		}
		if xaddr := strings.TrimSpace(soap.Text(n["XAddr"])); xaddr != "" {
			out[category] = xaddr
		}
	}
	return out
}

// Information is the identity reported by GetDeviceInformation
type Information struct {
	Manufacturer    string
	Model           string
	FirmwareVersion string
	SerialNumber    string
	HardwareID      string
}

// ParseInformation decodes a GetDeviceInformation result
func ParseInformation(res *soap.Result) Information {
	r := res.Response()
	return Information{
		Manufacturer:    soap.Text(r["Manufacturer"]),
		Model:           soap.Text(r["Model"]),
		FirmwareVersion: soap.Text(r["FirmwareVersion"]),
		SerialNumber:    soap.Text(r["SerialNumber"]),
		HardwareID:      soap.Text(r["HardwareId"]),
	}
}

// ParseHostname returns the Name of a GetHostname result
func ParseHostname(res *soap.Result) string {
	return soap.Text(soap.Lookup(res.Response(), "HostnameInformation", "Name"))
}
