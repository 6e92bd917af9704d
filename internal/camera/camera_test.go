package camera

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/soap/soaptest"
)

const dateTimeResponse = `<tds:GetSystemDateAndTimeResponse><tds:SystemDateAndTime>
<tt:UTCDateTime><tt:Time><tt:Hour>3</tt:Hour><tt:Minute>9</tt:Minute><tt:Second>5</tt:Second></tt:Time>
<tt:Date><tt:Year>2024</tt:Year><tt:Month>1</tt:Month><tt:Day>2</tt:Day></tt:Date></tt:UTCDateTime>
</tds:SystemDateAndTime></tds:GetSystemDateAndTimeResponse>`

const capabilitiesResponse = `<tds:GetCapabilitiesResponse><tds:Capabilities>
<tt:Device><tt:XAddr>http://10.0.0.5/onvif/device_service</tt:XAddr></tt:Device>
<tt:Imaging><tt:XAddr>http://10.0.0.5/onvif/Imaging</tt:XAddr></tt:Imaging>
<tt:Media><tt:XAddr>http://10.0.0.5/onvif/Media</tt:XAddr></tt:Media>
<tt:PTZ><tt:XAddr>http://10.0.0.5/onvif/PTZ</tt:XAddr></tt:PTZ>
</tds:Capabilities></tds:GetCapabilitiesResponse>`

const notAuthorizedFault = `<s:Fault><s:Code><s:Value>s:Sender</s:Value><s:Subcode><s:Value>ter:NotAuthorized</s:Value></s:Subcode></s:Code>` +
	`<s:Reason><s:Text xml:lang="en">Sender not authorized</s:Text></s:Reason></s:Fault>`

var localNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return localNow }

func envelopeOf(call mock.Call) string {
	return call.Arguments.String(4)
}

func TestConnect(t *testing.T) {
	d := &soaptest.Dispatcher{}
	d.ExpectMethod(soap.CategoryDevice, "GetSystemDateAndTime", soaptest.Envelope(dateTimeResponse))
	d.ExpectMethod(soap.CategoryDevice, "GetCapabilities", soaptest.Envelope(capabilitiesResponse))

	cam, err := Connect(context.Background(), Options{
		Host:       "203.0.113.7",
		Port:       8080,
		Username:   "admin",
		Password:   "admin",
		Dispatcher: d,
		Now:        fixedClock,
	})
	require.NoError(t, err)
	d.AssertExpectations(t)

	assert.Equal(t, 5*time.Minute, cam.Session.ClockDifference())
	assert.True(t, cam.Session.Authenticated())

	addr := cam.Session.Address()
	assert.Equal(t, "203.0.113.7", addr.Host(), "host stays as given")
	assert.Equal(t, 8080, addr.Port())
	assert.Equal(t, "http://203.0.113.7:8080/onvif/Imaging", addr.URL(soap.CategoryImaging))
	assert.Equal(t, "http://203.0.113.7:8080/onvif/PTZ", addr.URL(soap.CategoryPTZ))
	assert.Equal(t, "http://203.0.113.7:8080/onvif/device_service", addr.URL(soap.CategoryDisplay))

	for _, m := range cam.modules() {
		assert.Same(t, cam.Session, m.Session(), "%s module", m.Category())
	}
	assert.Same(t, cam.PTZ.Service, cam.Module(soap.CategoryPTZ))
	assert.Nil(t, cam.Module(soap.CategoryEvents))

	require.Len(t, d.Calls, 2)
	assert.NotContains(t, envelopeOf(d.Calls[0]), "UsernameToken", "clock is read without credentials")
	assert.Contains(t, envelopeOf(d.Calls[1]), "<Username>admin</Username>")
}

func TestConnectCreatedUsesDeviceClock(t *testing.T) {
	d := &soaptest.Dispatcher{}
	d.ExpectMethod(soap.CategoryDevice, "GetSystemDateAndTime", soaptest.Envelope(dateTimeResponse))

	cam, err := Connect(context.Background(), Options{
		Host:             "203.0.113.7",
		Username:         "admin",
		Password:         "admin",
		Dispatcher:       d,
		SkipCapabilities: true,
		Now:              fixedClock,
	})
	require.NoError(t, err)

	d.ExpectMethod(soap.CategoryDevice, "GetHostname",
		soaptest.Envelope(`<tds:GetHostnameResponse><tds:HostnameInformation><tt:Name>cam</tt:Name></tds:HostnameInformation></tds:GetHostnameResponse>`))
	_, err = cam.Device.GetHostname(context.Background(), nil).Await(context.Background())
	require.NoError(t, err)

	env := envelopeOf(d.Calls[1])
	start := strings.Index(env, "<Created")
	require.NotEqual(t, -1, start)
	created := env[strings.Index(env[start:], ">")+start+1:]
	created = created[:strings.Index(created, "<")]

	ts, err := time.Parse(soap.CreatedLayout, created)
	require.NoError(t, err)
	skew := time.Until(ts)
	assert.InDelta(t, (5 * time.Minute).Seconds(), skew.Seconds(), 30, "Created is shifted by the device offset")
}

func TestConnectClockFaultAssumesNoSkew(t *testing.T) {
	d := &soaptest.Dispatcher{}
	d.ExpectMethod(soap.CategoryDevice, "GetSystemDateAndTime", soaptest.Envelope(notAuthorizedFault))
	d.ExpectMethod(soap.CategoryDevice, "GetCapabilities", soaptest.Envelope(notAuthorizedFault))

	cam, err := Connect(context.Background(), Options{
		Host:       "203.0.113.7",
		Username:   "admin",
		Password:   "secret",
		Dispatcher: d,
		Now:        fixedClock,
	})
	require.NoError(t, err)
	assert.Zero(t, cam.Session.ClockDifference())
	assert.Equal(t, soap.DefaultServicePath, cam.Session.Address().Path(soap.CategoryImaging))
}

func TestConnectUnreachable(t *testing.T) {
	d := &soaptest.Dispatcher{}
	d.On("MakeRequest", mock.Anything, soap.CategoryDevice, mock.Anything, "GetSystemDateAndTime", mock.Anything).
		Return(nil, soap.NewTransportError("GetSystemDateAndTime", 0, errors.New("no route to host")))

	_, err := Connect(context.Background(), Options{Host: "203.0.113.7", Dispatcher: d, Now: fixedClock})
	require.Error(t, err)
	assert.True(t, soap.IsTransport(err))
	assert.Contains(t, err.Error(), "203.0.113.7")
}

func TestConnectInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"no host", Options{}},
		{"bad port", Options{Host: "cam", Port: 70000}},
		{"bad scheme", Options{Host: "cam", Scheme: "ftp"}},
		{"bad xaddr", Options{XAddr: "onvif/device_service"}},
		{"password without username", Options{Host: "cam", Password: "secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &soaptest.Dispatcher{}
			tt.opts.Dispatcher = d
			_, err := Connect(context.Background(), tt.opts)
			assert.True(t, soap.IsInvalidArgument(err), "got %v", err)
			d.AssertNoRequests(t)
		})
	}
}

func TestConnectXAddr(t *testing.T) {
	d := &soaptest.Dispatcher{}
	d.ExpectMethod(soap.CategoryDevice, "GetSystemDateAndTime", soaptest.Envelope(dateTimeResponse))

	cam, err := Connect(context.Background(), Options{
		XAddr:            "https://cam.local:8443/onvif/device_service",
		Dispatcher:       d,
		SkipCapabilities: true,
		Now:              fixedClock,
	})
	require.NoError(t, err)
	assert.False(t, cam.Session.Authenticated())
	assert.Equal(t, "https://cam.local:8443/onvif/device_service", cam.Session.Address().URL(soap.CategoryDevice))
}
