package camera

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/soap/soaptest"
)

const profilesResponse = `<trt:GetProfilesResponse>
<trt:Profiles token="Profile_1"><tt:Name>main</tt:Name>
<tt:VideoSourceConfiguration token="VSC"><tt:SourceToken>VideoSource_1</tt:SourceToken></tt:VideoSourceConfiguration>
</trt:Profiles></trt:GetProfilesResponse>`

func connected(t *testing.T) (*Camera, *soaptest.Dispatcher) {
	t.Helper()
	d := &soaptest.Dispatcher{}
	d.ExpectMethod(soap.CategoryDevice, "GetSystemDateAndTime", soaptest.Envelope(dateTimeResponse))
	cam, err := Connect(context.Background(), Options{
		Host:             "203.0.113.7",
		Dispatcher:       d,
		SkipCapabilities: true,
		Now:              fixedClock,
	})
	require.NoError(t, err)
	return cam, d
}

func TestProbePTZResolvesProfile(t *testing.T) {
	cam, d := connected(t)
	d.ExpectBody(soap.CategoryMedia, "GetProfiles", "<trt:GetProfiles/>", soaptest.Envelope(profilesResponse))
	d.ExpectMethod(soap.CategoryPTZ, "GetNodes",
		soaptest.Envelope(`<tptz:GetNodesResponse><tptz:PTZNode token="N1"/><tptz:PTZNode token="N2"/></tptz:GetNodesResponse>`))
	d.ExpectMethod(soap.CategoryPTZ, "GetConfigurations",
		soaptest.Envelope(`<tptz:GetConfigurationsResponse/>`))
	d.ExpectBody(soap.CategoryPTZ, "GetStatus",
		"<tptz:GetStatus><tptz:ProfileToken>Profile_1</tptz:ProfileToken></tptz:GetStatus>",
		soaptest.Envelope(`<tptz:GetStatusResponse><tptz:PTZStatus>`+
			`<tt:Position><tt:PanTilt x="0.5" y="-0.25"/></tt:Position>`+
			`<tt:MoveStatus><tt:PanTilt>IDLE</tt:PanTilt></tt:MoveStatus>`+
			`</tptz:PTZStatus></tptz:GetStatusResponse>`))
	d.ExpectBody(soap.CategoryPTZ, "GetPresets",
		"<tptz:GetPresets><tptz:ProfileToken>Profile_1</tptz:ProfileToken></tptz:GetPresets>",
		soaptest.Envelope(notAuthorizedFault))

	var progress []int
	steps, err := cam.Probe(context.Background(), []Suite{SuitePTZ}, func(done, total int, _ Step) {
		assert.Equal(t, 5, total)
		progress = append(progress, done)
	})
	require.NoError(t, err)
	d.AssertExpectations(t)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, progress)
	require.Len(t, steps, 5)
	assert.Equal(t, "GetProfiles", steps[0].Method)
	assert.Equal(t, "Profile_1", cam.ProfileToken())
	assert.Equal(t, "VideoSource_1", cam.Imaging.DefaultVideoSourceToken())

	assert.Equal(t, "2 nodes", steps[1].Summary)
	assert.Equal(t, "0 configurations", steps[2].Summary)
	assert.Equal(t, "pan 0.5 tilt -0.25 (IDLE)", steps[3].Summary)
	assert.True(t, soap.IsProtocolFault(steps[4].Err), "a failing step is reported, not fatal")
}

func TestProbeDevice(t *testing.T) {
	cam, d := connected(t)
	d.ExpectMethod(soap.CategoryDevice, "GetDeviceInformation",
		soaptest.Envelope(`<tds:GetDeviceInformationResponse><tds:Manufacturer>Acme</tds:Manufacturer><tds:Model>Dome</tds:Model><tds:FirmwareVersion>1.2</tds:FirmwareVersion></tds:GetDeviceInformationResponse>`))
	d.ExpectMethod(soap.CategoryDevice, "GetSystemDateAndTime", soaptest.Envelope(dateTimeResponse))
	d.ExpectMethod(soap.CategoryDevice, "GetHostname",
		soaptest.Envelope(`<tds:GetHostnameResponse><tds:HostnameInformation><tt:Name>gate</tt:Name></tds:HostnameInformation></tds:GetHostnameResponse>`))
	d.ExpectMethod(soap.CategoryDevice, "GetServices", soaptest.Envelope(`<tds:GetServicesResponse/>`))

	steps, err := cam.Probe(context.Background(), []Suite{SuiteDevice}, nil)
	require.NoError(t, err)
	require.Len(t, steps, 4)
	for _, s := range steps {
		assert.NoError(t, s.Err, s.Method)
		assert.Equal(t, SuiteDevice, s.Suite)
	}
	assert.Equal(t, "Acme Dome (firmware 1.2)", steps[0].Summary)
	assert.Equal(t, "2024-01-02T03:09:05Z", steps[1].Summary)
	assert.Equal(t, "gate", steps[2].Summary)
	assert.Equal(t, "0 known services", steps[3].Summary)
}

func TestProbeCancelled(t *testing.T) {
	cam, d := connected(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	steps, err := cam.Probe(ctx, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, steps)
	d.AssertNumberOfCalls(t, "MakeRequest", 1)
}

func TestParseSuites(t *testing.T) {
	suites, err := ParseSuites([]string{"PTZ", " media "})
	require.NoError(t, err)
	assert.Equal(t, []Suite{SuitePTZ, SuiteMedia}, suites)

	_, err = ParseSuites([]string{"events"})
	assert.True(t, soap.IsInvalidArgument(err))
}
