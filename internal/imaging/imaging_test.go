package imaging

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/onvifctl/internal/core"
	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/soap/soaptest"
)

func newModule(t *testing.T) (*Service, *soaptest.Dispatcher) {
	t.Helper()
	d := &soaptest.Dispatcher{}
	svc := New(d)
	addr, err := soap.NewServiceAddress("192.0.2.20", 80)
	require.NoError(t, err)
	session, err := core.NewSession(0, addr, "", "")
	require.NoError(t, err)
	require.NoError(t, svc.Init(session))
	return svc, d
}

func expectBody(d *soaptest.Dispatcher, method, body string) {
	d.ExpectBody(soap.CategoryImaging, method, body, []byte(soaptest.EmptyResponse))
}

func await(t *testing.T, f *core.Future) (*soap.Result, error) {
	t.Helper()
	require.NotNil(t, f)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return f.Await(ctx)
}

func TestGetImagingSettings(t *testing.T) {
	svc, d := newModule(t)
	expectBody(d, "GetImagingSettings",
		"<timg:GetImagingSettings><timg:VideoSourceToken>VideoSource_1</timg:VideoSourceToken></timg:GetImagingSettings>")

	_, err := await(t, svc.GetImagingSettings(context.Background(), "VideoSource_1", nil))
	require.NoError(t, err)
	d.AssertExpectations(t)
}

func TestDefaultVideoSourceToken(t *testing.T) {
	svc, d := newModule(t)

	_, err := await(t, svc.Stop(context.Background(), "", nil))
	assert.True(t, soap.IsInvalidArgument(err), "no token and no default: %v", err)

	require.NoError(t, svc.SetDefaultVideoSourceToken("vs0"))
	assert.True(t, soap.IsInvalidArgument(svc.SetDefaultVideoSourceToken("vs1")))
	assert.True(t, soap.IsInvalidArgument(svc.SetDefaultVideoSourceToken("")))

	expectBody(d, "Stop", "<timg:Stop><timg:VideoSourceToken>vs0</timg:VideoSourceToken></timg:Stop>")
	_, err = await(t, svc.Stop(context.Background(), "", nil))
	require.NoError(t, err)
	d.AssertExpectations(t)
}

func TestSetImagingSettings(t *testing.T) {
	svc, d := newModule(t)
	expectBody(d, "SetImagingSettings",
		"<timg:SetImagingSettings><timg:VideoSourceToken>vs0</timg:VideoSourceToken>"+
			"<timg:ImagingSettings><tt:Brightness>60</tt:Brightness><tt:Contrast>40.5</tt:Contrast>"+
			"<tt:Focus><tt:AutoFocusMode>MANUAL</tt:AutoFocusMode><tt:NearLimit>0.1</tt:NearLimit></tt:Focus>"+
			"<tt:IrCutFilter>AUTO</tt:IrCutFilter><tt:Sharpness>0</tt:Sharpness></timg:ImagingSettings>"+
			"<timg:ForcePersistence>true</timg:ForcePersistence></timg:SetImagingSettings>")

	settings := &Settings{
		Brightness:       Float(60),
		Contrast:         Float(40.5),
		Sharpness:        Float(0),
		IrCutFilter:      IrCutFilterAuto,
		Focus:            &FocusConfiguration{AutoFocusMode: AutoFocusManual, NearLimit: Float(0.1)},
		ForcePersistence: Bool(true),
	}
	_, err := await(t, svc.SetImagingSettings(context.Background(), "vs0", settings, nil))
	require.NoError(t, err)
	d.AssertExpectations(t)
}

func TestSetImagingSettings_Invalid(t *testing.T) {
	svc, d := newModule(t)

	tests := []struct {
		name     string
		settings *Settings
	}{
		{"nil settings", nil},
		{"no fields", &Settings{}},
		{"bad ir cut", &Settings{IrCutFilter: "MAYBE"}},
		{"bad focus mode", &Settings{Focus: &FocusConfiguration{AutoFocusMode: "auto"}}},
		{"NaN brightness", &Settings{Brightness: Float(math.NaN())}},
		{"infinite contrast", &Settings{Contrast: Float(math.Inf(1))}},
		{"infinite sharpness", &Settings{Sharpness: Float(math.Inf(-1))}},
		{"infinite focus limit", &Settings{Focus: &FocusConfiguration{AutoFocusMode: AutoFocusManual, FarLimit: Float(math.Inf(1))}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := make(chan error, 1)
			f := svc.SetImagingSettings(context.Background(), "vs0", tt.settings, func(err error, _ *soap.Result) {
				errs <- err
			})
			assert.Nil(t, f)
			err := <-errs
			var e *soap.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, soap.ErrInvalidArgument, e.Kind)
			assert.Equal(t, "settings", e.Argument)
		})
	}
	d.AssertNoRequests(t)
}

func TestSetImagingSettings_EscapesToken(t *testing.T) {
	svc, d := newModule(t)
	expectBody(d, "GetImagingSettings",
		"<timg:GetImagingSettings><timg:VideoSourceToken>a&lt;/timg:VideoSourceToken&gt;</timg:VideoSourceToken></timg:GetImagingSettings>")

	_, err := await(t, svc.GetImagingSettings(context.Background(), "a</timg:VideoSourceToken>", nil))
	require.NoError(t, err)
	d.AssertExpectations(t)
}

func TestMove(t *testing.T) {
	tests := []struct {
		name  string
		focus *FocusMove
		want  string
	}{
		{
			"absolute",
			&FocusMove{Absolute: &AbsoluteFocus{Position: 0.25, Speed: Float(1)}},
			"<tt:Absolute><tt:Position>0.25</tt:Position><tt:Speed>1</tt:Speed></tt:Absolute>",
		},
		{
			"relative without speed",
			&FocusMove{Relative: &RelativeFocus{Distance: -0.1}},
			"<tt:Relative><tt:Distance>-0.1</tt:Distance></tt:Relative>",
		},
		{
			"continuous",
			&FocusMove{Continuous: &ContinuousFocus{Speed: 0.5}},
			"<tt:Continuous><tt:Speed>0.5</tt:Speed></tt:Continuous>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newModule(t)
			expectBody(d, "Move",
				"<timg:Move><timg:VideoSourceToken>vs0</timg:VideoSourceToken><timg:Focus>"+tt.want+"</timg:Focus></timg:Move>")

			_, err := await(t, svc.Move(context.Background(), "vs0", tt.focus, nil))
			require.NoError(t, err)
			d.AssertExpectations(t)
		})
	}
}

func TestMove_Invalid(t *testing.T) {
	svc, d := newModule(t)

	invalid := []*FocusMove{
		nil,
		{},
		{Absolute: &AbsoluteFocus{}, Continuous: &ContinuousFocus{}},
		{Absolute: &AbsoluteFocus{Position: math.Inf(1)}},
		{Relative: &RelativeFocus{Distance: 0.1, Speed: Float(math.NaN())}},
		{Continuous: &ContinuousFocus{Speed: math.Inf(-1)}},
	}
	for _, focus := range invalid {
		_, err := await(t, svc.Move(context.Background(), "vs0", focus, nil))
		assert.True(t, soap.IsInvalidArgument(err), "got %v", err)
	}
	d.AssertNoRequests(t)
}

func TestTokenOnlyOperations(t *testing.T) {
	tests := []struct {
		method string
		call   func(*Service) *core.Future
	}{
		{"GetOptions", func(s *Service) *core.Future { return s.GetOptions(context.Background(), "vs0", nil) }},
		{"GetMoveOptions", func(s *Service) *core.Future { return s.GetMoveOptions(context.Background(), "vs0", nil) }},
		{"GetStatus", func(s *Service) *core.Future { return s.GetImagingStatus(context.Background(), "vs0", nil) }},
		{"GetPresets", func(s *Service) *core.Future { return s.GetPresets(context.Background(), "vs0", nil) }},
		{"GetCurrentPreset", func(s *Service) *core.Future { return s.GetCurrentPreset(context.Background(), "vs0", nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			svc, d := newModule(t)
			expectBody(d, tt.method,
				"<timg:"+tt.method+"><timg:VideoSourceToken>vs0</timg:VideoSourceToken></timg:"+tt.method+">")
			_, err := await(t, tt.call(svc))
			require.NoError(t, err)
			d.AssertExpectations(t)
		})
	}
}

func TestSetCurrentPreset(t *testing.T) {
	svc, d := newModule(t)
	expectBody(d, "SetCurrentPreset",
		"<timg:SetCurrentPreset><timg:VideoSourceToken>vs0</timg:VideoSourceToken><timg:PresetToken>p1</timg:PresetToken></timg:SetCurrentPreset>")

	_, err := await(t, svc.SetCurrentPreset(context.Background(), "vs0", "p1", nil))
	require.NoError(t, err)

	_, err = await(t, svc.SetCurrentPreset(context.Background(), "vs0", "", nil))
	assert.True(t, soap.IsInvalidArgument(err))
	d.AssertExpectations(t)
}

func TestGetServiceCapabilities(t *testing.T) {
	svc, d := newModule(t)
	expectBody(d, "GetServiceCapabilities", "<timg:GetServiceCapabilities/>")

	_, err := await(t, svc.GetServiceCapabilities(context.Background(), nil))
	require.NoError(t, err)
	d.AssertExpectations(t)
}

func TestNamespacesIncludeSchema(t *testing.T) {
	svc := New(&soaptest.Dispatcher{})
	assert.Contains(t, svc.Namespaces(), `xmlns:tt="http://www.onvif.org/ver10/schema"`)
	assert.Equal(t, soap.CategoryImaging, svc.Category())
}
