package camera

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/soap/soaptest"
)

func TestSelectProfileDiscoversFirst(t *testing.T) {
	cam, d := connected(t)
	d.ExpectBody(soap.CategoryMedia, "GetProfiles", "<trt:GetProfiles/>", soaptest.Envelope(profilesResponse))

	token, err := cam.SelectProfile(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Profile_1", token)

	// cached: no second GetProfiles
	token, err = cam.SelectVideoSource(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "VideoSource_1", token)
	d.AssertExpectations(t)
}

func TestSelectProfileExplicit(t *testing.T) {
	cam, d := connected(t)

	token, err := cam.SelectProfile(context.Background(), "Profile_2")
	require.NoError(t, err)
	assert.Equal(t, "Profile_2", token)
	assert.Equal(t, "Profile_2", cam.ProfileToken())

	token, err = cam.SelectVideoSource(context.Background(), "VS_9")
	require.NoError(t, err)
	assert.Equal(t, "VS_9", token)
	d.AssertNumberOfCalls(t, "MakeRequest", 1)
}

func TestSelectProfileNone(t *testing.T) {
	cam, d := connected(t)
	d.ExpectMethod(soap.CategoryMedia, "GetProfiles", soaptest.Envelope(`<trt:GetProfilesResponse/>`))

	_, err := cam.SelectProfile(context.Background(), "")
	assert.True(t, soap.IsMalformedResponse(err))
}
