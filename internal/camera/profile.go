package camera

import (
	"context"
	"errors"

	"github.com/muurk/onvifctl/internal/media"
	"github.com/muurk/onvifctl/internal/soap"
)

// SelectProfile makes token the profile for ptz and media calls. With an
// empty token the first media profile the camera reports is used, and its
// video source becomes the imaging default.
func (c *Camera) SelectProfile(ctx context.Context, token string) (string, error) {
	if token != "" {
		c.profileToken = token
		return token, nil
	}
	if c.profileToken != "" {
		return c.profileToken, nil
	}

	res, err := await(ctx, c.Media.GetProfiles(ctx, nil))
	if err != nil {
		return "", err
	}
	profiles := media.ParseProfiles(res)
	if len(profiles) == 0 {
		return "", soap.NewMalformedResponse("GetProfiles", errors.New("camera reported no media profiles"))
	}
	c.useProfile(profiles[0])
	return c.profileToken, nil
}

// SelectVideoSource returns token, or the imaging default video source,
// discovering it from the first media profile when none is set yet
func (c *Camera) SelectVideoSource(ctx context.Context, token string) (string, error) {
	if token != "" {
		return token, nil
	}
	if def := c.Imaging.DefaultVideoSourceToken(); def != "" {
		return def, nil
	}
	if _, err := c.SelectProfile(ctx, ""); err != nil {
		return "", err
	}
	if def := c.Imaging.DefaultVideoSourceToken(); def != "" {
		return def, nil
	}
	return "", soap.NewMalformedResponse("GetProfiles", errors.New("media profile has no video source"))
}
