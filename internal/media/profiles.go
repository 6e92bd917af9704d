package media

import (
	"strconv"

	"github.com/muurk/onvifctl/internal/soap"
)

// Profile is the summary of one media profile
type Profile struct {
	Token            string
	Name             string
	VideoSourceToken string
	Encoding         string
	Width            int
	Height           int
	PTZConfiguration string
}

// ParseProfiles decodes a GetProfiles result in device order
func ParseProfiles(res *soap.Result) []Profile {
	var profiles []Profile
	for _, p := range soap.All(res.Response()["Profiles"]) {
		n, _ := soap.First(p).(soap.Node)
		profile := Profile{
			Token:            soap.Attr(p, "token"),
			Name:             soap.Text(n["Name"]),
			VideoSourceToken: soap.Text(soap.Lookup(n, "VideoSourceConfiguration", "SourceToken")),
			Encoding:         soap.Text(soap.Lookup(n, "VideoEncoderConfiguration", "Encoding")),
			PTZConfiguration: soap.Attr(n["PTZConfiguration"], "token"),
		}
		profile.Width, _ = strconv.Atoi(soap.Text(soap.Lookup(n, "VideoEncoderConfiguration", "Resolution", "Width")))
		profile.Height, _ = strconv.Atoi(soap.Text(soap.Lookup(n, "VideoEncoderConfiguration", "Resolution", "Height")))
		profiles = append(profiles, profile)
	}
	return profiles
}

// ParseMediaUri returns the Uri of a GetStreamUri or GetSnapshotUri result
func ParseMediaUri(res *soap.Result) string {
	return soap.Text(soap.Lookup(res.Response(), "MediaUri", "Uri"))
}

// ParseVideoSourceTokens returns the tokens of a GetVideoSources result
func ParseVideoSourceTokens(res *soap.Result) []string {
	var tokens []string
	for _, v := range soap.All(res.Response()["VideoSources"]) {
		if token := soap.Attr(v, "token"); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
