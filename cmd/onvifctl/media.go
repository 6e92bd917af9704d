package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/onvifctl/internal/camera"
	"github.com/muurk/onvifctl/internal/media"
	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/ui"
)

var (
	streamType     string
	streamProtocol string
)

func init() {
	mediaCmd.PersistentFlags().StringVar(&profileToken, "profile", "", "Media profile token (default: the first profile)")
	mediaStreamCmd.Flags().StringVar(&streamType, "stream", media.StreamUnicast, "Stream type (RTP-Unicast, RTP-Multicast)")
	mediaStreamCmd.Flags().StringVar(&streamProtocol, "protocol", media.TransportRTSP, "Transport (UDP, TCP, RTSP, HTTP)")

	mediaCmd.AddCommand(mediaProfilesCmd, mediaStreamCmd, mediaSnapshotCmd, mediaSourcesCmd)
	rootCmd.AddCommand(mediaCmd)
}

// mediaCmd groups the media service operations
var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Media profiles and stream addresses",
}

// mediaQuery connects and awaits one media request
func mediaQuery(cmd *cobra.Command, send func(ctx context.Context, cam *camera.Camera) (*soap.Result, error)) (*soap.Result, error) {
	ctx := cmd.Context()
	cam, _, err := connect(ctx)
	if err != nil {
		return nil, err
	}
	return send(ctx, cam)
}

var mediaProfilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List media profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := mediaQuery(cmd, func(ctx context.Context, cam *camera.Camera) (*soap.Result, error) {
			return cam.Media.GetProfiles(ctx, nil).Await(ctx)
		})
		if err != nil {
			return err
		}
		if outputFormat == formatXML {
			return printResult(cmd.OutOrStdout(), "", res)
		}
		profiles := media.ParseProfiles(res)
		if outputFormat == formatJSON {
			return printJSON(cmd.OutOrStdout(), profiles)
		}
		return printFields(cmd.OutOrStdout(), fmt.Sprintf("%d profiles", len(profiles)), profileFields(profiles))
	},
}

func profileFields(profiles []media.Profile) []ui.Field {
	fields := make([]ui.Field, 0, len(profiles))
	for _, p := range profiles {
		parts := []string{p.Name}
		if p.Encoding != "" {
			parts = append(parts, fmt.Sprintf("%s %dx%d", p.Encoding, p.Width, p.Height))
		}
		if p.VideoSourceToken != "" {
			parts = append(parts, "source "+p.VideoSourceToken)
		}
		if p.PTZConfiguration != "" {
			parts = append(parts, "ptz "+p.PTZConfiguration)
		}
		fields = append(fields, ui.Field{Key: p.Token, Value: strings.Join(parts, ", ")})
	}
	return fields
}

// printURI writes a media URI bare so it can be piped into a player
func printURI(cmd *cobra.Command, res *soap.Result) error {
	if outputFormat != formatTree {
		return printResult(cmd.OutOrStdout(), "", res)
	}
	fmt.Fprintln(cmd.OutOrStdout(), media.ParseMediaUri(res))
	return nil
}

var mediaStreamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Print the stream URI of a profile",
	Example: `  onvifctl media stream --camera gate
  ffplay "$(onvifctl media stream --camera gate --profile Profile_2)"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := mediaQuery(cmd, func(ctx context.Context, cam *camera.Camera) (*soap.Result, error) {
			token, err := selectProfile(ctx, cam)
			if err != nil {
				return nil, err
			}
			return cam.Media.GetStreamUri(ctx, token, streamType, streamProtocol, nil).Await(ctx)
		})
		if err != nil {
			return err
		}
		return printURI(cmd, res)
	},
}

var mediaSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the JPEG snapshot URI of a profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := mediaQuery(cmd, func(ctx context.Context, cam *camera.Camera) (*soap.Result, error) {
			token, err := selectProfile(ctx, cam)
			if err != nil {
				return nil, err
			}
			return cam.Media.GetSnapshotUri(ctx, token, nil).Await(ctx)
		})
		if err != nil {
			return err
		}
		return printURI(cmd, res)
	},
}

var mediaSourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List video source tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := mediaQuery(cmd, func(ctx context.Context, cam *camera.Camera) (*soap.Result, error) {
			return cam.Media.GetVideoSources(ctx, nil).Await(ctx)
		})
		if err != nil {
			return err
		}
		if outputFormat != formatTree {
			return printResult(cmd.OutOrStdout(), "Video sources", res)
		}
		for _, token := range media.ParseVideoSourceTokens(res) {
			fmt.Fprintln(cmd.OutOrStdout(), token)
		}
		return nil
	},
}
