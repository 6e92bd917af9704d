package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/muurk/onvifctl/internal/camera"
	"github.com/muurk/onvifctl/internal/core"
	"github.com/muurk/onvifctl/internal/ptz"
	"github.com/muurk/onvifctl/internal/ui"
)

var (
	profileToken string

	pan, tilt, zoom float64
	moveSpeed       float64
	moveDuration    time.Duration
	stopPanTilt     bool
	stopZoom        bool
	presetToken     string
)

func init() {
	ptzCmd.PersistentFlags().StringVar(&profileToken, "profile", "", "Media profile token (default: the first profile)")

	for _, c := range []*cobra.Command{ptzMoveCmd, ptzRelativeCmd, ptzAbsoluteCmd} {
		addVectorFlags(c.Flags())
	}
	for _, c := range []*cobra.Command{ptzRelativeCmd, ptzAbsoluteCmd, ptzGotoCmd, ptzHomeCmd} {
		c.Flags().Float64Var(&moveSpeed, "speed", 0, "Speed for pan, tilt and zoom (default: the camera's)")
	}
	ptzMoveCmd.Flags().DurationVar(&moveDuration, "duration", 0, "Stop after this long (default: until 'ptz stop')")
	ptzStopCmd.Flags().BoolVar(&stopPanTilt, "pan-tilt", true, "Stop pan and tilt")
	ptzStopCmd.Flags().BoolVar(&stopZoom, "zoom", true, "Stop zoom")
	ptzSetPresetCmd.Flags().StringVar(&presetToken, "token", "", "Overwrite this existing preset")

	ptzCmd.AddCommand(
		ptzStatusCmd,
		ptzMoveCmd,
		ptzRelativeCmd,
		ptzAbsoluteCmd,
		ptzStopCmd,
		ptzPresetsCmd,
		ptzGotoCmd,
		ptzSetPresetCmd,
		ptzRemovePresetCmd,
		ptzHomeCmd,
		ptzSetHomeCmd,
		ptzNodesCmd,
		ptzConfigurationsCmd,
	)
	rootCmd.AddCommand(ptzCmd)
}

// ptzCmd groups the PTZ service operations
var ptzCmd = &cobra.Command{
	Use:   "ptz",
	Short: "Pan, tilt and zoom control",
	Long: `Pan, tilt and zoom control.

Values use the generic spaces: positions and translations from -1 to 1,
zoom positions from 0 to 1.`,
}

func addVectorFlags(f *pflag.FlagSet) {
	f.Float64Var(&pan, "pan", 0, "Pan value")
	f.Float64Var(&tilt, "tilt", 0, "Tilt value")
	f.Float64Var(&zoom, "zoom", 0, "Zoom value")
}

// vectorFromFlags builds a vector from the pan, tilt and zoom flags that
// were given. Giving only one of pan and tilt leaves the other at 0.
func vectorFromFlags(f *pflag.FlagSet) (ptz.Vector, error) {
	var v ptz.Vector
	if f.Changed("pan") || f.Changed("tilt") {
		v.PanTilt = &ptz.Vector2D{X: pan, Y: tilt}
	}
	if f.Changed("zoom") {
		v.Zoom = &ptz.Vector1D{X: zoom}
	}
	if v.PanTilt == nil && v.Zoom == nil {
		return v, fmt.Errorf("give at least one of --pan, --tilt or --zoom")
	}
	return v, nil
}

// speedFromFlags returns nil unless --speed was given
func speedFromFlags(f *pflag.FlagSet) *ptz.Vector {
	if !f.Changed("speed") {
		return nil
	}
	return &ptz.Vector{
		PanTilt: &ptz.Vector2D{X: moveSpeed, Y: moveSpeed},
		Zoom:    &ptz.Vector1D{X: moveSpeed},
	}
}

func selectProfile(ctx context.Context, cam *camera.Camera) (string, error) {
	return cam.SelectProfile(ctx, profileToken)
}

// ptzRun is runTokenRequest against the selected profile
func ptzRun(cmd *cobra.Command, title string, send func(ctx context.Context, s *ptz.Service, token string) *core.Future) error {
	return runTokenRequest(cmd, title, selectProfile, func(ctx context.Context, cam *camera.Camera, token string) *core.Future {
		return send(ctx, cam.PTZ, token)
	})
}

var ptzStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show position and move status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cam, _, err := connect(ctx)
		if err != nil {
			return err
		}
		token, err := selectProfile(ctx, cam)
		if err != nil {
			return err
		}
		res, err := cam.PTZ.GetStatus(ctx, token, nil).Await(ctx)
		if err != nil {
			return err
		}
		if outputFormat == formatXML {
			return printResult(cmd.OutOrStdout(), "", res)
		}
		return printFields(cmd.OutOrStdout(), "PTZ status "+token, statusFields(ptz.ParseStatus(res)))
	},
}

func statusFields(st *ptz.Status) []ui.Field {
	var fields []ui.Field
	if pt := st.Position.PanTilt; pt != nil {
		fields = append(fields,
			ui.Field{Key: "Pan", Value: formatFloat(pt.X)},
			ui.Field{Key: "Tilt", Value: formatFloat(pt.Y)})
	}
	if z := st.Position.Zoom; z != nil {
		fields = append(fields, ui.Field{Key: "Zoom", Value: formatFloat(z.X)})
	}
	if st.PanTiltMoving != "" {
		fields = append(fields, ui.Field{Key: "Pan/tilt", Value: st.PanTiltMoving})
	}
	if st.ZoomMoving != "" {
		fields = append(fields, ui.Field{Key: "Zoom move", Value: st.ZoomMoving})
	}
	if st.Error != "" {
		fields = append(fields, ui.Field{Key: "Error", Value: st.Error})
	}
	if !st.UTCTime.IsZero() {
		fields = append(fields, ui.Field{Key: "Time", Value: st.UTCTime.Format(time.RFC3339)})
	}
	return fields
}

var ptzMoveCmd = &cobra.Command{
	Use:   "move",
	Short: "Move continuously at a velocity",
	Example: `  # Pan right slowly for two seconds
  onvifctl ptz move --pan 0.2 --duration 2s --camera gate

  # Zoom out until stopped
  onvifctl ptz move --zoom -0.5 --camera gate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		velocity, err := vectorFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		return ptzRun(cmd, "Moving", func(ctx context.Context, s *ptz.Service, token string) *core.Future {
			return s.ContinuousMove(ctx, token, velocity, moveDuration, nil)
		})
	},
}

var ptzRelativeCmd = &cobra.Command{
	Use:   "relative",
	Short: "Move by a translation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		translation, err := vectorFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		speed := speedFromFlags(cmd.Flags())
		return ptzRun(cmd, "Relative move", func(ctx context.Context, s *ptz.Service, token string) *core.Future {
			return s.RelativeMove(ctx, token, translation, speed, nil)
		})
	},
}

var ptzAbsoluteCmd = &cobra.Command{
	Use:   "absolute",
	Short: "Move to a position",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		position, err := vectorFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		speed := speedFromFlags(cmd.Flags())
		return ptzRun(cmd, "Absolute move", func(ctx context.Context, s *ptz.Service, token string) *core.Future {
			return s.AbsoluteMove(ctx, token, position, speed, nil)
		})
	},
}

var ptzStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop moving",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ptzRun(cmd, "Stopped", func(ctx context.Context, s *ptz.Service, token string) *core.Future {
			return s.Stop(ctx, token, stopPanTilt, stopZoom, nil)
		})
	},
}

var ptzPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cam, _, err := connect(ctx)
		if err != nil {
			return err
		}
		token, err := selectProfile(ctx, cam)
		if err != nil {
			return err
		}
		res, err := cam.PTZ.GetPresets(ctx, token, nil).Await(ctx)
		if err != nil {
			return err
		}
		if outputFormat == formatXML {
			return printResult(cmd.OutOrStdout(), "", res)
		}
		presets := ptz.ParsePresets(res)
		if outputFormat == formatJSON {
			return printJSON(cmd.OutOrStdout(), presets)
		}
		return printFields(cmd.OutOrStdout(), fmt.Sprintf("%d presets", len(presets)), presetFields(presets))
	},
}

func presetFields(presets []ptz.Preset) []ui.Field {
	fields := make([]ui.Field, 0, len(presets))
	for _, p := range presets {
		value := p.Name
		if p.Position != nil && p.Position.PanTilt != nil {
			value += fmt.Sprintf(" (pan %s tilt %s)", formatFloat(p.Position.PanTilt.X), formatFloat(p.Position.PanTilt.Y))
		}
		fields = append(fields, ui.Field{Key: p.Token, Value: value})
	}
	return fields
}

var ptzGotoCmd = &cobra.Command{
	Use:   "goto <preset-token>",
	Short: "Move to a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		speed := speedFromFlags(cmd.Flags())
		return ptzRun(cmd, "Going to preset "+args[0], func(ctx context.Context, s *ptz.Service, token string) *core.Future {
			return s.GotoPreset(ctx, token, args[0], speed, nil)
		})
	},
}

var ptzSetPresetCmd = &cobra.Command{
	Use:   "set-preset [name]",
	Short: "Save the current position as a preset",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		return ptzRun(cmd, "Preset saved", func(ctx context.Context, s *ptz.Service, token string) *core.Future {
			return s.SetPreset(ctx, token, name, presetToken, nil)
		})
	},
}

var ptzRemovePresetCmd = &cobra.Command{
	Use:   "remove-preset <preset-token>",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ptzRun(cmd, "Preset removed", func(ctx context.Context, s *ptz.Service, token string) *core.Future {
			return s.RemovePreset(ctx, token, args[0], nil)
		})
	},
}

var ptzHomeCmd = &cobra.Command{
	Use:   "home",
	Short: "Move to the home position",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		speed := speedFromFlags(cmd.Flags())
		return ptzRun(cmd, "Going home", func(ctx context.Context, s *ptz.Service, token string) *core.Future {
			return s.GotoHomePosition(ctx, token, speed, nil)
		})
	},
}

var ptzSetHomeCmd = &cobra.Command{
	Use:   "set-home",
	Short: "Save the current position as home",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ptzRun(cmd, "Home position saved", func(ctx context.Context, s *ptz.Service, token string) *core.Future {
			return s.SetHomePosition(ctx, token, nil)
		})
	},
}

var ptzNodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List PTZ nodes and their spaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRequest(cmd, "PTZ nodes", func(ctx context.Context, cam *camera.Camera) *core.Future {
			return cam.PTZ.GetNodes(ctx, nil)
		})
	},
}

var ptzConfigurationsCmd = &cobra.Command{
	Use:   "configurations",
	Short: "List PTZ configurations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cam, _, err := connect(ctx)
		if err != nil {
			return err
		}
		res, err := cam.PTZ.GetConfigurations(ctx, nil).Await(ctx)
		if err != nil {
			return err
		}
		if outputFormat != formatTree {
			return printResult(cmd.OutOrStdout(), "PTZ configurations", res)
		}
		var fields []ui.Field
		for _, c := range ptz.ParseConfigurations(res) {
			value := fmt.Sprintf("%s, node %s", c.Name, c.NodeToken)
			if c.DefaultTimeout > 0 {
				value += ", timeout " + c.DefaultTimeout.String()
			}
			fields = append(fields, ui.Field{Key: c.Token, Value: value})
		}
		return printFields(cmd.OutOrStdout(), fmt.Sprintf("%d configurations", len(fields)), fields)
	},
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
