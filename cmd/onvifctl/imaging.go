package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/onvifctl/internal/camera"
	"github.com/muurk/onvifctl/internal/core"
	"github.com/muurk/onvifctl/internal/imaging"
)

var (
	videoSource string

	brightness, contrast, saturation, sharpness float64
	irCutFilter, autoFocusMode                  string
	persist                                     bool

	focusAbsolute, focusRelative, focusContinuous, focusSpeed float64
)

func init() {
	imagingCmd.PersistentFlags().StringVar(&videoSource, "source", "", "Video source token (default: the source of the first media profile)")

	f := imagingSetCmd.Flags()
	f.Float64Var(&brightness, "brightness", 0, "Brightness")
	f.Float64Var(&contrast, "contrast", 0, "Contrast")
	f.Float64Var(&saturation, "saturation", 0, "Color saturation")
	f.Float64Var(&sharpness, "sharpness", 0, "Sharpness")
	f.StringVar(&irCutFilter, "ir-cut", "", "IR cut filter: ON, OFF or AUTO")
	f.StringVar(&autoFocusMode, "focus-mode", "", "Autofocus mode: AUTO or MANUAL")
	f.BoolVar(&persist, "persist", false, "Keep the change across reboots")

	m := imagingMoveCmd.Flags()
	m.Float64Var(&focusAbsolute, "absolute", 0, "Move focus to this position")
	m.Float64Var(&focusRelative, "relative", 0, "Move focus by this distance (negative is near)")
	m.Float64Var(&focusContinuous, "continuous", 0, "Move focus at this speed until stopped")
	m.Float64Var(&focusSpeed, "speed", 0, "Speed for absolute and relative moves")
	imagingMoveCmd.MarkFlagsMutuallyExclusive("absolute", "relative", "continuous")
	imagingMoveCmd.MarkFlagsOneRequired("absolute", "relative", "continuous")

	imagingCmd.AddCommand(
		imagingSettingsCmd,
		imagingSetCmd,
		imagingOptionsCmd,
		imagingMoveOptionsCmd,
		imagingStatusCmd,
		imagingMoveCmd,
		imagingStopCmd,
		imagingPresetsCmd,
		imagingPresetCmd,
		imagingSetPresetCmd,
	)
	rootCmd.AddCommand(imagingCmd)
}

// imagingCmd groups the imaging service operations
var imagingCmd = &cobra.Command{
	Use:   "imaging",
	Short: "Imaging settings and focus control",
}

func selectSource(ctx context.Context, cam *camera.Camera) (string, error) {
	return cam.SelectVideoSource(ctx, videoSource)
}

// imagingQuery builds a command for an operation that takes only a token
func imagingQuery(use, short, title string, send func(ctx context.Context, s *imaging.Service, token string) *core.Future) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenRequest(cmd, title, selectSource, func(ctx context.Context, cam *camera.Camera, token string) *core.Future {
				return send(ctx, cam.Imaging, token)
			})
		},
	}
}

var (
	imagingSettingsCmd = imagingQuery("settings", "Show imaging settings", "Imaging settings",
		func(ctx context.Context, s *imaging.Service, token string) *core.Future {
			return s.GetImagingSettings(ctx, token, nil)
		})
	imagingOptionsCmd = imagingQuery("options", "Show valid imaging setting ranges", "Imaging options",
		func(ctx context.Context, s *imaging.Service, token string) *core.Future {
			return s.GetOptions(ctx, token, nil)
		})
	imagingMoveOptionsCmd = imagingQuery("move-options", "Show supported focus moves", "Focus move options",
		func(ctx context.Context, s *imaging.Service, token string) *core.Future {
			return s.GetMoveOptions(ctx, token, nil)
		})
	imagingStatusCmd = imagingQuery("status", "Show focus position and move status", "Imaging status",
		func(ctx context.Context, s *imaging.Service, token string) *core.Future {
			return s.GetImagingStatus(ctx, token, nil)
		})
	imagingStopCmd = imagingQuery("stop", "Stop a focus move", "Focus stopped",
		func(ctx context.Context, s *imaging.Service, token string) *core.Future {
			return s.Stop(ctx, token, nil)
		})
	imagingPresetsCmd = imagingQuery("presets", "List imaging presets", "Imaging presets",
		func(ctx context.Context, s *imaging.Service, token string) *core.Future {
			return s.GetPresets(ctx, token, nil)
		})
	imagingPresetCmd = imagingQuery("preset", "Show the current imaging preset", "Current preset",
		func(ctx context.Context, s *imaging.Service, token string) *core.Future {
			return s.GetCurrentPreset(ctx, token, nil)
		})
)

var imagingSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change imaging settings",
	Long:  "Change the given imaging settings. Settings without a flag keep their current value.",
	Example: `  onvifctl imaging set --brightness 60 --contrast 45 --camera gate
  onvifctl imaging set --ir-cut AUTO --persist --camera gate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := settingsFromFlags(cmd)
		return runTokenRequest(cmd, "Imaging settings changed", selectSource, func(ctx context.Context, cam *camera.Camera, token string) *core.Future {
			return cam.Imaging.SetImagingSettings(ctx, token, settings, nil)
		})
	},
}

// settingsFromFlags sets only the fields whose flags were given
func settingsFromFlags(cmd *cobra.Command) *imaging.Settings {
	f := cmd.Flags()
	s := &imaging.Settings{}
	if f.Changed("brightness") {
		s.Brightness = imaging.Float(brightness)
	}
	if f.Changed("contrast") {
		s.Contrast = imaging.Float(contrast)
	}
	if f.Changed("saturation") {
		s.ColorSaturation = imaging.Float(saturation)
	}
	if f.Changed("sharpness") {
		s.Sharpness = imaging.Float(sharpness)
	}
	if f.Changed("ir-cut") {
		s.IrCutFilter = strings.ToUpper(irCutFilter)
	}
	if f.Changed("focus-mode") {
		s.Focus = &imaging.FocusConfiguration{AutoFocusMode: strings.ToUpper(autoFocusMode)}
	}
	if f.Changed("persist") {
		s.ForcePersistence = imaging.Bool(persist)
	}
	return s
}

var imagingMoveCmd = &cobra.Command{
	Use:   "move",
	Short: "Move the focus lens",
	Example: `  onvifctl imaging move --absolute 0.4 --camera gate
  onvifctl imaging move --continuous -0.2 --camera gate && onvifctl imaging stop --camera gate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		move := focusMoveFromFlags(cmd)
		return runTokenRequest(cmd, "Focus moved", selectSource, func(ctx context.Context, cam *camera.Camera, token string) *core.Future {
			return cam.Imaging.Move(ctx, token, move, nil)
		})
	},
}

func focusMoveFromFlags(cmd *cobra.Command) *imaging.FocusMove {
	f := cmd.Flags()
	var speed *float64
	if f.Changed("speed") {
		speed = imaging.Float(focusSpeed)
	}

	move := &imaging.FocusMove{}
	switch {
	case f.Changed("absolute"):
		move.Absolute = &imaging.AbsoluteFocus{Position: focusAbsolute, Speed: speed}
	case f.Changed("relative"):
		move.Relative = &imaging.RelativeFocus{Distance: focusRelative, Speed: speed}
	case f.Changed("continuous"):
		move.Continuous = &imaging.ContinuousFocus{Speed: focusContinuous}
	}
	return move
}

var imagingSetPresetCmd = &cobra.Command{
	Use:   "set-preset <preset-token>",
	Short: "Apply an imaging preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := fmt.Sprintf("Preset %s applied", args[0])
		return runTokenRequest(cmd, title, selectSource, func(ctx context.Context, cam *camera.Camera, token string) *core.Future {
			return cam.Imaging.SetCurrentPreset(ctx, token, args[0], nil)
		})
	},
}
