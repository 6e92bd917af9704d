package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/onvifctl/internal/config"
	"github.com/muurk/onvifctl/internal/ui"
)

var captureFolder string

func init() {
	cameraAddCmd.Flags().StringVar(&captureFolder, "capture-folder", "", "Folder name for captured traffic (default: the camera name)")

	cameraCmd.AddCommand(cameraAddCmd, cameraListCmd, cameraRemoveCmd)
	rootCmd.AddCommand(cameraCmd)
}

// cameraCmd groups the saved camera commands
var cameraCmd = &cobra.Command{
	Use:   "camera",
	Short: "Manage saved cameras",
	Long: `Save cameras by name so other commands can select them with --camera.

Only the address, port, scheme and username are saved. Passwords are never
written to the config file.`,
}

var cameraAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Save a camera",
	Example: `  onvifctl camera add gate --host 192.168.1.64 --user admin
  onvifctl camera add garage --host cam.example.net --port 8443 --scheme https --insecure`,
	Args: cobra.ExactArgs(1),
	RunE: runCameraAdd,
}

func runCameraAdd(cmd *cobra.Command, args []string) error {
	if hostFlag == "" {
		return fmt.Errorf("--host is required")
	}
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	name := args[0]
	cam := &config.Camera{
		Address:       hostFlag,
		Port:          portFlag,
		Scheme:        schemeFlag,
		Username:      userFlag,
		CaptureFolder: captureFolder,
		InsecureTLS:   insecureTLS,
	}
	if err := reg.AddCamera(name, cam); err != nil {
		return err
	}
	if err := reg.Save(); err != nil {
		return err
	}

	return printFields(cmd.OutOrStdout(), "Camera saved", cameraFields(name, cam))
}

var cameraListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved cameras",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if outputFormat == formatJSON {
			return printJSON(out, reg.Cameras)
		}

		names := reg.CameraNames()
		if len(names) == 0 {
			fmt.Fprintln(out, "No saved cameras. Use 'onvifctl camera add' to save one.")
			return nil
		}
		p := ui.NewPrinter(out)
		for _, name := range names {
			p.PrintSuccess(name, cameraFields(name, reg.GetCamera(name)))
		}
		return nil
	},
}

var cameraRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Forget a saved camera",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if !reg.RemoveCamera(args[0]) {
			return fmt.Errorf("no saved camera named %q", args[0])
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed camera %s\n", args[0])
		return nil
	},
}

// cameraFields describes a saved camera
func cameraFields(name string, cam *config.Camera) []ui.Field {
	fields := []ui.Field{
		{Key: "Name", Value: name},
		{Key: "Address", Value: cam.Address},
	}
	if cam.Port != 0 {
		fields = append(fields, ui.Field{Key: "Port", Value: strconv.Itoa(cam.Port)})
	}
	if cam.Scheme != "" {
		fields = append(fields, ui.Field{Key: "Scheme", Value: cam.Scheme})
	}
	if cam.Username != "" {
		fields = append(fields, ui.Field{Key: "Username", Value: cam.Username})
	}
	if cam.InsecureTLS {
		fields = append(fields, ui.Field{Key: "TLS", Value: "certificate not verified"})
	}
	if cam.Manufacturer != "" || cam.Model != "" {
		fields = append(fields, ui.Field{Key: "Model", Value: cam.Manufacturer + " " + cam.Model})
	}
	if !cam.LastSeen.IsZero() {
		fields = append(fields, ui.Field{Key: "Last seen", Value: cam.LastSeen.Format("2006-01-02 15:04")})
	}
	return fields
}
