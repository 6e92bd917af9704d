package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/onvifctl/internal/config"
	"github.com/muurk/onvifctl/internal/discovery"
	"github.com/muurk/onvifctl/internal/picker"
	"github.com/muurk/onvifctl/internal/ui"
)

var (
	scanTimeout  int
	scanServices []string
	scanPick     bool
	scanSaveAs   string
)

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Scan timeout in seconds (default from config, 5)")
	scanCmd.Flags().BoolVar(&scanPick, "pick", false, "Choose a camera interactively")
	scanCmd.Flags().StringVar(&scanSaveAs, "save", "", "Save the chosen camera under this name (implies --pick)")
	scanCmd.Flags().StringSliceVar(&scanServices, "service", nil, "DNS-SD service types to browse (default: camera services and _http._tcp)")

	rootCmd.AddCommand(scanCmd)
}

// scanCmd discovers cameras on the local network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for cameras on the network",
	Long: `Scan for IP cameras using mDNS/DNS-SD discovery.

Browses the camera service types (_onvif._tcp, _axis-video._tcp, _rtsp._tcp)
and generic web servers whose names look like cameras, then lists each
camera with the device service URL to use with --xaddr.`,
	Example: `  # Scan with the configured timeout
  onvifctl scan

  # Longer scan for busy networks
  onvifctl scan --timeout 15

  # Only ONVIF advertisements
  onvifctl scan --service _onvif._tcp

  # Pick a camera from the list and save it as "gate"
  onvifctl scan --save gate --user admin`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(reg.Preferences.DiscoverTimeout) * time.Second
	if scanTimeout > 0 {
		scanner.Timeout = time.Duration(scanTimeout) * time.Second
	}
	if len(scanServices) > 0 {
		scanner.Services = scanServices
	}

	out := cmd.OutOrStdout()
	if scanPick || scanSaveAs != "" {
		return runPick(cmd, reg, scanner)
	}
	fmt.Fprintf(out, "Scanning for cameras (timeout: %s)...\n\n", scanner.Timeout)

	devices, err := scanner.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if outputFormat == formatJSON {
		return printJSON(out, devices)
	}

	if len(devices) == 0 {
		ui.NewPrinter(out).PrintWarning("No cameras found", []ui.Field{
			{Key: "Tip", Value: "Check that this machine is on the cameras' network"},
			{Key: "Tip", Value: "Try increasing --timeout for slower networks"},
			{Key: "Tip", Value: "Use --host to address a camera directly"},
		})
		return nil
	}

	return ui.RenderOnce(out, formatDevices(devices))
}

// formatDevices renders the scan result list
func formatDevices(devices []*discovery.Device) string {
	var b strings.Builder
	b.WriteString(ui.SuccessTitleStyle.Render(fmt.Sprintf("Found %d camera(s)", len(devices))))
	b.WriteString("\n\n")

	for i, d := range devices {
		fmt.Fprintf(&b, "%d. %s\n", i+1, ui.TreeKeyStyle.Render(d.Instance))
		fmt.Fprintf(&b, "   %s %s\n", ui.ResultKeyStyle.Render("Service:"), d.Service)
		fmt.Fprintf(&b, "   %s %s:%d\n", ui.ResultKeyStyle.Render("Address:"), d.IP, d.Port)
		fmt.Fprintf(&b, "   %s %s\n", ui.ResultKeyStyle.Render("XAddr:  "), d.XAddr())
		b.WriteString("\n")
	}

	b.WriteString(ui.StepNoteStyle.Render("Use 'onvifctl camera add <name> --host <ip>' to save a camera"))
	return b.String()
}

// runPick lets the user choose a camera, then saves or prints it
func runPick(cmd *cobra.Command, reg *config.Registry, scanner *discovery.Scanner) error {
	chosen, err := picker.Run(cmd.Context(), scanner.Scan, scanner.Timeout, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if chosen == nil {
		return nil
	}

	out := cmd.OutOrStdout()
	if scanSaveAs == "" {
		fmt.Fprintln(out, chosen.XAddr())
		return nil
	}

	cam := &config.Camera{
		Address:     chosen.IP,
		Port:        chosen.Port,
		Username:    userFlag,
		InsecureTLS: insecureTLS,
	}
	if err := reg.AddCamera(scanSaveAs, cam); err != nil {
		return err
	}
	if err := reg.Save(); err != nil {
		return err
	}
	return printFields(out, "Camera saved", cameraFields(scanSaveAs, cam))
}
