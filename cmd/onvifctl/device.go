package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/onvifctl/internal/camera"
	"github.com/muurk/onvifctl/internal/core"
	"github.com/muurk/onvifctl/internal/device"
	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/ui"
)

var (
	servicesWithCapabilities bool
	rebootConfirmed          bool
)

func init() {
	deviceServicesCmd.Flags().BoolVar(&servicesWithCapabilities, "capabilities", false, "Include each service's capabilities")
	deviceRebootCmd.Flags().BoolVarP(&rebootConfirmed, "yes", "y", false, "Reboot without asking")

	deviceCmd.AddCommand(
		deviceInfoCmd,
		deviceTimeCmd,
		deviceCapabilitiesCmd,
		deviceServicesCmd,
		deviceHostnameCmd,
		deviceRebootCmd,
	)
	rootCmd.AddCommand(deviceCmd)
}

// deviceCmd groups the device management operations
var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Device management operations",
}

var deviceInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show manufacturer, model and firmware",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cam, _, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		res, err := cam.Device.GetDeviceInformation(cmd.Context(), nil).Await(cmd.Context())
		if err != nil {
			return err
		}
		if outputFormat == formatXML {
			return printResult(cmd.OutOrStdout(), "", res)
		}
		info := device.ParseInformation(res)
		return printFields(cmd.OutOrStdout(), "Device information", []ui.Field{
			{Key: "Manufacturer", Value: info.Manufacturer},
			{Key: "Model", Value: info.Model},
			{Key: "Firmware", Value: info.FirmwareVersion},
			{Key: "Serial", Value: info.SerialNumber},
			{Key: "Hardware ID", Value: info.HardwareID},
		})
	},
}

var deviceTimeCmd = &cobra.Command{
	Use:   "time",
	Short: "Show the device clock and its offset from this machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cam, _, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		res, err := cam.Device.GetSystemDateAndTime(cmd.Context(), nil).Await(cmd.Context())
		if err != nil {
			return err
		}
		if outputFormat == formatXML {
			return printResult(cmd.OutOrStdout(), "", res)
		}
		deviceTime, err := device.DeviceTime(res)
		if err != nil {
			return err
		}
		return printFields(cmd.OutOrStdout(), "Device clock", []ui.Field{
			{Key: "Device time", Value: deviceTime.Format(time.RFC3339)},
			{Key: "Local time", Value: time.Now().UTC().Format(time.RFC3339)},
			{Key: "Offset", Value: cam.Session.ClockDifference().String()},
		})
	},
}

var deviceCapabilitiesCmd = &cobra.Command{
	Use:       "capabilities [category]",
	Short:     "Show device capabilities",
	Long:      "Show device capabilities for one category (All, Analytics, Device, Events, Imaging, Media, PTZ).",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: device.CapabilityCategories,
	RunE: func(cmd *cobra.Command, args []string) error {
		category := ""
		if len(args) == 1 {
			category = args[0]
		}
		return runRequest(cmd, "Capabilities", func(ctx context.Context, cam *camera.Camera) *core.Future {
			return cam.Device.GetCapabilities(ctx, category, nil)
		})
	},
}

var deviceServicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List the service addresses the device reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cam, _, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		res, err := cam.Device.GetServices(cmd.Context(), servicesWithCapabilities, nil).Await(cmd.Context())
		if err != nil {
			return err
		}
		if outputFormat != formatTree || servicesWithCapabilities {
			return printResult(cmd.OutOrStdout(), "Services", res)
		}
		return printFields(cmd.OutOrStdout(), "Services", xaddrFields(device.ServiceXAddrs(res)))
	},
}

var deviceHostnameCmd = &cobra.Command{
	Use:   "hostname",
	Short: "Show the device host name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cam, _, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		res, err := cam.Device.GetHostname(cmd.Context(), nil).Await(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), device.ParseHostname(res))
		return nil
	},
}

var deviceRebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Reboot the device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cam, label, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		if !rebootConfirmed {
			ok := ui.Confirm(cmd.InOrStdin(), os.Stderr, "Reboot "+label, []string{
				"The camera stops streaming until it is back up",
				"Moves in progress are interrupted",
			}, "reboot")
			if !ok {
				return fmt.Errorf("reboot cancelled")
			}
		}
		res, err := cam.Device.SystemReboot(cmd.Context(), nil).Await(cmd.Context())
		if err != nil {
			return err
		}
		return printFields(cmd.OutOrStdout(), "Reboot requested", []ui.Field{
			{Key: "Message", Value: res.String("SystemRebootResponse", "Message")},
		})
	},
}

// xaddrFields lists service addresses in category order
func xaddrFields(xaddrs map[soap.Category]string) []ui.Field {
	keys := make([]string, 0, len(xaddrs))
	for c := range xaddrs {
		keys = append(keys, string(c))
	}
	sort.Strings(keys)

	fields := make([]ui.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, ui.Field{Key: k, Value: xaddrs[soap.Category(k)]})
	}
	return fields
}
