// Onvifctl is a command-line client for ONVIF IP cameras.
//
// It reads the device clock, discovers service addresses and then drives
// the device, imaging, PTZ and media services over SOAP with WS-Security
// UsernameToken authentication. Cameras can be saved by name in the
// registry; passwords never are.
//
// Usage:
//
//	onvifctl [command] [flags]
//
// See 'onvifctl --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/onvifctl/internal/logging"
	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/ui"
	"github.com/muurk/onvifctl/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// reportError prints protocol errors as a failure box and anything else
// (flag errors, config errors) as a plain line
func reportError(err error) {
	logging.Error("Command failed", zap.Error(err))

	var soapErr *soap.Error
	if !errors.As(err, &soapErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	var tips []string
	for _, line := range strings.Split(soap.TroubleshootingHints(err), "\n") {
		if line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "•")); line != "" && line != "Troubleshooting:" {
			tips = append(tips, line)
		}
	}
	ui.NewPrinter(os.Stderr).PrintError(soap.ShortMessage(err), err, tips)
}

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "onvifctl",
	Short: "ONVIF camera control utility",
	Long: `A command-line client for ONVIF IP cameras.

Talks SOAP 1.2 to the camera's device, imaging, PTZ and media services,
authenticating with WS-Security password digests adjusted for the camera's
clock. Cameras can be addressed directly (--host) or saved by name
('onvifctl camera add') and selected with --camera.

Passwords are read from ONVIFCTL_PASSWORD or prompted for; they are never
saved.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); default from "+logging.LogLevelEnvVar)

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("onvifctl %s\n", version.Full())
	},
}
