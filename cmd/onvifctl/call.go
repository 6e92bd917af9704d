package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/onvifctl/internal/camera"
	"github.com/muurk/onvifctl/internal/core"
	"github.com/muurk/onvifctl/internal/soap"
)

var callBodyFile string

func init() {
	callCmd.Flags().StringVar(&callBodyFile, "body-file", "", "Read the request body from a file ('-' for stdin)")

	rootCmd.AddCommand(callCmd)
}

// callCmd sends an arbitrary operation
var callCmd = &cobra.Command{
	Use:   "call <category> <Method> [body]",
	Short: "Send any operation to a service",
	Long: `Send a raw operation to one of the camera's services.

The body is the XML inside the method element. Use the service prefix
for its elements (tds, timg, tptz, trt) and tt for schema types; those
prefixes are declared on the envelope.`,
	Example: `  # Device information
  onvifctl call device GetDeviceInformation --camera gate

  # Imaging settings of a video source
  onvifctl call imaging GetImagingSettings '<timg:VideoSourceToken>VideoSource_1</timg:VideoSourceToken>' --camera gate

  # Body from a file, raw XML output
  onvifctl call ptz GetConfigurationOptions --body-file req.xml --format xml --camera gate`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runCall,
}

func runCall(cmd *cobra.Command, args []string) error {
	category, err := parseCategory(args[0])
	if err != nil {
		return err
	}
	method := args[1]

	body := ""
	switch {
	case len(args) == 3 && callBodyFile != "":
		return fmt.Errorf("give the body as an argument or with --body-file, not both")
	case len(args) == 3:
		body = args[2]
	case callBodyFile != "":
		if body, err = readBody(callBodyFile, cmd.InOrStdin()); err != nil {
			return err
		}
	}

	return runRequest(cmd, string(category)+" "+method, func(ctx context.Context, cam *camera.Camera) *core.Future {
		m := cam.Module(category)
		if m == nil {
			return core.Rejected(soap.NewNotImplemented(method))
		}
		return m.BuildRequest(ctx, method, body, nil)
	})
}

// parseCategory accepts a known service category, case-insensitively
func parseCategory(name string) (soap.Category, error) {
	c := soap.Category(strings.ToLower(name))
	for _, known := range soap.Categories {
		if c == known {
			return c, nil
		}
	}
	names := make([]string, len(soap.Categories))
	for i, known := range soap.Categories {
		names[i] = string(known)
	}
	return "", fmt.Errorf("unknown category %q (want one of %s)", name, strings.Join(names, ", "))
}

func readBody(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
