package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/muurk/onvifctl/internal/camera"
	"github.com/muurk/onvifctl/internal/core"
	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/ui"
)

// Output formats for --format
const (
	formatTree = "tree"
	formatJSON = "json"
	formatXML  = "xml"
)

var outputFormat string

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatTree, "Output format (tree, json, xml)")
}

// printResult writes the <Method>Response element in the selected format
func printResult(w io.Writer, title string, res *soap.Result) error {
	switch outputFormat {
	case formatXML:
		_, err := fmt.Fprintln(w, string(res.Raw))
		return err
	case formatJSON:
		return printJSON(w, res.Response())
	case formatTree, "":
		ui.NewPrinter(w).PrintTree(title, res.Response())
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want tree, json or xml)", outputFormat)
	}
}

// printFields writes parsed values as a success box, or as a JSON object
func printFields(w io.Writer, title string, fields []ui.Field) error {
	if outputFormat == formatJSON {
		obj := make(map[string]string, len(fields))
		for _, f := range fields {
			obj[f.Key] = f.Value
		}
		return printJSON(w, obj)
	}
	ui.NewPrinter(w).PrintSuccess(title, fields)
	return nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// runRequest connects, sends one request built by send and prints the
// response. It is the body of most service subcommands.
func runRequest(cmd *cobra.Command, title string, send func(ctx context.Context, cam *camera.Camera) *core.Future) error {
	ctx := cmd.Context()
	cam, _, err := connect(ctx)
	if err != nil {
		return err
	}
	res, err := send(ctx, cam).Await(ctx)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), title, res)
}

// tokenResolver picks the token (profile or video source) a request needs
type tokenResolver func(ctx context.Context, cam *camera.Camera) (string, error)

// runTokenRequest is runRequest for operations addressed by a token
func runTokenRequest(cmd *cobra.Command, title string, resolve tokenResolver, send func(ctx context.Context, cam *camera.Camera, token string) *core.Future) error {
	return runRequest(cmd, title, func(ctx context.Context, cam *camera.Camera) *core.Future {
		token, err := resolve(ctx, cam)
		if err != nil {
			return core.Rejected(err)
		}
		return send(ctx, cam, token)
	})
}
