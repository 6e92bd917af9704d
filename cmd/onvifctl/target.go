package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/muurk/onvifctl/internal/camera"
	"github.com/muurk/onvifctl/internal/config"
	"github.com/muurk/onvifctl/internal/logging"
	"github.com/muurk/onvifctl/internal/soap"
)

// PasswordEnvVar supplies the camera password without a prompt
const PasswordEnvVar = "ONVIFCTL_PASSWORD"

// Target selection flags, shared by every command that talks to a camera
var (
	cameraName  string
	hostFlag    string
	xaddrFlag   string
	portFlag    int
	schemeFlag  string
	userFlag    string
	insecureTLS bool
	timeoutFlag time.Duration
	captureDir  string
	skipCaps    bool
)

func init() {
	addTargetFlags(rootCmd)
}

// addTargetFlags registers the camera selection flags on cmd
func addTargetFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVarP(&cameraName, "camera", "c", "", "Saved camera name (see 'onvifctl camera list')")
	f.StringVar(&hostFlag, "host", "", "Camera host name or IP address")
	f.StringVar(&xaddrFlag, "xaddr", "", "Full device service URL (overrides --host)")
	f.IntVar(&portFlag, "port", 0, "Camera HTTP port (default 80, or 443 for https)")
	f.StringVar(&schemeFlag, "scheme", "", "http or https")
	f.StringVarP(&userFlag, "user", "u", "", "Username; empty for unauthenticated cameras")
	f.BoolVar(&insecureTLS, "insecure", false, "Skip TLS certificate verification")
	f.DurationVar(&timeoutFlag, "timeout", 0, "Per-request timeout (default from config, 15s)")
	f.StringVar(&captureDir, "capture", "", "Save every request and response under this directory")
	f.BoolVar(&skipCaps, "no-capabilities", false, "Use the default service path instead of asking the camera")
}

// targetOptions merges the saved camera (if any), preferences and flags.
// Flags win over saved values.
func targetOptions(reg *config.Registry) (camera.Options, string, error) {
	var opts camera.Options
	label := hostFlag
	folder := ""

	if cameraName != "" {
		saved := reg.GetCamera(cameraName)
		if saved == nil {
			return opts, "", fmt.Errorf("no saved camera named %q (see 'onvifctl camera list')", cameraName)
		}
		opts.Host = saved.Address
		opts.Port = saved.Port
		opts.Scheme = saved.Scheme
		opts.Username = saved.Username
		opts.InsecureTLS = saved.InsecureTLS
		label = cameraName
		folder = saved.CaptureFolder
		if folder == "" {
			folder = cameraName
		}
	}

	if hostFlag != "" {
		opts.Host = hostFlag
	}
	if xaddrFlag != "" {
		opts.XAddr = xaddrFlag
		label = xaddrFlag
	}
	if portFlag != 0 {
		opts.Port = portFlag
	}
	if schemeFlag != "" {
		opts.Scheme = schemeFlag
	}
	if userFlag != "" {
		opts.Username = userFlag
	}
	if insecureTLS {
		opts.InsecureTLS = true
	}
	opts.SkipCapabilities = skipCaps

	if opts.Host == "" && opts.XAddr == "" {
		return opts, "", fmt.Errorf("no camera selected: use --camera, --host or --xaddr")
	}

	opts.Timeout = reg.Preferences.Timeout()
	if timeoutFlag > 0 {
		opts.Timeout = timeoutFlag
	}

	root := reg.Preferences.CaptureRoot
	if captureDir != "" {
		root = captureDir
	}
	if root != "" {
		if folder == "" {
			folder = opts.Host
		}
		opts.Capture = soap.DirCapture{Root: root, Folder: folder}
	}

	if label == "" {
		label = opts.Host
	}
	return opts, label, nil
}

// readPassword returns the password for username from the environment or
// an interactive prompt
func readPassword(username string, in *os.File, out io.Writer) (string, error) {
	if username == "" {
		return "", nil
	}
	if pw, ok := os.LookupEnv(PasswordEnvVar); ok {
		return pw, nil
	}
	if !term.IsTerminal(int(in.Fd())) {
		return "", fmt.Errorf("password required for %q: set %s or run interactively", username, PasswordEnvVar)
	}

	fmt.Fprintf(out, "Password for %s: ", username)
	pw, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(string(pw), "\r\n"), nil
}

// connect resolves the target and connects to it
func connect(ctx context.Context) (*camera.Camera, string, error) {
	reg, err := config.LoadRegistry()
	if err != nil {
		return nil, "", err
	}
	opts, label, err := targetOptions(reg)
	if err != nil {
		return nil, "", err
	}
	opts.Password, err = readPassword(opts.Username, os.Stdin, os.Stderr)
	if err != nil {
		return nil, "", err
	}

	logging.Debug("Connecting", zap.String("camera", label), zap.String("user", opts.Username))
	cam, err := camera.Connect(ctx, opts)
	if err != nil {
		return nil, "", err
	}
	return cam, label, nil
}
