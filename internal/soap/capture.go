package soap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/onvifctl/internal/logging"
)

// CaptureKind distinguishes the two halves of an exchange
type CaptureKind string

const (
	CaptureRequest  CaptureKind = "Request"
	CaptureResponse CaptureKind = "Response"
)

// Capture receives a copy of every envelope sent and every body received.
// Implementations must not fail the request they observe.
type Capture interface {
	Save(category Category, method string, kind CaptureKind, data []byte)
}

// DirCapture writes exchanges to <Root>/<Folder>/<category>/<Method>.<Kind>.xml.
// Later calls of the same method overwrite earlier ones. A DirCapture with an
// empty Root does nothing.
type DirCapture struct {
	Root   string
	Folder string
}

// Save implements Capture
func (c DirCapture) Save(category Category, method string, kind CaptureKind, data []byte) {
	if c.Root == "" {
		return
	}

	dir := filepath.Join(c.Root, sanitizePathElement(c.Folder), sanitizePathElement(string(category)))
	if err := os.MkdirAll(dir, 0755); err != nil {
		logging.Warn("Failed to create capture directory",
			zap.String("dir", dir),
			zap.Error(err),
		)
		return
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.%s.xml", sanitizePathElement(method), kind))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		logging.Warn("Failed to write capture file",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return
	}

	logging.Debug("Captured SOAP message", zap.String("filename", filename))
}

// sanitizePathElement keeps a caller-supplied name inside its directory
func sanitizePathElement(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, s)
	if s == "." || s == ".." {
		return "_"
	}
	return s
}

type nopCapture struct{}

func (nopCapture) Save(Category, string, CaptureKind, []byte) {}
