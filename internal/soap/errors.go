package soap

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/muurk/onvifctl/internal/urls"
)

// ErrorKind represents the category of error that occurred while building,
// sending or parsing a request
type ErrorKind int

const (
	// ErrInvalidArgument indicates a caller-supplied value failed validation
	ErrInvalidArgument ErrorKind = iota + 1
	// ErrTransport indicates the device could not be reached or answered with a non-2xx status
	ErrTransport
	// ErrMalformedResponse indicates the response body is not well-formed XML
	ErrMalformedResponse
	// ErrProtocolFault indicates the device answered with a SOAP Fault
	ErrProtocolFault
	// ErrNotImplemented indicates the operation is declared but not supported
	ErrNotImplemented
)

// NetworkErrorSubtype provides more specific transport error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidArgument:
		return "Invalid Argument"
	case ErrTransport:
		return "Transport Error"
	case ErrMalformedResponse:
		return "Malformed Response"
	case ErrProtocolFault:
		return "Protocol Fault"
	case ErrNotImplemented:
		return "Not Implemented"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the single error type returned by the request pipeline
type Error struct {
	Kind           ErrorKind           // Category of error
	Method         string              // Operation that failed
	Argument       string              // Offending argument (InvalidArgument only)
	Message        string              // Human-readable error message
	StatusCode     int                 // HTTP status code (if applicable)
	FaultCode      string              // SOAP fault code, verbatim
	FaultSubcode   string              // SOAP fault subcode, verbatim
	FaultReason    string              // SOAP fault reason text, verbatim
	NetworkSubtype NetworkErrorSubtype // More specific transport error type
	Err            error               // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Method != "" {
		b.WriteString(" in ")
		b.WriteString(e.Method)
	}
	b.WriteString(": ")
	if e.Argument != "" {
		b.WriteString(e.Argument)
		b.WriteString(" ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, &soap.Error{Kind: soap.ErrTransport}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// ClassifyNetworkError analyzes a transport error and fills in the network subtype
func ClassifyNetworkError(err error, method string) *Error {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &Error{
			Kind:           ErrTransport,
			Method:         method,
			Message:        "request timed out",
			Err:            err,
			NetworkSubtype: NetworkErrorTimeout,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Kind:           ErrTransport,
			Method:         method,
			Message:        fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:            err,
			NetworkSubtype: NetworkErrorDNS,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &Error{
				Kind:           ErrTransport,
				Method:         method,
				Message:        "device refused connection",
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionRefused,
			}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &Error{
				Kind:           ErrTransport,
				Method:         method,
				Message:        "host unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
			}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &Error{
				Kind:           ErrTransport,
				Method:         method,
				Message:        "network unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		classified := ClassifyNetworkError(urlErr.Err, method)
		classified.Err = err
		return classified
	}

	return &Error{
		Kind:           ErrTransport,
		Method:         method,
		Message:        "network error occurred",
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
	}
}

// NewInvalidArgument creates an error naming the operation and the offending argument
func NewInvalidArgument(method, argument, reason string) *Error {
	return &Error{
		Kind:     ErrInvalidArgument,
		Method:   method,
		Argument: argument,
		Message:  reason,
	}
}

// NewTransportError creates a transport error. A nil cause with a status code
// describes a non-2xx response; a non-nil cause is classified.
func NewTransportError(method string, statusCode int, err error) *Error {
	if err != nil {
		classified := ClassifyNetworkError(err, method)
		classified.StatusCode = statusCode
		return classified
	}
	return &Error{
		Kind:       ErrTransport,
		Method:     method,
		Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		StatusCode: statusCode,
	}
}

// NewMalformedResponse creates an error for a response that could not be parsed
func NewMalformedResponse(method string, err error) *Error {
	return &Error{
		Kind:    ErrMalformedResponse,
		Method:  method,
		Message: "response is not well-formed XML",
		Err:     err,
	}
}

// NewProtocolFault creates an error carrying the device's fault fields verbatim
func NewProtocolFault(method, code, subcode, reason string) *Error {
	msg := reason
	if msg == "" {
		msg = code
	}
	return &Error{
		Kind:         ErrProtocolFault,
		Method:       method,
		Message:      msg,
		FaultCode:    code,
		FaultSubcode: subcode,
		FaultReason:  reason,
	}
}

// NewNotImplemented creates an error for a declared but unsupported operation
func NewNotImplemented(method string) *Error {
	return &Error{
		Kind:    ErrNotImplemented,
		Method:  method,
		Message: "operation is not implemented",
	}
}

// KindOf returns the kind of the first *Error in err's chain, or 0
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return KindOf(err) == ErrInvalidArgument
}

// IsTransport checks if an error is a transport error
func IsTransport(err error) bool {
	return KindOf(err) == ErrTransport
}

// IsMalformedResponse checks if an error is a malformed response error
func IsMalformedResponse(err error) bool {
	return KindOf(err) == ErrMalformedResponse
}

// IsProtocolFault checks if an error is a SOAP fault returned by the device
func IsProtocolFault(err error) bool {
	return KindOf(err) == ErrProtocolFault
}

// IsNotImplemented checks if an error is a not-implemented error
func IsNotImplemented(err error) bool {
	return KindOf(err) == ErrNotImplemented
}

// TroubleshootingHints returns user-friendly troubleshooting advice for an error
func TroubleshootingHints(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "An unexpected error occurred. Please try again."
	}

	switch e.Kind {
	case ErrInvalidArgument:
		return "An argument was rejected before anything was sent. Check the error message for details."

	case ErrTransport:
		if e.StatusCode == 401 {
			return strings.Join([]string{
				"The camera rejected the credentials.",
				"Troubleshooting:",
				"  • Check the username and password",
				"  • Some cameras require a user created in the ONVIF settings page",
				"  • Large clock differences can invalidate WS-Security digests",
				"  • Digest format: " + urls.WSSecurityUsernameToken,
			}, "\n")
		}
		if e.StatusCode != 0 {
			return fmt.Sprintf("The camera returned HTTP error %d. Check the service path and request parameters.", e.StatusCode)
		}

		switch e.NetworkSubtype {
		case NetworkErrorTimeout:
			return strings.Join([]string{
				"The camera did not respond in time.",
				"Troubleshooting:",
				"  • Check that the camera is powered on",
				"  • Try increasing the timeout with --timeout",
				"  • Verify the port (ONVIF usually listens on 80, 8000 or 8080)",
			}, "\n")
		case NetworkErrorConnectionRefused:
			return strings.Join([]string{
				"The camera refused the connection.",
				"Troubleshooting:",
				"  • Verify the port number",
				"  • Make sure ONVIF is enabled in the camera settings",
			}, "\n")
		case NetworkErrorDNS:
			return strings.Join([]string{
				"Could not resolve the camera hostname.",
				"Troubleshooting:",
				"  • Use the IP address instead of hostname",
				"  • Run 'onvifctl scan' to find cameras on the local network",
			}, "\n")
		case NetworkErrorHostUnreachable, NetworkErrorNetworkUnreachable:
			return strings.Join([]string{
				"The camera is not reachable on the network.",
				"Troubleshooting:",
				"  • Verify the camera IP address is correct",
				"  • Check that you're on the same network as the camera",
			}, "\n")
		default:
			return strings.Join([]string{
				"Network communication failed.",
				"Troubleshooting:",
				"  • Check your network connection",
				"  • Verify the camera is powered on",
			}, "\n")
		}

	case ErrMalformedResponse:
		return strings.Join([]string{
			"The camera's response could not be parsed.",
			"Troubleshooting:",
			"  • Re-run with --capture to save the raw response",
			"  • Check that the address points at an ONVIF service",
		}, "\n")

	case ErrProtocolFault:
		hint := []string{"The camera rejected the request with a SOAP fault."}
		if e.FaultSubcode != "" {
			hint = append(hint, "Subcode: "+e.FaultSubcode)
		}
		if strings.Contains(e.FaultSubcode, "NotAuthorized") {
			hint = append(hint, "Troubleshooting:", "  • Check the username and password")
		} else if strings.Contains(e.FaultSubcode, "ActionNotSupported") {
			hint = append(hint, "Troubleshooting:",
				"  • The camera does not support this operation",
				"  • Service definitions: "+urls.ONVIFSpecifications)
		}
		return strings.Join(hint, "\n")

	case ErrNotImplemented:
		return "This operation is declared but not implemented by onvifctl."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	switch e.Kind {
	case ErrInvalidArgument:
		if e.Argument != "" {
			return fmt.Sprintf("Invalid %s: %s", e.Argument, e.Message)
		}
		return e.Message
	case ErrTransport:
		if e.StatusCode == 401 {
			return "Authentication failed - check credentials"
		}
		if e.StatusCode != 0 {
			return fmt.Sprintf("Camera error (HTTP %d)", e.StatusCode)
		}
		switch e.NetworkSubtype {
		case NetworkErrorTimeout:
			return "Camera not responding (timeout)"
		case NetworkErrorConnectionRefused:
			return "Camera refused connection"
		case NetworkErrorDNS:
			return "Cannot resolve camera hostname"
		case NetworkErrorHostUnreachable:
			return "Camera unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable"
		default:
			return "Network error - check connection"
		}
	case ErrMalformedResponse:
		return "Failed to parse camera response"
	case ErrProtocolFault:
		return "Camera fault: " + e.Message
	case ErrNotImplemented:
		return e.Method + " is not implemented"
	default:
		return e.Message
	}
}
