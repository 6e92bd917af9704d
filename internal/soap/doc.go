// Package soap builds, sends and parses ONVIF SOAP 1.2 messages.
//
// The package has four stages that the request runner in internal/core chains
// together for every operation:
//
//   - CreateRequest wraps an operation body in an envelope and, when a
//     username is given, a WS-Security UsernameToken header whose Created
//     timestamp is corrected by the measured clock difference.
//   - A Dispatcher posts the envelope to the device service for a Category.
//     HTTPDispatcher is the net/http implementation with a bounded timeout
//     and an HTTP digest fallback for devices that gate SOAP behind it.
//   - ParseResponse decodes the reply into a generic Node tree and turns a
//     SOAP Fault into an error.
//   - Every failure is an *Error whose Kind is one of InvalidArgument,
//     Transport, MalformedResponse, ProtocolFault or NotImplemented.
//
// Feature modules build operation bodies with Fragment, which escapes every
// value it is given.
//
// # Example
//
//	env, err := soap.CreateRequest(body, namespaces, clockDiff, "admin", password)
//	if err != nil {
//	    return err
//	}
//	raw, err := dispatcher.MakeRequest(ctx, soap.CategoryImaging, addr, "GetImagingSettings", env)
//	if err != nil {
//	    return err
//	}
//	res, err := soap.ParseResponse("GetImagingSettings", raw)
package soap
