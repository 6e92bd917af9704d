// Package logging provides structured logging for onvifctl.
//
// This package wraps a global zap logger with convenience functions. Logging
// is silent unless a level is passed to Initialize or set through the
// ONVIFCTL_LOG_LEVEL environment variable.
//
// # Log Levels
//
//   - Debug: envelopes, response bodies, hex dumps of unparseable bodies
//   - Info: connection steps (clock difference, discovered service paths)
//   - Warn: recoverable issues (capture write failures, digest fallback)
//   - Error: failures reported to the user
//
// # SOAP Logging
//
//	logging.LogSOAPRequest(requestID, "imaging", "GetImagingSettings", url, envelope)
//	logging.LogSOAPResponse(requestID, "GetImagingSettings", 200, body)
//
// Envelopes pass through RedactEnvelope first so the password digest and
// nonce never reach the log. The plaintext password is never part of an
// envelope in the first place.
//
// # Configuration
//
//	if err := logging.Initialize(flagLogLevel); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Output goes to stderr in console format.
package logging
