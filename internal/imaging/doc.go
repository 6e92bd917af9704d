// Package imaging implements the ONVIF imaging service (ver20): imaging
// settings, focus moves, imaging presets and status for a video source.
//
// Every operation takes the video source token as its first argument after
// the context. An empty token falls back to the module default set with
// SetDefaultVideoSourceToken.
package imaging
