// Package ptz implements the ONVIF PTZ service (ver20): continuous,
// relative and absolute moves, presets, the home position and PTZ status.
//
// Moves are expressed as Vector values. Leaving Space empty uses the
// device's generic space for the move type, where pan/tilt/zoom are
// normalized to [-1, 1] (zoom [0, 1] for absolute positions):
//
//	velocity := ptz.Vector{PanTilt: &ptz.Vector2D{X: 0.5}}
//	_, err := cam.PTZ.ContinuousMove(ctx, profile, velocity, 2*time.Second, nil).Await(ctx)
//
// Preset tour operations are declared but not implemented.
package ptz
