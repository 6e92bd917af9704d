// Package core is the request runner every feature module routes through.
//
// A feature module embeds a *Service built with its category, XML prefix and
// namespace set. After Init has attached a Session, each operation builds a
// body and calls BuildRequest, which wraps the body in the method element,
// creates the envelope, dispatches it and parses the reply.
//
// # Calling convention
//
// The final argument of every operation chooses how the outcome is
// delivered:
//
//	// awaitable form
//	res, err := imaging.GetImagingSettings(ctx, "", nil).Await(ctx)
//
//	// callback form: returns nil, calls back exactly once
//	imaging.GetImagingSettings(ctx, "", func(err error, res *soap.Result) {
//	    ...
//	})
//
// A callback argument that is not a function of that shape is rejected with
// an InvalidArgument error through the returned Future, before any I/O.
// Validation failures in feature modules go through Service.Reject so they
// reach the caller on the same channel as every other failure.
package core
