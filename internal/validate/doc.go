// Package validate checks the shape of caller-supplied arguments before a
// request is built.
//
// The functions here are pure and never panic. They report a mismatch as a
// short description ("is missing", "must be a string, got int") which the
// request runner and the feature modules wrap into an InvalidArgument error
// that names the operation and the argument:
//
//	if msg := validate.InvalidValue(token, validate.String); msg != "" {
//	    return soap.NewInvalidArgument("GetImagingSettings", "videoSourceToken", msg)
//	}
package validate
