// Package picker is an interactive camera chooser built on Bubble Tea.
//
// It runs a discovery scan behind a spinner and progress bar, then lists the
// cameras found. The user picks one with the arrow keys and enter, rescans
// with r, or types an address with m when the camera does not announce
// itself.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	cam, err := picker.Run(ctx, scanner.Scan, scanner.Timeout, os.Stdin, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	if cam == nil {
//	    return nil // user quit
//	}
//	fmt.Println(cam.XAddr())
package picker
