// Package discovery finds IP cameras on the local network over mDNS/DNS-SD.
//
// WS-Discovery, the multicast probe ONVIF itself defines, is not implemented.
// Many cameras also announce themselves over mDNS, either with a
// vendor-specific service type (for example "_axis-video._tcp") or as a
// generic "_http._tcp" web interface; this package browses both and turns
// each answer into a Device with a ready-to-use device service XAddr.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 5 * time.Second
//	cameras, err := scanner.Scan(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, cam := range cameras {
//	    fmt.Println(cam.Instance, cam.XAddr())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Cameras must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
