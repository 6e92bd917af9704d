package urls

// ONVIFSpecifications lists the ONVIF service specifications and WSDLs.
const ONVIFSpecifications = "https://www.onvif.org/profiles/specifications/"

// ONVIFCoreSpec is the core specification, covering the device service,
// the SOAP binding and WS-Security UsernameToken authentication.
const ONVIFCoreSpec = "https://www.onvif.org/specs/core/ONVIF-Core-Specification.pdf"

// WSSecurityUsernameToken is the OASIS UsernameToken profile that defines
// the password digest.
const WSSecurityUsernameToken = "https://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-username-token-profile-1.0.pdf"

// ImagingWSDL and PTZWSDL are the service descriptions of the commands
// this tool sends.
const (
	ImagingWSDL = "https://www.onvif.org/ver20/imaging/wsdl/imaging.wsdl"
	PTZWSDL     = "https://www.onvif.org/ver20/ptz/wsdl/ptz.wsdl"
	MediaWSDL   = "https://www.onvif.org/ver10/media/wsdl/media.wsdl"
	DeviceWSDL  = "https://www.onvif.org/ver10/device/wsdl/devicemgmt.wsdl"
)
