// Package soaptest provides a testify-backed Dispatcher and canned
// responses for testing feature modules without a device.
package soaptest

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/muurk/onvifctl/internal/soap"
)

// EmptyResponse is a fault-free envelope with an empty Body
const EmptyResponse = `<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope"><s:Body/></s:Envelope>`

// Envelope wraps body in a SOAP 1.2 response envelope declaring the usual
// ONVIF prefixes
func Envelope(body string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope"` +
		` xmlns:tt="http://www.onvif.org/ver10/schema"` +
		` xmlns:tds="http://www.onvif.org/ver10/device/wsdl"` +
		` xmlns:trt="http://www.onvif.org/ver10/media/wsdl"` +
		` xmlns:tptz="http://www.onvif.org/ver20/ptz/wsdl"` +
		` xmlns:timg="http://www.onvif.org/ver20/imaging/wsdl">` +
		`<s:Body>` + body + `</s:Body></s:Envelope>`)
}

// Dispatcher is a soap.Dispatcher stub
type Dispatcher struct {
	mock.Mock
}

// MakeRequest implements soap.Dispatcher
func (d *Dispatcher) MakeRequest(ctx context.Context, category soap.Category, addr soap.ServiceAddress, methodName string, envelope string) ([]byte, error) {
	args := d.Called(ctx, category, addr, methodName, envelope)
	raw, _ := args.Get(0).([]byte)
	return raw, args.Error(1)
}

// ExpectBody stubs one call of method in category whose envelope Body is
// exactly body, answering with response
func (d *Dispatcher) ExpectBody(category soap.Category, method, body string, response []byte) *mock.Call {
	return d.On("MakeRequest", mock.Anything, category, mock.Anything, method,
		mock.MatchedBy(func(env string) bool {
			return strings.Contains(env, "<s:Body>"+body+"</s:Body>")
		})).Return(response, nil).Once()
}

// ExpectMethod stubs one call of method in category regardless of body
func (d *Dispatcher) ExpectMethod(category soap.Category, method string, response []byte) *mock.Call {
	return d.On("MakeRequest", mock.Anything, category, mock.Anything, method, mock.Anything).
		Return(response, nil).Once()
}

// AssertNoRequests fails t if anything was dispatched
func (d *Dispatcher) AssertNoRequests(t mock.TestingT) bool {
	return d.AssertNotCalled(t, "MakeRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
