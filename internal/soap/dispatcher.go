package soap

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	dac "github.com/xinsnake/go-http-digest-auth-client"
	"go.uber.org/zap"

	"github.com/muurk/onvifctl/internal/logging"
	"github.com/muurk/onvifctl/internal/version"
)

const (
	// DefaultTimeout bounds each request, including reading the body
	DefaultTimeout = 15 * time.Second

	// ContentType is sent with every SOAP 1.2 request
	ContentType = "application/soap+xml; charset=utf-8"

	// MaxResponseSize caps how much of a response body is read
	MaxResponseSize = 8 << 20
)

// Dispatcher sends a finished envelope to the device service for category
// and returns the raw response body. Implementations never retry.
type Dispatcher interface {
	MakeRequest(ctx context.Context, category Category, addr ServiceAddress, methodName string, envelope string) ([]byte, error)
}

// HTTPDispatcher posts envelopes over HTTP(S)
type HTTPDispatcher struct {
	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// Username and Password enable an HTTP digest retry when the device
	// answers 401 with a Digest challenge. They are never logged.
	Username string
	Password string

	// Capture receives copies of envelopes and responses (may be nil)
	Capture Capture
}

// DispatcherOption configures an HTTPDispatcher
type DispatcherOption func(*HTTPDispatcher)

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *HTTPDispatcher) {
		if timeout > 0 {
			d.HTTPClient.Timeout = timeout
		}
	}
}

// WithInsecureTLS disables certificate verification for https endpoints.
// Most cameras ship self-signed certificates.
func WithInsecureTLS() DispatcherOption {
	return func(d *HTTPDispatcher) {
		d.HTTPClient.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in for self-signed cameras
		}
	}
}

// WithHTTPDigest sets credentials for the HTTP digest fallback
func WithHTTPDigest(username, password string) DispatcherOption {
	return func(d *HTTPDispatcher) {
		d.Username = username
		d.Password = password
	}
}

// WithCapture sets the exchange capture
func WithCapture(c Capture) DispatcherOption {
	return func(d *HTTPDispatcher) {
		d.Capture = c
	}
}

// NewHTTPDispatcher creates a dispatcher with DefaultTimeout
func NewHTTPDispatcher(opts ...DispatcherOption) *HTTPDispatcher {
	d := &HTTPDispatcher{
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MakeRequest implements Dispatcher. A 2xx body is returned as is. A non-2xx
// response carrying a SOAP Fault is returned as a ProtocolFault error; any
// other failure is a Transport error.
func (d *HTTPDispatcher) MakeRequest(ctx context.Context, category Category, addr ServiceAddress, methodName string, envelope string) ([]byte, error) {
	if addr.IsZero() {
		return nil, NewInvalidArgument(methodName, "address", "is not set")
	}

	requestID := uuid.NewString()
	target := addr.URL(category)
	capture := d.capture()

	logging.LogSOAPRequest(requestID, string(category), methodName, target, envelope)
	capture.Save(category, methodName, CaptureRequest, []byte(envelope))

	resp, err := d.post(ctx, target, envelope)
	if err != nil {
		return nil, NewTransportError(methodName, 0, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && d.Username != "" && isDigestChallenge(resp) {
		logging.Debug("Device requested HTTP digest authentication, retrying",
			zap.String("request_id", requestID),
			zap.String("method", methodName),
		)
		resp, err = d.postDigest(ctx, target, envelope, resp)
		if err != nil {
			return nil, NewTransportError(methodName, 0, err)
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, NewTransportError(methodName, resp.StatusCode, err)
	}

	logging.LogSOAPResponse(requestID, methodName, resp.StatusCode, body)
	capture.Save(category, methodName, CaptureResponse, body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Devices report faults with 400/500; keep the fault text when present.
		if _, perr := ParseResponse(methodName, body); IsProtocolFault(perr) {
			var fault *Error
			errors.As(perr, &fault)
			fault.StatusCode = resp.StatusCode
			return nil, fault
		}
		return nil, NewTransportError(methodName, resp.StatusCode, nil)
	}

	return body, nil
}

func (d *HTTPDispatcher) capture() Capture {
	if d.Capture == nil {
		return nopCapture{}
	}
	return d.Capture
}

func (d *HTTPDispatcher) client() *http.Client {
	if d.HTTPClient == nil {
		return &http.Client{Timeout: DefaultTimeout}
	}
	return d.HTTPClient
}

func (d *HTTPDispatcher) newRequest(ctx context.Context, target, envelope string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewBufferString(envelope))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", ContentType)
	req.Header.Set("User-Agent", version.UserAgent())
	return req, nil
}

func (d *HTTPDispatcher) post(ctx context.Context, target, envelope string) (*http.Response, error) {
	req, err := d.newRequest(ctx, target, envelope)
	if err != nil {
		return nil, err
	}
	return d.client().Do(req)
}

// postDigest answers challenge with a single authorized POST. The digest
// client computes the Authorization header; the request keeps the SOAP
// headers and ctx.
func (d *HTTPDispatcher) postDigest(ctx context.Context, target, envelope string, challenge *http.Response) (*http.Response, error) {
	req, err := d.newRequest(ctx, target, envelope)
	if err != nil {
		_ = challenge.Body.Close()
		return nil, err
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(challenge.Body, MaxResponseSize))
	_ = challenge.Body.Close()
	challenge.Body = http.NoBody

	client := d.client()
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	dr := dac.NewRequest(d.Username, d.Password, req.Method, target, envelope)
	dr.Header = req.Header.Clone()
	dr.HTTPClient = &http.Client{
		Timeout:   client.Timeout,
		Transport: &challengeTransport{ctx: ctx, challenge: challenge, base: base},
	}
	return dr.Execute()
}

// challengeTransport replays the 401 already received for the digest
// client's unauthenticated opening request and sends every other request
// with ctx attached.
type challengeTransport struct {
	ctx       context.Context
	challenge *http.Response
	base      http.RoundTripper
}

func (t *challengeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.challenge != nil && req.Header.Get("Authorization") == "" {
		resp := t.challenge
		t.challenge = nil
		resp.Request = req
		return resp, nil
	}
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

func isDigestChallenge(resp *http.Response) bool {
	for _, v := range resp.Header.Values("WWW-Authenticate") {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(v)), "digest") {
			return true
		}
	}
	return false
}
