package soap

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/onvifctl/internal/version"
)

const okResponse = `<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope"><s:Body><Ok/></s:Body></s:Envelope>`

const faultResponse = `<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope" xmlns:ter="http://www.onvif.org/ver10/error">
<s:Body><s:Fault><s:Code><s:Value>s:Sender</s:Value><s:Subcode><s:Value>ter:InvalidArgVal</s:Value></s:Subcode></s:Code>
<s:Reason><s:Text xml:lang="en">No such video source</s:Text></s:Reason></s:Fault></s:Body></s:Envelope>`

// serverAddress converts an httptest URL into a ServiceAddress
func serverAddress(t *testing.T, rawURL string) ServiceAddress {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	addr, err := NewServiceAddress(host, port)
	require.NoError(t, err)
	return addr
}

func TestHTTPDispatcher_Success(t *testing.T) {
	var gotPath, gotContentType, gotUserAgent, gotBody, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.UserAgent()
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(okResponse))
	}))
	defer server.Close()

	addr := serverAddress(t, server.URL).WithPath(CategoryImaging, "/onvif/imaging")
	d := NewHTTPDispatcher()

	body, err := d.MakeRequest(context.Background(), CategoryImaging, addr, "Stop", "<env/>")
	require.NoError(t, err)

	assert.Equal(t, okResponse, string(body))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/onvif/imaging", gotPath)
	assert.Equal(t, ContentType, gotContentType)
	assert.True(t, strings.HasPrefix(gotUserAgent, "onvifctl/"), gotUserAgent)
	assert.Equal(t, "<env/>", gotBody)
}

func TestHTTPDispatcher_StatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   ErrorKind
		wantReason string
	}{
		{"not found", http.StatusNotFound, "not here", ErrTransport, ""},
		{"unauthorized without challenge", http.StatusUnauthorized, "", ErrTransport, ""},
		{"server error with fault", http.StatusInternalServerError, faultResponse, ErrProtocolFault, "No such video source"},
		{"bad request with fault", http.StatusBadRequest, faultResponse, ErrProtocolFault, "No such video source"},
		{"server error with html", http.StatusInternalServerError, "<html>oops</html>", ErrTransport, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			d := NewHTTPDispatcher(WithHTTPDigest("admin", "secret"))
			_, err := d.MakeRequest(context.Background(), CategoryImaging, serverAddress(t, server.URL), "GetImagingSettings", "<env/>")
			require.Error(t, err)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.wantKind, e.Kind)
			assert.Equal(t, "GetImagingSettings", e.Method)
			assert.Equal(t, tt.status, e.StatusCode)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, e.FaultReason)
				assert.Equal(t, "ter:InvalidArgVal", e.FaultSubcode)
			}
		})
	}
}

func TestHTTPDispatcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	d := NewHTTPDispatcher(WithTimeout(50 * time.Millisecond))
	_, err := d.MakeRequest(context.Background(), CategoryPTZ, serverAddress(t, server.URL), "GetStatus", "<env/>")

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrTransport, e.Kind)
	assert.Equal(t, NetworkErrorTimeout, e.NetworkSubtype)
}

func TestHTTPDispatcher_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := serverAddress(t, server.URL)
	server.Close()

	d := NewHTTPDispatcher(WithTimeout(time.Second))
	_, err := d.MakeRequest(context.Background(), CategoryDevice, addr, "GetSystemDateAndTime", "<env/>")
	assert.True(t, IsTransport(err), "got %v", err)
}

func TestHTTPDispatcher_NoRetry(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	d := NewHTTPDispatcher()
	_, err := d.MakeRequest(context.Background(), CategoryMedia, serverAddress(t, server.URL), "GetProfiles", "<env/>")
	assert.True(t, IsTransport(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPDispatcher_DigestFallback(t *testing.T) {
	var requests, authorized int32
	var contentType, userAgent, authBody atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		auth := r.Header.Get("Authorization")
		if strings.HasPrefix(auth, "Digest ") && strings.Contains(auth, `username="admin"`) {
			atomic.AddInt32(&authorized, 1)
			contentType.Store(r.Header.Get("Content-Type"))
			userAgent.Store(r.Header.Get("User-Agent"))
			b, _ := io.ReadAll(r.Body)
			authBody.Store(string(b))
			_, _ = w.Write([]byte(okResponse))
			return
		}
		w.Header().Set("WWW-Authenticate", `Digest realm="onvif", qop="auth", nonce="dcd98b7102dd2f0e8b11d0f600bfb0c093", opaque="5ccc069c403ebaf9f0171e9517f40e41"`)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	d := NewHTTPDispatcher(WithHTTPDigest("admin", "secret"))
	body, err := d.MakeRequest(context.Background(), CategoryDevice, serverAddress(t, server.URL), "GetDeviceInformation", "<env/>")
	require.NoError(t, err)
	assert.Equal(t, okResponse, string(body))
	assert.Equal(t, int32(1), atomic.LoadInt32(&authorized))
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests), "one challenge, one authorized POST")
	assert.Equal(t, ContentType, contentType.Load())
	assert.Equal(t, version.UserAgent(), userAgent.Load())
	assert.Equal(t, "<env/>", authBody.Load())
}

func TestHTTPDispatcher_DigestFallbackHonoursContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			select {
			case <-release:
			case <-r.Context().Done():
			}
			return
		}
		w.Header().Set("WWW-Authenticate", `Digest realm="onvif", qop="auth", nonce="abc"`)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	d := NewHTTPDispatcher(WithHTTPDigest("admin", "secret"), WithTimeout(10*time.Second))
	start := time.Now()
	_, err := d.MakeRequest(ctx, CategoryDevice, serverAddress(t, server.URL), "GetDeviceInformation", "<env/>")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestHTTPDispatcher_ZeroAddress(t *testing.T) {
	_, err := NewHTTPDispatcher().MakeRequest(context.Background(), CategoryDevice, ServiceAddress{}, "GetHostname", "<env/>")
	assert.True(t, IsInvalidArgument(err))
}

func TestHTTPDispatcher_Capture(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(okResponse))
	}))
	defer server.Close()

	root := t.TempDir()
	d := NewHTTPDispatcher(WithCapture(DirCapture{Root: root, Folder: "hikvision"}))
	_, err := d.MakeRequest(context.Background(), CategoryImaging, serverAddress(t, server.URL), "GetImagingSettings", "<env/>")
	require.NoError(t, err)

	assertFileContent(t, root+"/hikvision/imaging/GetImagingSettings.Request.xml", "<env/>")
	assertFileContent(t, root+"/hikvision/imaging/GetImagingSettings.Response.xml", okResponse)
}
