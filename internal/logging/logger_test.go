package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactEnvelope(t *testing.T) {
	in := `<Security><UsernameToken><Username>admin</Username>` +
		`<Password Type="x#PasswordDigest">tuOSpGlFlIXsozq4HFNeeGeFLEI=</Password>` +
		`<wsse:Nonce EncodingType="y">LKqI6G/AikKCQrN0zqZFlg==</wsse:Nonce></UsernameToken></Security>`

	out := RedactEnvelope(in)

	if strings.Contains(out, "tuOSpGlFlIXsozq4HFNeeGeFLEI=") {
		t.Error("digest was not redacted")
	}
	if strings.Contains(out, "LKqI6G/AikKCQrN0zqZFlg==") {
		t.Error("nonce was not redacted")
	}
	if !strings.Contains(out, "<Username>admin</Username>") {
		t.Error("username should be kept")
	}
	if !strings.Contains(out, `<Password Type="x#PasswordDigest">***</Password>`) {
		t.Errorf("unexpected redaction: %s", out)
	}
}

func TestLogSOAPRequest_DebugOnly(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogSOAPRequest("id-1", "imaging", "Stop", "http://cam/onvif", "<s:Envelope/>")
	if logs.Len() != 0 {
		t.Fatalf("expected no entries at info level, got %d", logs.Len())
	}

	core, logs = observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))

	LogSOAPRequest("id-1", "imaging", "Stop", "http://cam/onvif", "<Password>secret</Password>")
	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["method"] != "Stop" {
		t.Errorf("method = %v, want Stop", fields["method"])
	}
	if strings.Contains(fields["envelope"].(string), "secret") {
		t.Error("envelope logged without redaction")
	}
}

func TestInitialize_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected nop logger when no level is configured")
	}
}

func TestDumps(t *testing.T) {
	if got := asciiDump([]byte("ab\x00c")); got != "ab.c" {
		t.Errorf("asciiDump = %q, want %q", got, "ab.c")
	}
	if got := hexDump([]byte{0xde, 0xad}); got != "dead" {
		t.Errorf("hexDump = %q, want dead", got)
	}
	long := make([]byte, maxDumpBytes+10)
	if got := hexDump(long); !strings.HasSuffix(got, "...") {
		t.Error("expected truncated hex dump")
	}
}
