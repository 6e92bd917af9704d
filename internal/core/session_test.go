package core

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/muurk/onvifctl/internal/soap"
)

func TestNewSession(t *testing.T) {
	addr, err := soap.NewServiceAddress("192.0.2.10", 80)
	if err != nil {
		t.Fatal(err)
	}

	s, err := NewSession(-3*time.Second, addr, "admin", "hunter2")
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if s.ClockDifference() != -3*time.Second {
		t.Errorf("ClockDifference = %v", s.ClockDifference())
	}
	if !s.Authenticated() {
		t.Error("expected authenticated session")
	}

	for _, out := range []string{s.Redacted(), fmt.Sprintf("%v", s), fmt.Sprint(s)} {
		if strings.Contains(out, "hunter2") {
			t.Errorf("password leaked: %s", out)
		}
	}

	if _, err := NewSession(0, soap.ServiceAddress{}, "", ""); !soap.IsInvalidArgument(err) {
		t.Errorf("expected InvalidArgument for zero address, got %v", err)
	}
	if _, err := NewSession(0, addr, "", "orphan"); !soap.IsInvalidArgument(err) {
		t.Errorf("expected InvalidArgument for password without user, got %v", err)
	}
}
