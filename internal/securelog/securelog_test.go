package securelog

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	old := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(old)
	fn()
	return buf.String()
}

func TestError_NilIsSilent(t *testing.T) {
	out := captureLog(t, func() { Error("ctx", nil) })
	if out != "" {
		t.Fatalf("logged %q for nil error", out)
	}
}

func TestError_OmitsErrorText(t *testing.T) {
	secret := "public key 0xABCDEF belongs to alice"
	out := captureLog(t, func() { Error("share.send", errors.New(secret)) })
	if strings.Contains(out, "0xABCDEF") || strings.Contains(out, "alice") {
		t.Fatalf("log leaked error text: %q", out)
	}
	if !strings.Contains(out, "context=share.send") {
		t.Fatalf("log missing context: %q", out)
	}
	if !strings.Contains(out, "*errors.errorString") {
		t.Fatalf("log missing error type: %q", out)
	}
}

func TestError_TypeChain(t *testing.T) {
	inner := errors.New("inner")
	wrapped := fmt.Errorf("outer: %w", inner)
	out := captureLog(t, func() { Error("", wrapped) })
	if !strings.Contains(out, "->") {
		t.Fatalf("log missing type chain: %q", out)
	}
}

func TestEvent(t *testing.T) {
	out := captureLog(t, func() { Event("feed.connected") })
	if !strings.Contains(out, "context=feed.connected") {
		t.Fatalf("log = %q", out)
	}
	if empty := captureLog(t, func() { Event("") }); empty != "" {
		t.Fatalf("logged %q for empty context", empty)
	}
}
