package apierr

import (
	"errors"
	"fmt"
	"testing"
)

func TestFromEnvelopeUsesMessage(t *testing.T) {
	env := map[string]any{"status": "error", "message": "no such namespace"}
	err := FromEnvelope(404, env)

	if err.Error() != "no such namespace" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if err.StatusCode != 404 {
		t.Fatalf("unexpected status: %d", err.StatusCode)
	}
	if err.Payload["status"] != "error" {
		t.Fatalf("payload not preserved: %#v", err.Payload)
	}
}

func TestFromEnvelopeWithoutMessage(t *testing.T) {
	err := FromEnvelope(200, map[string]any{"status": "weird"})
	if err.Message != `platform returned status "weird"` {
		t.Fatalf("unexpected message: %q", err.Message)
	}
}

func TestWrapMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("packaging: %w", Wrap(ErrMetadataNotFound, "no metadata.yml under /src"))

	if !errors.Is(err, ErrMetadataNotFound) {
		t.Fatal("expected errors.Is to match sentinel")
	}
	e, ok := As(err)
	if !ok {
		t.Fatal("expected As to find *Error")
	}
	if e.Message != "no metadata.yml under /src" {
		t.Fatalf("unexpected message: %q", e.Message)
	}
	if e.Error() != "metadata not found: no metadata.yml under /src" {
		t.Fatalf("unexpected Error(): %q", e.Error())
	}
}

func TestAsOnForeignError(t *testing.T) {
	if _, ok := As(errors.New("plain")); ok {
		t.Fatal("expected As to fail on plain error")
	}
}
