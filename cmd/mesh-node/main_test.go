package main

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"
)

func TestRunNoArgsPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	if !strings.Contains(stdout.String(), "usage:") {
		t.Fatalf("usage missing: %q", stdout.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"frobnicate"}, strings.NewReader(""), &stdout, &stderr); code != 1 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	if !strings.Contains(stderr.String(), "unknown command") {
		t.Fatalf("error missing: %q", stderr.String())
	}
}

func TestRunIDPrintsStableID(t *testing.T) {
	home := t.TempDir()
	var out1, out2, stderr bytes.Buffer
	if code := run([]string{"id", "--home", home}, strings.NewReader(""), &out1, &stderr); code != 0 {
		t.Fatalf("id failed: %d %s", code, stderr.String())
	}
	if code := run([]string{"id", "--home", home}, strings.NewReader(""), &out2, &stderr); code != 0 {
		t.Fatalf("second id failed: %d %s", code, stderr.String())
	}
	id1 := strings.TrimSpace(out1.String())
	if id1 != strings.TrimSpace(out2.String()) {
		t.Fatalf("id not stable across invocations")
	}
	raw, err := hex.DecodeString(id1)
	if err != nil || len(raw) != 32 {
		t.Fatalf("id not a 32-byte hex string: %q", id1)
	}
}

func TestRunNodeRejectsUnknownTransport(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"run", "--transport", "smoke-signal", "--home", t.TempDir()},
		strings.NewReader(""), &stdout, &stderr)
	if code != 1 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	if !strings.Contains(stderr.String(), "unknown transport") {
		t.Fatalf("error missing: %q", stderr.String())
	}
}
