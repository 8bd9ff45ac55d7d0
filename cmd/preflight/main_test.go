package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPreflight_Defaults(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := preflight("", &out, &errOut); code != 0 {
		t.Fatalf("want 0, got %d: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "preflight passed") {
		t.Fatalf("stdout: %s", out.String())
	}
	if !strings.Contains(errOut.String(), "alerts will only be logged") {
		t.Fatalf("expected transport warning, got %s", errOut.String())
	}
}

func TestPreflight_Failures(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STORE_DATABASE_URL", "")
	t.Setenv("ENGINE_INTERVAL", "0s")

	var out, errOut bytes.Buffer
	if code := preflight("", &out, &errOut); code != 1 {
		t.Fatalf("want 1, got %d", code)
	}
	for _, want := range []string{"store.database_url", "engine.interval"} {
		if !strings.Contains(errOut.String(), want) {
			t.Fatalf("missing %q in %s", want, errOut.String())
		}
	}
}
