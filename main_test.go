package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestRunWritesOutputAndDebug(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out", "toolbar.svg")
	debug := filepath.Join(dir, "debug", "layout.json")

	backend, err := newBackend("svg", "examples", zap.NewNop())
	if err != nil {
		t.Fatalf("newBackend: %v", err)
	}
	data := map[string]any{"user": map[string]any{"name": "Ann"}, "count": 3}
	if err := run("examples/toolbar.strip", out, debug, data, true, backend); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, path := range []string{out, debug} {
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Fatalf("expected non-empty %s: %v", path, err)
		}
	}
}

func TestNewBackendRejectsUnknownFormat(t *testing.T) {
	if _, err := newBackend("tiff", ".", zap.NewNop()); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if b, err := newBackend("term", ".", zap.NewNop()); err != nil || b == nil {
		t.Fatalf("term backend: %v", err)
	}
}

func TestRunMissingInput(t *testing.T) {
	backend, _ := newBackend("pdf", ".", zap.NewNop())
	if err := run("does-not-exist.strip", "", "", nil, false, backend); err == nil {
		t.Fatalf("expected error for missing input")
	}
	if err := run("examples/toolbar.strip", "", "", nil, false, nil); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
}
