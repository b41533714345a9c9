package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[paths]\napi_bind = \"nope\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := newCommand()
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"--config", path})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("err = %v, want load config failure", err)
	}
}

func TestRejectsPositionalArgs(t *testing.T) {
	cmd := newCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"extra"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected argument error")
	}
}
