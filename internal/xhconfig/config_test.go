package xhconfig

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
debug: true
hooks:
  - pattern: libtarget\.so
    symbol: mmap
    replacement: "0x1234"
  - pattern: libother\.so
    symbol: open
    replacement: "4096"
`

func TestLoadParsesHookList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hooks.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.Debug {
		t.Fatalf("expected debug: true")
	}
	if len(cfg.Hooks) != 2 {
		t.Fatalf("got %d hooks, want 2", len(cfg.Hooks))
	}
	if cfg.Hooks[0].Symbol != "mmap" {
		t.Fatalf("got symbol %q, want mmap", cfg.Hooks[0].Symbol)
	}
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	bad := "hooks:\n  - pattern: libfoo.so\n    replacement: \"0x1\"\n"
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing symbol")
	}
}

func TestParseAddrAcceptsHexAndDecimal(t *testing.T) {
	cases := map[string]uintptr{
		"0x1234": 0x1234,
		"1234":   1234,
		"0XFF":   0xff,
	}

	for in, want := range cases {
		got, err := ParseAddr(in)
		if err != nil {
			t.Fatalf("ParseAddr(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseAddr(%q) = %#x, want %#x", in, got, want)
		}
	}
}

func TestParseAddrRejectsGarbage(t *testing.T) {
	if _, err := ParseAddr("not-an-address"); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}
