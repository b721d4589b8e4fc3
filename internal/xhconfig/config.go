// Package xhconfig loads a declarative hook list from YAML, the way a
// deployed agent would ship its hook set instead of hardcoding it into
// main.
package xhconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// HookEntry is one declarative hook spec, as YAML. Replacement is a
// hex-or-decimal literal address, since xgohook itself deals only in
// uintptr replacements; resolving a symbol name to a live address in
// this process is outside the library's scope.
type HookEntry struct {
	Pattern     string `yaml:"pattern"`
	Symbol      string `yaml:"symbol"`
	Replacement string `yaml:"replacement"`
}

// Config is the top-level document: the hook list plus a few process-wide
// toggles.
type Config struct {
	Debug bool        `yaml:"debug"`
	Hooks []HookEntry `yaml:"hooks"`
}

// Load reads and parses a Config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("xhconfig: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("xhconfig: parse %s: %w", path, err)
	}

	for i, h := range cfg.Hooks {
		if h.Pattern == "" || h.Symbol == "" {
			return nil, fmt.Errorf("xhconfig: hooks[%d]: pattern and symbol are required", i)
		}
	}

	return &cfg, nil
}

// ParseAddr parses a hex ("0x..." or "0X...") or decimal address literal;
// a literal without the prefix is read as decimal.
func ParseAddr(s string) (uintptr, error) {
	s = strings.TrimSpace(s)
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	base := 16
	if trimmed == s {
		base = 10
	}

	v, err := strconv.ParseUint(trimmed, base, 64)
	if err != nil {
		return 0, fmt.Errorf("xhconfig: invalid address %q: %w", s, err)
	}
	return uintptr(v), nil
}
