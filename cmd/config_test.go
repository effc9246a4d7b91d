package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SergeiSkv/rulecheck/analyzer"
	"github.com/SergeiSkv/rulecheck/models"
)

const formatText = "text"

func TestDefaultConfigEnablesAnalyzers(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Analyzers.CtorParams.Enabled || !cfg.Analyzers.CallSiteAlloc.Enabled {
		t.Fatalf("analyzers should be enabled by default")
	}
	if cfg.Output.Format != formatText {
		t.Fatalf("unexpected output format: %s", cfg.Output.Format)
	}
	if cfg.Allocation.EmptyVariadic != "auto" {
		t.Fatalf("unexpected empty variadic policy: %s", cfg.Allocation.EmptyVariadic)
	}
}

func TestGetAnalyzerConfigIsCaseInsensitive(t *testing.T) {
	cfg := &Config{}
	cfg.Analyzers.CtorParams.Enabled = true
	cfg.Analyzers.CallSiteAlloc.Enabled = false

	if !cfg.GetAnalyzerConfig("CtorParams").Enabled {
		t.Fatalf("expected ctorparams analyzer to be enabled")
	}
	if cfg.GetAnalyzerConfig("callsite_alloc").Enabled {
		t.Fatalf("expected callsitealloc analyzer to be disabled")
	}

	unknown := cfg.GetAnalyzerConfig("nonexistent")
	if !unknown.Enabled {
		t.Fatalf("unknown analyzers default to enabled")
	}
}

func TestParseIgnoreLines(t *testing.T) {
	lines := []string{"# comment", "vendor/", "**/generated", "", "node_modules/*"}
	patterns := parseIgnoreLines(lines)

	want := []string{"vendor", "generated", "node_modules/"}
	if len(patterns) != len(want) {
		t.Fatalf("expected %d patterns, got %d", len(want), len(patterns))
	}
	for i, pattern := range patterns {
		if pattern != want[i] {
			t.Fatalf("expected pattern %q at index %d, got %q", want[i], i, pattern)
		}
	}
}

func TestLoadConfigReturnsDefaultWhenMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")
	cfg, err := LoadConfig(missing)
	if err != nil {
		t.Fatalf("expected default config without error, got %v", err)
	}
	if cfg == nil || !cfg.Analyzers.CtorParams.Enabled {
		t.Fatalf("expected default configuration when file is missing")
	}
}

func TestLoadConfigFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		payload string
	}{
		{
			name:    "yaml",
			file:    "config.yaml",
			payload: "analyzers:\n  ctor_params:\n    enabled: false\noutput:\n  format: json\n",
		},
		{
			name:    "json",
			file:    "config.json",
			payload: `{"analyzers": {"ctor_params": {"enabled": false}}, "output": {"format": "json"}}`,
		},
		{
			name:    "toml",
			file:    "config.toml",
			payload: "[analyzers.ctor_params]\nenabled = false\n\n[output]\nformat = \"json\"\n",
		},
		{
			name:    "no extension",
			file:    "rulecheckrc",
			payload: "analyzers:\n  ctor_params:\n    enabled: false\noutput:\n  format: json\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.payload), 0o644); err != nil {
				t.Fatalf("failed to write config fixture: %v", err)
			}

			cfg, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("unexpected error loading config: %v", err)
			}
			if cfg.Analyzers.CtorParams.Enabled {
				t.Fatalf("ctorparams analyzer should be disabled by override")
			}
			if !cfg.Analyzers.CallSiteAlloc.Enabled {
				t.Fatalf("callsitealloc analyzer should keep its default")
			}
			if cfg.Output.Format != "json" {
				t.Fatalf("expected json format, got %s", cfg.Output.Format)
			}
		})
	}
}

func TestLoadConfigRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[analyzers\n"), 0o644); err != nil {
		t.Fatalf("failed to write config fixture: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected an error for malformed TOML")
	}
}

func TestLoadIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".rulecheckignore")
	if err := os.WriteFile(path, []byte("vendor\n#comment\n*.pb.go\n"), 0o644); err != nil {
		t.Fatalf("failed to write ignore file: %v", err)
	}

	patterns, err := loadIgnoreFile(path)
	if err != nil {
		t.Fatalf("unexpected error loading ignore file: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(patterns))
	}
	if patterns[0] != "vendor" || patterns[1] != "*.pb.go" {
		t.Fatalf("unexpected patterns: %v", patterns)
	}
}

func TestConfigOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analyzers.CallSiteAlloc.Enabled = false
	cfg.Analyzers.CtorParams.Severity = "error"
	cfg.Naming.BackingPrefixes = []string{"m_"}
	cfg.Markers.PerformanceSensitive = []string{"Hot"}
	cfg.Allocation.EmptyVariadic = "report"

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.Disabled[models.AnalyzerCallSiteAlloc] || opts.Disabled[models.AnalyzerCtorParams] {
		t.Fatalf("unexpected disabled set: %v", opts.Disabled)
	}
	if opts.Severity[models.AnalyzerCtorParams] != models.SeverityLevelError {
		t.Fatalf("expected severity override, got %v", opts.Severity)
	}
	if len(opts.Naming) != 2 || opts.Naming[1].Prefix != "m_" {
		t.Fatalf("unexpected naming strategies: %+v", opts.Naming)
	}
	if len(opts.Sensitive) != 1 || opts.Sensitive[0] != "Hot" {
		t.Fatalf("unexpected sensitive markers: %v", opts.Sensitive)
	}
	if opts.EmptyVariadic != analyzer.EmptyVariadicReport {
		t.Fatalf("unexpected policy: %v", opts.EmptyVariadic)
	}
}

func TestConfigOptionsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analyzers.CtorParams.Severity = "fatal"
	if _, err := cfg.Options(); err == nil {
		t.Fatalf("expected an error for an unknown severity")
	}

	cfg = DefaultConfig()
	cfg.Allocation.EmptyVariadic = "sometimes"
	if _, err := cfg.Options(); err == nil {
		t.Fatalf("expected an error for an unknown policy")
	}
}

func TestConfigDisable(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Disable([]string{" CallSite_Alloc "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Analyzers.CallSiteAlloc.Enabled || !cfg.Analyzers.CtorParams.Enabled {
		t.Fatalf("only callsitealloc should be disabled")
	}
	if err := cfg.Disable([]string{"loop"}); err == nil {
		t.Fatalf("expected an error for an unknown analyzer")
	}
}

func TestFailThreshold(t *testing.T) {
	tests := []struct {
		failOn  string
		level   models.SeverityLevel
		failing bool
		wantErr bool
	}{
		{"", models.SeverityLevelError, true, false},
		{"warning", models.SeverityLevelWarning, true, false},
		{"None", 0, false, false},
		{"loud", 0, false, true},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Output.FailOn = tt.failOn
		level, failing, err := cfg.failThreshold()
		if (err != nil) != tt.wantErr {
			t.Fatalf("fail_on %q: unexpected error %v", tt.failOn, err)
		}
		if level != tt.level || failing != tt.failing {
			t.Fatalf("fail_on %q: got (%v, %v)", tt.failOn, level, failing)
		}
	}
}
