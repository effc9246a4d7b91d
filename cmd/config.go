package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/SergeiSkv/rulecheck/analyzer"
	"github.com/SergeiSkv/rulecheck/models"
)

// Config represents the configuration for the analyzers
type Config struct {
	// Analyzer configuration
	Analyzers struct {
		CtorParams    AnalyzerConfig `yaml:"ctor_params" json:"ctor_params" toml:"ctor_params"`
		CallSiteAlloc AnalyzerConfig `yaml:"callsite_alloc" json:"callsite_alloc" toml:"callsite_alloc"`
	} `yaml:"analyzers" json:"analyzers" toml:"analyzers"`

	// Attribute names that put declarations in scope
	Markers struct {
		DeserializationConstructor []string `yaml:"deserialization_constructor" json:"deserialization_constructor" toml:"deserialization_constructor"`
		PerformanceSensitive       []string `yaml:"performance_sensitive" json:"performance_sensitive" toml:"performance_sensitive"`
	} `yaml:"markers" json:"markers" toml:"markers"`

	Naming struct {
		BackingPrefixes []string `yaml:"backing_prefixes" json:"backing_prefixes" toml:"backing_prefixes"`
	} `yaml:"naming" json:"naming" toml:"naming"`

	Allocation struct {
		EmptyVariadic string `yaml:"empty_variadic" json:"empty_variadic" toml:"empty_variadic"` // auto, report or ignore
	} `yaml:"allocation" json:"allocation" toml:"allocation"`

	// Path configuration
	Paths struct {
		Exclude []string `yaml:"exclude" json:"exclude" toml:"exclude"` // Paths to exclude from reports
		Tests   bool     `yaml:"tests" json:"tests" toml:"tests"`       // Load test variants of Go packages
	} `yaml:"paths" json:"paths" toml:"paths"`

	// Output configuration
	Output struct {
		Format    string `yaml:"format" json:"format" toml:"format"`             // "text", "compact" or "json"
		MaxIssues int    `yaml:"max_issues" json:"max_issues" toml:"max_issues"` // Maximum diagnostics to report (0 = unlimited)
		FailOn    string `yaml:"fail_on" json:"fail_on" toml:"fail_on"`          // Lowest severity that fails the run, or "none"
	} `yaml:"output" json:"output" toml:"output"`
}

// AnalyzerConfig represents configuration for a single analyzer
type AnalyzerConfig struct {
	Enabled  bool     `yaml:"enabled" json:"enabled" toml:"enabled"`
	Severity string   `yaml:"severity,omitempty" json:"severity,omitempty" toml:"severity,omitempty"` // Override default severity
	Exclude  []string `yaml:"exclude,omitempty" json:"exclude,omitempty" toml:"exclude,omitempty"`    // Exclude patterns
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	config := &Config{}

	config.Analyzers.CtorParams.Enabled = true
	config.Analyzers.CallSiteAlloc.Enabled = true

	config.Markers.DeserializationConstructor = analyzer.DefaultConstructorMarkers()
	config.Markers.PerformanceSensitive = analyzer.DefaultSensitiveMarkers()
	config.Naming.BackingPrefixes = []string{"_"}
	config.Allocation.EmptyVariadic = analyzer.EmptyVariadicAuto.String()

	// Set default paths to exclude
	config.Paths.Exclude = []string{
		"vendor",
		"testdata",
		".git",
	}

	// Set default output
	config.Output.Format = "text"
	config.Output.MaxIssues = 0
	config.Output.FailOn = models.SeverityLevelError.String()

	return config
}

// findConfigPath searches for a config file in common locations
func findConfigPath() string {
	locations := []string{
		".rulecheck.yaml",
		".rulecheck.yml",
		".rulecheck.json",
		".rulecheck.toml",
		"rulecheck.yaml",
		"rulecheck.yml",
		"rulecheck.json",
		"rulecheck.toml",
	}

	// Check the current directory
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	// Check home directory
	home, _ := os.UserHomeDir()
	if home == "" {
		return ""
	}

	for _, loc := range locations {
		configPath := filepath.Join(home, ".config", "rulecheck", loc)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}
	return ""
}

// LoadConfig loads configuration from a file or returns default
func LoadConfig(path string) (*Config, error) {
	resolvedPath := resolveConfigPath(path)
	if resolvedPath == "" {
		return DefaultConfig(), nil
	}

	file, err := os.Open(resolvedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	config, err := decodeConfigFile(file, resolvedPath)
	if err != nil {
		return nil, err
	}

	mergeIgnorePatterns(config, ".rulecheckignore")
	return config, nil
}

func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	return findConfigPath()
}

// decodeConfigFile overlays the file on the defaults, so keys missing from
// the file keep their default values.
func decodeConfigFile(r io.ReadSeeker, path string) (*Config, error) {
	config := DefaultConfig()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		if err := json.NewDecoder(r).Decode(config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML config: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".toml":
		if _, err := toml.NewDecoder(r).Decode(config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		if err := tryJSONThenYAML(r, config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func tryJSONThenYAML(r io.ReadSeeker, config *Config) error {
	if err := json.NewDecoder(r).Decode(config); err == nil {
		return nil
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to reset file position: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read config for YAML parsing: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config (tried JSON and YAML): %w", err)
	}
	return nil
}

func mergeIgnorePatterns(cfg *Config, ignorePath string) {
	patterns, err := loadIgnoreFile(ignorePath)
	if err != nil {
		return
	}
	cfg.Paths.Exclude = append(cfg.Paths.Exclude, patterns...)
}

// loadIgnoreFile loads patterns from an ignore file like .gitignore
func loadIgnoreFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	lines, err := readLines(file)
	if err != nil {
		return nil, err
	}

	return parseIgnoreLines(lines), nil
}

func readLines(r io.Reader) ([]string, error) {
	const maxLineSize = 1024 * 1024
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func parseIgnoreLines(lines []string) []string {
	patterns := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimSuffix(line, "/")
		line = strings.TrimSuffix(line, "*")
		line = strings.TrimPrefix(line, "**/")

		patterns = append(patterns, line)
	}

	return patterns
}

// GetAnalyzerConfig returns config for a specific analyzer. Names are case
// insensitive and may use the configuration key spelling (ctor_params).
func (c *Config) GetAnalyzerConfig(analyzerName string) AnalyzerConfig {
	switch strings.ReplaceAll(strings.ToLower(analyzerName), "_", "") {
	case models.AnalyzerCtorParams.String():
		return c.Analyzers.CtorParams
	case models.AnalyzerCallSiteAlloc.String():
		return c.Analyzers.CallSiteAlloc
	}
	return AnalyzerConfig{Enabled: true}
}

func (c *Config) analyzerConfig(typ models.AnalyzerType) *AnalyzerConfig {
	switch typ {
	case models.AnalyzerCtorParams:
		return &c.Analyzers.CtorParams
	case models.AnalyzerCallSiteAlloc:
		return &c.Analyzers.CallSiteAlloc
	}
	return nil
}

// Disable turns off the named analyzers
func (c *Config) Disable(names []string) error {
	for _, name := range names {
		typ, ok := models.ParseAnalyzerType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", ""))
		if !ok {
			return fmt.Errorf("unknown analyzer %q", name)
		}
		c.analyzerConfig(typ).Enabled = false
	}
	return nil
}

// Options converts the configuration to pipeline options
func (c *Config) Options() (analyzer.Options, error) {
	opts := analyzer.DefaultOptions()

	for _, typ := range models.AnalyzerTypeValues() {
		ac := c.GetAnalyzerConfig(typ.String())
		if !ac.Enabled {
			if opts.Disabled == nil {
				opts.Disabled = make(map[models.AnalyzerType]bool)
			}
			opts.Disabled[typ] = true
		}
		if ac.Severity != "" {
			sev, err := models.ParseSeverityLevel(ac.Severity)
			if err != nil {
				return opts, fmt.Errorf("analyzer %s: %w", typ, err)
			}
			if opts.Severity == nil {
				opts.Severity = make(map[models.AnalyzerType]models.SeverityLevel)
			}
			opts.Severity[typ] = sev
		}
	}

	if c.Markers.DeserializationConstructor != nil {
		opts.Constructors = analyzer.Markers(c.Markers.DeserializationConstructor)
	}
	if c.Markers.PerformanceSensitive != nil {
		opts.Sensitive = analyzer.Markers(c.Markers.PerformanceSensitive)
	}
	if c.Naming.BackingPrefixes != nil {
		opts.Naming = analyzer.NameStrategies(c.Naming.BackingPrefixes)
	}

	policy, err := analyzer.ParseEmptyVariadicPolicy(c.Allocation.EmptyVariadic)
	if err != nil {
		return opts, err
	}
	opts.EmptyVariadic = policy

	return opts, nil
}

// failThreshold returns the lowest severity that fails the run; ok is false
// when no severity does
func (c *Config) failThreshold() (level models.SeverityLevel, ok bool, err error) {
	if strings.EqualFold(c.Output.FailOn, "none") {
		return 0, false, nil
	}
	if c.Output.FailOn == "" {
		return models.SeverityLevelError, true, nil
	}
	level, err = models.ParseSeverityLevel(c.Output.FailOn)
	if err != nil {
		return 0, false, fmt.Errorf("fail_on: %w", err)
	}
	return level, true, nil
}
