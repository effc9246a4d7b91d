package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/SergeiSkv/rulecheck/gosrc"
	"github.com/SergeiSkv/rulecheck/models"
	"github.com/SergeiSkv/rulecheck/program"
)

// splitTargets separates program model documents from Go package patterns.
// Directories become recursive patterns and single Go files file= queries.
func splitTargets(targets []string) (docs, patterns []string, err error) {
	if len(targets) == 0 {
		return nil, []string{"./..."}, nil
	}

	for _, target := range targets {
		if _, ok := program.FormatFromPath(target); ok {
			docs = append(docs, target)
			continue
		}

		info, statErr := os.Stat(target)
		switch {
		case statErr != nil && strings.HasSuffix(target, ".go"):
			return nil, nil, fmt.Errorf("path does not exist: %s", target)
		case statErr != nil:
			// Import path or pattern such as ./...
			patterns = append(patterns, target)
		case info.IsDir():
			patterns = append(patterns, dirPattern(target))
		case strings.HasSuffix(target, ".go"):
			abs, absErr := filepath.Abs(target)
			if absErr != nil {
				return nil, nil, absErr
			}
			patterns = append(patterns, "file="+abs)
		default:
			return nil, nil, fmt.Errorf("unsupported target: %s", target)
		}
	}
	return docs, patterns, nil
}

func dirPattern(dir string) string {
	dir = filepath.ToSlash(filepath.Clean(dir))
	if filepath.IsAbs(dir) || strings.HasPrefix(dir, "./") || strings.HasPrefix(dir, "../") || dir == ".." {
		return dir + "/..."
	}
	if dir == "." {
		return "./..."
	}
	return "./" + dir + "/..."
}

// loadTargets reads model documents and type-checks Go packages
func loadTargets(ctx context.Context, targets []string, config *Config) ([]*program.Unit, error) {
	docs, patterns, err := splitTargets(targets)
	if err != nil {
		return nil, err
	}

	units := make([]*program.Unit, 0, len(docs))
	for _, doc := range docs {
		docUnits, err := program.ReadFile(doc)
		if err != nil {
			return nil, err
		}
		units = append(units, docUnits...)
	}

	if len(patterns) > 0 {
		pkgs, err := gosrc.Load(ctx, patterns, gosrc.LoadConfig{Tests: config.Paths.Tests})
		if err != nil {
			return nil, err
		}
		units = append(units, pkgs...)
	}

	slog.Debug("Targets loaded", "documents", len(docs), "patterns", patterns, "units", len(units))
	return units, nil
}

// isExcluded checks if a file matches one of the exclusion rules
func isExcluded(file string, excludes []string) bool {
	if file == "" {
		return false
	}
	cleanPath := filepath.ToSlash(filepath.Clean(file))

	for _, exclude := range excludes {
		if exclude == "" {
			continue
		}

		if strings.HasSuffix(exclude, ".go") {
			// File pattern (e.g., "_test.go")
			if strings.HasSuffix(cleanPath, exclude) {
				return true
			}
			if ok, _ := path.Match(exclude, path.Base(cleanPath)); ok {
				return true
			}
			continue
		}

		cleanExclude := filepath.ToSlash(filepath.Clean(exclude))
		if cleanPath == cleanExclude ||
			strings.HasPrefix(cleanPath, cleanExclude+"/") ||
			strings.Contains(cleanPath, "/"+cleanExclude+"/") {
			return true
		}

		// Check base name matching
		if ok, _ := path.Match(cleanExclude, path.Base(cleanPath)); ok {
			return true
		}
	}

	return false
}

// filterExcluded drops diagnostics in excluded paths, globally or for the
// analyzer that reported them
func filterExcluded(diags []*models.Diagnostic, config *Config) []*models.Diagnostic {
	out := diags[:0:0]
	for _, d := range diags {
		if isExcluded(d.Span.File, config.Paths.Exclude) {
			continue
		}
		if isExcluded(d.Span.File, config.GetAnalyzerConfig(d.Rule.GetAnalyzer().String()).Exclude) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// limitDiagnostics keeps the first max diagnostics; max <= 0 keeps all
func limitDiagnostics(diags []*models.Diagnostic, max int) []*models.Diagnostic {
	if max <= 0 || len(diags) <= max {
		return diags
	}
	slog.Info("Output truncated", "reported", max, "total", len(diags))
	return diags[:max]
}

// exceedsThreshold reports whether a diagnostic is at least as severe as level
func exceedsThreshold(diags []*models.Diagnostic, level models.SeverityLevel) bool {
	for _, d := range diags {
		if d.Severity >= level {
			return true
		}
	}
	return false
}

func countBySeverity(diags []*models.Diagnostic) (errs, warnings, infos int) {
	for _, d := range diags {
		switch d.Severity {
		case models.SeverityLevelError:
			errs++
		case models.SeverityLevelWarning:
			warnings++
		case models.SeverityLevelInfo:
			infos++
		}
	}
	return
}
