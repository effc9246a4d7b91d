package analyzer

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/SergeiSkv/rulecheck/models"
	"github.com/SergeiSkv/rulecheck/program"
)

const ignoreDirective = "rulecheck:ignore"

// IgnoreChecker checks if diagnostics are silenced by suppressions
type IgnoreChecker struct {
	byFile map[string][]program.Suppression // key is file name, empty key means any file
}

// NewIgnoreChecker indexes suppressions by file
func NewIgnoreChecker(suppressions []program.Suppression) *IgnoreChecker {
	ic := &IgnoreChecker{byFile: make(map[string][]program.Suppression, len(suppressions))}
	for _, s := range suppressions {
		ic.byFile[s.File] = append(ic.byFile[s.File], s)
	}
	return ic
}

// ShouldIgnore checks if a diagnostic of kind at span is suppressed
func (ic *IgnoreChecker) ShouldIgnore(kind models.RuleKind, span models.Span) bool {
	for _, key := range [...]string{span.File, ""} {
		for _, s := range ic.byFile[key] {
			if s.Covers(kind, span) {
				return true
			}
		}
		if span.File == "" {
			break
		}
	}
	return false
}

// FilterSuppressed removes diagnostics silenced by suppressions
func FilterSuppressed(diags []*models.Diagnostic, suppressions []program.Suppression) []*models.Diagnostic {
	if len(suppressions) == 0 {
		return diags
	}

	ic := NewIgnoreChecker(suppressions)
	filtered := make([]*models.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if d == nil {
			continue
		}
		if !ic.ShouldIgnore(d.Rule, d.Span) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// FileSuppressions collects the ignore directives in the comments of file
func FileSuppressions(fset *token.FileSet, file *ast.File) []program.Suppression {
	if fset == nil || file == nil {
		return nil
	}

	var out []program.Suppression
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			pos := fset.Position(c.Pos())
			if s, ok := ParseIgnoreDirective(pos.Filename, pos.Line, c.Text); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// ParseIgnoreDirective parses one comment found at line of file.
//
//	rulecheck:ignore [RULES]            next line
//	rulecheck:ignore-next-line [RULES]  next line
//	rulecheck:ignore-line [RULES]       this line
//	rulecheck:ignore-file [RULES|*]     whole file
//
// RULES is a comma separated list of rule IDs or rule names; no list means all rules.
func ParseIgnoreDirective(file string, line int, comment string) (program.Suppression, bool) {
	text := extractCommentText(comment)
	if !strings.HasPrefix(text, ignoreDirective) {
		return program.Suppression{}, false
	}

	parts := strings.Fields(text)
	s := program.Suppression{File: file}
	switch parts[0] {
	case "rulecheck:ignore", "rulecheck:ignore-next-line":
		s.StartLine, s.EndLine = line+1, line+1
	case "rulecheck:ignore-line":
		s.StartLine, s.EndLine = line, line
	case "rulecheck:ignore-file":
		s.StartLine, s.EndLine = 1, 0
	default:
		return program.Suppression{}, false
	}

	if len(parts) > 1 {
		for _, rule := range strings.Split(parts[1], ",") {
			rule = strings.TrimSpace(rule)
			if rule == "*" {
				s.Rules = nil
				break
			}
			if rule != "" {
				s.Rules = append(s.Rules, rule)
			}
		}
	}
	return s, true
}

func extractCommentText(text string) string {
	if strings.HasPrefix(text, "//") {
		text = strings.TrimPrefix(text, "//")
	} else if strings.HasPrefix(text, "/*") {
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
	}
	return strings.TrimSpace(text)
}
