package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/SergeiSkv/rulecheck/models"
)

// JSONOutput represents the JSON structure for results
type JSONOutput struct {
	Targets     []string             `json:"targets"`
	Summary     Summary              `json:"summary"`
	Diagnostics []*models.Diagnostic `json:"diagnostics"`
	FileStats   []fileStat           `json:"file_stats"`
}

// Summary contains overall statistics
type Summary struct {
	TotalDiagnostics int `json:"total_diagnostics"`
	Error            int `json:"error"`
	Warning          int `json:"warning"`
	Info             int `json:"info"`
}

type fileStat struct {
	Filename string `json:"filename"`
	Count    int    `json:"count"`
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.Bold)
)

func outputJSON(w io.Writer, targets []string, diags []*models.Diagnostic) error {
	var fileStats []fileStat
	index := make(map[string]int)
	for _, d := range diags {
		idx, ok := index[d.Span.File]
		if !ok {
			index[d.Span.File] = len(fileStats)
			fileStats = append(fileStats, fileStat{Filename: d.Span.File, Count: 1})
			continue
		}
		fileStats[idx].Count++
	}

	errs, warnings, infos := countBySeverity(diags)
	if diags == nil {
		diags = []*models.Diagnostic{}
	}
	output := JSONOutput{
		Targets: targets,
		Summary: Summary{
			TotalDiagnostics: len(diags),
			Error:            errs,
			Warning:          warnings,
			Info:             infos,
		},
		Diagnostics: diags,
		FileStats:   fileStats,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	return nil
}

func outputHuman(w io.Writer, diags []*models.Diagnostic, compactMode bool) {
	if len(diags) == 0 {
		_, _ = fmt.Fprintln(w, "✅ No diagnostics found!")
		return
	}

	if compactMode {
		printCompactDiagnostics(w, diags)
		return
	}
	printGroupedDiagnostics(w, diags)
	printSummary(w, diags)
}

func printSummary(w io.Writer, diags []*models.Diagnostic) {
	errs, warnings, infos := countBySeverity(diags)
	_, _ = fmt.Fprintf(w, "Summary: %d error, %d warning, %d info\n", errs, warnings, infos)
}

type ruleGroup struct {
	id    string
	title string
	diags []*models.Diagnostic
}

// groupDiagnosticsByRule groups diagnostics by public rule ID in rule order,
// keeping positional order inside a group
func groupDiagnosticsByRule(diags []*models.Diagnostic) []ruleGroup {
	var groups []ruleGroup
	index := make(map[string]int)
	for _, rule := range models.Rules() {
		if _, ok := index[rule.ID]; ok {
			continue
		}
		index[rule.ID] = len(groups)
		groups = append(groups, ruleGroup{id: rule.ID, title: rule.Title})
	}

	for _, d := range diags {
		idx, ok := index[d.ID]
		if !ok {
			index[d.ID] = len(groups)
			groups = append(groups, ruleGroup{id: d.ID})
			idx = len(groups) - 1
		}
		groups[idx].diags = append(groups[idx].diags, d)
	}
	return groups
}

func printGroupedDiagnostics(w io.Writer, diags []*models.Diagnostic) {
	var sb strings.Builder
	sb.Grow(len(diags) * 200)

	for _, g := range groupDiagnosticsByRule(diags) {
		if len(g.diags) == 0 {
			continue
		}
		addGroupHeader(&sb, &g)
		addGroupDiagnostics(&sb, g.diags)
		sb.WriteString("\n")
	}
	_, _ = io.WriteString(w, sb.String())
}

func addGroupHeader(sb *strings.Builder, g *ruleGroup) {
	header := g.id
	if g.title != "" {
		header += " " + g.title
	}
	sb.WriteString(headerColor.Sprint(header))
	sb.WriteString(" (")
	sb.WriteString(strconv.Itoa(len(g.diags)))
	sb.WriteString(" diagnostics):\n")
	sb.WriteString(strings.Repeat("─", 50) + "\n")
}

func addGroupDiagnostics(sb *strings.Builder, diags []*models.Diagnostic) {
	for _, d := range diags {
		sb.WriteString("\t")
		sb.WriteString(getSeverityIcon(d.Severity))
		sb.WriteString(" ")
		sb.WriteString(d.Span.String())
		sb.WriteString(" ")
		sb.WriteString(severityColor(d.Severity).Sprint(strings.ToLower(d.Severity.String())))
		sb.WriteString("\n\t\t")
		sb.WriteString(d.Message)
		sb.WriteString("\n")
	}
}

// printCompactDiagnostics writes one line per diagnostic in the compiler
// error format that IDEs understand
func printCompactDiagnostics(w io.Writer, diags []*models.Diagnostic) {
	var sb strings.Builder
	sb.Grow(len(diags) * 150)

	for _, d := range diags {
		sb.WriteString(compactLine(d))
		sb.WriteString("\n")
	}
	_, _ = io.WriteString(w, sb.String())
}

func compactLine(d *models.Diagnostic) string {
	column := d.Span.Column
	if column == 0 {
		column = 1
	}
	return fmt.Sprintf("%s:%d:%d: %s [%s] %s",
		d.Span.File, d.Span.Line, column, strings.ToLower(d.Severity.String()), d.ID, d.Message)
}

func getSeverityIcon(severity models.SeverityLevel) string {
	switch severity {
	case models.SeverityLevelError:
		return "🔴"
	case models.SeverityLevelWarning:
		return "🟡"
	case models.SeverityLevelInfo:
		return "🔵"
	default:
		return "⚪"
	}
}

func severityColor(severity models.SeverityLevel) *color.Color {
	switch severity {
	case models.SeverityLevelError:
		return errorColor
	case models.SeverityLevelWarning:
		return warningColor
	default:
		return infoColor
	}
}
