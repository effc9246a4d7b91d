package models

import (
	"fmt"
	"go/token"
	"strconv"
)

// Span is a source range. Lines and columns are 1-based; EndLine/EndColumn are
// optional. Pos and End are only set when the span comes from a go/token file set.
type Span struct {
	File      string    `json:"file,omitempty" yaml:"file,omitempty"`
	Line      int       `json:"line,omitempty" yaml:"line,omitempty"`
	Column    int       `json:"column,omitempty" yaml:"column,omitempty"`
	EndLine   int       `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	EndColumn int       `json:"end_column,omitempty" yaml:"end_column,omitempty"`
	Pos       token.Pos `json:"-" yaml:"-" msgpack:"-"`
	End       token.Pos `json:"-" yaml:"-" msgpack:"-"`
}

// SpanOf builds a span for the node range [pos, end) in fset
func SpanOf(fset *token.FileSet, pos, end token.Pos) Span {
	start := fset.Position(pos)
	span := Span{
		File:   start.Filename,
		Line:   start.Line,
		Column: start.Column,
		Pos:    pos,
		End:    end,
	}
	if end.IsValid() {
		stop := fset.Position(end)
		span.EndLine, span.EndColumn = stop.Line, stop.Column
	}
	return span
}

// IsValid reports whether the span points at a line
func (s Span) IsValid() bool {
	return s.Line > 0
}

// Before orders spans by file, line and column
func (s Span) Before(o Span) bool {
	if s.File != o.File {
		return s.File < o.File
	}
	if s.Line != o.Line {
		return s.Line < o.Line
	}
	return s.Column < o.Column
}

func (s Span) String() string {
	if s.Column > 0 {
		return s.File + ":" + strconv.Itoa(s.Line) + ":" + strconv.Itoa(s.Column)
	}
	return s.File + ":" + strconv.Itoa(s.Line)
}

// Diagnostic is a single reported finding. It is never mutated after the
// analyzer that produced it returns, except for severity overrides applied by
// the pipeline before reporting.
type Diagnostic struct {
	Rule     RuleKind      `json:"rule"`
	ID       string        `json:"id"`
	Severity SeverityLevel `json:"severity"`
	Span     Span          `json:"span"`
	Args     []string      `json:"args,omitempty"`
	Message  string        `json:"message"`
}

// NewDiagnostic formats the rule message with args
func NewDiagnostic(kind RuleKind, span Span, args ...string) *Diagnostic {
	rule := kind.Rule()
	return &Diagnostic{
		Rule:     kind,
		ID:       rule.ID,
		Severity: rule.Severity,
		Span:     span,
		Args:     args,
		Message:  formatMessage(rule.Format, args),
	}
}

func formatMessage(format string, args []string) string {
	if len(args) == 0 {
		return format
	}
	values := make([]any, len(args))
	for i, a := range args {
		values[i] = a
	}
	return fmt.Sprintf(format, values...)
}

// Less orders diagnostics by position, then by rule
func (d *Diagnostic) Less(o *Diagnostic) bool {
	if d.Span.Before(o.Span) {
		return true
	}
	if o.Span.Before(d.Span) {
		return false
	}
	return d.Rule < o.Rule
}
