package gosrc

import (
	"go/ast"
	"log/slog"
	"strings"
	"unicode"

	"github.com/google/shlex"

	"github.com/SergeiSkv/rulecheck/program"
)

const directivePrefix = "//rulecheck:"

// Directive is a //rulecheck:<name> [args] comment line
type Directive struct {
	Name string
	Args []string
}

// Attribute returns the marker the analyzers match on, e.g. "rulecheck:constructor"
func (d Directive) Attribute() program.Attribute {
	return program.Attribute{Name: "rulecheck:" + d.Name, Args: d.Args}
}

// ParseDirective parses one comment. Arguments are split with shell quoting
// rules, so //rulecheck:sensitive "hot path" carries a single argument.
func ParseDirective(comment string) (Directive, bool) {
	text, ok := strings.CutPrefix(comment, directivePrefix)
	if !ok {
		return Directive{}, false
	}

	name, rest := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		name, rest = text[:i], text[i:]
	}
	if name == "" {
		return Directive{}, false
	}

	d := Directive{Name: name}
	if rest = strings.TrimSpace(rest); rest != "" {
		args, err := shlex.Split(rest)
		if err != nil {
			slog.Debug("malformed directive arguments", "directive", name, "error", err)
			args = strings.Fields(rest)
		}
		d.Args = args
	}
	return d, true
}

// Directives returns the marker directives of a doc comment. Ignore
// directives are handled as suppressions and are skipped here.
func Directives(doc *ast.CommentGroup) []Directive {
	if doc == nil {
		return nil
	}

	var out []Directive
	for _, c := range doc.List {
		d, ok := ParseDirective(c.Text)
		if !ok || strings.HasPrefix(d.Name, "ignore") {
			continue
		}
		out = append(out, d)
	}
	return out
}

func attributes(doc *ast.CommentGroup) []program.Attribute {
	directives := Directives(doc)
	if len(directives) == 0 {
		return nil
	}
	attrs := make([]program.Attribute, len(directives))
	for i, d := range directives {
		attrs[i] = d.Attribute()
	}
	return attrs
}
