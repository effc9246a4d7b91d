// Package lint exposes the rulecheck analyzers as a go/analysis pass.
package lint

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/SergeiSkv/rulecheck/analyzer"
	"github.com/SergeiSkv/rulecheck/gosrc"
	"github.com/SergeiSkv/rulecheck/models"
)

const (
	name = "rulecheck"
	doc  = `rulecheck reports deserialization constructors whose parameters do not match field names and implicit allocations at call sites of performance-sensitive functions`
	url  = "https://pkg.go.dev/github.com/SergeiSkv/rulecheck/lint"
)

// ErrResultMissing is returned when a required analyzer result is missing.
var ErrResultMissing = errors.New("analyzer result missing")

// New creates a pass running the analyzers enabled by opts
func New(opts analyzer.Options) *analysis.Analyzer {
	r := &runner{opts: opts}

	a := &analysis.Analyzer{
		Name:     name,
		Doc:      doc,
		URL:      url,
		Run:      r.run,
		Requires: []*analysis.Analyzer{inspect.Analyzer},
	}
	r.registerFlags(&a.Flags)

	return a
}

// Analyzer is the pass with default options
var Analyzer = New(analyzer.DefaultOptions())

type runner struct {
	opts analyzer.Options
}

func (r *runner) registerFlags(flags *flag.FlagSet) {
	flags.TextVar(&r.opts.EmptyVariadic, "empty-variadic", r.opts.EmptyVariadic,
		"report variadic calls without variadic arguments: auto, report or ignore")
	flags.Func("disable", "comma separated analyzers to disable (ctorparams, callsitealloc)", func(s string) error {
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			typ, ok := models.ParseAnalyzerType(part)
			if !ok {
				return fmt.Errorf("unknown analyzer %q", part)
			}
			if r.opts.Disabled == nil {
				r.opts.Disabled = make(map[models.AnalyzerType]bool)
			}
			r.opts.Disabled[typ] = true
		}
		return nil
	})
}

func (r *runner) run(pass *analysis.Pass) (any, error) {
	in, ok := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	if !ok {
		return nil, fmt.Errorf("%s: %s %w", name, inspect.Analyzer.Name, ErrResultMissing)
	}

	unit := gosrc.Lower(gosrc.Package{
		Fset:      pass.Fset,
		Types:     pass.Pkg,
		Info:      pass.TypesInfo,
		Files:     pass.Files,
		Inspector: in,
	})

	diags, err := analyzer.Run(context.Background(), unit, r.opts)
	if err != nil {
		return nil, err
	}

	for _, d := range diags {
		rule := d.Rule.Rule()
		pass.Report(analysis.Diagnostic{
			Pos:      d.Span.Pos,
			End:      d.Span.End,
			Category: rule.Name,
			Message:  d.ID + ": " + d.Message,
			URL:      rule.HelpURI,
		})
	}

	return nil, nil
}
