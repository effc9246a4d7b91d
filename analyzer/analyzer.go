package analyzer

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/SergeiSkv/rulecheck/models"
	"github.com/SergeiSkv/rulecheck/program"
)

// Analyzer inspects a program unit. Implementations are stateless and safe to
// call from several goroutines; bad input degrades to no diagnostic.
type Analyzer interface {
	Name() string
	Rules() []models.Rule
	Analyze(unit *program.Unit) []*models.Diagnostic
}

// Options configures a pipeline run
type Options struct {
	// Disabled analyzers are not constructed.
	Disabled map[models.AnalyzerType]bool
	// Severity replaces the default severity of every rule of an analyzer.
	Severity map[models.AnalyzerType]models.SeverityLevel

	Constructors  Markers
	Sensitive     Markers
	Naming        []NameStrategy
	EmptyVariadic EmptyVariadicPolicy
}

// DefaultOptions enables every analyzer with the default markers
func DefaultOptions() Options {
	return Options{
		Constructors:  DefaultConstructorMarkers(),
		Sensitive:     DefaultSensitiveMarkers(),
		Naming:        DefaultNameStrategies(),
		EmptyVariadic: EmptyVariadicAuto,
	}
}

type analyzerEntry struct {
	typ models.AnalyzerType
	fn  func(Options) Analyzer
}

var allAnalyzers = []analyzerEntry{
	{models.AnalyzerCtorParams, NewCtorParamsAnalyzer},
	{models.AnalyzerCallSiteAlloc, NewCallSiteAllocAnalyzer},
}

// Enabled constructs the analyzers opts does not disable, in registry order
func Enabled(opts Options) []Analyzer {
	analyzers := make([]Analyzer, 0, len(allAnalyzers))
	for _, entry := range allAnalyzers {
		if opts.Disabled[entry.typ] {
			continue
		}
		analyzers = append(analyzers, entry.fn(opts))
	}
	return analyzers
}

// Run analyzes one unit with every enabled analyzer. The result has
// suppressions removed, severity overrides applied and is sorted by position,
// then rule. A cancelled context yields ctx.Err() and no diagnostics.
func Run(ctx context.Context, unit *program.Unit, opts Options) ([]*models.Diagnostic, error) {
	if unit == nil {
		return nil, ctx.Err()
	}

	analyzers := Enabled(opts)
	results := make([][]*models.Diagnostic, len(analyzers))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range analyzers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.Analyze(unit)
			slog.Debug("analyzer finished", "unit", unit.Name, "analyzer", a.Name(), "diagnostics", len(results[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	diags := make([]*models.Diagnostic, 0, total)
	for _, r := range results {
		diags = append(diags, r...)
	}

	diags = FilterSuppressed(diags, unit.Suppressions)
	applySeverity(diags, opts.Severity)
	SortDiagnostics(diags)
	return diags, nil
}

// RunUnits runs the pipeline over units with at most jobs units in flight
// (jobs <= 0 means one per unit) and merges the results in sorted order.
func RunUnits(ctx context.Context, units []*program.Unit, opts Options, jobs int) ([]*models.Diagnostic, error) {
	results := make([][]*models.Diagnostic, len(units))

	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, unit := range units {
		g.Go(func() error {
			diags, err := Run(gctx, unit, opts)
			if err != nil {
				return err
			}
			results[i] = diags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []*models.Diagnostic
	for _, r := range results {
		merged = append(merged, r...)
	}
	SortDiagnostics(merged)
	return merged, nil
}

// SortDiagnostics orders diagnostics by file, line, column, then rule
func SortDiagnostics(diags []*models.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Less(diags[j])
	})
}

func applySeverity(diags []*models.Diagnostic, overrides map[models.AnalyzerType]models.SeverityLevel) {
	if len(overrides) == 0 {
		return
	}
	for _, d := range diags {
		if sev, ok := overrides[d.Rule.GetAnalyzer()]; ok {
			d.Severity = sev
		}
	}
}
