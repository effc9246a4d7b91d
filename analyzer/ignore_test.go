package analyzer

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SergeiSkv/rulecheck/models"
	"github.com/SergeiSkv/rulecheck/program"
)

func parseFile(t *testing.T, src string) (*token.FileSet, *ast.File) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", src, parser.ParseComments)
	require.NoError(t, err)
	return fset, file
}

func at(line int) models.Span {
	return models.Span{File: "test.go", Line: line}
}

func TestIgnoreCheckerGeneralDirective(t *testing.T) {
	src := `package sample

// rulecheck:ignore
func foo() {}
`
	checker := NewIgnoreChecker(FileSuppressions(parseFile(t, src)))

	require.True(t, checker.ShouldIgnore(models.RuleParamsParameter, at(4)))
	require.True(t, checker.ShouldIgnore(models.RuleField, at(4)))
	require.False(t, checker.ShouldIgnore(models.RuleParamsParameter, at(5)))
}

func TestIgnoreCheckerSpecificDirectives(t *testing.T) {
	src := `package sample

// rulecheck:ignore-next-line CA1071,HAA0102
func first() {}

func second() {
	call() // rulecheck:ignore-line ParamsParameterRule
}

func third() {
	/* rulecheck:ignore HAA0101 */
}
`
	sups := FileSuppressions(parseFile(t, src))
	require.Equal(t, []program.Suppression{
		{File: "test.go", StartLine: 4, EndLine: 4, Rules: []string{"CA1071", "HAA0102"}},
		{File: "test.go", StartLine: 7, EndLine: 7, Rules: []string{"ParamsParameterRule"}},
		{File: "test.go", StartLine: 12, EndLine: 12, Rules: []string{"HAA0101"}},
	}, sups)

	checker := NewIgnoreChecker(sups)
	require.True(t, checker.ShouldIgnore(models.RuleFieldPublic, at(4)))
	require.True(t, checker.ShouldIgnore(models.RuleValueTypeNonOverridenCall, at(4)))
	require.False(t, checker.ShouldIgnore(models.RuleParamsParameter, at(4)))
	require.True(t, checker.ShouldIgnore(models.RuleParamsParameter, at(7)))
	require.False(t, checker.ShouldIgnore(models.RuleValueTypeNonOverridenCall, at(7)))
	require.True(t, checker.ShouldIgnore(models.RuleParamsParameter, at(12)))
}

func TestIgnoreCheckerFileDirective(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		kind    models.RuleKind
		want    bool
	}{
		{"all rules", "// rulecheck:ignore-file", models.RuleParamsParameter, true},
		{"wildcard", "// rulecheck:ignore-file *", models.RuleField, true},
		{"one rule", "// rulecheck:ignore-file HAA0101", models.RuleParamsParameter, true},
		{"other rule", "// rulecheck:ignore-file HAA0101", models.RuleField, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.comment + "\npackage sample\n\nfunc a() {}\n"
			checker := NewIgnoreChecker(FileSuppressions(parseFile(t, src)))
			for line := 1; line <= 200; line += 50 {
				require.Equal(t, tt.want, checker.ShouldIgnore(tt.kind, at(line)))
			}
		})
	}
}

func TestParseIgnoreDirectiveRejects(t *testing.T) {
	for _, comment := range []string{
		"// rulecheck:ignored",
		"// rulecheck:constructor",
		"// nolint",
		"// rulecheck:ignore-lines CA1071",
	} {
		_, ok := ParseIgnoreDirective("a.go", 3, comment)
		require.False(t, ok, comment)
	}
}

func TestFilterSuppressed(t *testing.T) {
	diags := []*models.Diagnostic{
		models.NewDiagnostic(models.RuleField, models.Span{File: "a.cs", Line: 3}),
		nil,
		models.NewDiagnostic(models.RuleParamsParameter, models.Span{File: "a.cs", Line: 4}),
		models.NewDiagnostic(models.RuleParamsParameter, models.Span{File: "b.cs", Line: 4}),
	}
	sups := []program.Suppression{
		{File: "a.cs", StartLine: 3, EndLine: 3},
		{StartLine: 4, EndLine: 4, Rules: []string{"HAA0101"}},
	}

	require.Empty(t, FilterSuppressed(diags, sups))
	require.Len(t, FilterSuppressed(diags, nil), 4)
	require.Len(t, FilterSuppressed(diags, sups[:1]), 2)
}
