package gosrc

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/SergeiSkv/rulecheck/analyzer"
	"github.com/SergeiSkv/rulecheck/models"
	"github.com/SergeiSkv/rulecheck/program"
)

const sampleSrc = `package sample

type Stringer interface{ String() string }

type Config struct {
	Name    string
	timeout int
	Stringer
}

//rulecheck:constructor
func NewConfig(name string, timeout int, s Stringer) *Config {
	return &Config{Name: name, timeout: timeout, Stringer: s}
}

//rulecheck:constructor
func MakeConfig(label string, t int) Config {
	var c Config
	c.Name, c.timeout = label, t
	return c
}

func sum(xs ...int) int {
	t := 0
	for _, x := range xs {
		t += x
	}
	return t
}

// Hot is measured.
//
//rulecheck:sensitive "hot path"
func (c Config) Hot(xs []int) int {
	total := sum(1, 2, 3)
	total += sum()
	total += sum(xs...)
	_ = c.String()
	_ = len(xs)
	_ = int64(total)
	f := func() { sum(4) }
	f()
	return total // rulecheck:ignore-line HAA0101
}
`

func lowerSource(t *testing.T, src string) *program.Unit {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "sample.go", src, parser.ParseComments)
	require.NoError(t, err)

	unit, err := CheckFiles(fset, "example.com/sample", []*ast.File{file})
	require.NoError(t, err)
	require.NoError(t, unit.Validate())
	return unit
}

func TestLowerTypesAndConstructors(t *testing.T) {
	unit := lowerSource(t, sampleSrc)

	require.Equal(t, "example.com/sample", unit.Name)
	require.Equal(t, Target, unit.Target)
	require.Len(t, unit.Types, 1)

	config := unit.Types[0]
	require.Equal(t, "Config", config.Name)
	require.Equal(t, program.TypeStruct, config.Kind)

	names := make([]string, len(config.Members))
	for i, m := range config.Members {
		names[i] = m.Name
		assert.Equal(t, program.MemberField, m.Kind)
	}
	require.Equal(t, []string{"Name", "timeout", "Stringer"}, names)
	assert.True(t, config.Members[0].IsPublic())
	assert.False(t, config.Members[1].IsPublic())

	require.Len(t, config.Constructors, 2)
	newConfig, makeConfig := config.Constructors[0], config.Constructors[1]

	require.Equal(t, []program.Attribute{{Name: "rulecheck:constructor"}}, newConfig.Attributes)
	require.Len(t, newConfig.Params, 3)
	assert.Equal(t, "Stringer", newConfig.Params[2].Type)
	assert.Equal(t, 12, newConfig.Params[0].Span.Line)
	require.Equal(t, []program.Assignment{
		{Member: "Name", Parameter: "name"},
		{Member: "timeout", Parameter: "timeout"},
		{Member: "Stringer", Parameter: "s"},
	}, newConfig.Assignments)

	require.Equal(t, []program.Assignment{
		{Member: "Name", Parameter: "label"},
		{Member: "timeout", Parameter: "t"},
	}, makeConfig.Assignments)
}

func TestLowerCalls(t *testing.T) {
	unit := lowerSource(t, sampleSrc)

	var hot *program.Function
	for _, fn := range unit.Functions {
		if fn.Name == "Config.Hot" {
			hot = fn
		}
	}
	require.NotNil(t, hot)
	require.Equal(t, []program.Attribute{{Name: "rulecheck:sensitive", Args: []string{"hot path"}}}, hot.Attributes)

	callees := make([]string, len(hot.Calls))
	for i, cs := range hot.Calls {
		require.True(t, cs.Resolved)
		callees[i] = cs.Callee.Name
	}
	require.Equal(t, []string{"sum", "sum", "sum", "String", "sum", "f"}, callees)

	assert.Len(t, hot.Calls[0].VariadicArgs(), 3)
	assert.Empty(t, hot.Calls[1].VariadicArgs())
	require.Len(t, hot.Calls[2].VariadicArgs(), 1)
	assert.True(t, hot.Calls[2].VariadicArgs()[0].Spread)

	str := hot.Calls[3]
	require.NotNil(t, str.Receiver)
	assert.Equal(t, program.Receiver{Type: "Config", ValueType: true}, *str.Receiver)
	assert.Equal(t, program.DispatchVirtual, str.Callee.Dispatch)
	assert.Equal(t, "Stringer", str.Callee.DeclaringType)
	assert.False(t, str.Callee.DeclaringValueType)

	assert.Nil(t, hot.Calls[5].Receiver)
	assert.Equal(t, program.DispatchStatic, hot.Calls[5].Callee.Dispatch)

	require.Len(t, unit.Suppressions, 1)
	assert.Equal(t, []string{"HAA0101"}, unit.Suppressions[0].Rules)
}

func TestLowerRunsThroughAnalyzers(t *testing.T) {
	unit := lowerSource(t, sampleSrc)

	diags, err := analyzer.Run(context.Background(), unit, analyzer.DefaultOptions())
	require.NoError(t, err)

	type got struct {
		line int
		kind models.RuleKind
	}
	var all []got
	for _, d := range diags {
		all = append(all, got{d.Span.Line, d.Rule})
	}
	require.Equal(t, []got{
		{12, models.RuleFieldPublic},
		{12, models.RuleField},
		{17, models.RuleField},
		{17, models.RuleField},
		{35, models.RuleParamsParameter},
		{38, models.RuleValueTypeNonOverridenCall},
		{41, models.RuleParamsParameter},
	}, all)

	require.Equal(t, []string{"Config", "timeout", "timeout"}, diags[0].Args)
	require.Equal(t, []string{"Config", "s", "Stringer"}, diags[1].Args)
}

func TestLowerSkipsMethodsAsConstructors(t *testing.T) {
	unit := lowerSource(t, `package sample

type T struct{ A int }

//rulecheck:constructor
func (T) Clone(a int) T { return T{A: a} }

type alias = T

//rulecheck:constructor
func FromAlias(b int) alias { return alias{A: b} }
`)

	require.Len(t, unit.Types, 1)
	ctors := unit.Types[0].Constructors
	require.Len(t, ctors, 1)
	require.Equal(t, "b", ctors[0].Params[0].Name)
	require.Equal(t, []program.Assignment{{Member: "A", Parameter: "b"}}, ctors[0].Assignments)
}

func TestCheckFilesReportsTypeErrors(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "bad.go", "package bad\nfunc f() { undefined() }\n", 0)
	require.NoError(t, err)

	_, err = CheckFiles(fset, "bad", []*ast.File{file})
	require.Error(t, err)
}

func TestParseDirective(t *testing.T) {
	tests := []struct {
		comment string
		want    Directive
		ok      bool
	}{
		{"//rulecheck:constructor", Directive{Name: "constructor"}, true},
		{`//rulecheck:sensitive "hot path" extra`, Directive{Name: "sensitive", Args: []string{"hot path", "extra"}}, true},
		{`//rulecheck:sensitive "unterminated`, Directive{Name: "sensitive", Args: []string{`"unterminated`}}, true},
		{"//rulecheck:sensitive\t\"hot\"", Directive{Name: "sensitive", Args: []string{"hot"}}, true},
		{"//rulecheck:constructor \t", Directive{Name: "constructor"}, true},
		{"//rulecheck: constructor", Directive{}, false},
		{"// rulecheck:constructor", Directive{}, false},
		{"//rulecheck:", Directive{}, false},
		{"//go:noinline", Directive{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			got, ok := ParseDirective(tt.comment)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDirectivesSkipIgnore(t *testing.T) {
	doc := &ast.CommentGroup{List: []*ast.Comment{
		{Text: "// Doc text."},
		{Text: "//rulecheck:ignore CA1071"},
		{Text: "//rulecheck:constructor"},
	}}
	require.Equal(t, []Directive{{Name: "constructor"}}, Directives(doc))
	require.Nil(t, Directives(nil))
}

func TestDropTestDuplicates(t *testing.T) {
	pkgs := []*packages.Package{
		{ID: "example.com/a", PkgPath: "example.com/a"},
		{ID: "example.com/a [example.com/a.test]", PkgPath: "example.com/a"},
		{ID: "example.com/a.test", PkgPath: "example.com/a.test"},
		{ID: "example.com/b", PkgPath: "example.com/b"},
	}

	kept := dropTestDuplicates(pkgs)
	ids := make([]string, len(kept))
	for i, p := range kept {
		ids[i] = p.ID
	}
	require.Equal(t, []string{"example.com/a [example.com/a.test]", "example.com/b"}, ids)
}
