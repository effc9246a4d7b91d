package gclplugin_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/golangci/plugin-module-register/register"
	"github.com/stretchr/testify/require"

	"github.com/SergeiSkv/rulecheck/analyzer"
	. "github.com/SergeiSkv/rulecheck/gclplugin"
	"github.com/SergeiSkv/rulecheck/models"
)

const allSettings = `{
	"disable": ["callsitealloc"],
	"empty-variadic": "report",
	"constructor-markers": ["rulecheck:constructor"],
	"sensitive-markers": [],
	"backing-prefixes": ["_", "m_"]
}`

func decode(t *testing.T, raw string) Settings {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()

	var s Settings
	require.NoError(t, dec.Decode(&s))
	return s
}

func TestSettings(t *testing.T) {
	opts, err := decode(t, allSettings).Options()
	require.NoError(t, err)

	require.True(t, opts.Disabled[models.AnalyzerCallSiteAlloc])
	require.False(t, opts.Disabled[models.AnalyzerCtorParams])
	require.Equal(t, analyzer.EmptyVariadicReport, opts.EmptyVariadic)
	require.Equal(t, analyzer.Markers{"rulecheck:constructor"}, opts.Constructors)
	require.Empty(t, opts.Sensitive)
	require.Len(t, opts.Naming, 3)
}

func TestSettingsDefaults(t *testing.T) {
	opts, err := decode(t, `{}`).Options()
	require.NoError(t, err)
	require.Equal(t, analyzer.DefaultOptions(), opts)
}

func TestSettingsErrors(t *testing.T) {
	for _, raw := range []string{
		`{"disable": ["loop"]}`,
		`{"empty-variadic": "sometimes"}`,
	} {
		_, err := decode(t, raw).Options()
		require.Error(t, err, raw)
	}
}

func TestPlugin(t *testing.T) {
	plugin, err := New(map[string]any{"empty-variadic": "ignore"})
	require.NoError(t, err)
	require.Equal(t, register.LoadModeTypesInfo, plugin.GetLoadMode())

	analyzers, err := plugin.BuildAnalyzers()
	require.NoError(t, err)
	require.Len(t, analyzers, 1)
	require.Equal(t, "rulecheck", analyzers[0].Name)

	plugin, err = New(map[string]any{"disable": []string{"nope"}})
	require.NoError(t, err)
	_, err = plugin.BuildAnalyzers()
	require.Error(t, err)
}
