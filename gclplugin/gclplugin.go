package gclplugin

import (
	"github.com/golangci/plugin-module-register/register"
	"golang.org/x/tools/go/analysis"

	"github.com/SergeiSkv/rulecheck/lint"
)

func init() { register.Plugin("rulecheck", New) }

// New creates a new [Plugin] instance with the given [Settings].
func New(rawSettings any) (register.LinterPlugin, error) {
	settings, err := register.DecodeSettings[Settings](rawSettings)
	if err != nil {
		return nil, err
	}

	return Plugin{settings: settings}, nil
}

// Plugin is the rulecheck linter as a [register.LinterPlugin].
type Plugin struct {
	settings Settings
}

// GetLoadMode returns the golangci load mode.
func (Plugin) GetLoadMode() string {
	return register.LoadModeTypesInfo
}

// BuildAnalyzers returns the [analysis.Analyzer]s for a rulecheck run.
func (p Plugin) BuildAnalyzers() ([]*analysis.Analyzer, error) {
	opts, err := p.settings.Options()
	if err != nil {
		return nil, err
	}

	return []*analysis.Analyzer{lint.New(opts)}, nil
}
