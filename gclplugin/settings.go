package gclplugin

import (
	"fmt"

	"github.com/SergeiSkv/rulecheck/analyzer"
	"github.com/SergeiSkv/rulecheck/models"
)

// Settings represents the configuration options for an instance of the [Plugin].
type Settings struct {
	// Disable lists analyzers not to run (ctorparams, callsitealloc).
	Disable []string `json:"disable,omitzero"`
	// EmptyVariadic is auto, report or ignore.
	EmptyVariadic *string `json:"empty-variadic,omitzero"`
	// ConstructorMarkers replaces the deserialization constructor markers.
	ConstructorMarkers []string `json:"constructor-markers,omitzero"`
	// SensitiveMarkers replaces the performance-sensitive markers.
	SensitiveMarkers []string `json:"sensitive-markers,omitzero"`
	// BackingPrefixes replaces the backing field prefixes tried after the exact name.
	BackingPrefixes []string `json:"backing-prefixes,omitzero"`
}

// Options converts [Settings] into [analyzer.Options], starting from the
// defaults and applying only the settings that are present.
func (s Settings) Options() (analyzer.Options, error) {
	opts := analyzer.DefaultOptions()

	for _, name := range s.Disable {
		typ, ok := models.ParseAnalyzerType(name)
		if !ok {
			return opts, fmt.Errorf("rulecheck: unknown analyzer %q", name)
		}
		if opts.Disabled == nil {
			opts.Disabled = make(map[models.AnalyzerType]bool)
		}
		opts.Disabled[typ] = true
	}

	if s.EmptyVariadic != nil {
		policy, err := analyzer.ParseEmptyVariadicPolicy(*s.EmptyVariadic)
		if err != nil {
			return opts, fmt.Errorf("rulecheck: %w", err)
		}
		opts.EmptyVariadic = policy
	}

	if s.ConstructorMarkers != nil {
		opts.Constructors = analyzer.Markers(s.ConstructorMarkers)
	}
	if s.SensitiveMarkers != nil {
		opts.Sensitive = analyzer.Markers(s.SensitiveMarkers)
	}
	if s.BackingPrefixes != nil {
		opts.Naming = analyzer.NameStrategies(s.BackingPrefixes)
	}

	return opts, nil
}
