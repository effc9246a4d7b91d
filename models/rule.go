package models

import (
	"fmt"
	"strings"
)

// RuleKind identifies a single diagnostic descriptor. Several kinds may share
// one public rule ID.
type RuleKind uint8

const (
	// Constructor parameter naming (CA1071)
	RulePropertyName RuleKind = iota
	RulePropertyPublic
	RuleField
	RuleFieldPublic

	// Call site allocations (HAA01xx)
	RuleParamsParameter
	RuleValueTypeNonOverridenCall

	// Sentinel
	RuleKindMax
)

const (
	IDConstructorParameters = "CA1071"
	IDParamsParameter       = "HAA0101"
	IDValueTypeNonOverriden = "HAA0102"
)

// Rule describes everything static about a diagnostic kind
type Rule struct {
	Kind     RuleKind
	ID       string
	Name     string
	Title    string
	Format   string // printf template, positional verbs index Diagnostic.Args
	Severity SeverityLevel
	Analyzer AnalyzerType
	HelpURI  string
}

const (
	ctorParamsTitle = "Constructor parameters should match property and field names"
	ctorParamsHelp  = "https://learn.microsoft.com/dotnet/fundamentals/code-analysis/quality-rules/ca1071"
)

var rules = [RuleKindMax]Rule{
	RulePropertyName: {
		ID:       IDConstructorParameters,
		Name:     "PropertyNameRule",
		Title:    ctorParamsTitle,
		Format:   "For proper deserialization, change the '%[2]s' parameter name to match the '%[3]s' property in the '%[1]s' type",
		Severity: SeverityLevelWarning,
		Analyzer: AnalyzerCtorParams,
		HelpURI:  ctorParamsHelp,
	},
	RulePropertyPublic: {
		ID:       IDConstructorParameters,
		Name:     "PropertyPublicRule",
		Title:    ctorParamsTitle,
		Format:   "For proper deserialization, make the '%[3]s' property in the '%[1]s' type public to match the '%[2]s' parameter",
		Severity: SeverityLevelWarning,
		Analyzer: AnalyzerCtorParams,
		HelpURI:  ctorParamsHelp,
	},
	RuleField: {
		ID:       IDConstructorParameters,
		Name:     "FieldRule",
		Title:    ctorParamsTitle,
		Format:   "For proper deserialization, change the '%[2]s' parameter name to match the '%[3]s' field in the '%[1]s' type",
		Severity: SeverityLevelWarning,
		Analyzer: AnalyzerCtorParams,
		HelpURI:  ctorParamsHelp,
	},
	RuleFieldPublic: {
		ID:       IDConstructorParameters,
		Name:     "FieldPublicRule",
		Title:    ctorParamsTitle,
		Format:   "For proper deserialization, make the '%[3]s' field in the '%[1]s' type public to match the '%[2]s' parameter",
		Severity: SeverityLevelWarning,
		Analyzer: AnalyzerCtorParams,
		HelpURI:  ctorParamsHelp,
	},
	RuleParamsParameter: {
		ID:       IDParamsParameter,
		Name:     "ParamsParameterRule",
		Title:    "Array allocation for params parameter",
		Format:   "This call site is calling into a function with a 'params' parameter. This results in an array allocation",
		Severity: SeverityLevelWarning,
		Analyzer: AnalyzerCallSiteAlloc,
	},
	RuleValueTypeNonOverridenCall: {
		ID:       IDValueTypeNonOverriden,
		Name:     "ValueTypeNonOverridenCallRule",
		Title:    "Non-overridden virtual method call on value type",
		Format:   "Non-overridden virtual method call on a value type adds a boxing or constrained instruction",
		Severity: SeverityLevelWarning,
		Analyzer: AnalyzerCallSiteAlloc,
	},
}

func init() {
	for i := range rules {
		rules[i].Kind = RuleKind(i)
	}
}

// Rule returns the descriptor of the kind
func (k RuleKind) Rule() Rule {
	if k < RuleKindMax {
		return rules[k]
	}
	return Rule{Kind: k, ID: "UNKNOWN", Name: k.String()}
}

// ID returns the public rule identifier, e.g. CA1071
func (k RuleKind) ID() string {
	return k.Rule().ID
}

// Severity returns the default severity for this rule
func (k RuleKind) Severity() SeverityLevel {
	return k.Rule().Severity
}

// GetAnalyzer returns the analyzer type that produces this rule
func (k RuleKind) GetAnalyzer() AnalyzerType {
	return k.Rule().Analyzer
}

func (k RuleKind) String() string {
	if k < RuleKindMax {
		return rules[k].Name
	}
	return fmt.Sprintf("RuleKind(%d)", uint8(k))
}

func (k RuleKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *RuleKind) UnmarshalText(text []byte) error {
	for i := range rules {
		if rules[i].Name == string(text) {
			*k = RuleKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown rule %q", text)
}

// Rules returns every rule descriptor ordered by kind
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules[:])
	return out
}

// LookupRules resolves a rule ID (CA1071) or a rule name (FieldRule) to its kinds.
// Matching is case-insensitive; an unknown selector returns nil.
func LookupRules(selector string) []RuleKind {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil
	}
	var kinds []RuleKind
	for i := range rules {
		if strings.EqualFold(rules[i].ID, selector) || strings.EqualFold(rules[i].Name, selector) {
			kinds = append(kinds, RuleKind(i))
		}
	}
	return kinds
}
