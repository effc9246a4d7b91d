package analyzer

import (
	"fmt"
	"strings"

	"github.com/SergeiSkv/rulecheck/models"
	"github.com/SergeiSkv/rulecheck/program"
)

// EmptyVariadicPolicy decides whether a variadic call without variadic
// arguments counts as an allocation
type EmptyVariadicPolicy uint8

const (
	// EmptyVariadicAuto reports unless the target reuses a shared empty sequence
	EmptyVariadicAuto EmptyVariadicPolicy = iota
	EmptyVariadicReport
	EmptyVariadicIgnore
)

var emptyVariadicNames = [...]string{"auto", "report", "ignore"}

func (p EmptyVariadicPolicy) String() string {
	if int(p) < len(emptyVariadicNames) {
		return emptyVariadicNames[p]
	}
	return fmt.Sprintf("EmptyVariadicPolicy(%d)", uint8(p))
}

// ParseEmptyVariadicPolicy accepts auto, report or ignore; empty means auto
func ParseEmptyVariadicPolicy(s string) (EmptyVariadicPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return EmptyVariadicAuto, nil
	}
	for i, name := range emptyVariadicNames {
		if name == s {
			return EmptyVariadicPolicy(i), nil
		}
	}
	return EmptyVariadicAuto, fmt.Errorf("unknown empty variadic policy %q (want auto, report or ignore)", s)
}

func (p EmptyVariadicPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *EmptyVariadicPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseEmptyVariadicPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p EmptyVariadicPolicy) reports(target program.Target) bool {
	switch p {
	case EmptyVariadicReport:
		return true
	case EmptyVariadicIgnore:
		return false
	}
	return !target.EmptyArraySingleton
}

// CallSiteAllocAnalyzer reports implicit allocations at call sites inside
// performance-sensitive functions (HAA0101, HAA0102).
type CallSiteAllocAnalyzer struct {
	sensitive     Markers
	emptyVariadic EmptyVariadicPolicy
}

func NewCallSiteAllocAnalyzer(opts Options) Analyzer {
	return &CallSiteAllocAnalyzer{
		sensitive:     opts.Sensitive,
		emptyVariadic: opts.EmptyVariadic,
	}
}

func (a *CallSiteAllocAnalyzer) Name() string {
	return models.AnalyzerCallSiteAlloc.String()
}

func (a *CallSiteAllocAnalyzer) Rules() []models.Rule {
	return []models.Rule{
		models.RuleParamsParameter.Rule(),
		models.RuleValueTypeNonOverridenCall.Rule(),
	}
}

func (a *CallSiteAllocAnalyzer) Analyze(unit *program.Unit) []*models.Diagnostic {
	if unit == nil {
		return nil
	}

	var diags []*models.Diagnostic
	for _, fn := range unit.Functions {
		if fn == nil || !a.sensitive.Any(fn.Attributes) {
			continue
		}
		for _, call := range fn.Calls {
			if call == nil || !call.Resolved || call.Callee == nil {
				continue
			}
			if a.allocatesParamsArray(unit.Target, call) {
				diags = append(diags, models.NewDiagnostic(models.RuleParamsParameter, call.Span))
			}
			if boxesReceiver(call) {
				diags = append(diags, models.NewDiagnostic(models.RuleValueTypeNonOverridenCall, call.Span))
			}
		}
	}
	return diags
}

func (a *CallSiteAllocAnalyzer) allocatesParamsArray(target program.Target, call *program.CallSite) bool {
	if call.Callee.VariadicIndex() < 0 {
		return false
	}
	bound := call.VariadicArgs()
	switch len(bound) {
	case 0:
		return a.emptyVariadic.reports(target)
	case 1:
		return !bound[0].Spread
	}
	return true
}

// boxesReceiver reports a virtual call on a value type receiver that the value
// type does not override itself.
func boxesReceiver(call *program.CallSite) bool {
	recv, callee := call.Receiver, call.Callee
	if recv == nil || !recv.ValueType {
		return false
	}
	return callee.Dispatch == program.DispatchVirtual &&
		!callee.DeclaringValueType &&
		callee.DeclaringType != recv.Type
}
