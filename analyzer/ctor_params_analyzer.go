package analyzer

import (
	"github.com/SergeiSkv/rulecheck/models"
	"github.com/SergeiSkv/rulecheck/program"
)

// CtorParamsAnalyzer reports deserialization constructor parameters whose
// names do not correlate with the member they initialize (CA1071).
type CtorParamsAnalyzer struct {
	constructors Markers
	strategies   []NameStrategy
}

func NewCtorParamsAnalyzer(opts Options) Analyzer {
	strategies := opts.Naming
	if strategies == nil {
		strategies = DefaultNameStrategies()
	}
	return &CtorParamsAnalyzer{
		constructors: opts.Constructors,
		strategies:   strategies,
	}
}

func (a *CtorParamsAnalyzer) Name() string {
	return models.AnalyzerCtorParams.String()
}

func (a *CtorParamsAnalyzer) Rules() []models.Rule {
	return []models.Rule{
		models.RulePropertyName.Rule(),
		models.RulePropertyPublic.Rule(),
		models.RuleField.Rule(),
		models.RuleFieldPublic.Rule(),
	}
}

func (a *CtorParamsAnalyzer) Analyze(unit *program.Unit) []*models.Diagnostic {
	if unit == nil {
		return nil
	}

	var diags []*models.Diagnostic
	for _, decl := range unit.Types {
		if decl == nil {
			continue
		}
		for _, ctor := range decl.Constructors {
			if ctor == nil || ctor.Static || !a.constructors.Any(ctor.Attributes) {
				continue
			}
			for _, param := range ctor.Params {
				if param == nil {
					continue
				}
				if d := a.checkParam(decl, ctor, param); d != nil {
					diags = append(diags, d)
				}
			}
		}
	}
	return diags
}

func (a *CtorParamsAnalyzer) checkParam(decl *program.TypeDecl, ctor *program.Constructor, param *program.Parameter) *models.Diagnostic {
	member, agrees := a.locate(decl, ctor, param.Name)
	if member == nil {
		kind := models.RulePropertyName
		noProperties := len(decl.InstanceMembers(program.MemberProperty)) == 0
		if noProperties && (decl.Kind == program.TypeStruct || len(decl.InstanceMembers(program.MemberField)) > 0) {
			kind = models.RuleField
		}
		return models.NewDiagnostic(kind, param.Span, decl.Name, param.Name, "")
	}

	var kind models.RuleKind
	switch {
	case agrees && member.IsPublic():
		return nil
	case agrees && member.Kind == program.MemberProperty:
		kind = models.RulePropertyPublic
	case agrees:
		kind = models.RuleFieldPublic
	case member.Kind == program.MemberProperty:
		kind = models.RulePropertyName
	default:
		kind = models.RuleField
	}
	return models.NewDiagnostic(kind, param.Span, decl.Name, param.Name, member.Name)
}

// locate finds the member param initializes and whether their names agree.
// Assignment evidence wins over name strategies.
func (a *CtorParamsAnalyzer) locate(decl *program.TypeDecl, ctor *program.Constructor, param string) (*program.Member, bool) {
	if name, ok := ctor.AssignedMember(param); ok {
		if m := decl.Member(name); m != nil {
			return m, NamesAgree(param, m.Name)
		}
	}

	for _, s := range a.strategies {
		for _, kind := range [...]program.MemberKind{program.MemberProperty, program.MemberField} {
			for _, m := range decl.InstanceMembers(kind) {
				if s.Matches(param, m.Name) {
					return m, s.Agrees
				}
			}
		}
	}
	return nil, false
}
