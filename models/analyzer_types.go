package models

// AnalyzerType represents the analyzer that owns a rule
type AnalyzerType uint8

const (
	AnalyzerCtorParams AnalyzerType = iota
	AnalyzerCallSiteAlloc
	AnalyzerTypeMax
)

var analyzerNames = [...]string{
	AnalyzerCtorParams:    "ctorparams",
	AnalyzerCallSiteAlloc: "callsitealloc",
}

// String returns the configuration name of the analyzer
func (a AnalyzerType) String() string {
	if a < AnalyzerTypeMax {
		return analyzerNames[a]
	}
	return "unknown"
}

// AnalyzerTypeValues returns every analyzer type
func AnalyzerTypeValues() []AnalyzerType {
	return []AnalyzerType{AnalyzerCtorParams, AnalyzerCallSiteAlloc}
}

// ParseAnalyzerType resolves a configuration name such as "ctorparams"
func ParseAnalyzerType(name string) (AnalyzerType, bool) {
	for i, n := range analyzerNames {
		if n == name {
			return AnalyzerType(i), true
		}
	}
	return AnalyzerTypeMax, false
}
