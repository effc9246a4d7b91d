package models

import (
	"fmt"
	"strings"
)

// SeverityLevel represents the severity of a diagnostic
type SeverityLevel uint8

const (
	SeverityLevelInfo    SeverityLevel = iota // informational, never fails a run by default
	SeverityLevelWarning                      // default for every rule
	SeverityLevelError                        // fails the run
)

var severityNames = [...]string{
	SeverityLevelInfo:    "Info",
	SeverityLevelWarning: "Warning",
	SeverityLevelError:   "Error",
}

func (s SeverityLevel) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("SeverityLevel(%d)", uint8(s))
}

// SeverityLevelValues returns all known severity levels in ascending order
func SeverityLevelValues() []SeverityLevel {
	return []SeverityLevel{SeverityLevelInfo, SeverityLevelWarning, SeverityLevelError}
}

// ParseSeverityLevel parses a case-insensitive severity name
func ParseSeverityLevel(s string) (SeverityLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "note", "hidden":
		return SeverityLevelInfo, nil
	case "warning", "warn":
		return SeverityLevelWarning, nil
	case "error":
		return SeverityLevelError, nil
	}
	return SeverityLevelInfo, fmt.Errorf("unknown severity %q", s)
}

func (s SeverityLevel) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

func (s *SeverityLevel) UnmarshalText(text []byte) error {
	level, err := ParseSeverityLevel(string(text))
	if err != nil {
		return err
	}
	*s = level
	return nil
}
