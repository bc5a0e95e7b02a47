package cases

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Status is the lifecycle state of a case.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusAnalyzing Status = "ANALYZING"
	StatusProcessed Status = "PROCESSED"
)

var transitions = map[Status][]Status{
	StatusNew:       {StatusAnalyzing},
	StatusAnalyzing: {StatusProcessed, StatusNew},
}

// earlier clients stored the French display labels as status values
var statusAliases = map[string]Status{
	"nouveau":          StatusNew,
	"analyse en cours": StatusAnalyzing,
	"traité":           StatusProcessed,
}

// ParseStatus accepts canonical values case-insensitively and the legacy
// French labels.
func ParseStatus(s string) (Status, error) {
	v := strings.TrimSpace(s)
	switch st := Status(strings.ToUpper(v)); st {
	case StatusNew, StatusAnalyzing, StatusProcessed:
		return st, nil
	}
	if st, ok := statusAliases[strings.ToLower(v)]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidCase, s)
}

// Valid reports whether s is one of the three lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusAnalyzing, StatusProcessed:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to to is legal.
func (s Status) CanTransition(to Status) bool {
	return slices.Contains(transitions[s], to)
}

// MustTransition returns to, panicking when the move is illegal. Callers
// check state first; an illegal move here is a programming error.
func (s Status) MustTransition(to Status) Status {
	if !s.CanTransition(to) {
		panic(fmt.Sprintf("cases: illegal status transition %s -> %s", s, to))
	}
	return to
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Severity is the three-level ordinal attached to a risk.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

var severityAliases = map[string]Severity{
	"low":    SeverityLow,
	"medium": SeverityMedium,
	"high":   SeverityHigh,
	"faible": SeverityLow,
	"moyen":  SeverityMedium,
	"élevé":  SeverityHigh,
	"eleve":  SeverityHigh,
}

// Severities lists the levels in ascending order.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh}
}

// ParseSeverity accepts English and French level names in any case.
func ParseSeverity(s string) (Severity, error) {
	if sev, ok := severityAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return sev, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Rank orders severities: Low < Medium < High. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	}
	return 0
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sev, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
