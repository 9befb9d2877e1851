// Package entities holds the value types shared by the classifier, the
// narrative synthesizer and the HTTP layer.
package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DrugName is a normalized drug name. Match is the case-folded form used for
// rule matching, Display the title-cased form used in narratives and reports.
// Both come from the same trimmed input.
type DrugName struct {
	Match   string `json:"-"`
	Display string `json:"name"`
}

func (d DrugName) String() string {
	return d.Display
}

// DrugPair is an unordered pair of drug names
type DrugPair struct {
	First  DrugName `json:"first"`
	Second DrugName `json:"second"`
}

// Reversed returns the same pair with the names swapped
func (p DrugPair) Reversed() DrugPair {
	return DrugPair{First: p.Second, Second: p.First}
}

// InteractionType is the kind of interaction, independent of severity
type InteractionType string

const (
	TypeMechanism   InteractionType = "MECHANISM"
	TypeEffect      InteractionType = "EFFECT"
	TypeAdvice      InteractionType = "ADVICE"
	TypeInteraction InteractionType = "INTERACTION"
)

// ParseInteractionType parses a catalog value. "INT" is accepted as an alias
// of INTERACTION, the label the DDI corpus uses.
func ParseInteractionType(s string) (InteractionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MECHANISM":
		return TypeMechanism, nil
	case "EFFECT":
		return TypeEffect, nil
	case "ADVICE":
		return TypeAdvice, nil
	case "INTERACTION", "INT":
		return TypeInteraction, nil
	}
	return "", fmt.Errorf("unknown interaction type: %q", s)
}

// Severity is the clinical risk tier. Major > Moderate > Minor.
type Severity int

const (
	SeverityMinor Severity = iota + 1
	SeverityModerate
	SeverityMajor
)

func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "Minor"
	case SeverityModerate:
		return "Moderate"
	case SeverityMajor:
		return "Major"
	}
	return "Unknown"
}

// ParseSeverity parses a severity word, case-insensitively
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minor":
		return SeverityMinor, nil
	case "moderate":
		return SeverityModerate, nil
	case "major":
		return SeverityMajor, nil
	}
	return 0, fmt.Errorf("unknown severity: %q", s)
}

// RequiresWarning reports whether reports should carry a severity warning
func (s Severity) RequiresWarning() bool {
	return s >= SeverityModerate
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Classification is the immutable result of classifying one DrugPair
type Classification struct {
	Type     InteractionType `json:"type"`
	Severity Severity        `json:"severity"`
}

func (c Classification) String() string {
	return fmt.Sprintf("%s/%s", c.Type, c.Severity)
}

// Decision is a classification together with the rule that produced it
type Decision struct {
	Classification Classification `json:"classification"`
	Tier           string         `json:"tier"`
	Rule           string         `json:"rule"`
}
