// Package normalizer canonicalizes free-text drug names and implements the
// containment matching used by the classification rules.
package normalizer

import (
	"fmt"
	"strings"

	"github.com/giygas/interactions-api/entities"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize trims the raw name, collapses inner whitespace and derives both
// the matching and display forms from that single canonical string.
func Normalize(raw string) (entities.DrugName, error) {
	canonical := canonicalize(raw)
	if canonical == "" {
		return entities.DrugName{}, entities.ErrEmptyName
	}

	// cases.Caser is stateful, build one per call
	return entities.DrugName{
		Match:   cases.Fold().String(canonical),
		Display: cases.Title(language.English).String(canonical),
	}, nil
}

// NormalizePair normalizes both names, reporting which one is blank
func NormalizePair(drug1, drug2 string) (entities.DrugPair, error) {
	first, err := Normalize(drug1)
	if err != nil {
		return entities.DrugPair{}, fmt.Errorf("drug1: %w", err)
	}
	second, err := Normalize(drug2)
	if err != nil {
		return entities.DrugPair{}, fmt.Errorf("drug2: %w", err)
	}
	return entities.DrugPair{First: first, Second: second}, nil
}

// FoldToken converts a catalog token to its matching form
func FoldToken(token string) string {
	return cases.Fold().String(canonicalize(token))
}

// Matches reports whether a catalog token and a drug name overlap: the token
// is contained in the name or the name is contained in the token. Both
// arguments must already be in matching form.
//
// It over-matches: "aspirin" matches the product "aspirin-free excedrin"
// and a short input such as "pril" matches "lisinopril".
func Matches(token, name string) bool {
	if token == "" || name == "" {
		return false
	}
	return strings.Contains(name, token) || strings.Contains(token, name)
}

// MatchesAny reports whether name matches at least one of the tokens
func MatchesAny(tokens []string, name string) bool {
	for _, token := range tokens {
		if Matches(token, name) {
			return true
		}
	}
	return false
}

func canonicalize(raw string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(raw)), " ")
}
