package narrative

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/interactions-api/entities"
)

// stripPrompt removes an echoed prompt: first as a prefix, then anywhere
// it still occurs verbatim.
func stripPrompt(text, prompt string) string {
	text = strings.TrimSpace(text)
	if prompt == "" {
		return text
	}
	text = strings.TrimPrefix(text, prompt)
	text = strings.ReplaceAll(text, prompt, "")
	return strings.TrimSpace(text)
}

// postProcess cleans generated text and enforces the audience opening.
// It returns false when nothing usable is left.
func postProcess(text, prompt string, req entities.NarrativeRequest) (string, bool) {
	text = stripPrompt(text, prompt)
	if text == "" {
		return "", false
	}

	switch req.Audience {
	case entities.AudienceProfessional:
		if !strings.HasPrefix(text, "The interaction") {
			text = professionalOpening(req) + text
		}
	default:
		if !hasPatientOpening(text, req.Pair) {
			text = patientOpening(req.Pair) + continuation(text, req.Pair)
		}
	}

	return text, true
}

// hasPatientOpening reports whether text already starts with "When taking X
// with Y" for this pair, in either drug order and ignoring case.
func hasPatientOpening(text string, pair entities.DrugPair) bool {
	lower := strings.ToLower(text)
	for _, p := range []entities.DrugPair{pair, pair.Reversed()} {
		opening := strings.ToLower(strings.TrimSuffix(patientOpening(p), ", "))
		if strings.HasPrefix(lower, opening) {
			return true
		}
	}
	return false
}

// continuation lowercases the first letter so the text reads on from the
// opening clause, unless it starts with one of the drug names or an acronym.
func continuation(text string, pair entities.DrugPair) string {
	if strings.HasPrefix(text, pair.First.Display) || strings.HasPrefix(text, pair.Second.Display) {
		return text
	}
	r, size := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError || !unicode.IsUpper(r) {
		return text
	}
	if next, _ := utf8.DecodeRuneInString(text[size:]); unicode.IsUpper(next) {
		return text
	}
	return string(unicode.ToLower(r)) + text[size:]
}
