// Package narrative turns a classified drug pair into audience specific
// prose. Generation is delegated to a text provider; any provider failure is
// absorbed into deterministic fallback text so callers always get a narrative.
package narrative

import (
	"fmt"

	"github.com/giygas/interactions-api/entities"
)

// BuildPrompt returns the provider prompt for a request. It depends only on
// the request, so the same request always yields the same prompt.
func BuildPrompt(req entities.NarrativeRequest) string {
	first := req.Pair.First.Display
	second := req.Pair.Second.Display
	c := req.Classification

	if req.Audience == entities.AudienceProfessional {
		return fmt.Sprintf(
			"Generate a professional clinical summary for a pharmacist about a '%s' interaction of %s severity between %s and %s, detailing the potential mechanism and clinical effects.",
			c.Type, c.Severity, first, second,
		)
	}

	return fmt.Sprintf(
		"Generate a simple, easy-to-understand summary for a patient about a '%s' drug interaction of %s severity between %s and %s. Explain what to watch for and advise them to talk to their doctor.",
		c.Type, c.Severity, first, second,
	)
}

func patientOpening(pair entities.DrugPair) string {
	return fmt.Sprintf("When taking %s with %s, ", pair.First.Display, pair.Second.Display)
}

func professionalOpening(req entities.NarrativeRequest) string {
	return fmt.Sprintf("The interaction between %s and %s is classified as %s with %s severity. ",
		req.Pair.First.Display, req.Pair.Second.Display, req.Classification.Type, req.Classification.Severity)
}
