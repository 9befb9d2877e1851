package narrative

import (
	"github.com/giygas/interactions-api/entities"
)

// FallbackText renders the deterministic narrative used whenever generation
// fails. It names both drugs and the severity word for either audience.
func FallbackText(req entities.NarrativeRequest) string {
	c := req.Classification

	if req.Audience == entities.AudienceProfessional {
		return professionalOpening(req) +
			c.Type.Description() + " " +
			c.Severity.String() + " risk: " + c.Severity.RiskStatement()
	}

	return patientOpening(req.Pair) +
		c.Type.PlainDescription() + ". " +
		"This interaction is rated " + c.Severity.String() + " severity. " +
		c.Severity.PatientAdvice()
}

func fallbackNarrative(req entities.NarrativeRequest) entities.Narrative {
	return entities.Narrative{
		Audience: req.Audience,
		Source:   entities.SourceFallback,
		Text:     FallbackText(req),
	}
}
