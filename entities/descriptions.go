package entities

// Description explains an interaction type in clinical terms
func (t InteractionType) Description() string {
	switch t {
	case TypeEffect:
		return "The interaction results in a modification of the therapeutic or adverse effects of one or both drugs."
	case TypeMechanism:
		return "The interaction occurs through a specific pharmacological mechanism (e.g., enzyme inhibition, receptor competition)."
	case TypeAdvice:
		return "Clinical guidance or recommendation regarding the concurrent use of these agents."
	case TypeInteraction:
		return "General interaction detected without specific classification."
	}
	return "Interaction type not recognized."
}

// PlainDescription explains an interaction type without clinical jargon
func (t InteractionType) PlainDescription() string {
	switch t {
	case TypeEffect:
		return "one medicine may change how strongly the other works or make its side effects more likely"
	case TypeMechanism:
		return "one medicine may change how your body processes the other"
	case TypeAdvice:
		return "taking them together calls for some extra care"
	}
	return "they may affect each other"
}

// RiskStatement is the risk stratification text for a severity level
func (s Severity) RiskStatement() string {
	switch s {
	case SeverityMajor:
		return "May be life-threatening and/or require medical intervention to prevent serious outcomes. Combination usually contraindicated or requires intensive monitoring."
	case SeverityModerate:
		return "May result in exacerbation of condition and/or require alteration in therapy. Combination should be used with caution and appropriate monitoring."
	case SeverityMinor:
		return "Limited clinical significance. May increase monitoring or require minor adjustments in therapy."
	}
	return "Severity not recognized."
}

// PatientAdvice is the action a patient should take for a severity level
func (s Severity) PatientAdvice() string {
	switch s {
	case SeverityMajor:
		return "Contact your doctor or pharmacist before taking them together, and do not stop or change either medicine on your own."
	case SeverityModerate:
		return "Talk to your doctor or pharmacist, who may adjust your doses or check on you more often."
	}
	return "Mention both medicines to your doctor or pharmacist at your next visit."
}
