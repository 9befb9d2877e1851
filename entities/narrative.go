package entities

// Audience selects the register of a narrative
type Audience string

const (
	AudiencePatient      Audience = "patient"
	AudienceProfessional Audience = "professional"
)

// Audiences lists every audience in the order reports are produced
var Audiences = []Audience{AudiencePatient, AudienceProfessional}

// Valid reports whether a is a known audience
func (a Audience) Valid() bool {
	return a == AudiencePatient || a == AudienceProfessional
}

// NarrativeSource records whether a narrative came from the provider or
// from the deterministic templates.
type NarrativeSource string

const (
	SourceGenerated NarrativeSource = "generated"
	SourceFallback  NarrativeSource = "fallback"
)

// NarrativeRequest is created once per narrative generation
type NarrativeRequest struct {
	Pair           DrugPair
	Classification Classification
	Audience       Audience
}

// Narrative is a non-empty text tagged with its audience and source
type Narrative struct {
	Audience Audience        `json:"audience"`
	Source   NarrativeSource `json:"source"`
	Text     string          `json:"text"`
}

// NarrativeSet holds one narrative per audience
type NarrativeSet struct {
	Patient      Narrative `json:"patient"`
	Professional Narrative `json:"professional"`
}

// For returns the narrative for the given audience
func (n NarrativeSet) For(audience Audience) Narrative {
	if audience == AudienceProfessional {
		return n.Professional
	}
	return n.Patient
}

// InteractionResult is everything the report assembler consumes
type InteractionResult struct {
	Pair           DrugPair       `json:"pair"`
	Classification Classification `json:"classification"`
	Narratives     NarrativeSet   `json:"narratives"`
}

// GenerationParams are the sampling parameters passed to a provider
type GenerationParams struct {
	MaxTokens   int
	Temperature float32
	TopP        float32
	Sampling    bool
}

// DefaultGenerationParams mirrors the settings the reports were tuned with
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		MaxTokens:   150,
		Temperature: 0.7,
		TopP:        0.9,
		Sampling:    true,
	}
}
