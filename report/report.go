// Package report assembles audience specific interaction reports from a
// classification and its narratives.
package report

import (
	"fmt"
	"time"

	"github.com/giygas/interactions-api/entities"
	"github.com/google/uuid"
)

const (
	// Disclaimer is attached to every report
	Disclaimer = "This report is generated by an automated system for informational and educational purposes only. " +
		"It is not a substitute for professional medical advice, diagnosis, or treatment. " +
		"Always seek the advice of your physician or other qualified health provider with any questions about your medications. " +
		"If you experience severe symptoms, seek emergency medical attention immediately."

	analysisMethod = "Rule-based classification with generated clinical narrative"
)

// MetadataRow is a label/value pair shown at the top of a report
type MetadataRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Section is one titled block of report text
type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Document is an assembled report, ready to serialize
type Document struct {
	ID              uuid.UUID                `json:"id"`
	Title           string                   `json:"title"`
	Audience        entities.Audience        `json:"audience"`
	GeneratedAt     time.Time                `json:"generated_at"`
	Drug1           string                   `json:"drug1"`
	Drug2           string                   `json:"drug2"`
	Classification  entities.Classification  `json:"classification"`
	NarrativeSource entities.NarrativeSource `json:"narrative_source"`
	Metadata        []MetadataRow            `json:"metadata"`
	Warning         string                   `json:"warning,omitempty"`
	Sections        []Section                `json:"sections"`
	Disclaimer      string                   `json:"disclaimer"`
}

// Assembler builds report documents
type Assembler struct {
	now func() time.Time
}

// NewAssembler creates an assembler using the wall clock
func NewAssembler() *Assembler {
	return &Assembler{now: time.Now}
}

// Assemble lays out a report for one audience. The narrative is embedded
// as is.
func (a *Assembler) Assemble(result entities.InteractionResult, audience entities.Audience) (Document, error) {
	if !audience.Valid() {
		return Document{}, fmt.Errorf("unknown audience %q", audience)
	}

	first := result.Pair.First.Display
	second := result.Pair.Second.Display
	c := result.Classification
	narrative := result.Narratives.For(audience)
	generatedAt := a.now().UTC()

	doc := Document{
		ID:              uuid.New(),
		Audience:        audience,
		GeneratedAt:     generatedAt,
		Drug1:           first,
		Drug2:           second,
		Classification:  c,
		NarrativeSource: narrative.Source,
		Warning:         warning(c.Severity),
		Disclaimer:      Disclaimer,
	}

	metadata := []MetadataRow{
		{Label: "Report Type", Value: reportType(audience)},
		{Label: "Generated", Value: generatedAt.Format("January 2, 2006 at 3:04 PM MST")},
		{Label: "Interaction Type", Value: string(c.Type)},
		{Label: "Severity Level", Value: c.Severity.String()},
	}

	if audience == entities.AudienceProfessional {
		doc.Title = fmt.Sprintf("Clinical Drug-Drug Interaction Report: %s and %s", first, second)
		metadata = append(metadata, MetadataRow{Label: "Analysis Method", Value: analysisMethod})
		doc.Sections = professionalSections(first, second, c, narrative.Text)
	} else {
		doc.Title = fmt.Sprintf("Drug Interaction Report: %s and %s", first, second)
		doc.Sections = patientSections(first, second, c, narrative.Text)
	}
	doc.Metadata = metadata

	return doc, nil
}

func reportType(audience entities.Audience) string {
	if audience == entities.AudienceProfessional {
		return "Professional Clinical Report"
	}
	return "Patient Information Report"
}

func warning(severity entities.Severity) string {
	if !severity.RequiresWarning() {
		return ""
	}
	return fmt.Sprintf("%s severity interaction: review this combination with a healthcare provider before making any change to your medications.",
		severity)
}

func patientSections(first, second string, c entities.Classification, narrative string) []Section {
	return []Section{
		{
			Heading: "What This Means for You",
			Body: fmt.Sprintf("When you take %s and %s together, they may interact with each other in your body. "+
				"This interaction has been classified as %s severity. %s",
				first, second, c.Severity, c.Severity.PatientAdvice()),
		},
		{
			Heading: "Understanding the Interaction",
			Body:    narrative,
		},
		{
			Heading: "What You Should Do",
			Body: "Talk to your doctor or pharmacist about this interaction and bring this report with you. " +
				"Do not stop taking either medication unless your doctor tells you to. " +
				"Keep a note of any new symptoms and make sure everyone who prescribes for you knows every medicine you take.",
		},
	}
}

func professionalSections(first, second string, c entities.Classification, narrative string) []Section {
	return []Section{
		{
			Heading: "Executive Summary",
			Body: fmt.Sprintf("This report presents an automated analysis of the potential drug-drug interaction between %s and %s. "+
				"The interaction has been classified as %s with a severity level of %s.",
				first, second, c.Type, c.Severity),
		},
		{
			Heading: "Interaction Type",
			Body:    fmt.Sprintf("Classification: %s. %s", c.Type, c.Type.Description()),
		},
		{
			Heading: "Clinical Significance",
			Body:    narrative,
		},
		{
			Heading: "Risk Stratification",
			Body:    fmt.Sprintf("Severity: %s. %s", c.Severity, c.Severity.RiskStatement()),
		},
	}
}
