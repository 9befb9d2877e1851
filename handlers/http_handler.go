// Package handlers provides HTTP request handlers for the interactions API.
// It implements the HTTPHandler interface with dependency injection: input
// validation, classification, narrative synthesis and report assembly.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/giygas/interactions-api/entities"
	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/metrics"
	"github.com/giygas/interactions-api/normalizer"
	"github.com/giygas/interactions-api/report"
	"github.com/go-chi/chi/v5"
)

const emptyNamesMessage = "Both drug names must be provided."

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	classifier  interfaces.Classifier
	synthesizer interfaces.NarrativeSynthesizer
	assembler   *report.Assembler
	validator   interfaces.InputValidator
	health      interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(classifier interfaces.Classifier, synthesizer interfaces.NarrativeSynthesizer,
	assembler *report.Assembler, validator interfaces.InputValidator, health interfaces.HealthChecker) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		classifier:  classifier,
		synthesizer: synthesizer,
		assembler:   assembler,
		validator:   validator,
		health:      health,
	}
}

// InteractionRequest is the body of the predict and report endpoints
type InteractionRequest struct {
	Drug1 string `json:"drug1" validate:"max=200"`
	Drug2 string `json:"drug2" validate:"max=200"`
}

// PredictResponse keeps the field names of the original public API
type PredictResponse struct {
	Drug1              string                   `json:"drug1"`
	Drug2              string                   `json:"drug2"`
	Prediction         entities.InteractionType `json:"prediction"`
	Severity           entities.Severity        `json:"severity"`
	ProfessionalReport string                   `json:"professional_report"`
	PatientReport      string                   `json:"patient_report"`
	NarrativeSources   map[string]string        `json:"narrative_sources"`
}

// ClassifyResponse describes a classification and the rule behind it
type ClassifyResponse struct {
	Drug1          string                  `json:"drug1"`
	Drug2          string                  `json:"drug2"`
	Classification entities.Classification `json:"classification"`
	Tier           string                  `json:"tier"`
	Rule           string                  `json:"rule"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// Root returns the welcome message
func (h *HTTPHandlerImpl) Root(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Drug-Drug Interaction API",
	})
}

// Predict classifies a pair and generates both narratives
func (h *HTTPHandlerImpl) Predict(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	pair, decision, ok := h.classify(w, req.Drug1, req.Drug2)
	if !ok {
		return
	}

	narratives := h.synthesizer.SynthesizeNarratives(r.Context(), pair, decision.Classification)

	h.RespondWithJSON(w, http.StatusOK, PredictResponse{
		Drug1:              pair.First.Display,
		Drug2:              pair.Second.Display,
		Prediction:         decision.Classification.Type,
		Severity:           decision.Classification.Severity,
		ProfessionalReport: narratives.Professional.Text,
		PatientReport:      narratives.Patient.Text,
		NarrativeSources: map[string]string{
			string(entities.AudiencePatient):      string(narratives.Patient.Source),
			string(entities.AudienceProfessional): string(narratives.Professional.Source),
		},
	})
}

// Classify answers from the rule catalog only, without calling the provider
func (h *HTTPHandlerImpl) Classify(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pair, decision, ok := h.classify(w, query.Get("drug1"), query.Get("drug2"))
	if !ok {
		return
	}

	h.RespondWithJSON(w, http.StatusOK, ClassifyResponse{
		Drug1:          pair.First.Display,
		Drug2:          pair.Second.Display,
		Classification: decision.Classification,
		Tier:           decision.Tier,
		Rule:           decision.Rule,
	})
}

// Report assembles the full report document for one audience
func (h *HTTPHandlerImpl) Report(w http.ResponseWriter, r *http.Request) {
	audience := entities.Audience(strings.ToLower(chi.URLParam(r, "audience")))
	if !audience.Valid() {
		logging.Warn("Unusual user input", "audience", chi.URLParam(r, "audience"))
		h.RespondWithError(w, http.StatusNotFound, "Unknown report audience. Use 'patient' or 'professional'")
		return
	}

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	pair, decision, ok := h.classify(w, req.Drug1, req.Drug2)
	if !ok {
		return
	}

	narrative := h.synthesizer.Synthesize(r.Context(), entities.NarrativeRequest{
		Pair:           pair,
		Classification: decision.Classification,
		Audience:       audience,
	})

	result := entities.InteractionResult{Pair: pair, Classification: decision.Classification}
	if audience == entities.AudienceProfessional {
		result.Narratives.Professional = narrative
	} else {
		result.Narratives.Patient = narrative
	}

	doc, err := h.assembler.Assemble(result, audience)
	if err != nil {
		logging.Error("Failed to assemble report", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Failed to assemble report")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, doc)
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.health.HealthCheck()
	data["status"] = status
	h.RespondWithJSON(w, httpStatus, data)
}

func (h *HTTPHandlerImpl) decodeRequest(w http.ResponseWriter, r *http.Request) (InteractionRequest, bool) {
	var req InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.RespondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return req, false
		}
		h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return req, false
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}

// classify validates both names and runs the classifier. It writes the
// error response itself and returns false when the request cannot proceed.
func (h *HTTPHandlerImpl) classify(w http.ResponseWriter, drug1, drug2 string) (entities.DrugPair, entities.Decision, bool) {
	for _, name := range []string{drug1, drug2} {
		if err := h.validator.ValidateDrugName(name); err != nil {
			if errors.Is(err, entities.ErrEmptyName) {
				h.RespondWithError(w, http.StatusBadRequest, emptyNamesMessage)
			} else {
				logging.Warn("Unusual user input", "drug", name, "error", err)
				h.RespondWithError(w, http.StatusBadRequest, err.Error())
			}
			return entities.DrugPair{}, entities.Decision{}, false
		}
	}

	pair, err := normalizer.NormalizePair(drug1, drug2)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, emptyNamesMessage)
		return entities.DrugPair{}, entities.Decision{}, false
	}

	decision := h.classifier.Decide(pair)
	metrics.ClassificationsTotal.WithLabelValues(
		string(decision.Classification.Type),
		decision.Classification.Severity.String(),
		decision.Tier,
	).Inc()

	logging.Debug("Classified drug pair",
		"drug1", pair.First.Display,
		"drug2", pair.Second.Display,
		"classification", decision.Classification.String(),
		"tier", decision.Tier)

	return pair, decision, true
}
