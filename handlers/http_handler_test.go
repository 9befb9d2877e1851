package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/giygas/interactions-api/classifier"
	"github.com/giygas/interactions-api/entities"
	"github.com/giygas/interactions-api/report"
	"github.com/giygas/interactions-api/validation"
	"github.com/go-chi/chi/v5"
)

// ============================================================================
// TEST DOUBLES
// ============================================================================

type stubSynthesizer struct {
	calls atomic.Int32
}

func (s *stubSynthesizer) Synthesize(_ context.Context, req entities.NarrativeRequest) entities.Narrative {
	s.calls.Add(1)
	return entities.Narrative{
		Audience: req.Audience,
		Source:   entities.SourceFallback,
		Text:     string(req.Audience) + " text for " + req.Pair.First.Display + " and " + req.Pair.Second.Display,
	}
}

func (s *stubSynthesizer) SynthesizeNarratives(ctx context.Context, pair entities.DrugPair, c entities.Classification) entities.NarrativeSet {
	return entities.NarrativeSet{
		Patient:      s.Synthesize(ctx, entities.NarrativeRequest{Pair: pair, Classification: c, Audience: entities.AudiencePatient}),
		Professional: s.Synthesize(ctx, entities.NarrativeRequest{Pair: pair, Classification: c, Audience: entities.AudienceProfessional}),
	}
}

type mockHealthChecker struct {
	status     string
	httpStatus int
}

func (m *mockHealthChecker) HealthCheck() (string, map[string]any, int) {
	return m.status, map[string]any{"uptime_hours": 1.5}, m.httpStatus
}

func newTestHandler(t *testing.T) (*HTTPHandlerImpl, *stubSynthesizer) {
	t.Helper()
	c, err := classifier.NewDefaultClassifier()
	if err != nil {
		t.Fatalf("Failed to build classifier: %v", err)
	}
	synth := &stubSynthesizer{}
	h := NewHTTPHandler(c, synth, report.NewAssembler(), validation.NewValidator(),
		&mockHealthChecker{status: "healthy", httpStatus: http.StatusOK})
	return h, synth
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body %q: %v", rr.Body.String(), err)
	}
	for _, key := range []string{"error", "message", "code"} {
		if _, ok := body[key]; !ok {
			t.Errorf("Expected error body to contain %q, got %v", key, body)
		}
	}
	return body
}

// ============================================================================
// PREDICT
// ============================================================================

func TestPredict(t *testing.T) {
	h, synth := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"drug1": "warfarin", "drug2": "ASPIRIN"}`))
	rr := httptest.NewRecorder()
	h.Predict(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}
	if lm := rr.Header().Get("Last-Modified"); lm != "" {
		t.Errorf("Expected no Last-Modified header on a computed response, got %q", lm)
	}

	var resp PredictResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Drug1 != "Warfarin" || resp.Drug2 != "Aspirin" {
		t.Errorf("Expected display names Warfarin/Aspirin, got %s/%s", resp.Drug1, resp.Drug2)
	}
	if resp.Prediction != entities.TypeEffect || resp.Severity != entities.SeverityMajor {
		t.Errorf("Expected EFFECT/Major, got %s/%s", resp.Prediction, resp.Severity)
	}
	if !strings.HasPrefix(resp.PatientReport, "patient") || !strings.HasPrefix(resp.ProfessionalReport, "professional") {
		t.Errorf("Expected narratives routed by audience, got %q / %q", resp.PatientReport, resp.ProfessionalReport)
	}
	if resp.NarrativeSources["patient"] != "fallback" || resp.NarrativeSources["professional"] != "fallback" {
		t.Errorf("Unexpected narrative sources %v", resp.NarrativeSources)
	}
	if synth.calls.Load() != 2 {
		t.Errorf("Expected 2 narrative calls, got %d", synth.calls.Load())
	}
}

func TestPredictBadRequests(t *testing.T) {
	testCases := []struct {
		name            string
		body            string
		expectedStatus  int
		expectedMessage string
	}{
		{"empty drug1", `{"drug1": "", "drug2": "aspirin"}`, http.StatusBadRequest, emptyNamesMessage},
		{"blank drug2", `{"drug1": "warfarin", "drug2": "   "}`, http.StatusBadRequest, emptyNamesMessage},
		{"missing fields", `{}`, http.StatusBadRequest, emptyNamesMessage},
		{"invalid json", `{"drug1": `, http.StatusBadRequest, "Invalid JSON body"},
		{"dangerous input", `{"drug1": "<script>", "drug2": "aspirin"}`, http.StatusBadRequest, "dangerous"},
		{"too long", `{"drug1": "` + strings.Repeat("ab", 101) + `", "drug2": "aspirin"}`, http.StatusBadRequest, "drug1 must be at most 200"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, synth := newTestHandler(t)
			req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			h.Predict(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tc.expectedStatus, rr.Code, rr.Body.String())
			}
			body := decodeError(t, rr)
			if msg, _ := body["message"].(string); !strings.Contains(msg, tc.expectedMessage) {
				t.Errorf("Expected message containing %q, got %q", tc.expectedMessage, msg)
			}
			if synth.calls.Load() != 0 {
				t.Error("Expected no narrative generation for a rejected request")
			}
		})
	}
}

func TestPredictBodyTooLarge(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"drug1": "warfarin", "drug2": "aspirin"}`))
	rr := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rr, req.Body, 8)
	h.Predict(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", rr.Code)
	}
}

// ============================================================================
// CLASSIFY
// ============================================================================

func TestClassify(t *testing.T) {
	testCases := []struct {
		name           string
		query          string
		expectedStatus int
		expectedType   entities.InteractionType
		expectedTier   string
	}{
		{"exact pair", "drug1=Warfarin&drug2=Aspirin", http.StatusOK, entities.TypeEffect, "exact_pair"},
		{"class pair", "drug1=ibuprofen&drug2=lisinopril", http.StatusOK, entities.TypeMechanism, "class_pair"},
		{"default", "drug1=metformin&drug2=amoxicillin", http.StatusOK, entities.TypeEffect, "default"},
		{"missing drug2", "drug1=warfarin", http.StatusBadRequest, "", ""},
		{"invalid characters", "drug1=warfarin&drug2=aspirin%23", http.StatusBadRequest, "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, synth := newTestHandler(t)
			req := httptest.NewRequest(http.MethodGet, "/api/classify?"+tc.query, nil)
			rr := httptest.NewRecorder()
			h.Classify(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tc.expectedStatus, rr.Code, rr.Body.String())
			}
			if synth.calls.Load() != 0 {
				t.Error("Classify should not generate narratives")
			}
			if tc.expectedStatus != http.StatusOK {
				decodeError(t, rr)
				return
			}

			var resp ClassifyResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Classification.Type != tc.expectedType {
				t.Errorf("Expected type %s, got %s", tc.expectedType, resp.Classification.Type)
			}
			if resp.Tier != tc.expectedTier {
				t.Errorf("Expected tier %s, got %s", tc.expectedTier, resp.Tier)
			}
			if resp.Rule == "" {
				t.Error("Expected rule name")
			}
		})
	}
}

// ============================================================================
// REPORT
// ============================================================================

func reportRequest(audience, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/reports/"+audience, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("audience", audience)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestReport(t *testing.T) {
	testCases := []struct {
		audience        string
		expectedHeading string
	}{
		{"patient", "What This Means for You"},
		{"professional", "Executive Summary"},
		{"PATIENT", "What This Means for You"},
	}

	for _, tc := range testCases {
		t.Run(tc.audience, func(t *testing.T) {
			h, synth := newTestHandler(t)
			rr := httptest.NewRecorder()
			h.Report(rr, reportRequest(tc.audience, `{"drug1": "warfarin", "drug2": "aspirin"}`))

			if rr.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
			}

			var doc report.Document
			if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
				t.Fatalf("Failed to decode report: %v", err)
			}
			if len(doc.Sections) == 0 || doc.Sections[0].Heading != tc.expectedHeading {
				t.Errorf("Expected first section %q, got %+v", tc.expectedHeading, doc.Sections)
			}
			if doc.Warning == "" {
				t.Error("Expected a warning for a Major interaction")
			}
			if doc.Disclaimer != report.Disclaimer {
				t.Error("Expected disclaimer")
			}
			if synth.calls.Load() != 1 {
				t.Errorf("Expected a single narrative call, got %d", synth.calls.Load())
			}
		})
	}
}

func TestReportErrors(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := httptest.NewRecorder()
	h.Report(rr, reportRequest("nurse", `{"drug1": "warfarin", "drug2": "aspirin"}`))
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown audience, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Report(rr, reportRequest("patient", `{"drug1": "warfarin"}`))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing drug2, got %d", rr.Code)
	}
}

// ============================================================================
// ROOT AND HEALTH
// ============================================================================

func TestRoot(t *testing.T) {
	h, _ := newTestHandler(t)
	rr := httptest.NewRecorder()
	h.Root(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Welcome") {
		t.Errorf("Expected welcome message, got %s", rr.Body.String())
	}
	if rr.Header().Get("Cache-Control") != "" {
		t.Errorf("Expected no caching headers, got Cache-Control %q", rr.Header().Get("Cache-Control"))
	}
}

func TestHealthCheck(t *testing.T) {
	testCases := []struct {
		name       string
		status     string
		httpStatus int
	}{
		{"healthy", "healthy", http.StatusOK},
		{"degraded", "degraded", http.StatusOK},
		{"unhealthy", "unhealthy", http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newTestHandler(t)
			h.health = &mockHealthChecker{status: tc.status, httpStatus: tc.httpStatus}

			rr := httptest.NewRecorder()
			h.HealthCheck(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rr.Code != tc.httpStatus {
				t.Errorf("Expected status %d, got %d", tc.httpStatus, rr.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body["status"] != tc.status {
				t.Errorf("Expected status %q, got %v", tc.status, body["status"])
			}
		})
	}
}

func TestRespondWithError(t *testing.T) {
	h, _ := newTestHandler(t)
	rr := httptest.NewRecorder()
	h.RespondWithError(rr, http.StatusTeapot, "short and stout")

	body := decodeError(t, rr)
	if body["error"] != http.StatusText(http.StatusTeapot) {
		t.Errorf("Expected status text, got %v", body["error"])
	}
	if body["code"] != float64(http.StatusTeapot) {
		t.Errorf("Expected code 418, got %v", body["code"])
	}
}
