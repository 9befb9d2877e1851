package classifier

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/giygas/interactions-api/entities"
	"github.com/giygas/interactions-api/normalizer"
)

func newTestClassifier(t *testing.T) *RuleClassifier {
	t.Helper()
	c, err := NewDefaultClassifier()
	if err != nil {
		t.Fatalf("Failed to build default classifier: %v", err)
	}
	return c
}

func mustPair(t *testing.T, drug1, drug2 string) entities.DrugPair {
	t.Helper()
	pair, err := normalizer.NormalizePair(drug1, drug2)
	if err != nil {
		t.Fatalf("Failed to normalize %q/%q: %v", drug1, drug2, err)
	}
	return pair
}

func TestClassifyKnownPairs(t *testing.T) {
	c := newTestClassifier(t)

	testCases := []struct {
		name         string
		drug1        string
		drug2        string
		expected     entities.Classification
		expectedTier string
	}{
		{
			name:         "exact pair bleeding risk",
			drug1:        "Warfarin",
			drug2:        "Aspirin",
			expected:     entities.Classification{Type: entities.TypeEffect, Severity: entities.SeverityMajor},
			expectedTier: "exact_pair",
		},
		{
			name:         "ACE inhibitor with NSAID",
			drug1:        "Ibuprofen",
			drug2:        "Lisinopril",
			expected:     entities.Classification{Type: entities.TypeMechanism, Severity: entities.SeverityModerate},
			expectedTier: "class_pair",
		},
		{
			name:         "no rule and no monitored class",
			drug1:        "Metformin",
			drug2:        "Amoxicillin",
			expected:     entities.Classification{Type: entities.TypeEffect, Severity: entities.SeverityModerate},
			expectedTier: "default",
		},
		{
			name:         "one monitored drug",
			drug1:        "Warfarin",
			drug2:        "Metformin",
			expected:     entities.Classification{Type: entities.TypeAdvice, Severity: entities.SeverityMinor},
			expectedTier: "single_class",
		},
		{
			name:         "dual RAAS blockade",
			drug1:        "Lisinopril",
			drug2:        "Losartan",
			expected:     entities.Classification{Type: entities.TypeInteraction, Severity: entities.SeverityModerate},
			expectedTier: "class_pair",
		},
		{
			name:         "brand name with salt still matches exact pair",
			drug1:        "warfarin sodium",
			drug2:        "CLOPIDOGREL",
			expected:     entities.Classification{Type: entities.TypeEffect, Severity: entities.SeverityMajor},
			expectedTier: "exact_pair",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Classify(tc.drug1, tc.drug2)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}

			decision := c.Decide(mustPair(t, tc.drug1, tc.drug2))
			if decision.Tier != tc.expectedTier {
				t.Errorf("Expected tier %s, got %s (rule %s)", tc.expectedTier, decision.Tier, decision.Rule)
			}
		})
	}
}

func TestClassifyEmptyName(t *testing.T) {
	c := newTestClassifier(t)

	testCases := []struct {
		name  string
		drug1 string
		drug2 string
	}{
		{"empty first", "", "Aspirin"},
		{"blank second", "Warfarin", "   "},
		{"both empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Classify(tc.drug1, tc.drug2)
			if !errors.Is(err, entities.ErrEmptyName) {
				t.Errorf("Expected ErrEmptyName, got %v", err)
			}
		})
	}
}

func TestClassifySymmetry(t *testing.T) {
	c := newTestClassifier(t)

	names := []string{
		"Warfarin", "Aspirin", "Ibuprofen", "Lisinopril", "Metformin", "Amoxicillin",
		"Sertraline", "Heparin", "Simvastatin", "Clarithromycin", "Losartan",
		"Spironolactone", "Phenelzine", "Aspirin-free Excedrin", "pril", "Grapefruit juice",
	}

	for _, a := range names {
		for _, b := range names {
			ab, errAB := c.Classify(a, b)
			ba, errBA := c.Classify(b, a)
			if errAB != nil || errBA != nil {
				t.Fatalf("Unexpected errors for %s/%s: %v %v", a, b, errAB, errBA)
			}
			if ab != ba {
				t.Errorf("Expected symmetric result for %s/%s, got %v and %v", a, b, ab, ba)
			}
		}
	}
}

func TestClassifyTotality(t *testing.T) {
	c := newTestClassifier(t)

	validTypes := map[entities.InteractionType]bool{
		entities.TypeMechanism: true, entities.TypeEffect: true,
		entities.TypeAdvice: true, entities.TypeInteraction: true,
	}

	inputs := []string{"a", "zzz", "123", "Ω-drug", "warfarin warfarin", "x y z", "ＡＳＰＩＲＩＮ"}
	for _, a := range inputs {
		for _, b := range inputs {
			got, err := c.Classify(a, b)
			if err != nil {
				t.Fatalf("Unexpected error for %q/%q: %v", a, b, err)
			}
			if !validTypes[got.Type] {
				t.Errorf("Unexpected type %q for %q/%q", got.Type, a, b)
			}
			if got.Severity < entities.SeverityMinor || got.Severity > entities.SeverityMajor {
				t.Errorf("Unexpected severity %d for %q/%q", got.Severity, a, b)
			}
		}
	}
}

func TestExactPairTakesPrecedence(t *testing.T) {
	c := newTestClassifier(t)

	// Also satisfies statin_cyp3a4_inhibitor (MECHANISM/Moderate)
	got, err := c.Classify("Simvastatin", "Clarithromycin")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expected := entities.Classification{Type: entities.TypeEffect, Severity: entities.SeverityMajor}
	if got != expected {
		t.Errorf("Expected exact pair result %v, got %v", expected, got)
	}
}

func TestClassPairDeclarationOrderBreaksTies(t *testing.T) {
	c := newTestClassifier(t)

	testCases := []struct {
		name         string
		drug1        string
		drug2        string
		expectedRule string
		expected     entities.Classification
	}{
		{
			// aspirin is both antiplatelet and NSAID: anticoagulant_antiplatelet
			// (Moderate) is declared before anticoagulant_nsaid (Major)
			name:         "heparin and aspirin",
			drug1:        "Heparin",
			drug2:        "Aspirin",
			expectedRule: "anticoagulant_antiplatelet",
			expected:     entities.Classification{Type: entities.TypeEffect, Severity: entities.SeverityModerate},
		},
		{
			name:         "sertraline and aspirin",
			drug1:        "Sertraline",
			drug2:        "Aspirin",
			expectedRule: "ssri_nsaid",
			expected:     entities.Classification{Type: entities.TypeMechanism, Severity: entities.SeverityModerate},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decision := c.Decide(mustPair(t, tc.drug1, tc.drug2))
			if decision.Rule != tc.expectedRule {
				t.Errorf("Expected rule %s, got %s", tc.expectedRule, decision.Rule)
			}
			if decision.Classification != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, decision.Classification)
			}
		})
	}
}

func TestClassPairOrderFromCustomCatalog(t *testing.T) {
	catalogYAML := `
version: 1
classes:
  alpha: [alphazine]
  beta: [betamol]
class_pairs:
  - name: first
    left: [alpha]
    right: [beta]
    type: ADVICE
    severity: Minor
  - name: second
    left: [beta]
    right: [alpha]
    type: MECHANISM
    severity: Major
exact_pairs: []
`
	catalog, err := ParseCatalog([]byte(catalogYAML))
	if err != nil {
		t.Fatalf("Failed to parse catalog: %v", err)
	}
	c, err := NewClassifier(catalog)
	if err != nil {
		t.Fatalf("Failed to build classifier: %v", err)
	}

	decision := c.Decide(mustPair(t, "Betamol", "Alphazine"))
	if decision.Rule != "first" {
		t.Errorf("Expected earlier rule 'first' to win, got %s", decision.Rule)
	}
}

func TestKnownOverMatchingIsAccepted(t *testing.T) {
	c := newTestClassifier(t)

	// "aspirin" is contained in the product name, so the exact pair matches
	got, err := c.Classify("Warfarin", "Aspirin-free Excedrin")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.Severity != entities.SeverityMajor {
		t.Errorf("Expected containment over-match to give Major, got %v", got)
	}

	// "pril" is contained in "lisinopril", so it counts as an ACE inhibitor
	got, err = c.Classify("pril", "Ibuprofen")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expected := entities.Classification{Type: entities.TypeMechanism, Severity: entities.SeverityModerate}
	if got != expected {
		t.Errorf("Expected %v for short input over-match, got %v", expected, got)
	}
}

func TestRulesOrder(t *testing.T) {
	c := newTestClassifier(t)
	rules := c.Rules()

	if len(rules) < 4 {
		t.Fatalf("Expected at least 4 rules, got %d", len(rules))
	}

	lastKind := KindExactPair
	for i, rule := range rules {
		if rule.Kind < lastKind {
			t.Errorf("Rule %d (%s) of kind %s appears after kind %s", i, rule.Name, rule.Kind, lastKind)
		}
		lastKind = rule.Kind
	}

	if rules[len(rules)-1].Kind != KindDefault {
		t.Errorf("Expected last rule to be default, got %s", rules[len(rules)-1].Kind)
	}
	if rules[len(rules)-2].Kind != KindSingleClass {
		t.Errorf("Expected second to last rule to be single_class, got %s", rules[len(rules)-2].Kind)
	}

	var classPairs []string
	for _, rule := range rules {
		if rule.Kind == KindClassPair {
			classPairs = append(classPairs, rule.Name)
		}
	}
	expectedPrefix := []string{"anticoagulant_antiplatelet", "ssri_nsaid", "statin_cyp3a4_inhibitor", "raas_blocker_nsaid"}
	if strings.Join(classPairs[:4], ",") != strings.Join(expectedPrefix, ",") {
		t.Errorf("Expected class pair order %v, got %v", expectedPrefix, classPairs)
	}
}

func TestStats(t *testing.T) {
	c := newTestClassifier(t)
	stats := c.Stats()

	if stats.ExactPairs < 90 {
		t.Errorf("Expected around 100 exact pairs, got %d", stats.ExactPairs)
	}
	if stats.ClassPairs != 8 {
		t.Errorf("Expected 8 class pairs, got %d", stats.ClassPairs)
	}
	if stats.MonitoredTokens == 0 {
		t.Error("Expected monitored tokens")
	}
}

func TestConcurrentClassification(t *testing.T) {
	c := newTestClassifier(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Classify("Warfarin", "Aspirin")
			if err != nil || got.Severity != entities.SeverityMajor {
				t.Errorf("Unexpected result under concurrency: %v %v", got, err)
			}
		}()
	}
	wg.Wait()
}

func TestNewClassifierNilCatalog(t *testing.T) {
	if _, err := NewClassifier(nil); err == nil {
		t.Error("Expected error for nil catalog")
	}
}
