package classifier

import (
	"fmt"
	"sort"

	"github.com/giygas/interactions-api/entities"
	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/normalizer"
)

// Compile-time check to ensure RuleClassifier implements Classifier
var _ interfaces.Classifier = (*RuleClassifier)(nil)

// RuleClassifier evaluates an ordered decision list: exact pairs, class
// pairs, single class, default. The first matching rule wins. The list is
// built once and never mutated, so a RuleClassifier is safe for concurrent
// use without locking.
type RuleClassifier struct {
	rules []Rule
	stats interfaces.CatalogStats
}

// NewClassifier builds the decision list from a validated catalog
func NewClassifier(catalog *Catalog) (*RuleClassifier, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	classes := make(map[string][]string, len(catalog.Classes))
	for name, members := range catalog.Classes {
		folded := make([]string, 0, len(members))
		for _, member := range members {
			folded = append(folded, normalizer.FoldToken(member))
		}
		classes[name] = folded
	}

	rules := make([]Rule, 0, len(catalog.ExactPairs)+len(catalog.ClassPairs)+2)

	for _, pair := range catalog.ExactPairs {
		rules = append(rules, newExactPairRule(normalizer.FoldToken(pair[0]), normalizer.FoldToken(pair[1])))
	}

	referenced := make(map[string]bool)
	for _, spec := range catalog.ClassPairs {
		interactionType, _ := entities.ParseInteractionType(spec.Type)
		severity, _ := entities.ParseSeverity(spec.Severity)

		left := unionOf(classes, spec.Left)
		right := unionOf(classes, spec.Right)
		for _, class := range append(append([]string{}, spec.Left...), spec.Right...) {
			referenced[class] = true
		}

		rules = append(rules, newClassPairRule(spec.Name, left, right, entities.Classification{
			Type:     interactionType,
			Severity: severity,
		}))
	}

	// Sorted so the single-class rule is identical across runs
	referencedNames := make([]string, 0, len(referenced))
	for class := range referenced {
		referencedNames = append(referencedNames, class)
	}
	sort.Strings(referencedNames)
	monitored := unionOf(classes, referencedNames)

	rules = append(rules, newSingleClassRule(monitored), newDefaultRule())

	return &RuleClassifier{
		rules: rules,
		stats: interfaces.CatalogStats{
			Version:         catalog.Version,
			ExactPairs:      len(catalog.ExactPairs),
			ClassPairs:      len(catalog.ClassPairs),
			MonitoredTokens: len(monitored),
		},
	}, nil
}

// NewDefaultClassifier builds a classifier from the embedded catalog
func NewDefaultClassifier() (*RuleClassifier, error) {
	catalog, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}
	return NewClassifier(catalog)
}

// Classify normalizes both names and classifies the pair. The only error is
// entities.ErrEmptyName (wrapped with the offending argument).
func (c *RuleClassifier) Classify(drug1, drug2 string) (entities.Classification, error) {
	pair, err := normalizer.NormalizePair(drug1, drug2)
	if err != nil {
		return entities.Classification{}, err
	}
	return c.ClassifyPair(pair), nil
}

// ClassifyPair is total over normalized pairs
func (c *RuleClassifier) ClassifyPair(pair entities.DrugPair) entities.Classification {
	return c.Decide(pair).Classification
}

// Decide returns the classification and the rule that produced it
func (c *RuleClassifier) Decide(pair entities.DrugPair) entities.Decision {
	for _, rule := range c.rules {
		if rule.Matches(pair) {
			return entities.Decision{
				Classification: rule.Result,
				Tier:           rule.Kind.String(),
				Rule:           rule.Name,
			}
		}
	}

	// Unreachable while the default rule terminates the list
	return entities.Decision{Classification: defaultResult, Tier: KindDefault.String(), Rule: "default"}
}

// Rules returns a copy of the decision list in evaluation order
func (c *RuleClassifier) Rules() []Rule {
	rules := make([]Rule, len(c.rules))
	copy(rules, c.rules)
	return rules
}

// Stats summarizes the loaded catalog
func (c *RuleClassifier) Stats() interfaces.CatalogStats {
	return c.stats
}

func unionOf(classes map[string][]string, names []string) []string {
	var tokens []string
	for _, name := range names {
		tokens = append(tokens, classes[name]...)
	}
	return tokens
}
